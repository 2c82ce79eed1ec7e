package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mercadito-app/mercadito-backend/internal/models"
)

const interestChannelPrefix = "interest:user:"

// InterestEvent is the payload broadcast over Redis and WebSocket when
// someone expresses interest in one of the recipient's listings.
type InterestEvent struct {
	Type         string    `json:"type"`
	InterestID   string    `json:"interest_id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title,omitempty"`
	FromUserID   string    `json:"from_user_id"`
	FromUserName string    `json:"from_user_name,omitempty"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

// NotifyConn is the minimal interface a WebSocket connection must satisfy.
type NotifyConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// notifyConn pairs a connection with a write lock. gorilla/websocket allows
// only one concurrent writer per connection, so every write goes through
// writeJSON.
type notifyConn struct {
	mu   sync.Mutex
	conn NotifyConn
}

func (c *notifyConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Notifier bridges interest creation to live WebSocket subscribers through
// Redis pub/sub, so fan-out works across instances. Delivery is best-effort:
// a failed publish never fails the originating request.
type Notifier struct {
	client *redis.Client

	mu          sync.RWMutex
	connections map[uuid.UUID][]*notifyConn

	started sync.Once
}

// NewNotifier creates a notifier on the given Redis client.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{
		client:      client,
		connections: make(map[uuid.UUID][]*notifyConn),
	}
}

// Start launches the shared Redis subscriber, once per process.
func (n *Notifier) Start(ctx context.Context) {
	n.started.Do(func() {
		go n.runSubscriber(ctx)
	})
}

// Publish sends an interest event to the listing owner's channel.
func (n *Notifier) Publish(ctx context.Context, ownerID uuid.UUID, event InterestEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, interestChannelPrefix+ownerID.String(), data).Err()
}

// NotifyInterest builds and publishes the event for a freshly created
// interest. Failures are logged, never propagated.
func (n *Notifier) NotifyInterest(ctx context.Context, interest models.Interest, from models.User, listing models.Listing) {
	event := InterestEvent{
		Type:         "interest_created",
		InterestID:   interest.ID.String(),
		ListingID:    listing.ID.String(),
		ListingTitle: listing.Title,
		FromUserID:   from.ID.String(),
		FromUserName: from.Name,
		Message:      interest.Message,
	}
	if err := n.Publish(ctx, listing.OwnerID, event); err != nil {
		log.Printf("notify interest: publish failed: %v", err)
	}
}

// Register adds a user's WebSocket connection to the local fan-out set.
func (n *Notifier) Register(userID uuid.UUID, conn NotifyConn) {
	n.mu.Lock()
	n.connections[userID] = append(n.connections[userID], &notifyConn{conn: conn})
	n.mu.Unlock()
}

// Unregister removes a connection.
func (n *Notifier) Unregister(userID uuid.UUID, conn NotifyConn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	conns := n.connections[userID]
	for i, c := range conns {
		if c.conn == conn {
			n.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(n.connections[userID]) == 0 {
		delete(n.connections, userID)
	}
}

// fanOut writes an event to every local connection of the target user.
// Writes to one connection serialize through its lock even when events for
// the same user arrive back to back.
func (n *Notifier) fanOut(userID uuid.UUID, event InterestEvent) {
	n.mu.RLock()
	conns := make([]*notifyConn, len(n.connections[userID]))
	copy(conns, n.connections[userID])
	n.mu.RUnlock()

	for _, conn := range conns {
		go func(c *notifyConn) {
			if err := c.writeJSON(event); err != nil {
				log.Printf("error writing interest event to websocket: %v", err)
			}
		}(conn)
	}
}

func (n *Notifier) runSubscriber(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := n.client.PSubscribe(ctx, interestChannelPrefix+"*")
			defer pubsub.Close()

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("notifier subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				userID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, interestChannelPrefix))
				if err != nil {
					continue
				}

				var event InterestEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal interest event: %v", err)
					continue
				}

				n.fanOut(userID, event)
			}
		}()
	}
}
