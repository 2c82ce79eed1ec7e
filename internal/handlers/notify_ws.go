package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mercadito-app/mercadito-backend/internal/middleware"
	"github.com/mercadito-app/mercadito-backend/internal/respond"
	"github.com/mercadito-app/mercadito-backend/internal/services"
)

// NotifyWSHandler upgrades authenticated clients to a WebSocket that streams
// interest notifications for their listings.
type NotifyWSHandler struct {
	gate     *middleware.Gate
	notifier *services.Notifier
	upgrader websocket.Upgrader
}

func NewNotifyWSHandler(gate *middleware.Gate, notifier *services.Notifier) *NotifyWSHandler {
	return &NotifyWSHandler{
		gate:     gate,
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser WebSocket API cannot set headers, so origin
			// checking happens at the CORS layer for the rest of the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve authenticates via the Authorization header or a ?token= query
// parameter, then holds the connection open pushing interest events.
func (h *NotifyWSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractBearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		respond.Error(w, http.StatusUnauthorized, "access token required",
			"a valid authorization token must be provided")
		return
	}

	user, err := h.gate.Authenticate(r.Context(), token)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid token",
			"the provided token is not valid")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	h.notifier.Register(user.ID, conn)
	defer func() {
		h.notifier.Unregister(user.ID, conn)
		conn.Close()
	}()

	// Drain client frames so pings are answered and closes detected.
	// Nothing the client sends is interpreted.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
