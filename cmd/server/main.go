package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/mercadito-app/mercadito-backend/internal/auth"
	"github.com/mercadito-app/mercadito-backend/internal/config"
	"github.com/mercadito-app/mercadito-backend/internal/database"
	"github.com/mercadito-app/mercadito-backend/internal/handlers"
	"github.com/mercadito-app/mercadito-backend/internal/middleware"
	"github.com/mercadito-app/mercadito-backend/internal/routes"
	"github.com/mercadito-app/mercadito-backend/internal/services"
	"github.com/mercadito-app/mercadito-backend/internal/storage/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set when ENV=production")
	}

	store, err := postgres.New(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer store.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	var cloudinarySvc *services.CloudinaryService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cloudinarySvc, err = services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Fatalf("Failed to initialize Cloudinary: %v", err)
		}
		log.Println("Cloudinary initialized")
	} else {
		log.Println("Warning: Cloudinary not configured, image uploads disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := services.NewNotifier(redisClient)
	notifier.Start(ctx)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	gate := middleware.NewGate(tokens, store.Users)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(redisClient))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.Setup(r, gate, routes.Handlers{
		Auth:      handlers.NewAuthHandler(store.Users, tokens),
		Listings:  handlers.NewListingHandler(store.Listings, store.Favorites),
		Favorites: handlers.NewFavoriteHandler(store.Favorites, store.Listings),
		Interests: handlers.NewInterestHandler(store.Interests, store.Listings, notifier),
		Upload:    handlers.NewUploadHandler(cloudinarySvc),
		NotifyWS:  handlers.NewNotifyWSHandler(gate, notifier),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
