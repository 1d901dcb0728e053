package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"sharedcal/config"
	authadapter "sharedcal/internal/adapters/auth"
	"sharedcal/internal/adapters/crypto"
	delivery "sharedcal/internal/delivery/http"
	"sharedcal/internal/delivery/http/controllers"
	"sharedcal/internal/delivery/http/middleware"
	"sharedcal/internal/repository/postgres"
	"sharedcal/internal/services"
)

const (
	serviceTimeout = 5 * time.Second
	bcryptCost     = 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	codec, err := crypto.NewAESGCMCodec(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("init description codec: %v", err)
	}

	tokens := authadapter.NewJWT(cfg.JWTSecret)
	hasher := authadapter.NewBcryptHasher(bcryptCost)

	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)

	eventService := services.NewEventService(eventRepo, codec, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.JWTExpiry, serviceTimeout)

	if cfg.AdminUsername != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("ensure admin user: %v", err)
		}
	}

	eventController := controllers.NewEventController(logger, eventService)
	authController := controllers.NewAuthController(logger, authService)

	mux := delivery.NewRouter(eventController, authController, tokens, logger)
	handler := middleware.CORS(cfg.AllowedOrigins,
		middleware.RequestID(
			middleware.LoggingMiddleware(logger, mux)))

	addr := ":" + cfg.Port
	logger.Info("server listening", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
