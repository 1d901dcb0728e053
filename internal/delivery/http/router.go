package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"sharedcal/internal/delivery/http/controllers"
	"sharedcal/internal/delivery/http/middleware"
	"sharedcal/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(eventController *controllers.EventController, authController *controllers.AuthController, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/users", requireAuth(authController.CreateUser))

	// Events
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", requireAuth(eventController.ListMine))
	mux.HandleFunc("GET /events/public", requireAuth(eventController.ListPublic))
	mux.HandleFunc("GET /events/conflicts", requireAuth(eventController.CheckConflict))
	mux.HandleFunc("PUT /events/{eventID}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/join", requireAuth(eventController.JoinEvent))
	mux.HandleFunc("POST /events/{eventID}/leave", requireAuth(eventController.LeaveEvent))

	// Calendars
	mux.HandleFunc("GET /calendars/{principal}", requireAuth(eventController.ListForTarget))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
