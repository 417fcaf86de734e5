package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"smartair-backend/internal/handlers"
	"smartair-backend/internal/middleware"
	"smartair-backend/internal/websocket"
)

// New builds the route table. chatLimiter may be nil to leave /chat unlimited.
func New(
	reservationHandler *handlers.ReservationHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	chatLimiter *middleware.RateLimiter,
	corsOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(corsOrigins))

	r.Get("/", handlers.Root)
	r.Get("/health", handlers.Health)
	r.Get("/admin", handlers.Admin)
	r.Get("/ws", wsHub.HandleWebSocket)

	r.Group(func(r chi.Router) {
		if chatLimiter != nil {
			r.Use(chatLimiter.Middleware)
		}
		r.Post("/chat", chatHandler.Chat)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", reservationHandler.Create)
		r.Get("/", reservationHandler.List)
		r.Get("/{id}", reservationHandler.Get)
		r.Patch("/{id}", reservationHandler.Update)
		r.Delete("/{id}", reservationHandler.Delete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", r)
	})

	return r
}
