/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/workers/*   Worker directory, shift ledger, settlement
  /api/reports/*   Report generation and retrieval

SECURITY NOTE:
  No authentication middleware. All endpoints are public; front the
  service with an authenticating proxy in production.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Worker routes
		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Post("/", h.CreateWorker)
			r.Get("/stats", h.ShiftStats)
			r.Get("/{id}", h.GetWorker)
			r.Delete("/{id}", h.DeleteWorker)
			r.Post("/{id}/shifts", h.AddShift)
			r.Delete("/{id}/shifts/{shiftID}", h.DeleteShift)
			r.Post("/{id}/pay", h.Pay)
			r.Post("/{id}/create-order", h.CreateOrder)
			r.Post("/{id}/verify-payment", h.VerifyPayment)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Post("/generate", h.GenerateReport)
			r.Get("/", h.ListReports)
			r.Get("/{id}/download", h.DownloadReport)
			r.Delete("/{id}", h.DeleteReport)
		})
	})

	// Health/landing endpoint for load balancers and the curious.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": "payroll-engine",
			"status":  "running",
		})
	})

	return r
}
