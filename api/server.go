/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the suite's frontend

ROUTE GROUPS:
  /api/records/*      Record lifecycle (create, settle, cancel, audit)
  /api/plans          Installment plan creation
  /api/charges/*      Charge preview

SECURITY NOTE:
  Authentication and multi-tenant isolation are handled by the suite's
  gateway in front of this service; the engine endpoints themselves carry
  no auth middleware.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
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
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/records", func(r chi.Router) {
			r.Get("/", h.ListRecords)
			r.Post("/", h.CreateRecord)
			r.Get("/{id}", h.GetRecord)
			r.Post("/{id}/settle", h.SettleRecord)
			r.Post("/{id}/cancel", h.CancelRecord)
			r.Get("/{id}/audit", h.GetAudit)
		})

		r.Post("/plans", h.CreatePlan)

		r.Route("/charges", func(r chi.Router) {
			r.Post("/preview", h.PreviewCharges)
		})
	})

	return r
}
