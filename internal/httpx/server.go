package httpx

import (
	"net/http"

	"camrent-be/internal/logger"
	"camrent-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Order   *OrderHandler
}

// NewRouter builds the full route tree. Authentication is resolved once for
// every request; the per-route guards only check what is already in context.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Get("/products", h.Product.List)
		r.Get("/products/{id}", h.Product.Get)

		r.Route("/user/orders", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", h.Order.Place)
			r.Get("/", h.Order.List)
			r.Patch("/{id}/cancel", h.Order.Cancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/orders", h.Order.AdminList)
			r.Patch("/orders/{id}/status", h.Order.AdminUpdateStatus)
			r.Delete("/orders/{id}", h.Order.AdminDelete)

			r.Get("/products", h.Product.AdminList)
			r.Post("/products", h.Product.Create)
			r.Patch("/products/{id}", h.Product.Update)
			r.Delete("/products/{id}", h.Product.Delete)
		})
	})

	return r
}
