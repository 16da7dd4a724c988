package httpapi

import (
	"net/http"
	"time"

	"wishcdp/internal/http/handlers"
	"wishcdp/internal/infra"
	"wishcdp/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/wishlist", func(r chi.Router) {
		r.Use(
			middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
			middleware.AuthJWT(cfg.JWTSecret),
		)
		r.Post("/add", app.AddItem)
		r.Get("/{item_id}", app.GetItem)
		r.Post("/{item_id}/delete", app.DeleteItem)
		r.Delete("/{item_id}", app.DeleteItem)
	})

	return r
}
