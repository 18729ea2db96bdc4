package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

// NewRouter builds the HTTP surface around the generation pipelines.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(nil))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	r.Use(middleware.I18N(cfg.DefaultLocale))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/conversations", func(r chi.Router) {
		r.Post("/", app.CreateConversation)
		r.Get("/{id}/messages", app.ListMessages)
		r.Post("/{id}/messages", app.GenerateMessage)
	})

	r.Post("/v1/hero-image", app.ComposeHeroImage)

	if app.Files != nil {
		fileServer := stdhttp.FileServer(stdhttp.Dir(app.Files.BasePath()))
		r.Handle("/static/*", stdhttp.StripPrefix("/static/", fileServer))
	}

	return r
}
