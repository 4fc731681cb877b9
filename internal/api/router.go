package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/Ranker/internal/broker"
	"github.com/MikeSquared-Agency/Ranker/internal/config"
	"github.com/MikeSquared-Agency/Ranker/internal/metrics"
	"github.com/MikeSquared-Agency/Ranker/internal/store"
	"github.com/MikeSquared-Agency/Ranker/internal/tabular"
)

func NewRouter(s store.Store, b *broker.Broker, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMin))

	rank := NewRankHandler(b, cfg, logger)
	converter := NewCrispHandler(b)
	imports := NewImportHandler(tabular.NewReader(b.Criteria(), tabular.Options{
		Sheet:   cfg.Import.Sheet,
		Aliases: cfg.Import.Aliases,
	}))
	runs := NewRunsHandler(s)
	admin := NewAdminHandler(s, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/criteria", rank.Criteria)

		r.Post("/crisp/convert", converter.Convert)
		r.Post("/crisp/matrix", converter.Matrix)

		r.Post("/rank", rank.Rank)
		r.Post("/rank/saw", rank.SAW)
		r.Post("/rank/wp", rank.WP)

		r.Post("/import", imports.Import)

		r.Get("/runs", runs.List)
		r.Get("/runs/{id}", runs.Get)
		r.Get("/runs/{id}/export", runs.Export)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/stats", admin.Stats)
			r.Delete("/runs/{id}", admin.DeleteRun)
		})
	})

	return r
}

func NewMetricsRouter(m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", m.Handler())
	return r
}
