package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/order-pipeline/internal/api/middleware"
)

func NewRouter(handlers *Handlers, metricsHandler http.Handler, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))

	router.Post("/order", handlers.SubmitOrder)

	router.Get("/health", handlers.Health)
	if metricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	return router
}
