package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopifake/catalog/internal/service"
	"github.com/shopifake/catalog/pkg/health"
	"github.com/shopifake/catalog/pkg/middleware"
)

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	productService *service.ProductService,
	categoryService *service.CategoryService,
	filterService *service.FilterService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("catalog"))

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	productHandler := NewProductHandler(productService, logger)
	categoryHandler := NewCategoryHandler(categoryService, logger)
	filterHandler := NewFilterHandler(filterService, logger)

	r.Route("/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/", categoryHandler.ListCategories)
			r.Delete("/{id}", categoryHandler.DeleteCategory)
		})

		r.Get("/public", productHandler.ListPublishedProducts)

		r.Post("/", productHandler.CreateProduct)
		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
		r.Patch("/{id}", productHandler.UpdateProduct)
		r.Patch("/{id}/status", productHandler.UpdateStatus)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	r.Route("/api/catalog/filters", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", filterHandler.CreateFilter)
		r.Get("/", filterHandler.ListFilters)
		r.Delete("/{id}", filterHandler.DeleteFilter)
	})

	return r
}
