package routes

import (
	"net/http"

	"github.com/circletel/coverage-engine/internal/api/handlers"
	"github.com/circletel/coverage-engine/internal/api/middleware"
	"github.com/circletel/coverage-engine/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	coverageHandler    *handlers.CoverageHandler
	packageHandler     *handlers.PackageHandler
	dealHandler        *handlers.DealHandler
	geolocationHandler *handlers.GeolocationHandler
	analyticsHandler   *handlers.AnalyticsHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	coverageHandler *handlers.CoverageHandler,
	packageHandler *handlers.PackageHandler,
	dealHandler *handlers.DealHandler,
	geolocationHandler *handlers.GeolocationHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		coverageHandler:    coverageHandler,
		packageHandler:     packageHandler,
		dealHandler:        dealHandler,
		geolocationHandler: geolocationHandler,
		analyticsHandler:   analyticsHandler,
		cacheMiddleware:    cacheMiddleware,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Coverage endpoints
	r.mux.HandleFunc("GET /api/coverage/products", r.coverageHandler.GetProducts)
	r.mux.HandleFunc("POST /api/coverage/products", r.coverageHandler.GetProducts)
	r.mux.HandleFunc("GET /api/coverage/check", r.coverageHandler.CheckCoverage)
	r.mux.HandleFunc("POST /api/coverage/check", r.coverageHandler.CheckCoverage)
	r.mux.HandleFunc("GET /api/coverage/geo-validate", r.coverageHandler.ValidateLocation)
	r.mux.HandleFunc("POST /api/coverage/geo-validate", r.coverageHandler.ValidateLocation)

	// Catalogue endpoints
	r.mux.HandleFunc("GET /api/packages", r.packageHandler.ListPackages)
	r.mux.HandleFunc("GET /api/packages/search", r.packageHandler.SearchPackages)
	r.mux.HandleFunc("GET /api/packages/{id}", r.packageHandler.GetPackage)
	r.mux.HandleFunc("POST /api/admin/packages/reindex", r.packageHandler.ReindexPackages)

	// Deal endpoints
	r.mux.HandleFunc("POST /api/deals/recommendations", r.dealHandler.RecommendDeals)
	r.mux.HandleFunc("GET /api/deals/{id}", r.dealHandler.GetDeal)

	// Geolocation endpoints
	r.mux.HandleFunc("GET /api/geocode", r.geolocationHandler.Geocode)
	r.mux.HandleFunc("GET /api/reverse-geocode", r.geolocationHandler.ReverseGeocode)

	// Analytics endpoints
	if r.analyticsHandler != nil {
		r.mux.HandleFunc("GET /api/analytics/coverage-checks", r.analyticsHandler.RecentCoverageChecks)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
