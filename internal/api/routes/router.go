package routes

import (
	"net/http"

	"github.com/drugreco/drugreco/backend/internal/api/handlers"
	"github.com/drugreco/drugreco/backend/internal/api/middleware"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/observability"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	interactionHandler *handlers.InteractionHandler

	updateHandler *handlers.UpdateHandler

	drugHandler *handlers.DrugHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router

func NewRouter(

	interactionHandler *handlers.InteractionHandler,

	updateHandler *handlers.UpdateHandler,

	drugHandler *handlers.DrugHandler,

	cacheMiddleware *middleware.CacheMiddleware,

	metrics *observability.Metrics,

) *Router {

	return &Router{

		mux: http.NewServeMux(),

		interactionHandler: interactionHandler,

		updateHandler: updateHandler,

		drugHandler: drugHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
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

	// Interaction check endpoints

	r.mux.HandleFunc("POST /api/clinical/interactions/check", r.interactionHandler.CheckInteractions)

	r.mux.HandleFunc("GET /api/clinical/interactions/realtime/{drug1Id}/{drug2Id}", r.interactionHandler.RealtimeCheck)

	r.mux.HandleFunc("POST /api/clinical/alerts/check", r.interactionHandler.CheckAlerts)

	r.mux.HandleFunc("GET /api/clinical/stats", r.interactionHandler.GetStats)

	// Update pipeline endpoints

	r.mux.HandleFunc("POST /api/clinical/update/trigger", r.updateHandler.TriggerUpdate)

	r.mux.HandleFunc("GET /api/clinical/status", r.updateHandler.GetStatus)

	// Drug catalog endpoints

	r.mux.HandleFunc("GET /api/clinical/drugs/suggest", r.drugHandler.SuggestDrugs)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
