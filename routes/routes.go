package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Henryno111/deposit-stx/controllers"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/services"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "deposit-stx-api",
	})
}

// Handler wraps the router with the global middleware chain:
// request id -> logging -> recovery -> security headers -> max body -> timeout.
func Handler(router http.Handler) http.Handler {
	return middleware.RequestIDMiddleware(
		middleware.RequestLogMiddleware(
			middleware.RecoveryMiddleware(
				middleware.SecurityHeadersMiddleware(
					middleware.MaxBodyMiddleware(
						middleware.TimeoutMiddleware(router),
					),
				),
			),
		),
	)
}

func InitRouter(svc *services.Services) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.Use(middleware.MetricsMiddleware)

	// CORS origins from CORS_ALLOWED_ORIGINS (comma-separated) plus local defaults
	origins := []string{
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()

	// Add catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Public ledger info, polled by the deposit UI
	publicLimiter := middleware.NewIPRateLimiter(600, 5*time.Minute)
	info := controllers.NewInfoController(svc)
	api.Handle("/pool", publicLimiter.Middleware(http.HandlerFunc(info.PoolStats))).Methods(http.MethodGet)
	api.Handle("/info", publicLimiter.Middleware(http.HandlerFunc(info.Info))).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	UsersRoutes(api, svc, publicLimiter)

	SetAdminRoutes(api, svc)

	return r
}
