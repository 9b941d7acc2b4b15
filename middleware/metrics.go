package middleware

import (
	"net/http"
	"time"

	"github.com/Henryno111/deposit-stx/observability"

	"github.com/gorilla/mux"
)

// MetricsMiddleware records request counts and latency per route template, so
// /v1/tasks/{id} is one series regardless of id. It must run as router
// middleware for the matched route to be known.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		observability.RecordHTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}
