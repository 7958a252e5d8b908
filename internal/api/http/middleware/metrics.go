package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dtroode/socialgraph-server/internal/metrics"
)

// Metrics records request counts and latency labelled by route template.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := metrics.TrackInFlight()
		defer done()

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		metrics.ObserveHTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}
