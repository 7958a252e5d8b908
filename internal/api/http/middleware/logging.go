package middleware

import (
	"net/http"
	"time"

	apicontext "github.com/dtroode/socialgraph-server/internal/api/context"
	"github.com/dtroode/socialgraph-server/internal/logger"
)

// Logging attaches a request ID to every request and logs its outcome.
type Logging struct {
	contextManager *apicontext.Manager
	logger         *logger.Logger
}

func NewLogging(contextManager *apicontext.Manager, logger *logger.Logger) *Logging {
	return &Logging{
		contextManager: contextManager,
		logger:         logger,
	}
}

// Handle wraps next with request logging.
func (l *Logging) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := l.contextManager.RequestIDFromHeader(r.Header.Get(apicontext.RequestIDHeader))
		r = r.WithContext(l.contextManager.SetRequestIDToContext(r.Context(), requestID))
		w.Header().Set(apicontext.RequestIDHeader, requestID.String())

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		args := []any{
			"request_id", requestID.String(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		if rec.status >= http.StatusInternalServerError {
			l.logger.Error("HTTP request failed", args...)
			return
		}
		l.logger.Info("HTTP request completed", args...)
	})
}
