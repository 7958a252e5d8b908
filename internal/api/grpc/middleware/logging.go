package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apicontext "github.com/dtroode/socialgraph-server/internal/api/context"
	"github.com/dtroode/socialgraph-server/internal/logger"
)

// Logging is a unary interceptor that logs gRPC requests and results.
type Logging struct {
	contextManager *apicontext.Manager
	logger         *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(contextManager *apicontext.Manager, logger *logger.Logger) *Logging {
	return &Logging{
		contextManager: contextManager,
		logger:         logger,
	}
}

// HandleGRPC tags the request with an ID and logs method, duration and status.
func (l *Logging) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	requestID := l.contextManager.RequestIDFromMetadata(ctx)
	ctx = l.contextManager.SetRequestIDToContext(ctx, requestID)

	resp, err := handler(ctx, req)

	statusCode := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			statusCode = st.Code()
		} else {
			statusCode = codes.Internal
		}
	}

	args := []any{
		"request_id", requestID.String(),
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", statusCode.String(),
	}

	if err != nil {
		l.logger.Error("gRPC request failed", append(args, "error", err.Error())...)
		return resp, err
	}

	l.logger.Debug("gRPC request completed", args...)

	return resp, nil
}
