package router

import (
	"context"
	"runtime/debug"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	apicontext "github.com/dtroode/socialgraph-server/internal/api/context"
	"github.com/dtroode/socialgraph-server/internal/api/grpc/middleware"
	"github.com/dtroode/socialgraph-server/internal/logger"
)

// ServiceName is the health service name reported next to the overall status.
const ServiceName = "socialgraph.Graph"

// Router represents the operational gRPC surface: health checks and reflection.
type Router struct {
	health         *health.Server
	contextManager *apicontext.Manager
	logger         *logger.Logger
}

// New creates a gRPC Router. Health starts as NOT_SERVING until the first
// successful database probe.
func New(contextManager *apicontext.Manager, logger *logger.Logger) *Router {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Router{
		health:         hs,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the gRPC server with logging and panic recovery interceptors.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.contextManager, r.logger)
	recoveryOpt := recovery.WithRecoveryHandlerContext(r.recoverPanic)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)

	return s
}

// SetServing flips the reported health status.
func (r *Router) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}

	r.health.SetServingStatus("", st)
	r.health.SetServingStatus(ServiceName, st)
}

// Shutdown marks every service NOT_SERVING so clients stop routing traffic.
func (r *Router) Shutdown() {
	r.health.Shutdown()
}

func (r *Router) recoverPanic(ctx context.Context, p any) error {
	r.logger.Error("gRPC handler panicked",
		"panic", p,
		"stack", string(debug.Stack()))
	return status.Error(codes.Internal, "internal error")
}
