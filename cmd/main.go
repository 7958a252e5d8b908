package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	apicontext "github.com/dtroode/socialgraph-server/internal/api/context"
	grpcrouter "github.com/dtroode/socialgraph-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/socialgraph-server/internal/api/grpc/server"
	httprouter "github.com/dtroode/socialgraph-server/internal/api/http/router"
	httpserver "github.com/dtroode/socialgraph-server/internal/api/http/server"
	"github.com/dtroode/socialgraph-server/internal/cache"
	"github.com/dtroode/socialgraph-server/internal/config"
	"github.com/dtroode/socialgraph-server/internal/jobs"
	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/model"
	"github.com/dtroode/socialgraph-server/internal/repository/postgres"
	"github.com/dtroode/socialgraph-server/internal/server"
	"github.com/dtroode/socialgraph-server/internal/service"
	storage "github.com/dtroode/socialgraph-server/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	relationRepo := postgres.NewRelationRepository(db)
	publicationRepo := postgres.NewPublicationRepository(db)

	profileCache, closeCache := newProfileCache(ctx, cfg.Redis, logger)
	defer closeCache()

	archive := newReportArchive(ctx, cfg.Storage, logger)

	ledger := service.NewLedger(userRepo, relationRepo, profileCache, logger)
	profile := service.NewProfile(userRepo, publicationRepo, profileCache, logger)
	reconciler := service.NewReconciler(userRepo, relationRepo, profileCache, archive, logger)

	ctxMgr := apicontext.NewManager()

	httpRouter := httprouter.New(ledger, profile, reconciler, ctxMgr, logger)
	httpSrv := httpserver.NewHTTPServer(
		httpRouter.Register(),
		fmt.Sprintf(":%s", cfg.HTTP.Port),
		cfg.HTTP.ReadTimeout,
		cfg.HTTP.WriteTimeout,
	)

	grpcRouter := grpcrouter.New(ctxMgr, logger)
	grpcSrv := grpcserver.NewGRPCServer(grpcRouter.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	monitor := service.NewHealthMonitor(db, cfg.Health.Interval, grpcRouter.SetServing, logger)

	var scheduler *jobs.ReconcileScheduler
	if cfg.Reconcile.Enabled {
		scheduler, err = jobs.NewReconcileScheduler(reconciler, cfg.Reconcile.Schedule, logger)
		if err != nil {
			logger.Fatal("failed to schedule reconciliation", "error", err)
		}
		scheduler.Start()
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()

	httpSL := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	grpcSL := server.NewPlainListener()

	for _, run := range []struct {
		srv model.Server
		sl  model.SecurityLayer
	}{
		{srv: httpSrv, sl: httpSL},
		{srv: grpcSrv, sl: grpcSL},
	} {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(run.srv, run.sl)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	grpcRouter.Shutdown()

	if err := httpSrv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpSrv.Address())
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Error("error during scheduler shutdown", "error", err)
		}
	}
	if err := grpcSrv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", grpcSrv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// newProfileCache returns nil when Redis is not configured. An unreachable
// Redis is logged and the service runs without a cache.
func newProfileCache(ctx context.Context, cfg config.Redis, logger *logger.Logger) (model.ProfileCache, func()) {
	if !cfg.Enabled() {
		logger.Info("profile cache disabled")
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}

	c := cache.NewProfileCache(client, cfg.ProfileTTL)
	if err := c.Ping(ctx); err != nil {
		logger.Error("profile cache unavailable, continuing without it", "error", err)
		closeClient()
		return nil, func() {}
	}

	logger.Info("profile cache enabled", "addr", cfg.Addr, "ttl", cfg.ProfileTTL.String())
	return c, closeClient
}

// newReportArchive returns nil when object storage is not configured.
func newReportArchive(ctx context.Context, cfg config.Storage, logger *logger.Logger) model.ReportArchive {
	if !cfg.Enabled() {
		logger.Info("reconcile report archive disabled")
		return nil
	}

	archive, err := storage.Dial(ctx, cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, cfg.UseSSL)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	return archive
}
