package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/model"
)

// Reconciler runs one graph reconciliation pass.
type Reconciler interface {
	Run(ctx context.Context) (model.ReconcileReport, error)
}

// ReconcileScheduler triggers reconciliation on a cron schedule. A pass that
// is still running when the next tick fires makes that tick a no-op.
type ReconcileScheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	logger     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewReconcileScheduler validates schedule ("@every 1h", "0 3 * * *", ...).
func NewReconcileScheduler(reconciler Reconciler, schedule string, log *logger.Logger) (*ReconcileScheduler, error) {
	cl := cronLogger{logger: log}
	s := &ReconcileScheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		reconciler: reconciler,
		logger:     log,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start begins firing the schedule in the background.
func (s *ReconcileScheduler) Start() {
	s.logger.Info("Reconcile scheduler: started")
	s.cron.Start()
}

// Stop cancels a running pass and waits for it to return or ctx to expire.
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.cancel()

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("reconcile scheduler did not stop: %w", ctx.Err())
	}
}

func (s *ReconcileScheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}

	report, err := s.reconciler.Run(s.ctx)
	if err != nil {
		s.logger.Error("Reconcile scheduler: pass failed", "error", err.Error())
		return
	}

	s.logger.Debug("Reconcile scheduler: pass done",
		"repairs", len(report.Repairs),
		"conflicts", report.Conflicts)
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	logger *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
