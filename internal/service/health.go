package service

import (
	"context"
	"time"

	"github.com/dtroode/socialgraph-server/internal/logger"
	"github.com/dtroode/socialgraph-server/internal/model"
)

const healthPingTimeout = 2 * time.Second

// HealthMonitor probes the database and reports serving state transitions.
type HealthMonitor struct {
	pinger   model.Pinger
	interval time.Duration
	onChange func(serving bool)
	logger   *logger.Logger

	known   bool
	serving bool
}

func NewHealthMonitor(pinger model.Pinger, interval time.Duration, onChange func(serving bool), logger *logger.Logger) *HealthMonitor {
	return &HealthMonitor{
		pinger:   pinger,
		interval: interval,
		onChange: onChange,
		logger:   logger,
	}
}

// Check pings once and notifies onChange when the state differs from the last check.
func (h *HealthMonitor) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	err := h.pinger.Ping(pingCtx)
	serving := err == nil

	if h.known && serving == h.serving {
		return serving
	}

	if serving {
		h.logger.Info("Health monitor: database reachable")
	} else {
		h.logger.Error("Health monitor: database unreachable", "error", err.Error())
	}

	h.known = true
	h.serving = serving
	h.onChange(serving)

	return serving
}

// Run checks immediately and then on every tick until ctx is done.
func (h *HealthMonitor) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
