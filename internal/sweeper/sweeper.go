// Package sweeper runs the recurring expiry pass that releases stock
// held by reservations whose order never got paid.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/app"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

// SweepRunner is the single operation the loop drives.
type SweepRunner interface {
	RunExpirySweep(ctx context.Context) (app.SweepResult, error)
}

type Sweeper struct {
	svc      SweepRunner
	interval time.Duration
	logger   *slog.Logger
}

func New(svc SweepRunner, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled. A failed pass
// is logged and retried on the next tick; transient store conflicts
// (e.g. losing a lock race against a pay call) are expected and logged
// at debug level. State lives entirely in the store, so restarts need
// no recovery beyond the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("expiry sweeper started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	result, err := s.svc.RunExpirySweep(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrTransient) {
			s.logger.Debug("sweep lost a lock race, will retry next tick", "error", err)
			return
		}
		s.logger.Error("expiry sweep failed", "error", err)
		return
	}
	if result.ReservationsExpired > 0 {
		s.logger.Info("expired reservations cleaned up",
			"reservations", result.ReservationsExpired,
			"orders_cancelled", result.OrdersCancelled,
		)
	}
}
