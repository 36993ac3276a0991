// internal/schedule/schedule.go
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/noottools/launch-engine/internal/engine"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Options configure the background sweeps.
type Options struct {
	// ObserveInterval is how often locked escrows are re-observed.
	ObserveInterval time.Duration
	// BurnSweepInterval is how often the trading-fee bucket is checked.
	BurnSweepInterval time.Duration
	// BurnSweepThreshold is the quote-currency balance that triggers a burn.
	BurnSweepThreshold float64
	// BurnTokenID selects the asset bought and burned by the fee sweep.
	// Empty disables the fee sweep.
	BurnTokenID string
}

// Scheduler drives the periodic escrow observation and fee-burn sweeps.
type Scheduler struct {
	cron   *cron.Cron
	engine *engine.Engine
	opts   Options
	logger *zap.Logger
}

func New(eng *engine.Engine, opts Options, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		engine: eng,
		opts:   opts,
		logger: logger.Named("scheduler"),
	}
}

// Start registers the sweep jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	observeSpec := fmt.Sprintf("@every %s", s.opts.ObserveInterval)
	if _, err := s.cron.AddFunc(observeSpec, func() {
		if err := s.engine.SweepEscrows(ctx); err != nil {
			s.logger.Error("escrow sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("escrow sweep job: %w", err)
	}

	if s.opts.BurnTokenID != "" {
		burnSpec := fmt.Sprintf("@every %s", s.opts.BurnSweepInterval)
		if _, err := s.cron.AddFunc(burnSpec, func() {
			err := s.engine.SweepTradingFees(ctx, s.opts.BurnTokenID, s.opts.BurnSweepThreshold)
			if err != nil {
				s.logger.Error("trading-fee sweep failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("fee sweep job: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.Duration("observe_interval", s.opts.ObserveInterval),
		zap.Duration("burn_sweep_interval", s.opts.BurnSweepInterval))
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}
