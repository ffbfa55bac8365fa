package internal

import (
	"context"
	"time"
)

// Sweeper drives the periodic expiry sweep. It is owned by the
// process's composition root, not by the Manager, so the manager stays
// testable without a live scheduler. Manual sweeps and the ticker both
// go through Manager.SweepExpired and therefore the same lock.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
}

// NewSweeper creates a sweeper that fires every interval.
func NewSweeper(manager *Manager, interval time.Duration) *Sweeper {
	return &Sweeper{manager: manager, interval: interval}
}

// Run blocks, sweeping at each tick, until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	Logger.Infof("Started cleanup scheduler: interval=%s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			Logger.Info("Cleanup scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.manager.SweepExpired(); err != nil {
				Logger.Errorf("Scheduled sweep failed: %v", err)
			}
		}
	}
}
