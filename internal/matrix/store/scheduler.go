package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/creativeops/matrixsync/internal/common"
	"github.com/creativeops/matrixsync/internal/logging"
)

// Syncer is what the scheduler drives. *Store satisfies it.
type Syncer interface {
	SyncFromRemote(ctx context.Context) error
}

// Scheduler triggers a background refresh from the remote store on a fixed
// period. Each tick is independent: a failed tick is logged and the
// scheduler keeps running.
type Scheduler struct {
	syncer Syncer
	log    logging.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewScheduler(syncer Syncer, log logging.Logger) *Scheduler {
	return &Scheduler{syncer: syncer, log: log}
}

// Start launches the periodic refresh. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})

	go s.run(ctx, interval, s.stopCh)
}

// Stop cancels the periodic refresh. A tick already in flight finishes on
// its own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

func (s *Scheduler) run(ctx context.Context, interval time.Duration, stopCh chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			err := s.syncer.SyncFromRemote(ctx)
			switch {
			case err == nil:
				s.log.Debug(ctx, "background sync complete")
			case errors.Is(err, common.ErrPendingChanges):
				s.log.Warn(ctx, "background sync skipped", "reason", err)
			default:
				s.log.Error(ctx, "background sync failed", "error", err)
			}
		}
	}
}
