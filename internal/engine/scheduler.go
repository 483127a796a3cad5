package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler drives the engine on a fixed cadence. Ticks run on a single
// goroutine and never overlap: a slow tick simply delays the next one, so
// two ticks can never fire the same reminder twice.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	logger   *zerolog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler. The interval must stay at or below a
// minute so a due minute is never stepped over.
func NewScheduler(engine *Engine, interval time.Duration, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the tick loop. The first tick runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info().Dur("interval", s.interval).Msg("reminder scheduler started")
}

// Stop shuts the loop down and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("reminder scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()
	s.engine.Tick(tickCtx, time.Now().UTC())
}

// RunNow forces one immediate tick, useful for tests and manual pokes.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.tick(ctx)
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
