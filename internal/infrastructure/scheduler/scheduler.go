package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/custodianhq/custos/internal/domain"
	"github.com/custodianhq/custos/internal/schedule"
)

// Executor runs one backup for a job at its scheduled time.
type Executor interface {
	Execute(ctx context.Context, job domain.Job, scheduledAt time.Time) error
}

type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Scheduler owns one armed timer per job. A job is re-armed only after its
// run completes, so a single job never has two runs in flight. The timer
// table and the running set are the only cross-job shared state; one mutex
// guards both and is held only for bookkeeping, never across a run.
type Scheduler struct {
	executor Executor
	logger   Logger

	mu      sync.Mutex
	timers  map[int]*time.Timer
	running map[int]struct{}
	stopped bool
	wg      sync.WaitGroup
}

func New(executor Executor, logger Logger) *Scheduler {
	return &Scheduler{
		executor: executor,
		logger:   logger,
		timers:   make(map[int]*time.Timer),
		running:  make(map[int]struct{}),
	}
}

// Start arms a timer for every job. Cancelling ctx makes in-flight runs
// skip their destructive tail and stops rescheduling.
func (s *Scheduler) Start(ctx context.Context, jobs []domain.Job) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range jobs {
		s.arm(ctx, job, now)
	}
}

// arm computes the next deadline and sets a one-shot timer for it.
// Callers must hold mu.
func (s *Scheduler) arm(ctx context.Context, job domain.Job, now time.Time) {
	if s.stopped {
		return
	}
	next := schedule.NextRun(job.Frequency, job.Anchor, now)
	s.logger.Infof("[%s] Next run at %s", job.Name, next.Format(time.DateTime))
	s.timers[job.ID] = time.AfterFunc(time.Until(next), func() {
		s.fire(ctx, job, next)
	})
}

func (s *Scheduler) fire(ctx context.Context, job domain.Job, scheduledAt time.Time) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.running[job.ID] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, job.ID)
		s.mu.Unlock()
		s.wg.Done()
	}()

	if err := s.executor.Execute(ctx, job, scheduledAt); err != nil {
		s.logger.Errorf("[%s] Run failed: %v", job.Name, err)
	}

	if ctx.Err() != nil {
		s.logger.Warnf("[%s] Shutdown requested, not rescheduling", job.Name)
		return
	}

	s.mu.Lock()
	s.arm(ctx, job, time.Now())
	s.mu.Unlock()
}

// Shutdown disarms every timer and blocks until no run is in flight. It
// does not bound the wait: a backup process that never exits will hold
// shutdown open rather than be abandoned mid-flight.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
