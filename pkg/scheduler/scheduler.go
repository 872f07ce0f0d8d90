package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clickpulse/pulse/pkg/observability"
)

// Task is a single periodic unit of work. Errors are logged and swallowed;
// a failing task is retried on its next scheduled run.
type Task func(ctx context.Context) error

// intervalTask is a fixed-delay task registered before Start
type intervalTask struct {
	name         string
	interval     time.Duration
	initialDelay time.Duration
	task         Task
}

// Scheduler owns named periodic tasks. Each task is serialized against its
// own repeated invocation: interval tasks sleep only after the previous run
// returns, and cron tasks use a delay-if-still-running chain. Distinct tasks
// run concurrently with each other.
type Scheduler struct {
	logger *observability.Logger
	cron   *cron.Cron

	mu        sync.Mutex
	intervals []intervalTask
	started   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler
func New(logger *observability.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		cron:   cron.New(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every registers a fixed-delay task: after the initial delay, the task runs,
// then waits interval after each completion before running again. An
// overrunning task therefore delays the next run instead of overlapping it.
func (s *Scheduler) Every(name string, interval, initialDelay time.Duration, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		panic("scheduler: Every called after Start")
	}
	s.intervals = append(s.intervals, intervalTask{
		name:         name,
		interval:     interval,
		initialDelay: initialDelay,
		task:         task,
	})
}

// Cron registers a task on a 5-field cron schedule (e.g. "0 2 * * *").
// Runs are chained with DelayIfStillRunning for the same non-overlap
// guarantee interval tasks have.
func (s *Scheduler) Cron(name, spec string, task Task) error {
	job := cron.NewChain(cron.DelayIfStillRunning(cron.DiscardLogger)).Then(
		cron.FuncJob(func() { s.run(name, task) }),
	)
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("invalid schedule %q for task %s: %w", spec, name, err)
	}
	return nil
}

// Start launches all registered tasks
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, it := range s.intervals {
		it := it
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runLoop(it)
		}()
	}

	s.cron.Start()
}

// Stop cancels all tasks and waits for in-flight runs to finish, or for the
// context to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	cronCtx := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		<-cronCtx.Done()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown timed out: %w", ctx.Err())
	}
}

// runLoop drives a fixed-delay task until the scheduler stops
func (s *Scheduler) runLoop(it intervalTask) {
	timer := time.NewTimer(it.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}

		s.run(it.name, it.task)
		timer.Reset(it.interval)
	}
}

// run executes one task invocation with panic recovery and error logging
func (s *Scheduler) run(name string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(map[string]interface{}{
				"task":  name,
				"panic": fmt.Sprintf("%v", r),
				"stack": string(debug.Stack()),
			}).Error("periodic task panicked")
		}
	}()

	if err := task(s.ctx); err != nil {
		s.logger.WithField("task", name).WithError(err).Error("periodic task failed")
	}
}
