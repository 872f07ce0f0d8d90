package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clickpulse/pulse/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestScheduler_Every_Runs(t *testing.T) {
	s := New(testLogger())

	var runs int64
	s.Every("counter", 10*time.Millisecond, 0, func(ctx context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})

	s.Start()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	got := atomic.LoadInt64(&runs)
	if got < 2 {
		t.Errorf("Task ran %d times, want at least 2", got)
	}
}

func TestScheduler_Every_InitialDelay(t *testing.T) {
	s := New(testLogger())

	var runs int64
	s.Every("delayed", 10*time.Millisecond, 500*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	})

	s.Start()
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt64(&runs); got != 0 {
		t.Errorf("Task ran %d times before initial delay elapsed, want 0", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestScheduler_Every_NoOverlap(t *testing.T) {
	s := New(testLogger())

	var active, maxActive int64
	s.Every("slow", time.Millisecond, 0, func(ctx context.Context) error {
		n := atomic.AddInt64(&active, 1)
		if n > atomic.LoadInt64(&maxActive) {
			atomic.StoreInt64(&maxActive, n)
		}
		// Overrun the interval on purpose
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return nil
	})

	s.Start()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if got := atomic.LoadInt64(&maxActive); got > 1 {
		t.Errorf("Task overlapped itself: %d concurrent runs", got)
	}
}

func TestScheduler_Every_ErrorDoesNotStopTask(t *testing.T) {
	s := New(testLogger())

	var runs int64
	s.Every("failing", 5*time.Millisecond, 0, func(ctx context.Context) error {
		atomic.AddInt64(&runs, 1)
		return errors.New("transient failure")
	})

	s.Start()
	time.Sleep(60 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if got := atomic.LoadInt64(&runs); got < 2 {
		t.Errorf("Failing task ran %d times, want at least 2 (errors must not stop the task)", got)
	}
}

func TestScheduler_Every_PanicRecovered(t *testing.T) {
	s := New(testLogger())

	var runs int64
	s.Every("panicking", 5*time.Millisecond, 0, func(ctx context.Context) error {
		atomic.AddInt64(&runs, 1)
		panic("boom")
	})

	s.Start()
	time.Sleep(60 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	if got := atomic.LoadInt64(&runs); got < 2 {
		t.Errorf("Panicking task ran %d times, want at least 2 (panics must be recovered)", got)
	}
}

func TestScheduler_Cron_InvalidSpec(t *testing.T) {
	s := New(testLogger())

	err := s.Cron("bad", "not a cron spec", func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("Expected error for invalid cron spec")
	}
}

func TestScheduler_Stop_CancelsTaskContext(t *testing.T) {
	s := New(testLogger())

	started := make(chan struct{})
	canceled := make(chan struct{})
	s.Every("blocking", time.Millisecond, 0, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	})

	s.Start()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("Task context was not canceled on Stop")
	}
}
