package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNewRejectsBadJobs(t *testing.T) {
	noop := func(context.Context) error { return nil }

	if _, err := New([]Job{{ID: 1, Name: "a", Schedule: "not a schedule", Run: noop}}, nil); err == nil {
		t.Error("expected error for bad schedule")
	}
	if _, err := New([]Job{
		{ID: 1, Name: "a", Schedule: "@every 1m", Run: noop},
		{ID: 1, Name: "b", Schedule: "@every 1m", Run: noop},
	}, nil); err == nil {
		t.Error("expected error for duplicate IDs")
	}
	if _, err := New([]Job{{ID: 1, Name: "a", Schedule: "@every 1m"}}, nil); err == nil {
		t.Error("expected error for nil run function")
	}
}

func TestJobsRunInIDOrder(t *testing.T) {
	var mu sync.Mutex
	var order []int

	record := func(id int) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return nil
		}
	}

	// Jobs registered out of order must still run ascending by ID.
	s, err := New([]Job{
		{ID: 3, Name: "third", Schedule: "@every 1ms", Run: record(3)},
		{ID: 1, Name: "first", Schedule: "@every 1ms", Run: record(1)},
		{ID: 2, Name: "second", Schedule: "@every 1ms", Run: record(2)},
	}, nil, WithTick(5*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) >= 3
	})

	mu.Lock()
	first := append([]int(nil), order[:3]...)
	mu.Unlock()
	if first[0] != 1 || first[1] != 2 || first[2] != 3 {
		t.Errorf("run order = %v, want [1 2 3]", first)
	}
}

func TestFailedRunAdvancesAndCounts(t *testing.T) {
	var runs int64
	s, err := New([]Job{{
		ID:       1,
		Name:     "flaky",
		Schedule: "@every 1ms",
		Run: func(context.Context) error {
			atomic.AddInt64(&runs, 1)
			return errors.New("boom")
		},
	}}, nil, WithTick(5*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt64(&runs) >= 2 })

	status := s.Status()[0]
	if status.Runs < 2 {
		t.Errorf("runs = %d, want >= 2", status.Runs)
	}
	if status.Failures != status.Runs {
		t.Errorf("failures = %d, want %d", status.Failures, status.Runs)
	}
}

func TestPanickingJobIsContained(t *testing.T) {
	var after int64
	s, err := New([]Job{
		{ID: 1, Name: "panicky", Schedule: "@every 1ms", Run: func(context.Context) error {
			panic("kaboom")
		}},
		{ID: 2, Name: "steady", Schedule: "@every 1ms", Run: func(context.Context) error {
			atomic.AddInt64(&after, 1)
			return nil
		}},
	}, nil, WithTick(5*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	// The panicking job must not kill the loop or starve the next job.
	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt64(&after) >= 2 })

	status := s.Status()
	if status[0].Failures == 0 {
		t.Error("panicking job recorded no failures")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	s, err := New([]Job{{ID: 1, Name: "noop", Schedule: "@every 1h", Run: func(context.Context) error { return nil }}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if !s.Running() {
		t.Fatal("expected running")
	}

	s.Stop()
	s.Stop()
	if s.Running() {
		t.Fatal("expected stopped")
	}
}

func TestStopWaitsForInFlightJob(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	s, err := New([]Job{{
		ID:       1,
		Name:     "slow",
		Schedule: "@every 1ms",
		Run: func(context.Context) error {
			close(entered)
			<-release
			return nil
		},
	}}, nil, WithTick(5*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	<-entered

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while job still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after job finished")
	}
}

func TestRunsNeverOverlap(t *testing.T) {
	var inFlight, maxInFlight, runs int64

	// The job outlasts both its interval and the tick, so every tick finds
	// it due again; the loop must still never run it concurrently.
	s, err := New([]Job{{
		ID:       1,
		Name:     "slow",
		Schedule: "@every 1ms",
		Run: func(context.Context) error {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				max := atomic.LoadInt64(&maxInFlight)
				if n <= max || atomic.CompareAndSwapInt64(&maxInFlight, max, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			atomic.AddInt64(&runs, 1)
			return nil
		},
	}}, nil, WithTick(5*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitFor(t, 5*time.Second, func() bool { return atomic.LoadInt64(&runs) >= 3 })

	if max := atomic.LoadInt64(&maxInFlight); max != 1 {
		t.Errorf("max concurrent runs = %d, want 1", max)
	}
}

func TestStartRefusesWhileOldLoopDrains(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once

	s, err := New([]Job{{
		ID:       1,
		Name:     "stuck",
		Schedule: "@every 1ms",
		Run: func(context.Context) error {
			once.Do(func() { close(entered) })
			<-release
			return nil
		},
	}}, nil, WithTick(5*time.Millisecond), WithStopTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-entered

	// Stop gives up while the job is still in flight.
	s.Stop()
	if s.Running() {
		t.Fatal("expected stopped state after timed-out Stop")
	}

	if err := s.Start(ctx); err == nil {
		t.Fatal("expected Start to refuse while the old loop drains")
	}

	close(release)
	waitFor(t, 2*time.Second, func() bool { return s.Start(ctx) == nil })
	defer s.Stop()
	if !s.Running() {
		t.Fatal("expected running after the old loop drained")
	}
}

func TestStatusSnapshotsInIDOrder(t *testing.T) {
	noop := func(context.Context) error { return nil }
	s, err := New([]Job{
		{ID: 2, Name: "b", Schedule: "0 9 * * *", Run: noop},
		{ID: 1, Name: "a", Schedule: "@every 1h", Run: noop},
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	status := s.Status()
	if len(status) != 2 || status[0].ID != 1 || status[1].ID != 2 {
		t.Fatalf("unexpected status order: %+v", status)
	}
}
