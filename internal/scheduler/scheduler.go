// Package scheduler runs the periodic jobs of the agent system on a single
// goroutine. Jobs run synchronously in ascending ID order when due; a slow
// job delays later jobs rather than overlapping them.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HLKC779/financial-agents/internal/metrics"
	"github.com/HLKC779/financial-agents/internal/system"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// DefaultTick is how often due jobs are checked.
const DefaultTick = time.Minute

// StopTimeout bounds how long Stop waits for an in-flight job.
const StopTimeout = 30 * time.Second

var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job is a named periodic task. Schedule accepts cron expressions and
// "@every" durations.
type Job struct {
	ID       int
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// JobStatus is a snapshot of one job's state.
type JobStatus struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextDue  time.Time `json:"next_due"`
	Runs     uint64    `json:"runs"`
	Failures uint64    `json:"failures"`
}

type job struct {
	Job
	spec     cron.Schedule
	nextDue  time.Time
	runs     uint64
	failures uint64
}

// Scheduler drives the job table.
type Scheduler struct {
	tick        time.Duration
	stopTimeout time.Duration
	now         func() time.Time
	log         *logger.Logger

	mu      sync.Mutex
	jobs    []*job
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTick overrides the tick interval, used in tests.
func WithTick(d time.Duration) Option {
	return func(s *Scheduler) { s.tick = d }
}

// WithClock overrides the clock, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithStopTimeout overrides how long Stop waits for an in-flight job.
func WithStopTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.stopTimeout = d }
}

// New constructs a scheduler over the given jobs. Job IDs must be unique and
// schedules must parse.
func New(jobs []Job, log *logger.Logger, opts ...Option) (*Scheduler, error) {
	if log == nil {
		log = logger.NewDefault("scheduler")
	}
	s := &Scheduler{
		tick:        DefaultTick,
		stopTimeout: StopTimeout,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}

	seen := make(map[int]struct{}, len(jobs))
	for _, j := range jobs {
		if j.Run == nil {
			return nil, fmt.Errorf("job %d (%s): no run function", j.ID, j.Name)
		}
		if _, dup := seen[j.ID]; dup {
			return nil, fmt.Errorf("duplicate job ID %d", j.ID)
		}
		seen[j.ID] = struct{}{}

		spec, err := scheduleParser.Parse(j.Schedule)
		if err != nil {
			return nil, fmt.Errorf("job %d (%s): parse schedule %q: %w", j.ID, j.Name, j.Schedule, err)
		}
		s.jobs = append(s.jobs, &job{Job: j, spec: spec})
	}
	sort.Slice(s.jobs, func(i, k int) bool { return s.jobs[i].ID < s.jobs[k].ID })

	return s, nil
}

// Start launches the scheduling loop. Starting a running scheduler is a
// no-op. After a Stop that timed out, Start refuses until the old loop has
// drained; otherwise a job could run in two loops at once.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if s.doneCh != nil {
		select {
		case <-s.doneCh:
		default:
			return fmt.Errorf("previous scheduler loop still draining")
		}
	}

	now := s.now()
	for _, j := range s.jobs {
		j.nextDue = j.spec.Next(now)
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.loop(ctx, s.stopCh, s.doneCh)

	s.log.WithField("jobs", len(s.jobs)).Info("scheduler started")
	return nil
}

// Stop halts the loop and waits up to StopTimeout for an in-flight job to
// finish. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	select {
	case <-done:
		s.log.Info("scheduler stopped")
	case <-time.After(s.stopTimeout):
		s.log.Warn("scheduler stop timed out with a job still running")
	}
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status snapshots every job in ID order.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		statuses = append(statuses, JobStatus{
			ID:       j.ID,
			Name:     j.Name,
			Schedule: j.Schedule,
			NextDue:  j.nextDue,
			Runs:     j.runs,
			Failures: j.failures,
		})
	}
	return statuses
}

func (s *Scheduler) loop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runDue(ctx, stopCh)
		}
	}
}

// runDue executes every due job in ID order, checking the stop signal
// between jobs so a stop request does not wait for the rest of the sweep.
func (s *Scheduler) runDue(ctx context.Context, stopCh chan struct{}) {
	now := s.now()
	for _, j := range s.jobs {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		due := !j.nextDue.After(now)
		s.mu.Unlock()
		if !due {
			continue
		}

		s.runOne(ctx, j)
	}
}

func (s *Scheduler) runOne(ctx context.Context, j *job) {
	start := s.now()
	err := s.safeRun(ctx, j)
	elapsed := time.Since(start)

	s.mu.Lock()
	// The due time advances by one interval whether the run succeeded or
	// not; a failed run is not retried early and a late run is not skipped.
	j.nextDue = j.spec.Next(j.nextDue)
	j.runs++
	if err != nil {
		j.failures++
	}
	s.mu.Unlock()

	metrics.RecordScheduledRun(j.Name, elapsed, err == nil)
	if err != nil {
		s.log.WithField("job", j.Name).WithError(err).Error("scheduled job failed")
	} else {
		s.log.WithField("job", j.Name).WithField("elapsed", elapsed).Debug("scheduled job completed")
	}
}

// Service wraps the scheduler in the lifecycle interface the registry
// manages.
func (s *Scheduler) Service() system.Service { return schedulerService{s} }

type schedulerService struct{ s *Scheduler }

func (w schedulerService) Name() string                    { return "scheduler" }
func (w schedulerService) Start(ctx context.Context) error { return w.s.Start(ctx) }
func (w schedulerService) Stop(context.Context) error      { w.s.Stop(); return nil }

func (s *Scheduler) safeRun(ctx context.Context, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return j.Run(ctx)
}
