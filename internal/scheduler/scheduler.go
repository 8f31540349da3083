package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/coursecatalog/internal/logger"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// GetNextRunTime returns the next activation of schedule after now.
func GetNextRunTime(schedule string) (time.Time, error) {
	s, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(time.Now()), nil
}

// Job is one periodic piece of work.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs on their cron schedules. A job still running when its
// next activation comes is skipped for that activation.
type Scheduler struct {
	jobs []Job
	log  *logger.Logger

	cron       *cron.Cron
	entries    map[string]cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func New(log *logger.Logger, jobs ...Job) *Scheduler {
	log = log.Named("scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		jobs:    jobs,
		log:     log,
		entries: make(map[string]cron.EntryID),
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Start validates every schedule and begins running the jobs. Jobs receive a
// context derived from ctx that is cancelled on Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if len(s.jobs) == 0 {
		s.log.Info("no jobs configured, scheduler disabled")
		return nil
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	for _, job := range s.jobs {
		if err := ValidateCronSchedule(job.Schedule); err != nil {
			s.cancelFunc()
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Name, err)
		}

		entryID, err := s.cron.AddFunc(job.Schedule, s.wrap(s.ctx, job))
		if err != nil {
			s.cancelFunc()
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		s.entries[job.Name] = entryID

		nextRun, _ := GetNextRunTime(job.Schedule)
		s.log.Info("job scheduled", "job", job.Name, "schedule", job.Schedule, "next_run", nextRun)
	}

	s.cron.Start()
	s.isRunning = true

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop stops accepting activations and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cancelFunc()
	for name, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
	s.isRunning = false

	s.log.Info("scheduler stopped")
}

// RunNow triggers the named job immediately in the background.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, job := range s.jobs {
		if job.Name == name {
			go s.wrap(ctx, job)()
			return nil
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

// IsRunning returns whether the scheduler is active
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the named job runs next, or nil when the
// scheduler is stopped.
func (s *Scheduler) GetNextRunTime(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	id, ok := s.entries[name]
	if !ok {
		return nil
	}
	t := s.cron.Entry(id).Next
	return &t
}

// wrap must not take s.mu: Stop holds it while waiting for running jobs.
func (s *Scheduler) wrap(ctx context.Context, job Job) func() {
	return func() {
		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.log.Error("job failed", "job", job.Name, "error", err)
			return
		}
		s.log.Debug("job finished", "job", job.Name, "duration", time.Since(start).Round(time.Millisecond))
	}
}

// cronLogger implements cron.Logger on top of the application logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
