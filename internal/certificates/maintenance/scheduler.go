package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one maintenance task
type Job func(ctx context.Context) error

type namedJob struct {
	name string
	run  Job
}

// Scheduler runs maintenance jobs on cron schedules. A job that is still
// running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []namedJob
	timeout time.Duration
	logger  *zap.Logger
	ctx     context.Context
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler; timeout bounds a single job run.
func NewScheduler(timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
		logger:  logger,
		ctx:     context.Background(),
	}
}

// Add registers job under name with a cron spec such as "@every 15m".
func (s *Scheduler) Add(name, spec string, job Job) error {
	nj := namedJob{name: name, run: job}
	if _, err := s.cron.AddFunc(spec, func() { s.execute(nj) }); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.jobs = append(s.jobs, nj)
	return nil
}

// RunAll runs every registered job once, in registration order.
func (s *Scheduler) RunAll(ctx context.Context) {
	for _, job := range s.jobs {
		s.run(ctx, job)
	}
}

// Start starts the cron loop. Jobs inherit ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("maintenance scheduler already running")
	}
	s.running = true
	s.ctx = ctx

	s.logger.Info("Starting maintenance scheduler", zap.Int("jobs", len(s.jobs)))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping maintenance scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) execute(job namedJob) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.run(ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job namedJob) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.run(ctx); err != nil {
		s.logger.Error("Maintenance job failed",
			zap.String("job", job.name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	s.logger.Debug("Maintenance job finished",
		zap.String("job", job.name),
		zap.Duration("duration", time.Since(start)))
}
