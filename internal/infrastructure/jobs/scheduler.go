package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cardswap.backend/pkg/logger"
)

// Job is one unit of scheduled background work.
type Job interface {
	Name() string
	Run(ctx context.Context)
}

// Scheduler runs jobs on cron schedules. A run that is still in flight when
// its next tick fires is skipped.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler() *Scheduler {
	cl := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

// Register adds job under spec (standard five-field cron or @every).
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := s.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		job.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("register %s job: %w", job.Name(), err)
	}
	logger.Info(context.Background(), "Job registered", zap.String("job", job.Name()), zap.String("schedule", spec))
	return nil
}

// Start begins dispatching. Jobs receive a context cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	logger.Info(ctx, "Job scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	logger.Info(context.Background(), "Job scheduler stopped")
}

// cronLogger routes robfig/cron output through the service logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.GetLogger().Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
