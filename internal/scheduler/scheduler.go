package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RunFunc performs one complete investment session.
type RunFunc func(ctx context.Context)

// Scheduler repeats whole sessions on a cron schedule. Runs never overlap:
// a tick that fires while the previous session is still buying is skipped.
type Scheduler struct {
	Cron *cron.Cron
	Run  RunFunc
	Ctx  context.Context
	log  logrus.FieldLogger
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, run RunFunc, log logrus.FieldLogger) *Scheduler {
	cronLog := cron.PrintfLogger(log)
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		Run: run,
		Ctx: ctx,
		log: log,
	}
}

// Register adds the session job for spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runSession); err != nil {
		return fmt.Errorf("register session task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running session to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow executes a session immediately, outside the schedule.
func (s *Scheduler) RunNow() {
	s.runSession()
}

func (s *Scheduler) runSession() {
	if s.Ctx.Err() != nil {
		return
	}
	s.log.Info("running scheduled investment session")
	s.Run(s.Ctx)
}
