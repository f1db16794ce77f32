// Package cron schedules the server's periodic jobs.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler runs jobs on cron specs.
type Scheduler struct {
	*cron.Cron
	logger *log.Logger
}

// cronLogger adapts a charm logger to cron.Logger.
type cronLogger struct {
	logger *log.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Error logs an error condition.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

// NewScheduler returns a new Scheduler. Panicking jobs are recovered and
// logged.
func NewScheduler(ctx context.Context) *Scheduler {
	logger := log.FromContext(ctx).WithPrefix("cron")
	cl := cronLogger{logger}
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger: logger,
	}
}

// Shutdown stops the Scheduler and waits up to 30 seconds for running jobs.
func (s *Scheduler) Shutdown() {
	ctx, cancel := context.WithTimeout(s.Cron.Stop(), 30*time.Second)
	defer cancel()
	<-ctx.Done()
}

// Start starts the Scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
}

// AddFunc adds a job to the Scheduler.
func (s *Scheduler) AddFunc(spec string, fn func()) (int, error) {
	id, err := s.Cron.AddFunc(spec, fn)
	return int(id), err
}

// AddNamed adds fn under name. An empty spec disables the job and returns
// an id of zero.
func (s *Scheduler) AddNamed(name, spec string, fn func()) (int, error) {
	if spec == "" {
		s.logger.Debug("job disabled", "name", name)
		return 0, nil
	}

	id, err := s.AddFunc(spec, func() {
		start := time.Now()
		fn()
		s.logger.Debug("job finished", "name", name, "took", time.Since(start))
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}

	s.logger.Debug("job scheduled", "name", name, "spec", spec)
	return id, nil
}

// Remove removes a job from the Scheduler.
func (s *Scheduler) Remove(id int) {
	s.Cron.Remove(cron.EntryID(id))
}
