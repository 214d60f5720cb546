// Package scheduler runs delayed one-shot tasks, such as deleting a video
// message some minutes after it was sent. Tasks are keyed so that a later
// Schedule for the same key replaces the earlier one. Pending tasks live in
// memory only and are lost on restart.
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type entry struct {
	token uuid.UUID
	job   uuid.UUID
}

// Scheduler wraps a gocron scheduler with keyed one-time jobs
type Scheduler struct {
	cron   gocron.Scheduler
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]entry
}

// New creates and starts a scheduler
func New(logger *zap.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(gocron.WithLogger(newZapLogger(logger)))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	cron.Start()

	return &Scheduler{
		cron:   cron,
		logger: logger,
		jobs:   make(map[string]entry),
	}, nil
}

// Schedule runs fn once after the delay. A task already pending under key is
// cancelled first.
func (s *Scheduler) Schedule(key string, after time.Duration, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(key)

	at := gocron.OneTimeJobStartImmediately()
	if after > 0 {
		at = gocron.OneTimeJobStartDateTime(time.Now().Add(after))
	}

	token := uuid.New()
	job, err := s.cron.NewJob(
		gocron.OneTimeJob(at),
		gocron.NewTask(func() {
			if !s.claim(key, token) {
				return
			}
			fn()
		}),
		gocron.WithName(key),
	)
	if err != nil {
		s.logger.Error("Failed to schedule task", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to schedule %q: %w", key, err)
	}

	s.jobs[key] = entry{token: token, job: job.ID()}
	s.logger.Debug("Task scheduled", zap.String("key", key), zap.Duration("after", after))
	return nil
}

// claim removes the entry for key if it still belongs to token. A task that
// was replaced or cancelled after gocron picked it up must not run.
func (s *Scheduler) claim(key string, token uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[key]
	if !ok || e.token != token {
		return false
	}
	delete(s.jobs, key)
	return true
}

// Cancel drops the task pending under key. It reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(key)
}

func (s *Scheduler) cancelLocked(key string) bool {
	e, ok := s.jobs[key]
	if !ok {
		return false
	}
	delete(s.jobs, key)

	if err := s.cron.RemoveJob(e.job); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		s.logger.Warn("Failed to remove job", zap.Error(err), zap.String("key", key))
	}
	return true
}

// Pending returns how many tasks have not run yet
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Stop shuts the scheduler down; pending tasks never run
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	s.jobs = make(map[string]entry)
	s.mu.Unlock()

	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}
