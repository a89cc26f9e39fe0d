package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const passTimeout = 60 * time.Second

// PassRunner is what the scheduler drives; in production it is the
// alert evaluator.
type PassRunner interface {
	RunPass(ctx context.Context) error
}

// Scheduler runs evaluation passes on a cron schedule. The expression is
// operator-supplied (default every 5 minutes); overlap protection lives in
// the runner itself.
type Scheduler struct {
	runner PassRunner
	spec   string

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func New(runner PassRunner, spec string) *Scheduler {
	if spec == "" {
		spec = "*/5 * * * *"
	}
	return &Scheduler{runner: runner, spec: spec}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		log.Warn("scheduler already running")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}
	c.Start()

	s.cron = c
	s.running = true
	log.Infof("alert scheduler started (schedule: %s)", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	log.Info("alert scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow triggers a pass outside the normal schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	log.Info("manual evaluation pass triggered")
	return s.runner.RunPass(ctx)
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()
	if err := s.runner.RunPass(ctx); err != nil {
		log.Errorf("scheduled evaluation pass failed: %v", err)
	}
}
