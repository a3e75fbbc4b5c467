// Package scheduler runs daily generation for every account on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/abdulachik/rednotebot/internal/sink"
	"github.com/abdulachik/rednotebot/internal/workflow"
)

// ComponentName is the health key for the scheduler itself.
const ComponentName = "scheduler"

// Generator is the part of the app the scheduler drives.
type Generator interface {
	AccountIDs() []string
	Generate(ctx context.Context, accountID string, mode workflow.Mode) (*sink.Result, error)
}

// Config holds scheduler configuration.
type Config struct {
	// Spec is a standard 5-field cron expression, e.g. "0 17 * * *".
	Spec      string
	Mode      workflow.Mode
	Generator Generator
	Health    *Health // optional
}

// Scheduler triggers a generation cycle across all accounts on a schedule.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	mode   workflow.Mode
	gen    Generator
	health *Health
	entry  cron.EntryID
}

// New creates a scheduler. The cron expression is validated here.
func New(cfg Config) (*Scheduler, error) {
	health := cfg.Health
	if health == nil {
		health = NewHealth()
	}

	s := &Scheduler{
		cron:   cron.New(),
		spec:   cfg.Spec,
		mode:   cfg.Mode,
		gen:    cfg.Generator,
		health: health,
	}

	id, err := s.cron.AddFunc(cfg.Spec, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Spec, err)
	}
	s.entry = id

	return s, nil
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}

// Run starts the cron loop and blocks until ctx is cancelled. Running jobs
// are allowed to finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	slog.Info("scheduler started", "spec", s.spec, "mode", s.mode, "next_run", s.cron.Entry(s.entry).Next)
	s.health.SetHealthy(ComponentName, "scheduled: "+s.spec)

	<-ctx.Done()

	slog.Info("stopping scheduler")
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// RunOnce runs one generation cycle for every account and returns the number
// of accounts that completed. A failing account does not stop the cycle.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	ids := s.gen.AccountIDs()
	slog.Info("starting generation cycle", "accounts", len(ids), "mode", s.mode)

	ok := 0
	for _, id := range ids {
		component := "account:" + id

		res, err := s.gen.Generate(ctx, id, s.mode)
		if err != nil {
			slog.Error("scheduled generation failed", "account", id, "error", err)
			s.health.SetUnhealthy(component, err)
			continue
		}

		msg := fmt.Sprintf("%d posts", len(res.Batch.Posts))
		if n := res.Batch.FallbackCount(); n > 0 {
			msg = fmt.Sprintf("%d posts, %d fallback", len(res.Batch.Posts), n)
		}
		s.health.SetHealthy(component, msg)
		ok++
	}

	if ok == 0 && len(ids) > 0 {
		s.health.SetUnhealthy(ComponentName, fmt.Errorf("last cycle failed for all %d accounts", len(ids)))
	} else {
		s.health.SetHealthy(ComponentName, fmt.Sprintf("last cycle: %d/%d accounts", ok, len(ids)))
	}

	slog.Info("generation cycle complete", "succeeded", ok, "accounts", len(ids))
	return ok
}
