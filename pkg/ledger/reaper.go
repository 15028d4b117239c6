package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ReaperConfig configures the stale-reservation reaper.
type ReaperConfig struct {
	// Schedule is a cron expression for sweep runs.
	// Default: every 5 minutes. Empty disables the reaper.
	Schedule string

	// TTL is how old a pending reservation must be before it is
	// considered abandoned. Must comfortably exceed the longest
	// possible wallet call. Default: 15 minutes.
	TTL time.Duration
}

// DefaultReaperConfig returns the default reaper configuration.
func DefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		Schedule: "*/5 * * * *",
		TTL:      15 * time.Minute,
	}
}

// Reaper periodically removes abandoned provisional reservations.
type Reaper struct {
	ledger  *Ledger
	config  ReaperConfig
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	running bool
}

// NewReaper creates a reaper for the given ledger.
func NewReaper(ledger *Ledger, config ReaperConfig) *Reaper {
	if config.TTL == 0 {
		config.TTL = DefaultReaperConfig().TTL
	}
	return &Reaper{
		ledger: ledger,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "ledger.reaper"),
	}
}

// Start schedules the sweep. If no schedule is configured, Start
// returns immediately without error.
func (r *Reaper) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.Schedule == "" {
		r.logger.Info("reaper schedule not configured, skipping")
		return nil
	}

	if _, err := cron.ParseStandard(r.config.Schedule); err != nil {
		return fmt.Errorf("invalid reaper schedule %q: %w", r.config.Schedule, err)
	}

	_, err := r.cron.AddFunc(r.config.Schedule, func() {
		r.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reaper: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("reservation reaper started",
		"schedule", r.config.Schedule,
		"ttl", r.config.TTL.String(),
	)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// sweep runs one reap cycle.
func (r *Reaper) sweep(ctx context.Context) {
	reaped, err := r.ledger.ReapStale(ctx, r.config.TTL)
	if err != nil {
		r.logger.Error("reservation sweep failed", "error", err)
		return
	}
	if reaped > 0 {
		r.logger.Info("reservation sweep completed", "reaped", reaped)
	}
}

// Stop stops the reaper and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil && r.running {
		ctx := r.cron.Stop()
		<-ctx.Done()
		r.running = false
		r.logger.Info("reservation reaper stopped")
	}
}

// IsRunning reports whether the reaper is scheduled.
func (r *Reaper) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
