package core

// scheduler.go runs background maintenance for the transfer audit log.
//
// The retention job deletes audit entries older than the configured number
// of days. It runs once at start and then on every tick until its context
// is cancelled. A failed run is logged and retried on the next tick.

import (
	"context"
	"time"
)

// RetentionConfig holds configuration for the audit retention job.
// Zero values fall back to the defaults.
type RetentionConfig struct {
	RetentionDays int           // Days to keep audit entries (default: 90)
	CheckInterval time.Duration // How often to prune (default: 24h)
}

const (
	DefaultRetentionDays          = 90
	DefaultRetentionCheckInterval = 24 * time.Hour
)

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = DefaultRetentionDays
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultRetentionCheckInterval
	}
	return c
}

// StartAuditRetention prunes old audit entries until ctx is cancelled.
// It blocks; run it in its own goroutine.
func (s *Service) StartAuditRetention(ctx context.Context, cfg RetentionConfig) {
	if s.audit == nil || s.audit.writer == nil {
		return
	}
	cfg = cfg.withDefaults()
	s.logger.Info("audit retention started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval,
	)

	s.runRetentionJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("audit retention stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg)
		}
	}
}

func (s *Service) runRetentionJob(ctx context.Context, cfg RetentionConfig) {
	start := time.Now()
	cutoff := start.AddDate(0, 0, -cfg.RetentionDays)

	pruned, err := s.audit.writer.PruneAudit(ctx, cutoff)
	if err != nil {
		s.logger.Error("audit prune failed", "error", err)
		return
	}
	s.logger.Info("pruned audit entries",
		"entries_pruned", pruned,
		"cutoff", cutoff.UTC().Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
