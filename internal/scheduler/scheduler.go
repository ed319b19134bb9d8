// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/service"
)

// PurgeSchedule runs the event log purge every night at 03:00.
const PurgeSchedule = "0 3 * * *"

// purgeTimeout bounds a single purge run.
const purgeTimeout = time.Minute

// Scheduler handles scheduled tasks like pruning the event log.
type Scheduler struct {
	events    *service.EventService
	retention time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

// New creates a new scheduler instance. A retention of zero or less
// disables the purge job.
func New(events *service.EventService, retention time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		events:    events,
		retention: retention,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start() error {
	if s.retention > 0 && s.events != nil {
		_, err := s.cron.AddFunc(PurgeSchedule, func() {
			if _, err := s.PurgeEvents(context.Background()); err != nil {
				s.logger.Error("failed to purge old events", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// PurgeEvents deletes events older than the retention window and returns
// how many were removed.
func (s *Scheduler) PurgeEvents(ctx context.Context) (int64, error) {
	if s.retention <= 0 || s.events == nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := s.events.DeleteOldEvents(ctx, s.retention)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	s.logger.Info("purged old events", "count", n, "retention", s.retention.String())

	err = s.events.LogSystemEvent(ctx, model.EventLevelInfo, "Old events purged by scheduler", map[string]any{
		"deleted":   n,
		"retention": s.retention.String(),
	})
	if err != nil {
		s.logger.Warn("failed to log purge event", "error", err)
	}

	return n, nil
}
