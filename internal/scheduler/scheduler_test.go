// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/olegiv/oshop-go/internal/model"
	"github.com/olegiv/oshop-go/internal/service"
	"github.com/olegiv/oshop-go/internal/store"
	"github.com/olegiv/oshop-go/internal/testutil"
)

func TestNew(t *testing.T) {
	logger := slog.Default()

	// Test creation without an event service (nil allowed for creation)
	s := New(nil, time.Hour, logger)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cron == nil {
		t.Error("New() scheduler has nil cron")
	}
	if s.logger != logger {
		t.Error("New() scheduler has wrong logger")
	}

	if New(nil, 0, nil).logger == nil {
		t.Error("New() with nil logger should fall back to the default")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	tests := []struct {
		name      string
		retention time.Duration
		wantJobs  int
	}{
		{"purge enabled", 24 * time.Hour, 1},
		{"purge disabled", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestMemoryDB(t)
			s := New(service.NewEventService(db), tt.retention, testutil.TestLogger())

			if err := s.Start(); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			if got := len(s.cron.Entries()); got != tt.wantJobs {
				t.Errorf("jobs = %d; want %d", got, tt.wantJobs)
			}

			s.Stop()
		})
	}
}

func insertEvent(t *testing.T, q *store.Queries, at time.Time) {
	t.Helper()
	if _, err := q.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryCatalog,
		Message:   "Product created",
		Metadata:  "{}",
		CreatedAt: at,
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
}

func TestScheduler_PurgeEvents(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	q := store.New(db)
	now := time.Now().UTC()

	insertEvent(t, q, now.Add(-72*time.Hour))
	insertEvent(t, q, now.Add(-48*time.Hour))
	insertEvent(t, q, now.Add(-time.Hour))

	s := New(service.NewEventService(db), 24*time.Hour, testutil.TestLogger())

	deleted, err := s.PurgeEvents(context.Background())
	if err != nil {
		t.Fatalf("PurgeEvents() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d; want 2", deleted)
	}

	events, err := q.ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	// The recent event survives and the purge itself is recorded.
	if len(events) != 2 {
		t.Fatalf("len(events) = %d; want 2", len(events))
	}
	if events[0].Category != model.EventCategorySystem {
		t.Errorf("newest event category = %q; want %q", events[0].Category, model.EventCategorySystem)
	}

	// Nothing left to purge: no new system event.
	deleted, err = s.PurgeEvents(context.Background())
	if err != nil {
		t.Fatalf("PurgeEvents() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("second purge deleted = %d; want 0", deleted)
	}
	count, err := q.CountEvents(context.Background())
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d; want 2", count)
	}
}

func TestScheduler_PurgeEventsDisabled(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	q := store.New(db)
	insertEvent(t, q, time.Now().UTC().Add(-365*24*time.Hour))

	s := New(service.NewEventService(db), 0, testutil.TestLogger())

	deleted, err := s.PurgeEvents(context.Background())
	if err != nil {
		t.Fatalf("PurgeEvents() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d; want 0 when retention is disabled", deleted)
	}
}
