package service

import (
	"context"
	"testing"
	"time"

	"github.com/cardwatch/server/internal/cardwatch/store/memory"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

func TestSummary_Empty(t *testing.T) {
	svc := NewStatsService(memory.NewEventStore())

	stats, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if stats != (types.DashboardStats{}) {
		t.Errorf("expected all-zero stats, got %+v", stats)
	}
}

func TestSummary_CountsAndTodayBoundary(t *testing.T) {
	events := memory.NewEventStore()

	loc := time.UTC
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, loc)

	seed := func(id int64, user string, ts time.Time) {
		events.Seed(types.AccessEvent{
			ID: id, UserName: user, CardUID: "CARD1",
			Action: "entry", Status: "granted", Timestamp: ts,
		})
	}

	seed(1, "Alice", now.Add(-48*time.Hour))              // two days ago
	seed(2, "Bob", now.Add(-16*time.Hour))                // yesterday 23:00
	seed(3, "Alice", now.Add(-time.Hour))                 // today
	seed(4, "Carol", now)                                 // today
	seed(5, "Alice", now.Add(8*time.Hour+59*time.Minute)) // today 23:59

	svc := NewStatsService(events)
	svc.now = func() time.Time { return now }
	svc.loc = loc

	stats, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if stats.TotalEntries != 5 {
		t.Errorf("totalEntries: expected 5, got %d", stats.TotalEntries)
	}
	if stats.UniqueUsers != 3 {
		t.Errorf("uniqueUsers: expected 3 (Alice, Bob, Carol), got %d", stats.UniqueUsers)
	}
	if stats.TodayEntries != 3 {
		t.Errorf("todayEntries: expected 3, got %d", stats.TodayEntries)
	}
}
