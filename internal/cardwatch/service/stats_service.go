package service

import (
	"context"
	"time"

	"github.com/cardwatch/server/internal/cardwatch/store"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

// StatsService computes read-only summary counts over the event log.
type StatsService struct {
	events store.EventStore
	now    func() time.Time
	loc    *time.Location
}

func NewStatsService(events store.EventStore) *StatsService {
	return &StatsService{events: events, now: time.Now, loc: time.Local}
}

// Summary runs three independent counts and combines them. The counts are
// not a single snapshot: events inserted between the reads can make the
// totals diverge by that many, which callers tolerate.
func (s *StatsService) Summary(ctx context.Context) (types.DashboardStats, error) {
	total, err := s.events.CountAll(ctx)
	if err != nil {
		return types.DashboardStats{}, err
	}

	unique, err := s.events.CountDistinctUsers(ctx)
	if err != nil {
		return types.DashboardStats{}, err
	}

	dayStart, dayEnd := s.todayBounds()
	today, err := s.events.CountBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return types.DashboardStats{}, err
	}

	return types.DashboardStats{
		TotalEntries: total,
		UniqueUsers:  unique,
		TodayEntries: today,
	}, nil
}

// todayBounds returns [midnight, midnight+24h) of the current calendar
// day in the store's reference timezone.
func (s *StatsService) todayBounds() (time.Time, time.Time) {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return start, start.Add(24 * time.Hour)
}
