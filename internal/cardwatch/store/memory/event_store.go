package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cardwatch/server/internal/cardwatch/store"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

// EventStore is an in-memory append-only event log for tests and dev.
type EventStore struct {
	mu     sync.Mutex
	nextID int64
	events []types.AccessEvent
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) Insert(_ context.Context, n store.NewAccessEvent) (*types.AccessEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	ev := types.AccessEvent{
		ID:        s.nextID,
		UserName:  n.UserName,
		CardUID:   n.CardUID,
		Action:    n.Action,
		Status:    n.Status,
		Timestamp: time.Now().UTC(),
	}
	s.events = append(s.events, ev)
	return &ev, nil
}

func (s *EventStore) ListRecent(_ context.Context, limit int) ([]types.AccessEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.AccessEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *EventStore) CountAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.events)), nil
}

func (s *EventStore) CountDistinctUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, ev := range s.events {
		seen[ev.UserName] = struct{}{}
	}
	return int64(len(seen)), nil
}

func (s *EventStore) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, ev := range s.events {
		if !ev.Timestamp.Before(from) && ev.Timestamp.Before(to) {
			n++
		}
	}
	return n, nil
}

// Seed appends an event as-is, bypassing id and timestamp assignment.
// Test-only helper for building histories with chosen timestamps.
func (s *EventStore) Seed(ev types.AccessEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID > s.nextID {
		s.nextID = ev.ID
	}
	s.events = append(s.events, ev)
}
