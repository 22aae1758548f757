package store

import (
	"context"
	"time"

	"github.com/cardwatch/server/internal/cardwatch/types"
)

// NewAccessEvent carries the device-reported fields of an access event.
// The store assigns the id and timestamp at insert time.
type NewAccessEvent struct {
	UserName string
	CardUID  string
	Action   string
	Status   string
}

// EventStore persists access events as an append-only log. Timestamps are
// assigned by the store and are non-decreasing in insertion order.
type EventStore interface {
	Insert(ctx context.Context, n NewAccessEvent) (*types.AccessEvent, error)

	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]types.AccessEvent, error)

	CountAll(ctx context.Context) (int64, error)
	CountDistinctUsers(ctx context.Context) (int64, error)

	// CountBetween counts events with from <= timestamp < to.
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
}
