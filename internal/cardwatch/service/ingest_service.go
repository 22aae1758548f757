package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardwatch/server/internal/cardwatch/store"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

// Broadcaster fans a persisted event out to live viewers. Publish must
// never block: a slow viewer is the broadcaster's problem, not the
// ingest path's.
type Broadcaster interface {
	Publish(ev types.AccessEvent)
}

type IngestService struct {
	events      store.EventStore
	broadcaster Broadcaster
}

func NewIngestService(events store.EventStore, b Broadcaster) *IngestService {
	return &IngestService{events: events, broadcaster: b}
}

// Ingest validates and persists a device-reported event, then offers the
// fully materialized record (assigned id and timestamp included) to the
// broadcaster before returning. If the write fails nothing is published:
// viewers never see an event that was not durably recorded.
func (s *IngestService) Ingest(ctx context.Context, req types.IngestRequest) (types.AccessEvent, error) {
	user := strings.TrimSpace(req.User)
	uid := strings.TrimSpace(req.UID)
	action := strings.TrimSpace(req.Action)
	status := strings.TrimSpace(req.Status)

	if user == "" {
		return types.AccessEvent{}, fmt.Errorf("%w: user", ErrMissingField)
	}
	if uid == "" {
		return types.AccessEvent{}, fmt.Errorf("%w: uid", ErrMissingField)
	}
	if action == "" {
		return types.AccessEvent{}, fmt.Errorf("%w: action", ErrMissingField)
	}
	if status == "" {
		return types.AccessEvent{}, fmt.Errorf("%w: status", ErrMissingField)
	}

	ev, err := s.events.Insert(ctx, store.NewAccessEvent{
		UserName: user,
		CardUID:  uid,
		Action:   action,
		Status:   status,
	})
	if err != nil {
		return types.AccessEvent{}, err
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(*ev)
	}

	return *ev, nil
}
