package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/cardwatch/server/internal/db"

	"github.com/cardwatch/server/internal/cardwatch/store"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

type EventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewEventStore(db *sql.DB, writer *dbpkg.Worker) *EventStore {
	return &EventStore{db: db, writer: writer}
}

// Insert appends an access event and returns it with the assigned id and
// timestamp. The timestamp is taken inside the serialized writer so
// insertion order and timestamp order cannot diverge.
func (s *EventStore) Insert(ctx context.Context, n store.NewAccessEvent) (*types.AccessEvent, error) {
	var id, createdMs int64

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		createdMs = time.Now().UTC().UnixMilli()

		res, err := tx.ExecContext(ctx, `
INSERT INTO access_events(user_name, card_uid, action, status, created_at_ms)
VALUES (?, ?, ?, ?, ?);
`, n.UserName, n.CardUID, n.Action, n.Status, createdMs)
		if err != nil {
			return fmt.Errorf("Insert access_event: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Insert last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &types.AccessEvent{
		ID:        id,
		UserName:  n.UserName,
		CardUID:   n.CardUID,
		Action:    n.Action,
		Status:    n.Status,
		Timestamp: time.UnixMilli(createdMs).UTC(),
	}, nil
}

func (s *EventStore) ListRecent(ctx context.Context, limit int) ([]types.AccessEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_name, card_uid, action, status, created_at_ms
FROM access_events
ORDER BY created_at_ms DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent query: %w", err)
	}
	defer rows.Close()

	events := make([]types.AccessEvent, 0, limit)
	for rows.Next() {
		var ev types.AccessEvent
		var createdMs int64
		if err := rows.Scan(&ev.ID, &ev.UserName, &ev.CardUID, &ev.Action, &ev.Status, &createdMs); err != nil {
			return nil, fmt.Errorf("ListRecent scan: %w", err)
		}
		ev.Timestamp = time.UnixMilli(createdMs).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *EventStore) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_events;`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountAll: %w", err)
	}
	return n, nil
}

func (s *EventStore) CountDistinctUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT user_name) FROM access_events;`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountDistinctUsers: %w", err)
	}
	return n, nil
}

func (s *EventStore) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM access_events
WHERE created_at_ms >= ? AND created_at_ms < ?;
`, from.UTC().UnixMilli(), to.UTC().UnixMilli()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountBetween: %w", err)
	}
	return n, nil
}
