package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/cardwatch/server/internal/cardwatch/store"
	sqlitestore "github.com/cardwatch/server/internal/cardwatch/store/sqlite"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

func newEvent(user, uid string) store.NewAccessEvent {
	return store.NewAccessEvent{
		UserName: user,
		CardUID:  uid,
		Action:   "entry",
		Status:   "granted",
	}
}

func insertEvent(t *testing.T, es *sqlitestore.EventStore, user, uid string) *types.AccessEvent {
	t.Helper()
	ev, err := es.Insert(context.Background(), newEvent(user, uid))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return ev
}

func TestEventStore_Insert_AssignsIDAndTimestamp(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)

	before := time.Now().UTC().Add(-time.Second)
	ev := insertEvent(t, es, "Alice", "CARD1")
	after := time.Now().UTC().Add(time.Second)

	if ev.ID == 0 {
		t.Error("expected an assigned id")
	}
	if ev.Timestamp.Before(before) || ev.Timestamp.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", ev.Timestamp, before, after)
	}
}

func TestEventStore_Insert_MonotonicOrder(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)

	var prev *types.AccessEvent
	for i := 0; i < 10; i++ {
		ev := insertEvent(t, es, "Alice", "CARD1")
		if prev != nil {
			if ev.ID <= prev.ID {
				t.Errorf("ids not increasing: %d after %d", ev.ID, prev.ID)
			}
			if ev.Timestamp.Before(prev.Timestamp) {
				t.Errorf("timestamps decreasing: %v after %v", ev.Timestamp, prev.Timestamp)
			}
		}
		prev = ev
	}
}

func TestEventStore_ListRecent_NewestFirstAndCapped(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)

	var last *types.AccessEvent
	for i := 0; i < 5; i++ {
		last = insertEvent(t, es, "Alice", "CARD1")
	}

	events, err := es.ListRecent(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].ID != last.ID {
		t.Errorf("expected newest event %d first, got %d", last.ID, events[0].ID)
	}
	for i := 1; i < len(events); i++ {
		if events[i].ID > events[i-1].ID {
			t.Errorf("events not newest first at index %d", i)
		}
	}
}

func TestEventStore_ListRecent_Empty(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)

	events, err := es.ListRecent(context.Background(), 100)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestEventStore_Counts(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)

	insertEvent(t, es, "Alice", "CARD1")
	insertEvent(t, es, "Bob", "CARD2")
	insertEvent(t, es, "Alice", "CARD1")

	total, err := es.CountAll(context.Background())
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if total != 3 {
		t.Errorf("CountAll: expected 3, got %d", total)
	}

	unique, err := es.CountDistinctUsers(context.Background())
	if err != nil {
		t.Fatalf("CountDistinctUsers: %v", err)
	}
	if unique != 2 {
		t.Errorf("CountDistinctUsers: expected 2, got %d", unique)
	}
}

func TestEventStore_CountBetween(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)

	ev := insertEvent(t, es, "Alice", "CARD1")

	day := ev.Timestamp.Truncate(24 * time.Hour)
	n, err := es.CountBetween(context.Background(), day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("CountBetween: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 event in the insert's day, got %d", n)
	}

	n, err = es.CountBetween(context.Background(), day.Add(-24*time.Hour), day)
	if err != nil {
		t.Fatalf("CountBetween: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 events the day before, got %d", n)
	}
}
