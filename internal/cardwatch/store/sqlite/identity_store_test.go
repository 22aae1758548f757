package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cardwatch/server/internal/cardwatch/store"
	sqlitestore "github.com/cardwatch/server/internal/cardwatch/store/sqlite"
)

func newIdentity(reg, email string) store.NewIdentity {
	return store.NewIdentity{
		RegNumber:    reg,
		Name:         "Alice",
		Email:        email,
		PasswordHash: "$2a$04$notarealhashbutlongenough0000000000000000000000000000",
	}
}

func TestIdentityStore_CreateAndFind(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ids := sqlitestore.NewIdentityStore(conn, w)

	created, err := ids.Create(context.Background(), newIdentity("6216922", "alice@example.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected an assigned id")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected an assigned creation time")
	}

	found, err := ids.FindByRegNumber(context.Background(), "6216922")
	if err != nil {
		t.Fatalf("FindByRegNumber: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find the identity")
	}
	if found.ID != created.ID || found.Email != "alice@example.com" {
		t.Errorf("found %+v does not match created %+v", found, created)
	}
}

func TestIdentityStore_Find_Absent(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ids := sqlitestore.NewIdentityStore(conn, w)

	found, err := ids.FindByRegNumber(context.Background(), "0000000")
	if err != nil {
		t.Fatalf("FindByRegNumber: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for an absent identity, got %+v", found)
	}
}

func TestIdentityStore_FindByRegNumberOrEmail(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ids := sqlitestore.NewIdentityStore(conn, w)

	if _, err := ids.Create(context.Background(), newIdentity("6216922", "alice@example.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byReg, err := ids.FindByRegNumberOrEmail(context.Background(), "6216922", "nope@example.com")
	if err != nil || byReg == nil {
		t.Fatalf("expected match on reg number: ident=%v err=%v", byReg, err)
	}

	byEmail, err := ids.FindByRegNumberOrEmail(context.Background(), "0000000", "alice@example.com")
	if err != nil || byEmail == nil {
		t.Fatalf("expected match on email: ident=%v err=%v", byEmail, err)
	}

	none, err := ids.FindByRegNumberOrEmail(context.Background(), "0000000", "nope@example.com")
	if err != nil {
		t.Fatalf("FindByRegNumberOrEmail: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil when neither field matches, got %+v", none)
	}
}

func TestIdentityStore_DuplicateRegNumber(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ids := sqlitestore.NewIdentityStore(conn, w)

	if _, err := ids.Create(context.Background(), newIdentity("6216922", "alice@example.com")); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := ids.Create(context.Background(), newIdentity("6216922", "other@example.com"))
	if !errors.Is(err, store.ErrDuplicateIdentity) {
		t.Errorf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestIdentityStore_DuplicateEmail(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ids := sqlitestore.NewIdentityStore(conn, w)

	if _, err := ids.Create(context.Background(), newIdentity("6216922", "alice@example.com")); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := ids.Create(context.Background(), newIdentity("9999999", "alice@example.com"))
	if !errors.Is(err, store.ErrDuplicateIdentity) {
		t.Errorf("expected ErrDuplicateIdentity, got %v", err)
	}
}

// The UNIQUE constraint decides concurrent duplicate creations: exactly one
// insert wins regardless of interleaving.
func TestIdentityStore_ConcurrentDuplicate(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	ids := sqlitestore.NewIdentityStore(conn, w)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = ids.Create(context.Background(), newIdentity("6216922", "a@example.com"))
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = ids.Create(context.Background(), newIdentity("6216922", "b@example.com"))
	}()
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrDuplicateIdentity):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Errorf("expected one success and one duplicate, got ok=%d dup=%d", ok, dup)
	}

	var count int
	if err := conn.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM identities WHERE reg_number = ?`, "6216922",
	).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 row, got %d", count)
	}
}
