package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedIdentity describes the bootstrap account ensured at startup so a
// fresh deployment can be logged into before anyone has registered.
type SeedIdentity struct {
	RegNumber    string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, computed by the caller
}

// SeedDefaultIdentity inserts the bootstrap identity if it does not exist.
// INSERT OR IGNORE keeps restarts and concurrent boots idempotent; an
// already-registered reg_number or email is left untouched.
func SeedDefaultIdentity(ctx context.Context, db *sql.DB, seed SeedIdentity) error {
	now := time.Now().UTC().UnixMilli()

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO identities(reg_number, name, email, password_hash, created_at_ms)
VALUES (?, ?, ?, ?, ?);`,
		seed.RegNumber, seed.Name, seed.Email, seed.PasswordHash, now,
	); err != nil {
		return fmt.Errorf("seed identity %s: %w", seed.RegNumber, err)
	}

	return nil
}
