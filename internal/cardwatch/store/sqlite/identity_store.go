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

type IdentityStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewIdentityStore(db *sql.DB, writer *dbpkg.Worker) *IdentityStore {
	return &IdentityStore{db: db, writer: writer}
}

func (s *IdentityStore) FindByRegNumber(ctx context.Context, regNumber string) (*types.Identity, error) {
	return scanIdentity(s.db.QueryRowContext(ctx, `
SELECT id, reg_number, name, email, password_hash, created_at_ms
FROM identities
WHERE reg_number = ?;
`, regNumber))
}

func (s *IdentityStore) FindByRegNumberOrEmail(ctx context.Context, regNumber, email string) (*types.Identity, error) {
	return scanIdentity(s.db.QueryRowContext(ctx, `
SELECT id, reg_number, name, email, password_hash, created_at_ms
FROM identities
WHERE reg_number = ? OR email = ?;
`, regNumber, email))
}

// Create inserts a new identity through the single-writer worker. The
// UNIQUE constraints on reg_number and email decide duplicate races: the
// losing insert surfaces as store.ErrDuplicateIdentity.
func (s *IdentityStore) Create(ctx context.Context, n store.NewIdentity) (*types.Identity, error) {
	var id, createdMs int64

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		createdMs = time.Now().UTC().UnixMilli()

		res, err := tx.ExecContext(ctx, `
INSERT INTO identities(reg_number, name, email, password_hash, created_at_ms)
VALUES (?, ?, ?, ?, ?);
`, n.RegNumber, n.Name, n.Email, n.PasswordHash, createdMs)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateIdentity
			}
			return fmt.Errorf("Create insert: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Create last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &types.Identity{
		ID:           id,
		RegNumber:    n.RegNumber,
		Name:         n.Name,
		Email:        n.Email,
		PasswordHash: n.PasswordHash,
		CreatedAt:    time.UnixMilli(createdMs).UTC(),
	}, nil
}

func scanIdentity(row *sql.Row) (*types.Identity, error) {
	var ident types.Identity
	var createdMs int64

	err := row.Scan(&ident.ID, &ident.RegNumber, &ident.Name, &ident.Email, &ident.PasswordHash, &createdMs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan identity: %w", err)
	}

	ident.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &ident, nil
}
