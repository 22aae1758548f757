package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cardwatch/server/internal/cardwatch/store"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

// IdentityStore is an in-memory IdentityStore for tests and dev.
// The single mutex gives the same check-and-insert atomicity the sqlite
// store gets from its UNIQUE constraints.
type IdentityStore struct {
	mu      sync.Mutex
	nextID  int64
	byReg   map[string]*types.Identity
	byEmail map[string]*types.Identity
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		byReg:   make(map[string]*types.Identity),
		byEmail: make(map[string]*types.Identity),
	}
}

func (s *IdentityStore) FindByRegNumber(_ context.Context, regNumber string) (*types.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.byReg[regNumber]), nil
}

func (s *IdentityStore) FindByRegNumberOrEmail(_ context.Context, regNumber, email string) (*types.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ident, ok := s.byReg[regNumber]; ok {
		return copyIdentity(ident), nil
	}
	return copyIdentity(s.byEmail[email]), nil
}

func (s *IdentityStore) Create(_ context.Context, n store.NewIdentity) (*types.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byReg[n.RegNumber]; ok {
		return nil, store.ErrDuplicateIdentity
	}
	if _, ok := s.byEmail[n.Email]; ok {
		return nil, store.ErrDuplicateIdentity
	}

	s.nextID++
	ident := &types.Identity{
		ID:           s.nextID,
		RegNumber:    n.RegNumber,
		Name:         n.Name,
		Email:        n.Email,
		PasswordHash: n.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.byReg[ident.RegNumber] = ident
	s.byEmail[ident.Email] = ident

	return copyIdentity(ident), nil
}

func copyIdentity(ident *types.Identity) *types.Identity {
	if ident == nil {
		return nil
	}
	out := *ident
	return &out
}
