package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cardwatch/server/internal/cardwatch/store"
	"github.com/cardwatch/server/internal/cardwatch/token"
	"github.com/cardwatch/server/internal/cardwatch/types"
)

var (
	ErrDuplicateIdentity = errors.New("user already exists")

	// ErrInvalidCredentials is deliberately the same for an unknown
	// registration number and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMissingField = errors.New("missing required field")
)

// dummyHash keeps a login against an unknown registration number roughly
// as expensive as one with a wrong password.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type AuthService struct {
	identities store.IdentityStore
	signer     *token.Signer
	cost       int
}

func NewAuthService(identities store.IdentityStore, signer *token.Signer, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{identities: identities, signer: signer, cost: bcryptCost}
}

func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) error {
	regNumber := strings.TrimSpace(req.RegNumber)
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if regNumber == "" {
		return fmt.Errorf("%w: regNumber", ErrMissingField)
	}
	if name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if email == "" {
		return fmt.Errorf("%w: email", ErrMissingField)
	}
	if req.Password == "" {
		return fmt.Errorf("%w: password", ErrMissingField)
	}

	// Friendly path. The UNIQUE constraints in the store settle the race
	// when two registrations slip past this check concurrently.
	existing, err := s.identities.FindByRegNumberOrEmail(ctx, regNumber, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateIdentity
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.identities.Create(ctx, store.NewIdentity{
		RegNumber:    regNumber,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, store.ErrDuplicateIdentity) {
		return ErrDuplicateIdentity
	}
	return err
}

func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (types.LoginResponse, error) {
	regNumber := strings.TrimSpace(req.RegNumber)
	if regNumber == "" || req.Password == "" {
		return types.LoginResponse{}, ErrInvalidCredentials
	}

	ident, err := s.identities.FindByRegNumber(ctx, regNumber)
	if err != nil {
		return types.LoginResponse{}, err
	}
	if ident == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return types.LoginResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(req.Password)); err != nil {
		return types.LoginResponse{}, ErrInvalidCredentials
	}

	raw, err := s.signer.Issue(ident.ID, ident.RegNumber)
	if err != nil {
		return types.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return types.LoginResponse{
		Token: raw,
		User:  ident.Public(),
	}, nil
}

// Verify validates a session token presented on a read endpoint.
func (s *AuthService) Verify(raw string) (*token.Claims, error) {
	return s.signer.Verify(raw)
}
