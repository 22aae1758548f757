package types

import "time"

// Identity is a registered dashboard account. PasswordHash holds a bcrypt
// hash and is never serialized.
type Identity struct {
	ID           int64     `json:"id"`
	RegNumber    string    `json:"regNumber"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicIdentity is the subset of Identity returned to clients.
type PublicIdentity struct {
	ID        int64  `json:"id"`
	RegNumber string `json:"regNumber"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

func (i Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:        i.ID,
		RegNumber: i.RegNumber,
		Name:      i.Name,
		Email:     i.Email,
	}
}

type RegisterRequest struct {
	RegNumber string `json:"regNumber"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	RegNumber string `json:"regNumber"`
	Password  string `json:"password"`
}

type LoginResponse struct {
	Token string         `json:"token"`
	User  PublicIdentity `json:"user"`
}
