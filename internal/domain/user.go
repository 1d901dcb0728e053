package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Roles assignable to users. Admins may provision new accounts.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered principal. The username doubles as the
// principal identifier on events.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PasswordHasher hashes and verifies passwords. Implementations may use
// bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated principal.
type TokenIssuer interface {
	Issue(username, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (username string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// AuthService defines login and user provisioning.
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, user *User, err error)
	CreateUser(ctx context.Context, caller, username, password string) (*User, error)
	// EnsureAdmin creates the admin account on startup when absent.
	EnsureAdmin(ctx context.Context, username, password string) error
}
