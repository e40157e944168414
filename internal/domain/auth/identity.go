// Package auth is the trust boundary to the external identity service. The
// core performs no authentication itself; it resolves an API key to an
// Identity and trusts the result.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrKeyNotFound is returned when no active API key matches the given hash.
var ErrKeyNotFound = errors.New("api key not found")

// Identity is the resolved caller: a user id and whether the caller holds
// admin privileges (required for order lifecycle transitions).
type Identity struct {
	UserID string
	Name   string
	Admin  bool
}

// APIKeyInfo holds the stored record for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	UserID  string
	Name    string
	Admin   bool
	Active  bool
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
