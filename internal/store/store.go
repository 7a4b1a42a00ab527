// Package store persists the current bearer token across restarts.
//
// Every driver holds a single key-value entry named "token" per profile;
// absence of the entry means logged out. Only the auth provider writes it.
package store

import (
	"context"
	"errors"
)

// TokenKey is the name of the persisted entry
const TokenKey = "token"

// ErrEmptyToken is returned when writing an empty token
var ErrEmptyToken = errors.New("store: empty token")

// Store is durable storage for the session token
type Store interface {
	// Read returns the persisted token, or "" and false when none exists.
	Read(ctx context.Context) (string, bool, error)
	// Write persists token, overwriting any previous value.
	Write(ctx context.Context, token string) error
	// Clear removes any persisted token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
