package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no value is stored under a session key.
var ErrNotFound = errors.New("session value not found")

// Store persists sealed session values keyed by (browser session id, key).
// Values are opaque strings; sealing happens above this layer.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Put(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}
