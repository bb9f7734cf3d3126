package preference

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no preference is stored for a device and key.
var ErrNotFound = errors.New("preference not found")

// Store persists plain (unsealed) UI preferences per browser.
type Store interface {
	Get(ctx context.Context, deviceID, key string) (string, error)
	Put(ctx context.Context, deviceID, key, value string) error
}
