// Package session is the single point of access to per-browser session values.
// Values are JSON encoded, then sealed (HMAC-SHA256 + AES-256) with
// gorilla/securecookie before they reach a backend, so a value edited or moved
// at rest reads back as missing.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/securecookie"

	sessionstore "eventdesk/internal/adapters/storage/session"
)

// Session keys.
const (
	KeyUser         = "user"
	KeyToken        = "token"
	KeyUserID       = "user_id"
	KeyFlash        = "flash"
	KeyBookingDraft = "booking_draft"
)

// OTPIssuedKey is the key holding when the current code of flow was issued.
func OTPIssuedKey(flow string) string {
	return "otp_issued:" + flow
}

// Lookup errors
var (
	ErrNotFound = errors.New("session value not found")
	ErrCorrupt  = errors.New("session value is corrupt")
)

// Backend persists sealed values. Implemented by the storage/session stores.
type Backend interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Put(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}

// Store reads and writes the values of one browser session.
type Store interface {
	Get(ctx context.Context, key string, dst any) bool
	Lookup(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// Manager seals values and binds them to browser session ids.
type Manager struct {
	backend Backend
	codec   *securecookie.SecureCookie
}

// NewManager creates a Manager.
// PRE: len(hashKey) >= 32; len(blockKey) is 16, 24 or 32
// POST: Sealed values never expire on their own and have no length limit
func NewManager(backend Backend, hashKey, blockKey []byte) *Manager {
	codec := securecookie.New(hashKey, blockKey).
		SetSerializer(securecookie.JSONEncoder{}).
		MaxAge(0).
		MaxLength(0)
	return &Manager{backend: backend, codec: codec}
}

// Open returns the Store of one browser session.
// PRE: sessionID is non-empty
func (m *Manager) Open(sessionID string) *Session {
	return &Session{m: m, id: sessionID}
}

// Session is the Store of one browser session.
type Session struct {
	m  *Manager
	id string
}

// Compile-time check that *Session satisfies Store.
var _ Store = (*Session)(nil)

// ID returns the browser session id.
func (s *Session) ID() string { return s.id }

// name binds a sealed value to both its session and its key.
func (s *Session) name(key string) string {
	return s.id + "/" + key
}

// Get reads key into dst. Missing, corrupt and unreadable values all report false.
// PRE: dst is a non-nil pointer
// POST: dst is only written when true is returned
func (s *Session) Get(ctx context.Context, key string, dst any) bool {
	err := s.Lookup(ctx, key, dst)
	if err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("session_event", "event", "read_failed", "key", key, "error", err)
	}
	return err == nil
}

// Lookup reads key into dst, distinguishing ErrNotFound from ErrCorrupt.
// PRE: dst is a non-nil pointer
// POST: returns nil, ErrNotFound, ErrCorrupt or a wrapped backend error
func (s *Session) Lookup(ctx context.Context, key string, dst any) error {
	sealed, err := s.m.backend.Get(ctx, s.id, key)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read session %s: %w", key, err)
	}
	if err := s.m.codec.Decode(s.name(key), sealed, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// Set seals value and stores it under key, replacing any previous value.
// PRE: value is JSON serializable
// POST: Get(key) yields value
func (s *Session) Set(ctx context.Context, key string, value any) error {
	sealed, err := s.m.codec.Encode(s.name(key), value)
	if err != nil {
		return fmt.Errorf("seal session %s: %w", key, err)
	}
	if err := s.m.backend.Put(ctx, s.id, key, sealed); err != nil {
		return fmt.Errorf("write session %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
// POST: Get(key) reports false
func (s *Session) Remove(ctx context.Context, key string) error {
	if err := s.m.backend.Delete(ctx, s.id, key); err != nil {
		return fmt.Errorf("remove session %s: %w", key, err)
	}
	return nil
}
