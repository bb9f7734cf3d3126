package session

import "context"

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SetFlash stores a flash, replacing any unread one.
func SetFlash(ctx context.Context, s Store, kind, message string) error {
	return s.Set(ctx, KeyFlash, Flash{Kind: kind, Message: message})
}

// PopFlash returns the pending flash and removes it.
// POST: a second PopFlash reports false
func PopFlash(ctx context.Context, s Store) (Flash, bool) {
	var f Flash
	if !s.Get(ctx, KeyFlash, &f) {
		return Flash{}, false
	}
	_ = s.Remove(ctx, KeyFlash)
	return f, f.Message != ""
}
