// Package notify delivers zero-payload "session changed" signals between the
// handlers and pages of one browser tab.
package notify

import (
	"sync"
)

// Scope identifies one browser tab: its browser session id and the tab id
// minted when the page was rendered.
type Scope struct {
	SessionID string
	TabID     string
}

// Valid reports whether both parts of the scope are set.
func (s Scope) Valid() bool {
	return s.SessionID != "" && s.TabID != ""
}

// Handler is invoked once per Publish to its scope.
type Handler func()

// Bus is an in-process publish/subscribe hub. It never crosses processes.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Scope]map[uint64]Handler

	// OnChange, when set, is called with the subscriber count after each
	// subscribe or unsubscribe.
	OnChange func(total int)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Scope]map[uint64]Handler)}
}

// Subscribe registers handler for scope and returns its unsubscribe func.
// PRE: handler is non-nil
// POST: handler runs on every later Publish(scope) until unsubscribe is called;
// calling unsubscribe more than once is a no-op
func (b *Bus) Subscribe(scope Scope, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[scope] == nil {
		b.subs[scope] = make(map[uint64]Handler)
	}
	b.subs[scope][id] = handler
	total := b.countLocked()
	b.mu.Unlock()
	b.changed(total)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[scope], id)
			if len(b.subs[scope]) == 0 {
				delete(b.subs, scope)
			}
			total := b.countLocked()
			b.mu.Unlock()
			b.changed(total)
		})
	}
}

// Publish invokes every handler of scope and returns how many ran. Handlers
// run synchronously, outside the lock, so one may unsubscribe itself.
// PRE: the session mutation being announced has completed
func (b *Bus) Publish(scope Scope) int {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[scope]))
	for _, h := range b.subs[scope] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h()
	}
	return len(handlers)
}

// Subscribers returns the number of handlers registered for scope.
func (b *Bus) Subscribers(scope Scope) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[scope])
}

func (b *Bus) countLocked() int {
	n := 0
	for _, hs := range b.subs {
		n += len(hs)
	}
	return n
}

func (b *Bus) changed(total int) {
	if b.OnChange != nil {
		b.OnChange(total)
	}
}
