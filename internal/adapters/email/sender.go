package email

import (
	"context"
	"time"
)

// Message is one outgoing email.
type Message struct {
	To      []string
	From    string // empty selects the sender's default
	ReplyTo string
	Subject string
	HTML    string
	Text    string            // plain-text alternative
	Tags    map[string]string // provider tags, e.g. feedback_id
}

// Receipt is the provider's acknowledgement.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
