package feedback

import "errors"

// ErrEmptyReply is returned when a reply has no body.
var ErrEmptyReply = errors.New("reply cannot be empty")

// Feedback is a message left by a site visitor or client.
type Feedback struct {
	ID        string `json:"feedback_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"created_at"`
}

// Reply is an admin's emailed answer to a feedback.
type Reply struct {
	FeedbackID string
	To         string `validate:"required,email"`
	Subject    string `validate:"required,max=200"`
	Body       string `validate:"required"` // markdown
}

// Stars returns the rating clamped to 0..5 as a slice for template ranging.
func (f Feedback) Stars() []bool {
	stars := make([]bool, 5)
	for i := range stars {
		stars[i] = i < f.Rating
	}
	return stars
}
