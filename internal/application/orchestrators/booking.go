package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/booking"
	"eventdesk/internal/domain/wizard"
)

// BookingAPI defines the API calls needed by the booking wizard.
type BookingAPI interface {
	CreateBooking(ctx context.Context, token, userID string, fields map[string]string) (string, error)
}

// BookingDeps holds dependencies for the booking wizard.
type BookingDeps struct {
	API     BookingAPI
	Session session.Store
	Now     func() time.Time
}

// Wizard actions
const (
	BookingNext   = "next"
	BookingBack   = "back"
	BookingSubmit = "submit"
)

// ErrUnknownBookingAction is returned for an action outside next, back and submit.
var ErrUnknownBookingAction = errors.New("unknown booking action")

// BookingInput is one submission of the wizard form. Only the fields the
// current step shows are taken; the rest of Draft is ignored.
type BookingInput struct {
	Action string
	Draft  booking.Draft
}

// BookingState is the wizard after an action.
type BookingState struct {
	Draft     booking.Draft
	Wizard    wizard.Wizard
	BookingID string // set once submitted
}

// LoadBooking returns the drafted booking and its wizard position.
func LoadBooking(ctx context.Context, st session.Store) BookingState {
	var d booking.Draft
	st.Get(ctx, session.KeyBookingDraft, &d)
	w, _ := wizard.New(booking.Steps, d.Step)
	d.Step = w.Current
	return BookingState{Draft: d, Wizard: w}
}

// ExecuteBookingStep applies a wizard action to the drafted booking.
// PRE: the session belongs to a client
// POST: next only advances when the current step validates; back always
// moves; submit creates the booking and clears the draft
func ExecuteBookingStep(ctx context.Context, input BookingInput, deps BookingDeps) (BookingState, error) {
	state := LoadBooking(ctx, deps.Session)
	merge(&state.Draft, input.Draft, state.Wizard.Current)

	switch input.Action {
	case BookingBack:
		state.Wizard.Back()
	case BookingNext:
		if err := state.Draft.ValidateStep(state.Wizard.Current, today(deps.Now())); err != nil {
			return state, save(ctx, deps.Session, state, err)
		}
		state.Wizard.Next()
	case BookingSubmit:
		return submitBooking(ctx, state, deps)
	default:
		return state, ErrUnknownBookingAction
	}
	return state, save(ctx, deps.Session, state, nil)
}

// ExecuteResetBooking discards the drafted booking.
func ExecuteResetBooking(ctx context.Context, st session.Store) error {
	return st.Remove(ctx, session.KeyBookingDraft)
}

func submitBooking(ctx context.Context, state BookingState, deps BookingDeps) (BookingState, error) {
	if err := state.Draft.Validate(today(deps.Now())); err != nil {
		return state, save(ctx, deps.Session, state, err)
	}
	token, userID, _, err := credentials(ctx, deps.Session)
	if err != nil {
		return state, err
	}
	id, err := deps.API.CreateBooking(ctx, token, userID, state.Draft.Fields())
	if err != nil {
		return state, save(ctx, deps.Session, state, err)
	}
	state.BookingID = id
	if err := deps.Session.Remove(ctx, session.KeyBookingDraft); err != nil {
		slog.Warn("booking_event", "event", "draft_clear_failed", "error", err)
	}
	slog.Info("booking_event", "event", "booking_created", "booking_id", id, "user_id", userID,
		"package_id", state.Draft.PackageID)
	return state, nil
}

// save persists the draft, returning cause when set so a failed step still
// keeps what the user typed.
func save(ctx context.Context, st session.Store, state BookingState, cause error) error {
	state.Draft.Step = state.Wizard.Current
	if err := st.Set(ctx, session.KeyBookingDraft, state.Draft); err != nil {
		return err
	}
	return cause
}

// merge copies the fields the given step's form shows, blank ones included,
// so a user can clear what they typed. Other fields keep their drafted values.
func merge(dst *booking.Draft, in booking.Draft, step int) {
	switch step {
	case 0:
		dst.EventName = strings.TrimSpace(in.EventName)
		dst.EventDate = strings.TrimSpace(in.EventDate)
		dst.GuestCount = in.GuestCount
		dst.Notes = strings.TrimSpace(in.Notes)
	case 1:
		dst.PackageID = strings.TrimSpace(in.PackageID)
	case 2:
		dst.VenueID = strings.TrimSpace(in.VenueID)
	}
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
