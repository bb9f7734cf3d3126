package orchestrators

import (
	"context"
	"errors"
	"testing"

	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/booking"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/user"
)

var clientUser = user.User{ID: "42", FirstName: "Cleo", Role: role.Client, Email: "cleo@example.com"}

// TestExecuteBookingStep_Flow tests walking the wizard to a created booking.
func TestExecuteBookingStep_Flow(t *testing.T) {
	ctx := context.Background()
	st := signedIn(clientUser)
	fake := &fakeAPI{bookingID: "B-100"}
	deps := BookingDeps{API: fake, Session: st, Now: clock}

	state, err := ExecuteBookingStep(ctx, BookingInput{Action: BookingNext, Draft: booking.Draft{EventName: "Gala"}}, deps)
	if !errors.Is(err, booking.ErrInvalidDate) || state.Wizard.Current != 0 {
		t.Fatalf("step 0 err = %v at %d", err, state.Wizard.Current)
	}
	if LoadBooking(ctx, st).Draft.EventName != "Gala" {
		t.Error("typed fields should survive a failed step")
	}

	steps := []booking.Draft{
		{EventName: "Gala", EventDate: "2026-12-24", GuestCount: 80},
		{PackageID: "P-1"},
		{VenueID: "V-3"},
	}
	for i, d := range steps {
		state, err = ExecuteBookingStep(ctx, BookingInput{Action: BookingNext, Draft: d}, deps)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !state.Wizard.IsLast() || state.Wizard.Progress() != 100 {
		t.Fatalf("wizard = %+v", state.Wizard)
	}

	state, err = ExecuteBookingStep(ctx, BookingInput{Action: BookingBack}, deps)
	if err != nil || state.Wizard.Current != 2 || state.Draft.VenueID != "V-3" {
		t.Fatalf("back = %+v, %v", state, err)
	}
	_, _ = ExecuteBookingStep(ctx, BookingInput{Action: BookingNext, Draft: booking.Draft{VenueID: "V-3"}}, deps)

	state, err = ExecuteBookingStep(ctx, BookingInput{Action: BookingSubmit}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if state.BookingID != "B-100" {
		t.Errorf("BookingID = %q", state.BookingID)
	}
	c := fake.last()
	if c.UserID != "42" || c.Fields["package_id"] != "P-1" || c.Fields["guest_count"] != "80" {
		t.Errorf("call = %+v", c)
	}
	var d booking.Draft
	if st.Get(ctx, session.KeyBookingDraft, &d) {
		t.Error("draft should be cleared after submit")
	}
}

// TestExecuteBookingStep_BlankFieldsClear tests that a step's own fields can be
// emptied while the other steps keep their drafted values.
func TestExecuteBookingStep_BlankFieldsClear(t *testing.T) {
	ctx := context.Background()
	st := signedIn(clientUser)
	deps := BookingDeps{API: &fakeAPI{}, Session: st, Now: clock}
	_ = st.Set(ctx, session.KeyBookingDraft, booking.Draft{
		EventName: "Gala", EventDate: "2026-12-24", GuestCount: 5, Notes: "vegan menu", PackageID: "P", VenueID: "V",
	})

	state, err := ExecuteBookingStep(ctx, BookingInput{Action: BookingNext, Draft: booking.Draft{
		EventName: "Gala", EventDate: "2026-12-24", GuestCount: 5, Notes: "  ", PackageID: "ignored",
	}}, deps)
	if err != nil || state.Wizard.Current != 1 {
		t.Fatalf("step 0 = %+v, %v", state, err)
	}
	if state.Draft.Notes != "" {
		t.Errorf("Notes = %q, want cleared", state.Draft.Notes)
	}
	if state.Draft.PackageID != "P" || state.Draft.VenueID != "V" {
		t.Errorf("fields of other steps changed: %+v", state.Draft)
	}

	// Step 1 -> 2, then go back from the venue step with the venue blanked.
	if _, err := ExecuteBookingStep(ctx, BookingInput{Action: BookingNext, Draft: booking.Draft{PackageID: "P"}}, deps); err != nil {
		t.Fatal(err)
	}
	state, err = ExecuteBookingStep(ctx, BookingInput{Action: BookingBack, Draft: booking.Draft{VenueID: ""}}, deps)
	if err != nil || state.Wizard.Current != 1 {
		t.Fatalf("back = %+v, %v", state, err)
	}
	got := LoadBooking(ctx, st).Draft
	if got.VenueID != "" {
		t.Errorf("VenueID = %q, want cleared", got.VenueID)
	}
	if got.EventName != "Gala" || got.PackageID != "P" {
		t.Errorf("draft = %+v", got)
	}
}

// TestExecuteBookingStep_SubmitFailureKeepsDraft tests that a refused booking keeps the draft.
func TestExecuteBookingStep_SubmitFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	st := signedIn(clientUser)
	complete := booking.Draft{Step: 3, EventName: "Gala", EventDate: "2026-12-24", GuestCount: 5, PackageID: "P", VenueID: "V"}
	_ = st.Set(ctx, session.KeyBookingDraft, complete)
	boom := errors.New("venue unavailable")
	_, err := ExecuteBookingStep(ctx, BookingInput{Action: BookingSubmit}, BookingDeps{API: &fakeAPI{err: boom}, Session: st, Now: clock})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if got := LoadBooking(ctx, st); got.Draft.VenueID != "V" || got.Wizard.Current != 3 {
		t.Errorf("draft = %+v", got)
	}

	if _, err := ExecuteBookingStep(ctx, BookingInput{Action: "jump"}, BookingDeps{Session: st, Now: clock}); !errors.Is(err, ErrUnknownBookingAction) {
		t.Errorf("action err = %v", err)
	}
	if err := ExecuteResetBooking(ctx, st); err != nil {
		t.Fatal(err)
	}
	if LoadBooking(ctx, st).Draft.EventName != "" {
		t.Error("reset should discard the draft")
	}
}
