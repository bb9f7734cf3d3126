package booking

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Steps are the titles of the booking wizard, in order.
var Steps = []string{"Event Details", "Package", "Venue", "Review"}

// Domain errors
var (
	ErrEmptyEventName = errors.New("event name is required")
	ErrInvalidDate    = errors.New("event date must be a future date (YYYY-MM-DD)")
	ErrInvalidGuests  = errors.New("guest count must be at least 1")
	ErrNoPackage      = errors.New("choose a package")
	ErrNoVenue        = errors.New("choose a venue")
)

// Draft is a booking being assembled across wizard steps. It is kept in the
// session between requests.
type Draft struct {
	Step       int    `json:"step"`
	EventName  string `json:"event_name"`
	EventDate  string `json:"event_date"`
	GuestCount int    `json:"guest_count"`
	PackageID  string `json:"package_id"`
	VenueID    string `json:"venue_id"`
	Notes      string `json:"notes"`
}

// ValidateStep checks the fields collected by the given step.
// PRE: step is a wizard index
// POST: Returns nil when the step may be left forwards
func (d *Draft) ValidateStep(step int, today time.Time) error {
	switch step {
	case 0:
		if strings.TrimSpace(d.EventName) == "" {
			return ErrEmptyEventName
		}
		date, err := time.Parse("2006-01-02", d.EventDate)
		if err != nil || !date.After(today) {
			return ErrInvalidDate
		}
		if d.GuestCount < 1 {
			return ErrInvalidGuests
		}
	case 1:
		if d.PackageID == "" {
			return ErrNoPackage
		}
	case 2:
		if d.VenueID == "" {
			return ErrNoVenue
		}
	}
	return nil
}

// Validate checks every step.
func (d *Draft) Validate(today time.Time) error {
	for i := range Steps {
		if err := d.ValidateStep(i, today); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the draft as createBooking form fields.
func (d Draft) Fields() map[string]string {
	return map[string]string{
		"event_name":  d.EventName,
		"event_date":  d.EventDate,
		"guest_count": strconv.Itoa(d.GuestCount),
		"package_id":  d.PackageID,
		"venue_id":    d.VenueID,
		"notes":       d.Notes,
	}
}
