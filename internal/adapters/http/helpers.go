package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/session"
	"eventdesk/internal/application/validate"
	"eventdesk/internal/domain/booking"
	"eventdesk/internal/domain/feedback"
	"eventdesk/internal/domain/otp"
)

// localPath returns p when it names a path on this site and fallback
// otherwise. Browsers read a backslash as a slash, so "/\host" counts as
// another origin just like "//host".
func localPath(p, fallback string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsRune(p, '\\') {
		return fallback
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return p
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("internal_error", "error", err.Error())
	}
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// userErrors are failures whose own text is fit to show.
var userErrors = []error{
	orchestrators.ErrMissingCredentials,
	orchestrators.ErrUnrecognizedRole,
	orchestrators.ErrUnknownFlow,
	orchestrators.ErrNoPendingOTP,
	orchestrators.ErrNotSignedIn,
	orchestrators.ErrAvatarTooLarge,
	orchestrators.ErrAvatarNotAnImage,
	orchestrators.ErrUnknownNavGroup,
	orchestrators.ErrUnknownBookingAction,
	otp.ErrIncomplete,
	otp.ErrExpired,
	otp.ErrCooldown,
	feedback.ErrEmptyReply,
	booking.ErrEmptyEventName,
	booking.ErrInvalidDate,
	booking.ErrInvalidGuests,
	booking.ErrNoPackage,
	booking.ErrNoVenue,
}

// userMessage turns err into a line for a form or flash. API refusals show
// the API's message; anything unrecognized is logged and shown generically.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.Message(err)
	}
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return verrs.First()
	}
	for _, known := range userErrors {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	slog.Error("request_failed", "error", err)
	return api.Message(err)
}

// flash stores a one-shot message for the next page.
func (s *server) flash(r *http.Request, kind, message string) {
	if err := session.SetFlash(r.Context(), s.store(r), kind, message); err != nil {
		slog.Warn("session_event", "event", "flash_failed", "error", err)
	}
}

// flashResult flashes err's message, or success when err is nil.
func (s *server) flashResult(r *http.Request, err error, success string) {
	if err != nil {
		s.flash(r, session.FlashError, userMessage(err))
		return
	}
	s.flash(r, session.FlashSuccess, success)
}

// credentials returns the token and user id cached at login.
func (s *server) credentials(r *http.Request) (token, userID string) {
	st := s.store(r)
	st.Get(r.Context(), session.KeyToken, &token)
	st.Get(r.Context(), session.KeyUserID, &userID)
	return token, userID
}
