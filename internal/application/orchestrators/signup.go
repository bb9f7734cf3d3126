package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/application/session"
	"eventdesk/internal/application/validate"
	"eventdesk/internal/domain/otp"
	"eventdesk/internal/domain/profile"
)

// AuthAPIForSignup defines the API calls needed by Signup.
type AuthAPIForSignup interface {
	Signup(ctx context.Context, s profile.Signup) (api.SignupResult, error)
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	API     AuthAPIForSignup
	Session session.Store
	Now     func() time.Time
}

// SignupOutcome identifies the account awaiting its verification code.
type SignupOutcome struct {
	PendingUserID string
	PendingEmail  string
}

// ExecuteSignup validates the form and registers a pending account.
// PRE: none
// POST: on success the signup code issue time is stored; nothing else changes
func ExecuteSignup(ctx context.Context, input profile.Signup, deps SignupDeps) (SignupOutcome, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(input); err != nil {
		return SignupOutcome{}, err
	}

	res, err := deps.API.Signup(ctx, input)
	if err != nil {
		slog.Info("auth_event", "event", "signup_failed", "email", input.Email, "error", err)
		return SignupOutcome{}, err
	}
	if err := deps.Session.Set(ctx, session.OTPIssuedKey(otp.FlowSignup), deps.Now().Unix()); err != nil {
		return SignupOutcome{}, err
	}
	out := SignupOutcome{PendingUserID: res.UserID, PendingEmail: res.Email}
	if out.PendingEmail == "" {
		out.PendingEmail = input.Email
	}
	slog.Info("auth_event", "event", "signup_pending", "email", out.PendingEmail, "role", input.Role)
	return out, nil
}
