package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/otp"
	"eventdesk/internal/domain/user"
)

// AuthAPIForLogin defines the API calls needed by Login.
type AuthAPIForLogin interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutcome is either an established session (User set) or an OTP
// challenge (OTPRequired with the pending identifiers).
type LoginOutcome struct {
	User          user.User
	OTPRequired   bool
	PendingUserID string
	PendingEmail  string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	API     AuthAPIForLogin
	Session session.Store
	Now     func() time.Time
}

var (
	ErrMissingCredentials = errors.New("enter your email and password")
	ErrUnrecognizedRole   = errors.New("this account's role is not supported here")
)

// ExecuteLogin checks credentials with the API and caches the session user.
// PRE: none
// POST: on success user, token and user_id are stored; on an OTP challenge
// nothing is stored except the code issue time
// INVARIANT: a user whose role is outside the closed set is never stored
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginOutcome, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return LoginOutcome{}, ErrMissingCredentials
	}

	res, err := deps.API.Login(ctx, email, input.Password)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "error", err)
		return LoginOutcome{}, err
	}

	if res.OTPRequired {
		pendingEmail := res.Email
		if pendingEmail == "" {
			pendingEmail = email
		}
		if err := deps.Session.Set(ctx, session.OTPIssuedKey(otp.FlowLogin), deps.Now().Unix()); err != nil {
			return LoginOutcome{}, err
		}
		slog.Info("auth_event", "event", "login_challenged", "email", email)
		return LoginOutcome{OTPRequired: true, PendingUserID: res.UserID, PendingEmail: pendingEmail}, nil
	}

	u, err := establishSession(ctx, deps.Session, res)
	if err != nil {
		slog.Warn("auth_event", "event", "login_rejected", "email", email, "error", err)
		return LoginOutcome{}, err
	}
	slog.Info("auth_event", "event", "login_success", "email", email, "role", u.Role.String())
	return LoginOutcome{User: u}, nil
}

// establishSession validates the API's user and stores user, token and user_id.
// PRE: res comes from a successful login or login verification
// POST: the three auth keys are written, user last
func establishSession(ctx context.Context, st session.Store, res api.LoginResult) (user.User, error) {
	u := res.User
	if u.ID == "" {
		u.ID = res.UserID
	}
	if !u.Role.Valid() {
		return user.User{}, ErrUnrecognizedRole
	}
	if err := u.Validate(); err != nil {
		return user.User{}, fmt.Errorf("login returned an invalid user: %w", err)
	}
	if err := st.Set(ctx, session.KeyToken, res.Token); err != nil {
		return user.User{}, err
	}
	if err := st.Set(ctx, session.KeyUserID, u.ID); err != nil {
		return user.User{}, err
	}
	if err := st.Set(ctx, session.KeyUser, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}
