// Package shell decides whether a request may enter a role area.
package shell

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/user"
)

// Outcome is the guard's verdict.
type Outcome int

const (
	RedirectLogin Outcome = iota
	RedirectHome
	Authenticated
)

// String returns the metric label of the outcome.
func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case RedirectHome:
		return "role_home"
	}
	return "login"
}

// Reasons recorded with each decision.
const (
	ReasonOK          = "ok"
	ReasonAbsent      = "absent"
	ReasonCorrupt     = "corrupt"
	ReasonUnavailable = "unavailable"
	ReasonExpired     = "expired"
	ReasonUnknownRole = "unknown_role"
	ReasonWrongRole   = "wrong_role"
)

// Decision is the result of Evaluate.
type Decision struct {
	Outcome  Outcome
	Location string // redirect target; empty when Authenticated
	Reason   string
	User     user.User // set when Authenticated
}

// Evaluate runs the role guard for an area requiring role required.
// PRE: required is a valid role
// POST: Authenticated iff a readable user with role == required is cached and
// its token has not expired; a corrupt user value is removed; an expired token
// or unrecognized role signs the session out
func Evaluate(ctx context.Context, st session.Store, required role.Role, now time.Time) Decision {
	var u user.User
	err := st.Lookup(ctx, session.KeyUser, &u)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return toLogin(ReasonAbsent)
	case errors.Is(err, session.ErrCorrupt):
		if rmErr := st.Remove(ctx, session.KeyUser); rmErr != nil {
			slog.Error("session_event", "event", "clear_corrupt_failed", "error", rmErr)
		}
		slog.Warn("session_event", "event", "corrupt_user_cleared", "error", err)
		return toLogin(ReasonCorrupt)
	case err != nil:
		slog.Error("session_event", "event", "read_failed", "error", err)
		return toLogin(ReasonUnavailable)
	}

	var token string
	if st.Get(ctx, session.KeyToken, &token) && session.TokenExpired(token, now) {
		SignOut(ctx, st)
		return toLogin(ReasonExpired)
	}

	if !u.Role.Valid() {
		SignOut(ctx, st)
		return toLogin(ReasonUnknownRole)
	}
	if u.Role != required {
		return Decision{Outcome: RedirectHome, Location: u.Role.Home(), Reason: ReasonWrongRole}
	}
	return Decision{Outcome: Authenticated, Reason: ReasonOK, User: u}
}

// SignOut removes the authentication values of a session.
// POST: user, token and user_id are absent; failures are logged, not returned
func SignOut(ctx context.Context, st session.Store) {
	for _, key := range []string{session.KeyUser, session.KeyToken, session.KeyUserID} {
		if err := st.Remove(ctx, key); err != nil {
			slog.Error("session_event", "event", "sign_out_failed", "key", key, "error", err)
		}
	}
}

func toLogin(reason string) Decision {
	return Decision{Outcome: RedirectLogin, Location: role.LoginPath, Reason: reason}
}
