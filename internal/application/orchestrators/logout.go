package orchestrators

import (
	"context"
	"log/slog"

	"eventdesk/internal/application/session"
	"eventdesk/internal/application/shell"
	"eventdesk/internal/domain/user"
)

// PendingAuthCookies are the auth-flow cookies expired on logout and after a
// completed verification.
var PendingAuthCookies = []string{
	"pending_signup_user_id",
	"pending_signup_email",
	"pending_otp_user_id",
	"pending_otp_email",
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Session session.Store
}

// ExecuteLogout signs the browser session out.
// PRE: none
// POST: user, token and user_id are absent; the caller expires PendingAuthCookies
// and navigates to the login page
func ExecuteLogout(ctx context.Context, deps LogoutDeps) {
	var u user.User
	deps.Session.Get(ctx, session.KeyUser, &u)
	shell.SignOut(ctx, deps.Session)
	_ = deps.Session.Remove(ctx, session.KeyBookingDraft)
	slog.Info("auth_event", "event", "logout", "email", u.Email)
}
