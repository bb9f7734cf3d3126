package projections

import (
	"context"
	"strings"
	"time"

	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/otp"
)

// GetOTPScreenQuery carries input for the code entry screen.
type GetOTPScreenQuery struct {
	Flow   string
	Email  string
	Policy otp.Policy
	Now    time.Time
}

// OTPScreenResult is the state the code entry page renders and its script
// continues from.
type OTPScreenResult struct {
	Flow        string
	Email       string
	MaskedEmail string
	Length      int
	Remaining   int
	Clock       string
	Expired     bool
	CanResend   bool
	ResendIn    int
	Cooldown    int // seconds
	Lifetime    int // seconds
	ActionPath  string
	ResendPath  string
}

// QueryGetOTPScreen reconstructs the countdown of the pending code.
// PRE: query.Flow is otp.FlowSignup or otp.FlowLogin
// POST: Remaining is derived from the stored issue time, never reset by a reload
func QueryGetOTPScreen(ctx context.Context, st session.Store, query GetOTPScreenQuery) OTPScreenResult {
	c := session.OTPCountdown(ctx, st, query.Flow, query.Policy, query.Now)
	base := "/verify-otp"
	if query.Flow == otp.FlowLogin {
		base = "/verify-login"
	}
	return OTPScreenResult{
		Flow:        query.Flow,
		Email:       query.Email,
		MaskedEmail: MaskEmail(query.Email),
		Length:      otp.CodeLength,
		Remaining:   c.Remaining,
		Clock:       c.Clock(),
		Expired:     c.Expired(),
		CanResend:   c.CanResend(),
		ResendIn:    c.ResendIn(),
		Cooldown:    int(query.Policy.ResendCooldown / time.Second),
		Lifetime:    query.Policy.Seconds(),
		ActionPath:  base,
		ResendPath:  base + "/resend",
	}
}

// MaskEmail keeps the first character of the local part: "c***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	return email[:1] + "***" + email[at:]
}
