package session

import (
	"context"
	"time"

	"eventdesk/internal/domain/otp"
)

// OTPCountdown reconstructs the code countdown of flow from the stored issue
// time. A missing issue time counts as a fresh code.
// PRE: flow is otp.FlowSignup or otp.FlowLogin
// POST: 0 <= Remaining <= policy lifetime
func OTPCountdown(ctx context.Context, st Store, flow string, policy otp.Policy, now time.Time) otp.Countdown {
	var issued int64
	if !st.Get(ctx, OTPIssuedKey(flow), &issued) {
		return otp.NewCountdown(policy)
	}
	return otp.CountdownAt(policy, time.Unix(issued, 0), now)
}
