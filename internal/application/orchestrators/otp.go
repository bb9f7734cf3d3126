package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/otp"
	"eventdesk/internal/domain/user"
)

// AuthAPIForOTP defines the API calls needed by the OTP orchestrators.
type AuthAPIForOTP interface {
	VerifySignupOTP(ctx context.Context, userID, email, code string) error
	ResendSignupOTP(ctx context.Context, userID, email string) error
	VerifyLoginOTP(ctx context.Context, userID, email, code string) (api.LoginResult, error)
	ResendLoginOTP(ctx context.Context, userID, email string) error
}

// OTPDeps holds dependencies for VerifyOTP and ResendOTP.
type OTPDeps struct {
	API     AuthAPIForOTP
	Session session.Store
	Policy  otp.Policy
	Now     func() time.Time
}

// OTPInput identifies the pending account and carries the entered code.
type OTPInput struct {
	Flow   string // otp.FlowSignup or otp.FlowLogin
	UserID string
	Email  string
	Digits []string // raw slot values, or one pasted string
}

// OTPResult is the outcome of a successful verification. User is set only for
// the login flow.
type OTPResult struct {
	User user.User
}

var (
	ErrUnknownFlow  = errors.New("unknown verification flow")
	ErrNoPendingOTP = errors.New("your verification session has ended, please start again")
)

// ExecuteVerifyOTP submits a complete, unexpired code to the API.
// PRE: input.UserID and input.Email identify the pending account
// POST: on login success the session user is stored; on any success the
// issue time is removed
func ExecuteVerifyOTP(ctx context.Context, input OTPInput, deps OTPDeps) (OTPResult, error) {
	if input.Flow != otp.FlowSignup && input.Flow != otp.FlowLogin {
		return OTPResult{}, ErrUnknownFlow
	}
	if input.UserID == "" && input.Email == "" {
		return OTPResult{}, ErrNoPendingOTP
	}
	code, err := otp.Normalize(input.Digits...)
	if err != nil {
		return OTPResult{}, err
	}
	if session.OTPCountdown(ctx, deps.Session, input.Flow, deps.Policy, deps.Now()).Expired() {
		return OTPResult{}, otp.ErrExpired
	}

	var result OTPResult
	switch input.Flow {
	case otp.FlowSignup:
		err = deps.API.VerifySignupOTP(ctx, input.UserID, input.Email, code)
	case otp.FlowLogin:
		var res api.LoginResult
		res, err = deps.API.VerifyLoginOTP(ctx, input.UserID, input.Email, code)
		if err == nil {
			if res.User.Email == "" {
				res.User.Email = input.Email
			}
			result.User, err = establishSession(ctx, deps.Session, res)
		}
	}
	if err != nil {
		slog.Info("auth_event", "event", "otp_rejected", "flow", input.Flow, "email", input.Email, "error", err)
		return OTPResult{}, err
	}

	_ = deps.Session.Remove(ctx, session.OTPIssuedKey(input.Flow))
	slog.Info("auth_event", "event", "otp_verified", "flow", input.Flow, "email", input.Email)
	return result, nil
}

// ExecuteResendOTP requests a fresh code once the cooldown has elapsed.
// PRE: input.UserID and input.Email identify the pending account
// POST: on success the issue time is reset to now and the returned countdown
// is full
func ExecuteResendOTP(ctx context.Context, input OTPInput, deps OTPDeps) (otp.Countdown, error) {
	if input.Flow != otp.FlowSignup && input.Flow != otp.FlowLogin {
		return otp.Countdown{}, ErrUnknownFlow
	}
	if input.UserID == "" && input.Email == "" {
		return otp.Countdown{}, ErrNoPendingOTP
	}
	current := session.OTPCountdown(ctx, deps.Session, input.Flow, deps.Policy, deps.Now())
	if !current.CanResend() {
		return current, fmt.Errorf("%w (%ds)", otp.ErrCooldown, current.ResendIn())
	}

	var err error
	if input.Flow == otp.FlowSignup {
		err = deps.API.ResendSignupOTP(ctx, input.UserID, input.Email)
	} else {
		err = deps.API.ResendLoginOTP(ctx, input.UserID, input.Email)
	}
	if err != nil {
		slog.Info("auth_event", "event", "otp_resend_failed", "flow", input.Flow, "email", input.Email, "error", err)
		return current, err
	}
	if err := deps.Session.Set(ctx, session.OTPIssuedKey(input.Flow), deps.Now().Unix()); err != nil {
		return current, err
	}
	slog.Info("auth_event", "event", "otp_resent", "flow", input.Flow, "email", input.Email)
	return otp.NewCountdown(deps.Policy), nil
}
