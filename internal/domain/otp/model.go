package otp

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CodeLength is the number of digits in a one-time code.
const CodeLength = 6

// Flows that issue codes.
const (
	FlowSignup = "signup"
	FlowLogin  = "login"
)

// Domain errors
var (
	ErrIncomplete = errors.New("enter all 6 digits of the code")
	ErrExpired    = errors.New("the code has expired, request a new one")
	ErrCooldown   = errors.New("please wait before requesting another code")
)

// Policy holds the expiry and resend windows.
type Policy struct {
	Lifetime       time.Duration
	ResendCooldown time.Duration
}

// DefaultPolicy is 300 s to expiry with a 60 s resend cooldown.
var DefaultPolicy = Policy{Lifetime: 300 * time.Second, ResendCooldown: 60 * time.Second}

// Seconds returns the lifetime in whole seconds.
func (p Policy) Seconds() int { return int(p.Lifetime / time.Second) }

// resendThreshold is the remaining-seconds value at or below which resend unlocks.
func (p Policy) resendThreshold() int {
	return int((p.Lifetime - p.ResendCooldown) / time.Second)
}

// Countdown tracks remaining validity of the current code, in seconds.
type Countdown struct {
	Remaining int
	policy    Policy
}

// NewCountdown starts a countdown at the full lifetime.
// POST: Remaining == p.Seconds()
func NewCountdown(p Policy) Countdown {
	return Countdown{Remaining: p.Seconds(), policy: p}
}

// CountdownAt reconstructs the countdown for a code issued at issuedAt.
// PRE: none
// POST: 0 <= Remaining <= p.Seconds()
func CountdownAt(p Policy, issuedAt, now time.Time) Countdown {
	c := NewCountdown(p)
	elapsed := int(now.Sub(issuedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	c.Remaining -= elapsed
	if c.Remaining < 0 {
		c.Remaining = 0
	}
	return c
}

// Tick advances the countdown by one second, stopping at zero.
func (c *Countdown) Tick() {
	if c.Remaining > 0 {
		c.Remaining--
	}
}

// Reset restarts the countdown at the full lifetime.
func (c *Countdown) Reset() {
	c.Remaining = c.policy.Seconds()
}

// Expired reports whether the code can no longer be submitted.
func (c Countdown) Expired() bool { return c.Remaining <= 0 }

// CanResend reports whether the resend cooldown has elapsed.
func (c Countdown) CanResend() bool {
	return c.Remaining <= c.policy.resendThreshold()
}

// ResendIn returns the seconds left until resend unlocks.
func (c Countdown) ResendIn() int {
	n := c.Remaining - c.policy.resendThreshold()
	if n < 0 {
		return 0
	}
	return n
}

// Clock formats the remaining time as m:ss.
func (c Countdown) Clock() string {
	return fmt.Sprintf("%d:%02d", c.Remaining/60, c.Remaining%60)
}

// Slots is the per-digit entry state of the code form.
type Slots struct {
	Digits [CodeLength]string
	Focus  int
}

// Type enters ch into slot i. A digit advances focus to the next slot;
// anything else is ignored.
// PRE: 0 <= i < CodeLength
func (s *Slots) Type(i int, ch string) {
	if i < 0 || i >= CodeLength || len(ch) != 1 || !isDigit(ch[0]) {
		return
	}
	s.Digits[i] = ch
	s.Focus = i
	if i < CodeLength-1 {
		s.Focus = i + 1
	}
}

// Backspace handles backspace in slot i: a filled slot is cleared, an empty
// slot moves focus to the previous one.
func (s *Slots) Backspace(i int) {
	if i < 0 || i >= CodeLength {
		return
	}
	if s.Digits[i] != "" {
		s.Digits[i] = ""
		s.Focus = i
		return
	}
	if i > 0 {
		s.Focus = i - 1
	}
}

// Paste fills slots left-to-right with the digits of text, ignoring other
// characters and clipping to CodeLength. Focus lands on the last filled slot.
func (s *Slots) Paste(text string) {
	digits := DigitsOf(text)
	if digits == "" {
		return
	}
	for i := range s.Digits {
		s.Digits[i] = ""
	}
	for i := 0; i < len(digits); i++ {
		s.Digits[i] = digits[i : i+1]
	}
	s.Focus = len(digits) - 1
}

// Clear empties every slot and focuses the first.
func (s *Slots) Clear() {
	*s = Slots{}
}

// Complete reports whether every slot holds a digit.
func (s Slots) Complete() bool {
	for _, d := range s.Digits {
		if d == "" {
			return false
		}
	}
	return true
}

// Code joins the slots.
func (s Slots) Code() string {
	return strings.Join(s.Digits[:], "")
}

// CanSubmit reports whether the form may be submitted.
func (s Slots) CanSubmit(c Countdown) bool {
	return s.Complete() && !c.Expired()
}

// DigitsOf strips non-digits and clips to CodeLength.
func DigitsOf(text string) string {
	var b strings.Builder
	for i := 0; i < len(text) && b.Len() < CodeLength; i++ {
		if isDigit(text[i]) {
			b.WriteByte(text[i])
		}
	}
	return b.String()
}

// Normalize turns submitted slot values into a full code.
// PRE: parts are the raw slot values in order, or a single pasted string
// POST: Returns the 6-digit code or ErrIncomplete
func Normalize(parts ...string) (string, error) {
	var s Slots
	s.Paste(strings.Join(parts, ""))
	if !s.Complete() {
		return "", ErrIncomplete
	}
	return s.Code(), nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
