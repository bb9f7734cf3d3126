package web

import (
	"net/http"

	"eventdesk/internal/adapters/http/metrics"
	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/otp"
)

// otpFlow ties a code entry page to its pending cookies.
type otpFlow struct {
	Flow        string
	Path        string
	Title       string
	UserCookie  string
	EmailCookie string
	StartPath   string // where an ended flow sends the user
}

var otpFlows = []otpFlow{
	{
		Flow:        otp.FlowSignup,
		Path:        "/verify-otp",
		Title:       "Verify your email",
		UserCookie:  pendingSignupUserID,
		EmailCookie: pendingSignupEmail,
		StartPath:   "/signup",
	},
	{
		Flow:        otp.FlowLogin,
		Path:        "/verify-login",
		Title:       "Confirm it's you",
		UserCookie:  pendingOTPUserID,
		EmailCookie: pendingOTPEmail,
		StartPath:   "/login",
	},
}

// signupSuccessDelay is how long the success message shows before /login.
const signupSuccessDelay = 2

type otpPage struct {
	Screen          projections.OTPScreenResult
	Title           string
	Error           string
	Verified        bool
	RedirectTo      string
	RedirectSeconds int
}

// pending reads the account awaiting a code from the flow's cookies.
func (f otpFlow) pending(r *http.Request) (userID, email string) {
	if c, err := r.Cookie(f.UserCookie); err == nil {
		userID = c.Value
	}
	if c, err := r.Cookie(f.EmailCookie); err == nil {
		email = c.Value
	}
	return userID, email
}

func (f otpFlow) expire(w http.ResponseWriter) {
	middleware.ExpireCookie(w, f.UserCookie)
	middleware.ExpireCookie(w, f.EmailCookie)
}

func (s *server) otpScreen(r *http.Request, f otpFlow, email string) projections.OTPScreenResult {
	return projections.QueryGetOTPScreen(r.Context(), s.store(r), projections.GetOTPScreenQuery{
		Flow:   f.Flow,
		Email:  email,
		Policy: s.Policy,
		Now:    s.Now(),
	})
}

// handleOTPForm handles GET /verify-otp and GET /verify-login
func (s *server) handleOTPForm(f otpFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, email := f.pending(r)
		if userID == "" && email == "" {
			s.flash(r, session.FlashInfo, orchestrators.ErrNoPendingOTP.Error())
			http.Redirect(w, r, f.StartPath, http.StatusSeeOther)
			return
		}
		s.render(w, r, "otp.html", f.Title, otpPage{Screen: s.otpScreen(r, f, email), Title: f.Title})
	}
}

// handleOTPVerify handles POST /verify-otp and POST /verify-login
func (s *server) handleOTPVerify(f otpFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		userID, email := f.pending(r)
		digits := r.Form["digit"]
		if code := r.FormValue("code"); code != "" {
			digits = []string{code}
		}
		res, err := orchestrators.ExecuteVerifyOTP(r.Context(), orchestrators.OTPInput{
			Flow:   f.Flow,
			UserID: userID,
			Email:  email,
			Digits: digits,
		}, s.otpDeps(r))
		if err != nil {
			metrics.OTPEventsTotal.WithLabelValues(f.Flow, "rejected").Inc()
			s.renderStatus(w, r, http.StatusUnprocessableEntity, "otp.html", f.Title, otpPage{
				Screen: s.otpScreen(r, f, email),
				Title:  f.Title,
				Error:  userMessage(err),
			})
			return
		}
		metrics.OTPEventsTotal.WithLabelValues(f.Flow, "verified").Inc()
		f.expire(w)

		if f.Flow == otp.FlowLogin {
			http.Redirect(w, r, res.User.Role.Home(), http.StatusSeeOther)
			return
		}
		s.render(w, r, "otp.html", f.Title, otpPage{
			Screen:          s.otpScreen(r, f, email),
			Title:           f.Title,
			Verified:        true,
			RedirectTo:      "/login",
			RedirectSeconds: signupSuccessDelay,
		})
	}
}

// handleOTPResend handles POST /verify-otp/resend and POST /verify-login/resend
func (s *server) handleOTPResend(f otpFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, email := f.pending(r)
		_, err := orchestrators.ExecuteResendOTP(r.Context(), orchestrators.OTPInput{
			Flow:   f.Flow,
			UserID: userID,
			Email:  email,
		}, s.otpDeps(r))
		if err != nil {
			metrics.OTPEventsTotal.WithLabelValues(f.Flow, "resend_refused").Inc()
		} else {
			metrics.OTPEventsTotal.WithLabelValues(f.Flow, "resent").Inc()
		}
		s.flashResult(r, err, "A new code is on its way to "+projections.MaskEmail(email)+".")
		http.Redirect(w, r, f.Path, http.StatusSeeOther)
	}
}

func (s *server) otpDeps(r *http.Request) orchestrators.OTPDeps {
	return orchestrators.OTPDeps{
		API:     s.API,
		Session: s.store(r),
		Policy:  s.Policy,
		Now:     s.Now,
	}
}
