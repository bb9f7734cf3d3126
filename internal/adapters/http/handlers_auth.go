package web

import (
	"net/http"
	"strings"

	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/profile"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/user"
)

// Auth-flow cookies identifying the account awaiting a code.
const (
	pendingSignupUserID = "pending_signup_user_id"
	pendingSignupEmail  = "pending_signup_email"
	pendingOTPUserID    = "pending_otp_user_id"
	pendingOTPEmail     = "pending_otp_email"
)

type loginForm struct {
	Email string
	Error string
}

type signupForm struct {
	Signup profile.Signup
	Error  string
}

// handleRoot sends visitors to the login page, which forwards signed-in users.
func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, role.LoginPath, http.StatusSeeOther)
}

// handleAbout renders the public about page from the website settings.
func (s *server) handleAbout(w http.ResponseWriter, r *http.Request) {
	site, err := projections.QueryGetSite(r.Context(), s.API)
	if err != nil {
		s.renderStatus(w, r, http.StatusServiceUnavailable, "about.html", "About", map[string]any{
			"Error": userMessage(err),
		})
		return
	}
	s.render(w, r, "about.html", "About "+site.Settings.SiteName, map[string]any{"Site": site})
}

// signedInHome returns the role home of a signed-in session, or "".
func (s *server) signedInHome(r *http.Request) string {
	var u user.User
	if s.store(r).Get(r.Context(), session.KeyUser, &u) && u.Role.Valid() {
		return u.Role.Home()
	}
	return ""
}

// handleLoginForm handles GET /login
func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if home := s.signedInHome(r); home != "" {
		http.Redirect(w, r, home, http.StatusSeeOther)
		return
	}
	s.render(w, r, "login.html", "Sign in", loginForm{})
}

// handleLogin handles POST /login
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	out, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		API:     s.API,
		Session: s.store(r),
		Now:     s.Now,
	})
	if err != nil {
		s.renderStatus(w, r, http.StatusUnauthorized, "login.html", "Sign in", loginForm{
			Email: strings.TrimSpace(input.Email),
			Error: userMessage(err),
		})
		return
	}
	if out.OTPRequired {
		middleware.SetFlowCookie(w, pendingOTPUserID, out.PendingUserID, s.Policy.Lifetime*2)
		middleware.SetFlowCookie(w, pendingOTPEmail, out.PendingEmail, s.Policy.Lifetime*2)
		http.Redirect(w, r, "/verify-login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, out.User.Role.Home(), http.StatusSeeOther)
}

// handleSignupForm handles GET /signup
func (s *server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	if home := s.signedInHome(r); home != "" {
		http.Redirect(w, r, home, http.StatusSeeOther)
		return
	}
	s.render(w, r, "signup.html", "Create an account", signupForm{Signup: profile.Signup{Role: "Client"}})
}

// handleSignup handles POST /signup
func (s *server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := profile.Signup{
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		Role:            r.FormValue("role"),
	}
	out, err := orchestrators.ExecuteSignup(r.Context(), input, orchestrators.SignupDeps{
		API:     s.API,
		Session: s.store(r),
		Now:     s.Now,
	})
	if err != nil {
		input.Password, input.ConfirmPassword = "", ""
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "signup.html", "Create an account", signupForm{
			Signup: input,
			Error:  userMessage(err),
		})
		return
	}
	middleware.SetFlowCookie(w, pendingSignupUserID, out.PendingUserID, s.Policy.Lifetime*2)
	middleware.SetFlowCookie(w, pendingSignupEmail, out.PendingEmail, s.Policy.Lifetime*2)
	http.Redirect(w, r, "/verify-otp", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutDeps{Session: s.store(r)})
	for _, name := range orchestrators.PendingAuthCookies {
		middleware.ExpireCookie(w, name)
	}
	http.Redirect(w, r, role.LoginPath, http.StatusSeeOther)
}
