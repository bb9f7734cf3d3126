package web

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventdesk/internal/adapters/email"
	"eventdesk/internal/adapters/http/metrics"
	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/application/notify"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/otp"
	"eventdesk/internal/domain/role"
)

// API is every PHP API operation the handlers use. *api.Client implements it.
type API interface {
	orchestrators.AuthAPIForLogin
	orchestrators.AuthAPIForSignup
	orchestrators.AuthAPIForOTP
	orchestrators.ProfileAPI
	orchestrators.AdminAPI
	orchestrators.BookingAPI
	projections.StatsAPI
	projections.ListAPI
	projections.PackageAPI
	projections.ProfileAPI
	projections.SiteAPI
	projections.FeedbackAPI
}

// multipartOverhead is the room left for form fields and part headers
// around an avatar of MaxAvatarBytes.
const multipartOverhead = 1 << 20

// Deps holds everything the handlers need.
type Deps struct {
	API         API
	ImageURL    func(ref string) string
	Sessions    *session.Manager
	Preferences orchestrators.PreferenceStore
	Bus         *notify.Bus
	Mailer      email.Sender
	Policy      otp.Policy
	Now         func() time.Time

	HashKey        []byte // browser session cookie signature key
	CSRFKey        []byte
	TrustedOrigins []string
	SecureCookies  bool

	RateLimitPerSecond int
	AuthRatePerMinute  int
	SlowRequestMs      int

	// Stop ends background work such as the rate limiter sweep.
	Stop <-chan struct{}
}

// server is the handler set bound to one Deps.
type server struct {
	Deps
	pages *pageSet
}

// NewMux wires HTTP handlers for the app.
// PRE: deps.API, deps.Sessions, deps.Bus and the keys are set
// POST: the returned handler runs the full middleware chain
func NewMux(deps Deps) (http.Handler, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Mailer == nil {
		deps.Mailer = email.NewNoopSender()
	}
	if deps.Bus == nil {
		deps.Bus = notify.NewBus()
	}
	if deps.ImageURL == nil {
		deps.ImageURL = func(ref string) string { return ref }
	}
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	s := &server{Deps: deps, pages: pages}
	middleware.SecureCookies = deps.SecureCookies

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	limiter := middleware.NewRateLimiter(deps.RateLimitPerSecond, time.Second, deps.Stop)

	// Apply middleware: Timing -> RateLimit -> BrowserSession -> LimitMultipart -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(deps.CSRFKey, deps.TrustedOrigins),
		middleware.LimitMultipart(orchestrators.MaxAvatarBytes+multipartOverhead),
		middleware.BrowserSession(middleware.NewSessionCodec(deps.HashKey)),
		middleware.RateLimit(limiter),
		middleware.Timing(metrics.HTTPRequestDuration, deps.SlowRequestMs),
	), nil
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	limited := middleware.AuthRateLimit(s.AuthRatePerMinute)

	// Public
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /about", s.handleAbout)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.Handle("POST /login", limited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("GET /signup", s.handleSignupForm)
	mux.Handle("POST /signup", limited(http.HandlerFunc(s.handleSignup)))
	mux.HandleFunc("POST /logout", s.handleLogout)
	for _, f := range otpFlows {
		mux.HandleFunc("GET "+f.Path, s.handleOTPForm(f))
		mux.Handle("POST "+f.Path, limited(http.HandlerFunc(s.handleOTPVerify(f))))
		mux.Handle("POST "+f.Path+"/resend", limited(http.HandlerFunc(s.handleOTPResend(f))))
	}

	// Session
	mux.HandleFunc("GET /api/session/events", s.handleSessionEvents)
	mux.HandleFunc("GET /api/session/user", s.handleSessionUser)

	// Role areas
	for _, r := range []role.Role{role.Admin, role.Client, role.Organizer} {
		area := "/" + r.Area()
		guard := s.guard(r)
		mux.Handle("GET "+area+"/dashboard", guard(s.handleDashboard))
		mux.Handle("GET "+area+"/settings", guard(s.handleSettings))
		mux.Handle("POST "+area+"/settings/profile", guard(s.handleUpdateProfile))
		mux.Handle("POST "+area+"/settings/password", guard(s.handleChangePassword))
		mux.Handle("POST "+area+"/settings/avatar", guard(s.handleUploadAvatar))
		for _, res := range projections.Resources(r) {
			mux.Handle("GET "+area+"/"+res.Slug, guard(s.handleResourceList(res.Slug)))
		}
	}

	// Admin
	admin := s.guard(role.Admin)
	mux.Handle("GET /admin/website-settings", admin(s.handleWebsiteSettingsForm))
	mux.Handle("POST /admin/website-settings", admin(s.handleWebsiteSettings))
	mux.Handle("GET /admin/feedbacks", admin(s.handleFeedbacks))
	mux.Handle("POST /admin/feedbacks/{id}/delete", admin(s.handleDeleteFeedback))
	mux.Handle("POST /admin/feedbacks/{id}/reply", admin(s.handleReplyFeedback))
	mux.Handle("POST /admin/nav/toggle", admin(s.handleNavToggle))

	// Client
	client := s.guard(role.Client)
	mux.Handle("GET /client/packages/{id}", client(s.handlePackageDetail))
	mux.Handle("GET /client/book", client(s.handleBookingForm))
	mux.Handle("POST /client/book", client(s.handleBooking))
}

// guard returns a constructor that puts the role guard in front of a handler.
func (s *server) guard(required role.Role) func(http.HandlerFunc) http.Handler {
	mw := middleware.RequireRole(s.Sessions, required, s.Now)
	return func(h http.HandlerFunc) http.Handler {
		return mw(h)
	}
}

// store opens the session values of the request's browser session.
// PRE: BrowserSession ran
func (s *server) store(r *http.Request) *session.Session {
	return s.Sessions.Open(middleware.SessionIDFromContext(r.Context()))
}

// scope identifies the tab a form was submitted from.
func (s *server) scope(r *http.Request) notify.Scope {
	return notify.Scope{
		SessionID: middleware.SessionIDFromContext(r.Context()),
		TabID:     r.FormValue("tab_id"),
	}
}
