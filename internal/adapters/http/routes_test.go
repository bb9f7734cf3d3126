package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/adapters/email"
	"eventdesk/internal/adapters/http/middleware"
	sessionstore "eventdesk/internal/adapters/storage/session"
	"eventdesk/internal/application/notify"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/booking"
	"eventdesk/internal/domain/catalog"
	"eventdesk/internal/domain/feedback"
	"eventdesk/internal/domain/otp"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/sitesettings"
	"eventdesk/internal/domain/user"
)

var (
	testHashKey  = []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	testBlockKey = []byte("0123456789abcdef0123456789abcdef")
	testCSRFKey  = []byte("fedcba9876543210fedcba9876543210")
)

var clockTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

const testPassword = "correct horse"

var (
	adminUser     = user.User{ID: "1", FirstName: "Ada", LastName: "Admin", Role: role.Admin}
	clientUser    = user.User{ID: "2", FirstName: "Cleo", LastName: "Client", Role: role.Client}
	organizerUser = user.User{ID: "3", FirstName: "Otto", LastName: "Organizer", Role: role.Organizer}
)

var csrfField = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

// testApp is a running server backed by the fake API.
type testApp struct {
	URL    string
	API    *fakeAPI
	Bus    *notify.Bus
	Mailer  *email.NoopSender
	handler http.Handler
	client  *http.Client
	token   string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	fake := newFakeAPI()
	fake.addAccount("ada@example.com", testPassword, false, adminUser)
	fake.addAccount("cleo@example.com", testPassword, false, clientUser)
	fake.addAccount("otto@example.com", testPassword, true, organizerUser)

	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })

	app := &testApp{API: fake, Bus: notify.NewBus(), Mailer: email.NewNoopSender()}
	handler, err := NewMux(Deps{
		API:                fake,
		ImageURL:           func(ref string) string { return api.ImageURL("http://img.test/image.php", ref) },
		Sessions:           session.NewManager(sessionstore.NewMemoryStore(), testHashKey, testBlockKey),
		Preferences:        newMemoryPrefs(),
		Bus:                app.Bus,
		Mailer:             app.Mailer,
		Policy:             otp.DefaultPolicy,
		Now:                func() time.Time { return clockTime },
		HashKey:            testHashKey,
		CSRFKey:            testCSRFKey,
		RateLimitPerSecond: 1000,
		AuthRatePerMinute:  1000,
		SlowRequestMs:      1000,
		Stop:               stop,
	})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}
	app.handler = handler
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	app.URL = srv.URL

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	app.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	_, body := app.get(t, "/login")
	m := csrfField.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("login page has no CSRF field")
	}
	app.token = m[1]
	return app
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

// serve runs req in process with the client's cookies, for bodies the
// server stops reading early.
func (a *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	u, _ := url.Parse(a.URL)
	for _, c := range a.client.Jar.Cookies(u) {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	return a.do(t, req)
}

// post submits a form carrying the CSRF token.
func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("gorilla.csrf.Token", a.token)
	req, err := http.NewRequest(http.MethodPost, a.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

func (a *testApp) postJSON(t *testing.T, path string, v any) (*http.Response, string) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, a.URL+path, bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req)
}

func (a *testApp) signIn(t *testing.T, email string) {
	t.Helper()
	resp, _ := a.post(t, "/login", url.Values{"email": {email}, "password": {testPassword}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
}

func (a *testApp) cookie(t *testing.T, name string) string {
	t.Helper()
	u, _ := url.Parse(a.URL)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func wantRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}

// TestRoleGuard_Redirects tests the guard's redirect table over HTTP.
func TestRoleGuard_Redirects(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.get(t, "/admin/dashboard")
	wantRedirect(t, resp, role.LoginPath)

	app.signIn(t, "cleo@example.com")
	resp, _ = app.get(t, "/admin/dashboard")
	wantRedirect(t, resp, role.ClientHome)
	resp, _ = app.get(t, "/organizer/events")
	wantRedirect(t, resp, role.ClientHome)

	resp, body := app.get(t, "/client/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("own dashboard status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Cleo Client") {
		t.Error("dashboard shell missing display name")
	}
}

// TestLogin_RedirectsToRoleHome tests direct login for every role without a code.
func TestLogin_RedirectsToRoleHome(t *testing.T) {
	for _, tt := range []struct {
		email string
		home  string
	}{
		{"ada@example.com", role.AdminHome},
		{"cleo@example.com", role.ClientHome},
	} {
		t.Run(tt.email, func(t *testing.T) {
			app := newTestApp(t)
			resp, _ := app.post(t, "/login", url.Values{"email": {tt.email}, "password": {testPassword}})
			wantRedirect(t, resp, tt.home)

			resp, _ = app.get(t, "/login")
			wantRedirect(t, resp, tt.home)
		})
	}
}

// TestLogin_Refused tests that the API's message is shown on a failed login.
func TestLogin_Refused(t *testing.T) {
	app := newTestApp(t)
	resp, body := app.post(t, "/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid email or password.") {
		t.Error("API message not shown")
	}
	if !strings.Contains(body, `value="ada@example.com"`) {
		t.Error("email not kept in the form")
	}
}

// TestLoginOTP_VerifyReachesHome tests the challenge, a rejected code, the
// cooldown and the accepted code.
func TestLoginOTP_VerifyReachesHome(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.post(t, "/login", url.Values{"email": {"otto@example.com"}, "password": {testPassword}})
	wantRedirect(t, resp, "/verify-login")
	if app.cookie(t, pendingOTPUserID) != organizerUser.ID {
		t.Fatalf("pending user cookie = %q", app.cookie(t, pendingOTPUserID))
	}

	resp, body := app.get(t, "/verify-login")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `id="otp-form"`) {
		t.Fatalf("code page status %d", resp.StatusCode)
	}

	resp, body = app.post(t, "/verify-login", url.Values{"code": {"000000"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("wrong code status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid or expired code.") {
		t.Error("rejection message not shown")
	}

	// The clock has not moved, so the cooldown refuses a resend.
	resp, _ = app.post(t, "/verify-login/resend", nil)
	wantRedirect(t, resp, "/verify-login")
	if app.API.called(api.OpResendLoginOTP) {
		t.Error("resend reached the API during the cooldown")
	}
	_, body = app.get(t, "/verify-login")
	if !strings.Contains(body, "flash-error") {
		t.Error("cooldown refusal not flashed")
	}

	digits := url.Values{"digit": {"1", "2", "3", "4", "5", "6"}}
	resp, _ = app.post(t, "/verify-login", digits)
	wantRedirect(t, resp, role.OrganizerHome)
	if app.cookie(t, pendingOTPUserID) != "" {
		t.Error("pending cookie not expired after verification")
	}
	resp, _ = app.get(t, role.OrganizerHome)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("home after verification = %d", resp.StatusCode)
	}
}

// TestOTPForm_WithoutPendingAccount tests that a stray visit goes back to the start.
func TestOTPForm_WithoutPendingAccount(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.get(t, "/verify-otp")
	wantRedirect(t, resp, "/signup")
	resp, _ = app.get(t, "/verify-login")
	wantRedirect(t, resp, "/login")
}

// TestSignup_VerifyShowsSuccess tests registration through to the timed
// return to the login page.
func TestSignup_VerifyShowsSuccess(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.post(t, "/signup", url.Values{
		"first_name": {"Sam"}, "last_name": {"New"}, "email": {"sam@example.com"},
		"password": {"longenough"}, "confirm_password": {"different1"}, "role": {"Client"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("mismatched passwords status = %d, want 422", resp.StatusCode)
	}
	if strings.Contains(body, "longenough") {
		t.Error("password echoed back into the form")
	}

	resp, _ = app.post(t, "/signup", url.Values{
		"first_name": {"Sam"}, "last_name": {"New"}, "email": {"sam@example.com"},
		"password": {"longenough"}, "confirm_password": {"longenough"}, "role": {"Client"},
	})
	wantRedirect(t, resp, "/verify-otp")

	resp, body = app.post(t, "/verify-otp", url.Values{"code": {"123456"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `http-equiv="refresh" content="2;url=/login"`) {
		t.Error("success page lacks the timed redirect")
	}
	if !strings.Contains(body, "data-otp-success") {
		t.Error("success message missing")
	}
	if app.cookie(t, pendingSignupUserID) != "" {
		t.Error("pending signup cookie not expired")
	}
}

// TestLogout_ClearsSession tests that logout signs the browser out.
func TestLogout_ClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "cleo@example.com")

	pending := []string{"pending_signup_user_id", "pending_signup_email", "pending_otp_user_id", "pending_otp_email"}
	u, _ := url.Parse(app.URL)
	for _, name := range pending {
		app.client.Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: "stale", Path: "/"}})
	}

	resp, _ := app.post(t, "/logout", nil)
	wantRedirect(t, resp, role.LoginPath)

	expired := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		expired[c.Name] = c
	}
	for _, name := range pending {
		c, ok := expired[name]
		if !ok {
			t.Errorf("logout did not expire %s", name)
			continue
		}
		if c.Path != "/" {
			t.Errorf("%s path = %q, want /", name, c.Path)
		}
		if c.MaxAge >= 0 && !c.Expires.Equal(time.Unix(0, 0)) {
			t.Errorf("%s not expired: max-age %d, expires %v", name, c.MaxAge, c.Expires)
		}
		if app.cookie(t, name) != "" {
			t.Errorf("%s still in the jar", name)
		}
	}

	resp, _ = app.get(t, role.ClientHome)
	wantRedirect(t, resp, role.LoginPath)
}

// TestCSRF_FormWithoutToken tests that a tokenless form post is refused.
func TestCSRF_FormWithoutToken(t *testing.T) {
	app := newTestApp(t)
	req, _ := http.NewRequest(http.MethodPost, app.URL+"/login", strings.NewReader("email=a%40b.c&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ := app.do(t, req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

// TestSessionUser_Outcomes tests the refresh endpoint against the guard.
func TestSessionUser_Outcomes(t *testing.T) {
	app := newTestApp(t)
	decode := func(body string) sessionUserResponse {
		var out sessionUserResponse
		if err := json.Unmarshal([]byte(body), &out); err != nil {
			t.Fatalf("decode %q: %v", body, err)
		}
		return out
	}

	_, body := app.get(t, "/api/session/user?area=client")
	if got := decode(body); got.Outcome != "login" || got.Location != role.LoginPath {
		t.Errorf("anonymous = %+v", got)
	}

	app.signIn(t, "cleo@example.com")
	_, body = app.get(t, "/api/session/user?area=client")
	got := decode(body)
	if got.Outcome != "authenticated" || got.DisplayName != "Cleo Client" || got.Initials != "CC" || got.Role != "Client" {
		t.Errorf("own area = %+v", got)
	}

	_, body = app.get(t, "/api/session/user?area=admin")
	if got := decode(body); got.Outcome != "role_home" || got.Location != role.ClientHome {
		t.Errorf("foreign area = %+v", got)
	}

	resp, _ := app.get(t, "/api/session/user?area=bogus")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown area status = %d", resp.StatusCode)
	}
}

// TestSessionEvents_ProfileUpdateNotifiesTab tests that saving a profile from
// a tab pushes session-changed down that tab's stream.
func TestSessionEvents_ProfileUpdateNotifiesTab(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "cleo@example.com")

	resp, _ := app.get(t, "/api/session/events")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("stream without tab = %d, want 400", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, app.URL+"/api/session/events?tab=tab-1", nil)
	stream, err := app.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Body.Close()
	if ct := stream.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}
	sid := app.cookie(t, middleware.SessionCookieName)
	if sid == "" {
		t.Fatal("no session cookie")
	}

	resp, _ = app.post(t, "/client/settings/profile", url.Values{
		"first_name": {"Cleo"}, "last_name": {"Renamed"}, "email": {"cleo@example.com"}, "tab_id": {"tab-1"},
	})
	wantRedirect(t, resp, role.ClientSettings)

	sc := bufio.NewScanner(stream.Body)
	found := false
	for !found && sc.Scan() {
		found = sc.Text() == "event: session-changed"
	}
	if !found {
		t.Fatalf("no session-changed event: %v", sc.Err())
	}

	_, body := app.get(t, "/api/session/user?area=client")
	if !strings.Contains(body, "Cleo Renamed") {
		t.Errorf("refreshed user = %s", body)
	}
}

// TestNavToggle_PersistsCollapsedGroup tests the JSON toggle and its effect
// on the next render.
func TestNavToggle_PersistsCollapsedGroup(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ada@example.com")

	resp, body := app.postJSON(t, "/admin/nav/toggle", map[string]string{"label": "Finance"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", resp.StatusCode, body)
	}
	var out navToggleResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatal(err)
	}
	for _, label := range out.Expanded {
		if label == "Finance" {
			t.Errorf("Finance still expanded: %v", out.Expanded)
		}
	}
	if len(out.Expanded) == 0 {
		t.Error("other groups collapsed too")
	}

	_, page := app.get(t, role.AdminHome)
	if !strings.Contains(page, `collapsed" data-group="Finance"`) {
		t.Error("Finance group not rendered collapsed")
	}

	resp, _ = app.postJSON(t, "/admin/nav/toggle", map[string]string{"label": "Nope"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown group status = %d", resp.StatusCode)
	}
	resp, _ = app.postJSON(t, "/admin/nav/toggle", map[string]any{"label": "Finance", "extra": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown field status = %d", resp.StatusCode)
	}
}

// TestNavToggle_FormReturnsToLocalPage tests the no-script toggle redirect.
func TestNavToggle_FormReturnsToLocalPage(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "ada@example.com")

	for _, tt := range []struct {
		returnTo string
		want     string
	}{
		{"/admin/events?q=gala", "/admin/events?q=gala"},
		{"", role.AdminHome},
		{"//evil.example/x", role.AdminHome},
		{`/\evil.example/x`, role.AdminHome},
		{"https://evil.example/", role.AdminHome},
	} {
		resp, _ := app.post(t, "/admin/nav/toggle", url.Values{"label": {"Finance"}, "return_to": {tt.returnTo}})
		if got := resp.Header.Get("Location"); resp.StatusCode != http.StatusSeeOther || got != tt.want {
			t.Errorf("return_to %q: %d -> %q, want %q", tt.returnTo, resp.StatusCode, got, tt.want)
		}
	}
}

// TestResourceList_Search tests filtering of a list page.
func TestResourceList_Search(t *testing.T) {
	app := newTestApp(t)
	app.API.lists[api.ListEvents] = []api.Row{
		{"event_name": "Spring Gala", "event_date": "2026-11-02", "status": "Confirmed"},
		{"event_name": "Team Offsite", "event_date": "2026-12-10", "status": "Pending"},
	}
	app.signIn(t, "ada@example.com")

	resp, body := app.get(t, "/admin/events?q=gala")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Spring Gala") || strings.Contains(body, "Team Offsite") {
		t.Error("search did not filter rows")
	}
	if !strings.Contains(body, `value="gala"`) {
		t.Error("search term not kept")
	}
}

// TestPackageDetail_BudgetBanner tests the budget banner on a package page.
func TestPackageDetail_BudgetBanner(t *testing.T) {
	app := newTestApp(t)
	app.API.packages["9"] = catalog.Package{
		ID: "9", Name: "Garden Party", Price: 1000,
		Inclusions: []catalog.Inclusion{{Name: "Catering", Cost: 600}, {Name: "Sound", Cost: 200}},
	}
	app.signIn(t, "cleo@example.com")

	resp, body := app.get(t, "/client/packages/9")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "banner-buffer") || !strings.Contains(body, "Buffer of 200.00") {
		t.Error("buffer banner missing")
	}

	resp, _ = app.get(t, "/client/packages/404")
	wantRedirect(t, resp, "/client/packages")
}

// TestBooking_StepValidation tests that an invalid step re-renders with the error.
func TestBooking_StepValidation(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "cleo@example.com")

	resp, body := app.post(t, "/client/book", url.Values{"action": {"next"}, "event_name": {" "}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if !strings.Contains(body, booking.ErrEmptyEventName.Error()) {
		t.Error("validation message missing")
	}
	if app.API.called("createBooking") {
		t.Error("booking created from an invalid step")
	}
}

// TestAbout_RendersMarkdown tests the public about page.
func TestAbout_RendersMarkdown(t *testing.T) {
	app := newTestApp(t)
	app.API.site = sitesettings.Settings{SiteName: "EventDesk Co", AboutUs: "We plan **great** events."}

	resp, body := app.get(t, "/about")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "<strong>great</strong>") {
		t.Error("markdown not rendered")
	}
}

// TestFeedback_ReplyAndDelete tests the admin feedback actions.
func TestFeedback_ReplyAndDelete(t *testing.T) {
	app := newTestApp(t)
	app.API.feedbacks = []feedback.Feedback{{ID: "5", Name: "Vic", Email: "vic@example.com", Message: "Lovely", Rating: 5}}
	app.signIn(t, "ada@example.com")

	resp, _ := app.post(t, "/admin/feedbacks/5/reply", url.Values{
		"to": {"vic@example.com"}, "subject": {"Thanks"}, "body": {"Glad you **enjoyed** it."},
	})
	wantRedirect(t, resp, "/admin/feedbacks")
	sent := app.Mailer.Sent()
	if len(sent) != 1 || sent[0].To[0] != "vic@example.com" || sent[0].Subject != "Thanks" {
		t.Fatalf("sent = %+v", sent)
	}
	_, body := app.get(t, "/admin/feedbacks")
	if !strings.Contains(body, "Reply sent to vic@example.com.") {
		t.Error("reply not flashed")
	}

	resp, _ = app.post(t, "/admin/feedbacks/5/delete", nil)
	wantRedirect(t, resp, "/admin/feedbacks")
	if len(app.API.feedbacks) != 0 {
		t.Error("feedback not deleted")
	}
}

// TestAvatarUpload tests the multipart upload and the refreshed avatar URL.
func TestAvatarUpload(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t, "cleo@example.com")

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(png)
	mw.WriteField("tab_id", "tab-1")
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, app.URL+"/client/settings/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-CSRF-Token", app.token)
	resp, _ := app.do(t, req)
	wantRedirect(t, resp, role.ClientSettings)

	if !bytes.Equal(app.API.uploaded, png) {
		t.Error("uploaded bytes differ")
	}
	_, body := app.get(t, "/api/session/user?area=client")
	if !strings.Contains(body, "http://img.test/image.php?path=uploads%2Fme.png") {
		t.Errorf("avatar url not refreshed: %s", body)
	}
}

// avatarForm builds the settings form as the page submits it: the CSRF token
// as a form field first, then optional padding, then the image.
func avatarForm(t *testing.T, token string, padding int, png []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("gorilla.csrf.Token", token)
	if padding > 0 {
		pw, err := mw.CreateFormFile("padding", "padding.bin")
		if err != nil {
			t.Fatal(err)
		}
		pw.Write(bytes.Repeat([]byte{'x'}, padding))
	}
	fw, err := mw.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(png)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

// TestAvatarUpload_FormFieldToken tests the body cap when the token travels
// in the form, as the settings page sends it.
func TestAvatarUpload_FormFieldToken(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	t.Run("within limit", func(t *testing.T) {
		app := newTestApp(t)
		app.signIn(t, "cleo@example.com")
		body, ctype := avatarForm(t, app.token, 0, png)
		req, _ := http.NewRequest(http.MethodPost, app.URL+"/client/settings/avatar", body)
		req.Header.Set("Content-Type", ctype)
		resp, _ := app.do(t, req)
		wantRedirect(t, resp, role.ClientSettings)
		if !bytes.Equal(app.API.uploaded, png) {
			t.Error("uploaded bytes differ")
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		app := newTestApp(t)
		app.signIn(t, "cleo@example.com")
		body, ctype := avatarForm(t, app.token, 12<<20, png)
		req := httptest.NewRequest(http.MethodPost, app.URL+"/client/settings/avatar", body)
		req.Header.Set("Content-Type", ctype)
		rr := app.serve(req)
		if rr.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rr.Code)
		}
		if app.API.called("uploadFile") {
			t.Error("oversized request reached the upload")
		}
	})
}

// TestInfrastructureRoutes tests static assets, health and metrics.
func TestInfrastructureRoutes(t *testing.T) {
	app := newTestApp(t)
	for _, tt := range []struct {
		path string
		want string
	}{
		{"/static/style.css", ".sidebar"},
		{"/static/otp.js", "dataset.remaining"},
		{"/healthz", "ok"},
		{"/metrics", "eventdesk_session_subscribers"},
	} {
		resp, body := app.get(t, tt.path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", tt.path, resp.StatusCode)
			continue
		}
		if !strings.Contains(body, tt.want) {
			t.Errorf("%s missing %q", tt.path, tt.want)
		}
	}
	resp, _ := app.get(t, "/")
	wantRedirect(t, resp, role.LoginPath)
}
