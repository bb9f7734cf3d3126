package browser_test

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"eventdesk/internal/adapters/api"
	web "eventdesk/internal/adapters/http"
	"eventdesk/internal/adapters/storage"
	preferenceStore "eventdesk/internal/adapters/storage/preference"
	sessionStore "eventdesk/internal/adapters/storage/session"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/otp"
)

const (
	adminEmail     = "ada@example.com"
	organizerEmail = "otto@example.com"
	testPassword   = "TestPass123!"
	testCode       = "123456"
)

var (
	hashKey  = []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	blockKey = []byte("0123456789abcdef0123456789abcdef")
	csrfKey  = []byte("fedcba9876543210fedcba9876543210")
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// phpAPI answers the PHP API's envelope for the operations the browser flows use.
func phpAPI() http.Handler {
	users := map[string]map[string]any{
		adminEmail:     {"user_id": "1", "first_name": "Ada", "last_name": "Admin", "role": "Admin", "email": adminEmail},
		organizerEmail: {"user_id": "3", "first_name": "Otto", "last_name": "Organizer", "role": "Vendor", "email": organizerEmail},
	}
	reply := func(w http.ResponseWriter, data any, message string) {
		status := api.StatusSuccess
		if message != "" {
			status = "error"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": status, "message": message, "data": data})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.FormValue("operation") {
		case api.OpLogin:
			u, ok := users[r.FormValue("email")]
			if !ok || r.FormValue("password") != testPassword {
				reply(w, nil, "Invalid email or password.")
				return
			}
			if u["email"] == organizerEmail {
				reply(w, map[string]any{"otp_required": true, "user_id": u["user_id"], "email": organizerEmail}, "")
				return
			}
			reply(w, map[string]any{"token": "tok-" + u["user_id"].(string), "user": u}, "")
		case api.OpVerifyLoginOTP:
			if r.FormValue("otp") != testCode {
				reply(w, nil, "Invalid or expired code.")
				return
			}
			reply(w, map[string]any{"token": "tok-3", "user": users[organizerEmail]}, "")
		case "getWebsiteSettings":
			reply(w, map[string]any{"site_name": "EventDesk Co", "about_us": "We plan **great** events."}, "")
		default:
			reply(w, nil, "")
		}
	})
}

// newTestApp creates a fully wired app with a temp SQLite DB and a fake PHP API.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if os.Getenv("EVENTDESK_BROWSER_TESTS") != "1" {
		t.Skip("set EVENTDESK_BROWSER_TESTS=1 to run browser tests")
	}
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.InitDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	upstream := httptest.NewServer(phpAPI())
	client := api.New(api.Config{BaseURL: upstream.URL + "/api.php", ImageURL: upstream.URL + "/image.php"})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	stop := make(chan struct{})
	handler, err := web.NewMux(web.Deps{
		API:         client,
		ImageURL:    client.ImageURL,
		Sessions:    session.NewManager(sessionStore.NewSQLiteStore(db), hashKey, blockKey),
		Preferences: preferenceStore.NewSQLiteStore(db),
		Policy:      otp.DefaultPolicy,
		HashKey:     hashKey,
		CSRFKey:     csrfKey,
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
		RateLimitPerSecond: 100,
		AuthRatePerMinute:  100,
		SlowRequestMs:      500,
		Stop:               stop,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(listener)

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		DB:      db,
		PW:      pw,
		Browser: browser,
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		close(stop)
		upstream.Close()
		db.Close()
	})
	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login submits the login form and waits for the given page.
func (a *testApp) login(t *testing.T, page playwright.Page, email, landing string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(testPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+landing, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not land on %s: %v", landing, err)
	}
}
