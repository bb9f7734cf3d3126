package orchestrators

import (
	"context"
	"io"
	"sync"
	"time"

	"eventdesk/internal/adapters/api"
	sessionstore "eventdesk/internal/adapters/storage/session"
	"eventdesk/internal/application/notify"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/profile"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/sitesettings"
	"eventdesk/internal/domain/user"
)

var clockTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return clockTime }

var (
	testHashKey  = []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	testBlockKey = []byte("0123456789abcdef0123456789abcdef")
)

func newSession() *session.Session {
	m := session.NewManager(sessionstore.NewMemoryStore(), testHashKey, testBlockKey)
	return m.Open("sid-test")
}

var adminUser = user.User{ID: "7", FirstName: "Ada", LastName: "Admin", Role: role.Admin, Email: "ada@example.com"}

// signedIn returns a session holding u with a token.
func signedIn(u user.User) *session.Session {
	st := newSession()
	ctx := context.Background()
	_ = st.Set(ctx, session.KeyToken, "tok-1")
	_ = st.Set(ctx, session.KeyUserID, u.ID)
	_ = st.Set(ctx, session.KeyUser, u)
	return st
}

// call is one recorded API invocation.
type call struct {
	Op     string
	Token  string
	UserID string
	Fields map[string]string
}

// fakeAPI implements every orchestrator API interface. err, when set, is
// returned by every call.
type fakeAPI struct {
	mu    sync.Mutex
	calls []call
	err   error

	login      api.LoginResult
	signup     api.SignupResult
	uploadPath string
	bookingID  string
	upload     []byte
}

func (f *fakeAPI) record(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakeAPI) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Op
	}
	return out
}

func (f *fakeAPI) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (api.LoginResult, error) {
	if err := f.record(call{Op: api.OpLogin, Fields: map[string]string{"email": email}}); err != nil {
		return api.LoginResult{}, err
	}
	return f.login, nil
}

func (f *fakeAPI) Signup(_ context.Context, s profile.Signup) (api.SignupResult, error) {
	if err := f.record(call{Op: api.OpSignup, Fields: map[string]string{"email": s.Email, "role": s.Role}}); err != nil {
		return api.SignupResult{}, err
	}
	return f.signup, nil
}

func (f *fakeAPI) VerifySignupOTP(_ context.Context, userID, _, code string) error {
	return f.record(call{Op: api.OpVerifySignupOTP, UserID: userID, Fields: map[string]string{"otp": code}})
}

func (f *fakeAPI) ResendSignupOTP(_ context.Context, userID, _ string) error {
	return f.record(call{Op: api.OpResendSignupOTP, UserID: userID})
}

func (f *fakeAPI) VerifyLoginOTP(_ context.Context, userID, _, code string) (api.LoginResult, error) {
	if err := f.record(call{Op: api.OpVerifyLoginOTP, UserID: userID, Fields: map[string]string{"otp": code}}); err != nil {
		return api.LoginResult{}, err
	}
	return f.login, nil
}

func (f *fakeAPI) ResendLoginOTP(_ context.Context, userID, _ string) error {
	return f.record(call{Op: api.OpResendLoginOTP, UserID: userID})
}

func (f *fakeAPI) UpdateUserProfile(_ context.Context, token, userID string, fields map[string]string) error {
	return f.record(call{Op: "updateUserProfile", Token: token, UserID: userID, Fields: fields})
}

func (f *fakeAPI) ChangePassword(_ context.Context, token, userID, _, _ string) error {
	return f.record(call{Op: "changePassword", Token: token, UserID: userID})
}

func (f *fakeAPI) UploadFile(_ context.Context, token, filename string, content io.Reader) (string, error) {
	data, _ := io.ReadAll(content)
	f.mu.Lock()
	f.upload = data
	f.mu.Unlock()
	if err := f.record(call{Op: "uploadFile", Token: token, Fields: map[string]string{"filename": filename}}); err != nil {
		return "", err
	}
	return f.uploadPath, nil
}

func (f *fakeAPI) UpdateWebsiteSettings(_ context.Context, token string, s sitesettings.Settings) error {
	return f.record(call{Op: "updateWebsiteSettings", Token: token, Fields: s.Fields()})
}

func (f *fakeAPI) DeleteFeedback(_ context.Context, token, id string) error {
	return f.record(call{Op: "deleteFeedback", Token: token, Fields: map[string]string{"feedback_id": id}})
}

func (f *fakeAPI) CreateBooking(_ context.Context, token, userID string, fields map[string]string) (string, error) {
	if err := f.record(call{Op: "createBooking", Token: token, UserID: userID, Fields: fields}); err != nil {
		return "", err
	}
	return f.bookingID, nil
}

// recordingNotifier counts publishes per scope.
type recordingNotifier struct {
	scopes []notify.Scope
}

func (n *recordingNotifier) Publish(scope notify.Scope) int {
	n.scopes = append(n.scopes, scope)
	return 1
}

// failingPrefs fails every preference operation.
type failingPrefs struct{ err error }

func (p failingPrefs) Get(context.Context, string, string) (string, error) { return "", p.err }
func (p failingPrefs) Put(context.Context, string, string, string) error  { return p.err }
