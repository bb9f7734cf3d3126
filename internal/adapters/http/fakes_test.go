package web

import (
	"context"
	"io"
	"sync"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/adapters/storage/preference"
	"eventdesk/internal/domain/catalog"
	"eventdesk/internal/domain/feedback"
	"eventdesk/internal/domain/profile"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/sitesettings"
	"eventdesk/internal/domain/user"
)

// account is one login the fake API accepts.
type account struct {
	password string
	otp      bool // login answers with a code challenge
	user     user.User
}

// fakeAPI implements API in memory. Codes are accepted when they equal code.
type fakeAPI struct {
	mu       sync.Mutex
	ops      []string
	accounts map[string]account
	code     string

	site      sitesettings.Settings
	feedbacks []feedback.Feedback
	lists     map[api.ListOperation][]api.Row
	packages  map[string]catalog.Package
	uploaded  []byte
	profiles  map[string]map[string]string
	bookingID string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		accounts: make(map[string]account),
		code:     "123456",
		lists:    make(map[api.ListOperation][]api.Row),
		packages: make(map[string]catalog.Package),
		profiles: make(map[string]map[string]string),
	}
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}

func (f *fakeAPI) called(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.ops {
		if o == op {
			return true
		}
	}
	return false
}

func (f *fakeAPI) addAccount(email, password string, otp bool, u user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = email
	f.accounts[email] = account{password: password, otp: otp, user: u}
}

func (f *fakeAPI) byID(id string) (user.User, bool) {
	for _, a := range f.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return user.User{}, false
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (api.LoginResult, error) {
	f.record(api.OpLogin)
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok || a.password != password {
		return api.LoginResult{}, &api.Error{Operation: api.OpLogin, Message: "Invalid email or password."}
	}
	if a.otp {
		return api.LoginResult{OTPRequired: true, UserID: a.user.ID, Email: email}, nil
	}
	return api.LoginResult{Token: "tok-" + a.user.ID, User: a.user}, nil
}

func (f *fakeAPI) Signup(_ context.Context, s profile.Signup) (api.SignupResult, error) {
	f.record(api.OpSignup)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.accounts[s.Email]; taken {
		return api.SignupResult{}, &api.Error{Operation: api.OpSignup, Message: "Email is already registered."}
	}
	r, _ := role.Parse(s.Role)
	id := "new-" + s.Email
	f.accounts[s.Email] = account{password: s.Password, user: user.User{
		ID: id, FirstName: s.FirstName, LastName: s.LastName, Role: r, Email: s.Email,
	}}
	return api.SignupResult{UserID: id, Email: s.Email}, nil
}

func (f *fakeAPI) checkCode(op, code string) error {
	if code != f.code {
		return &api.Error{Operation: op, Message: "Invalid or expired code."}
	}
	return nil
}

func (f *fakeAPI) VerifySignupOTP(_ context.Context, _, _, code string) error {
	f.record(api.OpVerifySignupOTP)
	return f.checkCode(api.OpVerifySignupOTP, code)
}

func (f *fakeAPI) ResendSignupOTP(context.Context, string, string) error {
	f.record(api.OpResendSignupOTP)
	return nil
}

func (f *fakeAPI) VerifyLoginOTP(_ context.Context, userID, _, code string) (api.LoginResult, error) {
	f.record(api.OpVerifyLoginOTP)
	if err := f.checkCode(api.OpVerifyLoginOTP, code); err != nil {
		return api.LoginResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID(userID)
	if !ok {
		return api.LoginResult{}, &api.Error{Operation: api.OpVerifyLoginOTP, Message: "Unknown account."}
	}
	return api.LoginResult{Token: "tok-" + u.ID, User: u}, nil
}

func (f *fakeAPI) ResendLoginOTP(context.Context, string, string) error {
	f.record(api.OpResendLoginOTP)
	return nil
}

func (f *fakeAPI) GetUserProfile(_ context.Context, _, userID string) (profile.Profile, error) {
	f.record("getUserProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID(userID)
	if !ok {
		return profile.Profile{}, &api.Error{Operation: "getUserProfile", Message: "Unknown account."}
	}
	return profile.Profile{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Avatar: u.Avatar}, nil
}

func (f *fakeAPI) UpdateUserProfile(_ context.Context, _, userID string, fields map[string]string) error {
	f.record("updateUserProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = fields
	return nil
}

func (f *fakeAPI) ChangePassword(context.Context, string, string, string, string) error {
	f.record("changePassword")
	return nil
}

func (f *fakeAPI) UploadFile(_ context.Context, _, filename string, content io.Reader) (string, error) {
	f.record("uploadFile")
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.uploaded = data
	f.mu.Unlock()
	return "uploads/" + filename, nil
}

func (f *fakeAPI) GetWebsiteSettings(context.Context) (sitesettings.Settings, error) {
	f.record("getWebsiteSettings")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.site, nil
}

func (f *fakeAPI) UpdateWebsiteSettings(_ context.Context, _ string, s sitesettings.Settings) error {
	f.record("updateWebsiteSettings")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.site = s
	return nil
}

func (f *fakeAPI) GetAllFeedbacks(context.Context, string) ([]feedback.Feedback, error) {
	f.record("getAllFeedbacks")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]feedback.Feedback(nil), f.feedbacks...), nil
}

func (f *fakeAPI) DeleteFeedback(_ context.Context, _, id string) error {
	f.record("deleteFeedback")
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.feedbacks[:0]
	for _, fb := range f.feedbacks {
		if fb.ID != id {
			kept = append(kept, fb)
		}
	}
	f.feedbacks = kept
	return nil
}

func (f *fakeAPI) GetDashboardStats(_ context.Context, _ string, r role.Role, _ string) (api.Stats, error) {
	f.record("getDashboardStats")
	return api.Stats{"total_events": 12, "total_bookings": 4}, nil
}

func (f *fakeAPI) List(_ context.Context, _ string, op api.ListOperation, _ string) ([]api.Row, error) {
	f.record(string(op))
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[op], nil
}

func (f *fakeAPI) GetPackageByID(_ context.Context, _, id string) (catalog.Package, error) {
	f.record("getPackageById")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[id]
	if !ok {
		return catalog.Package{}, &api.Error{Operation: "getPackageById", Message: "Package not found."}
	}
	return p, nil
}

func (f *fakeAPI) CreateBooking(context.Context, string, string, map[string]string) (string, error) {
	f.record("createBooking")
	return f.bookingID, nil
}

// memoryPrefs is a PreferenceStore held in a map.
type memoryPrefs struct {
	mu   sync.Mutex
	vals map[string]string
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{vals: make(map[string]string)}
}

func (p *memoryPrefs) Get(_ context.Context, deviceID, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.vals[deviceID+"/"+key]
	if !ok {
		return "", preference.ErrNotFound
	}
	return v, nil
}

func (p *memoryPrefs) Put(_ context.Context, deviceID, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vals[deviceID+"/"+key] = value
	return nil
}
