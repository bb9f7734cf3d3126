package api

import (
	"context"
	"io"

	"eventdesk/internal/domain/catalog"
	"eventdesk/internal/domain/feedback"
	"eventdesk/internal/domain/profile"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/sitesettings"
	"eventdesk/internal/domain/user"
)

// Auth operations
const (
	OpLogin           = "login"
	OpSignup          = "signup"
	OpVerifySignupOTP = "verify_signup_otp"
	OpResendSignupOTP = "resend_signup_otp"
	OpVerifyLoginOTP  = "verify_login_otp"
	OpResendLoginOTP  = "resend_login_otp"
)

// LoginResult is the data of login and verify_login_otp. When OTPRequired is
// set the API has emailed a code and Token/User are empty.
type LoginResult struct {
	Token       string    `json:"token"`
	User        user.User `json:"user"`
	OTPRequired bool      `json:"otp_required"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

// SignupResult identifies the pending account awaiting its signup code.
type SignupResult struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Login checks credentials.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.postForm(ctx, "", OpLogin, map[string]string{"email": email, "password": password}, &res)
	return res, err
}

// Signup registers a pending account; the API emails a verification code.
func (c *Client) Signup(ctx context.Context, s profile.Signup) (SignupResult, error) {
	var res SignupResult
	err := c.postForm(ctx, "", OpSignup, map[string]string{
		"first_name": s.FirstName,
		"last_name":  s.LastName,
		"email":      s.Email,
		"password":   s.Password,
		"role":       s.Role,
	}, &res)
	return res, err
}

// VerifySignupOTP confirms the signup code.
func (c *Client) VerifySignupOTP(ctx context.Context, userID, email, code string) error {
	return c.postForm(ctx, "", OpVerifySignupOTP, otpFields(userID, email, code), nil)
}

// ResendSignupOTP asks for a fresh signup code.
func (c *Client) ResendSignupOTP(ctx context.Context, userID, email string) error {
	return c.postForm(ctx, "", OpResendSignupOTP, otpFields(userID, email, ""), nil)
}

// VerifyLoginOTP confirms a login challenge and returns the session data.
func (c *Client) VerifyLoginOTP(ctx context.Context, userID, email, code string) (LoginResult, error) {
	var res LoginResult
	err := c.postForm(ctx, "", OpVerifyLoginOTP, otpFields(userID, email, code), &res)
	return res, err
}

// ResendLoginOTP asks for a fresh login code.
func (c *Client) ResendLoginOTP(ctx context.Context, userID, email string) error {
	return c.postForm(ctx, "", OpResendLoginOTP, otpFields(userID, email, ""), nil)
}

func otpFields(userID, email, code string) map[string]string {
	f := map[string]string{"user_id": userID, "email": email}
	if code != "" {
		f["otp"] = code
	}
	return f
}

// GetUserProfile loads the editable profile.
func (c *Client) GetUserProfile(ctx context.Context, token, userID string) (profile.Profile, error) {
	var p profile.Profile
	err := c.get(ctx, token, "getUserProfile", map[string]string{"user_id": userID}, &p)
	return p, err
}

// UpdateUserProfile writes the given profile fields.
func (c *Client) UpdateUserProfile(ctx context.Context, token, userID string, fields map[string]string) error {
	f := map[string]string{"user_id": userID}
	for k, v := range fields {
		f[k] = v
	}
	return c.postForm(ctx, token, "updateUserProfile", f, nil)
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, token, userID, current, next string) error {
	return c.postForm(ctx, token, "changePassword", map[string]string{
		"user_id":          userID,
		"current_password": current,
		"new_password":     next,
	}, nil)
}

type uploadResult struct {
	Path string `json:"path"`
}

// UploadFile stores a file and returns its server-relative path.
func (c *Client) UploadFile(ctx context.Context, token, filename string, content io.Reader) (string, error) {
	var res uploadResult
	if err := c.postFile(ctx, token, "uploadFile", filename, content, nil, &res); err != nil {
		return "", err
	}
	if res.Path == "" {
		return "", &Error{Operation: "uploadFile", Message: "upload returned no file path"}
	}
	return res.Path, nil
}

// GetWebsiteSettings loads the public site configuration.
func (c *Client) GetWebsiteSettings(ctx context.Context) (sitesettings.Settings, error) {
	var s sitesettings.Settings
	err := c.get(ctx, "", "getWebsiteSettings", nil, &s)
	return s, err
}

// UpdateWebsiteSettings saves the site configuration.
func (c *Client) UpdateWebsiteSettings(ctx context.Context, token string, s sitesettings.Settings) error {
	return c.postForm(ctx, token, "updateWebsiteSettings", s.Fields(), nil)
}

// GetAllFeedbacks lists visitor feedback, newest first as the API returns it.
func (c *Client) GetAllFeedbacks(ctx context.Context, token string) ([]feedback.Feedback, error) {
	var list []feedback.Feedback
	err := c.get(ctx, token, "getAllFeedbacks", nil, &list)
	return list, err
}

// DeleteFeedback removes one feedback.
func (c *Client) DeleteFeedback(ctx context.Context, token, id string) error {
	return c.postForm(ctx, token, "deleteFeedback", map[string]string{"feedback_id": id}, nil)
}

// Stats are the named counters of a dashboard.
type Stats map[string]float64

// GetDashboardStats loads the counters of a role's dashboard.
func (c *Client) GetDashboardStats(ctx context.Context, token string, r role.Role, userID string) (Stats, error) {
	var s Stats
	err := c.get(ctx, token, "getDashboardStats", map[string]string{"role": r.String(), "user_id": userID}, &s)
	return s, err
}

// GetPackageByID loads one package with its inclusions.
func (c *Client) GetPackageByID(ctx context.Context, token, id string) (catalog.Package, error) {
	var p catalog.Package
	err := c.get(ctx, token, "getPackageById", map[string]string{"package_id": id}, &p)
	return p, err
}

type bookingResult struct {
	BookingID string `json:"booking_id"`
}

// CreateBooking submits a completed booking and returns its id.
func (c *Client) CreateBooking(ctx context.Context, token, userID string, fields map[string]string) (string, error) {
	f := map[string]string{"user_id": userID}
	for k, v := range fields {
		f[k] = v
	}
	var res bookingResult
	err := c.postForm(ctx, token, "createBooking", f, &res)
	return res.BookingID, err
}
