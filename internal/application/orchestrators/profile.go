package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"eventdesk/internal/application/notify"
	"eventdesk/internal/application/session"
	"eventdesk/internal/application/validate"
	"eventdesk/internal/domain/profile"
	"eventdesk/internal/domain/user"
)

// Notifier announces session changes to the open pages of one tab.
type Notifier interface {
	Publish(scope notify.Scope) int
}

// ProfileAPI defines the API calls needed by the settings orchestrators.
type ProfileAPI interface {
	UpdateUserProfile(ctx context.Context, token, userID string, fields map[string]string) error
	ChangePassword(ctx context.Context, token, userID, current, next string) error
	UploadFile(ctx context.Context, token, filename string, content io.Reader) (string, error)
}

// ProfileDeps holds dependencies for the settings orchestrators.
type ProfileDeps struct {
	API      ProfileAPI
	Session  session.Store
	Notifier Notifier
}

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 2 << 20

var (
	ErrNotSignedIn      = errors.New("your session has ended, please sign in again")
	ErrAvatarTooLarge   = errors.New("images must be 2 MB or smaller")
	ErrAvatarNotAnImage = errors.New("choose a PNG, JPEG, GIF or WebP image")
)

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// credentials reads the token, user id and cached user of a signed-in session.
func credentials(ctx context.Context, st session.Store) (token, userID string, u user.User, err error) {
	if !st.Get(ctx, session.KeyUser, &u) {
		return "", "", user.User{}, ErrNotSignedIn
	}
	st.Get(ctx, session.KeyToken, &token)
	if !st.Get(ctx, session.KeyUserID, &userID) {
		userID = u.ID
	}
	return token, userID, u, nil
}

// announce publishes a session change to the tab when the scope is known.
func announce(n Notifier, scope notify.Scope) {
	if n != nil && scope.Valid() {
		n.Publish(scope)
	}
}

// UpdateProfileInput carries the profile form and the submitting tab.
type UpdateProfileInput struct {
	Profile profile.Profile
	Scope   notify.Scope
}

// ExecuteUpdateProfile saves the profile and refreshes the cached user.
// PRE: the session is signed in
// POST: on success the cached user's names and email match the form, then the
// tab is notified
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps ProfileDeps) (user.User, error) {
	p := input.Profile
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	if err := validate.Struct(p); err != nil {
		return user.User{}, err
	}
	token, userID, u, err := credentials(ctx, deps.Session)
	if err != nil {
		return user.User{}, err
	}
	if err := deps.API.UpdateUserProfile(ctx, token, userID, p.Fields()); err != nil {
		return user.User{}, err
	}

	u.FirstName, u.LastName, u.Email = p.FirstName, p.LastName, p.Email
	if err := deps.Session.Set(ctx, session.KeyUser, u); err != nil {
		return user.User{}, err
	}
	announce(deps.Notifier, input.Scope)
	slog.Info("profile_event", "event", "profile_updated", "user_id", userID)
	return u, nil
}

// ExecuteChangePassword validates the form and changes the password.
// PRE: the session is signed in
// POST: the API has accepted the new password; the session is unchanged
func ExecuteChangePassword(ctx context.Context, input profile.PasswordChange, deps ProfileDeps) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	token, userID, _, err := credentials(ctx, deps.Session)
	if err != nil {
		return err
	}
	if err := deps.API.ChangePassword(ctx, token, userID, input.CurrentPassword, input.NewPassword); err != nil {
		return err
	}
	slog.Info("profile_event", "event", "password_changed", "user_id", userID)
	return nil
}

// UploadAvatarInput carries the uploaded file and the submitting tab.
type UploadAvatarInput struct {
	Filename string
	Content  io.Reader
	Scope    notify.Scope
}

// ExecuteUploadAvatar uploads an image, points the profile at it and updates
// the cached user.
// PRE: the session is signed in
// POST: on success the cached avatar is the uploaded path and the tab is
// notified; on any failure the avatar is unchanged
func ExecuteUploadAvatar(ctx context.Context, input UploadAvatarInput, deps ProfileDeps) (user.User, error) {
	data, err := io.ReadAll(io.LimitReader(input.Content, MaxAvatarBytes+1))
	if err != nil {
		return user.User{}, fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > MaxAvatarBytes {
		return user.User{}, ErrAvatarTooLarge
	}
	ext, ok := avatarTypes[http.DetectContentType(data)]
	if !ok {
		return user.User{}, ErrAvatarNotAnImage
	}
	token, userID, u, err := credentials(ctx, deps.Session)
	if err != nil {
		return user.User{}, err
	}

	name := strings.TrimSuffix(path.Base(input.Filename), path.Ext(input.Filename))
	if name == "" || name == "." || name == "/" {
		name = "avatar"
	}
	stored, err := deps.API.UploadFile(ctx, token, name+ext, bytes.NewReader(data))
	if err != nil {
		return user.User{}, err
	}
	if err := deps.API.UpdateUserProfile(ctx, token, userID, map[string]string{"profile_picture": stored}); err != nil {
		return user.User{}, err
	}

	u.Avatar = stored
	if err := deps.Session.Set(ctx, session.KeyUser, u); err != nil {
		return user.User{}, err
	}
	announce(deps.Notifier, input.Scope)
	slog.Info("profile_event", "event", "avatar_updated", "user_id", userID, "bytes", len(data))
	return u, nil
}
