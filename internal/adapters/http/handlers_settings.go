package web

import (
	"net/http"

	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/domain/profile"
)

type settingsPage struct {
	Profile   projections.ProfileResult
	AvatarURL string
	MaxAvatar int
}

func (s *server) profileDeps(r *http.Request) orchestrators.ProfileDeps {
	return orchestrators.ProfileDeps{API: s.API, Session: s.store(r), Notifier: s.Bus}
}

// settingsPath returns the settings page of the signed-in user's area.
func settingsPath(r *http.Request) string {
	u, _ := middleware.UserFromContext(r.Context())
	return u.Role.SettingsPath()
}

// handleSettings handles GET /{area}/settings
func (s *server) handleSettings(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	token, userID := s.credentials(r)
	res := projections.QueryGetProfile(r.Context(), projections.GetProfileQuery{
		Token:  token,
		UserID: userID,
		Cached: u,
	}, projections.GetProfileDeps{API: s.API})
	avatar := res.Profile.Avatar
	if avatar == "" {
		avatar = u.Avatar
	}
	s.render(w, r, "settings.html", "Settings", settingsPage{
		Profile:   res,
		AvatarURL: s.ImageURL(avatar),
		MaxAvatar: orchestrators.MaxAvatarBytes,
	})
}

// handleUpdateProfile handles POST /{area}/settings/profile
func (s *server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	_, err := orchestrators.ExecuteUpdateProfile(r.Context(), orchestrators.UpdateProfileInput{
		Profile: profile.Profile{
			FirstName: r.FormValue("first_name"),
			LastName:  r.FormValue("last_name"),
			Email:     r.FormValue("email"),
			Phone:     r.FormValue("phone"),
		},
		Scope: s.scope(r),
	}, s.profileDeps(r))
	s.flashResult(r, err, "Profile saved.")
	http.Redirect(w, r, settingsPath(r), http.StatusSeeOther)
}

// handleChangePassword handles POST /{area}/settings/password
func (s *server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), profile.PasswordChange{
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}, s.profileDeps(r))
	s.flashResult(r, err, "Password changed.")
	http.Redirect(w, r, settingsPath(r), http.StatusSeeOther)
}

// handleUploadAvatar handles POST /{area}/settings/avatar
func (s *server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	// LimitMultipart has already bounded and parsed the body.
	if err := r.ParseMultipartForm(orchestrators.MaxAvatarBytes); err != nil {
		s.flashResult(r, orchestrators.ErrAvatarNotAnImage, "")
		http.Redirect(w, r, settingsPath(r), http.StatusSeeOther)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		s.flashResult(r, orchestrators.ErrAvatarNotAnImage, "")
		http.Redirect(w, r, settingsPath(r), http.StatusSeeOther)
		return
	}
	defer file.Close()

	_, err = orchestrators.ExecuteUploadAvatar(r.Context(), orchestrators.UploadAvatarInput{
		Filename: header.Filename,
		Content:  file,
		Scope:    s.scope(r),
	}, s.profileDeps(r))
	s.flashResult(r, err, "Profile picture updated.")
	http.Redirect(w, r, settingsPath(r), http.StatusSeeOther)
}
