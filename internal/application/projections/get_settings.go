package projections

import (
	"context"
	"html/template"
	"log/slog"

	"eventdesk/internal/adapters/markdown"
	"eventdesk/internal/domain/feedback"
	"eventdesk/internal/domain/profile"
	"eventdesk/internal/domain/sitesettings"
	"eventdesk/internal/domain/user"
)

// GetProfileQuery carries input for the settings page.
type GetProfileQuery struct {
	Token  string
	UserID string
	Cached user.User
}

// GetProfileDeps holds dependencies for the settings page.
type GetProfileDeps struct {
	API ProfileAPI
}

// ProfileResult is the settings form pre-fill.
type ProfileResult struct {
	Profile profile.Profile
	Notice  string // set when the API copy could not be loaded
}

// QueryGetProfile loads the editable profile, falling back to the cached user.
// POST: never returns an error
func QueryGetProfile(ctx context.Context, query GetProfileQuery, deps GetProfileDeps) ProfileResult {
	p, err := deps.API.GetUserProfile(ctx, query.Token, query.UserID)
	if err == nil {
		return ProfileResult{Profile: p}
	}
	slog.Warn("settings_event", "event", "profile_unavailable", "user_id", query.UserID, "error", err)
	u := query.Cached
	return ProfileResult{
		Profile: profile.Profile{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Avatar: u.Avatar},
		Notice:  "Showing your saved details; the latest profile could not be loaded.",
	}
}

// SiteResult is the public site configuration with its rendered about text.
type SiteResult struct {
	Settings  sitesettings.Settings
	AboutHTML template.HTML
}

// QueryGetSite loads the website settings.
func QueryGetSite(ctx context.Context, api SiteAPI) (SiteResult, error) {
	s, err := api.GetWebsiteSettings(ctx)
	if err != nil {
		return SiteResult{}, err
	}
	return SiteResult{Settings: s, AboutHTML: markdown.HTML(s.AboutUs)}, nil
}

// QueryGetFeedbacks loads every feedback entry, newest first as the API orders them.
func QueryGetFeedbacks(ctx context.Context, token string, api FeedbackAPI) ([]feedback.Feedback, error) {
	return api.GetAllFeedbacks(ctx, token)
}
