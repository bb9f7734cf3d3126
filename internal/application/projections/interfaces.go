package projections

import (
	"context"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/domain/catalog"
	"eventdesk/internal/domain/feedback"
	"eventdesk/internal/domain/profile"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/sitesettings"
)

// StatsAPI loads dashboard counters.
type StatsAPI interface {
	GetDashboardStats(ctx context.Context, token string, r role.Role, userID string) (api.Stats, error)
}

// ListAPI runs list operations.
type ListAPI interface {
	List(ctx context.Context, token string, op api.ListOperation, userID string) ([]api.Row, error)
}

// PackageAPI loads one package.
type PackageAPI interface {
	GetPackageByID(ctx context.Context, token, id string) (catalog.Package, error)
}

// ProfileAPI loads the editable profile.
type ProfileAPI interface {
	GetUserProfile(ctx context.Context, token, userID string) (profile.Profile, error)
}

// SiteAPI loads the public website settings.
type SiteAPI interface {
	GetWebsiteSettings(ctx context.Context) (sitesettings.Settings, error)
}

// FeedbackAPI loads visitor feedback.
type FeedbackAPI interface {
	GetAllFeedbacks(ctx context.Context, token string) ([]feedback.Feedback, error)
}
