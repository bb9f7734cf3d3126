package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"eventdesk/internal/adapters/email"
	"eventdesk/internal/adapters/markdown"
	"eventdesk/internal/application/session"
	"eventdesk/internal/application/validate"
	"eventdesk/internal/domain/feedback"
	"eventdesk/internal/domain/sitesettings"
)

// AdminAPI defines the API calls needed by the admin orchestrators.
type AdminAPI interface {
	UpdateWebsiteSettings(ctx context.Context, token string, s sitesettings.Settings) error
	DeleteFeedback(ctx context.Context, token, id string) error
}

// AdminDeps holds dependencies for the admin orchestrators.
type AdminDeps struct {
	API     AdminAPI
	Session session.Store
	Mailer  email.Sender
}

// ExecuteUpdateWebsiteSettings validates and saves the public site settings.
// PRE: the session belongs to an admin
// POST: the API has accepted the settings
func ExecuteUpdateWebsiteSettings(ctx context.Context, s sitesettings.Settings, deps AdminDeps) error {
	s.SiteName = strings.TrimSpace(s.SiteName)
	s.ContactEmail = strings.TrimSpace(s.ContactEmail)
	s.FacebookURL = strings.TrimSpace(s.FacebookURL)
	s.InstagramURL = strings.TrimSpace(s.InstagramURL)
	if err := validate.Struct(s); err != nil {
		return err
	}
	token, userID, _, err := credentials(ctx, deps.Session)
	if err != nil {
		return err
	}
	if err := deps.API.UpdateWebsiteSettings(ctx, token, s); err != nil {
		return err
	}
	slog.Info("admin_event", "event", "website_settings_updated", "user_id", userID)
	return nil
}

// ExecuteDeleteFeedback removes one feedback entry.
// PRE: the session belongs to an admin; id is non-empty
func ExecuteDeleteFeedback(ctx context.Context, id string, deps AdminDeps) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("feedback id is required")
	}
	token, userID, _, err := credentials(ctx, deps.Session)
	if err != nil {
		return err
	}
	if err := deps.API.DeleteFeedback(ctx, token, id); err != nil {
		return err
	}
	slog.Info("admin_event", "event", "feedback_deleted", "feedback_id", id, "user_id", userID)
	return nil
}

var tagUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// ExecuteReplyFeedback emails an admin's markdown reply to the feedback author.
// PRE: the session belongs to an admin
// POST: the mailer has accepted one message tagged with the feedback id
func ExecuteReplyFeedback(ctx context.Context, reply feedback.Reply, deps AdminDeps) (email.Receipt, error) {
	reply.To = strings.TrimSpace(reply.To)
	reply.Subject = strings.TrimSpace(reply.Subject)
	if strings.TrimSpace(reply.Body) == "" {
		return email.Receipt{}, feedback.ErrEmptyReply
	}
	if err := validate.Struct(reply); err != nil {
		return email.Receipt{}, err
	}
	_, userID, admin, err := credentials(ctx, deps.Session)
	if err != nil {
		return email.Receipt{}, err
	}
	html, err := markdown.Render(reply.Body)
	if err != nil {
		return email.Receipt{}, fmt.Errorf("render reply: %w", err)
	}

	msg := email.Message{
		To:      []string{reply.To},
		ReplyTo: admin.Email,
		Subject: reply.Subject,
		HTML:    html,
		Text:    reply.Body,
		Tags:    map[string]string{"category": "feedback_reply"},
	}
	if reply.FeedbackID != "" {
		msg.Tags["feedback_id"] = tagUnsafe.ReplaceAllString(reply.FeedbackID, "_")
	}
	receipt, err := deps.Mailer.Send(ctx, msg)
	if err != nil {
		slog.Error("admin_event", "event", "feedback_reply_failed", "feedback_id", reply.FeedbackID, "error", err)
		return email.Receipt{}, err
	}
	slog.Info("admin_event", "event", "feedback_replied", "feedback_id", reply.FeedbackID,
		"user_id", userID, "message_id", receipt.MessageID)
	return receipt, nil
}
