package web

import (
	"errors"
	"html/template"
	"net/http"

	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/adapters/markdown"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/feedback"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/sitesettings"
)

type websitePage struct {
	Settings  sitesettings.Settings
	Preview   template.HTML
	Error     string
	Available bool
}

type feedbacksPage struct {
	Feedbacks []feedback.Feedback
	Error     string
}

func (s *server) adminDeps(r *http.Request) orchestrators.AdminDeps {
	return orchestrators.AdminDeps{API: s.API, Session: s.store(r), Mailer: s.Mailer}
}

// handleWebsiteSettingsForm handles GET /admin/website-settings
func (s *server) handleWebsiteSettingsForm(w http.ResponseWriter, r *http.Request) {
	site, err := projections.QueryGetSite(r.Context(), s.API)
	if err != nil {
		s.render(w, r, "website_settings.html", "Website settings", websitePage{Error: userMessage(err)})
		return
	}
	s.render(w, r, "website_settings.html", "Website settings", websitePage{
		Settings:  site.Settings,
		Preview:   site.AboutHTML,
		Available: true,
	})
}

// handleWebsiteSettings handles POST /admin/website-settings
func (s *server) handleWebsiteSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	settings := sitesettings.Settings{
		SiteName:     r.FormValue("site_name"),
		Tagline:      r.FormValue("tagline"),
		ContactEmail: r.FormValue("contact_email"),
		ContactPhone: r.FormValue("contact_phone"),
		Address:      r.FormValue("address"),
		AboutUs:      r.FormValue("about_us"),
		FacebookURL:  r.FormValue("facebook_url"),
		InstagramURL: r.FormValue("instagram_url"),
	}
	if err := orchestrators.ExecuteUpdateWebsiteSettings(r.Context(), settings, s.adminDeps(r)); err != nil {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "website_settings.html", "Website settings", websitePage{
			Settings:  settings,
			Preview:   markdown.HTML(settings.AboutUs),
			Error:     userMessage(err),
			Available: true,
		})
		return
	}
	s.flash(r, session.FlashSuccess, "Website settings saved.")
	http.Redirect(w, r, "/admin/website-settings", http.StatusSeeOther)
}

// handleFeedbacks handles GET /admin/feedbacks
func (s *server) handleFeedbacks(w http.ResponseWriter, r *http.Request) {
	token, _ := s.credentials(r)
	list, err := projections.QueryGetFeedbacks(r.Context(), token, s.API)
	if err != nil {
		s.render(w, r, "feedbacks.html", "Feedbacks", feedbacksPage{Error: userMessage(err)})
		return
	}
	s.render(w, r, "feedbacks.html", "Feedbacks", feedbacksPage{Feedbacks: list})
}

// handleDeleteFeedback handles POST /admin/feedbacks/{id}/delete
func (s *server) handleDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteFeedback(r.Context(), r.PathValue("id"), s.adminDeps(r))
	s.flashResult(r, err, "Feedback deleted.")
	http.Redirect(w, r, "/admin/feedbacks", http.StatusSeeOther)
}

// handleReplyFeedback handles POST /admin/feedbacks/{id}/reply
func (s *server) handleReplyFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	to := r.FormValue("to")
	_, err := orchestrators.ExecuteReplyFeedback(r.Context(), feedback.Reply{
		FeedbackID: r.PathValue("id"),
		To:         to,
		Subject:    r.FormValue("subject"),
		Body:       r.FormValue("body"),
	}, s.adminDeps(r))
	s.flashResult(r, err, "Reply sent to "+to+".")
	http.Redirect(w, r, "/admin/feedbacks", http.StatusSeeOther)
}

type navToggleRequest struct {
	Label string `json:"label"`
}

type navToggleResponse struct {
	Expanded []string `json:"expanded"`
}

// handleNavToggle handles POST /admin/nav/toggle. JSON requests get the new
// expanded set; form posts return to the page they came from.
func (s *server) handleNavToggle(w http.ResponseWriter, r *http.Request) {
	var req navToggleRequest
	if isJSONRequest(r) {
		if err := strictDecode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
			return
		}
	} else {
		req.Label = r.FormValue("label")
	}

	expanded, err := orchestrators.ExecuteToggleNavGroup(r.Context(), middleware.SessionIDFromContext(r.Context()), req.Label,
		orchestrators.ToggleNavGroupDeps{Preferences: s.Preferences})
	if !isJSONRequest(r) {
		if err != nil {
			s.flashResult(r, err, "")
		}
		http.Redirect(w, r, localPath(r.FormValue("return_to"), role.AdminHome), http.StatusSeeOther)
		return
	}
	switch {
	case errors.Is(err, orchestrators.ErrUnknownNavGroup):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, navToggleResponse{Expanded: expanded.Labels()})
	}
}
