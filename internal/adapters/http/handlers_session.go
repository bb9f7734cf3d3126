package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eventdesk/internal/adapters/http/metrics"
	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/application/notify"
	"eventdesk/internal/application/shell"
	"eventdesk/internal/domain/role"
)

// heartbeatInterval keeps idle notification streams open through proxies.
var heartbeatInterval = 25 * time.Second

// handleSessionEvents handles GET /api/session/events?tab=<id>. The stream
// emits "session-changed" after every publish to the tab's scope.
func (s *server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	scope := notify.Scope{
		SessionID: middleware.SessionIDFromContext(r.Context()),
		TabID:     r.URL.Query().Get("tab"),
	}
	if !scope.Valid() {
		http.Error(w, "tab is required", http.StatusBadRequest)
		return
	}
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	changed := make(chan struct{}, 1)
	unsubscribe := s.Bus.Subscribe(scope, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "retry: 3000\n\n")
	if err := rc.Flush(); err != nil {
		slog.Warn("session_event", "event", "stream_unsupported", "error", err)
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			fmt.Fprint(w, "event: session-changed\ndata: {}\n\n")
			metrics.SessionNotificationsTotal.Inc()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

type sessionUserResponse struct {
	Outcome     string `json:"outcome"`
	Location    string `json:"location,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Initials    string `json:"initials,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// handleSessionUser handles GET /api/session/user?area=<role>. It re-runs the
// role guard so a page refreshed after a notification sees exactly what a
// reload would.
func (s *server) handleSessionUser(w http.ResponseWriter, r *http.Request) {
	required, err := role.FromArea(r.URL.Query().Get("area"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown area"})
		return
	}
	sid := middleware.SessionIDFromContext(r.Context())
	if sid == "" {
		writeJSON(w, http.StatusOK, sessionUserResponse{Outcome: shell.RedirectLogin.String(), Location: role.LoginPath})
		return
	}
	d := shell.Evaluate(r.Context(), s.Sessions.Open(sid), required, s.Now())
	metrics.GuardDecisionsTotal.WithLabelValues(d.Outcome.String(), d.Reason).Inc()
	w.Header().Set("Cache-Control", "no-store")
	if d.Outcome != shell.Authenticated {
		writeJSON(w, http.StatusOK, sessionUserResponse{Outcome: d.Outcome.String(), Location: d.Location})
		return
	}
	u := d.User
	writeJSON(w, http.StatusOK, sessionUserResponse{
		Outcome:     d.Outcome.String(),
		DisplayName: u.DisplayName(),
		Initials:    u.Initials(),
		Email:       u.Email,
		Role:        u.Role.String(),
		AvatarURL:   s.ImageURL(u.Avatar),
	})
}
