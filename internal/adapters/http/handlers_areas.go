package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/application/listutil"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/booking"
)

// handleDashboard handles GET /{area}/dashboard
func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	token, userID := s.credentials(r)
	res := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		Token:  token,
		Role:   u.Role,
		UserID: userID,
	}, projections.GetDashboardDeps{API: s.API})
	s.render(w, r, "dashboard.html", "Dashboard", res)
}

type listPage struct {
	List     projections.ResourceListResult
	Path     string
	PerPage  []int
	Error    string
	LinkBase string // detail link prefix; empty when rows have no page
	LinkKey  string
}

// handleResourceList handles GET /{area}/{slug} for the area's list pages.
func (s *server) handleResourceList(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := middleware.UserFromContext(r.Context())
		token, userID := s.credentials(r)
		res, err := projections.QueryGetResourceList(r.Context(), projections.GetResourceListQuery{
			Role:   u.Role,
			Slug:   slug,
			Token:  token,
			UserID: userID,
			Values: r.URL.Query(),
		}, projections.GetResourceListDeps{API: s.API})
		if errors.Is(err, projections.ErrUnknownResource) {
			http.NotFound(w, r)
			return
		}
		p := listPage{List: res, Path: r.URL.Path, PerPage: listutil.PerPageOptions}
		if err != nil {
			p.Error = userMessage(err)
			p.List.Resource, _ = projections.LookupResource(u.Role, slug)
			p.List.Columns = p.List.Resource.Columns
		}
		if u.Role.Area() == "client" && slug == "packages" {
			p.LinkBase, p.LinkKey = "/client/packages/", "package_id"
		}
		s.render(w, r, "list.html", p.List.Resource.Title, p)
	}
}

// handlePackageDetail handles GET /client/packages/{id}
func (s *server) handlePackageDetail(w http.ResponseWriter, r *http.Request) {
	token, _ := s.credentials(r)
	res, err := projections.QueryGetPackageBudget(r.Context(), projections.GetPackageBudgetQuery{
		Token:     token,
		PackageID: r.PathValue("id"),
	}, projections.GetPackageBudgetDeps{API: s.API})
	if err != nil {
		s.flash(r, session.FlashError, userMessage(err))
		http.Redirect(w, r, "/client/packages", http.StatusSeeOther)
		return
	}
	s.render(w, r, "package.html", res.Package.Name, res)
}

// option is one choice of a wizard select.
type option struct {
	ID    string
	Label string
}

type bookingPage struct {
	State    orchestrators.BookingState
	Packages []option
	Venues   []option
	Error    string
}

// options lists the choices for the wizard's package and venue steps. A
// failed load leaves the list empty and the page falls back to an id field.
func (s *server) options(r *http.Request, op api.ListOperation, idKey, nameKey, extraKey string) []option {
	token, _ := s.credentials(r)
	rows, err := s.API.List(r.Context(), token, op, "")
	if err != nil {
		slog.Warn("booking_event", "event", "options_unavailable", "operation", string(op), "error", err)
		return nil
	}
	out := make([]option, 0, len(rows))
	for _, row := range rows {
		if row[idKey] == "" {
			continue
		}
		label := row[nameKey]
		if extra := row[extraKey]; extra != "" {
			label += " (" + extra + ")"
		}
		out = append(out, option{ID: row[idKey], Label: label})
	}
	return out
}

func (s *server) renderBooking(w http.ResponseWriter, r *http.Request, status int, state orchestrators.BookingState, errMsg string) {
	p := bookingPage{State: state, Error: errMsg}
	switch state.Wizard.Current {
	case 1:
		p.Packages = s.options(r, api.ListPackages, "package_id", "package_name", "price")
	case 2:
		p.Venues = s.options(r, api.ListVenues, "venue_id", "venue_name", "location")
	}
	s.renderStatus(w, r, status, "book.html", "Book an Event", p)
}

// handleBookingForm handles GET /client/book
func (s *server) handleBookingForm(w http.ResponseWriter, r *http.Request) {
	s.renderBooking(w, r, http.StatusOK, orchestrators.LoadBooking(r.Context(), s.store(r)), "")
}

// handleBooking handles POST /client/book
func (s *server) handleBooking(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	action := r.FormValue("action")
	if action == "reset" {
		if err := orchestrators.ExecuteResetBooking(r.Context(), s.store(r)); err != nil {
			slog.Warn("booking_event", "event", "draft_clear_failed", "error", err)
		}
		http.Redirect(w, r, "/client/book", http.StatusSeeOther)
		return
	}

	guests, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("guest_count")))
	state, err := orchestrators.ExecuteBookingStep(r.Context(), orchestrators.BookingInput{
		Action: action,
		Draft: booking.Draft{
			EventName:  r.FormValue("event_name"),
			EventDate:  r.FormValue("event_date"),
			GuestCount: guests,
			PackageID:  r.FormValue("package_id"),
			VenueID:    r.FormValue("venue_id"),
			Notes:      r.FormValue("notes"),
		},
	}, orchestrators.BookingDeps{API: s.API, Session: s.store(r), Now: s.Now})
	if err != nil {
		s.renderBooking(w, r, http.StatusUnprocessableEntity, state, userMessage(err))
		return
	}
	if state.BookingID != "" {
		s.flash(r, session.FlashSuccess, "Booking #"+state.BookingID+" created.")
		http.Redirect(w, r, "/client/bookings", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/client/book", http.StatusSeeOther)
}
