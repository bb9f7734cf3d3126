package nav

import (
	"encoding/json"
	"sort"
	"strings"

	"eventdesk/internal/domain/role"
)

// Entry is a single navigation link.
type Entry struct {
	Icon  string
	Label string
	Href  string
}

// Group is a labelled run of entries. Only the admin menu is collapsible.
type Group struct {
	Label   string
	Entries []Entry
}

// Menu is a role's complete, ordered navigation.
type Menu struct {
	Role        role.Role
	Collapsible bool
	Groups      []Group
}

// PreferenceKey is the storage key of the admin expanded-groups preference.
const PreferenceKey = "admin_nav_expanded"

var adminMenu = Menu{
	Role:        role.Admin,
	Collapsible: true,
	Groups: []Group{
		{Label: "Overview", Entries: []Entry{
			{Icon: "dashboard", Label: "Dashboard", Href: role.AdminHome},
		}},
		{Label: "Events", Entries: []Entry{
			{Icon: "calendar", Label: "Events", Href: "/admin/events"},
			{Icon: "ticket", Label: "Bookings", Href: "/admin/bookings"},
			{Icon: "gift", Label: "Packages", Href: "/admin/packages"},
			{Icon: "pin", Label: "Venues", Href: "/admin/venues"},
		}},
		{Label: "Finance", Entries: []Entry{
			{Icon: "card", Label: "Payments", Href: "/admin/payments"},
		}},
		{Label: "Community", Entries: []Entry{
			{Icon: "chat", Label: "Feedbacks", Href: "/admin/feedbacks"},
		}},
		{Label: "Settings", Entries: []Entry{
			{Icon: "globe", Label: "Website", Href: "/admin/website-settings"},
			{Icon: "user", Label: "Profile", Href: role.AdminSettings},
		}},
	},
}

var clientMenu = Menu{
	Role: role.Client,
	Groups: []Group{{Entries: []Entry{
		{Icon: "dashboard", Label: "Dashboard", Href: role.ClientHome},
		{Icon: "gift", Label: "Packages", Href: "/client/packages"},
		{Icon: "ticket", Label: "My Bookings", Href: "/client/bookings"},
		{Icon: "plus", Label: "Book an Event", Href: "/client/book"},
		{Icon: "user", Label: "Settings", Href: role.ClientSettings},
	}}},
}

var organizerMenu = Menu{
	Role: role.Organizer,
	Groups: []Group{{Entries: []Entry{
		{Icon: "dashboard", Label: "Dashboard", Href: role.OrganizerHome},
		{Icon: "calendar", Label: "My Events", Href: "/organizer/events"},
		{Icon: "ticket", Label: "Bookings", Href: "/organizer/bookings"},
		{Icon: "card", Label: "Payments", Href: "/organizer/payments"},
		{Icon: "user", Label: "Settings", Href: role.OrganizerSettings},
	}}},
}

// ForRole returns the fixed menu of a role. Unknown roles get an empty menu.
func ForRole(r role.Role) Menu {
	switch r {
	case role.Admin:
		return adminMenu
	case role.Client:
		return clientMenu
	case role.Organizer:
		return organizerMenu
	}
	return Menu{Role: r}
}

// IsActive reports whether href should be highlighted for the current path:
// an exact match, or path is nested beneath href.
func IsActive(href, path string) bool {
	if href == "" {
		return false
	}
	if path == href {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(href, "/")+"/")
}

// GroupLabels returns the menu's group labels in display order.
// INVARIANT: Menu is not mutated
func (m Menu) GroupLabels() []string {
	labels := make([]string, 0, len(m.Groups))
	for _, g := range m.Groups {
		if g.Label != "" {
			labels = append(labels, g.Label)
		}
	}
	return labels
}

// HasGroup reports whether label names one of the menu's groups.
func (m Menu) HasGroup(label string) bool {
	for _, g := range m.Groups {
		if g.Label != "" && g.Label == label {
			return true
		}
	}
	return false
}

// Expanded is the set of currently expanded group labels.
type Expanded map[string]bool

// DefaultExpanded returns every group of the menu expanded.
func DefaultExpanded(m Menu) Expanded {
	e := make(Expanded, len(m.Groups))
	for _, label := range m.GroupLabels() {
		e[label] = true
	}
	return e
}

// ExpandedFromLabels builds a set from stored labels, dropping labels the menu
// no longer has.
func ExpandedFromLabels(m Menu, labels []string) Expanded {
	e := make(Expanded, len(labels))
	for _, l := range labels {
		if m.HasGroup(l) {
			e[l] = true
		}
	}
	return e
}

// Toggle flips a group's state.
// PRE: label is a group of the menu the set belongs to
// POST: label is expanded iff it was collapsed before
func (e Expanded) Toggle(label string) {
	if e[label] {
		delete(e, label)
		return
	}
	e[label] = true
}

// Labels returns the expanded labels sorted, for stable persistence.
func (e Expanded) Labels() []string {
	out := make([]string, 0, len(e))
	for l, on := range e {
		if on {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// DecodeExpanded parses a stored preference. An empty raw value means nothing
// is stored and every group is expanded; a stored "[]" means all collapsed.
// PRE: none
// POST: returns DefaultExpanded(m) with the decode error for malformed input
func DecodeExpanded(m Menu, raw string) (Expanded, error) {
	if raw == "" {
		return DefaultExpanded(m), nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return DefaultExpanded(m), err
	}
	return ExpandedFromLabels(m, labels), nil
}

// Encode serializes the set as a sorted JSON array of labels.
func (e Expanded) Encode() string {
	b, _ := json.Marshal(e.Labels())
	return string(b)
}
