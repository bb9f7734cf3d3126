package role

import (
	"encoding/json"
	"errors"
	"strings"
)

// Role is the closed set of account roles the dashboards know about.
type Role int

// Role constants. Unknown is the zero value so an unset role never matches a shell.
const (
	Unknown Role = iota
	Admin
	Client
	Organizer
)

// Fixed navigation destinations.
const (
	LoginPath = "/login"

	AdminHome     = "/admin/dashboard"
	ClientHome    = "/client/dashboard"
	OrganizerHome = "/organizer/dashboard"

	AdminSettings     = "/admin/settings"
	ClientSettings    = "/client/settings"
	OrganizerSettings = "/organizer/settings"
)

// ErrUnknownRole is returned when a role string is outside the closed set.
var ErrUnknownRole = errors.New("role must be one of: Admin, Client, Organizer")

// homes maps each role to the landing page of its area.
var homes = map[Role]string{
	Admin:     AdminHome,
	Client:    ClientHome,
	Organizer: OrganizerHome,
}

var settings = map[Role]string{
	Admin:     AdminSettings,
	Client:    ClientSettings,
	Organizer: OrganizerSettings,
}

// areas maps each role to its URL segment.
var areas = map[Role]string{
	Admin:     "admin",
	Client:    "client",
	Organizer: "organizer",
}

// Parse converts the API's role string into a Role.
// "Vendor" is the API's historical name for organizers.
// PRE: none
// POST: Returns Unknown and ErrUnknownRole for anything outside the closed set
func Parse(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return Admin, nil
	case "client":
		return Client, nil
	case "organizer", "vendor":
		return Organizer, nil
	}
	return Unknown, ErrUnknownRole
}

// FromArea resolves a URL area segment ("admin", "client", "organizer").
func FromArea(area string) (Role, error) {
	for r, a := range areas {
		if a == area {
			return r, nil
		}
	}
	return Unknown, ErrUnknownRole
}

// String returns the canonical API spelling of the role.
func (r Role) String() string {
	switch r {
	case Admin:
		return "Admin"
	case Client:
		return "Client"
	case Organizer:
		return "Organizer"
	}
	return ""
}

// Valid reports whether r is one of the closed set.
// INVARIANT: r is not mutated
func (r Role) Valid() bool {
	_, ok := homes[r]
	return ok
}

// Home returns the role's landing page. Unknown roles go to login.
// INVARIANT: r is not mutated
func (r Role) Home() string {
	if h, ok := homes[r]; ok {
		return h
	}
	return LoginPath
}

// SettingsPath returns the role's settings/profile page, or login for Unknown.
func (r Role) SettingsPath() string {
	if s, ok := settings[r]; ok {
		return s
	}
	return LoginPath
}

// Area returns the URL segment of the role's page tree.
func (r Role) Area() string {
	return areas[r]
}

// MarshalJSON encodes the canonical spelling; Unknown encodes as "".
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts any string. Unrecognized values decode to Unknown
// rather than failing, so a foreign role can be detected and signed out.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, _ := Parse(s)
	*r = parsed
	return nil
}
