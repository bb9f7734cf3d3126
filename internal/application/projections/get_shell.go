package projections

import (
	"eventdesk/internal/domain/nav"
	"eventdesk/internal/domain/user"
)

// GetShellQuery carries what the page chrome is built from.
type GetShellQuery struct {
	User     user.User
	Path     string       // current request path
	Expanded nav.Expanded // admin groups currently expanded; ignored for other roles
	TabID    string
}

// GetShellDeps holds dependencies for the shell projection.
type GetShellDeps struct {
	ImageURL func(ref string) string
}

// ShellEntry is a navigation link with its highlight state.
type ShellEntry struct {
	nav.Entry
	Active bool
}

// ShellGroup is a navigation group with its expanded state.
type ShellGroup struct {
	Label    string
	Entries  []ShellEntry
	Expanded bool
	Active   bool // holds the active entry
}

// ShellResult is the chrome of an authenticated page.
type ShellResult struct {
	User         user.User
	DisplayName  string
	Initials     string
	AvatarURL    string // empty renders the initials placeholder
	Area         string
	HomePath     string
	SettingsPath string
	Collapsible  bool
	Groups       []ShellGroup
	TabID        string
}

// QueryGetShell builds the navigation and header of a role's page.
// PRE: query.User has a valid role
// POST: exactly the entries whose destination matches Path are Active; for
// a non-collapsible menu every group is Expanded
func QueryGetShell(query GetShellQuery, deps GetShellDeps) ShellResult {
	u := query.User
	menu := nav.ForRole(u.Role)
	res := ShellResult{
		User:         u,
		DisplayName:  u.DisplayName(),
		Initials:     u.Initials(),
		Area:         u.Role.Area(),
		HomePath:     u.Role.Home(),
		SettingsPath: u.Role.SettingsPath(),
		Collapsible:  menu.Collapsible,
		TabID:        query.TabID,
	}
	if u.Avatar != "" && deps.ImageURL != nil {
		res.AvatarURL = deps.ImageURL(u.Avatar)
	}

	for _, g := range menu.Groups {
		sg := ShellGroup{Label: g.Label, Expanded: !menu.Collapsible || query.Expanded[g.Label]}
		for _, e := range g.Entries {
			active := nav.IsActive(e.Href, query.Path)
			sg.Active = sg.Active || active
			sg.Entries = append(sg.Entries, ShellEntry{Entry: e, Active: active})
		}
		res.Groups = append(res.Groups, sg)
	}
	return res
}
