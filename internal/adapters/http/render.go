package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"eventdesk/internal/adapters/http/middleware"
	"eventdesk/internal/application/orchestrators"
	"eventdesk/internal/application/projections"
	"eventdesk/internal/application/session"
	"eventdesk/internal/domain/nav"
	"eventdesk/internal/domain/role"
	"eventdesk/internal/domain/user"
)

//go:embed templates static
var assets embed.FS

// page is what every template receives.
type page struct {
	Title     string
	Shell     *projections.ShellResult // nil on public pages
	Flash     *session.Flash
	CSRFField template.HTML
	CSRFToken string
	Data      any
}

// pageSet holds one parsed template per page, each joined with the layout.
type pageSet struct {
	pages map[string]*template.Template
}

var funcMap = template.FuncMap{
	"css":  func(s string) template.CSS { return template.CSS(s) },
	"add":  func(a, b int) int { return a + b },
	"sub":  func(a, b int) int { return a - b },
	"cell": func(row map[string]string, key string) string { return row[key] },
	"seq":  func(n int) []int {
		s := make([]int, n)
		for i := range s {
			s[i] = i + 1
		}
		return s
	},
}

// loadPages parses every page template against the layout.
// POST: each page named "x.html" renders through pageSet.get("x.html")
func loadPages() (*pageSet, error) {
	names, err := fs.Glob(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	ps := &pageSet{pages: make(map[string]*template.Template)}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(assets, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		ps.pages[base] = tpl
	}
	return ps, nil
}

func (ps *pageSet) get(name string) (*template.Template, bool) {
	tpl, ok := ps.pages[name]
	return tpl, ok
}

// render writes a full page with status 200.
func (s *server) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	s.renderStatus(w, r, http.StatusOK, name, title, data)
}

// renderStatus buffers the page so a template failure never sends half a page.
func (s *server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	tpl, ok := s.pages.get(name)
	if !ok {
		internalError(w, fmt.Errorf("unknown template %s", name))
		return
	}
	p := page{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
		Data:      data,
	}
	if middleware.SessionIDFromContext(r.Context()) != "" {
		if f, ok := session.PopFlash(r.Context(), s.store(r)); ok {
			p.Flash = &f
		}
	}
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		sh := s.shell(r, u)
		p.Shell = &sh
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		slog.Error("render_failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// shell builds the chrome of an authenticated page. Each render mints a new
// tab id that the page's notification stream and forms carry.
func (s *server) shell(r *http.Request, u user.User) projections.ShellResult {
	var expanded nav.Expanded
	if u.Role == role.Admin && s.Preferences != nil {
		expanded = orchestrators.LoadExpanded(r.Context(), s.Preferences, middleware.SessionIDFromContext(r.Context()))
	}
	return projections.QueryGetShell(projections.GetShellQuery{
		User:     u,
		Path:     r.URL.Path,
		Expanded: expanded,
		TabID:    uuid.NewString(),
	}, projections.GetShellDeps{ImageURL: s.ImageURL})
}
