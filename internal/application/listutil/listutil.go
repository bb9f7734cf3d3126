// Package listutil parses list view parameters and applies them to rows the
// API returns in full.
package listutil

import (
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// PageParams selects one page of a list.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// SortParams orders a list by one column.
type SortParams struct {
	Sort string // column key, empty for API order
	Dir  string // "asc" or "desc"
}

// FilterParams narrows a list.
type FilterParams struct {
	Search  string            // free text, the q parameter
	Filters map[string]string // exact-match column filters (e.g. status=confirmed)
}

// ListParams is everything a list page reads from its query string.
type ListParams struct {
	PageParams
	SortParams
	FilterParams
}

// PageInfo describes the page Apply produced.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int // rows matching search and filters
	TotalPages int
}

// DefaultPerPage is the page size used when per_page is absent or not offered.
const DefaultPerPage = 20

// PerPageOptions are the page sizes the list pages offer.
var PerPageOptions = []int{10, 20, 50, 100}

// ParseListParams reads page, per_page, sort, dir, q and the named filters.
// Unknown sort columns fall back to API order; unknown filter names are ignored.
// POST: Page >= 1, PerPage is one of PerPageOptions, Dir is "asc" or "desc"
func ParseListParams(q url.Values, sortable, filterKeys []string) ListParams {
	var p ListParams

	p.Page, _ = strconv.Atoi(q.Get("page"))
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage = DefaultPerPage
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && slices.Contains(PerPageOptions, n) {
		p.PerPage = n
	}

	if col := q.Get("sort"); slices.Contains(sortable, col) {
		p.Sort = col
	}
	p.Dir = "asc"
	if q.Get("dir") == "desc" {
		p.Dir = "desc"
	}

	p.Search = strings.TrimSpace(q.Get("q"))
	p.Filters = make(map[string]string)
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			p.Filters[key] = v
		}
	}
	return p
}

// NewPageInfo clamps page into [1, TotalPages]. An empty list has one page.
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := max(1, (total+perPage-1)/perPage)
	return PageInfo{Page: min(max(page, 1), pages), PerPage: perPage, Total: total, TotalPages: pages}
}

// Offset is the index of the first row on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// EndRow is the index one past the last row on the page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// Row is one record of a list, column name to display text.
type Row = map[string]string

// Apply filters, searches, sorts and pages rows.
// Search is a case-insensitive substring match over searchCols (every column
// when empty); filters match exactly. Sorting compares numerically when both
// cells parse as numbers and is stable.
// PRE: rows is not shared with another goroutine being mutated
// POST: returns the visible page and the metadata of the matching set;
// rows itself is not reordered
func Apply(rows []Row, p ListParams, searchCols []string) ([]Row, PageInfo) {
	needle := strings.ToLower(strings.TrimSpace(p.Search))
	matched := make([]Row, 0, len(rows))
	for _, r := range rows {
		if matchesFilters(r, p.Filters) && matchesSearch(r, needle, searchCols) {
			matched = append(matched, r)
		}
	}

	if p.Sort != "" {
		desc := p.Dir == "desc"
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return less(matched[j][p.Sort], matched[i][p.Sort])
			}
			return less(matched[i][p.Sort], matched[j][p.Sort])
		})
	}

	perPage := p.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	info := NewPageInfo(p.Page, perPage, len(matched))
	return matched[info.Offset():info.EndRow()], info
}

func matchesFilters(r Row, filters map[string]string) bool {
	for k, v := range filters {
		if !strings.EqualFold(r[k], v) {
			return false
		}
	}
	return true
}

func matchesSearch(r Row, needle string, cols []string) bool {
	if needle == "" {
		return true
	}
	if len(cols) == 0 {
		for _, v := range r {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}
	for _, c := range cols {
		if strings.Contains(strings.ToLower(r[c]), needle) {
			return true
		}
	}
	return false
}

func less(a, b string) bool {
	fa, errA := strconv.ParseFloat(strings.ReplaceAll(a, ",", ""), 64)
	fb, errB := strconv.ParseFloat(strings.ReplaceAll(b, ",", ""), 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// SortLink returns the query string that sorts by col, flipping the direction
// when col is already the sort column.
func (p ListParams) SortLink(col string) string {
	dir := "asc"
	if p.Sort == col && p.Dir == "asc" {
		dir = "desc"
	}
	q := url.Values{}
	q.Set("sort", col)
	q.Set("dir", dir)
	q.Set("per_page", strconv.Itoa(p.PerPage))
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	return "?" + q.Encode()
}

// PageLink returns the query string of page n with the current sort and search.
func (p ListParams) PageLink(n int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(n))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	if p.Sort != "" {
		q.Set("sort", p.Sort)
		q.Set("dir", p.Dir)
	}
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	return "?" + q.Encode()
}
