package projections

import (
	"context"
	"errors"
	"net/url"
	"sort"

	"eventdesk/internal/adapters/api"
	"eventdesk/internal/application/listutil"
	"eventdesk/internal/domain/role"
)

// Column is one table column of a resource list.
type Column struct {
	Key   string
	Label string
}

// Resource describes one list page of a role area.
type Resource struct {
	Slug      string // URL segment under the role area
	Title     string
	Operation api.ListOperation
	Scoped    bool // the API filters by the signed-in user's id
	Columns   []Column
	Filters   []string // exact-match filter keys accepted from the query string
}

// ErrUnknownResource is returned for a slug the role area does not list.
var ErrUnknownResource = errors.New("unknown resource")

var resources = map[role.Role][]Resource{
	role.Admin: {
		{Slug: "events", Title: "Events", Operation: api.ListEvents, Filters: []string{"status"}, Columns: []Column{
			{"event_name", "Event"}, {"event_date", "Date"}, {"venue_name", "Venue"}, {"organizer_name", "Organizer"}, {"status", "Status"},
		}},
		{Slug: "bookings", Title: "Bookings", Operation: api.ListBookings, Filters: []string{"status"}, Columns: []Column{
			{"booking_id", "#"}, {"client_name", "Client"}, {"event_name", "Event"}, {"event_date", "Date"}, {"total_amount", "Amount"}, {"status", "Status"},
		}},
		{Slug: "packages", Title: "Packages", Operation: api.ListPackages, Columns: []Column{
			{"package_name", "Package"}, {"price", "Price"}, {"capacity", "Capacity"}, {"description", "Description"},
		}},
		{Slug: "venues", Title: "Venues", Operation: api.ListVenues, Columns: []Column{
			{"venue_name", "Venue"}, {"location", "Location"}, {"capacity", "Capacity"}, {"price", "Price"},
		}},
		{Slug: "payments", Title: "Payments", Operation: api.ListPayments, Filters: []string{"payment_status"}, Columns: []Column{
			{"payment_id", "#"}, {"booking_id", "Booking"}, {"amount", "Amount"}, {"payment_method", "Method"}, {"payment_status", "Status"}, {"payment_date", "Date"},
		}},
	},
	role.Client: {
		{Slug: "packages", Title: "Packages", Operation: api.ListPackages, Columns: []Column{
			{"package_name", "Package"}, {"price", "Price"}, {"capacity", "Capacity"}, {"description", "Description"},
		}},
		{Slug: "bookings", Title: "My Bookings", Operation: api.ListMyBookings, Scoped: true, Filters: []string{"status"}, Columns: []Column{
			{"booking_id", "#"}, {"event_name", "Event"}, {"event_date", "Date"}, {"package_name", "Package"}, {"total_amount", "Amount"}, {"status", "Status"},
		}},
	},
	role.Organizer: {
		{Slug: "events", Title: "My Events", Operation: api.ListMyEvents, Scoped: true, Filters: []string{"status"}, Columns: []Column{
			{"event_name", "Event"}, {"event_date", "Date"}, {"venue_name", "Venue"}, {"guest_count", "Guests"}, {"status", "Status"},
		}},
		{Slug: "bookings", Title: "Bookings", Operation: api.ListOrganizerBookings, Scoped: true, Filters: []string{"status"}, Columns: []Column{
			{"booking_id", "#"}, {"client_name", "Client"}, {"event_name", "Event"}, {"event_date", "Date"}, {"status", "Status"},
		}},
		{Slug: "payments", Title: "Payments", Operation: api.ListOrganizerPayments, Scoped: true, Filters: []string{"payment_status"}, Columns: []Column{
			{"payment_id", "#"}, {"booking_id", "Booking"}, {"amount", "Amount"}, {"payment_status", "Status"}, {"payment_date", "Date"},
		}},
	},
}

// LookupResource finds the list page slug of a role area.
func LookupResource(r role.Role, slug string) (Resource, error) {
	for _, res := range resources[r] {
		if res.Slug == slug {
			return res, nil
		}
	}
	return Resource{}, ErrUnknownResource
}

// Resources returns the list pages of a role area in menu order.
func Resources(r role.Role) []Resource {
	return resources[r]
}

// ColumnKeys returns the resource's column keys in order.
func (r Resource) ColumnKeys() []string {
	keys := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		keys[i] = c.Key
	}
	return keys
}

// GetResourceListQuery carries input for the resource list projection.
type GetResourceListQuery struct {
	Role   role.Role
	Slug   string
	Token  string
	UserID string
	Values url.Values // raw query string: q, sort, dir, page, per_page, filters
}

// GetResourceListDeps holds dependencies for the resource list projection.
type GetResourceListDeps struct {
	API ListAPI
}

// ResourceListResult is one rendered page of a list.
type ResourceListResult struct {
	Resource Resource
	Columns  []Column
	Rows     []api.Row
	Params   listutil.ListParams
	Page     listutil.PageInfo
}

// QueryGetResourceList loads a list and applies search, sort and paging.
// PRE: query.Slug names a resource of query.Role
// POST: Rows holds at most Params.PerPage rows; when none of the configured
// columns appear in the data the columns fall back to the row keys, sorted
func QueryGetResourceList(ctx context.Context, query GetResourceListQuery, deps GetResourceListDeps) (ResourceListResult, error) {
	res, err := LookupResource(query.Role, query.Slug)
	if err != nil {
		return ResourceListResult{}, err
	}
	userID := ""
	if res.Scoped {
		userID = query.UserID
	}
	rows, err := deps.API.List(ctx, query.Token, res.Operation, userID)
	if err != nil {
		return ResourceListResult{}, err
	}

	cols := columnsFor(res, rows)
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	params := listutil.ParseListParams(query.Values, keys, res.Filters)
	page, info := listutil.Apply(rows, params, keys)
	return ResourceListResult{Resource: res, Columns: cols, Rows: page, Params: params, Page: info}, nil
}

func columnsFor(res Resource, rows []api.Row) []Column {
	if len(rows) == 0 {
		return res.Columns
	}
	present := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			present[k] = true
		}
	}
	var cols []Column
	for _, c := range res.Columns {
		if present[c.Key] {
			cols = append(cols, c)
		}
	}
	if len(cols) > 0 {
		return cols
	}
	keys := make([]string, 0, len(present))
	for k := range present {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cols = append(cols, Column{Key: k, Label: humanize(k)})
	}
	return cols
}
