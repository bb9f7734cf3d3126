package api

import (
	"context"
	"encoding/json"
	"strconv"
)

// ListOperation names an operation returning an array of rows.
type ListOperation string

// List operations
const (
	ListEvents            ListOperation = "getAllEvents"
	ListBookings          ListOperation = "getAllBookings"
	ListPackages          ListOperation = "getAllPackages"
	ListVenues            ListOperation = "getAllVenues"
	ListPayments          ListOperation = "getAllPayments"
	ListMyBookings        ListOperation = "getMyBookings"
	ListMyEvents          ListOperation = "getMyEvents"
	ListOrganizerBookings ListOperation = "getOrganizerBookings"
	ListOrganizerPayments ListOperation = "getOrganizerPayments"
)

// Row is one record of a list operation with every value rendered as text.
type Row = map[string]string

// List runs a list operation. userID scopes the "my"/organizer lists and is
// ignored by the admin lists.
func (c *Client) List(ctx context.Context, token string, op ListOperation, userID string) ([]Row, error) {
	var raw []map[string]json.RawMessage
	params := map[string]string{}
	if userID != "" {
		params["user_id"] = userID
	}
	if err := c.get(ctx, token, string(op), params, &raw); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		row := make(Row, len(r))
		for k, v := range r {
			row[k] = text(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// text renders a JSON scalar as display text; objects and arrays keep their JSON.
func text(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return strconv.FormatBool(b)
	}
	if string(v) == "null" {
		return ""
	}
	return string(v)
}
