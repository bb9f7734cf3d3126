package projections

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"eventdesk/internal/domain/budget"
	"eventdesk/internal/domain/role"
)

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Token  string
	Role   role.Role
	UserID string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	API StatsAPI
}

// StatCard is one counter on a dashboard.
type StatCard struct {
	Key   string
	Label string
	Value string
	Icon  string
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Role   role.Role
	Cards  []StatCard
	Notice string // set when the counters could not be loaded
}

type cardDef struct {
	key, label, icon string
	money            bool
}

// cardSets lists each role's counters in display order.
var cardSets = map[role.Role][]cardDef{
	role.Admin: {
		{key: "total_events", label: "Events", icon: "calendar"},
		{key: "total_bookings", label: "Bookings", icon: "ticket"},
		{key: "total_clients", label: "Clients", icon: "user"},
		{key: "total_revenue", label: "Revenue", icon: "card", money: true},
	},
	role.Client: {
		{key: "my_bookings", label: "My bookings", icon: "ticket"},
		{key: "upcoming_events", label: "Upcoming events", icon: "calendar"},
		{key: "pending_payments", label: "Pending payments", icon: "card", money: true},
	},
	role.Organizer: {
		{key: "my_events", label: "My events", icon: "calendar"},
		{key: "total_bookings", label: "Bookings", icon: "ticket"},
		{key: "total_earnings", label: "Earnings", icon: "card", money: true},
	},
}

// DashboardUnavailable is the notice shown when counters fail to load.
const DashboardUnavailable = "Dashboard figures are unavailable right now. Try again shortly."

// QueryGetDashboard loads the role's counters.
// PRE: query.Role is valid
// POST: never returns an error; a failed load yields a Notice and no cards.
// Known counters keep their fixed order, unknown ones follow sorted by key
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) DashboardResult {
	res := DashboardResult{Role: query.Role}
	stats, err := deps.API.GetDashboardStats(ctx, query.Token, query.Role, query.UserID)
	if err != nil {
		slog.Warn("dashboard_event", "event", "stats_unavailable", "role", query.Role.String(), "error", err)
		res.Notice = DashboardUnavailable
		return res
	}

	seen := make(map[string]bool)
	for _, def := range cardSets[query.Role] {
		v, ok := stats[def.key]
		if !ok {
			continue
		}
		seen[def.key] = true
		res.Cards = append(res.Cards, StatCard{Key: def.key, Label: def.label, Icon: def.icon, Value: formatStat(v, def.money)})
	}
	var extra []string
	for k := range stats {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		res.Cards = append(res.Cards, StatCard{Key: k, Label: humanize(k), Icon: "dashboard", Value: formatStat(stats[k], isMoneyKey(k))})
	}
	return res
}

func formatStat(v float64, money bool) string {
	if money {
		return budget.FormatCents(budget.ToCents(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isMoneyKey(k string) bool {
	for _, s := range []string{"revenue", "earnings", "amount", "payment"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// humanize turns "total_venues" into "Total venues".
func humanize(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

