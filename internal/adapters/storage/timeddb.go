package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SQLDB is what the session and preference stores need from a database.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQueryMs is the slow statement threshold when none is configured.
const DefaultSlowQueryMs = 50

// TimedDB observes the duration of every statement under a "<verb> <table>"
// label and warns about statements slower than the threshold.
type TimedDB struct {
	db        *sql.DB
	observer  prometheus.ObserverVec
	threshold time.Duration
}

// NewTimedDB wraps db. observer may be nil; slowMs <= 0 selects DefaultSlowQueryMs.
// PRE: db is open
// POST: statements run on db unchanged; each one is observed once
func NewTimedDB(db *sql.DB, observer prometheus.ObserverVec, slowMs int) *TimedDB {
	if slowMs <= 0 {
		slowMs = DefaultSlowQueryMs
	}
	return &TimedDB{db: db, observer: observer, threshold: time.Duration(slowMs) * time.Millisecond}
}

// ExecContext runs a statement that returns no rows.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer t.observe(query, time.Now())
	return t.db.ExecContext(ctx, query, args...)
}

// QueryContext runs a statement that returns rows.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer t.observe(query, time.Now())
	return t.db.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a statement expected to return at most one row.
// The duration covers the statement only; Scan happens after it.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer t.observe(query, time.Now())
	return t.db.QueryRowContext(ctx, query, args...)
}

func (t *TimedDB) observe(query string, start time.Time) {
	elapsed := time.Since(start)
	label := statementLabel(query)
	if elapsed >= t.threshold {
		slog.Warn("slow_query", "statement", label, "duration_ms", float64(elapsed.Microseconds())/1000)
	}
	if t.observer != nil {
		t.observer.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}

// statementLabel names a statement by its verb and the table it touches,
// e.g. "select session_value". Unrecognised shapes collapse to "other" to keep
// label cardinality bounded.
func statementLabel(query string) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return "other"
	}
	verb := words[0]
	after := ""
	switch verb {
	case "select", "delete":
		after = "from"
	case "insert", "replace":
		after = "into"
	case "update":
		if len(words) > 1 {
			return verb + " " + tableName(words[1])
		}
		return verb
	default:
		return "other"
	}
	for i, w := range words[:len(words)-1] {
		if w == after {
			return verb + " " + tableName(words[i+1])
		}
	}
	return verb
}

func tableName(w string) string {
	if i := strings.IndexAny(w, "(,;"); i >= 0 {
		w = w[:i]
	}
	return strings.Trim(w, "`\"")
}
