package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"eventdesk/internal/adapters/storage/preference"
	"eventdesk/internal/domain/nav"
	"eventdesk/internal/domain/role"
)

// PreferenceStore persists per-device UI preferences.
type PreferenceStore interface {
	Get(ctx context.Context, deviceID, key string) (string, error)
	Put(ctx context.Context, deviceID, key, value string) error
}

// ErrUnknownNavGroup is returned when a toggle names a group the menu does not have.
var ErrUnknownNavGroup = errors.New("unknown navigation group")

// LoadExpanded reads the device's expanded admin groups. A missing or
// unreadable preference yields every group expanded.
func LoadExpanded(ctx context.Context, prefs PreferenceStore, deviceID string) nav.Expanded {
	menu := nav.ForRole(role.Admin)
	if prefs == nil || deviceID == "" {
		return nav.DefaultExpanded(menu)
	}
	raw, err := prefs.Get(ctx, deviceID, nav.PreferenceKey)
	if err != nil {
		if !errors.Is(err, preference.ErrNotFound) {
			slog.Warn("preference_event", "event", "load_failed", "key", nav.PreferenceKey, "error", err)
		}
		return nav.DefaultExpanded(menu)
	}
	expanded, err := nav.DecodeExpanded(menu, raw)
	if err != nil {
		slog.Warn("preference_event", "event", "decode_failed", "key", nav.PreferenceKey, "error", err)
	}
	return expanded
}

// ToggleNavGroupDeps holds dependencies for ToggleNavGroup.
type ToggleNavGroupDeps struct {
	Preferences PreferenceStore
}

// ExecuteToggleNavGroup flips one admin menu group and persists the set.
// PRE: deviceID is non-empty
// POST: the stored set differs from the previous one in exactly label
func ExecuteToggleNavGroup(ctx context.Context, deviceID, label string, deps ToggleNavGroupDeps) (nav.Expanded, error) {
	menu := nav.ForRole(role.Admin)
	if !menu.HasGroup(label) {
		return nil, ErrUnknownNavGroup
	}
	expanded := LoadExpanded(ctx, deps.Preferences, deviceID)
	expanded.Toggle(label)
	if err := deps.Preferences.Put(ctx, deviceID, nav.PreferenceKey, expanded.Encode()); err != nil {
		return nil, err
	}
	slog.Debug("preference_event", "event", "nav_toggled", "group", label, "expanded", expanded[label])
	return expanded, nil
}
