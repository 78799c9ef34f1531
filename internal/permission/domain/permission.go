// Package domain defines the permission model for the gateway.
// Effective access is resolved from tenant-level defaults merged with
// per-user overrides; a deactivated user always resolves to no access.
package domain

import (
	"time"
)

// Key identifies a capability group with independent read/write flags.
// The set of keys is closed and known at compile time.
type Key string

const (
	// ChannelsKey covers channel listing and history access.
	ChannelsKey Key = "channels"

	// ChatKey covers posting and updating messages.
	ChatKey Key = "chat"

	// UsersKey covers user directory access.
	UsersKey Key = "users"
)

// Keys lists every capability key supported by the gateway.
var Keys = []Key{ChannelsKey, ChatKey, UsersKey}

// Operation is the direction of an access check.
type Operation string

const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
)

// Flags holds the read/write booleans for one capability key.
type Flags struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
}

// Allows returns the flag for the given operation. Unknown operations deny.
func (f Flags) Allows(op Operation) bool {
	switch op {
	case OpRead:
		return f.Read
	case OpWrite:
		return f.Write
	default:
		return false
	}
}

// Map associates capability keys with their read/write flags.
// A Map may be partial (per-user overrides) or complete (tenant defaults
// and effective maps, which carry every key).
type Map map[Key]Flags

// EmptyMap builds a complete all-false permission map.
func EmptyMap() Map {
	m := make(Map, len(Keys))
	for _, key := range Keys {
		m[key] = Flags{}
	}
	return m
}

// Normalized returns a complete copy of m: every known key is present,
// missing keys default to all-false, unknown keys are dropped.
func (m Map) Normalized() Map {
	out := EmptyMap()
	for _, key := range Keys {
		if flags, ok := m[key]; ok {
			out[key] = flags
		}
	}
	return out
}

// ValidKey reports whether key belongs to the closed capability set.
func ValidKey(key Key) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// TenantDefaults is the tenant-level default permission map. One row per
// tenant; absence means all-false defaults.
type TenantDefaults struct {
	TenantID    string
	Permissions Map
	UpdatedAt   time.Time
}

// UserPermission is the per-user override record. Overrides is a partial
// map: only keys present in it replace the tenant defaults. IsActive false
// means the user resolves to no access regardless of overrides or defaults.
type UserPermission struct {
	UserID    string
	TenantID  string
	Overrides Map
	IsActive  bool
	UpdatedAt time.Time
}

// Merge computes the effective permission map from complete tenant defaults
// and a partial override map. Override flags win per key; keys absent from
// the override keep the defaults.
func Merge(defaults, overrides Map) Map {
	merged := defaults.Normalized()
	for key, flags := range overrides {
		if !ValidKey(key) {
			continue
		}
		merged[key] = flags
	}
	return merged
}

// UserSummary pairs a user's raw override record with the permissions that
// record resolves to. Used by admin listings.
type UserSummary struct {
	UserID    string
	IsActive  bool
	Overrides Map
	Effective Map
}
