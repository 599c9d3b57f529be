package auth

import "strings"

// Zone classifies a request path for the access guard.
type Zone string

const (
	ZoneRoot      Zone = "root"
	ZoneAuth      Zone = "auth"
	ZoneAdmin     Zone = "admin"
	ZoneLead      Zone = "lead"
	ZoneEmployee  Zone = "employee"
	ZoneDashboard Zone = "dashboard"
	ZoneOther     Zone = "other"
)

// Protected reports whether the zone requires a session.
func (z Zone) Protected() bool {
	switch z {
	case ZoneAdmin, ZoneLead, ZoneEmployee, ZoneDashboard:
		return true
	default:
		return false
	}
}

// zonePrefixes is evaluated in order; the first match wins.
//
//nolint:gochecknoglobals // static read-only lookup table.
var zonePrefixes = []struct {
	prefix string
	zone   Zone
}{
	{"/auth", ZoneAuth},
	{"/admin", ZoneAdmin},
	{"/lead", ZoneLead},
	{"/employee", ZoneEmployee},
	{"/dashboard", ZoneDashboard},
}

// Classifier maps request paths to zones.
// With Strict set a prefix only matches on a path segment boundary,
// so "/admin2" is ZoneOther instead of ZoneAdmin.
type Classifier struct {
	Strict bool
}

// Classify returns the zone for path. Matching is case-sensitive.
func (c Classifier) Classify(path string) Zone {
	if path == "/" {
		return ZoneRoot
	}
	for _, p := range zonePrefixes {
		if !strings.HasPrefix(path, p.prefix) {
			continue
		}
		if c.Strict && len(path) > len(p.prefix) && path[len(p.prefix)] != '/' {
			continue
		}
		return p.zone
	}
	return ZoneOther
}

// Classify uses segment-boundary matching.
func Classify(path string) Zone {
	return Classifier{Strict: true}.Classify(path)
}
