// Package access labels coordinates as safe or restricted for field
// operations.
package access

import (
	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/zone"
)

// Level is the access status of a coordinate.
type Level string

// Access levels. Caution is part of the vocabulary but no rule produces it.
const (
	Safe       Level = "SAFE"
	Caution    Level = "CAUTION"
	Restricted Level = "RESTRICTED"
)

// Result is the outcome of a classification. Zone fields are empty for
// SAFE results.
type Result struct {
	Level    Level  `json:"level"`
	ZoneID   string `json:"zone_id,omitempty"`
	ZoneName string `json:"zone_name,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// Classifier checks coordinates against a fixed set of restricted zones. It
// holds no mutable state and is safe for concurrent use.
type Classifier struct {
	zones []zone.RestrictedZone
	scope geo.BBox
}

// New builds a Classifier over zones. scope bounds the coordinates for which
// remote insight may be requested.
func New(zones []zone.RestrictedZone, scope geo.BBox) *Classifier {
	return &Classifier{
		zones: append([]zone.RestrictedZone(nil), zones...),
		scope: scope,
	}
}

// FromRegistry builds a Classifier from a registry's restricted zones and
// insight scope.
func FromRegistry(reg *zone.Registry) *Classifier {
	return New(reg.Restricted(), reg.Scope())
}

// Classify returns RESTRICTED with the first containing zone, or SAFE.
func (c *Classifier) Classify(pt geo.Coordinate) Result {
	for _, z := range c.zones {
		if geo.Contains(pt, z.Polygon) {
			return Result{
				Level:    Restricted,
				ZoneID:   z.ID,
				ZoneName: z.Name,
				Severity: z.Severity,
			}
		}
	}
	return Result{Level: Safe}
}

// InScope reports whether pt lies strictly inside the insight scope box.
func (c *Classifier) InScope(pt geo.Coordinate) bool {
	return c.scope.Contains(pt)
}

// Eligible classifies pt and reports whether it may be submitted for
// insight. Restricted points remain eligible; the caller is expected to pass
// the access level along with the request.
func (c *Classifier) Eligible(pt geo.Coordinate) (Result, bool) {
	return c.Classify(pt), c.InScope(pt)
}
