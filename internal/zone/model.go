// Package zone holds the static scenario catalog: the territory outline,
// tactical hazard polygons, corridors and point assets.
package zone

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/landscope/internal/geo"
)

// Kind tags a zone or asset.
type Kind string

// Zone kinds.
const (
	KindMilitarized     Kind = "MILITARIZED"
	KindEvacuation      Kind = "EVACUATION"
	KindCorridor        Kind = "CORRIDOR"
	KindDistributionHub Kind = "DISTRIBUTION_HUB"
	KindWaterSource     Kind = "WATER_SOURCE"
)

// Kinds lists every zone kind in display order.
var Kinds = []Kind{KindMilitarized, KindEvacuation, KindCorridor, KindDistributionHub, KindWaterSource}

// DisplayName returns a title-cased label such as "Distribution Hub".
func (k Kind) DisplayName() string {
	words := strings.ReplaceAll(strings.ToLower(string(k)), "_", " ")
	return cases.Title(language.English).String(words)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// WaterType classifies a water source asset.
type WaterType string

// Water source types.
const (
	WaterWell      WaterType = "WELL"
	WaterDesal     WaterType = "DESAL"
	WaterStation   WaterType = "STATION"
	WaterReservoir WaterType = "RESERVOIR"
)

func (w WaterType) valid() bool {
	switch w {
	case WaterWell, WaterDesal, WaterStation, WaterReservoir:
		return true
	}
	return false
}

// Severity labels used for restricted zones.
const (
	SeverityExtreme = "EXTREME"
	SeverityHigh    = "HIGH"
)

// Zone is a named hazard polygon.
type Zone struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Kind    Kind        `json:"kind"`
	Polygon geo.Polygon `json:"polygon"`
}

// Corridor is a named open polyline.
type Corridor struct {
	Name string           `json:"name"`
	Path []geo.Coordinate `json:"path"`
}

// PointAsset is a single-coordinate asset such as a distribution hub or a
// water source. WaterType is empty for non-water assets.
type PointAsset struct {
	Name      string         `json:"name"`
	Kind      Kind           `json:"kind"`
	Location  geo.Coordinate `json:"location"`
	WaterType WaterType      `json:"water_type,omitempty"`
}

// RestrictedZone is a polygon exposed for access-control checks.
type RestrictedZone struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Severity string      `json:"severity"`
	Polygon  geo.Polygon `json:"polygon"`
}

// Style is display metadata for a zone kind. It has no effect on classification.
type Style struct {
	Color       string  `json:"color" yaml:"color"`
	FillColor   string  `json:"fill_color,omitempty" yaml:"fill_color"`
	Weight      float64 `json:"weight,omitempty" yaml:"weight"`
	Opacity     float64 `json:"opacity,omitempty" yaml:"opacity"`
	FillOpacity float64 `json:"fill_opacity,omitempty" yaml:"fill_opacity"`
	Radius      float64 `json:"radius,omitempty" yaml:"radius"`
	Label       string  `json:"label" yaml:"label"`
}
