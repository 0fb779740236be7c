// Package grid tiles the territory into hazard cells and derives a synthetic
// contamination profile for each one.
package grid

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/landscope/internal/geo"
)

// Toxicity is an ordinal severity: LOW < MEDIUM < HIGH < CRITICAL.
type Toxicity int

// Toxicity levels in ascending order.
const (
	ToxicityLow Toxicity = iota
	ToxicityMedium
	ToxicityHigh
	ToxicityCritical
)

var toxicityNames = [...]string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

func (t Toxicity) String() string {
	if t < ToxicityLow || t > ToxicityCritical {
		return "UNKNOWN"
	}
	return toxicityNames[t]
}

// Ordinal returns the numeric rank of t, 0 for LOW.
func (t Toxicity) Ordinal() int { return int(t) }

// MarshalText encodes the level by name.
func (t Toxicity) MarshalText() ([]byte, error) {
	if t < ToxicityLow || t > ToxicityCritical {
		return nil, eris.Errorf("grid: invalid toxicity %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a level name.
func (t *Toxicity) UnmarshalText(b []byte) error {
	v, err := ParseToxicity(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseToxicity maps a level name to its Toxicity.
func ParseToxicity(s string) (Toxicity, error) {
	for i, name := range toxicityNames {
		if name == s {
			return Toxicity(i), nil
		}
	}
	return ToxicityLow, eris.Errorf("grid: unknown toxicity %q", s)
}

// Contaminant is the dominant contaminant category of a cell.
type Contaminant string

// Contaminant categories.
const (
	WhitePhosphorus Contaminant = "White Phosphorus"
	HeavyMetals     Contaminant = "Heavy Metals (Pb/Hg)"
	UXOResidue      Contaminant = "Unexploded Ordnance Residue"
	FuelVOCLeak     Contaminant = "Fuel/VOC Leak"
	NitrateOverload Contaminant = "Nitrate Overload"
)

// Contaminants lists every category.
var Contaminants = []Contaminant{WhitePhosphorus, HeavyMetals, UXOResidue, FuelVOCLeak, NitrateOverload}

// Branch names the rule that produced a cell's profile.
type Branch string

// Profile branches in priority order.
const (
	BranchMilitarized Branch = "militarized"
	BranchEvacuation  Branch = "evacuation"
	BranchNorthern    Branch = "northern"
	BranchCoastal     Branch = "coastal"
	BranchInland      Branch = "inland"
)

// Branches lists every branch in priority order.
var Branches = []Branch{BranchMilitarized, BranchEvacuation, BranchNorthern, BranchCoastal, BranchInland}

// HazardProfile is one generated grid cell. Every field is fixed at
// generation time; operational progress lives in the remediation package,
// keyed by ID.
type HazardProfile struct {
	ID       string `json:"id"`
	SectorID string `json:"sector_id"`
	// Tile is the raw row-major tile index, counted whether or not the tile
	// was retained.
	Tile           int            `json:"tile"`
	Center         geo.Coordinate `json:"center"`
	Corner         geo.Coordinate `json:"corner"`
	Year           int            `json:"year"`
	RecoveryFactor int            `json:"recovery_factor"`

	Branch            Branch      `json:"branch"`
	Toxicity          Toxicity    `json:"toxicity"`
	Contaminant       Contaminant `json:"contaminant"`
	PersistenceMonths int         `json:"persistence_months"`
	WaterSource       string      `json:"water_source"`
	HealthRisks       []string    `json:"health_risks"`

	RemediationCode      string  `json:"remediation_code"`
	AffectedRadiusMeters float64 `json:"affected_radius_m"`
}

// Polygon returns the square footprint of the cell.
func (c HazardProfile) Polygon() geo.Polygon {
	return geo.Square(c.Center, Step)
}
