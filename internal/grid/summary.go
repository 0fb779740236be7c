package grid

import "math"

// Summary aggregates a generated grid.
type Summary struct {
	Year            int                 `json:"year"`
	RecoveryFactor  int                 `json:"recovery_factor"`
	Cells           int                 `json:"cells"`
	ByToxicity      map[string]int      `json:"by_toxicity"`
	ByBranch        map[Branch]int      `json:"by_branch"`
	ByContaminant   map[Contaminant]int `json:"by_contaminant"`
	MeanToxicity    float64             `json:"mean_toxicity"`
	MeanPersistence float64             `json:"mean_persistence_months"`
	MaxPersistence  int                 `json:"max_persistence_months"`
}

// Summarize counts cells per toxicity, branch and contaminant and computes
// the mean toxicity ordinal and mean persistence.
func Summarize(cells []HazardProfile) Summary {
	s := Summary{
		Cells:         len(cells),
		ByToxicity:    make(map[string]int),
		ByBranch:      make(map[Branch]int),
		ByContaminant: make(map[Contaminant]int),
	}
	if len(cells) == 0 {
		return s
	}
	s.Year = cells[0].Year
	s.RecoveryFactor = cells[0].RecoveryFactor

	var toxSum, persSum int
	for _, c := range cells {
		s.ByToxicity[c.Toxicity.String()]++
		s.ByBranch[c.Branch]++
		s.ByContaminant[c.Contaminant]++
		toxSum += c.Toxicity.Ordinal()
		persSum += c.PersistenceMonths
		s.MaxPersistence = max(s.MaxPersistence, c.PersistenceMonths)
	}
	s.MeanToxicity = float64(toxSum) / float64(len(cells))
	s.MeanPersistence = float64(persSum) / float64(len(cells))
	return s
}

// Find returns the cell with id, if present.
func Find(cells []HazardProfile, id string) (HazardProfile, bool) {
	for _, c := range cells {
		if c.ID == id {
			return c, true
		}
	}
	return HazardProfile{}, false
}

// CellAt returns the cell whose center lies within half a step of lat/lng on
// both axes.
func CellAt(cells []HazardProfile, lat, lng float64) (HazardProfile, bool) {
	for _, c := range cells {
		if math.Abs(c.Center.Lat-lat) < Step/2 && math.Abs(c.Center.Lng-lng) < Step/2 {
			return c, true
		}
	}
	return HazardProfile{}, false
}
