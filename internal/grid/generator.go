package grid

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/zone"
)

// Tiling and classification constants.
const (
	// Step is the tile size in degrees on both axes.
	Step = 0.0075

	// DecommissionYear is the first year in which tactical hazard zones no
	// longer influence generated profiles.
	DecommissionYear = 2027

	// NorthernBandLat is the latitude above which the northern
	// high-contamination band applies.
	NorthernBandLat = 31.52

	// CoastalLng is the longitude west of which a cell is coastal.
	CoastalLng = 34.32

	// RemediationCode is stamped on every generated cell.
	RemediationCode = "RE-26"

	// AffectedRadiusMeters is the nominal impact radius of a cell.
	AffectedRadiusMeters = 350.0

	hashFrequency   = 0.987
	monthsPerFactor = 12
	tileEpsilon     = 1e-9
)

// Base persistence in months per branch before recovery is applied.
const (
	militarizedPersistence = 84
	evacuationPersistence  = 48
	northernPersistence    = 60
	defaultPersistence     = 12
)

var (
	waterSources = []string{"Municipal Well", "Solar Desalination", "Brackish Well", "Trucked Supply", "Private Cistern"}
	diseasePool  = []string{"Typhoid", "Cholera", "Leishmaniasis", "Gastroenteritis", "Heavy Metal Poisoning"}
)

// Generator produces hazard grids for a fixed zone registry. It is safe for
// concurrent use.
type Generator struct {
	territory   geo.Polygon
	bounds      geo.BBox
	militarized []geo.Polygon
	evacuation  []geo.Polygon
}

// New creates a Generator over the registry's territory and hazard zones.
func New(reg *zone.Registry) *Generator {
	return &Generator{
		territory:   reg.Territory(),
		bounds:      reg.Bounds(),
		militarized: zone.Polygons(reg.Militarized()),
		evacuation:  zone.Polygons(reg.Evacuation()),
	}
}

// tile is a retained tile before its profile is assigned.
type tile struct {
	index  int
	corner geo.Coordinate
	inMil  bool
	inEvac bool
}

// Generate tiles the bounding box in row-major order and returns one profile
// per tile whose south-west corner lies inside the territory. The output is
// a pure function of year and recovery.
func (g *Generator) Generate(year, recovery int) []HazardProfile {
	start := time.Now()
	rows, cols := g.dims()

	var tiles []tile
	for i := 0; i < rows; i++ {
		tiles = append(tiles, g.scanRow(i, cols, year)...)
	}

	cells := assign(tiles, year, recovery)
	zap.L().Debug("grid: generated hazard grid",
		zap.Int("year", year),
		zap.Int("recovery", recovery),
		zap.Int("cells", len(cells)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return cells
}

// GenerateParallel evaluates rows on up to workers goroutines and returns the
// same sequence Generate would. Only the polygon tests run concurrently; the
// per-cell counter is assigned after rows are merged in order.
func (g *Generator) GenerateParallel(ctx context.Context, year, recovery, workers int) ([]HazardProfile, error) {
	if workers <= 1 {
		return g.Generate(year, recovery), nil
	}

	rows, cols := g.dims()
	results := make([][]tile, rows)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < rows; i++ {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = g.scanRow(i, cols, year)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var tiles []tile
	for _, row := range results {
		tiles = append(tiles, row...)
	}
	return assign(tiles, year, recovery), nil
}

// dims returns the number of rows and columns, both ends inclusive.
func (g *Generator) dims() (rows, cols int) {
	rows = int(math.Floor((g.bounds.MaxLat-g.bounds.MinLat)/Step+tileEpsilon)) + 1
	cols = int(math.Floor((g.bounds.MaxLng-g.bounds.MinLng)/Step+tileEpsilon)) + 1
	return rows, cols
}

// scanRow returns the retained tiles of row i. Zone membership is tested on
// the tile corner, as is territory membership, and only before the
// decommission year.
func (g *Generator) scanRow(i, cols, year int) []tile {
	lat := g.bounds.MinLat + float64(i)*Step
	active := year < DecommissionYear

	var out []tile
	for j := 0; j < cols; j++ {
		corner := geo.Coordinate{Lat: lat, Lng: g.bounds.MinLng + float64(j)*Step}
		if !geo.Contains(corner, g.territory) {
			continue
		}
		t := tile{index: i*cols + j, corner: corner}
		if active {
			t.inMil = geo.ContainsAny(corner, g.militarized)
			t.inEvac = geo.ContainsAny(corner, g.evacuation)
		}
		out = append(out, t)
	}
	return out
}

func assign(tiles []tile, year, recovery int) []HazardProfile {
	cells := make([]HazardProfile, 0, len(tiles))
	for n, t := range tiles {
		cells = append(cells, profile(t, n, year, recovery))
	}
	return cells
}

// Hash is the per-cell variation seed: a smooth deterministic oscillator of
// the retained-cell counter and the year. It is not uniformly distributed.
func Hash(n, year int) float64 {
	return math.Abs(math.Sin(float64(n)*hashFrequency + float64(year)))
}

func profile(t tile, n, year, recovery int) HazardProfile {
	hash := Hash(n, year)
	branch, tox, contaminant, persistence := Classify(t.corner, t.inMil, t.inEvac, hash, recovery)

	return HazardProfile{
		ID:       fmt.Sprintf("gz-grid-%d-%d", n, year),
		SectorID: fmt.Sprintf("GZ-%d", n+1),
		Tile:     t.index,
		Center: geo.Coordinate{
			Lat: t.corner.Lat + Step/2,
			Lng: t.corner.Lng + Step/2,
		},
		Corner:               t.corner,
		Year:                 year,
		RecoveryFactor:       recovery,
		Branch:               branch,
		Toxicity:             tox,
		Contaminant:          contaminant,
		PersistenceMonths:    persistence,
		WaterSource:          WaterSourceFor(hash),
		HealthRisks:          HealthRisks(tox),
		RemediationCode:      RemediationCode,
		AffectedRadiusMeters: AffectedRadiusMeters,
	}
}

// Classify applies the branch rules in priority order: militarized,
// evacuation, northern band, then the coastal/inland default. Higher recovery
// never raises toxicity or persistence.
func Classify(corner geo.Coordinate, inMil, inEvac bool, hash float64, recovery int) (Branch, Toxicity, Contaminant, int) {
	switch {
	case inMil:
		tox := ToxicityCritical
		if recovery > 1 {
			tox = ToxicityHigh
		}
		return BranchMilitarized, tox, HeavyMetals, persistence(militarizedPersistence, recovery)

	case inEvac:
		tox := ToxicityHigh
		if recovery > 0 {
			tox = ToxicityMedium
		}
		return BranchEvacuation, tox, WhitePhosphorus, persistence(evacuationPersistence, recovery)

	case corner.Lat > NorthernBandLat:
		tox := ToxicityCritical
		if recovery > 2 {
			tox = ToxicityMedium
		}
		return BranchNorthern, tox, HeavyMetals, persistence(northernPersistence, recovery)
	}

	branch, threshold := BranchInland, 0.8
	if corner.Lng < CoastalLng {
		branch, threshold = BranchCoastal, 0.5
	}
	tox := ToxicityLow
	if hash > threshold {
		tox = ToxicityMedium
	}
	if recovery > 1 {
		tox = ToxicityLow
	}
	return branch, tox, NitrateOverload, persistence(defaultPersistence, recovery)
}

func persistence(base, recovery int) int {
	return max(0, base-recovery*monthsPerFactor)
}

// HealthRisks returns the disease labels associated with a toxicity level.
func HealthRisks(t Toxicity) []string {
	switch t {
	case ToxicityCritical:
		return []string{diseasePool[4], diseasePool[0]}
	case ToxicityHigh:
		return []string{diseasePool[2], diseasePool[3]}
	default:
		return []string{}
	}
}

// WaterSourceFor picks the inferred water source label for a hash in [0, 1].
func WaterSourceFor(hash float64) string {
	idx := int(math.Floor(hash * float64(len(waterSources))))
	idx = min(max(idx, 0), len(waterSources)-1)
	return waterSources[idx]
}
