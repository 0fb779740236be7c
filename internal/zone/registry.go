package zone

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/landscope/internal/geo"
)

//go:embed scenario.yaml
var defaultScenario []byte

// Registry is the read-only zone catalog. Build one with Load, LoadFile or
// Default and share it; no method mutates it and accessors hand out copies.
type Registry struct {
	name      string
	version   int
	center    geo.Coordinate
	territory geo.Polygon
	bounds    geo.BBox
	scope     geo.BBox

	militarized []Zone
	evacuation  []Zone
	corridors   []Corridor
	hubs        []PointAsset
	water       []PointAsset
	restricted  []RestrictedZone
	styles      map[Kind]Style
}

type rawBBox struct {
	MinLat float64 `yaml:"min_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLat float64 `yaml:"max_lat"`
	MaxLng float64 `yaml:"max_lng"`
}

type rawCorridor struct {
	Name string      `yaml:"name"`
	Path [][]float64 `yaml:"path"`
}

type rawAsset struct {
	Name     string    `yaml:"name"`
	Location []float64 `yaml:"location"`
	Type     string    `yaml:"type"`
}

type rawScenario struct {
	Name             string           `yaml:"name"`
	Version          int              `yaml:"version"`
	Center           []float64        `yaml:"center"`
	Territory        [][]float64      `yaml:"territory"`
	GridBounds       rawBBox          `yaml:"grid_bounds"`
	InsightScope     rawBBox          `yaml:"insight_scope"`
	Militarized      [][][]float64    `yaml:"militarized"`
	Evacuation       [][][]float64    `yaml:"evacuation"`
	Corridors        []rawCorridor    `yaml:"corridors"`
	DistributionHubs []rawAsset       `yaml:"distribution_hubs"`
	WaterSources     []rawAsset       `yaml:"water_sources"`
	Styles           map[string]Style `yaml:"styles"`
}

// Default returns the registry built from the embedded scenario.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultScenario))
}

// MustDefault is Default for callers that treat a broken embedded dataset as
// a programming error.
func MustDefault() *Registry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}

// LoadFile reads a scenario document from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zone: open scenario %s", path)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load parses and validates a YAML scenario document.
func Load(r io.Reader) (*Registry, error) {
	var raw rawScenario
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "zone: parse scenario")
	}
	return build(raw)
}

func build(raw rawScenario) (*Registry, error) {
	reg := &Registry{
		name:    raw.Name,
		version: raw.Version,
		bounds:  geo.BBox(raw.GridBounds),
		scope:   geo.BBox(raw.InsightScope),
		styles:  make(map[Kind]Style, len(raw.Styles)),
	}

	var err error
	if len(raw.Center) > 0 {
		if reg.center, err = toCoordinate(raw.Center); err != nil {
			return nil, eris.Wrap(err, "zone: center")
		}
	}

	if reg.territory, err = toPolygon(raw.Territory); err != nil {
		return nil, eris.Wrap(err, "zone: territory")
	}
	if reg.bounds.Empty() {
		return nil, eris.New("zone: grid_bounds must have positive extent")
	}
	if reg.scope.Empty() {
		return nil, eris.New("zone: insight_scope must have positive extent")
	}

	if reg.militarized, err = toZones(raw.Militarized, KindMilitarized); err != nil {
		return nil, err
	}
	if reg.evacuation, err = toZones(raw.Evacuation, KindEvacuation); err != nil {
		return nil, err
	}

	for i, c := range raw.Corridors {
		path, err := toPath(c.Path)
		if err != nil {
			return nil, eris.Wrapf(err, "zone: corridor %d", i)
		}
		if len(path) < 2 {
			return nil, eris.Errorf("zone: corridor %q needs at least 2 points", c.Name)
		}
		reg.corridors = append(reg.corridors, Corridor{Name: c.Name, Path: path})
	}

	for i, a := range raw.DistributionHubs {
		loc, err := toCoordinate(a.Location)
		if err != nil {
			return nil, eris.Wrapf(err, "zone: distribution hub %d", i)
		}
		reg.hubs = append(reg.hubs, PointAsset{Name: a.Name, Kind: KindDistributionHub, Location: loc})
	}

	for i, a := range raw.WaterSources {
		loc, err := toCoordinate(a.Location)
		if err != nil {
			return nil, eris.Wrapf(err, "zone: water source %d", i)
		}
		wt := WaterType(a.Type)
		if !wt.valid() {
			return nil, eris.Errorf("zone: water source %q has unknown type %q", a.Name, a.Type)
		}
		reg.water = append(reg.water, PointAsset{Name: a.Name, Kind: KindWaterSource, Location: loc, WaterType: wt})
	}

	for key, style := range raw.Styles {
		k := Kind(key)
		if !k.Valid() {
			return nil, eris.Errorf("zone: style for unknown kind %q", key)
		}
		reg.styles[k] = style
	}

	for i, z := range reg.militarized {
		reg.restricted = append(reg.restricted, RestrictedZone{
			ID:       fmt.Sprintf("restricted-%d", i),
			Name:     fmt.Sprintf("Restricted Area %d", i+1),
			Severity: SeverityExtreme,
			Polygon:  z.Polygon,
		})
	}

	return reg, nil
}

func toCoordinate(pair []float64) (geo.Coordinate, error) {
	if len(pair) != 2 {
		return geo.Coordinate{}, eris.Errorf("coordinate needs [lat, lng], got %d values", len(pair))
	}
	return geo.Coordinate{Lat: pair[0], Lng: pair[1]}, nil
}

func toPath(pairs [][]float64) ([]geo.Coordinate, error) {
	out := make([]geo.Coordinate, 0, len(pairs))
	for i, p := range pairs {
		c, err := toCoordinate(p)
		if err != nil {
			return nil, eris.Wrapf(err, "point %d", i)
		}
		out = append(out, c)
	}
	return out, nil
}

func toPolygon(pairs [][]float64) (geo.Polygon, error) {
	path, err := toPath(pairs)
	if err != nil {
		return nil, err
	}
	poly := geo.Polygon(path)
	if err := poly.Validate(); err != nil {
		return nil, err
	}
	return poly, nil
}

func toZones(rings [][][]float64, kind Kind) ([]Zone, error) {
	prefix := strings.ToLower(string(kind))
	zones := make([]Zone, 0, len(rings))
	for i, ring := range rings {
		poly, err := toPolygon(ring)
		if err != nil {
			return nil, eris.Wrapf(err, "zone: %s polygon %d", prefix, i)
		}
		zones = append(zones, Zone{
			ID:      fmt.Sprintf("%s-%d", prefix, i),
			Name:    fmt.Sprintf("%s %d", kind.DisplayName(), i+1),
			Kind:    kind,
			Polygon: poly,
		})
	}
	return zones, nil
}

// Name returns the scenario name.
func (r *Registry) Name() string { return r.name }

// Version returns the scenario version.
func (r *Registry) Version() int { return r.version }

// Center returns the nominal map center.
func (r *Registry) Center() geo.Coordinate { return r.center }

// Territory returns a copy of the territory boundary polygon.
func (r *Registry) Territory() geo.Polygon { return clonePolygon(r.territory) }

// Bounds returns the bounding box tiled by the grid generator.
func (r *Registry) Bounds() geo.BBox { return r.bounds }

// Scope returns the box within which free coordinates are eligible for insight.
func (r *Registry) Scope() geo.BBox { return r.scope }

// Militarized returns copies of the militarized zones.
func (r *Registry) Militarized() []Zone { return cloneZones(r.militarized) }

// Evacuation returns copies of the evacuation zones.
func (r *Registry) Evacuation() []Zone { return cloneZones(r.evacuation) }

// Corridors returns copies of the corridor polylines.
func (r *Registry) Corridors() []Corridor {
	out := make([]Corridor, len(r.corridors))
	for i, c := range r.corridors {
		out[i] = Corridor{Name: c.Name, Path: append([]geo.Coordinate(nil), c.Path...)}
	}
	return out
}

// DistributionHubs returns the distribution hub assets.
func (r *Registry) DistributionHubs() []PointAsset { return append([]PointAsset(nil), r.hubs...) }

// WaterSources returns the water source assets.
func (r *Registry) WaterSources() []PointAsset { return append([]PointAsset(nil), r.water...) }

// Restricted returns the zones used for access-control decisions.
func (r *Registry) Restricted() []RestrictedZone {
	out := make([]RestrictedZone, len(r.restricted))
	for i, z := range r.restricted {
		out[i] = z
		out[i].Polygon = clonePolygon(z.Polygon)
	}
	return out
}

// Style returns the display style for kind. Kinds without a configured style
// get a label derived from the kind name.
func (r *Registry) Style(k Kind) Style {
	if s, ok := r.styles[k]; ok {
		return s
	}
	return Style{Label: k.DisplayName()}
}

// ZonesContaining returns the militarized and evacuation zones containing pt.
func (r *Registry) ZonesContaining(pt geo.Coordinate) []Zone {
	var out []Zone
	for _, set := range [][]Zone{r.militarized, r.evacuation} {
		for _, z := range set {
			if geo.Contains(pt, z.Polygon) {
				out = append(out, z)
			}
		}
	}
	return out
}

// Polygons extracts the geometry of zones.
func Polygons(zones []Zone) []geo.Polygon {
	out := make([]geo.Polygon, len(zones))
	for i, z := range zones {
		out[i] = z.Polygon
	}
	return out
}

func clonePolygon(p geo.Polygon) geo.Polygon {
	return append(geo.Polygon(nil), p...)
}

func cloneZones(zones []Zone) []Zone {
	out := make([]Zone, len(zones))
	for i, z := range zones {
		out[i] = z
		out[i].Polygon = clonePolygon(z.Polygon)
	}
	return out
}
