package zone

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/landscope/internal/geo"
)

func TestDefault_LoadsEmbeddedScenario(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "gaza-recovery", reg.Name())
	assert.Equal(t, 3, reg.Version())
	assert.Len(t, reg.Territory(), 22)
	assert.Len(t, reg.Militarized(), 2)
	assert.Len(t, reg.Evacuation(), 2)
	assert.Len(t, reg.Corridors(), 3)
	assert.Len(t, reg.DistributionHubs(), 5)
	assert.Len(t, reg.WaterSources(), 5)

	assert.Equal(t, geo.BBox{MinLat: 31.18, MinLng: 34.18, MaxLat: 31.65, MaxLng: 34.65}, reg.Bounds())
	assert.Equal(t, geo.BBox{MinLat: 31.1, MinLng: 34.1, MaxLat: 31.7, MaxLng: 34.7}, reg.Scope())
	assert.Equal(t, geo.Coordinate{Lat: 31.40, Lng: 34.38}, reg.Center())
}

func TestRestricted_DerivedFromMilitarized(t *testing.T) {
	reg := MustDefault()

	restricted := reg.Restricted()
	mil := reg.Militarized()
	require.Len(t, restricted, len(mil))

	for i, rz := range restricted {
		assert.Equal(t, "restricted-"+string(rune('0'+i)), rz.ID)
		assert.Equal(t, SeverityExtreme, rz.Severity)
		assert.Equal(t, mil[i].Polygon, rz.Polygon)
	}
	assert.Equal(t, "Restricted Area 1", restricted[0].Name)
	assert.Equal(t, "Restricted Area 2", restricted[1].Name)
}

func TestAccessors_ReturnCopies(t *testing.T) {
	reg := MustDefault()

	terr := reg.Territory()
	terr[0] = geo.Coordinate{}
	assert.NotEqual(t, geo.Coordinate{}, reg.Territory()[0])

	mil := reg.Militarized()
	mil[0].Polygon[0] = geo.Coordinate{}
	assert.NotEqual(t, geo.Coordinate{}, reg.Militarized()[0].Polygon[0])

	rz := reg.Restricted()
	rz[0].Polygon[0] = geo.Coordinate{}
	assert.NotEqual(t, geo.Coordinate{}, reg.Restricted()[0].Polygon[0])

	cor := reg.Corridors()
	cor[0].Path[0] = geo.Coordinate{}
	assert.NotEqual(t, geo.Coordinate{}, reg.Corridors()[0].Path[0])
}

func TestWaterSources_Types(t *testing.T) {
	reg := MustDefault()
	types := map[WaterType]int{}
	for _, w := range reg.WaterSources() {
		assert.Equal(t, KindWaterSource, w.Kind)
		types[w.WaterType]++
	}
	assert.Equal(t, 2, types[WaterWell])
	assert.Equal(t, 1, types[WaterDesal])
	assert.Equal(t, 1, types[WaterStation])
	assert.Equal(t, 1, types[WaterReservoir])
}

func TestZonesContaining(t *testing.T) {
	reg := MustDefault()

	// Inside the northern militarized polygon.
	zones := reg.ZonesContaining(geo.Coordinate{Lat: 31.56, Lng: 34.53})
	require.NotEmpty(t, zones)
	assert.Equal(t, KindMilitarized, zones[0].Kind)
	assert.Equal(t, "militarized-0", zones[0].ID)

	// Inside the central evacuation polygon.
	zones = reg.ZonesContaining(geo.Coordinate{Lat: 31.37, Lng: 34.39})
	require.Len(t, zones, 1)
	assert.Equal(t, KindEvacuation, zones[0].Kind)

	assert.Empty(t, reg.ZonesContaining(geo.Coordinate{Lat: 31.30, Lng: 34.28}))
}

func TestStyle(t *testing.T) {
	reg := MustDefault()
	s := reg.Style(KindMilitarized)
	assert.Equal(t, "#dc2626", s.Color)
	assert.Equal(t, "Militarized Zone", s.Label)
	assert.InDelta(t, 1.5, s.Weight, 1e-9)

	assert.Equal(t, "Water Sources", reg.Style(KindWaterSource).Label)
}

func TestKind_DisplayName(t *testing.T) {
	assert.Equal(t, "Distribution Hub", KindDistributionHub.DisplayName())
	assert.Equal(t, "Militarized", KindMilitarized.DisplayName())
	assert.Equal(t, "Water Source", KindWaterSource.DisplayName())
	assert.True(t, KindCorridor.Valid())
	assert.False(t, Kind("LAGOON").Valid())
}

func TestLoad_Errors(t *testing.T) {
	base := `
territory: [[0, 0], [0, 2], [2, 2], [2, 0]]
grid_bounds: {min_lat: 0, max_lat: 2, min_lng: 0, max_lng: 2}
insight_scope: {min_lat: -1, max_lat: 3, min_lng: -1, max_lng: 3}
`
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			doc:     "territory: [[0, 0",
			wantErr: "parse scenario",
		},
		{
			name:    "territory too small",
			doc:     "territory: [[0, 0], [1, 1]]\n",
			wantErr: "at least 3 vertices",
		},
		{
			name:    "bad coordinate arity",
			doc:     "territory: [[0, 0, 0], [1, 1], [2, 2]]\n",
			wantErr: "coordinate needs",
		},
		{
			name:    "empty grid bounds",
			doc:     "territory: [[0, 0], [0, 2], [2, 2]]\n",
			wantErr: "grid_bounds",
		},
		{
			name:    "bad militarized polygon",
			doc:     base + "militarized: [[[0, 0], [1, 1]]]\n",
			wantErr: "militarized polygon 0",
		},
		{
			name:    "short corridor",
			doc:     base + "corridors: [{name: Stub, path: [[0, 0]]}]\n",
			wantErr: "needs at least 2 points",
		},
		{
			name:    "unknown water type",
			doc:     base + "water_sources: [{name: Pond, location: [1, 1], type: POND}]\n",
			wantErr: "unknown type",
		},
		{
			name:    "unknown style kind",
			doc:     base + "styles: {LAGOON: {color: \"#000000\"}}\n",
			wantErr: "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Minimal(t *testing.T) {
	doc := `
name: test
territory: [[0, 0], [0, 2], [2, 2], [2, 0]]
grid_bounds: {min_lat: 0, max_lat: 2, min_lng: 0, max_lng: 2}
insight_scope: {min_lat: -1, max_lat: 3, min_lng: -1, max_lng: 3}
militarized: [[[0, 0], [0, 1], [1, 1], [1, 0]]]
`
	reg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "test", reg.Name())
	assert.Len(t, reg.Restricted(), 1)
	assert.Empty(t, reg.Evacuation())
	assert.Equal(t, "Militarized", reg.Style(KindMilitarized).Label, "unstyled kinds fall back to display name")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open scenario")
}
