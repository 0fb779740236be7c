package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/zone"
)

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		ID       string `json:"id"`
		Geometry struct {
			Type        string `json:"type"`
			Coordinates any    `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

func sampleCells() []grid.HazardProfile {
	return []grid.HazardProfile{
		{
			ID:                   "gz-grid-0-2026",
			SectorID:             "GZ-1",
			Year:                 2026,
			Center:               geo.Coordinate{Lat: 31.19875, Lng: 34.24375},
			Branch:               grid.BranchCoastal,
			Toxicity:             grid.ToxicityLow,
			Contaminant:          grid.NitrateOverload,
			PersistenceMonths:    12,
			WaterSource:          "Solar Desalination",
			HealthRisks:          []string{},
			RemediationCode:      grid.RemediationCode,
			AffectedRadiusMeters: grid.AffectedRadiusMeters,
		},
		{
			ID:                   "gz-grid-1-2026",
			SectorID:             "GZ-2",
			Year:                 2026,
			Center:               geo.Coordinate{Lat: 31.55, Lng: 34.53},
			Branch:               grid.BranchMilitarized,
			Toxicity:             grid.ToxicityCritical,
			Contaminant:          grid.HeavyMetals,
			PersistenceMonths:    84,
			WaterSource:          "Municipal Well",
			HealthRisks:          []string{"Heavy Metal Poisoning", "Typhoid"},
			RemediationCode:      grid.RemediationCode,
			AffectedRadiusMeters: grid.AffectedRadiusMeters,
		},
	}
}

func progressOf(m map[string]float64) ProgressFunc {
	return func(id string) float64 { return m[id] }
}

func decodeFC(t *testing.T, data []byte) featureCollection {
	t.Helper()
	var fc featureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	return fc
}

func TestCellsGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	fc := CellsGeoJSON(sampleCells(), progressOf(map[string]float64{"gz-grid-1-2026": 100}))
	require.NoError(t, WriteGeoJSON(&buf, fc))

	out := decodeFC(t, buf.Bytes())
	assert.Equal(t, "FeatureCollection", out.Type)
	require.Len(t, out.Features, 2)

	first := out.Features[0]
	assert.Equal(t, "gz-grid-0-2026", first.ID)
	assert.Equal(t, "Polygon", first.Geometry.Type)
	assert.Equal(t, "LOW", first.Properties["toxicity"])
	assert.Equal(t, "#10b981", first.Properties["fill"])
	assert.InDelta(t, 12, first.Properties["persistence_months"], 1e-9)

	second := out.Features[1]
	assert.Equal(t, "CRITICAL", second.Properties["toxicity"])
	assert.Equal(t, "#10b981", second.Properties["fill"], "fully remediated cells take the progress color")
	assert.InDelta(t, 100, second.Properties["progress"], 1e-9)

	rings := first.Geometry.Coordinates.([]any)
	ring := rings[0].([]any)
	require.Len(t, ring, 5, "closed ring")
	sw := ring[0].([]any)
	assert.InDelta(t, 34.24, sw[0], 1e-9, "x is longitude")
	assert.InDelta(t, 31.195, sw[1], 1e-9)
}

func TestCellsGeoJSON_NilProgress(t *testing.T) {
	fc := CellsGeoJSON(sampleCells(), nil)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "#ef4444", fc.Features[1].Properties["fill"])
}

func TestZonesGeoJSON(t *testing.T) {
	reg := zone.MustDefault()
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, ZonesGeoJSON(reg)))

	out := decodeFC(t, buf.Bytes())
	want := len(reg.Militarized()) + len(reg.Evacuation()) + len(reg.Corridors()) +
		len(reg.DistributionHubs()) + len(reg.WaterSources())
	require.Len(t, out.Features, want)

	kinds := map[string]int{}
	geomTypes := map[string]string{}
	for _, f := range out.Features {
		kind := f.Properties["kind"].(string)
		kinds[kind]++
		geomTypes[kind] = f.Geometry.Type
		if kind == string(zone.KindWaterSource) {
			assert.NotEmpty(t, f.Properties["water_type"])
		}
	}
	assert.Equal(t, len(reg.Militarized()), kinds[string(zone.KindMilitarized)])
	assert.Equal(t, "Polygon", geomTypes[string(zone.KindMilitarized)])
	assert.Equal(t, "LineString", geomTypes[string(zone.KindCorridor)])
	assert.Equal(t, "Point", geomTypes[string(zone.KindDistributionHub)])
}

func TestWriteShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.shp")
	cells := sampleCells()
	require.NoError(t, WriteShapefile(path, cells, progressOf(map[string]float64{"gz-grid-0-2026": 40})))

	_, err := os.Stat(strings.TrimSuffix(path, ".shp") + ".prj")
	require.NoError(t, err)

	r, err := shp.Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	fields := r.Fields()
	require.Len(t, fields, len(shpFields))

	var n int
	for r.Next() {
		_, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		require.True(t, ok)
		assert.Len(t, poly.Points, 5)

		id := strings.TrimSpace(strings.TrimRight(r.Attribute(0), "\x00"))
		assert.Equal(t, cells[n].ID, id)
		tox := strings.TrimSpace(strings.TrimRight(r.Attribute(4), "\x00"))
		assert.Equal(t, cells[n].Toxicity.String(), tox)
		if n == 0 {
			p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimRight(r.Attribute(9), "\x00")), 64)
			require.NoError(t, err)
			assert.InDelta(t, 40, p, 1e-9)
		}
		n++
	}
	assert.Equal(t, len(cells), n)
}

func TestWriteShapefile_SiblingNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteShapefile(filepath.Join(dir, "cells.shp"), sampleCells(), nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"cells.dbf", "cells.prj", "cells.shp", "cells.shx"}, names)
}

func TestFixDBFName(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "zones")

	// Nothing to move.
	require.NoError(t, fixDBFName(base))

	require.NoError(t, os.WriteFile(base+"dbf", []byte("x"), 0o644))
	require.NoError(t, fixDBFName(base))
	_, err := os.Stat(base + ".dbf")
	require.NoError(t, err)
	_, err = os.Stat(base + "dbf")
	assert.True(t, os.IsNotExist(err))
}

func TestCellShape_Clockwise(t *testing.T) {
	poly := cellShape(sampleCells()[0])
	pts := poly.Points
	require.Len(t, pts, 5)
	assert.Equal(t, pts[0], pts[4])

	// Shoelace: negative area means clockwise.
	var area float64
	for i := 0; i < len(pts)-1; i++ {
		area += pts[i].X*pts[i+1].Y - pts[i+1].X*pts[i].Y
	}
	assert.Negative(t, area)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	cells := sampleCells()
	require.NoError(t, WriteXLSX(&buf, cells, progressOf(map[string]float64{"gz-grid-1-2026": 60})))

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sectors, ok := f.Sheet["Sectors"]
	require.True(t, ok)
	require.Len(t, sectors.Rows, len(cells)+1)
	assert.Equal(t, "Cell ID", sectors.Rows[0].Cells[0].String())
	assert.Equal(t, "gz-grid-1-2026", sectors.Rows[2].Cells[0].String())
	assert.Equal(t, "CRITICAL", sectors.Rows[2].Cells[6].String())
	assert.Equal(t, "Heavy Metal Poisoning, Typhoid", sectors.Rows[2].Cells[10].String())
	progress, err := sectors.Rows[2].Cells[11].Float()
	require.NoError(t, err)
	assert.InDelta(t, 60, progress, 1e-9)

	summary, ok := f.Sheet["Summary"]
	require.True(t, ok)
	assert.Equal(t, "Cells", summary.Rows[1].Cells[0].String())
	count, err := summary.Rows[1].Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 2, count, 1e-9)
}
