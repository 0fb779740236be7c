// Package export writes grids and zone catalogs to GIS and spreadsheet
// formats.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/landscope/internal/geo"
	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/palette"
	"github.com/sells-group/landscope/internal/zone"
)

// ProgressFunc looks up remediation progress (0-100) by cell id.
type ProgressFunc func(cellID string) float64

func (f ProgressFunc) of(id string) float64 {
	if f == nil {
		return 0
	}
	return f(id)
}

// CellsGeoJSON builds a FeatureCollection of cell squares with hazard
// attributes and the display fill color.
func CellsGeoJSON(cells []grid.HazardProfile, progress ProgressFunc) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(cells))}
	for _, c := range cells {
		p := progress.of(c.ID)
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       c.ID,
			Geometry: c.Polygon().Geom(),
			Properties: map[string]any{
				"sector_id":          c.SectorID,
				"year":               c.Year,
				"branch":             string(c.Branch),
				"toxicity":           c.Toxicity.String(),
				"contaminant":        string(c.Contaminant),
				"persistence_months": c.PersistenceMonths,
				"water_source":       c.WaterSource,
				"health_risks":       c.HealthRisks,
				"remediation_code":   c.RemediationCode,
				"affected_radius_m":  c.AffectedRadiusMeters,
				"progress":           p,
				"fill":               palette.CellFill(c.Toxicity, p),
			},
		})
	}
	return fc
}

// ZonesGeoJSON builds a FeatureCollection of the registry's hazard polygons,
// corridors and point assets, each tagged with its kind and style.
func ZonesGeoJSON(reg *zone.Registry) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	props := func(k zone.Kind, name string) map[string]any {
		s := reg.Style(k)
		return map[string]any{
			"kind":  string(k),
			"name":  name,
			"label": s.Label,
			"color": s.Color,
		}
	}

	for _, zs := range [][]zone.Zone{reg.Militarized(), reg.Evacuation()} {
		for _, z := range zs {
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:         z.ID,
				Geometry:   z.Polygon.Geom(),
				Properties: props(z.Kind, z.Name),
			})
		}
	}
	for _, c := range reg.Corridors() {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geo.LineString(c.Path),
			Properties: props(zone.KindCorridor, c.Name),
		})
	}
	for _, assets := range [][]zone.PointAsset{reg.DistributionHubs(), reg.WaterSources()} {
		for _, a := range assets {
			p := props(a.Kind, a.Name)
			if a.WaterType != "" {
				p["water_type"] = string(a.WaterType)
			}
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry:   a.Location.Geom(),
				Properties: p,
			})
		}
	}
	return fc
}

// WriteGeoJSON encodes fc to w.
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}
