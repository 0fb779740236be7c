package geo

import (
	"github.com/twpayne/go-geom"
)

// SRID is the spatial reference identifier attached to exported geometries.
const SRID = 4326

// Geom converts the coordinate to a go-geom point (x=lng, y=lat).
func (c Coordinate) Geom() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat}).SetSRID(SRID)
}

// Geom converts the polygon to a go-geom polygon with a single closed ring.
func (p Polygon) Geom() *geom.Polygon {
	flat := flatCoords(p.Closed())
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}).SetSRID(SRID)
}

// LineString converts an open path to a go-geom line string.
func LineString(path []Coordinate) *geom.LineString {
	return geom.NewLineStringFlat(geom.XY, flatCoords(path)).SetSRID(SRID)
}

// FromGeom converts the exterior ring of a go-geom polygon back to a Polygon.
// The closing vertex is dropped.
func FromGeom(g *geom.Polygon) Polygon {
	if g == nil || g.NumLinearRings() == 0 {
		return nil
	}
	ring := g.LinearRing(0).Coords()
	if n := len(ring); n > 1 && ring[0].Equal(geom.XY, ring[n-1]) {
		ring = ring[:n-1]
	}
	out := make(Polygon, 0, len(ring))
	for _, c := range ring {
		out = append(out, Coordinate{Lat: c.Y(), Lng: c.X()})
	}
	return out
}

func flatCoords(coords []Coordinate) []float64 {
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		flat = append(flat, c.Lng, c.Lat)
	}
	return flat
}
