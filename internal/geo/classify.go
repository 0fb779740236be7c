// Package geo provides planar point and polygon operations on plain latitude/longitude degrees.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// Coordinate is a latitude/longitude pair in decimal degrees. No datum or
// projection is implied: coordinates are compared numerically.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polygon is a ring of coordinates. The ring is implicitly closed; the last
// vertex may but need not repeat the first.
type Polygon []Coordinate

// Contains reports whether pt lies inside poly using the even-odd ray casting
// rule. Latitude plays the role of x and longitude the role of y. Points that
// sit exactly on an edge or vertex get whatever answer the crossing test gives.
//
// A horizontal-in-longitude edge never straddles the test longitude, so the
// interpolation divisor is non-zero whenever it is evaluated.
func Contains(pt Coordinate, poly Polygon) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := poly[i].Lat, poly[i].Lng
		xj, yj := poly[j].Lat, poly[j].Lng

		if (yi > pt.Lng) != (yj > pt.Lng) &&
			pt.Lat < (xj-xi)*(pt.Lng-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// ContainsAny reports whether pt lies inside at least one of polys.
func ContainsAny(pt Coordinate, polys []Polygon) bool {
	for _, p := range polys {
		if Contains(pt, p) {
			return true
		}
	}
	return false
}

// Validate checks the preconditions Contains relies on: at least three
// vertices and finite coordinates.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return eris.Errorf("geo: polygon needs at least 3 vertices, got %d", len(p))
	}
	for i, c := range p {
		if !finite(c.Lat) || !finite(c.Lng) {
			return eris.Errorf("geo: vertex %d is not finite", i)
		}
	}
	return nil
}

// Closed returns the ring with the first vertex repeated at the end, unless it
// already is.
func (p Polygon) Closed() Polygon {
	if len(p) == 0 {
		return nil
	}
	out := make(Polygon, len(p), len(p)+1)
	copy(out, p)
	if p[0] != p[len(p)-1] {
		out = append(out, p[0])
	}
	return out
}

// Square returns the axis-aligned square of side size centred on c, listed
// counter-clockwise from the south-west corner.
func Square(c Coordinate, size float64) Polygon {
	h := size / 2
	return Polygon{
		{Lat: c.Lat - h, Lng: c.Lng - h},
		{Lat: c.Lat - h, Lng: c.Lng + h},
		{Lat: c.Lat + h, Lng: c.Lng + h},
		{Lat: c.Lat + h, Lng: c.Lng - h},
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
