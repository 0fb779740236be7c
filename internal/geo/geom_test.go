package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonGeom_RoundTrip(t *testing.T) {
	g := unitSquare.Geom()
	require.NotNil(t, g)
	assert.Equal(t, SRID, g.SRID())
	assert.Equal(t, 1, g.NumLinearRings())
	assert.Equal(t, 5, g.LinearRing(0).NumCoords(), "ring is closed")

	back := FromGeom(g)
	assert.Equal(t, unitSquare, back)
}

func TestCoordinateGeom_AxisOrder(t *testing.T) {
	p := Coordinate{Lat: 31.5, Lng: 34.4}.Geom()
	assert.InDelta(t, 34.4, p.X(), 1e-12)
	assert.InDelta(t, 31.5, p.Y(), 1e-12)
}

func TestLineString(t *testing.T) {
	ls := LineString([]Coordinate{{31.45, 34.34}, {31.45, 34.52}})
	assert.Equal(t, 2, ls.NumCoords())
	assert.InDelta(t, 34.52, ls.Coord(1).X(), 1e-12)
}

func TestFromGeom_Nil(t *testing.T) {
	assert.Nil(t, FromGeom(nil))
}
