package geo

// BBox is a latitude/longitude bounding box.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Contains reports whether pt lies strictly inside the box.
func (b BBox) Contains(pt Coordinate) bool {
	return pt.Lat > b.MinLat && pt.Lat < b.MaxLat &&
		pt.Lng > b.MinLng && pt.Lng < b.MaxLng
}

// Empty reports whether the box has no area.
func (b BBox) Empty() bool {
	return b.MaxLat <= b.MinLat || b.MaxLng <= b.MinLng
}
