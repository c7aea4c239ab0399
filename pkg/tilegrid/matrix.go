// pkg/tilegrid/matrix.go - EPSG:2056 WMTS tile matrix definition
package tilegrid

import (
	"fmt"

	"github.com/paulmach/orb"
)

// ZoomLevelError indicates a zoom level outside the tile matrix set.
type ZoomLevelError struct {
	Zoom int
}

func (e *ZoomLevelError) Error() string {
	return fmt.Sprintf("zoom level %d is not defined by the tile matrix set", e.Zoom)
}

// DegenerateAreaError indicates a bounding box with zero width or height.
// A collapsed area is rejected rather than resolved to a single tile.
type DegenerateAreaError struct {
	Bound orb.Bound
}

func (e *DegenerateAreaError) Error() string {
	return fmt.Sprintf("bounding box (%f, %f, %f, %f) has zero extent",
		e.Bound.Min[0], e.Bound.Min[1], e.Bound.Max[0], e.Bound.Max[1])
}

// Address identifies one tile of the matrix at a zoom level. Rows grow
// southward from the matrix origin, columns eastward.
type Address struct {
	Col  int `json:"col"`
	Row  int `json:"row"`
	Zoom int `json:"zoom"`
}

// String returns the zoom/col/row form used in WMTS resource paths.
func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Zoom, a.Col, a.Row)
}

// Name returns the col_row form used for output file naming.
func (a Address) Name() string {
	return fmt.Sprintf("%d_%d", a.Col, a.Row)
}

// Matrix describes a fixed square tile matrix in a projected CRS with the
// origin at the top-left (north-west) corner, as published by OGC TMS.
type Matrix struct {
	TileSize    int
	Origin      orb.Point // top-left corner, (min easting, max northing)
	Extent      orb.Bound
	Resolutions map[int]float64 // zoom -> meters per pixel
}

// Swisstopo returns the swisstopo WMTS tile matrix set for EPSG:2056.
// Origin and resolutions follow the published TileMatrixSet definition.
func Swisstopo() *Matrix {
	return &Matrix{
		TileSize: 256,
		Origin:   orb.Point{2420000, 1350000},
		Extent: orb.Bound{
			Min: orb.Point{2420000, 1030000},
			Max: orb.Point{2900000, 1350000},
		},
		Resolutions: map[int]float64{
			0: 4000, 1: 3750, 2: 3500, 3: 3250, 4: 3000, 5: 2750,
			6: 2500, 7: 2250, 8: 2000, 9: 1750, 10: 1500, 11: 1250,
			12: 1000, 13: 750, 14: 650, 15: 500, 16: 250, 17: 100,
			18: 50, 19: 20, 20: 10, 21: 5, 22: 2.5, 23: 2, 24: 1.5,
			25: 1, 26: 0.5, 27: 0.25, 28: 0.1,
		},
	}
}

// Resolution returns the ground resolution in meters per pixel at a zoom.
func (m *Matrix) Resolution(zoom int) (float64, error) {
	res, ok := m.Resolutions[zoom]
	if !ok {
		return 0, &ZoomLevelError{Zoom: zoom}
	}
	return res, nil
}

// TileSpan returns the ground footprint width of one tile in meters.
func (m *Matrix) TileSpan(zoom int) (float64, error) {
	res, err := m.Resolution(zoom)
	if err != nil {
		return 0, err
	}
	return float64(m.TileSize) * res, nil
}

// Bounds returns the projected footprint of a tile. Shared edges between
// adjacent tiles are computed identically, so the grid has no gaps.
func (m *Matrix) Bounds(a Address) (orb.Bound, error) {
	span, err := m.TileSpan(a.Zoom)
	if err != nil {
		return orb.Bound{}, err
	}

	return orb.Bound{
		Min: orb.Point{
			m.Origin[0] + float64(a.Col)*span,
			m.Origin[1] - float64(a.Row+1)*span,
		},
		Max: orb.Point{
			m.Origin[0] + float64(a.Col+1)*span,
			m.Origin[1] - float64(a.Row)*span,
		},
	}, nil
}

// AddressAt returns the tile containing a projected point. Membership is
// half-open on both axes: a point on a tile's east or south edge belongs to
// the neighboring tile.
func (m *Matrix) AddressAt(p orb.Point, zoom int) (Address, error) {
	span, err := m.TileSpan(zoom)
	if err != nil {
		return Address{}, err
	}

	return Address{
		Col:  floorIndex((p[0] - m.Origin[0]) / span),
		Row:  floorIndex((m.Origin[1] - p[1]) / span),
		Zoom: zoom,
	}, nil
}

func floorIndex(u float64) int {
	i := int(u)
	if u < 0 && float64(i) != u {
		i--
	}
	return i
}
