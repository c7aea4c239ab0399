// pkg/tilegrid/grid.go - Bounding box to tile grid resolution
package tilegrid

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Range is an inclusive rectangle of tile indices.
type Range struct {
	MinCol int `json:"min_col"`
	MaxCol int `json:"max_col"`
	MinRow int `json:"min_row"`
	MaxRow int `json:"max_row"`
}

// Grid is the resolved tile covering of one bounding box at one zoom level.
// It is a pure value: enumeration is deterministic, row-major and can be
// restarted any number of times.
type Grid struct {
	Matrix *Matrix
	Zoom   int
	Range  Range
}

// Covering resolves the rectangle of tiles whose footprints intersect the
// projected bounding box. The covering is the full index rectangle, not
// clipped to the source polygon: downstream stages operate per tile anyway.
//
// Tile membership is half-open [min, max): a box whose max coordinate lies
// exactly on a tile boundary does not include the higher-index tile.
func (m *Matrix) Covering(bbox orb.Bound, zoom int) (*Grid, error) {
	span, err := m.TileSpan(zoom)
	if err != nil {
		return nil, err
	}

	if bbox.Max[0] <= bbox.Min[0] || bbox.Max[1] <= bbox.Min[1] {
		return nil, &DegenerateAreaError{Bound: bbox}
	}

	if !bbox.Intersects(m.Extent) {
		return nil, fmt.Errorf("bounding box (%f, %f, %f, %f) lies outside the tile matrix extent",
			bbox.Min[0], bbox.Min[1], bbox.Max[0], bbox.Max[1])
	}

	r := Range{
		MinCol: lowIndex((bbox.Min[0] - m.Origin[0]) / span),
		MaxCol: highIndex((bbox.Max[0] - m.Origin[0]) / span),
		// Rows grow southward: the box's north edge fixes the min row.
		MinRow: lowIndex((m.Origin[1] - bbox.Max[1]) / span),
		MaxRow: highIndex((m.Origin[1] - bbox.Min[1]) / span),
	}

	// A box reaching past the matrix extent is clamped to it, keeping all
	// indices non-negative.
	lastCol := highIndex((m.Extent.Max[0] - m.Origin[0]) / span)
	lastRow := highIndex((m.Origin[1] - m.Extent.Min[1]) / span)
	r.MinCol = max(r.MinCol, 0)
	r.MinRow = max(r.MinRow, 0)
	r.MaxCol = min(r.MaxCol, lastCol)
	r.MaxRow = min(r.MaxRow, lastRow)

	// A box that only touches the extent edge from outside clamps to an
	// empty index rectangle; that is not a covering.
	if r.MinCol > r.MaxCol || r.MinRow > r.MaxRow {
		return nil, fmt.Errorf("bounding box (%f, %f, %f, %f) covers no tiles inside the matrix extent",
			bbox.Min[0], bbox.Min[1], bbox.Max[0], bbox.Max[1])
	}

	return &Grid{Matrix: m, Zoom: zoom, Range: r}, nil
}

// lowIndex maps the low edge of an interval to a tile index. An edge exactly
// on a tile boundary belongs to that tile.
func lowIndex(u float64) int {
	return int(math.Floor(u))
}

// highIndex maps the high edge of an interval to a tile index. An edge
// exactly on a tile boundary belongs to the lower-index tile.
func highIndex(u float64) int {
	f := math.Floor(u)
	if f == u {
		return int(f) - 1
	}
	return int(f)
}

// Count returns the number of tiles in the grid.
func (g *Grid) Count() int {
	return (g.Range.MaxCol - g.Range.MinCol + 1) * (g.Range.MaxRow - g.Range.MinRow + 1)
}

// Addresses returns every tile address in row-major order (ascending row,
// then ascending column).
func (g *Grid) Addresses() []Address {
	addresses := make([]Address, 0, g.Count())
	for row := g.Range.MinRow; row <= g.Range.MaxRow; row++ {
		for col := g.Range.MinCol; col <= g.Range.MaxCol; col++ {
			addresses = append(addresses, Address{Col: col, Row: row, Zoom: g.Zoom})
		}
	}
	return addresses
}

// Each visits every tile address in row-major order, stopping at the first
// error. It can be called repeatedly; each call restarts from the first tile.
func (g *Grid) Each(fn func(Address) error) error {
	for row := g.Range.MinRow; row <= g.Range.MaxRow; row++ {
		for col := g.Range.MinCol; col <= g.Range.MaxCol; col++ {
			if err := fn(Address{Col: col, Row: row, Zoom: g.Zoom}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Bounds returns the projected footprint of one tile of the grid.
func (g *Grid) Bounds(a Address) (orb.Bound, error) {
	return g.Matrix.Bounds(a)
}
