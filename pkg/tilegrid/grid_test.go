// pkg/tilegrid/grid_test.go - Unit tests for grid resolution
package tilegrid

import (
	"errors"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
)

// span of one tile at zoom 26: 256 px * 0.5 m/px = 128 m
const span26 = 128.0

func alignedBound(minCol, minRow, cols, rows int) orb.Bound {
	m := Swisstopo()
	return orb.Bound{
		Min: orb.Point{
			m.Origin[0] + float64(minCol)*span26,
			m.Origin[1] - float64(minRow+rows)*span26,
		},
		Max: orb.Point{
			m.Origin[0] + float64(minCol+cols)*span26,
			m.Origin[1] - float64(minRow)*span26,
		},
	}
}

func TestCoveringAlignedSquare(t *testing.T) {
	m := Swisstopo()

	// A box exactly 2x2 tiles, corners on tile boundaries.
	grid, err := m.Covering(alignedBound(1000, 500, 2, 2), 26)
	if err != nil {
		t.Fatalf("Covering() unexpected error: %v", err)
	}

	want := Range{MinCol: 1000, MaxCol: 1001, MinRow: 500, MaxRow: 501}
	if grid.Range != want {
		t.Fatalf("expected range %+v, got %+v", want, grid.Range)
	}
	if grid.Count() != 4 {
		t.Errorf("expected 4 tiles, got %d", grid.Count())
	}

	addresses := grid.Addresses()
	expected := []Address{
		{1000, 500, 26}, {1001, 500, 26},
		{1000, 501, 26}, {1001, 501, 26},
	}
	for i, a := range expected {
		if addresses[i] != a {
			t.Errorf("address %d: expected %v, got %v", i, a, addresses[i])
		}
	}
}

func TestCoveringHalfOpenBoundary(t *testing.T) {
	m := Swisstopo()

	// Exactly one tile wide: the max edge on a boundary must not pull in
	// the next column or row.
	grid, err := m.Covering(alignedBound(1000, 500, 1, 1), 26)
	if err != nil {
		t.Fatalf("Covering() unexpected error: %v", err)
	}

	want := Range{MinCol: 1000, MaxCol: 1000, MinRow: 500, MaxRow: 500}
	if grid.Range != want {
		t.Errorf("expected range %+v, got %+v", want, grid.Range)
	}
}

func TestCoveringSubTileBox(t *testing.T) {
	m := Swisstopo()

	// A box much smaller than one tile resolves to exactly one address.
	bound := orb.Bound{
		Min: orb.Point{2600010, 1200010},
		Max: orb.Point{2600020, 1200025},
	}

	grid, err := m.Covering(bound, 26)
	if err != nil {
		t.Fatalf("Covering() unexpected error: %v", err)
	}
	if grid.Count() != 1 {
		t.Fatalf("expected 1 tile, got %d", grid.Count())
	}

	// The single tile's footprint must contain the box.
	bounds, err := grid.Bounds(grid.Addresses()[0])
	if err != nil {
		t.Fatalf("Bounds() unexpected error: %v", err)
	}
	if !bounds.Contains(bound.Min) || !bounds.Contains(bound.Max) {
		t.Errorf("tile bounds %v do not contain box %v", bounds, bound)
	}
}

func TestCoveringProperty(t *testing.T) {
	m := Swisstopo()

	bound := orb.Bound{
		Min: orb.Point{2600033, 1199872},
		Max: orb.Point{2601517, 1201411},
	}

	grid, err := m.Covering(bound, 26)
	if err != nil {
		t.Fatalf("Covering() unexpected error: %v", err)
	}

	// Every sample point inside the box addresses a tile within the range.
	for _, p := range []orb.Point{
		bound.Min,
		{bound.Max[0] - 0.001, bound.Max[1] - 0.001},
		bound.Center(),
		{bound.Min[0] + 1, bound.Max[1] - 1},
	} {
		a, err := m.AddressAt(p, 26)
		if err != nil {
			t.Fatalf("AddressAt(%v) unexpected error: %v", p, err)
		}
		if a.Col < grid.Range.MinCol || a.Col > grid.Range.MaxCol ||
			a.Row < grid.Range.MinRow || a.Row > grid.Range.MaxRow {
			t.Errorf("point %v addresses %v outside range %+v", p, a, grid.Range)
		}
	}

	// Every returned tile's footprint intersects the box.
	err = grid.Each(func(a Address) error {
		bounds, err := grid.Bounds(a)
		if err != nil {
			return err
		}
		if !bounds.Intersects(bound) {
			t.Errorf("tile %v bounds %v do not intersect box", a, bounds)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Each() unexpected error: %v", err)
	}
}

func TestTileAdjacency(t *testing.T) {
	m := Swisstopo()

	a := Address{Col: 1000, Row: 500, Zoom: 26}
	east := Address{Col: 1001, Row: 500, Zoom: 26}
	south := Address{Col: 1000, Row: 501, Zoom: 26}

	ba, _ := m.Bounds(a)
	be, _ := m.Bounds(east)
	bs, _ := m.Bounds(south)

	if ba.Max[0] != be.Min[0] {
		t.Errorf("horizontal gap: %v != %v", ba.Max[0], be.Min[0])
	}
	if ba.Min[1] != bs.Max[1] {
		t.Errorf("vertical gap: %v != %v", ba.Min[1], bs.Max[1])
	}
}

func TestCoveringDegenerateBox(t *testing.T) {
	m := Swisstopo()

	tests := []struct {
		name  string
		bound orb.Bound
	}{
		{"point", orb.Bound{Min: orb.Point{2600000, 1200000}, Max: orb.Point{2600000, 1200000}}},
		{"vertical line", orb.Bound{Min: orb.Point{2600000, 1200000}, Max: orb.Point{2600000, 1200100}}},
		{"horizontal line", orb.Bound{Min: orb.Point{2600000, 1200000}, Max: orb.Point{2600100, 1200000}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Covering(tt.bound, 26)
			var degenerate *DegenerateAreaError
			if !errors.As(err, &degenerate) {
				t.Fatalf("expected DegenerateAreaError, got %v", err)
			}
		})
	}
}

func TestCoveringUnsupportedZoom(t *testing.T) {
	m := Swisstopo()
	bound := orb.Bound{Min: orb.Point{2600000, 1200000}, Max: orb.Point{2601000, 1201000}}

	for _, zoom := range []int{-1, 29, 99} {
		_, err := m.Covering(bound, zoom)
		var zoomErr *ZoomLevelError
		if !errors.As(err, &zoomErr) {
			t.Fatalf("zoom %d: expected ZoomLevelError, got %v", zoom, err)
		}
		if zoomErr.Zoom != zoom {
			t.Errorf("error reports zoom %d, expected %d", zoomErr.Zoom, zoom)
		}
	}
}

func TestCoveringOutsideExtent(t *testing.T) {
	m := Swisstopo()

	// Far west of the matrix extent.
	bound := orb.Bound{Min: orb.Point{1000000, 1200000}, Max: orb.Point{1001000, 1201000}}
	if _, err := m.Covering(bound, 26); err == nil {
		t.Fatal("expected error for box outside the matrix extent")
	}
}

func TestCoveringTouchingExtentEdge(t *testing.T) {
	m := Swisstopo()

	// Boxes entirely outside the matrix that share only an edge with the
	// extent must fail, never resolve to an empty grid.
	tests := []struct {
		name  string
		bound orb.Bound
	}{
		{"west edge", orb.Bound{
			Min: orb.Point{m.Extent.Min[0] - 1000, 1200000},
			Max: orb.Point{m.Extent.Min[0], 1201000},
		}},
		{"north edge", orb.Bound{
			Min: orb.Point{2600000, m.Extent.Max[1]},
			Max: orb.Point{2601000, m.Extent.Max[1] + 1000},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := m.Covering(tt.bound, 26)
			if err == nil {
				t.Fatalf("expected error, got grid with %d tiles", grid.Count())
			}
		})
	}
}

func TestCoveringClampsToExtent(t *testing.T) {
	m := Swisstopo()

	// Overlaps the north-west corner of the extent.
	bound := orb.Bound{
		Min: orb.Point{m.Extent.Min[0] - 5000, m.Extent.Max[1] - 1000},
		Max: orb.Point{m.Extent.Min[0] + 1000, m.Extent.Max[1] + 5000},
	}

	grid, err := m.Covering(bound, 17)
	if err != nil {
		t.Fatalf("Covering() unexpected error: %v", err)
	}
	if grid.Range.MinCol != 0 || grid.Range.MinRow != 0 {
		t.Errorf("expected clamped range to start at 0/0, got %+v", grid.Range)
	}
}

func TestCoveringDeterminism(t *testing.T) {
	m := Swisstopo()
	bound := orb.Bound{
		Min: orb.Point{2600033, 1199872},
		Max: orb.Point{2601517, 1201411},
	}

	first, err := m.Covering(bound, 26)
	if err != nil {
		t.Fatalf("Covering() unexpected error: %v", err)
	}
	second, err := m.Covering(bound, 26)
	if err != nil {
		t.Fatalf("Covering() unexpected error: %v", err)
	}

	a, b := first.Addresses(), second.Addresses()
	if len(a) != len(b) {
		t.Fatalf("tile counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sequence diverges at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEachIsRestartable(t *testing.T) {
	m := Swisstopo()
	grid, err := m.Covering(alignedBound(10, 10, 2, 2), 26)
	if err != nil {
		t.Fatalf("Covering() unexpected error: %v", err)
	}

	collect := func() []Address {
		var out []Address
		grid.Each(func(a Address) error {
			out = append(out, a)
			return nil
		})
		return out
	}

	first, second := collect(), collect()
	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("expected 4 tiles per pass, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pass mismatch at %d: %v vs %v", i, first[i], second[i])
		}
	}

	// An error from the callback stops the walk and propagates.
	sentinel := errors.New("stop")
	visited := 0
	err = grid.Each(func(Address) error {
		visited++
		if visited == 2 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}
	if visited != 2 {
		t.Errorf("expected walk to stop after 2 tiles, visited %d", visited)
	}
}

func TestAddressNaming(t *testing.T) {
	a := Address{Col: 123, Row: 45, Zoom: 26}
	if a.Name() != "123_45" {
		t.Errorf("expected name 123_45, got %s", a.Name())
	}
	if a.String() != "26/123/45" {
		t.Errorf("expected 26/123/45, got %s", a.String())
	}
	if fmt.Sprint(a) != "26/123/45" {
		t.Errorf("Sprint mismatch: %s", fmt.Sprint(a))
	}
}
