// cmd/resolve.go - Dry-run tile grid resolution
package cmd

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"aerial-to-topo/internal/config"
	"aerial-to-topo/pkg/lv95"
	"aerial-to-topo/pkg/tilegrid"
)

var footprintsPath string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the tile grid covering an area without fetching tiles",
	Long: `Resolve the covering tile grid for an area polygon and print the
resulting tile range, count and bounding box without any tile I/O.

Use this to inspect the cost of a run before starting it: the tile count at
zoom 26 grows quickly with area size and every tile is one style-transfer
request.

With --footprints, the resolved tile footprints are also written as a GeoJSON
FeatureCollection in WGS84, which overlays directly on map.geo.admin.ch or any
web map for visual verification.

Examples:
  aerial-to-topo resolve --area-file area.geojson --zoom 26
  aerial-to-topo resolve --area-url "https://public.geo.admin.ch/api/kml/files/XXXX" --footprints grid.geojson`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&footprintsPath, "footprints", "", "write tile footprints as GeoJSON to this path")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	grid, err := resolveGrid(cfg)
	if err != nil {
		return err
	}

	span, err := grid.Matrix.TileSpan(grid.Zoom)
	if err != nil {
		return err
	}

	fmt.Printf("Zoom level:  %d (%.2fm per tile)\n", grid.Zoom, span)
	fmt.Printf("Columns:     %d to %d\n", grid.Range.MinCol, grid.Range.MaxCol)
	fmt.Printf("Rows:        %d to %d\n", grid.Range.MinRow, grid.Range.MaxRow)
	fmt.Printf("Tile count:  %d\n", grid.Count())

	nw, err := grid.Bounds(tilegrid.Address{Col: grid.Range.MinCol, Row: grid.Range.MinRow, Zoom: grid.Zoom})
	if err != nil {
		return err
	}
	se, err := grid.Bounds(tilegrid.Address{Col: grid.Range.MaxCol, Row: grid.Range.MaxRow, Zoom: grid.Zoom})
	if err != nil {
		return err
	}
	fmt.Printf("Grid extent: %.2f, %.2f to %.2f, %.2f (EPSG:2056)\n",
		nw.Min[0], se.Min[1], se.Max[0], nw.Max[1])

	if footprintsPath != "" {
		if err := writeFootprints(grid, footprintsPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Footprints written to %s\n", footprintsPath)
	}

	return nil
}

// writeFootprints exports every tile footprint as a WGS84 GeoJSON feature
func writeFootprints(grid *tilegrid.Grid, path string) error {
	transformer := lv95.NewTransformer()
	collection := geojson.NewFeatureCollection()

	err := grid.Each(func(a tilegrid.Address) error {
		bounds, err := grid.Bounds(a)
		if err != nil {
			return err
		}

		ring, err := geographicRing(transformer, bounds)
		if err != nil {
			return err
		}

		feature := geojson.NewFeature(orb.Polygon{ring})
		feature.Properties = geojson.Properties{
			"col":  a.Col,
			"row":  a.Row,
			"zoom": a.Zoom,
			"name": a.Name(),
		}
		collection.Append(feature)
		return nil
	})
	if err != nil {
		return err
	}

	data, err := collection.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode footprints: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// geographicRing converts a projected footprint to a closed WGS84 ring
func geographicRing(t *lv95.Transformer, b orb.Bound) (orb.Ring, error) {
	corners := []orb.Point{
		{b.Min[0], b.Min[1]},
		{b.Max[0], b.Min[1]},
		{b.Max[0], b.Max[1]},
		{b.Min[0], b.Max[1]},
		{b.Min[0], b.Min[1]},
	}

	ring := make(orb.Ring, len(corners))
	for i, corner := range corners {
		p, err := t.ToGeographic(corner)
		if err != nil {
			return nil, err
		}
		ring[i] = p
	}
	return ring, nil
}
