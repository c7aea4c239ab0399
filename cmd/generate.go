// cmd/generate.go - Full pipeline command
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aerial-to-topo/internal/batch"
	"aerial-to-topo/internal/config"
	"aerial-to-topo/internal/geometry"
	"aerial-to-topo/internal/output"
	"aerial-to-topo/internal/styler"
	"aerial-to-topo/internal/tile"
	"aerial-to-topo/pkg/lv95"
	"aerial-to-topo/pkg/tilegrid"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate stylized map tiles for an area",
	Long: `Generate stylized map tiles for the area covered by a polygon.

The pipeline downloads the area document, projects the polygon into LV95,
resolves the covering tile grid at the configured zoom level, and then runs
every tile through fetch, style transfer and persistence using a bounded
worker pool. Failures are contained per tile: one failed tile never stops
the others, and the final report lists every tile with its outcome.

Examples:
  # Style an area drawn on map.geo.admin.ch
  aerial-to-topo generate --area-url "https://public.geo.admin.ch/api/kml/files/XXXX"

  # Use a local GeoJSON polygon and a custom output directory
  aerial-to-topo generate --area-file area.geojson --output-dir ./tiles

  # Re-style pre-downloaded source tiles without hitting the WMTS
  aerial-to-topo generate --area-file area.geojson --base-path ./tiles --source-type local`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("output-dir", "", "output directory for tiles")
	generateCmd.Flags().String("report", "", "write the run report as JSON to this path")
	generateCmd.Flags().Bool("fail-fast", false, "stop scheduling new tiles after the first failure")
	generateCmd.Flags().Bool("keep-source", true, "save the fetched source tiles next to the styled ones")
	generateCmd.Flags().Bool("progress", true, "show progress indicator")

	viper.BindPFlag("output.directory", generateCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("output.report", generateCmd.Flags().Lookup("report"))
	viper.BindPFlag("batch.fail_fast", generateCmd.Flags().Lookup("fail-fast"))
	viper.BindPFlag("output.keep_source", generateCmd.Flags().Lookup("keep-source"))
	viper.BindPFlag("logging.progress", generateCmd.Flags().Lookup("progress"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	verbose := cfg.Logging.Verbose

	// Resolve collaborator inputs before any tile work
	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return err
	}

	prompt, err := cfg.ResolvePrompt()
	if err != nil {
		return err
	}

	grid, err := resolveGrid(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Tile range - Col: %d to %d, Row: %d to %d (%d tiles at zoom %d)\n",
			grid.Range.MinCol, grid.Range.MaxCol, grid.Range.MinRow, grid.Range.MaxRow,
			grid.Count(), grid.Zoom)
	}

	// Assemble the per-tile pipeline
	sourceType := cfg.DetermineSourceType()
	factory := tile.NewFactory(cfg)
	if err := factory.ValidateConfiguration(sourceType); err != nil {
		return fmt.Errorf("source configuration validation failed: %w", err)
	}

	fetcher, err := factory.CreateFetcher()
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	writer, err := output.NewTileWriter(cfg.Output.Directory, cfg.WMTS.Format, cfg.Output.KeepSource)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}

	var reporter batch.ProgressReporter
	if cfg.Logging.Progress {
		reporter = batch.NewConsoleReporter(os.Stderr)
	}

	gemini := styler.NewGeminiClient(&cfg.Gemini, apiKey)

	buildURL := func(a tilegrid.Address) string {
		return cfg.TileURL(a.Zoom, a.Col, a.Row)
	}

	processor := batch.NewProcessor(fetcher, gemini, writer, reporter, buildURL, prompt)

	job := batch.NewJob(grid.Addresses(), &batch.JobConfig{
		Concurrency: cfg.Batch.Concurrency,
		Timeout:     cfg.Batch.Timeout,
		FailFast:    cfg.Batch.FailFast,
	})

	if verbose {
		fmt.Fprintf(os.Stderr, "Starting run %s (source: %s, concurrency: %d)\n",
			job.ID, sourceType, cfg.Batch.Concurrency)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Batch.Timeout)
	defer cancel()

	start := time.Now()
	results, runErr := processor.Process(ctx, job)
	report := batch.BuildReport(job, results, start, time.Now())

	report.Render(os.Stderr)

	if cfg.Output.Report != "" {
		if err := report.WriteJSON(cfg.Output.Report); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", cfg.Output.Report)
		}
	}

	if runErr != nil {
		return runErr
	}
	if report.Failed() > 0 {
		return fmt.Errorf("%d of %d tiles failed", report.Failed(), len(report.Outcomes))
	}
	return nil
}

// resolveGrid loads the area polygon and resolves its covering tile grid.
// All geometry and zoom validation happens here, before any tile I/O.
func resolveGrid(cfg *config.Config) (*tilegrid.Grid, error) {
	loader := geometry.NewLoader(cfg.WMTS.Timeout, cfg.Network.UserAgent)

	var area *geometry.Area
	var err error
	switch {
	case cfg.Area.File != "":
		area, err = loader.LoadFile(cfg.Area.File)
	case cfg.Area.URL != "":
		area, err = loader.LoadURL(cfg.Area.URL)
	default:
		return nil, fmt.Errorf("an area document is required: set --area-url or --area-file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load area: %w", err)
	}

	transformer := lv95.NewTransformer()
	bound, err := area.ProjectedBound(transformer)
	if err != nil {
		return nil, err
	}

	if viper.GetBool("logging.verbose") {
		fmt.Fprintf(os.Stderr, "Bounding box (EPSG:2056): %.2f, %.2f to %.2f, %.2f (%.2fm x %.2fm)\n",
			bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1],
			bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1])
	}

	return tilegrid.Swisstopo().Covering(bound, cfg.Grid.Zoom)
}
