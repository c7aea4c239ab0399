// cmd/stitch.go - Mosaic assembly command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"aerial-to-topo/internal/config"
	"aerial-to-topo/internal/output"
)

var (
	stitchInputDir string
	stitchOutput   string
)

// stitchCmd represents the stitch command
var stitchCmd = &cobra.Command{
	Use:   "stitch",
	Short: "Combine styled tiles into a single mosaic image",
	Long: `Combine the styled {col}_{row}_map tiles from an output directory into
one mosaic JPEG. Grid positions without a styled tile stay white and are
listed so partial runs are easy to spot and resume.

Examples:
  aerial-to-topo stitch --input-dir ./output_tiles --output stitched_map.jpeg`,
	RunE: runStitch,
}

func init() {
	rootCmd.AddCommand(stitchCmd)

	stitchCmd.Flags().StringVar(&stitchInputDir, "input-dir", "", "directory containing styled tiles")
	stitchCmd.Flags().StringVar(&stitchOutput, "output", "stitched_map.jpeg", "path of the mosaic image")
}

func runStitch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	inputDir := stitchInputDir
	if inputDir == "" {
		inputDir = cfg.Output.Directory
	}

	stitcher := output.NewStitcher(inputDir, cfg.Output.JPEGQuality)
	result, err := stitcher.Stitch(stitchOutput)
	if err != nil {
		return err
	}

	fmt.Printf("Mosaic: %dx%d pixels, %d tiles pasted\n", result.Width, result.Height, result.Pasted)
	if len(result.Missing) > 0 {
		fmt.Printf("Missing %d tiles:\n", len(result.Missing))
		for _, a := range result.Missing {
			fmt.Printf("  %s\n", a.Name())
		}
	}

	fmt.Printf("Written to %s\n", stitchOutput)
	return nil
}
