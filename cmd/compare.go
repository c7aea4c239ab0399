// cmd/compare.go - Transformation quality check
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aerial-to-topo/internal/config"
	"aerial-to-topo/internal/output"
)

var (
	compareInputDir string
	compareOriginal string
	compareStyled   string
	compareThresh   float64
	compareReport   string
	compareMarkdown string
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Score styled tiles against their aerial sources",
	Long: `Score every styled tile against the aerial source it was generated
from, using structural similarity (SSIM) and mean color difference.

A successful style transfer produces an image structurally different from
its input, so a pair scoring above the SSIM threshold is flagged: the model
most likely returned the photo (nearly) unchanged. Results are written as a
JSON report and a Markdown table with the image pairs inline for visual
inspection.

Examples:
  # Score a whole output directory
  aerial-to-topo compare --input-dir ./output_tiles

  # Score one pair
  aerial-to-topo compare --original 1234_567.jpeg --styled 1234_567_map.jpeg

  # Stricter threshold
  aerial-to-topo compare --input-dir ./output_tiles --threshold 0.7`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareInputDir, "input-dir", "", "directory containing tile pairs")
	compareCmd.Flags().StringVar(&compareOriginal, "original", "", "path to a single source image")
	compareCmd.Flags().StringVar(&compareStyled, "styled", "", "path to a single styled image")
	compareCmd.Flags().Float64Var(&compareThresh, "threshold", output.DefaultSSIMThreshold,
		"SSIM above which a pair counts as not transformed")
	compareCmd.Flags().StringVar(&compareReport, "report", "comparison_report.json", "JSON report path")
	compareCmd.Flags().StringVar(&compareMarkdown, "markdown", "comparison_report.md", "Markdown report path")
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareOriginal != "" || compareStyled != "" {
		if compareOriginal == "" || compareStyled == "" {
			return fmt.Errorf("single-pair mode needs both --original and --styled")
		}

		comparer := output.NewComparer("", compareThresh)
		result, err := comparer.ComparePair(compareOriginal, compareStyled)
		if err != nil {
			return err
		}

		status := "transformed"
		if !result.Transformed {
			status = "too similar to input"
		}
		fmt.Printf("SSIM score:       %.4f\n", result.SSIM)
		fmt.Printf("Color difference: %.2f\n", result.ColorDifference)
		fmt.Printf("Status:           %s\n", status)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	inputDir := compareInputDir
	if inputDir == "" {
		inputDir = cfg.Output.Directory
	}

	report, err := output.NewComparer(inputDir, compareThresh).CompareAll()
	if err != nil {
		return err
	}

	report.Render(os.Stdout)

	if err := report.WriteJSON(compareReport); err != nil {
		return err
	}
	if err := report.WriteMarkdown(compareMarkdown); err != nil {
		return err
	}
	fmt.Printf("Reports written to %s and %s\n", compareReport, compareMarkdown)

	return nil
}
