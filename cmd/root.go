// cmd/root.go - Root command implementation
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aerial-to-topo",
	Short: "Turn aerial imagery tiles into stylized topographic map tiles",
	Long: `aerial-to-topo converts swisstopo SWISSIMAGE aerial tiles covering a
user-drawn polygon into stylized topographic map tiles using a generative
image model.

The area polygon (KML or GeoJSON, WGS84) is reprojected into the Swiss LV95
coordinate system (EPSG:2056), resolved to the covering WMTS tile grid at the
configured zoom level, and every tile is fetched, styled and saved as
{col}_{row}.jpeg / {col}_{row}_map.jpeg.

Examples:
  # Resolve the tile grid for an area without fetching anything
  aerial-to-topo resolve --area-url "https://public.geo.admin.ch/api/kml/files/XXXX" --zoom 26

  # Run the full pipeline
  aerial-to-topo generate --area-url "https://public.geo.admin.ch/api/kml/files/XXXX" --zoom 26 --output-dir ./output_tiles

  # Rerun styling from pre-downloaded tiles
  aerial-to-topo generate --area-file area.geojson --base-path ./output_tiles

  # Combine styled tiles into one mosaic
  aerial-to-topo stitch --input-dir ./output_tiles --output stitched_map.jpeg`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aerial-to-topo.yaml)")

	// Area flags
	rootCmd.PersistentFlags().String("area-url", "", "URL of the area polygon document (KML or GeoJSON)")
	rootCmd.PersistentFlags().String("area-file", "", "local path of the area polygon document")

	// Grid flags
	rootCmd.PersistentFlags().Int("zoom", 26, "tile matrix zoom level")

	// Source flags
	rootCmd.PersistentFlags().String("source-type", "auto", "tile source type (auto, wmts, local)")
	rootCmd.PersistentFlags().String("base-url", "", "WMTS endpoint base URL")
	rootCmd.PersistentFlags().String("base-path", "", "directory of pre-downloaded source tiles")

	// Gemini flags
	rootCmd.PersistentFlags().String("model", "", "generative model name")
	rootCmd.PersistentFlags().String("prompt-file", "", "style instruction file")
	rootCmd.PersistentFlags().String("api-key-file", "", "Gemini API key file")

	// Processing flags
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().Int("concurrency", 4, "number of tiles processed in parallel")

	// Bind flags to viper
	viper.BindPFlag("area.url", rootCmd.PersistentFlags().Lookup("area-url"))
	viper.BindPFlag("area.file", rootCmd.PersistentFlags().Lookup("area-file"))
	viper.BindPFlag("grid.zoom", rootCmd.PersistentFlags().Lookup("zoom"))
	viper.BindPFlag("source.type", rootCmd.PersistentFlags().Lookup("source-type"))
	viper.BindPFlag("wmts.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("local.base_path", rootCmd.PersistentFlags().Lookup("base-path"))
	viper.BindPFlag("gemini.model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("gemini.prompt_file", rootCmd.PersistentFlags().Lookup("prompt-file"))
	viper.BindPFlag("gemini.api_key_file", rootCmd.PersistentFlags().Lookup("api-key-file"))
	viper.BindPFlag("logging.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("batch.concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Secrets like GEMINI_API_KEY may live in a .env file
	if err := godotenv.Load(); err == nil && viper.GetBool("logging.verbose") {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".aerial-to-topo" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".aerial-to-topo")
	}

	// Environment variables
	viper.SetEnvPrefix("AERIAL_TO_TOPO")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("logging.verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
