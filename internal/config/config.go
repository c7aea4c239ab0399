// internal/config/config.go - Configuration management
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"aerial-to-topo/internal"
)

// Config represents the complete application configuration
type Config struct {
	WMTS    WMTSConfig    `mapstructure:"wmts"`
	Local   LocalConfig   `mapstructure:"local"`
	Source  SourceConfig  `mapstructure:"source"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Area    AreaConfig    `mapstructure:"area"`
	Grid    GridConfig    `mapstructure:"grid"`
	Output  OutputConfig  `mapstructure:"output"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Network NetworkConfig `mapstructure:"network"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WMTSConfig contains the tile image source configuration
type WMTSConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Layer      string        `mapstructure:"layer"`
	Style      string        `mapstructure:"style"`
	Timestamp  string        `mapstructure:"timestamp"`
	MatrixSet  string        `mapstructure:"matrix_set"`
	Format     string        `mapstructure:"format"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// LocalConfig contains configuration for pre-downloaded tile directories
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"`
}

// SourceConfig determines the tile image source type
type SourceConfig struct {
	Type       string `mapstructure:"type"`
	AutoDetect bool   `mapstructure:"auto_detect"`
}

// GeminiConfig contains the generative model configuration
type GeminiConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	APIKeyFile string        `mapstructure:"api_key_file"`
	PromptFile string        `mapstructure:"prompt_file"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// AreaConfig identifies the area-of-interest document
type AreaConfig struct {
	URL  string `mapstructure:"url"`
	File string `mapstructure:"file"`
}

// GridConfig selects the tile grid resolution
type GridConfig struct {
	Zoom int `mapstructure:"zoom"`
}

// OutputConfig contains output configuration
type OutputConfig struct {
	Directory   string `mapstructure:"directory"`
	Report      string `mapstructure:"report"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
	KeepSource  bool   `mapstructure:"keep_source"`
}

// BatchConfig contains per-tile processing configuration
type BatchConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	FailFast    bool          `mapstructure:"fail_fast"`
}

// NetworkConfig contains network-related configuration
type NetworkConfig struct {
	UserAgent       string        `mapstructure:"user_agent"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Verbose  bool `mapstructure:"verbose"`
	Progress bool `mapstructure:"progress"`
}

// Load loads configuration from config file, environment and flags
func Load() (*Config, error) {
	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, internal.NewError(internal.ErrorCodeConfig, "failed to unmarshal configuration", err)
	}

	if err := Validate(&config); err != nil {
		return nil, internal.NewError(internal.ErrorCodeConfig, "configuration validation failed", err)
	}

	return &config, nil
}

// setDefaults configures default values for all configuration options
func setDefaults() {
	// Source defaults
	viper.SetDefault("source.type", "auto")
	viper.SetDefault("source.auto_detect", true)

	// WMTS defaults: swisstopo SWISSIMAGE in the LV95 tile matrix set
	viper.SetDefault("wmts.base_url", "https://wmts.geo.admin.ch/1.0.0")
	viper.SetDefault("wmts.layer", "ch.swisstopo.swissimage")
	viper.SetDefault("wmts.style", "default")
	viper.SetDefault("wmts.timestamp", "current")
	viper.SetDefault("wmts.matrix_set", "2056")
	viper.SetDefault("wmts.format", "jpeg")
	viper.SetDefault("wmts.timeout", 30*time.Second)
	viper.SetDefault("wmts.max_retries", 3)

	// Gemini defaults
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("gemini.model", "gemini-2.5-flash-image")
	viper.SetDefault("gemini.api_key_file", "secrets/genai_key.txt")
	viper.SetDefault("gemini.prompt_file", "prompt.txt")
	viper.SetDefault("gemini.timeout", 2*time.Minute)
	viper.SetDefault("gemini.max_retries", 3)

	// Grid defaults
	viper.SetDefault("grid.zoom", 26)

	// Output defaults
	viper.SetDefault("output.directory", "output_tiles")
	viper.SetDefault("output.jpeg_quality", 95)
	viper.SetDefault("output.keep_source", true)

	// Batch defaults
	viper.SetDefault("batch.concurrency", 4)
	viper.SetDefault("batch.timeout", 60*time.Minute)
	viper.SetDefault("batch.fail_fast", false)

	// Network defaults
	viper.SetDefault("network.user_agent", "aerial-to-topo/1.0")
	viper.SetDefault("network.max_idle_conns", 100)
	viper.SetDefault("network.idle_conn_timeout", 90*time.Second)

	// Logging defaults
	viper.SetDefault("logging.verbose", false)
	viper.SetDefault("logging.progress", true)
}

// TileURL builds the WMTS resource URL for one tile. The EPSG:2056 matrix
// set addresses tiles col-first.
func (c *Config) TileURL(zoom, col, row int) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s/%d/%d/%d.%s",
		strings.TrimRight(c.WMTS.BaseURL, "/"),
		c.WMTS.Layer, c.WMTS.Style, c.WMTS.Timestamp, c.WMTS.MatrixSet,
		zoom, col, row, c.WMTS.Format)
}

// TilePath builds the path of a pre-downloaded source tile.
func (c *Config) TilePath(col, row int) string {
	return fmt.Sprintf("%s/%d_%d.%s", strings.TrimRight(c.Local.BasePath, "/"), col, row, c.WMTS.Format)
}

// DetermineSourceType resolves the tile source type from configuration
func (c *Config) DetermineSourceType() internal.SourceType {
	if !c.Source.AutoDetect {
		if c.Source.Type == "local" {
			return internal.SourceTypeLocal
		}
		return internal.SourceTypeWMTS
	}

	if c.Local.BasePath != "" {
		return internal.SourceTypeLocal
	}
	return internal.SourceTypeWMTS
}

// ResolveAPIKey returns the Gemini API key from configuration, environment
// or the configured secrets file, in that order.
func (c *Config) ResolveAPIKey() (string, error) {
	if c.Gemini.APIKey != "" {
		return c.Gemini.APIKey, nil
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}

	if c.Gemini.APIKeyFile != "" {
		data, err := os.ReadFile(c.Gemini.APIKeyFile)
		if err != nil {
			return "", internal.NewError(internal.ErrorCodeConfig, "failed to read API key file", err)
		}
		key := strings.TrimSpace(string(data))
		if key != "" {
			return key, nil
		}
	}

	return "", internal.NewError(internal.ErrorCodeConfig, "no Gemini API key configured", nil)
}

// ResolvePrompt returns the style instruction from the configured prompt file.
func (c *Config) ResolvePrompt() (string, error) {
	data, err := os.ReadFile(c.Gemini.PromptFile)
	if err != nil {
		return "", internal.NewError(internal.ErrorCodeConfig, "failed to read prompt file", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", internal.NewError(internal.ErrorCodeConfig, "prompt file is empty", nil)
	}
	return prompt, nil
}
