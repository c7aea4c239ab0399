// internal/config/validation.go - Configuration validation
package config

import (
	"fmt"
	"net/url"
	"os"

	"aerial-to-topo/pkg/tilegrid"
)

// Validate validates the configuration structure and values
func Validate(config *Config) error {
	if err := validateWMTS(&config.WMTS); err != nil {
		return fmt.Errorf("wmts configuration invalid: %w", err)
	}

	if err := validateGemini(&config.Gemini); err != nil {
		return fmt.Errorf("gemini configuration invalid: %w", err)
	}

	if err := validateGrid(&config.Grid); err != nil {
		return fmt.Errorf("grid configuration invalid: %w", err)
	}

	if err := validateBatch(&config.Batch); err != nil {
		return fmt.Errorf("batch configuration invalid: %w", err)
	}

	if err := validateOutput(&config.Output); err != nil {
		return fmt.Errorf("output configuration invalid: %w", err)
	}

	return nil
}

// validateWMTS validates tile source configuration parameters
func validateWMTS(config *WMTSConfig) error {
	if config.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	if _, err := url.Parse(config.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}

	if config.Layer == "" {
		return fmt.Errorf("layer is required")
	}

	if config.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

// validateGemini validates generative model configuration parameters
func validateGemini(config *GeminiConfig) error {
	if config.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	if config.Model == "" {
		return fmt.Errorf("model is required")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if config.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}

	return nil
}

// validateGrid checks the zoom level against the tile matrix set before any
// work starts, so an unsupported zoom fails the run up front.
func validateGrid(config *GridConfig) error {
	if _, err := tilegrid.Swisstopo().Resolution(config.Zoom); err != nil {
		return err
	}
	return nil
}

// validateBatch validates per-tile processing configuration parameters
func validateBatch(config *BatchConfig) error {
	if config.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}

	if config.Concurrency > 64 {
		return fmt.Errorf("concurrency must not exceed 64")
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

// validateOutput validates output configuration parameters
func validateOutput(config *OutputConfig) error {
	if config.Directory == "" {
		return fmt.Errorf("directory is required")
	}

	if config.JPEGQuality < 1 || config.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100")
	}

	return nil
}

// ValidateLocalTileDirectory checks that a configured local tile directory
// exists and is a directory.
func ValidateLocalTileDirectory(config *Config) error {
	info, err := os.Stat(config.Local.BasePath)
	if err != nil {
		return fmt.Errorf("base_path not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("base_path %s is not a directory", config.Local.BasePath)
	}
	return nil
}
