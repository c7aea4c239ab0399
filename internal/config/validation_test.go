// internal/config/validation_test.go - Unit tests for configuration validation
package config

import (
	"testing"
	"time"
)

func validWMTS() WMTSConfig {
	return WMTSConfig{
		BaseURL:    "https://wmts.geo.admin.ch/1.0.0",
		Layer:      "ch.swisstopo.swissimage",
		Style:      "default",
		Timestamp:  "current",
		MatrixSet:  "2056",
		Format:     "jpeg",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

func TestValidateWMTS(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WMTSConfig)
		wantErr bool
	}{
		{
			name:    "valid configuration",
			mutate:  func(c *WMTSConfig) {},
			wantErr: false,
		},
		{
			name:    "missing base url",
			mutate:  func(c *WMTSConfig) { c.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "missing layer",
			mutate:  func(c *WMTSConfig) { c.Layer = "" },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *WMTSConfig) { c.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *WMTSConfig) { c.Timeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validWMTS()
			tt.mutate(&cfg)
			err := validateWMTS(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateWMTS() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateGemini(t *testing.T) {
	tests := []struct {
		name    string
		config  GeminiConfig
		wantErr bool
	}{
		{
			name: "valid configuration",
			config: GeminiConfig{
				BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
				Model:      "gemini-2.5-flash-image",
				Timeout:    2 * time.Minute,
				MaxRetries: 3,
			},
			wantErr: false,
		},
		{
			name: "missing model",
			config: GeminiConfig{
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
				Timeout: time.Minute,
			},
			wantErr: true,
		},
		{
			name: "missing base url",
			config: GeminiConfig{
				Model:   "gemini-2.5-flash-image",
				Timeout: time.Minute,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGemini(&tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateGemini() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateGrid(t *testing.T) {
	tests := []struct {
		name    string
		zoom    int
		wantErr bool
	}{
		{name: "native zoom", zoom: 26, wantErr: false},
		{name: "lowest zoom", zoom: 0, wantErr: false},
		{name: "highest zoom", zoom: 28, wantErr: false},
		{name: "negative zoom", zoom: -1, wantErr: true},
		{name: "beyond matrix set", zoom: 29, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGrid(&GridConfig{Zoom: tt.zoom})
			if (err != nil) != tt.wantErr {
				t.Errorf("validateGrid(zoom=%d) error = %v, wantErr %v", tt.zoom, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBatch(t *testing.T) {
	tests := []struct {
		name    string
		config  BatchConfig
		wantErr bool
	}{
		{name: "valid", config: BatchConfig{Concurrency: 4, Timeout: time.Hour}, wantErr: false},
		{name: "zero concurrency", config: BatchConfig{Concurrency: 0, Timeout: time.Hour}, wantErr: true},
		{name: "excessive concurrency", config: BatchConfig{Concurrency: 128, Timeout: time.Hour}, wantErr: true},
		{name: "zero timeout", config: BatchConfig{Concurrency: 4}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBatch(&tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateBatch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateOutput(t *testing.T) {
	tests := []struct {
		name    string
		config  OutputConfig
		wantErr bool
	}{
		{name: "valid", config: OutputConfig{Directory: "output_tiles", JPEGQuality: 95}, wantErr: false},
		{name: "missing directory", config: OutputConfig{JPEGQuality: 95}, wantErr: true},
		{name: "quality too low", config: OutputConfig{Directory: "out", JPEGQuality: 0}, wantErr: true},
		{name: "quality too high", config: OutputConfig{Directory: "out", JPEGQuality: 101}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOutput(&tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLocalTileDirectory(t *testing.T) {
	cfg := &Config{Local: LocalConfig{BasePath: t.TempDir()}}
	if err := ValidateLocalTileDirectory(cfg); err != nil {
		t.Errorf("Expected no error for existing directory, got %v", err)
	}

	cfg.Local.BasePath = "/nonexistent/tile/directory"
	if err := ValidateLocalTileDirectory(cfg); err == nil {
		t.Error("Expected error for missing directory, got nil")
	}
}
