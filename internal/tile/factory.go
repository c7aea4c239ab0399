// internal/tile/factory.go - Fetcher factory implementation
package tile

import (
	"fmt"

	"aerial-to-topo/internal"
	"aerial-to-topo/internal/config"
)

// Factory creates the appropriate fetcher for the configured tile source
type Factory struct {
	config *config.Config
}

// NewFactory creates a new fetcher factory
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{config: cfg}
}

// CreateFetcher creates a fetcher for the auto-detected source type
func (f *Factory) CreateFetcher() (Fetcher, error) {
	return f.CreateFetcherForType(f.config.DetermineSourceType())
}

// CreateFetcherForType creates a fetcher for a specific source type
func (f *Factory) CreateFetcherForType(sourceType internal.SourceType) (Fetcher, error) {
	switch sourceType {
	case internal.SourceTypeWMTS:
		if f.config.WMTS.BaseURL == "" {
			return nil, fmt.Errorf("wmts.base_url is required for the WMTS source")
		}
		return NewHTTPFetcher(f.config), nil
	case internal.SourceTypeLocal:
		if f.config.Local.BasePath == "" {
			return nil, fmt.Errorf("local.base_path is required for the local source")
		}
		return NewLocalFetcher(f.config), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}

// ValidateConfiguration validates that the configuration supports the
// requested source type
func (f *Factory) ValidateConfiguration(sourceType internal.SourceType) error {
	switch sourceType {
	case internal.SourceTypeWMTS:
		if f.config.WMTS.BaseURL == "" {
			return fmt.Errorf("wmts.base_url is required for the WMTS source")
		}
	case internal.SourceTypeLocal:
		if f.config.Local.BasePath == "" {
			return fmt.Errorf("local.base_path is required for the local source")
		}
		if err := config.ValidateLocalTileDirectory(f.config); err != nil {
			return fmt.Errorf("local tile directory validation failed: %w", err)
		}
	default:
		return fmt.Errorf("unsupported source type: %s", sourceType)
	}

	return nil
}
