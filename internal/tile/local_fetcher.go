// internal/tile/local_fetcher.go - Local tile directory implementation
package tile

import (
	"fmt"
	"os"
	"time"

	"aerial-to-topo/internal"
	"aerial-to-topo/internal/config"
)

// LocalFetcher reads pre-downloaded source tiles from a directory using the
// {col}_{row}.jpeg naming convention. It serves offline reruns where the
// source imagery was already fetched.
type LocalFetcher struct {
	config *config.Config
}

// NewLocalFetcher creates a new local file-based tile fetcher
func NewLocalFetcher(cfg *config.Config) *LocalFetcher {
	return &LocalFetcher{config: cfg}
}

// Fetch reads a single tile image from the local tile directory
func (f *LocalFetcher) Fetch(request *Request) (*Response, error) {
	start := time.Now()
	path := f.config.TilePath(request.Address.Col, request.Address.Row)

	data, err := os.ReadFile(path)
	if err != nil {
		fetchErr := internal.NewError(internal.ErrorCodeFileSystem,
			fmt.Sprintf("failed to read tile %s", request.Address), err)
		return &Response{
			Request:   request,
			FetchTime: time.Since(start),
			Error:     fetchErr,
		}, fetchErr
	}

	if len(data) == 0 {
		fetchErr := internal.NewError(internal.ErrorCodeProcessing,
			fmt.Sprintf("tile file %s is empty", path), nil)
		return &Response{
			Request:   request,
			FetchTime: time.Since(start),
			Error:     fetchErr,
		}, fetchErr
	}

	return &Response{
		Request:   request,
		Data:      data,
		Size:      len(data),
		FetchTime: time.Since(start),
	}, nil
}

// FetchWithRetry reads a tile; local reads are not retried since a missing
// file is not a transient condition.
func (f *LocalFetcher) FetchWithRetry(request *Request) (*Response, error) {
	return f.Fetch(request)
}

// ValidateTileExists checks that a source tile is present on disk
func (f *LocalFetcher) ValidateTileExists(col, row int) error {
	path := f.config.TilePath(col, row)
	info, err := os.Stat(path)
	if err != nil {
		return internal.NewError(internal.ErrorCodeNotFound,
			fmt.Sprintf("tile %d_%d not found at %s", col, row, path), err)
	}
	if info.Size() == 0 {
		return internal.NewError(internal.ErrorCodeProcessing,
			fmt.Sprintf("tile file %s is empty", path), nil)
	}
	return nil
}
