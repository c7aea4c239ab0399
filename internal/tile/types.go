// internal/tile/types.go - Tile fetching types
package tile

import (
	"net/http"
	"time"

	"aerial-to-topo/pkg/tilegrid"
)

// Request represents a request for one source tile image
type Request struct {
	Address tilegrid.Address  `json:"address"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Response represents the fetched source image for one tile
type Response struct {
	Request    *Request      `json:"request"`
	Data       []byte        `json:"-"`
	Headers    http.Header   `json:"-"`
	StatusCode int           `json:"status_code"`
	Size       int           `json:"size"`
	FetchTime  time.Duration `json:"fetch_time"`
	Error      error         `json:"error,omitempty"`
}

// Fetcher defines the interface for retrieving source tile images
type Fetcher interface {
	Fetch(request *Request) (*Response, error)
	FetchWithRetry(request *Request) (*Response, error)
}

// NewRequest creates a request for the tile at the given address
func NewRequest(address tilegrid.Address, url string) *Request {
	return &Request{
		Address: address,
		URL:     url,
		Headers: make(map[string]string),
	}
}
