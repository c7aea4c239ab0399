// internal/geometry/area.go - Area-of-interest ingestion
package geometry

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"aerial-to-topo/internal"
	"aerial-to-topo/pkg/lv95"
)

// Area is the polygon of interest in WGS84 coordinates. It is immutable
// once parsed.
type Area struct {
	Polygon orb.Polygon
}

// Loader downloads and parses area documents
type Loader struct {
	client    *http.Client
	userAgent string
}

// NewLoader creates an area loader with the given request timeout
func NewLoader(timeout time.Duration, userAgent string) *Loader {
	return &Loader{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// LoadURL downloads an area document and parses it
func (l *Loader) LoadURL(url string) (*Area, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeValidation, "invalid area URL", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeNetwork, "failed to download area document", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, internal.NewError(internal.ErrorCodeNetwork,
			fmt.Sprintf("area document request returned HTTP %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeNetwork, "failed to read area document", err)
	}

	return Parse(data)
}

// LoadFile reads an area document from disk and parses it
func (l *Loader) LoadFile(path string) (*Area, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, "failed to read area document", err)
	}
	return Parse(data)
}

// Parse extracts the area polygon from a KML or GeoJSON document. The
// format is detected from the document content.
func Parse(data []byte) (*Area, error) {
	trimmed := strings.TrimSpace(string(data))

	var polygon orb.Polygon
	var err error
	switch {
	case strings.HasPrefix(trimmed, "{"):
		polygon, err = parseGeoJSON(data)
	case strings.HasPrefix(trimmed, "<"):
		polygon, err = parseKML(data)
	default:
		return nil, internal.NewError(internal.ErrorCodeValidation, "unrecognized area document format", nil)
	}
	if err != nil {
		return nil, err
	}

	if err := validatePolygon(polygon); err != nil {
		return nil, err
	}

	return &Area{Polygon: polygon}, nil
}

// validatePolygon checks basic well-formedness of the parsed ring
func validatePolygon(polygon orb.Polygon) error {
	if len(polygon) == 0 {
		return internal.NewError(internal.ErrorCodeValidation, "area document contains no polygon", nil)
	}

	ring := polygon[0]
	distinct := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		if p[0] < -180 || p[0] > 180 || p[1] < -90 || p[1] > 90 {
			return internal.NewError(internal.ErrorCodeValidation,
				fmt.Sprintf("coordinate (%f, %f) outside WGS84 ranges", p[0], p[1]), nil)
		}
		distinct[p] = struct{}{}
	}

	if len(distinct) < 3 {
		return internal.NewError(internal.ErrorCodeValidation,
			fmt.Sprintf("polygon needs at least 3 distinct vertices, found %d", len(distinct)), nil)
	}

	return nil
}

// ProjectedBound projects the area polygon to LV95 and returns its envelope.
func (a *Area) ProjectedBound(transformer *lv95.Transformer) (orb.Bound, error) {
	bound, err := transformer.ProjectBound(a.Polygon)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("failed to project area polygon: %w", err)
	}
	return bound, nil
}
