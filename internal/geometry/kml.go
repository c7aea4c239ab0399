// internal/geometry/kml.go - KML polygon extraction
package geometry

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"aerial-to-topo/internal"
)

// parseKML extracts the first polygon ring from a KML document. KML encodes
// vertices as whitespace-separated "lon,lat[,alt]" tuples.
func parseKML(data []byte) (orb.Polygon, error) {
	coordinates, err := collectKMLCoordinates(data)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeValidation, "failed to parse KML document", err)
	}
	if len(coordinates) == 0 {
		return nil, internal.NewError(internal.ErrorCodeValidation, "no coordinates found in KML", nil)
	}

	var ring orb.Ring
	for _, block := range coordinates {
		for _, tuple := range strings.Fields(block) {
			parts := strings.Split(tuple, ",")
			if len(parts) < 2 {
				continue
			}

			lon, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return nil, internal.NewError(internal.ErrorCodeValidation, "invalid longitude in KML: "+parts[0], err)
			}
			lat, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, internal.NewError(internal.ErrorCodeValidation, "invalid latitude in KML: "+parts[1], err)
			}

			ring = append(ring, orb.Point{lon, lat})
		}
	}

	if len(ring) == 0 {
		return nil, internal.NewError(internal.ErrorCodeValidation, "no coordinates found in KML", nil)
	}

	return orb.Polygon{ring}, nil
}

// collectKMLCoordinates walks the XML token stream and gathers the text of
// every <coordinates> element regardless of nesting or namespace.
func collectKMLCoordinates(data []byte) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var blocks []string
	var inCoordinates bool
	var current strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "coordinates" {
				inCoordinates = true
				current.Reset()
			}
		case xml.CharData:
			if inCoordinates {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "coordinates" && inCoordinates {
				inCoordinates = false
				if text := strings.TrimSpace(current.String()); text != "" {
					blocks = append(blocks, text)
				}
			}
		}
	}

	return blocks, nil
}
