// internal/geometry/geojson.go - GeoJSON polygon extraction
package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"aerial-to-topo/internal"
)

// parseGeoJSON extracts the first polygon from a GeoJSON document. Feature
// collections, single features and bare geometries are all accepted.
func parseGeoJSON(data []byte) (orb.Polygon, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		for _, feature := range fc.Features {
			if polygon, ok := asPolygon(feature.Geometry); ok {
				return polygon, nil
			}
		}
		return nil, internal.NewError(internal.ErrorCodeValidation, "no polygon feature in GeoJSON collection", nil)
	}

	if feature, err := geojson.UnmarshalFeature(data); err == nil {
		if polygon, ok := asPolygon(feature.Geometry); ok {
			return polygon, nil
		}
		return nil, internal.NewError(internal.ErrorCodeValidation, "GeoJSON feature is not a polygon", nil)
	}

	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeValidation, "failed to parse GeoJSON document", err)
	}
	if polygon, ok := asPolygon(geom.Geometry()); ok {
		return polygon, nil
	}
	return nil, internal.NewError(internal.ErrorCodeValidation, "GeoJSON geometry is not a polygon", nil)
}

func asPolygon(geom orb.Geometry) (orb.Polygon, bool) {
	switch g := geom.(type) {
	case orb.Polygon:
		return g, true
	case orb.MultiPolygon:
		if len(g) > 0 {
			return g[0], true
		}
	}
	return nil, false
}
