// pkg/lv95/transformer.go - WGS84 <-> CH1903+/LV95 coordinate transformation
package lv95

import (
	"fmt"

	"github.com/paulmach/orb"
)

// ProjectionError indicates a coordinate outside the domain of validity of
// the LV95 projection. It is a terminal input error, never transient.
type ProjectionError struct {
	Point  orb.Point
	Reason string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("point (%f, %f) outside projection domain: %s", e.Point[0], e.Point[1], e.Reason)
}

// Domain of validity of the approximation series: Switzerland plus a margin.
// Outside this window the series diverges from the rigorous projection.
const (
	minLon = 4.5
	maxLon = 12.0
	minLat = 44.5
	maxLat = 49.0

	minEasting  = 2300000.0
	maxEasting  = 3000000.0
	minNorthing = 900000.0
	maxNorthing = 1500000.0
)

// Transformer converts between WGS84 geographic coordinates (EPSG:4326,
// lon/lat degrees) and Swiss LV95 projected coordinates (EPSG:2056,
// easting/northing meters). It implements swisstopo's published
// approximation series, accurate to well under a meter within Switzerland.
//
// All methods are pure; a zero Transformer is not valid, use NewTransformer.
type Transformer struct {
	geographic orb.Bound
	projected  orb.Bound
}

// NewTransformer creates a transformer with the standard LV95 domain.
func NewTransformer() *Transformer {
	return &Transformer{
		geographic: orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}},
		projected:  orb.Bound{Min: orb.Point{minEasting, minNorthing}, Max: orb.Point{maxEasting, maxNorthing}},
	}
}

// ToProjected converts a WGS84 (lon, lat) point to LV95 (easting, northing).
func (t *Transformer) ToProjected(p orb.Point) (orb.Point, error) {
	lon, lat := p[0], p[1]

	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return orb.Point{}, &ProjectionError{Point: p, Reason: "not a valid WGS84 coordinate"}
	}
	if !t.geographic.Contains(p) {
		return orb.Point{}, &ProjectionError{Point: p, Reason: "outside the LV95 area of use"}
	}

	// Auxiliary values: arc seconds relative to Bern, scaled by 1e4.
	latPrime := (lat*3600 - 169028.66) / 10000
	lonPrime := (lon*3600 - 26782.5) / 10000

	easting := 2600072.37 +
		211455.93*lonPrime -
		10938.51*lonPrime*latPrime -
		0.36*lonPrime*latPrime*latPrime -
		44.54*lonPrime*lonPrime*lonPrime

	northing := 1200147.07 +
		308807.95*latPrime +
		3745.25*lonPrime*lonPrime +
		76.63*latPrime*latPrime -
		194.56*lonPrime*lonPrime*latPrime +
		119.79*latPrime*latPrime*latPrime

	return orb.Point{easting, northing}, nil
}

// ToGeographic converts an LV95 (easting, northing) point to WGS84 (lon, lat).
func (t *Transformer) ToGeographic(p orb.Point) (orb.Point, error) {
	if !t.projected.Contains(p) {
		return orb.Point{}, &ProjectionError{Point: p, Reason: "outside the LV95 extent"}
	}

	// Auxiliary values: kilometers relative to the projection center,
	// scaled by 1e-3.
	y := (p[0] - 2600000) / 1000000
	x := (p[1] - 1200000) / 1000000

	lonPrime := 2.6779094 +
		4.728982*y +
		0.791484*y*x +
		0.1306*y*x*x -
		0.0436*y*y*y

	latPrime := 16.9023892 +
		3.238272*x -
		0.270978*y*y -
		0.002528*x*x -
		0.0447*y*y*x -
		0.0140*x*x*x

	// Unit of the primes is 10000 arc seconds.
	return orb.Point{lonPrime * 100 / 36, latPrime * 100 / 36}, nil
}

// ProjectPolygon converts every vertex of a WGS84 polygon to LV95.
func (t *Transformer) ProjectPolygon(polygon orb.Polygon) (orb.Polygon, error) {
	result := make(orb.Polygon, len(polygon))
	for i, ring := range polygon {
		projected := make(orb.Ring, len(ring))
		for j, point := range ring {
			p, err := t.ToProjected(point)
			if err != nil {
				return nil, err
			}
			projected[j] = p
		}
		result[i] = projected
	}
	return result, nil
}

// ProjectBound returns the LV95 envelope of a WGS84 polygon.
func (t *Transformer) ProjectBound(polygon orb.Polygon) (orb.Bound, error) {
	projected, err := t.ProjectPolygon(polygon)
	if err != nil {
		return orb.Bound{}, err
	}
	return projected.Bound(), nil
}
