// Package geo holds the great-circle primitives used to synthesize and
// measure flight paths. All functions are pure.
package geo

import (
	"departure-optimizer-service/internal/domain"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

const kmPerDegreeLat = math.Pi * EarthRadiusKm / 180

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

// Validate reports whether c lies within the valid latitude/longitude ranges.
func Validate(c domain.Coordinates) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) ||
		c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return &domain.InvalidCoordinateError{Lat: c.Lat, Lon: c.Lon}
	}
	return nil
}

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b domain.Coordinates) (float64, error) {
	if err := Validate(a); err != nil {
		return 0, err
	}
	if err := Validate(b); err != nil {
		return 0, err
	}
	return haversine(a, b), nil
}

func haversine(a, b domain.Coordinates) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dlat := lat2 - lat1
	dlon := rad(b.Lon - a.Lon)

	x := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(x), math.Sqrt(1-x))

	return EarthRadiusKm * c
}

// Interpolate returns the point at the given fraction of the great circle
// from a to b. The fraction is clamped to [0, 1].
//
// For antipodal endpoints the great circle is not unique; a linear
// latitude/longitude interpolation is used instead.
func Interpolate(a, b domain.Coordinates, fraction float64) (domain.Coordinates, error) {
	if err := Validate(a); err != nil {
		return domain.Coordinates{}, err
	}
	if err := Validate(b); err != nil {
		return domain.Coordinates{}, err
	}

	f := math.Max(0, math.Min(1, fraction))
	if f == 0 || a == b {
		return a, nil
	}
	if f == 1 {
		return b, nil
	}

	d := haversine(a, b) / EarthRadiusKm
	sinD := math.Sin(d)
	if sinD < 1e-12 {
		return domain.Coordinates{
			Lat: a.Lat + (b.Lat-a.Lat)*f,
			Lon: a.Lon + (b.Lon-a.Lon)*f,
		}, nil
	}

	lat1, lon1 := rad(a.Lat), rad(a.Lon)
	lat2, lon2 := rad(b.Lat), rad(b.Lon)

	wa := math.Sin((1-f)*d) / sinD
	wb := math.Sin(f*d) / sinD

	x := wa*math.Cos(lat1)*math.Cos(lon1) + wb*math.Cos(lat2)*math.Cos(lon2)
	y := wa*math.Cos(lat1)*math.Sin(lon1) + wb*math.Cos(lat2)*math.Sin(lon2)
	z := wa*math.Sin(lat1) + wb*math.Sin(lat2)

	return domain.Coordinates{
		Lat: deg(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Lon: deg(math.Atan2(y, x)),
	}, nil
}

// Box is an axis-aligned latitude/longitude rectangle.
// When WrapsLon is set the longitude range crosses the antimeridian and
// callers should not filter on longitude.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	WrapsLon       bool
}

// BoundingBox returns a box enclosing every point within radiusKm of c.
// It is meant as a cheap prefilter ahead of an exact Distance check.
func BoundingBox(c domain.Coordinates, radiusKm float64) Box {
	dLat := radiusKm / kmPerDegreeLat

	b := Box{
		MinLat: math.Max(-90, c.Lat-dLat),
		MaxLat: math.Min(90, c.Lat+dLat),
	}

	// Near the poles every longitude is within reach.
	cosLat := math.Cos(rad(math.Max(math.Abs(b.MinLat), math.Abs(b.MaxLat))))
	if cosLat < 1e-6 {
		b.MinLon, b.MaxLon, b.WrapsLon = -180, 180, true
		return b
	}

	dLon := radiusKm / (kmPerDegreeLat * cosLat)
	b.MinLon, b.MaxLon = c.Lon-dLon, c.Lon+dLon
	if b.MinLon < -180 || b.MaxLon > 180 {
		b.MinLon, b.MaxLon, b.WrapsLon = -180, 180, true
	}
	return b
}

// Contains reports whether c lies inside the box.
func (b Box) Contains(c domain.Coordinates) bool {
	if c.Lat < b.MinLat || c.Lat > b.MaxLat {
		return false
	}
	return b.WrapsLon || (c.Lon >= b.MinLon && c.Lon <= b.MaxLon)
}
