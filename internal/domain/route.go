package domain

import "time"

// Represents the flight to optimize: a pair of resolved airport positions and
// optional schedule hints. A Route is immutable for the duration of a request.
//
// DurationMinutes and DistanceKm are nil when the caller did not supply them.
type Route struct {
	OriginCode      string
	DestinationCode string
	Origin          *Coordinates
	Destination     *Coordinates
	DurationMinutes *float64
	DistanceKm      *float64
}

// Represents a single synthesized position along a candidate flight path.
// SegmentDistanceKm is the great-circle distance from the previous waypoint
// and is 0 for the first one.
type Waypoint struct {
	Lat               float64
	Lon               float64
	Timestamp         time.Time
	TimeIndex         int
	SegmentDistanceKm float64
}

func (w Waypoint) Coordinates() Coordinates { return Coordinates{Lat: w.Lat, Lon: w.Lon} }

// Represents a recorded position of another flight, as returned by the
// flight position store.
type FlightPosition struct {
	FlightID  string    `msgpack:"flight_id"`
	Lat       float64   `msgpack:"lat"`
	Lon       float64   `msgpack:"lon"`
	Timestamp time.Time `msgpack:"ts"`
	Origin    string    `msgpack:"origin,omitempty"`
	Dest      string    `msgpack:"dest,omitempty"`
}

func (p FlightPosition) Coordinates() Coordinates { return Coordinates{Lat: p.Lat, Lon: p.Lon} }
