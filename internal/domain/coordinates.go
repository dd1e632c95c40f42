package domain

import "fmt"

// Immutable geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) String() string { return fmt.Sprintf("(%.4f, %.4f)", c.Lat, c.Lon) }

// Return coordinates as [lon, lat] for GeoJSON-style consumers.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }
