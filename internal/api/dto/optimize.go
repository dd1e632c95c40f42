package dto

type OptimizeRequest struct {
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	Scheduled       string   `json:"scheduled"`
	DurationMinutes *float64 `json:"duration_minutes"`
	DistanceKm      *float64 `json:"distance_km"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
