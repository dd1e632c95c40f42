package domain

// OptimizationReport is the engine's output contract. Field names are part of
// the stable interface consumed by the UI and must not change.
type OptimizationReport struct {
	Route         RouteSummary    `json:"route"`
	Path          PathDetail      `json:"path"`
	CostAnalysis  CostAnalysis    `json:"cost_analysis"`
	Connections   ConnectionsInfo `json:"connections"`
	Statistics    Statistics      `json:"statistics"`
	AlgorithmInfo AlgorithmInfo   `json:"algorithm_info"`
}

type RouteSummary struct {
	Origin             string  `json:"origin"`
	Destination        string  `json:"destination"`
	ScheduledDeparture string  `json:"scheduled_departure"`
	OptimalDeparture   string  `json:"optimal_departure"`
	TimeOffsetMinutes  float64 `json:"time_offset_minutes"`
}

type PathPoint struct {
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	Timestamp         string  `json:"timestamp"`
	TimeIndex         int     `json:"time_index"`
	SegmentDistanceKm float64 `json:"segment_distance_km"`
}

type PathDetail struct {
	FlightPath         []PathPoint `json:"flight_path"`
	OriginalFlightPath []PathPoint `json:"original_flight_path,omitempty"`
	TotalSegments      int         `json:"total_segments"`
	ConnectedSegments  int         `json:"connected_segments"`
	ConnectionRate     float64     `json:"connection_rate"`
}

type CostAnalysis struct {
	SoloCost                    float64 `json:"solo_cost"`
	TotalCost                   float64 `json:"total_cost"`
	TotalSavings                float64 `json:"total_savings"`
	SavingsPercent              float64 `json:"savings_percent"`
	EfficiencyGainPerConnection float64 `json:"efficiency_gain_per_connection"`
}

type ConnectionPosition struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Timestamp string  `json:"timestamp"`
}

type ConnectionPartner struct {
	FlightID  string `json:"flight_id"`
	Timestamp string `json:"timestamp"`
}

type ConnectionDetail struct {
	NodeIndex      int                `json:"node_index"`
	Position       ConnectionPosition `json:"position"`
	Partner        ConnectionPartner  `json:"partner"`
	DistanceKm     float64            `json:"distance_km"`
	EfficiencyGain float64            `json:"efficiency_gain"`
	SegmentSavings float64            `json:"segment_savings"`
}

type PartnerPathPoint struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Timestamp string  `json:"timestamp"`
}

type ConnectionsInfo struct {
	TotalPartners      int                           `json:"total_partners"`
	TotalConnections   int                           `json:"total_connections"`
	ConnectionDetails  []ConnectionDetail            `json:"connection_details"`
	PartnerFlightPaths map[string][]PartnerPathPoint `json:"partner_flight_paths,omitempty"`
}

type Statistics struct {
	AverageCostAllTimes    float64 `json:"average_cost_all_times"`
	AverageSavingsAllTimes float64 `json:"average_savings_all_times"`
	OptimalCost            float64 `json:"optimal_cost"`
	OptimalSavings         float64 `json:"optimal_savings"`
	CostReductionVsAverage float64 `json:"cost_reduction_vs_average"`
}

type AlgorithmInfo struct {
	Method                   string  `json:"method"`
	FormationEfficiencyGain  float64 `json:"formation_efficiency_gain"`
	MaxFormationDistanceKm   float64 `json:"max_formation_distance_km"`
	MaxTimeDifferenceMinutes float64 `json:"max_time_difference_minutes"`
	SearchWindowMinutes      int     `json:"search_window_minutes"`
	RefinementStepMinutes    int     `json:"refinement_step_minutes"`
	EvaluatedCandidates      int     `json:"evaluated_candidates"`
	DeadlineExceeded         bool    `json:"deadline_exceeded"`
}
