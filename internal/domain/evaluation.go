package domain

import "time"

// Search phase that produced a candidate departure.
type SearchPhase string

const (
	PhaseCoarse SearchPhase = "coarse"
	PhaseRefine SearchPhase = "refine"
)

// A discrete departure time evaluated during the search.
type CandidateDeparture struct {
	DepartAt      time.Time
	OffsetMinutes int
	Phase         SearchPhase
}

// Another flight found close enough, in space and time, to a waypoint.
type OverlapCandidate struct {
	PartnerFlightID  string
	PartnerTimestamp time.Time
	PartnerLat       float64
	PartnerLon       float64
	DistanceKm       float64
	TimeDelta        time.Duration
}

// Priced segment between waypoint Index-1 and waypoint Index.
//
// Cost equals SoloCost unless the segment is connected, in which case it is
// discounted by the formation efficiency gain. Overlaps is only populated for
// connected segments.
type SegmentCost struct {
	Index     int
	SoloCost  float64
	Connected bool
	Cost      float64
	Overlaps  []OverlapCandidate
}

func (s SegmentCost) Savings() float64 { return s.SoloCost - s.Cost }

// Priced evaluation of one candidate departure. Never mutated once built.
type PathEvaluation struct {
	Departure         CandidateDeparture
	Waypoints         []Waypoint
	Segments          []SegmentCost
	TotalCost         float64
	SoloCost          float64
	Savings           float64
	SavingsPercent    float64
	ConnectedSegments int
	TotalSegments     int
}

// Outcome of a departure time search.
//
// Evaluations holds every candidate evaluated (coarse and refinement), ordered
// by offset. Chosen points at exactly one of them.
type OptimizationResult struct {
	Scheduled        time.Time
	Chosen           *PathEvaluation
	Evaluations      []*PathEvaluation
	DeadlineExceeded bool
}

// Evaluation for the given offset, or nil when that offset was not evaluated.
func (r *OptimizationResult) EvaluationAt(offsetMinutes int) *PathEvaluation {
	for _, e := range r.Evaluations {
		if e.Departure.OffsetMinutes == offsetMinutes {
			return e
		}
	}
	return nil
}
