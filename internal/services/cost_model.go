package services

import "departure-optimizer-service/internal/domain"

// Fractional cost reduction of a segment flown in formation.
const FormationEfficiencyGain = 0.05

// PriceSegment prices the segment ending at waypoint index. It is connected
// iff overlaps is non-empty. Non-positive distances price as zero.
func PriceSegment(index int, distanceKm float64, overlaps []domain.OverlapCandidate) domain.SegmentCost {
	seg := domain.SegmentCost{
		Index:     index,
		Connected: len(overlaps) > 0,
	}
	if distanceKm > 0 {
		seg.SoloCost = distanceKm
	}

	seg.Cost = seg.SoloCost
	if seg.Connected {
		seg.Cost = seg.SoloCost * (1 - FormationEfficiencyGain)
		seg.Overlaps = overlaps
	}
	return seg
}

// PriceEvaluation prices every segment of a synthesized path.
// Segment i joins waypoints i-1 and i and is connected when waypoint i has
// overlaps. Missing overlap entries count as none.
func PriceEvaluation(
	departure domain.CandidateDeparture,
	waypoints []domain.Waypoint,
	overlapsPerWaypoint [][]domain.OverlapCandidate,
) *domain.PathEvaluation {
	ev := &domain.PathEvaluation{
		Departure: departure,
		Waypoints: waypoints,
	}
	if len(waypoints) > 1 {
		ev.Segments = make([]domain.SegmentCost, 0, len(waypoints)-1)
	}

	for i := 1; i < len(waypoints); i++ {
		var overlaps []domain.OverlapCandidate
		if i < len(overlapsPerWaypoint) {
			overlaps = overlapsPerWaypoint[i]
		}

		seg := PriceSegment(i, waypoints[i].SegmentDistanceKm, overlaps)
		ev.Segments = append(ev.Segments, seg)

		ev.SoloCost += seg.SoloCost
		ev.TotalCost += seg.Cost
		if seg.Connected {
			ev.ConnectedSegments++
		}
	}

	ev.TotalSegments = len(ev.Segments)
	ev.Savings = ev.SoloCost - ev.TotalCost
	if ev.SoloCost > 0 {
		ev.SavingsPercent = ev.Savings / ev.SoloCost * 100
	}
	return ev
}
