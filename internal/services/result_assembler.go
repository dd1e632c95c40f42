package services

import (
	"departure-optimizer-service/internal/domain"
	"errors"
	"fmt"
	"sort"
	"time"
)

const searchMethod = "time_window_search_with_refinement"

// AssembleReport formats a search result into the report returned to callers.
// partnerPaths may be nil; flights without a path are left out.
func AssembleReport(
	route domain.Route,
	result *domain.OptimizationResult,
	opts SearchOptions,
	partnerPaths map[string][]domain.FlightPosition,
) (*domain.OptimizationReport, error) {
	if result == nil || result.Chosen == nil {
		return nil, errors.New("assemble report: result has no chosen evaluation")
	}
	opts = opts.withDefaults()
	chosen := result.Chosen

	original, err := scheduledPath(route, result)
	if err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	report := &domain.OptimizationReport{
		Route: domain.RouteSummary{
			Origin:             route.OriginCode,
			Destination:        route.DestinationCode,
			ScheduledDeparture: formatTime(result.Scheduled),
			OptimalDeparture:   formatTime(chosen.Departure.DepartAt),
			TimeOffsetMinutes:  float64(chosen.Departure.OffsetMinutes),
		},
		Path: domain.PathDetail{
			FlightPath:         pathPoints(chosen.Waypoints),
			OriginalFlightPath: pathPoints(original),
			TotalSegments:      chosen.TotalSegments,
			ConnectedSegments:  chosen.ConnectedSegments,
			ConnectionRate:     percent(float64(chosen.ConnectedSegments), float64(chosen.TotalSegments)),
		},
		CostAnalysis: domain.CostAnalysis{
			SoloCost:                    chosen.SoloCost,
			TotalCost:                   chosen.TotalCost,
			TotalSavings:                chosen.Savings,
			SavingsPercent:              chosen.SavingsPercent,
			EfficiencyGainPerConnection: FormationEfficiencyGain * 100,
		},
		Connections: domain.ConnectionsInfo{
			TotalPartners:     len(PartnerFlightIDs(chosen)),
			ConnectionDetails: connectionDetails(chosen),
		},
		Statistics: statistics(result),
		AlgorithmInfo: domain.AlgorithmInfo{
			Method:                   searchMethod,
			FormationEfficiencyGain:  FormationEfficiencyGain * 100,
			MaxFormationDistanceKm:   MaxFormationDistanceKm,
			MaxTimeDifferenceMinutes: MaxTimeDifference.Minutes(),
			SearchWindowMinutes:      opts.WindowMinutes,
			RefinementStepMinutes:    opts.RefineStepMinutes,
			EvaluatedCandidates:      len(result.Evaluations),
			DeadlineExceeded:         result.DeadlineExceeded,
		},
	}
	report.Connections.TotalConnections = len(report.Connections.ConnectionDetails)

	for _, id := range ConnectionPartnerIDs(chosen) {
		track, ok := partnerPaths[id]
		if !ok || len(track) == 0 {
			continue
		}
		if report.Connections.PartnerFlightPaths == nil {
			report.Connections.PartnerFlightPaths = make(map[string][]domain.PartnerPathPoint)
		}
		points := make([]domain.PartnerPathPoint, 0, len(track))
		for _, p := range track {
			points = append(points, domain.PartnerPathPoint{Lat: p.Lat, Lon: p.Lon, Timestamp: formatTime(p.Timestamp)})
		}
		report.Connections.PartnerFlightPaths[id] = points
	}

	return report, nil
}

// PartnerFlightIDs returns every distinct flight overlapping a connected
// segment of ev, sorted.
func PartnerFlightIDs(ev *domain.PathEvaluation) []string {
	seen := make(map[string]struct{})
	for _, seg := range ev.Segments {
		for _, o := range seg.Overlaps {
			seen[o.PartnerFlightID] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// ConnectionPartnerIDs returns the nearest partner of each connected segment
// of ev, deduplicated and sorted.
func ConnectionPartnerIDs(ev *domain.PathEvaluation) []string {
	seen := make(map[string]struct{})
	for _, seg := range ev.Segments {
		if seg.Connected {
			seen[seg.Overlaps[0].PartnerFlightID] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func scheduledPath(route domain.Route, result *domain.OptimizationResult) ([]domain.Waypoint, error) {
	if ev := result.EvaluationAt(0); ev != nil {
		return ev.Waypoints, nil
	}
	return SynthesizePath(route, result.Scheduled)
}

func connectionDetails(ev *domain.PathEvaluation) []domain.ConnectionDetail {
	out := make([]domain.ConnectionDetail, 0, ev.ConnectedSegments)
	for _, seg := range ev.Segments {
		if !seg.Connected {
			continue
		}
		wp := ev.Waypoints[seg.Index]
		nearest := seg.Overlaps[0]

		out = append(out, domain.ConnectionDetail{
			NodeIndex: seg.Index,
			Position: domain.ConnectionPosition{
				Lat:       wp.Lat,
				Lon:       wp.Lon,
				Timestamp: formatTime(wp.Timestamp),
			},
			Partner: domain.ConnectionPartner{
				FlightID:  nearest.PartnerFlightID,
				Timestamp: formatTime(nearest.PartnerTimestamp),
			},
			DistanceKm:     nearest.DistanceKm,
			EfficiencyGain: FormationEfficiencyGain * 100,
			SegmentSavings: seg.Savings(),
		})
	}
	return out
}

func statistics(result *domain.OptimizationResult) domain.Statistics {
	var costSum, savingsSum float64
	for _, ev := range result.Evaluations {
		costSum += ev.TotalCost
		savingsSum += ev.Savings
	}

	stats := domain.Statistics{
		OptimalCost:    result.Chosen.TotalCost,
		OptimalSavings: result.Chosen.Savings,
	}
	if n := float64(len(result.Evaluations)); n > 0 {
		stats.AverageCostAllTimes = costSum / n
		stats.AverageSavingsAllTimes = savingsSum / n
	}
	if stats.AverageCostAllTimes > 0 {
		stats.CostReductionVsAverage = (stats.AverageCostAllTimes - stats.OptimalCost) / stats.AverageCostAllTimes * 100
	}
	return stats
}

func pathPoints(waypoints []domain.Waypoint) []domain.PathPoint {
	out := make([]domain.PathPoint, 0, len(waypoints))
	for _, wp := range waypoints {
		out = append(out, domain.PathPoint{
			Lat:               wp.Lat,
			Lon:               wp.Lon,
			Timestamp:         formatTime(wp.Timestamp),
			TimeIndex:         wp.TimeIndex,
			SegmentDistanceKm: wp.SegmentDistanceKm,
		})
	}
	return out
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
