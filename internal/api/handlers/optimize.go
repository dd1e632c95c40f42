package handlers

import (
	"context"
	"departure-optimizer-service/internal/api/dto"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/obs"
	"departure-optimizer-service/internal/ports"
	"departure-optimizer-service/internal/services"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

const maxBodyBytes = 1 << 16

type OptimizeHandler struct {
	Airports ports.AirportDirectory
	Store    ports.PositionStore
	Options  services.SearchOptions
}

// Optimize runs a departure time search for one flight and returns the
// optimization report.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	svcReq := services.OptimizeFlightRequest{
		Origin:          req.Origin,
		Destination:     req.Destination,
		Scheduled:       req.Scheduled,
		DurationMinutes: req.DurationMinutes,
		DistanceKm:      req.DistanceKm,
		Options:         h.Options,
	}

	report, err := services.OptimizeFlight(r.Context(), svcReq, h.Airports, h.Store)
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "optimize flight failed", "req_id", obs.RequestID(r.Context()), "err", err)
		}
		writeJSON(w, r, status, body)
		return
	}

	writeJSON(w, r, http.StatusOK, report)
}

// Map engine errors to HTTP responses. Internal details are not exposed for
// server-side failures.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		validation *domain.ValidationError
		unknown    *domain.UnknownAirportError
		route      *domain.InvalidRouteError
		coord      *domain.InvalidCoordinateError
		store      *domain.ExternalStoreError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, dto.ErrorResponse{Error: validation.Error(), Field: validation.Field}
	case errors.As(err, &unknown):
		return http.StatusNotFound, dto.ErrorResponse{Error: unknown.Error()}
	case errors.As(err, &route):
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Error: route.Error()}
	case errors.As(err, &coord):
		return http.StatusUnprocessableEntity, dto.ErrorResponse{Error: coord.Error()}
	case errors.As(err, &store):
		return http.StatusBadGateway, dto.ErrorResponse{Error: "flight position store unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, dto.ErrorResponse{Error: "optimization timed out"}
	default:
		return http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"}
	}
}
