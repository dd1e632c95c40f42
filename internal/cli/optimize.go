package cli

import (
	"context"
	"departure-optimizer-service/internal/adapters/airports"
	"departure-optimizer-service/internal/adapters/positions"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/platform/db"
	"departure-optimizer-service/internal/ports"
	"departure-optimizer-service/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// sources holds the data sources opened for one run.
type sources struct {
	airports ports.AirportDirectory
	store    ports.PositionStore
	closers  []io.Closer
}

func (s *sources) Close() {
	for _, c := range s.closers {
		_ = c.Close()
	}
}

func openSources(f *optimizeFlags) (*sources, error) {
	src := &sources{}

	var chain airports.Chain
	if f.airportsCSV != "" {
		dir, err := airports.LoadCSVDirectory(f.airportsCSV)
		switch {
		case err == nil:
			chain = append(chain, dir)
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	switch {
	case f.snapshot != "":
		store, err := positions.LoadSnapshotFile(f.snapshot)
		if err != nil {
			return nil, err
		}
		src.store = store
	case f.databaseURL != "":
		conn, dialect, err := db.OpenDriver(f.dbDriver, f.databaseURL)
		if err != nil {
			return nil, err
		}
		src.closers = append(src.closers, conn)
		src.store = positions.NewSQLPositionStore(conn, dialect)
		chain = append(chain, airports.NewSQLDirectory(conn, dialect))
	default:
		return nil, errors.New("either --snapshot or --database-url is required")
	}

	if len(chain) == 0 {
		src.Close()
		return nil, fmt.Errorf("airports file %q not found and no database to fall back to", f.airportsCSV)
	}
	src.airports = chain
	return src, nil
}

func runOptimize(cmd *cobra.Command, f *optimizeFlags) error {
	src, err := openSources(f)
	if err != nil {
		return err
	}
	defer src.Close()

	req := services.OptimizeFlightRequest{
		Origin:      f.origin,
		Destination: f.dest,
		Scheduled:   f.scheduled,
		Options:     services.SearchOptions{Timeout: f.timeout},
	}
	if cmd.Flags().Changed("duration") {
		req.DurationMinutes = &f.duration
	}
	if cmd.Flags().Changed("distance") {
		req.DistanceKm = &f.distance
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := services.OptimizeFlight(ctx, req, src.airports, src.store)
	if err != nil {
		return err
	}

	if f.output != "" {
		if err := writeReportFile(f.output, report); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if f.jsonOutput {
		return outputJSON(out, report)
	}
	printReport(out, report)
	if f.output != "" {
		PrintSuccess(out, fmt.Sprintf("Report written to %s", f.output))
	}
	return nil
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReportFile(path string, report *domain.OptimizationReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := outputJSON(f, report); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write report %q: %w", path, err)
	}
	return nil
}
