// Package cli is the command-line caller of the departure optimizer.
package cli

import (
	"log/slog"
	"time"

	"departure-optimizer-service/internal/config"
	"departure-optimizer-service/internal/platform/obs"

	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

type optimizeFlags struct {
	origin      string
	dest        string
	scheduled   string
	duration    float64
	distance    float64
	jsonOutput  bool
	airportsCSV string
	output      string
	snapshot    string
	databaseURL string
	dbDriver    string
	timeout     time.Duration
	logLevel    string
}

// NewRootCmd builds the optimize command. Defaults for data sources come
// from the environment so the CLI and the server share configuration.
func NewRootCmd() *cobra.Command {
	f := &optimizeFlags{}

	cmd := &cobra.Command{
		Use:     "optimize",
		Version: version,
		Short:   "Find the departure time with the most formation flight savings",
		Long: `optimize searches a window around a flight's scheduled departure for the
departure time whose path overlaps other flights the most, and reports the
cost savings of flying in formation.`,
		Example: `  optimize --origin JFK --dest LAX --scheduled "2013-01-01 08:00" --snapshot flights.msgpack.zst
  optimize --origin JFK --dest LAX --scheduled "2013-01-01 08:00" --duration 330 --json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, _, err := obs.NewLogger(f.logLevel, "")
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.origin, "origin", "", "Origin airport code (IATA or ICAO)")
	fl.StringVar(&f.dest, "dest", "", "Destination airport code (IATA or ICAO)")
	fl.StringVar(&f.scheduled, "scheduled", "", `Scheduled departure, "YYYY-MM-DD HH:MM[:SS]" (UTC) or RFC 3339`)
	fl.Float64Var(&f.duration, "duration", 0, "Flight duration in minutes")
	fl.Float64Var(&f.distance, "distance", 0, "Flight distance in kilometers")
	fl.BoolVar(&f.jsonOutput, "json", false, "Print the report as JSON")
	fl.StringVar(&f.airportsCSV, "airports", config.Get("AIRPORTS_CSV", "data/airports.csv"), "Airport coordinates CSV (IATA,latitude,longitude)")
	fl.StringVarP(&f.output, "output", "o", "", "Also write the JSON report to this file")
	fl.StringVar(&f.snapshot, "snapshot", config.Get("SNAPSHOT_PATH", ""), "Flight position snapshot file")
	fl.StringVar(&f.databaseURL, "database-url", config.Get("DATABASE_URL", ""), "Flight position database (used when no snapshot is given)")
	fl.StringVar(&f.dbDriver, "db-driver", config.Get("DB_DRIVER", "sqlite"), "Database driver: pgx or sqlite")
	fl.DurationVar(&f.timeout, "timeout", 30*time.Second, "Search deadline; the best result so far is reported when it expires (0 disables)")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", config.Get("LOG_LEVEL", "warn"), "Log level: debug, info, warn or error")

	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("dest")
	_ = cmd.MarkFlagRequired("scheduled")

	return cmd
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
