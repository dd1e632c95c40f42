package main

import (
	"context"
	"database/sql"
	"departure-optimizer-service/internal/adapters/positions"
	"departure-optimizer-service/internal/adapters/repositories"
	"departure-optimizer-service/internal/config"
	"departure-optimizer-service/internal/platform/db"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// dbtool prepares flight position data: schema, seeding and snapshot export.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dbtool: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var driver, dsn string

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Manage the flight_nodes position store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&driver, "driver", config.Get("DB_DRIVER", "sqlite"), "Database driver: pgx or sqlite")
	root.PersistentFlags().StringVar(&dsn, "database-url", defaultDSN(), "Database URL, or file path for sqlite")

	open := func(ctx context.Context) (*sql.DB, db.Dialect, error) {
		conn, dialect, err := db.OpenDriver(driver, dsn)
		if err != nil {
			return nil, "", err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, "", err
		}
		return conn, dialect, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the flight_nodes schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()
			slog.Info("schema ready")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "seed [path]",
		Short: "Load flight nodes from a JSON file (default SEED_PATH)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seedPath := config.Get("SEED_PATH", "data/seeds/flight_nodes.json")
			if len(args) == 1 {
				seedPath = args[0]
			}

			conn, dialect, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := repositories.SeedFromJSON(cmd.Context(), conn, dialect, seedPath)
			if err != nil {
				return err
			}
			slog.Info("seeding complete", "path", seedPath, "rows", n)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "snapshot <path>",
		Short: "Export every flight node to a compressed snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, dialect, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			all, err := positions.NewSQLPositionStore(conn, dialect).All(cmd.Context())
			if err != nil {
				return err
			}
			if err := positions.WriteSnapshotFile(args[0], all); err != nil {
				return err
			}
			slog.Info("snapshot written", "path", args[0], "positions", len(all))
			return nil
		},
	})

	return root
}

func defaultDSN() string {
	if config.Get("DB_DRIVER", "sqlite") == "sqlite" {
		return config.Get("DB_PATH", "data/flights.db")
	}
	return config.Get("DATABASE_URL", "")
}
