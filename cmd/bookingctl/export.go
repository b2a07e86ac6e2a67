package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fleetdesk/booking-intake/internal/common"
	"github.com/fleetdesk/booking-intake/internal/export"
	"github.com/fleetdesk/booking-intake/internal/repository"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run's records to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		out := exportOut
		if out == "" {
			out = "bookings-" + runID.String() + ".xlsx"
		}

		cfg := common.LoadConfig()
		if cfg.Database.DSN == "" {
			return fmt.Errorf("DB_URL is required")
		}

		logger := slog.Default()
		ctx := cmd.Context()
		pool, err := repository.Open(ctx, repository.Config{
			DSN:         cfg.Database.DSN,
			MaxConns:    2,
			DialTimeout: cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer repository.Close(pool, logger)

		runs := repository.NewRunRepository(pool, logger)
		raw, err := export.NewService(runs, logger).ExportRunXLSX(ctx, runID)
		if err != nil {
			return fmt.Errorf("exporting run: %w", err)
		}
		if err := os.WriteFile(out, raw, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default bookings-<run-id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
