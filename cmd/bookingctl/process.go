package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleetdesk/booking-intake/internal/common"
	"github.com/fleetdesk/booking-intake/internal/export"
	"github.com/fleetdesk/booking-intake/internal/llm/openai"
	"github.com/fleetdesk/booking-intake/internal/lookup"
	"github.com/fleetdesk/booking-intake/internal/pipeline"
)

var (
	processSourceType string
	processJSONInput  bool
	processOut        string
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run one booking request through the pipeline",
	Long: `Reads a booking request from the given file (or stdin) and runs the
classify/extract/validate pipeline locally, without the daemon or a database.

By default the input is treated as raw text. With --json the input must be an
intake document: {"text": "...", "tables": [...], "source_type": "..."}.

The result envelope is printed as JSON; --out additionally writes the records
to an XLSX workbook.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(args)
		if err != nil {
			return err
		}

		var content pipeline.IntakeContent
		if processJSONInput {
			if err := json.Unmarshal(raw, &content); err != nil {
				return fmt.Errorf("parsing intake document: %w", err)
			}
		} else {
			content.Text = string(raw)
		}
		if processSourceType != "" {
			content.SourceType = processSourceType
		}

		cfg := common.LoadConfig()
		tables, err := lookup.FromPaths(
			cfg.Lookup.CorporatesPath, cfg.Lookup.CitiesPath,
			cfg.Lookup.VehiclesPath, cfg.Lookup.RoutesPath,
		)
		if err != nil {
			return fmt.Errorf("loading lookup tables: %w", err)
		}

		logger := slog.Default()
		classifier := pipeline.NewClassifier(nil, nil, logger)
		extractor := pipeline.NewExtractor(nil, logger)
		if cfg.LLM.APIKey != "" {
			oracle := openai.NewClient(openai.Config{
				APIKey:      cfg.LLM.APIKey,
				Model:       cfg.LLM.Model,
				Temperature: cfg.LLM.Temperature,
				Timeout:     cfg.LLM.Timeout,
			}, logger)
			classifier = pipeline.NewClassifier(oracle, nil, logger)
			extractor = pipeline.NewExtractor(oracle, logger)
		}

		orchestrator := pipeline.NewOrchestrator(
			classifier, extractor, pipeline.NewValidator(tables, logger), nil, logger)

		result := orchestrator.Run(cmd.Context(), content)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}

		if processOut != "" {
			records := result.Records
			if len(records) == 0 {
				records = result.PartialRecords
			}
			raw, err := export.WorkbookBytes(records)
			if err != nil {
				return fmt.Errorf("building workbook: %w", err)
			}
			if err := os.WriteFile(processOut, raw, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", processOut, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", len(records), processOut)
		}

		if !result.Success {
			return fmt.Errorf("run failed: %s", result.ErrorMessage)
		}
		return nil
	},
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

func init() {
	processCmd.Flags().StringVar(&processSourceType, "source-type", "", "content source: email_text, ocr_table, form")
	processCmd.Flags().BoolVar(&processJSONInput, "json", false, "treat input as an intake JSON document")
	processCmd.Flags().StringVar(&processOut, "out", "", "write extracted records to this XLSX file")
	rootCmd.AddCommand(processCmd)
}
