package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/batch"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/config"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/logging"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/report"
)

func newCheckCmd(v *viper.Viper, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <batch>...",
		Short: "Check the publication dates of one or more batches",
		Long: `Checks every page of the given batch directories.

For each title/edition the date candidates found in the ALTO files are scored, the
candidates at or above the threshold are compared with the METS/MODS date, and the
pages whose dates differ by at most the tolerance are reported. Discrepancies never
make the command fail.`,
		Example: `  # Check a batch with the defaults
  pubdatecheck check /data/batches/batch_001

  # Check several batches in parallel with a stricter threshold
  pubdatecheck check --threshold 0.9 --concurrency 4 /data/batches/*

  # Also export the discrepancies as a spreadsheet
  pubdatecheck check --format html,yaml,xlsx /data/batches/batch_001`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *configFile)
			if err != nil {
				return err
			}
			return executeCheck(cmd, cfg, args)
		},
	}

	cmd.Flags().Float64("threshold", 0.8, "Minimum combined score of a date candidate")
	cmd.Flags().Int("tolerance", 2, "Largest date distance reported as a discrepancy")
	cmd.Flags().Float64("position-fallback", 1.0, "Position score used when all candidates share one line")
	cmd.Flags().StringP("output", "o", "html-reports", "Output directory for reports")
	cmd.Flags().IntP("concurrency", "j", 1, "Number of batches processed in parallel")
	cmd.Flags().StringSlice("format", []string{config.FormatHTML, config.FormatYAML}, "Report formats (html, yaml, json, csv, xlsx, parquet)")
	bindFlag(v, "score_threshold", cmd.Flags().Lookup("threshold"))
	bindFlag(v, "date_tolerance", cmd.Flags().Lookup("tolerance"))
	bindFlag(v, "position_fallback", cmd.Flags().Lookup("position-fallback"))
	bindFlag(v, "output", cmd.Flags().Lookup("output"))
	bindFlag(v, "concurrency", cmd.Flags().Lookup("concurrency"))
	bindFlag(v, "formats", cmd.Flags().Lookup("format"))

	return cmd
}

func executeCheck(cmd *cobra.Command, cfg *config.Config, dirs []string) error {
	logger, closer, err := logging.Setup(cfg.LogFile, cfg.Verbose)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	processor, err := batch.NewProcessor(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting check", "batches", len(dirs), "threshold", cfg.ScoreThreshold, "tolerance", cfg.DateTolerance)
	results, err := processor.RunAll(cmd.Context(), dirs, cfg.Concurrency)
	if err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}

	now := time.Now()
	runs := make([]*report.Run, 0, len(results))
	for _, res := range results {
		run, err := report.Save(res, cfg, now, logger)
		if err != nil {
			return fmt.Errorf("failed to save results of %s: %w", res.BatchID, err)
		}
		runs = append(runs, run)
		logger.Info("Batch checked",
			"batch", res.BatchID,
			"candidates", res.Candidates,
			"kept", res.KeptCandidates(),
			"discrepancies", res.DiscrepancyCount(),
			"duration", res.FinishedAt.Sub(res.StartedAt))
	}

	report.PrintSummary(cmd.OutOrStdout(), runs)
	return nil
}
