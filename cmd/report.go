package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/config"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/report"
)

func newReportCmd() *cobra.Command {
	var resultsDir string
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize or export saved check results",
		Long: `Reads the run files written by check and prints a summary or exports every
discrepancy in a tabular format.`,
		Example: `  # Print a text summary
  pubdatecheck report --results html-reports

  # Export all discrepancies to a spreadsheet
  pubdatecheck report --results html-reports --format xlsx --out discrepancies.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsDir, format, out)
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results", "html-reports", "Directory with run files")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv, xlsx, parquet)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (required for xlsx and parquet)")

	return cmd
}

func executeReport(stdout io.Writer, resultsDir, format, out string) error {
	runs, err := report.LoadRuns(resultsDir)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	var rows []report.Row
	for _, run := range runs {
		rows = append(rows, run.Rows()...)
	}

	switch format {
	case "text":
		w, closeOut, err := output(stdout, out)
		if err != nil {
			return err
		}
		defer closeOut()
		report.PrintSummary(w, runs)
		return nil
	case config.FormatJSON, config.FormatCSV:
		w, closeOut, err := output(stdout, out)
		if err != nil {
			return err
		}
		defer closeOut()
		if format == config.FormatJSON {
			return report.WriteJSON(w, rows)
		}
		return report.WriteCSV(w, rows)
	case config.FormatXLSX, config.FormatParquet:
		if out == "" {
			return fmt.Errorf("--out is required for %s", format)
		}
		return report.WriteFile(out, format, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func output(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
