package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/batch"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/config"
)

// Save writes every configured output of a batch result below cfg.Output/<batch>.
// HTML reports are only written for groups that have discrepancies.
func Save(res *batch.Result, cfg *config.Config, now time.Time, logger *slog.Logger) (*Run, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("batch", res.BatchID)
	dir := filepath.Join(cfg.Output, res.BatchID)
	run := NewRun(res, cfg, now)

	if cfg.HasFormat(config.FormatHTML) {
		for i, g := range res.Groups {
			if len(g.Discrepancies) == 0 {
				continue
			}
			path, err := WriteHTML(dir, res, g, cfg.ScoreThreshold, now, logger)
			if err != nil {
				return run, err
			}
			run.Groups[i].HTMLReport = path
			logger.Info("HTML report saved", "path", path, "title_edition", g.TitleEdition)
		}
	}

	if cfg.HasFormat(config.FormatYAML) {
		path, err := SaveRun(run, dir, now)
		if err != nil {
			return run, err
		}
		logger.Info("Run saved", "path", path)
	}

	rows := run.Rows()
	stamp := now.Format("2006-01-02_15-04-05")
	base := filepath.Join(dir, "discrepancies_"+stamp)
	for _, format := range cfg.Formats {
		if format == config.FormatHTML || format == config.FormatYAML {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return run, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := WriteFile(base+"."+format, format, rows); err != nil {
			return run, err
		}
		logger.Info("Discrepancies exported", "path", base+"."+format)
	}

	return run, nil
}

// WriteFile exports rows to path in the given tabular format.
func WriteFile(path, format string, rows []Row) error {
	switch format {
	case config.FormatXLSX:
		return WriteXLSX(path, rows)
	case config.FormatParquet:
		return WriteParquet(path, rows)
	case config.FormatCSV, config.FormatJSON:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create export: %w", err)
		}
		defer f.Close()
		if format == config.FormatCSV {
			return WriteCSV(f, rows)
		}
		return WriteJSON(f, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
