package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/align"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/alto"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/candidates"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/compare"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/config"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/logging"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/mets"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/scoring"
)

// Processor runs the date check on batch directories.
// It is safe for concurrent use; each Process call builds its own pipeline.
type Processor struct {
	cfg    *config.Config
	lex    *candidates.Lexicon
	logger *slog.Logger
}

// NewProcessor validates cfg and creates a processor.
func NewProcessor(cfg *config.Config, logger *slog.Logger) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	lex, err := cfg.Lexicon()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{cfg: cfg, lex: lex, logger: logger}, nil
}

// Process checks one batch directory.
func (p *Processor) Process(ctx context.Context, dir string) (*Result, error) {
	res := &Result{
		BatchID:   ID(dir),
		Path:      dir,
		StartedAt: time.Now(),
	}
	logger := p.logger.With("batch", res.BatchID)
	sink := logging.NewSink(logger)

	logger.Info("=== Start batch ===", "path", dir)

	files, err := Discover(dir, p.cfg.AltoSuffix, p.cfg.MetsSuffix)
	if err != nil {
		return nil, err
	}
	res.AltoFiles = len(files.Alto)
	res.MetsFiles = len(files.Mets)
	logger.Info("Found input files", "alto", res.AltoFiles, "mets", res.MetsFiles)

	extractor := candidates.NewExtractor(p.lex, sink)
	scorer, err := scoring.NewScorer(p.cfg.PositionFallback, sink)
	if err != nil {
		return nil, err
	}
	comparator, err := compare.NewComparator(p.cfg.DateTolerance, sink)
	if err != nil {
		return nil, err
	}

	var found []models.DateCandidate
	for i, path := range files.Alto {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sourceID := SourceID(path, p.cfg.AltoSuffix)
		logger.Debug("Processing ALTO", "source_id", sourceID, "progress", fmt.Sprintf("%d/%d", i+1, len(files.Alto)))

		page, err := alto.ReadFile(path)
		if err != nil {
			logger.Error("Failed to read ALTO", "path", path, "err", err)
			res.FailedFiles++
			continue
		}
		logger.Debug("Read ALTO file", "source_id", sourceID, "tokens", len(page.Tokens), "dropped", page.Dropped)
		res.TokensDropped += page.Dropped
		found = append(found, extractor.Extract(sourceID, page.Tokens)...)
	}
	res.Candidates = len(found)

	records := make([]models.MetadataRecord, 0, len(files.Mets))
	for _, path := range files.Mets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := mets.ReadFile(path, p.cfg.MetsSuffix)
		if err != nil {
			logger.Error("Failed to read METS", "path", path, "err", err)
			res.FailedFiles++
		} else {
			logger.Debug("Read METS file", "source_id", record.SourceID,
				"title", models.Deref(record.Title), "date", models.Deref(record.Date))
		}
		records = append(records, record)
	}

	alignment := align.Align(found, records)
	res.CandidatesWithoutMetadata = alignment.CandidatesWithoutMetadata
	res.MetadataWithoutCandidates = alignment.MetadataWithoutCandidates
	res.UngroupedRecords = len(alignment.UngroupedRecords)
	if res.CandidatesWithoutMetadata > 0 {
		logger.Warn("Dates found without metadata", "candidates", res.CandidatesWithoutMetadata)
	}
	if res.MetadataWithoutCandidates > 0 {
		logger.Warn("Metadata without detected date", "records", res.MetadataWithoutCandidates)
	}
	if res.UngroupedRecords > 0 {
		logger.Warn("Metadata records without title or edition", "records", res.UngroupedRecords)
	}

	altoIDs := make([]string, len(files.Alto))
	for i, path := range files.Alto {
		altoIDs[i] = SourceID(path, p.cfg.AltoSuffix)
	}

	for _, group := range alignment.Groups {
		logger.Info("Analysing title", "title_edition", group.TitleEdition)
		if len(group.Candidates) == 0 {
			logger.Warn("No data found for title", "title_edition", group.TitleEdition)
			continue
		}
		res.Groups = append(res.Groups, p.processGroup(logger, group, altoIDs, scorer, comparator))
	}

	res.FinishedAt = time.Now()
	logger.Info("Batch finished",
		"candidates", res.Candidates,
		"kept", res.KeptCandidates(),
		"discrepancies", res.DiscrepancyCount(),
		"duration", res.FinishedAt.Sub(res.StartedAt))
	return res, nil
}

func (p *Processor) processGroup(logger *slog.Logger, group align.Group, altoIDs []string, scorer *scoring.Scorer, comparator *compare.Comparator) GroupResult {
	out := GroupResult{TitleEdition: group.TitleEdition}
	logger = logger.With("title_edition", group.TitleEdition)

	out.Population = scorer.Score(group.Candidates)
	out.Kept = scoring.Filter(out.Population, p.cfg.ScoreThreshold)
	logger.Info("Pages with probable date", "kept", len(out.Kept), "threshold", p.cfg.ScoreThreshold)

	withDate := make(map[string]bool, len(out.Kept))
	for _, c := range out.Kept {
		withDate[c.SourceID] = true
	}
	for _, id := range altoIDs {
		if !withDate[id] {
			out.PagesWithoutDate++
		}
	}
	if out.PagesWithoutDate > 0 && len(altoIDs) > 0 {
		out.PagesWithoutDatePct = percentage(out.PagesWithoutDate, len(altoIDs))
		logger.Warn("No publication date found", "files", out.PagesWithoutDate, "percent", out.PagesWithoutDatePct)
	}

	out.Compared = make([]models.ComparisonResult, 0, len(out.Kept))
	for _, c := range out.Kept {
		out.Compared = append(out.Compared, comparator.Compare(c, group.Records[c.SourceID].Date))
	}
	out.Discrepancies = comparator.Discrepancies(out.Compared)

	if len(out.Discrepancies) > 0 {
		logger.Error("Possible date errors found", "count", len(out.Discrepancies))
	} else {
		logger.Info("No date errors found")
	}
	return out
}

// percentage is n/total in percent with one decimal, rounding halves to even.
func percentage(n, total int) float64 {
	return math.RoundToEven(float64(n)/float64(total)*1000) / 10
}
