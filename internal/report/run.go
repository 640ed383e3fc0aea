package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/batch"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/config"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

// RunConfig is the configuration section of a run file
type RunConfig struct {
	ScoreThreshold   float64 `yaml:"scorethreshold" json:"score_threshold"`
	DateTolerance    int     `yaml:"datetolerance" json:"date_tolerance"`
	PositionFallback float64 `yaml:"positionfallback" json:"position_fallback"`
	Locale           string  `yaml:"locale" json:"locale"`
	Timestamp        string  `yaml:"timestamp" json:"timestamp"`
}

// BatchSummary holds the counts of one batch.
type BatchSummary struct {
	ID                        string `yaml:"id" json:"id"`
	Path                      string `yaml:"path" json:"path"`
	AltoFiles                 int    `yaml:"altofiles" json:"alto_files"`
	MetsFiles                 int    `yaml:"metsfiles" json:"mets_files"`
	FailedFiles               int    `yaml:"failedfiles" json:"failed_files"`
	TokensDropped             int    `yaml:"tokensdropped" json:"tokens_dropped"`
	Candidates                int    `yaml:"candidates" json:"candidates"`
	Kept                      int    `yaml:"kept" json:"kept"`
	Discrepancies             int    `yaml:"discrepancies" json:"discrepancies"`
	CandidatesWithoutMetadata int    `yaml:"candidateswithoutmetadata" json:"candidates_without_metadata"`
	MetadataWithoutCandidates int    `yaml:"metadatawithoutcandidates" json:"metadata_without_candidates"`
	UngroupedRecords          int    `yaml:"ungroupedrecords" json:"ungrouped_records"`
	Error                     string `yaml:"error,omitempty" json:"error,omitempty"`
}

// GroupSummary holds the outcome of one title/edition.
type GroupSummary struct {
	TitleEdition        string  `yaml:"titleedition" json:"title_edition"`
	Candidates          int     `yaml:"candidates" json:"candidates"`
	Kept                int     `yaml:"kept" json:"kept"`
	PagesWithoutDate    int     `yaml:"pageswithoutdate" json:"pages_without_date"`
	PagesWithoutDatePct float64 `yaml:"pageswithoutdatepct" json:"pages_without_date_pct"`
	Discrepancies       []Row   `yaml:"discrepancies" json:"discrepancies"`
	HTMLReport          string  `yaml:"htmlreport,omitempty" json:"html_report,omitempty"`
}

// Run is the persisted outcome of checking one batch.
type Run struct {
	ID     string         `yaml:"id" json:"id"`
	Config RunConfig      `yaml:"config" json:"config"`
	Batch  BatchSummary   `yaml:"batch" json:"batch"`
	Groups []GroupSummary `yaml:"groups" json:"groups"`
}

// Rows returns every discrepancy row of the run.
func (r *Run) Rows() []Row {
	var rows []Row
	for _, g := range r.Groups {
		rows = append(rows, g.Discrepancies...)
	}
	return rows
}

// Row is one reported discrepancy, flattened for tabular exports.
type Row struct {
	Batch         string  `yaml:"batch" json:"batch" parquet:"batch"`
	TitleEdition  string  `yaml:"titleedition" json:"title_edition" parquet:"title_edition"`
	SourceID      string  `yaml:"sourceid" json:"source_id" parquet:"source_id"`
	MetadataDate  string  `yaml:"metadatadate" json:"metadata_date" parquet:"metadata_date"`
	OcrDate       string  `yaml:"ocrdate" json:"ocr_date" parquet:"ocr_date"`
	DistanceScore int     `yaml:"distancescore" json:"distance_score" parquet:"distance_score"`
	DensityScore  float64 `yaml:"densityscore" json:"density_score" parquet:"density_score"`
	PositionScore float64 `yaml:"positionscore" json:"position_score" parquet:"position_score"`
	CombinedScore float64 `yaml:"combinedscore" json:"combined_score" parquet:"combined_score"`
	VPos          int     `yaml:"vpos" json:"vpos" parquet:"vpos"`
	HPos          int     `yaml:"hpos" json:"hpos" parquet:"hpos"`
	AccessFile    string  `yaml:"accessfile,omitempty" json:"access_file,omitempty" parquet:"access_file"`
}

// AccessFile returns the access image of an item when it exists.
func AccessFile(batchPath, sourceID string) string {
	p := filepath.Join(batchPath, sourceID, "access", sourceID+"_00001_access.jp2")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func toRow(res *batch.Result, titleEdition string, c models.ComparisonResult) Row {
	return Row{
		Batch:         res.BatchID,
		TitleEdition:  titleEdition,
		SourceID:      c.SourceID,
		MetadataDate:  models.Deref(c.MetadataDate),
		OcrDate:       c.ISODate,
		DistanceScore: c.DistanceScore,
		DensityScore:  c.DensityScore,
		PositionScore: c.PositionScore,
		CombinedScore: c.CombinedScore,
		VPos:          c.VPos,
		HPos:          c.HPos,
		AccessFile:    AccessFile(res.Path, c.SourceID),
	}
}

// NewRun summarizes a batch result.
func NewRun(res *batch.Result, cfg *config.Config, now time.Time) *Run {
	run := &Run{
		ID: uuid.NewString(),
		Config: RunConfig{
			ScoreThreshold:   cfg.ScoreThreshold,
			DateTolerance:    cfg.DateTolerance,
			PositionFallback: cfg.PositionFallback,
			Locale:           cfg.Locale,
			Timestamp:        now.Format(time.RFC3339),
		},
		Batch: BatchSummary{
			ID:                        res.BatchID,
			Path:                      res.Path,
			AltoFiles:                 res.AltoFiles,
			MetsFiles:                 res.MetsFiles,
			FailedFiles:               res.FailedFiles,
			TokensDropped:             res.TokensDropped,
			Candidates:                res.Candidates,
			Kept:                      res.KeptCandidates(),
			Discrepancies:             res.DiscrepancyCount(),
			CandidatesWithoutMetadata: res.CandidatesWithoutMetadata,
			MetadataWithoutCandidates: res.MetadataWithoutCandidates,
			UngroupedRecords:          res.UngroupedRecords,
		},
		Groups: make([]GroupSummary, 0, len(res.Groups)),
	}
	if res.Err != nil {
		run.Batch.Error = res.Err.Error()
	}

	for _, g := range res.Groups {
		gs := GroupSummary{
			TitleEdition:        g.TitleEdition,
			Candidates:          len(g.Population),
			Kept:                len(g.Kept),
			PagesWithoutDate:    g.PagesWithoutDate,
			PagesWithoutDatePct: g.PagesWithoutDatePct,
			Discrepancies:       make([]Row, 0, len(g.Discrepancies)),
		}
		for _, d := range g.Discrepancies {
			gs.Discrepancies = append(gs.Discrepancies, toRow(res, g.TitleEdition, d))
		}
		run.Groups = append(run.Groups, gs)
	}

	return run
}

// SaveRun writes the run as YAML below dir and returns the file path.
func SaveRun(run *Run, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := yaml.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s_%s.yaml", now.Format("2006-01-02_15-04-05"), run.ID[:8]))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return path, nil
}

// LoadRuns reads every run file below dir, oldest first.
func LoadRuns(dir string) ([]*Run, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if !d.IsDir() && strings.HasPrefix(name, "run_") && strings.HasSuffix(name, ".yaml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan results: %w", err)
	}
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})

	runs := make([]*Run, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read run file: %w", err)
		}
		var run Run
		if err := yaml.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("failed to parse run file %s: %w", path, err)
		}
		runs = append(runs, &run)
	}

	return runs, nil
}
