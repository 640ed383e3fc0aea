package batch

import (
	"time"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

// GroupResult holds the outcome for one title/edition within a batch.
type GroupResult struct {
	TitleEdition string
	// Population is every scored candidate of the group, kept or not.
	Population    []models.ScoredCandidate
	Kept          []models.ScoredCandidate
	Compared      []models.ComparisonResult
	Discrepancies []models.ComparisonResult
	// PagesWithoutDate counts ALTO pages of the batch without a kept candidate in this group.
	PagesWithoutDate    int
	PagesWithoutDatePct float64
}

// Result is the outcome of one batch.
type Result struct {
	BatchID   string
	Path      string
	AltoFiles int
	MetsFiles int
	// FailedFiles counts ALTO or METS files that could not be read.
	FailedFiles   int
	TokensDropped int
	Candidates    int

	CandidatesWithoutMetadata int
	MetadataWithoutCandidates int
	UngroupedRecords          int

	Groups     []GroupResult
	StartedAt  time.Time
	FinishedAt time.Time

	// Err is set when the batch could not be processed at all.
	Err error
}

// KeptCandidates returns the number of candidates above threshold over all groups.
func (r *Result) KeptCandidates() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Kept)
	}
	return n
}

// DiscrepancyCount returns the number of discrepancies over all groups.
func (r *Result) DiscrepancyCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Discrepancies)
	}
	return n
}
