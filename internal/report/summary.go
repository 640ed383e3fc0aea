package report

import (
	"fmt"
	"io"
)

const rule = "========================================"

// PrintSummary writes a plain text overview of runs.
func PrintSummary(w io.Writer, runs []*Run) {
	totalDiscrepancies := 0
	failed := 0
	for _, run := range runs {
		totalDiscrepancies += run.Batch.Discrepancies
		if run.Batch.Error != "" {
			failed++
		}
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Publication Date Check Summary")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Runs:               %d\n", len(runs))
	fmt.Fprintf(w, "Failed Batches:     %d\n", failed)
	fmt.Fprintf(w, "Discrepancies:      %d\n", totalDiscrepancies)

	for _, run := range runs {
		b := run.Batch
		fmt.Fprintf(w, "\n[%s] %s\n", b.ID, run.Config.Timestamp)
		if b.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", b.Error)
			continue
		}
		fmt.Fprintf(w, "  Threshold: %.2f  Tolerance: %d\n", run.Config.ScoreThreshold, run.Config.DateTolerance)
		fmt.Fprintf(w, "  ALTO files: %d  METS files: %d  Failed files: %d\n", b.AltoFiles, b.MetsFiles, b.FailedFiles)
		fmt.Fprintf(w, "  Candidates: %d  Kept: %d  Discrepancies: %d\n", b.Candidates, b.Kept, b.Discrepancies)
		if b.CandidatesWithoutMetadata > 0 || b.MetadataWithoutCandidates > 0 || b.UngroupedRecords > 0 {
			fmt.Fprintf(w, "  Without metadata: %d  Without candidates: %d  Ungrouped: %d\n",
				b.CandidatesWithoutMetadata, b.MetadataWithoutCandidates, b.UngroupedRecords)
		}
		for _, g := range run.Groups {
			fmt.Fprintf(w, "  %s: %d/%d kept, %d pages without date (%.1f%%), %d discrepancies\n",
				g.TitleEdition, g.Kept, g.Candidates, g.PagesWithoutDate, g.PagesWithoutDatePct, len(g.Discrepancies))
			for _, d := range g.Discrepancies {
				fmt.Fprintf(w, "    %s: metadata %s, ocr %s (distance %d, score %.2f)\n",
					d.SourceID, d.MetadataDate, d.OcrDate, d.DistanceScore, d.CombinedScore)
			}
		}
	}
	fmt.Fprintln(w, rule)
}
