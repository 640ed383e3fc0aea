package compare

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/logging"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

// Unparseable is the distance reported when either date cannot be read.
// It is a marker, never a real distance.
const Unparseable = 9999

// Distance returns |Δyear| + |Δmonth| + |Δday| between two YYYY-MM-DD dates,
// or Unparseable. Real distances are capped just below the marker.
func Distance(candidateDate, metadataDate string) int {
	a, err := parseDate(candidateDate)
	if err != nil {
		return Unparseable
	}
	m, err := parseDate(metadataDate)
	if err != nil {
		return Unparseable
	}

	d := abs(a[0]-m[0]) + abs(a[1]-m[1]) + abs(a[2]-m[2])
	if d >= Unparseable {
		return Unparseable - 1
	}
	return d
}

// IsDiscrepancy reports whether a distance is a genuine mismatch: nonzero and
// within tolerance. Larger distances are noise. Unparseable never counts,
// whatever the tolerance.
func IsDiscrepancy(distance, tolerance int) bool {
	return distance != Unparseable && distance > 0 && distance <= tolerance
}

// parseDate splits a date into year, month and day. Leading zeros are dropped;
// a component made of zeros only reads as 0.
func parseDate(date string) ([3]int, error) {
	var out [3]int

	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return out, fmt.Errorf("date %q: expected 3 components, got %d", date, len(parts))
	}

	for i, part := range parts {
		if part == "" {
			return out, fmt.Errorf("date %q: empty component", date)
		}
		for j := 0; j < len(part); j++ {
			if part[j] < '0' || part[j] > '9' {
				return out, fmt.Errorf("date %q: component %q is not numeric", date, part)
			}
		}
		trimmed := strings.TrimLeft(part, "0")
		if trimmed == "" {
			continue
		}
		if len(trimmed) > 9 {
			return out, errors.New("date component too large")
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return out, fmt.Errorf("date %q: %w", date, err)
		}
		out[i] = n
	}

	return out, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Comparator turns scored candidates into comparison results.
type Comparator struct {
	tolerance int
	sink      logging.Sink
}

// NewComparator creates a comparator. A negative tolerance is rejected.
func NewComparator(tolerance int, sink logging.Sink) (*Comparator, error) {
	if tolerance < 0 {
		return nil, fmt.Errorf("date tolerance must not be negative, got %d", tolerance)
	}
	return &Comparator{tolerance: tolerance, sink: logging.OrDiscard(sink)}, nil
}

// Tolerance returns the largest distance still classified as a discrepancy.
func (c *Comparator) Tolerance() int {
	return c.tolerance
}

// Compare compares one candidate with the metadata date of its item.
func (c *Comparator) Compare(candidate models.ScoredCandidate, metadataDate *string) models.ComparisonResult {
	result := models.ComparisonResult{
		ScoredCandidate: candidate,
		MetadataDate:    metadataDate,
		DistanceScore:   Unparseable,
	}

	if metadataDate == nil {
		c.sink.Record(slog.LevelWarn, "Metadata date missing", "source_id", candidate.SourceID)
		return result
	}

	result.DistanceScore = Distance(candidate.ISODate, *metadataDate)
	if result.DistanceScore == Unparseable {
		c.sink.Record(slog.LevelWarn, "Could not parse dates for comparison",
			"source_id", candidate.SourceID, "ocr_date", candidate.ISODate, "metadata_date", *metadataDate)
	}
	return result
}

// Discrepancies keeps the genuine mismatches.
func (c *Comparator) Discrepancies(results []models.ComparisonResult) []models.ComparisonResult {
	var out []models.ComparisonResult
	for _, r := range results {
		if IsDiscrepancy(r.DistanceScore, c.tolerance) {
			out = append(out, r)
		}
	}
	return out
}
