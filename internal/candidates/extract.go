package candidates

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/logging"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

const (
	maxDayDigits  = 2
	maxYearDigits = 4
)

// Extractor finds "day month year" triples in a page's OCR tokens.
// It is not safe for concurrent use; create one per worker.
type Extractor struct {
	matcher *Matcher
	sink    logging.Sink
}

// NewExtractor creates an extractor for lex. A nil sink discards diagnostics.
func NewExtractor(lex *Lexicon, sink logging.Sink) *Extractor {
	return &Extractor{
		matcher: NewMatcher(lex),
		sink:    logging.OrDiscard(sink),
	}
}

// Extract scans tokens once. Every month match with a 1-2 digit day right before it
// and a 1-4 digit year right after it yields a candidate at the month token's position.
// Anything else is skipped.
func (e *Extractor) Extract(sourceID string, tokens []models.OcrToken) []models.DateCandidate {
	var found []models.DateCandidate

	for i, tok := range tokens {
		if tok.Text == "" {
			continue
		}
		month, ok := e.matcher.MatchMonth(tok.Text)
		if !ok {
			continue
		}
		if i == 0 || i+1 >= len(tokens) {
			e.sink.Record(slog.LevelDebug, "Month match at page edge", "source_id", sourceID, "token", tok.Text, "index", i)
			continue
		}

		day := cleanNumber(tokens[i-1].Text)
		year := cleanNumber(tokens[i+1].Text)
		if !isASCIIDigits(day) || len(day) > maxDayDigits || !isASCIIDigits(year) || len(year) > maxYearDigits {
			e.sink.Record(slog.LevelDebug, "Month match without numeric neighbours",
				"source_id", sourceID, "day", tokens[i-1].Text, "month", tok.Text, "year", tokens[i+1].Text)
			continue
		}

		if len(day) == 1 {
			day = "0" + day
		}
		found = append(found, models.DateCandidate{
			SourceID: sourceID,
			ISODate:  fmt.Sprintf("%s-%02d-%s", year, month, day),
			VPos:     tok.VPos,
			HPos:     tok.HPos,
		})
	}

	return found
}
