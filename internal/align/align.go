package align

import (
	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

// Group is the candidate population of one newspaper title/edition together with
// the metadata of the items it came from.
type Group struct {
	TitleEdition string
	Candidates   []models.DateCandidate
	Records      map[string]models.MetadataRecord
}

// Alignment is the result of joining candidates with metadata records.
type Alignment struct {
	Groups []Group

	// CandidatesWithoutMetadata counts candidates whose item has no metadata record.
	CandidatesWithoutMetadata int
	// MetadataWithoutCandidates counts records for which no candidate was found.
	MetadataWithoutCandidates int
	// UngroupedRecords lists records lacking a title or edition; their candidates
	// cannot be scored.
	UngroupedRecords []models.MetadataRecord
}

// Align joins candidates to metadata on source id and groups them by title/edition.
// Groups appear in the order their key first occurs in records. When a source id has
// several records the first one wins.
func Align(candidates []models.DateCandidate, records []models.MetadataRecord) Alignment {
	var out Alignment

	bySource := make(map[string]models.MetadataRecord, len(records))
	groupIndex := make(map[string]int)
	for _, r := range records {
		if _, dup := bySource[r.SourceID]; dup {
			continue
		}
		bySource[r.SourceID] = r

		key, ok := r.TitleEdition()
		if !ok {
			out.UngroupedRecords = append(out.UngroupedRecords, r)
			continue
		}
		if _, seen := groupIndex[key]; !seen {
			groupIndex[key] = len(out.Groups)
			out.Groups = append(out.Groups, Group{
				TitleEdition: key,
				Records:      make(map[string]models.MetadataRecord),
			})
		}
	}

	matched := make(map[string]bool)
	for _, c := range candidates {
		r, ok := bySource[c.SourceID]
		if !ok {
			out.CandidatesWithoutMetadata++
			continue
		}
		matched[c.SourceID] = true

		key, ok := r.TitleEdition()
		if !ok {
			continue
		}
		g := &out.Groups[groupIndex[key]]
		g.Candidates = append(g.Candidates, c)
		g.Records[r.SourceID] = r
	}

	for id := range bySource {
		if !matched[id] {
			out.MetadataWithoutCandidates++
		}
	}

	return out
}
