package models

// OcrToken is a single recognized word from an ALTO page, in reading order.
type OcrToken struct {
	Text string `json:"text"`
	VPos int    `json:"vpos"`
	HPos int    `json:"hpos"`
}

// DateCandidate is date-shaped text found around a month name on a page
type DateCandidate struct {
	SourceID string `json:"source_id" yaml:"sourceid"`
	ISODate  string `json:"iso_date" yaml:"isodate"`
	VPos     int    `json:"vpos" yaml:"vpos"`
	HPos     int    `json:"hpos" yaml:"hpos"`
}

// ScoredCandidate is a DateCandidate annotated with plausibility scores.
// Scores are relative to the title/edition population the candidate was scored in.
type ScoredCandidate struct {
	DateCandidate `yaml:",inline"`
	DensityScore  float64 `json:"density_score" yaml:"densityscore"`
	PositionScore float64 `json:"position_score" yaml:"positionscore"`
	CombinedScore float64 `json:"combined_score" yaml:"combinedscore"`
}

// MetadataRecord holds the bibliographic fields of one item from METS/MODS.
// Absent fields are nil.
type MetadataRecord struct {
	SourceID string  `json:"source_id"`
	Title    *string `json:"title,omitempty"`
	Edition  *string `json:"edition,omitempty"`
	Date     *string `json:"date,omitempty"`
}

// TitleEdition returns the grouping key "title_edition".
// It reports false when the title or the edition is absent.
func (r MetadataRecord) TitleEdition() (string, bool) {
	if r.Title == nil || r.Edition == nil {
		return "", false
	}
	return *r.Title + "_" + *r.Edition, true
}

// ComparisonResult is a scored candidate compared against its metadata date
type ComparisonResult struct {
	ScoredCandidate `yaml:",inline"`
	MetadataDate    *string `json:"metadata_date,omitempty" yaml:"metadatadate,omitempty"`
	DistanceScore   int     `json:"distance_score" yaml:"distancescore"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
