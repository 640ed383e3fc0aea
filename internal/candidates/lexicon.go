package candidates

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MatchThreshold is the fuzzy ratio a token must exceed to count as a month name.
const MatchThreshold = 80.0

// Month is one entry of a month lexicon.
type Month struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Number int    `mapstructure:"number" yaml:"number"`
}

// Lexicon is an ordered list of month names plus words that must never match.
// Order decides ties.
type Lexicon struct {
	months    []Month
	stopWords map[string]struct{}
	tag       language.Tag
}

// DutchMonths is the default lexicon content.
var DutchMonths = []Month{
	{Name: "januari", Number: 1},
	{Name: "februari", Number: 2},
	{Name: "maart", Number: 3},
	{Name: "april", Number: 4},
	{Name: "mei", Number: 5},
	{Name: "juni", Number: 6},
	{Name: "juli", Number: 7},
	{Name: "augustus", Number: 8},
	{Name: "september", Number: 9},
	{Name: "oktober", Number: 10},
	{Name: "november", Number: 11},
	{Name: "december", Number: 12},
}

// DutchStopWords fuzzy-match a month but are ordinary words ("maar" vs "maart").
var DutchStopWords = []string{"maar"}

// NewLexicon validates and builds a lexicon. Names and stop words are lowercased
// using the locale's casing rules.
func NewLexicon(locale string, months []Month, stopWords []string) (*Lexicon, error) {
	if len(months) == 0 {
		return nil, errors.New("month lexicon is empty")
	}

	tag := language.Und
	if locale != "" {
		var err error
		tag, err = language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("invalid lexicon locale %q: %w", locale, err)
		}
	}
	lower := cases.Lower(tag)

	seen := make(map[string]bool, len(months))
	lex := &Lexicon{
		months:    make([]Month, 0, len(months)),
		stopWords: make(map[string]struct{}, len(stopWords)),
		tag:       tag,
	}
	for i, m := range months {
		name := lower.String(strings.TrimSpace(m.Name))
		if name == "" {
			return nil, fmt.Errorf("month %d has an empty name", i+1)
		}
		if m.Number < 1 || m.Number > 12 {
			return nil, fmt.Errorf("month %q has number %d, expected 1-12", name, m.Number)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate month name %q", name)
		}
		seen[name] = true
		lex.months = append(lex.months, Month{Name: name, Number: m.Number})
	}
	for _, w := range stopWords {
		w = lower.String(strings.TrimSpace(w))
		if w != "" {
			lex.stopWords[w] = struct{}{}
		}
	}

	return lex, nil
}

// DefaultLexicon returns the Dutch lexicon.
func DefaultLexicon() *Lexicon {
	lex, err := NewLexicon("nl", DutchMonths, DutchStopWords)
	if err != nil {
		panic(err)
	}
	return lex
}

// Months returns a copy of the lexicon entries in declared order.
func (l *Lexicon) Months() []Month {
	return append([]Month(nil), l.months...)
}

// Matcher fuzzy-matches tokens against a lexicon.
// A Matcher holds a stateful caser and must not be shared between goroutines.
type Matcher struct {
	lex   *Lexicon
	lower cases.Caser
}

// NewMatcher creates a matcher for lex.
func NewMatcher(lex *Lexicon) *Matcher {
	return &Matcher{
		lex:   lex,
		lower: cases.Lower(lex.tag),
	}
}

// MatchMonth returns the number of the first month whose ratio with token exceeds
// MatchThreshold. Stop words never match.
func (m *Matcher) MatchMonth(token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	lowered := m.lower.String(token)
	if _, stop := m.lex.stopWords[lowered]; stop {
		return 0, false
	}
	for _, month := range m.lex.months {
		if Ratio(lowered, month.Name) > MatchThreshold {
			return month.Number, true
		}
	}
	return 0, false
}

// Ratio is the normalized Indel similarity of a and b in the range 0-100.
// It compares runes and is symmetric; two empty strings are identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength is the length of the longest common subsequence, using two rows
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
