package scoring

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/logging"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

// DensityFallback is the density score used when no meaningful density exists:
// a single candidate, collinear or coincident coordinates, or constant densities.
const DensityFallback = 0.5

// DefaultPositionFallback is the position score used when every candidate sits at
// the same vertical position.
const DefaultPositionFallback = 1.0

// Scorer computes relative plausibility scores for one title/edition population.
type Scorer struct {
	positionFallback float64
	sink             logging.Sink
}

// NewScorer creates a scorer. positionFallback must be within [0,1].
func NewScorer(positionFallback float64, sink logging.Sink) (*Scorer, error) {
	if positionFallback < 0 || positionFallback > 1 || math.IsNaN(positionFallback) {
		return nil, fmt.Errorf("position fallback %v outside [0,1]", positionFallback)
	}
	return &Scorer{
		positionFallback: positionFallback,
		sink:             logging.OrDiscard(sink),
	}, nil
}

// Score annotates every candidate of the population. The population must hold
// candidates of a single title/edition only.
func (s *Scorer) Score(population []models.DateCandidate) []models.ScoredCandidate {
	if len(population) == 0 {
		return nil
	}

	density := s.densityScores(population)
	position := s.positionScores(population)

	scored := make([]models.ScoredCandidate, len(population))
	for i, c := range population {
		scored[i] = models.ScoredCandidate{
			DateCandidate: c,
			DensityScore:  density[i],
			PositionScore: position[i],
			CombinedScore: Round2((density[i] + position[i]) / 2),
		}
	}
	return scored
}

func (s *Scorer) densityScores(population []models.DateCandidate) []float64 {
	if len(population) == 1 {
		s.sink.Record(slog.LevelWarn, "Single candidate in population; assigned constant density score", "density_score", DensityFallback)
		return constant(1, DensityFallback)
	}

	xs := make([]float64, len(population))
	ys := make([]float64, len(population))
	for i, c := range population {
		xs[i] = float64(c.HPos)
		ys[i] = float64(c.VPos)
	}

	densities, err := gaussianKDE(xs, ys)
	if err != nil {
		s.sink.Record(slog.LevelWarn, "KDE not computable; assigned constant density score",
			"rows", len(population), "err", err, "density_score", DensityFallback)
		return constant(len(population), DensityFallback)
	}

	scores, ok := minMax(densities)
	if !ok {
		s.sink.Record(slog.LevelWarn, "KDE produced constant values; assigned constant density score",
			"rows", len(population), "density_score", DensityFallback)
		return constant(len(population), DensityFallback)
	}
	return scores
}

// positionScores favours candidates near the top of the page
func (s *Scorer) positionScores(population []models.DateCandidate) []float64 {
	vmin, vmax := population[0].VPos, population[0].VPos
	for _, c := range population[1:] {
		vmin = min(vmin, c.VPos)
		vmax = max(vmax, c.VPos)
	}

	if vmin == vmax {
		s.sink.Record(slog.LevelWarn, "All VPOS values are equal; assigned constant position score",
			"rows", len(population), "position_score", s.positionFallback)
		return constant(len(population), s.positionFallback)
	}

	scores := make([]float64, len(population))
	span := float64(vmax - vmin)
	for i, c := range population {
		scores[i] = Round2(1 - float64(c.VPos-vmin)/span)
	}
	return scores
}

// Filter keeps the candidates whose combined score reaches threshold.
func Filter(scored []models.ScoredCandidate, threshold float64) []models.ScoredCandidate {
	var kept []models.ScoredCandidate
	for _, c := range scored {
		if c.CombinedScore >= threshold {
			kept = append(kept, c)
		}
	}
	return kept
}

// Round2 rounds half to even at two decimals.
func Round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
