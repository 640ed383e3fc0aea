package scoring

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
)

var (
	errTooFewPoints     = errors.New("need at least two points")
	errSingular         = errors.New("covariance matrix is singular")
	errNonFiniteDensity = errors.New("density is not finite")
)

// singularTolerance bounds det(cov) relative to the product of the variances
const singularTolerance = 1e-12

// gaussianKDE fits a 2-D Gaussian kernel density estimate with Scott's bandwidth
// to the points and evaluates it at each point.
func gaussianKDE(xs, ys []float64) ([]float64, error) {
	n := len(xs)
	if n < 2 {
		return nil, errTooFewPoints
	}

	data := mat.NewDense(n, 2, nil)
	for i := range xs {
		data.Set(i, 0, xs[i])
		data.Set(i, 1, ys[i])
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	vx, vy, cxy := cov.At(0, 0), cov.At(1, 1), cov.At(0, 1)
	if vx <= 0 || vy <= 0 || vx*vy-cxy*cxy <= singularTolerance*vx*vy {
		return nil, errSingular
	}

	// Scott's rule: n^(-1/(d+4)) with d = 2
	factor := math.Pow(float64(n), -1.0/6.0)
	cov.ScaleSym(factor*factor, &cov)

	kernel, ok := distmv.NewNormal([]float64{0, 0}, &cov, nil)
	if !ok {
		return nil, errSingular
	}

	densities := make([]float64, n)
	diff := make([]float64, 2)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			diff[0] = xs[i] - xs[j]
			diff[1] = ys[i] - ys[j]
			sum += math.Exp(kernel.LogProb(diff))
		}
		d := sum / float64(n)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, errNonFiniteDensity
		}
		densities[i] = d
	}

	return densities, nil
}

// minMax rescales values to [0,1]. It reports false when the values are
// (numerically) all equal.
func minMax(values []float64) ([]float64, bool) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo <= 1e-12*math.Abs(hi) {
		return nil, false
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Round2((v - lo) / (hi - lo))
	}
	return out, true
}
