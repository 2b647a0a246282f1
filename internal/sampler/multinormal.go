package sampler

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// SplitMultinormal is a multivariate normal distribution over (X, Y) where X
// is the first DimX coordinates and Y the remaining DimY coordinates.
type SplitMultinormal struct {
	dims
	mean       []float64
	covariance *mat.SymDense
	chol       *mat.Cholesky
	lower      *mat.TriDense
}

// NewSplitMultinormal creates a Gaussian sampler.
// mean may be nil for a zero mean; covariance must be a symmetric
// positive-definite (dimX+dimY) x (dimX+dimY) matrix.
// Returns an error wrapping domain.ErrInvalidParameter otherwise.
func NewSplitMultinormal(dimX, dimY int, mean []float64, covariance [][]float64) (*SplitMultinormal, error) {
	d, err := newDims(dimX, dimY)
	if err != nil {
		return nil, err
	}
	mu, err := meanVector(mean, d.DimTotal())
	if err != nil {
		return nil, err
	}
	cov, chol, err := positiveDefinite("covariance", covariance, d.DimTotal())
	if err != nil {
		return nil, err
	}

	var lower mat.TriDense
	chol.LTo(&lower)

	return &SplitMultinormal{
		dims:       d,
		mean:       mu,
		covariance: cov,
		chol:       chol,
		lower:      &lower,
	}, nil
}

// Sample draws nPoints points from the distribution.
func (s *SplitMultinormal) Sample(nPoints int, seed int64) (x, y *mat.Dense, err error) {
	if err := checkPoints(nPoints); err != nil {
		return nil, nil, err
	}
	xy := s.draw(newRand(seed), nPoints)
	addMean(xy, s.mean)
	x, y = s.split(xy)
	return x, y, nil
}

// draw returns nPoints zero-mean rows L z with z ~ N(0, I).
func (s *SplitMultinormal) draw(rng *rand.Rand, nPoints int) *mat.Dense {
	n := s.DimTotal()
	z := mat.NewDense(nPoints, n, nil)
	for i := range nPoints {
		for j := range n {
			z.Set(i, j, rng.NormFloat64())
		}
	}
	var xy mat.Dense
	xy.Mul(z, s.lower.T())
	return &xy
}

// MutualInformation returns 1/2 (ln det Σxx + ln det Σyy - ln det Σ).
func (s *SplitMultinormal) MutualInformation() float64 {
	logDetX := logDet(s.covariance.SliceSym(0, s.dimX))
	logDetY := logDet(s.covariance.SliceSym(s.dimX, s.DimTotal()))
	mi := 0.5 * (logDetX + logDetY - s.chol.LogDet())
	return checkMI("multinormal", mi)
}

func addMean(xy *mat.Dense, mean []float64) {
	rows, cols := xy.Dims()
	for i := range rows {
		for j := range cols {
			xy.Set(i, j, xy.At(i, j)+mean[j])
		}
	}
}
