// Package sampler defines the contract for distributions with analytically
// known mutual information and provides the concrete families used by the
// benchmark suites.
//
// A Sampler draws i.i.d. points from a joint distribution over (X, Y) and
// reports the exact mutual information I(X; Y) of that distribution. All
// parameters are validated when a sampler is constructed, so Sample and
// MutualInformation can assume a valid configuration.
package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/ahrav/mibench/internal/domain"
)

// Sampler draws paired samples from a joint distribution with known mutual information.
type Sampler interface {
	// DimX returns the dimension of the X variable.
	DimX() int

	// DimY returns the dimension of the Y variable.
	DimY() int

	// Sample draws nPoints i.i.d. points and splits them into an
	// nPoints x DimX matrix and an nPoints x DimY matrix. Equal seeds
	// produce identical samples.
	// Returns an error wrapping domain.ErrInvalidParameter if nPoints <= 0.
	Sample(nPoints int, seed int64) (x, y *mat.Dense, err error)

	// MutualInformation returns the closed-form mutual information in nats.
	MutualInformation() float64
}

const (
	// pcgStream is the fixed PCG stream; the seed picks the state.
	pcgStream = 0x9e3779b97f4a7c15

	// symmetryTolerance bounds |A_ij - A_ji| relative to the largest entry.
	symmetryTolerance = 1e-10

	// negativeMITolerance absorbs round-off in closed forms whose exact value is 0.
	negativeMITolerance = 1e-10
)

// dims holds the (dimX, dimY) split shared by every sampler.
type dims struct {
	dimX int
	dimY int
}

func newDims(dimX, dimY int) (dims, error) {
	if dimX < 1 {
		return dims{}, fmt.Errorf("%w: dim_x must be positive, got %d", domain.ErrInvalidParameter, dimX)
	}
	if dimY < 1 {
		return dims{}, fmt.Errorf("%w: dim_y must be positive, got %d", domain.ErrInvalidParameter, dimY)
	}
	return dims{dimX: dimX, dimY: dimY}, nil
}

// DimX returns the dimension of the X variable.
func (d dims) DimX() int { return d.dimX }

// DimY returns the dimension of the Y variable.
func (d dims) DimY() int { return d.dimY }

// DimTotal returns dimX + dimY.
func (d dims) DimTotal() int { return d.dimX + d.dimY }

// split copies the X and Y column blocks of a joint sample matrix.
func (d dims) split(xy *mat.Dense) (x, y *mat.Dense) {
	n, _ := xy.Dims()
	x = mat.DenseCopyOf(xy.Slice(0, n, 0, d.dimX))
	y = mat.DenseCopyOf(xy.Slice(0, n, d.dimX, d.DimTotal()))
	return x, y
}

func checkPoints(nPoints int) error {
	if nPoints <= 0 {
		return fmt.Errorf("%w: n_points must be positive, got %d", domain.ErrInvalidParameter, nPoints)
	}
	return nil
}

// newRand returns the deterministic generator for a seed.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), pcgStream))
}

// checkMI enforces non-negativity of a closed-form result. Values within
// round-off of zero are clamped; anything below is a defect in the derivation.
func checkMI(name string, mi float64) float64 {
	if math.IsNaN(mi) || mi < -negativeMITolerance {
		panic(fmt.Sprintf("sampler: %s mutual information is %v", name, mi))
	}
	return max(mi, 0)
}

// positiveDefinite validates a square, symmetric, positive-definite matrix
// of the given order and returns it with its Cholesky factorization.
func positiveDefinite(name string, a [][]float64, n int) (*mat.SymDense, *mat.Cholesky, error) {
	if len(a) != n {
		return nil, nil, fmt.Errorf("%w: %s must have %d rows, got %d", domain.ErrInvalidParameter, name, n, len(a))
	}

	var scale float64
	data := make([]float64, 0, n*n)
	for i, row := range a {
		if len(row) != n {
			return nil, nil, fmt.Errorf("%w: %s row %d has %d columns, want %d",
				domain.ErrInvalidParameter, name, i, len(row), n)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, fmt.Errorf("%w: %s has non-finite entries", domain.ErrInvalidParameter, name)
			}
			scale = max(scale, math.Abs(v))
		}
		data = append(data, row...)
	}

	for i := range n {
		for j := i + 1; j < n; j++ {
			if math.Abs(a[i][j]-a[j][i]) > symmetryTolerance*max(scale, 1) {
				return nil, nil, fmt.Errorf("%w: %s is not symmetric at (%d, %d)", domain.ErrInvalidParameter, name, i, j)
			}
		}
	}

	sym := mat.NewSymDense(n, data)
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, nil, fmt.Errorf("%w: %s is not positive-definite", domain.ErrInvalidParameter, name)
	}
	return sym, &chol, nil
}

// meanVector validates a mean of length n; nil means the zero vector.
func meanVector(mean []float64, n int) ([]float64, error) {
	if mean == nil {
		return make([]float64, n), nil
	}
	if len(mean) != n {
		return nil, fmt.Errorf("%w: mean must have length %d, got %d", domain.ErrInvalidParameter, n, len(mean))
	}
	out := make([]float64, n)
	for i, v := range mean {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: mean has non-finite entries", domain.ErrInvalidParameter)
		}
		out[i] = v
	}
	return out, nil
}

// logDet returns ln det of a positive-definite symmetric matrix.
func logDet(a mat.Symmetric) float64 {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		// Principal blocks of a positive-definite matrix are positive-definite.
		panic("sampler: principal block is not positive-definite")
	}
	return chol.LogDet()
}
