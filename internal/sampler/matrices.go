package sampler

import (
	"fmt"
	"math"

	"github.com/ahrav/mibench/internal/domain"
)

// UniformDispersion returns the n x n matrix with unit diagonal and every
// off-diagonal entry equal to offDiagonal. It is positive-definite for
// -1/(n-1) < offDiagonal < 1.
func UniformDispersion(n int, offDiagonal float64) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			if i == j {
				m[i][j] = 1
			} else {
				m[i][j] = offDiagonal
			}
		}
	}
	return m
}

// ParametrisedCorrelationMatrix builds a (dimX+dimY) square correlation
// matrix with unit diagonal where
//   - X_i and X_j (i != j) have correlation correlationX,
//   - Y_i and Y_j (i != j) have correlation correlationY,
//   - X_i and Y_i have correlation correlation for i < k,
//   - every other pair is uncorrelated.
//
// Positive-definiteness is checked when the matrix is handed to a sampler.
func ParametrisedCorrelationMatrix(
	dimX, dimY, k int, correlation, correlationX, correlationY float64,
) ([][]float64, error) {
	if _, err := newDims(dimX, dimY); err != nil {
		return nil, err
	}
	if k < 0 || k > min(dimX, dimY) {
		return nil, fmt.Errorf("%w: k must be in [0, %d], got %d", domain.ErrInvalidParameter, min(dimX, dimY), k)
	}
	for _, c := range []float64{correlation, correlationX, correlationY} {
		if math.IsNaN(c) || c <= -1 || c >= 1 {
			return nil, fmt.Errorf("%w: correlations must lie in (-1, 1), got %v", domain.ErrInvalidParameter, c)
		}
	}

	n := dimX + dimY
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	for i := range dimX {
		for j := range dimX {
			if i != j {
				m[i][j] = correlationX
			}
		}
	}
	for i := range dimY {
		for j := range dimY {
			if i != j {
				m[dimX+i][dimX+j] = correlationY
			}
		}
	}
	for i := range k {
		m[i][dimX+i] = correlation
		m[dimX+i][i] = correlation
	}
	return m, nil
}
