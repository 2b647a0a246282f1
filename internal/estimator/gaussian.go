package estimator

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// GaussianID is the id of the Gaussian baseline estimator.
const GaussianID = "gaussian"

// NewGaussian returns an estimator that fits a joint Gaussian to the samples
// and reports its mutual information:
//
//	½(ln det Σxx + ln det Σyy − ln det Σ)
//
// It is exact in the large-sample limit for Gaussian tasks and a lower bound
// for many others, which makes it a useful baseline.
func NewGaussian() *Func {
	return NewFunc(GaussianID, map[string]any{"family": "gaussian"}, gaussianMI)
}

func gaussianMI(ctx context.Context, x, y [][]float64) (float64, error) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, fmt.Errorf("need at least two paired points, got %d and %d", len(x), len(y))
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dx, dy := len(x[0]), len(y[0])
	joint := mat.NewDense(len(x), dx+dy, nil)
	for i := range x {
		if len(x[i]) != dx || len(y[i]) != dy {
			return 0, fmt.Errorf("ragged sample at point %d", i)
		}
		joint.SetRow(i, append(append(make([]float64, 0, dx+dy), x[i]...), y[i]...))
	}

	cov := mat.NewSymDense(dx+dy, nil)
	stat.CovarianceMatrix(cov, joint, nil)

	full, err := logDet(cov)
	if err != nil {
		return 0, err
	}
	xx, err := logDet(cov.SliceSym(0, dx))
	if err != nil {
		return 0, err
	}
	yy, err := logDet(cov.SliceSym(dx, dx+dy))
	if err != nil {
		return 0, err
	}
	return max(0.5*(xx+yy-full), 0), nil
}

func logDet(a mat.Symmetric) (float64, error) {
	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return 0, fmt.Errorf("sample covariance is singular")
	}
	return chol.LogDet(), nil
}
