package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ahrav/mibench/internal/domain"
)

func correlatedPair(t *testing.T, rho float64) *SplitMultinormal {
	t.Helper()
	s, err := NewSplitMultinormal(1, 1, nil, [][]float64{{1, rho}, {rho, 1}})
	require.NoError(t, err)
	return s
}

func TestSplitMultinormal_MutualInformation(t *testing.T) {
	tests := []struct {
		name string
		rho  float64
		want float64
	}{
		{name: "independent", rho: 0, want: 0},
		{name: "rho 0.8", rho: 0.8, want: -0.5 * math.Log(1-0.64)},
		{name: "negative rho", rho: -0.5, want: -0.5 * math.Log(1-0.25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := correlatedPair(t, tt.rho)
			assert.InDelta(t, tt.want, s.MutualInformation(), 1e-12)
		})
	}

	t.Run("rho 0.8 matches reference value", func(t *testing.T) {
		assert.InDelta(t, 0.5108256, correlatedPair(t, 0.8).MutualInformation(), 1e-7)
	})

	t.Run("independent blocks have zero MI", func(t *testing.T) {
		cov := [][]float64{
			{2, 0.3, 0, 0},
			{0.3, 1, 0, 0},
			{0, 0, 1, -0.2},
			{0, 0, -0.2, 3},
		}
		s, err := NewSplitMultinormal(2, 2, nil, cov)
		require.NoError(t, err)
		assert.InDelta(t, 0, s.MutualInformation(), 1e-12)
	})
}

func TestNewSplitMultinormal_Validation(t *testing.T) {
	tests := []struct {
		name       string
		dimX, dimY int
		mean       []float64
		cov        [][]float64
	}{
		{name: "zero dim_x", dimX: 0, dimY: 1, cov: [][]float64{{1}}},
		{name: "negative dim_y", dimX: 1, dimY: -1, cov: [][]float64{{1}}},
		{name: "wrong row count", dimX: 1, dimY: 1, cov: [][]float64{{1, 0}}},
		{name: "ragged row", dimX: 1, dimY: 1, cov: [][]float64{{1, 0}, {0}}},
		{name: "not symmetric", dimX: 1, dimY: 1, cov: [][]float64{{1, 0.5}, {0.1, 1}}},
		{name: "not positive definite", dimX: 1, dimY: 1, cov: [][]float64{{1, 2}, {2, 1}}},
		{name: "singular", dimX: 1, dimY: 1, cov: [][]float64{{1, 1}, {1, 1}}},
		{name: "non-finite entry", dimX: 1, dimY: 1, cov: [][]float64{{math.NaN(), 0}, {0, 1}}},
		{name: "wrong mean length", dimX: 1, dimY: 1, mean: []float64{0}, cov: [][]float64{{1, 0}, {0, 1}}},
		{name: "infinite mean", dimX: 1, dimY: 1, mean: []float64{0, math.Inf(1)}, cov: [][]float64{{1, 0}, {0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSplitMultinormal(tt.dimX, tt.dimY, tt.mean, tt.cov)
			require.ErrorIs(t, err, domain.ErrInvalidParameter)
			assert.Nil(t, s)
		})
	}
}

func TestSplitMultinormal_Sample(t *testing.T) {
	cov, err := ParametrisedCorrelationMatrix(2, 3, 2, 0.6, 0.1, 0.2)
	require.NoError(t, err)
	s, err := NewSplitMultinormal(2, 3, []float64{1, 2, 3, 4, 5}, cov)
	require.NoError(t, err)

	t.Run("shapes", func(t *testing.T) {
		for _, n := range []int{1, 7, 100} {
			x, y, err := s.Sample(n, 3)
			require.NoError(t, err)
			r, c := x.Dims()
			assert.Equal(t, []int{n, 2}, []int{r, c})
			r, c = y.Dims()
			assert.Equal(t, []int{n, 3}, []int{r, c})
		}
	})

	t.Run("deterministic for equal seeds", func(t *testing.T) {
		x1, y1, err := s.Sample(50, 42)
		require.NoError(t, err)
		twin, err := NewSplitMultinormal(2, 3, []float64{1, 2, 3, 4, 5}, cov)
		require.NoError(t, err)
		x2, y2, err := twin.Sample(50, 42)
		require.NoError(t, err)
		assert.True(t, mat.Equal(x1, x2))
		assert.True(t, mat.Equal(y1, y2))
	})

	t.Run("different seeds differ", func(t *testing.T) {
		x1, _, err := s.Sample(50, 1)
		require.NoError(t, err)
		x2, _, err := s.Sample(50, 2)
		require.NoError(t, err)
		assert.False(t, mat.Equal(x1, x2))
	})

	t.Run("non-positive point count", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			x, y, err := s.Sample(n, 0)
			require.ErrorIs(t, err, domain.ErrInvalidParameter)
			assert.Nil(t, x)
			assert.Nil(t, y)
		}
	})
}

func TestSplitMultinormal_SampleMoments(t *testing.T) {
	s, err := NewSplitMultinormal(1, 1, []float64{-1, 2}, [][]float64{{1, 0.8}, {0.8, 1}})
	require.NoError(t, err)

	x, y, err := s.Sample(20000, 7)
	require.NoError(t, err)

	xs := mat.Col(nil, 0, x)
	ys := mat.Col(nil, 0, y)
	assert.InDelta(t, -1, stat.Mean(xs, nil), 0.05)
	assert.InDelta(t, 2, stat.Mean(ys, nil), 0.05)
	assert.InDelta(t, 0.8, stat.Correlation(xs, ys, nil), 0.02)
}
