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

func TestSplitStudentT_MutualInformation(t *testing.T) {
	t.Run("identity dispersion reduces to the correction", func(t *testing.T) {
		s, err := NewSplitStudentT(1, 1, nil, UniformDispersion(2, 0), 1)
		require.NoError(t, err)
		assert.InDelta(t, 0.6789939830603932, s.MutualInformation(), 1e-8)
	})

	t.Run("df 2 with undefined covariance is finite", func(t *testing.T) {
		s, err := NewSplitStudentT(5, 5, nil, UniformDispersion(10, 0.5), 2)
		require.NoError(t, err)

		mi := s.MutualInformation()
		assert.False(t, math.IsNaN(mi) || math.IsInf(mi, 0))
		assert.GreaterOrEqual(t, mi, 0.0)

		gauss, err := NewSplitMultinormal(5, 5, nil, UniformDispersion(10, 0.5))
		require.NoError(t, err)
		assert.InDelta(t, gauss.MutualInformation()+4.322938399222947, mi, 1e-8)
	})

	t.Run("large dimensions do not overflow", func(t *testing.T) {
		s, err := NewSplitStudentT(25, 25, nil, UniformDispersion(50, 0.5), 5)
		require.NoError(t, err)
		mi := s.MutualInformation()
		assert.False(t, math.IsNaN(mi) || math.IsInf(mi, 0))
		assert.Positive(t, mi)
	})

	t.Run("infinite df equals the Gaussian", func(t *testing.T) {
		s, err := NewSplitStudentT(2, 1, nil, [][]float64{{1, 0.2, 0.5}, {0.2, 1, 0.1}, {0.5, 0.1, 1}}, math.Inf(1))
		require.NoError(t, err)
		gauss, err := NewSplitMultinormal(2, 1, nil, [][]float64{{1, 0.2, 0.5}, {0.2, 1, 0.1}, {0.5, 0.1, 1}})
		require.NoError(t, err)
		assert.Equal(t, gauss.MutualInformation(), s.MutualInformation())
	})
}

func TestStudentTCorrection_Limit(t *testing.T) {
	prev := math.Inf(1)
	for _, df := range []float64{1, 2, 5, 30, 1e3, 1e4, 1e6, 1e8, 1e12, 1e16} {
		c := StudentTCorrection(df, 1, 1)
		assert.Positive(t, c, "df=%v", df)
		assert.Less(t, c, prev, "correction must shrink as df grows (df=%v)", df)
		prev = c
	}
	// The correction decays like dimX*dimY/df.
	assert.InDelta(t, 1e-6, StudentTCorrection(1e6, 1, 1), 1e-8)
	assert.InDelta(t, 2.5e-5, StudentTCorrection(1e6, 5, 5), 1e-7)
}

func TestStudentTCorrection_LargeDF(t *testing.T) {
	for _, df := range []float64{1e5, 1e8, 1e12, 1e16} {
		for _, dims := range [][2]int{{1, 1}, {5, 5}, {2, 25}} {
			c := StudentTCorrection(df, dims[0], dims[1])
			want := float64(dims[0]*dims[1]) / df
			assert.Positive(t, c, "df=%v dims=%v", df, dims)
			assert.InEpsilon(t, want, c, 1e-4, "df=%v dims=%v", df, dims)
		}
	}
	assert.False(t, math.IsNaN(StudentTCorrection(math.MaxFloat64, 3, 3)))
}

func TestStudentTCorrection_ExpansionMatchesClosedForm(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {5, 5}, {25, 25}} {
		exact := StudentTCorrection(asymptoticDF, dims[0], dims[1])
		expanded := studentTCorrectionAsymptotic(asymptoticDF, dims[0], dims[1])
		assert.InEpsilon(t, exact, expanded, 1e-8, "dims=%v", dims)
	}
}

func TestSplitStudentT_MutualInformationLargeDF(t *testing.T) {
	for _, df := range []float64{1e8, 1e12, 1e16} {
		s, err := NewSplitStudentT(1, 1, nil, UniformDispersion(2, 0), df)
		require.NoError(t, err)
		mi := s.MutualInformation()
		assert.GreaterOrEqual(t, mi, 0.0, "df=%v", df)
		assert.InDelta(t, 1/df, mi, 1e-6/df, "df=%v", df)
	}
}

func TestNewSplitStudentT_Validation(t *testing.T) {
	valid := UniformDispersion(2, 0.3)

	for _, df := range []float64{0, -1, math.NaN(), math.Inf(-1)} {
		s, err := NewSplitStudentT(1, 1, nil, valid, df)
		require.ErrorIs(t, err, domain.ErrInvalidParameter, "df=%v", df)
		assert.Nil(t, s)
	}

	s, err := NewSplitStudentT(1, 1, nil, [][]float64{{1, 2}, {2, 1}}, 3)
	require.ErrorIs(t, err, domain.ErrInvalidParameter)
	assert.Nil(t, s)

	s, err = NewSplitStudentT(1, 1, []float64{1}, valid, 3)
	require.ErrorIs(t, err, domain.ErrInvalidParameter)
	assert.Nil(t, s)
}

func TestSplitStudentT_Sample(t *testing.T) {
	s, err := NewSplitStudentT(3, 2, []float64{0, 0, 0, 1, 1}, UniformDispersion(5, 0.5), 4)
	require.NoError(t, err)

	x, y, err := s.Sample(64, 11)
	require.NoError(t, err)
	r, c := x.Dims()
	assert.Equal(t, []int{64, 3}, []int{r, c})
	r, c = y.Dims()
	assert.Equal(t, []int{64, 2}, []int{r, c})

	x2, y2, err := s.Sample(64, 11)
	require.NoError(t, err)
	assert.True(t, mat.Equal(x, x2))
	assert.True(t, mat.Equal(y, y2))

	_, _, err = s.Sample(0, 0)
	require.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestSplitStudentT_HeavierTailsThanGaussian(t *testing.T) {
	const n = 20000
	student, err := NewSplitStudentT(1, 1, nil, UniformDispersion(2, 0.8), 5)
	require.NoError(t, err)
	gauss, err := NewSplitMultinormal(1, 1, nil, UniformDispersion(2, 0.8))
	require.NoError(t, err)

	xs, ys, err := student.Sample(n, 5)
	require.NoError(t, err)
	xg, _, err := gauss.Sample(n, 5)
	require.NoError(t, err)

	sx, sy := mat.Col(nil, 0, xs), mat.Col(nil, 0, ys)
	// Correlation of a scale mixture equals that of its dispersion.
	assert.InDelta(t, 0.8, stat.Correlation(sx, sy, nil), 0.03)
	// Variance of t(5) is 5/3 times the dispersion.
	assert.InDelta(t, 5.0/3.0, stat.Variance(sx, nil), 0.2)
	assert.InDelta(t, 1.0, stat.Variance(mat.Col(nil, 0, xg), nil), 0.05)
}
