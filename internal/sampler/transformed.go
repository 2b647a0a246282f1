package sampler

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ahrav/mibench/internal/domain"
)

// Diffeomorphism is a smooth invertible map applied to every sample point of
// one variable. Mutual information is invariant under such maps.
type Diffeomorphism interface {
	// Dim is the dimension the map acts on.
	Dim() int
	// Apply maps point into dst; dst and point have length Dim and may alias.
	Apply(dst, point []float64)
}

// Transformed applies diffeomorphisms to the X and Y samples of a base
// sampler. It reports the mutual information of the base sampler.
type Transformed struct {
	base       Sampler
	transformX Diffeomorphism
	transformY Diffeomorphism
}

// NewTransformed wraps base. A nil transform leaves that variable unchanged.
// Returns an error wrapping domain.ErrInvalidParameter if a transform's
// dimension does not match the variable it is applied to.
func NewTransformed(base Sampler, transformX, transformY Diffeomorphism) (*Transformed, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: base sampler is nil", domain.ErrInvalidParameter)
	}
	if transformX != nil && transformX.Dim() != base.DimX() {
		return nil, fmt.Errorf("%w: X transform acts on dimension %d, dim_x is %d",
			domain.ErrInvalidParameter, transformX.Dim(), base.DimX())
	}
	if transformY != nil && transformY.Dim() != base.DimY() {
		return nil, fmt.Errorf("%w: Y transform acts on dimension %d, dim_y is %d",
			domain.ErrInvalidParameter, transformY.Dim(), base.DimY())
	}
	return &Transformed{base: base, transformX: transformX, transformY: transformY}, nil
}

// DimX returns the dimension of the X variable.
func (t *Transformed) DimX() int { return t.base.DimX() }

// DimY returns the dimension of the Y variable.
func (t *Transformed) DimY() int { return t.base.DimY() }

// Sample draws from the base sampler and transforms the result row by row.
func (t *Transformed) Sample(nPoints int, seed int64) (x, y *mat.Dense, err error) {
	x, y, err = t.base.Sample(nPoints, seed)
	if err != nil {
		return nil, nil, err
	}
	applyRows(x, t.transformX)
	applyRows(y, t.transformY)
	return x, y, nil
}

// MutualInformation returns the mutual information of the base sampler.
func (t *Transformed) MutualInformation() float64 { return t.base.MutualInformation() }

func applyRows(m *mat.Dense, f Diffeomorphism) {
	if f == nil {
		return
	}
	rows, _ := m.Dims()
	for i := range rows {
		row := m.RawRowView(i)
		f.Apply(row, row)
	}
}

// Spiral rotates the plane spanned by the first two coordinates by an angle
// proportional to the squared norm of the point: θ(x) = speed·‖x‖².
// Rotations preserve the norm, so the inverse rotates by -θ(x).
type Spiral struct {
	dim   int
	speed float64
}

// NewSpiral creates a spiral diffeomorphism acting on dim >= 2 coordinates.
func NewSpiral(dim int, speed float64) (*Spiral, error) {
	if dim < 2 {
		return nil, fmt.Errorf("%w: spiral needs dimension >= 2, got %d", domain.ErrInvalidParameter, dim)
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("%w: spiral speed must be finite, got %v", domain.ErrInvalidParameter, speed)
	}
	return &Spiral{dim: dim, speed: speed}, nil
}

// Dim is the dimension the spiral acts on.
func (s *Spiral) Dim() int { return s.dim }

// Speed returns the speed parameter.
func (s *Spiral) Speed() float64 { return s.speed }

// Apply maps point into dst.
func (s *Spiral) Apply(dst, point []float64) {
	s.rotate(dst, point, 1)
}

// Invert applies the inverse map.
func (s *Spiral) Invert(dst, point []float64) {
	s.rotate(dst, point, -1)
}

func (s *Spiral) rotate(dst, point []float64, sign float64) {
	var r2 float64
	for _, v := range point {
		r2 += v * v
	}
	sin, cos := math.Sincos(sign * s.speed * r2)
	x0, x1 := point[0], point[1]
	copy(dst, point)
	dst[0] = cos*x0 - sin*x1
	dst[1] = sin*x0 + cos*x1
}
