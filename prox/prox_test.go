package prox

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func randomDense(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64() * 3
	}
	return mat.NewDense(r, c, data)
}

func TestGroupShrinkZeroThresholdIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	v := randomDense(rng, 6, 4)

	var dst mat.Dense
	GroupShrink(&dst, v, 0)

	assert.True(t, mat.Equal(&dst, v), "λ=0 must return V exactly")
}

func TestGroupShrinkRowProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := randomDense(rng, 20, 3)
	inNorms := RowNorms(v)

	for _, lambda := range []float64{0.5, 2, 5, 50} {
		var dst mat.Dense
		GroupShrink(&dst, v, lambda)
		outNorms := RowNorms(&dst)

		for i := range inNorms {
			assert.LessOrEqual(t, outNorms[i], inNorms[i], "row %d λ=%v", i, lambda)
			if inNorms[i] <= lambda {
				assert.Equal(t, 0.0, outNorms[i], "row %d should vanish at λ=%v", i, lambda)
				continue
			}
			assert.Greater(t, outNorms[i], 0.0)
			assert.Less(t, outNorms[i], inNorms[i], "strict shrink expected for λ>0")
			assert.InDelta(t, inNorms[i]-lambda, outNorms[i], 1e-12)

			// Direction is preserved.
			in := mat.Row(nil, i, v)
			out := mat.Row(nil, i, &dst)
			cos := floats.Dot(in, out) / (inNorms[i] * outNorms[i])
			assert.InDelta(t, 1.0, cos, 1e-12)
		}
	}
}

func TestGroupShrinkSingleColumnIsSoftThreshold(t *testing.T) {
	v := mat.NewDense(4, 1, []float64{3, -0.5, -2, 1})
	var dst mat.Dense
	GroupShrink(&dst, v, 1)

	assert.Equal(t, []float64{2, 0, -1, 0}, dst.RawMatrix().Data)
}

func TestGroupShrinkInPlace(t *testing.T) {
	v := mat.NewDense(2, 2, []float64{3, 4, 0.1, 0.1})
	GroupShrink(v, v, 2.5)

	// ‖(3,4)‖ = 5 → scaled by 1 − 2.5/5 = 0.5.
	assert.True(t, floats.EqualApprox(v.RawRowView(0), []float64{1.5, 2}, 1e-14))
	assert.Equal(t, []float64{0, 0}, v.RawRowView(1))
}

func TestGroupShrinkMinimisesProxObjective(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	v := randomDense(rng, 1, 5)
	lambda := 1.3

	var w mat.Dense
	GroupShrink(&w, v, lambda)

	obj := func(x []float64) float64 {
		diff := make([]float64, len(x))
		floats.SubTo(diff, x, v.RawRowView(0))
		n := floats.Norm(diff, 2)
		return 0.5*n*n + lambda*floats.Norm(x, 2)
	}
	best := obj(w.RawRowView(0))

	for k := 0; k < 200; k++ {
		p := make([]float64, 5)
		copy(p, w.RawRowView(0))
		for j := range p {
			p[j] += rng.NormFloat64() * 0.05
		}
		assert.GreaterOrEqual(t, obj(p), best-1e-12)
	}
}

func TestGroupShrinkPanics(t *testing.T) {
	v := mat.NewDense(2, 2, nil)
	assert.PanicsWithValue(t, ErrNegativeThreshold, func() {
		GroupShrink(mat.NewDense(2, 2, nil), v, -1)
	})
	assert.Panics(t, func() { GroupShrink(mat.NewDense(3, 2, nil), v, 1) })
	assert.Panics(t, func() { GroupShrink(mat.NewDense(2, 2, nil), v, math.NaN()) })
}

func TestL21(t *testing.T) {
	w := mat.NewDense(3, 2, []float64{
		3, 4,
		0, 0,
		-6, 8,
	})
	require.Equal(t, []float64{5, 0, 10}, RowNorms(w))
	assert.Equal(t, 15.0, L21(w))

	// Non-raw matrices go through the generic row path.
	wt := mat.NewDense(2, 3, []float64{
		3, 0, -6,
		4, 0, 8,
	})
	assert.Equal(t, 15.0, L21(wt.T()))
}
