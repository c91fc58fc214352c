// Package prox implements the proximal operator of the row-wise L2,1 norm.
//
// For a matrix V and threshold λ ≥ 0, GroupShrink solves, independently for
// every row v of V,
//
//	argmin_w 0.5‖w − v‖² + λ‖w‖₂
//
// whose closed form is the block soft-threshold: w = 0 when ‖v‖₂ ≤ λ and
// w = v·(1 − λ/‖v‖₂) otherwise.
package prox

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNegativeThreshold is the panic value for a negative shrinkage threshold.
var ErrNegativeThreshold = errors.New("prox: negative threshold")

// GroupShrink applies the row-wise block soft-threshold with threshold lambda
// to v and stores the result in dst. dst may alias v. If dst is empty it is
// resized to the shape of v; otherwise the shapes must match.
func GroupShrink(dst *mat.Dense, v mat.Matrix, lambda float64) {
	if lambda < 0 || math.IsNaN(lambda) {
		panic(ErrNegativeThreshold)
	}

	r, c := v.Dims()
	if dst.IsEmpty() {
		dst.ReuseAs(r, c)
	} else if dr, dc := dst.Dims(); dr != r || dc != c {
		panic(fmt.Sprintf("prox: dst is %dx%d, want %dx%d", dr, dc, r, c))
	}
	if dst != v {
		dst.Copy(v)
	}

	// λ = 0 is the identity; the copy above is already exact.
	if lambda == 0 {
		return
	}

	for i := 0; i < r; i++ {
		row := dst.RawRowView(i)
		norm := floats.Norm(row, 2)
		if norm <= lambda {
			for j := range row {
				row[j] = 0
			}
			continue
		}
		floats.Scale(1-lambda/norm, row)
	}
}

// L21 returns Σ_rows ‖row‖₂.
func L21(w mat.Matrix) float64 {
	sum := 0.0
	for _, n := range RowNorms(w) {
		sum += n
	}
	return sum
}

// RowNorms returns the Euclidean norm of every row of w.
func RowNorms(w mat.Matrix) []float64 {
	r, c := w.Dims()
	norms := make([]float64, r)

	if raw, ok := w.(mat.RawMatrixer); ok {
		m := raw.RawMatrix()
		for i := 0; i < r; i++ {
			norms[i] = floats.Norm(m.Data[i*m.Stride:i*m.Stride+c], 2)
		}
		return norms
	}

	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, w)
		norms[i] = floats.Norm(row, 2)
	}
	return norms
}
