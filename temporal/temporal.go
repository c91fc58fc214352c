// Package temporal builds the first-difference operator that couples
// consecutive tasks of a time-ordered multi-task problem.
//
// For T tasks the operator R is the T×(T−1) matrix whose column i carries +1
// in row i and −1 in row i+1, so that the columns of W·R are the differences
// w_i − w_{i+1} between neighbouring task coefficient vectors. The Gram matrix
// R·Rᵗ is the tridiagonal path Laplacian and is what the smoothness gradient
// actually consumes.
package temporal

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Operator holds R and its Gram matrix R·Rᵗ for a fixed task count.
// It is immutable after construction and safe for concurrent use.
type Operator struct {
	tasks int
	r     *mat.Dense    // T x (T-1), nil when T == 1
	gram  *mat.SymDense // T x T
}

// New creates the temporal operator for the given number of tasks.
func New(tasks int) (*Operator, error) {
	if tasks <= 0 {
		return nil, fmt.Errorf("task count must be positive, got %d", tasks)
	}

	op := &Operator{
		tasks: tasks,
		gram:  mat.NewSymDense(tasks, nil),
	}

	// A single task has no neighbours: R has zero columns and R·Rᵗ = 0.
	if tasks == 1 {
		return op, nil
	}

	op.r = mat.NewDense(tasks, tasks-1, nil)
	for i := 0; i < tasks-1; i++ {
		op.r.Set(i, i, 1)
		op.r.Set(i+1, i, -1)
	}

	for i := 0; i < tasks; i++ {
		deg := 2.0
		if i == 0 || i == tasks-1 {
			deg = 1
		}
		op.gram.SetSym(i, i, deg)
		if i+1 < tasks {
			op.gram.SetSym(i, i+1, -1)
		}
	}

	return op, nil
}

// Tasks returns the task count T the operator was built for.
func (o *Operator) Tasks() int {
	return o.tasks
}

// Dims returns the shape of R. The column count is zero for a single task.
func (o *Operator) Dims() (r, c int) {
	return o.tasks, o.tasks - 1
}

// R returns the difference operator, or nil when it has no columns.
func (o *Operator) R() mat.Matrix {
	if o.r == nil {
		return nil
	}
	return o.r
}

// Gram returns R·Rᵗ.
func (o *Operator) Gram() mat.Symmetric {
	return o.gram
}

// Penalty returns ‖W·R‖²_F, the sum of squared differences between
// consecutive columns of W.
func (o *Operator) Penalty(w mat.Matrix) float64 {
	d, t := w.Dims()
	if t != o.tasks {
		panic(fmt.Sprintf("temporal: W has %d columns, operator built for %d tasks", t, o.tasks))
	}

	sum := 0.0
	for i := 0; i < t-1; i++ {
		for j := 0; j < d; j++ {
			diff := w.At(j, i) - w.At(j, i+1)
			sum += diff * diff
		}
	}
	return sum
}

// GradInto stores W·R·Rᵗ into dst, which must be d×T.
func (o *Operator) GradInto(dst *mat.Dense, w mat.Matrix) {
	dst.Mul(w, o.gram)
}
