package tglfista

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-multitask-lasso/temporal"
)

// Objective is the smooth part of the temporal group lasso objective
//
//	Σ_t 0.5‖Y_t − X_tᵗ·w_t‖² + ρ1‖W‖²_F + ρ2‖W·R‖²_F
//
// The data, weights and temporal operator are fixed at construction. The
// per-task terms are dispatched through an Executor; the scratch buffers
// make a single Objective unsafe for concurrent callers.
type Objective struct {
	tasks []Task
	pen   Penalty
	op    *temporal.Operator
	exec  Executor
	d     int

	resid []*mat.VecDense // per-task residual X_tᵗ·w_t − Y_t
	loss  []float64       // per-task 0.5‖residual‖²
	lap   *mat.Dense      // W·R·Rᵗ scratch (d x T)
}

// NewObjective validates the tasks and builds the objective. A nil executor
// means Sequential.
func NewObjective(tasks []Task, pen Penalty, exec Executor) (*Objective, error) {
	d, err := validateTasks(tasks)
	if err != nil {
		return nil, err
	}
	if err := pen.Validate(); err != nil {
		return nil, err
	}
	op, err := temporal.New(len(tasks))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if exec == nil {
		exec = Sequential{}
	}

	o := &Objective{
		tasks: tasks,
		pen:   pen,
		op:    op,
		exec:  exec,
		d:     d,
		resid: make([]*mat.VecDense, len(tasks)),
		loss:  make([]float64, len(tasks)),
		lap:   mat.NewDense(d, len(tasks), nil),
	}
	for t, task := range tasks {
		o.resid[t] = mat.NewVecDense(task.Samples(), nil)
	}
	return o, nil
}

// Dims returns the shape d×T of the model matrix.
func (o *Objective) Dims() (d, tasks int) {
	return o.d, len(o.tasks)
}

// Value returns the smooth objective at w.
func (o *Objective) Value(w *mat.Dense) float64 {
	o.checkShape(w)
	o.exec.Run(len(o.tasks), func(t int) {
		o.loss[t] = o.residual(t, w)
	})
	return o.reduce(w)
}

// Gradient stores the gradient of the smooth objective at w into dst:
//
//	dst[:,t] = X_t·(X_tᵗ·w_t − Y_t) + 2ρ1·w_t + 2ρ2·(W·R·Rᵗ)[:,t]
func (o *Objective) Gradient(dst, w *mat.Dense) {
	o.ValueGradient(dst, w)
}

// ValueGradient computes the value and the gradient at w in a single pass
// over the tasks and returns the value.
func (o *Objective) ValueGradient(dst, w *mat.Dense) float64 {
	o.checkShape(w)
	o.checkShape(dst)

	o.exec.Run(len(o.tasks), func(t int) {
		o.loss[t] = o.residual(t, w)
		col := dst.ColView(t).(*mat.VecDense)
		col.MulVec(o.tasks[t].X, o.resid[t])
	})

	// Task columns are complete; add the coupled penalty terms.
	if o.pen.Rho1 != 0 {
		dst.Apply(func(i, j int, v float64) float64 {
			return v + 2*o.pen.Rho1*w.At(i, j)
		}, dst)
	}
	if o.pen.Rho2 != 0 {
		o.op.GradInto(o.lap, w)
		dst.Apply(func(i, j int, v float64) float64 {
			return v + 2*o.pen.Rho2*o.lap.At(i, j)
		}, dst)
	}

	return o.reduce(w)
}

// residual updates the residual of task t at w and returns its squared loss.
func (o *Objective) residual(t int, w *mat.Dense) float64 {
	task := o.tasks[t]
	r := o.resid[t]
	r.MulVec(task.X.T(), w.ColView(t))
	r.SubVec(r, task.Y)
	return 0.5 * mat.Dot(r, r)
}

// reduce sums the per-task losses and adds the penalty terms.
func (o *Objective) reduce(w *mat.Dense) float64 {
	f := floats.Sum(o.loss)
	if o.pen.Rho1 != 0 {
		f += o.pen.Rho1 * frobSq(w)
	}
	if o.pen.Rho2 != 0 {
		f += o.pen.Rho2 * o.op.Penalty(w)
	}
	return f
}

func (o *Objective) checkShape(w *mat.Dense) {
	if r, c := w.Dims(); r != o.d || c != len(o.tasks) {
		panic(fmt.Sprintf("tglfista: matrix is %dx%d, want %dx%d", r, c, o.d, len(o.tasks)))
	}
}

// frobSq returns ‖m‖²_F.
func frobSq(m *mat.Dense) float64 {
	r, _ := m.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		sum += floats.Dot(row, row)
	}
	return sum
}

// frobInner returns Σ a⊙b.
func frobInner(a, b *mat.Dense) float64 {
	r, _ := a.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		sum += floats.Dot(a.RawRowView(i), b.RawRowView(i))
	}
	return sum
}
