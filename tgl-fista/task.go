package tglfista

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Task is the data of one time point: a d×n feature matrix whose columns
// are samples, and the n responses.
type Task struct {
	X *mat.Dense
	Y *mat.VecDense
}

// NewTask builds a task from row-major samples (n rows of d features) and
// their responses. The samples are stored transposed, one per column.
func NewTask(samples [][]float64, y []float64) (Task, error) {
	if len(samples) == 0 {
		return Task{}, invalidf("task", "no samples")
	}
	if len(samples) != len(y) {
		return Task{}, &InputError{Type: "responses", Expected: len(samples), Got: len(y)}
	}

	d := len(samples[0])
	if d == 0 {
		return Task{}, invalidf("task", "samples have no features")
	}

	x := mat.NewDense(d, len(samples), nil)
	for j, s := range samples {
		if len(s) != d {
			return Task{}, &InputError{Type: "sample features", Expected: d, Got: len(s)}
		}
		for i, v := range s {
			x.Set(i, j, v)
		}
	}

	yv := make([]float64, len(y))
	copy(yv, y)
	return Task{X: x, Y: mat.NewVecDense(len(yv), yv)}, nil
}

// Samples returns the number of samples n_t.
func (t Task) Samples() int {
	if t.X == nil {
		return 0
	}
	_, n := t.X.Dims()
	return n
}

// validateTasks checks that the tasks share a feature dimension and that
// every task is internally consistent. It returns d.
func validateTasks(tasks []Task) (int, error) {
	if len(tasks) == 0 {
		return 0, invalidf("tasks", "at least one task is required")
	}

	d := -1
	for i, task := range tasks {
		if task.X == nil || task.Y == nil {
			return 0, invalidf("tasks", "task %d is missing X or Y", i)
		}
		rows, n := task.X.Dims()
		if d < 0 {
			d = rows
		} else if rows != d {
			return 0, &InputError{Type: "task feature dimension", Expected: d, Got: rows}
		}
		if task.Y.Len() != n {
			return 0, &InputError{Type: "task responses", Expected: n, Got: task.Y.Len()}
		}
		if !finiteMatrix(task.X) || !finiteMatrix(task.Y) {
			return 0, invalidf("tasks", "task %d contains NaN or Inf", i)
		}
	}
	return d, nil
}

func finiteMatrix(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
