package tglfista

import (
	"gonum.org/v1/gonum/mat"
)

// initialW builds the starting iterate. A supplied W0 is always shape-checked,
// but only InitDefault uses it; the other modes ignore it.
func initialW(tasks []Task, d int, opts *Options) (*mat.Dense, error) {
	T := len(tasks)

	if opts.W0 != nil {
		r, c := opts.W0.Dims()
		if r != d {
			return nil, &InputError{Type: "W0 rows", Expected: d, Got: r}
		}
		if c != T {
			return nil, &InputError{Type: "W0 columns", Expected: T, Got: c}
		}
		if !finiteMatrix(opts.W0) {
			return nil, invalidf("W0", "contains NaN or Inf")
		}
	}

	switch {
	case opts.Init == InitZero:
		return mat.NewDense(d, T, nil), nil
	case opts.Init == InitDefault && opts.W0 != nil:
		return mat.DenseCopyOf(opts.W0), nil
	}

	// W₀[:,t] = X_t·Y_t
	w0 := mat.NewDense(d, T, nil)
	for t, task := range tasks {
		col := w0.ColView(t).(*mat.VecDense)
		col.MulVec(task.X, task.Y)
	}
	return w0, nil
}
