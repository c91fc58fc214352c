package tglfista

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// randomTasks returns T tasks with d features, n_t = baseN + t samples each,
// generated from a smoothly drifting coefficient matrix with sparse rows.
func randomTasks(rng *rand.Rand, d, T, baseN int) ([]Task, *mat.Dense) {
	truth := mat.NewDense(d, T, nil)
	for i := 0; i < d; i += 2 {
		start := rng.NormFloat64()
		for t := 0; t < T; t++ {
			truth.Set(i, t, start+0.1*float64(t))
		}
	}

	tasks := make([]Task, T)
	for t := 0; t < T; t++ {
		n := baseN + t
		x := mat.NewDense(d, n, nil)
		for i := 0; i < d; i++ {
			for j := 0; j < n; j++ {
				x.Set(i, j, rng.NormFloat64())
			}
		}
		y := mat.NewVecDense(n, nil)
		y.MulVec(x.T(), truth.ColView(t))
		for j := 0; j < n; j++ {
			y.SetVec(j, y.AtVec(j)+0.05*rng.NormFloat64())
		}
		tasks[t] = Task{X: x, Y: y}
	}
	return tasks, truth
}

func randomDense(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(r, c, data)
}
