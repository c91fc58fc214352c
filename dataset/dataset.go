// Package dataset reads time-ordered multi-task regression data from YAML or
// JSON files and generates synthetic problems with a drifting, row-sparse
// ground truth.
//
// Files list the tasks in time order, each with its samples as rows:
//
//	tasks:
//	  - x: [[0.1, 2.0, -1.0], [0.3, 1.1, 0.0]]
//	    y: [1.5, 0.7]
//	  - x: [[...], ...]
//	    y: [...]
//
// JSON is accepted as well since it is a subset of YAML.
package dataset

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	tglfista "github.com/n0madic/go-multitask-lasso/tgl-fista"
)

// File is the on-disk layout of a dataset.
type File struct {
	Tasks []TaskFile `yaml:"tasks" json:"tasks"`
}

// TaskFile holds one task with samples as rows.
type TaskFile struct {
	X [][]float64 `yaml:"x" json:"x"`
	Y []float64   `yaml:"y" json:"y"`
}

// Load reads a dataset file and converts it into solver tasks.
func Load(path string) ([]tglfista.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON dataset.
func Parse(data []byte) ([]tglfista.Task, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(f.Tasks) == 0 {
		return nil, fmt.Errorf("%w: dataset has no tasks", tglfista.ErrInvalidInput)
	}

	tasks := make([]tglfista.Task, len(f.Tasks))
	for i, tf := range f.Tasks {
		task, err := tglfista.NewTask(tf.X, tf.Y)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		tasks[i] = task
	}
	return tasks, nil
}

// Encode writes tasks back into the file layout, samples as rows.
func Encode(tasks []tglfista.Task) ([]byte, error) {
	f := File{Tasks: make([]TaskFile, len(tasks))}
	for i, task := range tasks {
		d, n := task.X.Dims()
		tf := TaskFile{X: make([][]float64, n), Y: make([]float64, n)}
		for j := 0; j < n; j++ {
			tf.X[j] = mat.Col(make([]float64, d), j, task.X)
			tf.Y[j] = task.Y.AtVec(j)
		}
		f.Tasks[i] = tf
	}
	return yaml.Marshal(&f)
}

// SyntheticConfig describes a generated problem.
type SyntheticConfig struct {
	Features int     // d
	Tasks    int     // T
	Samples  int     // n_t for every task
	Active   int     // rows of the ground truth that are non-zero
	Drift    float64 // per-task change of every active coefficient
	Noise    float64 // standard deviation of the response noise
}

// Synthetic generates tasks from a ground truth W whose first Active rows
// drift linearly across tasks and whose remaining rows are zero. It returns
// the tasks and the ground truth.
func Synthetic(cfg SyntheticConfig, rng *rand.Rand) ([]tglfista.Task, *mat.Dense, error) {
	switch {
	case cfg.Features <= 0 || cfg.Tasks <= 0 || cfg.Samples <= 0:
		return nil, nil, fmt.Errorf("%w: features, tasks and samples must be positive", tglfista.ErrInvalidInput)
	case cfg.Active < 0 || cfg.Active > cfg.Features:
		return nil, nil, fmt.Errorf("%w: active rows %d out of range [0, %d]", tglfista.ErrInvalidInput, cfg.Active, cfg.Features)
	case cfg.Noise < 0:
		return nil, nil, fmt.Errorf("%w: noise must not be negative", tglfista.ErrInvalidInput)
	}

	truth := mat.NewDense(cfg.Features, cfg.Tasks, nil)
	for i := 0; i < cfg.Active; i++ {
		start := rng.NormFloat64()
		slope := cfg.Drift * (2*rng.Float64() - 1)
		for t := 0; t < cfg.Tasks; t++ {
			truth.Set(i, t, start+slope*float64(t))
		}
	}

	tasks := make([]tglfista.Task, cfg.Tasks)
	for t := range tasks {
		xData := make([]float64, cfg.Features*cfg.Samples)
		for k := range xData {
			xData[k] = rng.NormFloat64()
		}
		x := mat.NewDense(cfg.Features, cfg.Samples, xData)

		y := mat.NewVecDense(cfg.Samples, nil)
		y.MulVec(x.T(), truth.ColView(t))
		for j := 0; j < cfg.Samples; j++ {
			y.SetVec(j, y.AtVec(j)+cfg.Noise*rng.NormFloat64())
		}
		tasks[t] = tglfista.Task{X: x, Y: y}
	}
	return tasks, truth, nil
}

// TaskSummary describes the responses of one task.
type TaskSummary struct {
	Samples int
	Mean    float64
	StdDev  float64
}

// Summary returns per-task response statistics. StdDev is the unbiased
// estimate and is NaN for a task with a single sample.
func Summary(tasks []tglfista.Task) []TaskSummary {
	out := make([]TaskSummary, len(tasks))
	for i, task := range tasks {
		y := mat.Col(nil, 0, task.Y)
		mean, std := stat.MeanStdDev(y, nil)
		out[i] = TaskSummary{Samples: len(y), Mean: mean, StdDev: std}
	}
	return out
}
