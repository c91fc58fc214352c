package tglfista

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-multitask-lasso/prox"
	"github.com/n0madic/go-multitask-lasso/temporal"
)

// Model is the result of a solve: the d×T coefficient matrix and the
// objective value recorded after every outer iteration.
type Model struct {
	d, tasks int
	w        *mat.Dense
	funcVal  []float64
	reason   StopReason
	penalty  Penalty
	gamma    float64 // final Lipschitz estimate
}

func newModel(w *mat.Dense, funcVal []float64, reason StopReason, pen Penalty, gamma float64) *Model {
	d, T := w.Dims()
	fv := make([]float64, len(funcVal))
	copy(fv, funcVal)
	return &Model{
		d:       d,
		tasks:   T,
		w:       mat.DenseCopyOf(w),
		funcVal: fv,
		reason:  reason,
		penalty: pen,
		gamma:   gamma,
	}
}

// Dims returns the feature dimension and the task count.
func (m *Model) Dims() (d, tasks int) {
	return m.d, m.tasks
}

// Coef returns a copy of the coefficient matrix W.
func (m *Model) Coef() *mat.Dense {
	return mat.DenseCopyOf(m.w)
}

// FuncVal returns a copy of the per-iteration objective values.
func (m *Model) FuncVal() []float64 {
	fv := make([]float64, len(m.funcVal))
	copy(fv, m.funcVal)
	return fv
}

// Iterations returns the number of completed outer iterations.
func (m *Model) Iterations() int {
	return len(m.funcVal)
}

// Objective returns the last recorded objective value, or NaN if the solve
// did not complete an iteration.
func (m *Model) Objective() float64 {
	if len(m.funcVal) == 0 {
		return math.NaN()
	}
	return m.funcVal[len(m.funcVal)-1]
}

// Reason returns why the solve stopped.
func (m *Model) Reason() StopReason {
	return m.reason
}

// Penalty returns the regularization weights the model was fitted with.
func (m *Model) Penalty() Penalty {
	return m.penalty
}

// Predict returns the prediction of task t for one sample x.
func (m *Model) Predict(t int, x []float64) (float64, error) {
	if t < 0 || t >= m.tasks {
		return 0, invalidf("task index", "%d out of range [0, %d)", t, m.tasks)
	}
	if len(x) != m.d {
		return 0, &InputError{Type: "sample features", Expected: m.d, Got: len(x)}
	}
	return mat.Dot(mat.NewVecDense(m.d, x), m.w.ColView(t)), nil
}

// PredictTask returns Xᵗ·w_t for a d×n feature matrix whose columns are
// samples, matching the layout of Task.X.
func (m *Model) PredictTask(t int, x mat.Matrix) (*mat.VecDense, error) {
	if t < 0 || t >= m.tasks {
		return nil, invalidf("task index", "%d out of range [0, %d)", t, m.tasks)
	}
	r, n := x.Dims()
	if r != m.d {
		return nil, &InputError{Type: "feature rows", Expected: m.d, Got: r}
	}
	out := mat.NewVecDense(n, nil)
	out.MulVec(x.T(), m.w.ColView(t))
	return out, nil
}

// ActiveFeatures returns the indices of the rows of W whose norm exceeds eps,
// i.e. the features selected across all tasks.
func (m *Model) ActiveFeatures(eps float64) []int {
	var active []int
	for i, n := range prox.RowNorms(m.w) {
		if n > eps {
			active = append(active, i)
		}
	}
	return active
}

// GetStats returns current model statistics
func (m *Model) GetStats() map[string]any {
	smooth := math.NaN()
	if op, err := temporal.New(m.tasks); err == nil {
		smooth = op.Penalty(m.w)
	}

	return map[string]any{
		"d_features":      m.d,
		"tasks":           m.tasks,
		"iterations":      len(m.funcVal),
		"stop_reason":     m.reason.String(),
		"objective":       m.Objective(),
		"gamma":           m.gamma,
		"rho1":            m.penalty.Rho1,
		"rho2":            m.penalty.Rho2,
		"rho3":            m.penalty.Rho3,
		"active_features": len(m.ActiveFeatures(0)),
		"norm_l21":        prox.L21(m.w),
		"norm_frobenius":  mat.Norm(m.w, 2),
		"temporal_diff":   smooth,
	}
}

// ModelState represents the serializable state of Model
type ModelState struct {
	Version int       `gob:"version"`
	D       int       `gob:"d"`
	Tasks   int       `gob:"tasks"`
	WData   []float64 `gob:"w_data"`
	FuncVal []float64 `gob:"func_val"`
	Reason  int       `gob:"reason"`
	Rho1    float64   `gob:"rho1"`
	Rho2    float64   `gob:"rho2"`
	Rho3    float64   `gob:"rho3"`
	Gamma   float64   `gob:"gamma"`
}

// Save serializes the model state to gob format
func (m *Model) Save(w io.Writer) error {
	state := ModelState{
		Version: 1,
		D:       m.d,
		Tasks:   m.tasks,
		FuncVal: m.FuncVal(),
		Reason:  int(m.reason),
		Rho1:    m.penalty.Rho1,
		Rho2:    m.penalty.Rho2,
		Rho3:    m.penalty.Rho3,
		Gamma:   m.gamma,
	}

	// Row-major copy of W
	state.WData = make([]float64, 0, m.d*m.tasks)
	for i := 0; i < m.d; i++ {
		state.WData = append(state.WData, m.w.RawRowView(i)...)
	}

	encoder := gob.NewEncoder(w)
	return encoder.Encode(state)
}

// Load deserializes a model from gob format
func Load(r io.Reader) (*Model, error) {
	decoder := gob.NewDecoder(r)

	var state ModelState
	if err := decoder.Decode(&state); err != nil {
		return nil, err
	}

	if state.Version != 1 {
		return nil, errors.New("unsupported gob version")
	}
	if state.D <= 0 || state.Tasks <= 0 {
		return nil, fmt.Errorf("invalid model dimensions %dx%d", state.D, state.Tasks)
	}
	if len(state.WData) != state.D*state.Tasks {
		return nil, errors.New("invalid W data length")
	}

	wData := make([]float64, len(state.WData))
	copy(wData, state.WData)

	return &Model{
		d:       state.D,
		tasks:   state.Tasks,
		w:       mat.NewDense(state.D, state.Tasks, wData),
		funcVal: state.FuncVal,
		reason:  StopReason(state.Reason),
		penalty: Penalty{Rho1: state.Rho1, Rho2: state.Rho2, Rho3: state.Rho3},
		gamma:   state.Gamma,
	}, nil
}
