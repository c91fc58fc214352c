// Package tglfista fits one linear model per time point of a temporally
// ordered multi-task regression problem, with coefficients that drift
// smoothly between neighbouring tasks and a feature support shared by all
// tasks. It minimizes
//
//	Σ_t 0.5‖Y_t − X_tᵗ·w_t‖² + ρ1‖W‖²_F + ρ2‖W·R‖²_F + ρ3‖W‖_{2,1}
//
// with an accelerated proximal gradient method (FISTA) and a backtracking
// search on the Lipschitz estimate. R is the first-difference operator of
// package temporal; the proximal step is prox.GroupShrink.
package tglfista

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-multitask-lasso/prox"
)

// stallThreshold is the squared Frobenius step length under which a
// proximal gradient step is considered to have stalled.
const stallThreshold = 1e-20

// state is the optimizer state carried across outer iterations. It is owned
// by a single driver and never shared with evaluations in flight.
type state struct {
	wz, wzOld *mat.Dense
	t, tOld   float64
	gamma     float64 // inverse step size, only ever doubled
	iter      int
	stalled   bool
	funcVal   []float64
}

func newState(w0 *mat.Dense) *state {
	return &state{
		wz:      w0,
		wzOld:   mat.DenseCopyOf(w0),
		t:       1,
		tOld:    0,
		gamma:   1,
		funcVal: make([]float64, 0, 16),
	}
}

// driver runs the FISTA iteration for one solve.
type driver struct {
	obj    *Objective
	pen    Penalty
	opts   *Options
	logger *zap.Logger
	st     *state

	// scratch, all d x T
	ws, gws, wzp, delta *mat.Dense
}

// Solve fits the temporal group lasso model to the tasks, which must be
// ordered by time and share the feature dimension.
func Solve(tasks []Task, pen Penalty, options ...Option) (*Model, error) {
	opts := DefaultOptions()
	for _, opt := range options {
		opt(&opts)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	obj, err := NewObjective(tasks, pen, opts.executor())
	if err != nil {
		return nil, err
	}
	d, T := obj.Dims()

	w0, err := initialW(tasks, d, &opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(
		zap.Int("features", d),
		zap.Int("tasks", T),
		zap.Stringer("init", opts.Init),
		zap.Stringer("stop", opts.Stop),
		zap.Bool("parallel", opts.Parallel),
	)

	drv := &driver{
		obj:    obj,
		pen:    pen,
		opts:   &opts,
		logger: logger,
		st:     newState(w0),
		ws:     mat.NewDense(d, T, nil),
		gws:    mat.NewDense(d, T, nil),
		wzp:    mat.NewDense(d, T, nil),
		delta:  mat.NewDense(d, T, nil),
	}

	reason, err := drv.run()
	if err != nil {
		logger.Warn("solve aborted", zap.Int("iter", drv.st.iter), zap.Error(err))
		return nil, err
	}

	st := drv.st
	model := newModel(st.wz, st.funcVal, reason, pen, st.gamma)
	logger.Info("solve finished",
		zap.Stringer("reason", reason),
		zap.Int("iterations", len(st.funcVal)),
		zap.Float64("objective", model.Objective()),
		zap.Float64("gamma", st.gamma),
	)
	return model, nil
}

// run iterates until a stall, a satisfied stop policy or MaxIter.
func (d *driver) run() (StopReason, error) {
	st, opts := d.st, d.opts

	for st.iter < opts.MaxIter {
		alpha := (st.tOld - 1) / st.t

		// Ws = (1+α)·W_z − α·W_z_old
		d.ws.Scale(-alpha, st.wzOld)
		d.ws.Apply(func(i, j int, v float64) float64 {
			return v + (1+alpha)*st.wz.At(i, j)
		}, d.ws)

		fs := d.obj.ValueGradient(d.gws, d.ws)
		if !isFinite(fs) {
			return 0, d.unstable("search point objective %v", fs)
		}

		fzp, err := d.backtrack(fs)
		if err != nil {
			return 0, err
		}

		// W_z_old ← W_z; W_z ← Wzp. The retired buffer becomes the next Wzp.
		st.wzOld, st.wz, d.wzp = st.wz, d.wzp, st.wzOld
		st.funcVal = append(st.funcVal, fzp+d.pen.Rho3*prox.L21(st.wz))

		if ce := d.logger.Check(zap.DebugLevel, "iteration"); ce != nil {
			ce.Write(
				zap.Int("iter", st.iter),
				zap.Float64("objective", st.funcVal[len(st.funcVal)-1]),
				zap.Float64("gamma", st.gamma),
			)
		}

		if st.stalled {
			return ReasonStall, nil
		}
		if opts.Stop.done(st.funcVal, st.iter, opts.MaxIter, opts.Tol) {
			return ReasonConverged, nil
		}

		st.tOld = st.t
		st.t = 0.5 * (1 + math.Sqrt(1+4*st.t*st.t))
		st.iter++
	}

	return ReasonMaxIter, nil
}

// backtrack searches γ until the proximal gradient step from Ws satisfies
// the quadratic upper bound, leaving the candidate in d.wzp and returning its
// smooth objective.
func (d *driver) backtrack(fs float64) (float64, error) {
	st := d.st

	for {
		// Wzp = prox(Ws − gWs/γ, ρ3/γ)
		d.wzp.Scale(-1/st.gamma, d.gws)
		d.wzp.Add(d.wzp, d.ws)
		prox.GroupShrink(d.wzp, d.wzp, d.pen.Rho3/st.gamma)

		fzp := d.obj.Value(d.wzp)

		d.delta.Sub(d.wzp, d.ws)
		r := frobSq(d.delta)

		if r <= stallThreshold {
			st.stalled = true
			if !isFinite(fzp) {
				return 0, d.unstable("candidate objective %v", fzp)
			}
			return fzp, nil
		}

		// Fzp ≤ Fs + ⟨δ, gWs⟩ + γ/2·‖δ‖²
		if fzp <= fs+frobInner(d.delta, d.gws)+st.gamma/2*r {
			return fzp, nil
		}

		st.gamma *= 2
		if math.IsInf(st.gamma, 0) {
			return 0, d.unstable("step size estimate overflowed")
		}
	}
}

func (d *driver) unstable(format string, a ...any) error {
	return fmt.Errorf("%w at iteration %d: %s", ErrNumericalInstability, d.st.iter, fmt.Sprintf(format, a...))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
