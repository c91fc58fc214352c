package tglfista

import (
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// InitMode selects how the starting iterate W₀ is built.
type InitMode int

const (
	// InitCorrelation starts from W₀[:,t] = X_t·Y_t.
	InitCorrelation InitMode = 0
	// InitDefault uses Options.W0 when given and falls back to InitCorrelation.
	InitDefault InitMode = 1
	// InitZero starts from the zero matrix.
	InitZero InitMode = 2
)

func (m InitMode) String() string {
	switch m {
	case InitCorrelation:
		return "correlation"
	case InitDefault:
		return "default"
	case InitZero:
		return "zero"
	}
	return fmt.Sprintf("InitMode(%d)", int(m))
}

// StopPolicy selects the termination test applied after each iteration.
type StopPolicy int

const (
	// StopAbsolute stops when |f_k − f_{k−1}| ≤ tol.
	StopAbsolute StopPolicy = 0
	// StopRelative stops when |f_k − f_{k−1}| ≤ tol·f_{k−1}.
	StopRelative StopPolicy = 1
	// StopFloor stops when f_k ≤ tol.
	StopFloor StopPolicy = 2
	// StopMaxIter runs until MaxIter.
	StopMaxIter StopPolicy = 3
)

func (p StopPolicy) String() string {
	switch p {
	case StopAbsolute:
		return "absolute"
	case StopRelative:
		return "relative"
	case StopFloor:
		return "floor"
	case StopMaxIter:
		return "max-iter"
	}
	return fmt.Sprintf("StopPolicy(%d)", int(p))
}

const (
	// DefaultTolerance is the stop policy tolerance used when none is set.
	DefaultTolerance = 1e-4
	// DefaultMaxIter is the iteration budget used when none is set.
	DefaultMaxIter = 1000
)

// Penalty holds the regularization weights.
type Penalty struct {
	Rho1 float64 // ridge, ‖W‖²_F
	Rho2 float64 // temporal smoothness, ‖W·R‖²_F
	Rho3 float64 // group sparsity, ‖W‖_{2,1}
}

// Validate reports an ErrInvalidInput error unless every weight is finite
// and non-negative.
func (p Penalty) Validate() error {
	for _, w := range []struct {
		name string
		v    float64
	}{{"rho1", p.Rho1}, {"rho2", p.Rho2}, {"rho3", p.Rho3}} {
		if w.v < 0 || math.IsNaN(w.v) || math.IsInf(w.v, 0) {
			return invalidf(w.name, "must be a finite non-negative number, got %v", w.v)
		}
	}
	return nil
}

// Options configures a solve.
type Options struct {
	Init     InitMode
	W0       *mat.Dense // optional d×T starting point
	Stop     StopPolicy
	Tol      float64
	MaxIter  int
	Parallel bool // evaluate per-task terms concurrently
	Workers  int  // goroutine limit for Parallel, 0 means GOMAXPROCS
	Logger   *zap.Logger
}

// DefaultOptions returns the options a solve uses when none are given.
func DefaultOptions() Options {
	return Options{
		Init:    InitDefault,
		Stop:    StopAbsolute,
		Tol:     DefaultTolerance,
		MaxIter: DefaultMaxIter,
	}
}

// Validate reports an ErrInvalidInput error for an unknown init mode or stop
// policy, a tolerance that is not positive and finite, a non-positive
// iteration budget or a negative worker count.
func (o *Options) Validate() error {
	switch {
	case o.Init < InitCorrelation || o.Init > InitZero:
		return invalidf("init", "unknown mode %d", int(o.Init))
	case o.Stop < StopAbsolute || o.Stop > StopMaxIter:
		return invalidf("tFlag", "unknown stop policy %d", int(o.Stop))
	case !(o.Tol > 0) || math.IsInf(o.Tol, 0):
		return invalidf("tol", "must be positive, got %v", o.Tol)
	case o.MaxIter <= 0:
		return invalidf("maxIter", "must be positive, got %d", o.MaxIter)
	case o.Workers < 0:
		return invalidf("workers", "must not be negative, got %d", o.Workers)
	}
	return nil
}

func (o *Options) executor() Executor {
	if !o.Parallel {
		return Sequential{}
	}
	workers := o.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return Parallel{Workers: workers}
}

// Option defines a functional option for configuring a solve
type Option func(*Options)

// WithOptions replaces all options at once, e.g. with the output of a
// configuration resolver. Later options still apply on top.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
	}
}

// WithInit sets the initialization strategy
func WithInit(mode InitMode) Option {
	return func(o *Options) {
		o.Init = mode
	}
}

// WithW0 sets an explicit d×T starting point
func WithW0(w0 *mat.Dense) Option {
	return func(o *Options) {
		o.W0 = w0
	}
}

// WithStopPolicy sets the termination test
func WithStopPolicy(p StopPolicy) Option {
	return func(o *Options) {
		o.Stop = p
	}
}

// WithTolerance sets the termination tolerance
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		o.Tol = tol
	}
}

// WithMaxIter sets the iteration budget
func WithMaxIter(n int) Option {
	return func(o *Options) {
		o.MaxIter = n
	}
}

// WithParallel enables concurrent per-task evaluation
func WithParallel(parallel bool) Option {
	return func(o *Options) {
		o.Parallel = parallel
	}
}

// WithWorkers bounds the number of goroutines used in parallel mode
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithLogger sets the logger for iteration traces
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
