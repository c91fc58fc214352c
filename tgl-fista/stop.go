package tglfista

import (
	"fmt"
	"math"
)

// StopReason records why a solve ended.
type StopReason int

const (
	// ReasonMaxIter means the iteration budget ran out.
	ReasonMaxIter StopReason = iota
	// ReasonConverged means the stop policy was satisfied.
	ReasonConverged
	// ReasonStall means a proximal gradient step no longer moved the iterate.
	ReasonStall
)

func (r StopReason) String() string {
	switch r {
	case ReasonMaxIter:
		return "max-iter"
	case ReasonConverged:
		return "converged"
	case ReasonStall:
		return "stall"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// done reports whether the policy is satisfied after iteration iter, given
// the objective history funcVal (one entry per completed iteration).
// Difference and floor tests only start at iteration 2.
func (p StopPolicy) done(funcVal []float64, iter, maxIter int, tol float64) bool {
	if p == StopMaxIter {
		return iter >= maxIter
	}
	if iter < 2 || len(funcVal) < 2 {
		return false
	}

	last, prev := funcVal[len(funcVal)-1], funcVal[len(funcVal)-2]
	switch p {
	case StopAbsolute:
		return math.Abs(last-prev) <= tol
	case StopRelative:
		return math.Abs(last-prev) <= tol*prev
	case StopFloor:
		return last <= tol
	}
	return false
}
