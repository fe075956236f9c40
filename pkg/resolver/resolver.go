// Package resolver picks one Result from a choice's weighted candidates.
package resolver

import (
	"errors"
	"strings"

	"github.com/KH-Mind/tbrr-sub000/pkg/conditionals"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/random"
)

// ErrNoResults is returned when a choice has nothing to resolve to.
var ErrNoResults = errors.New("choice has no results")

// Resolver selects outcomes using conditions and chance weights.
type Resolver struct {
	eval *conditionals.Evaluator
	rng  random.Source
}

// New creates a resolver.
func New(eval *conditionals.Evaluator, rng random.Source) *Resolver {
	return &Resolver{eval: eval, rng: rng}
}

// Resolve picks one of results.
//
// Conditioned results whose condition holds are the candidates. When none
// holds, every result is a candidate, so unconditioned results act as
// catch-alls. Weights are the chance values clamped at zero.
// If the total weight is zero the first candidate is returned.
func (r *Resolver) Resolve(results []content.Result, a conditionals.ActorView, s conditionals.SessionView) (content.Result, error) {
	if len(results) == 0 {
		return content.Result{}, ErrNoResults
	}

	var candidates []content.Result
	for _, res := range results {
		if strings.TrimSpace(res.Condition) != "" && r.eval.Evaluate(res.Condition, a, s) {
			candidates = append(candidates, res)
		}
	}
	if len(candidates) == 0 {
		candidates = results
	}

	total := TotalWeight(candidates)
	if total == 0 {
		return candidates[0], nil
	}
	draw := r.rng.IntN(total) + 1
	return candidates[Select(candidates, draw)], nil
}

// TotalWeight sums the clamped weights of candidates.
func TotalWeight(candidates []content.Result) int {
	total := 0
	for _, c := range candidates {
		total += Weight(c)
	}
	return total
}

// Weight is the effective weight of a result. It is never negative.
func Weight(r content.Result) int {
	return max(r.Chance, 0)
}

// Select maps a draw in [1, total] to the index of the first candidate whose
// running weight reaches it. Draws past the total select the last candidate.
func Select(candidates []content.Result, draw int) int {
	running := 0
	for i, c := range candidates {
		running += Weight(c)
		if running >= draw {
			return i
		}
	}
	return len(candidates) - 1
}
