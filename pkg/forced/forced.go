// Package forced picks the forced event that overrides the regular pool draw.
package forced

import (
	"slices"
	"sort"
	"strings"

	"github.com/KH-Mind/tbrr-sub000/pkg/conditionals"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
)

// SessionView is what the selector reads from the session.
type SessionView interface {
	conditionals.SessionView
	GetFloor() int
	ForcedFired(id string) bool
}

// Selector evaluates forced events in priority order.
type Selector struct {
	eval   *conditionals.Evaluator
	events []content.ForcedEvent
}

// New creates a selector. Events are ordered by descending priority with
// authored order kept for ties.
func New(eval *conditionals.Evaluator, events []content.ForcedEvent) *Selector {
	sorted := slices.Clone(events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return &Selector{eval: eval, events: sorted}
}

// Select returns the first forced event that applies, or false when the
// regular draw should happen.
func (s *Selector) Select(a conditionals.ActorView, sess SessionView) (content.ForcedEvent, bool) {
	for _, f := range s.events {
		if f.Once && sess.ForcedFired(f.ID) {
			continue
		}
		if len(f.Floors) > 0 && !slices.Contains(f.Floors, sess.GetFloor()) {
			continue
		}
		if len(f.Areas) > 0 && !slices.ContainsFunc(f.Areas, func(area string) bool {
			return strings.EqualFold(area, sess.GetArea())
		}) {
			continue
		}
		if !s.eval.Evaluate(f.Condition, a, sess) {
			continue
		}
		return f, true
	}
	return content.ForcedEvent{}, false
}
