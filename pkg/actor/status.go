package actor

import "github.com/KH-Mind/tbrr-sub000/pkg/content"

// Transition describes what a status-effect mutation did.
type Transition int

const (
	Unchanged Transition = iota
	NewlySet             // absent -> present
	Increased
	Decreased
	Cured   // removed while it had a positive value
	Removed // removed while it sat at or below zero
)

func (t Transition) String() string {
	switch t {
	case NewlySet:
		return "newly_set"
	case Increased:
		return "increased"
	case Decreased:
		return "decreased"
	case Cured:
		return "cured"
	case Removed:
		return "removed"
	}
	return "unchanged"
}

// StatusChange is the result of MutateStatus.
type StatusChange struct {
	ID         string
	Transition Transition
	Old        int
	New        int
	WasPresent bool
	Present    bool
}

// MutateStatus applies delta to the status effect described by def.
//
// An absent effect starts from def.Default when one is set, otherwise from 0.
// The new value is clamped to [def.Min, def.Max] and the effect is removed
// when it lands on def.Min unless def.AllowZero is set. An absent effect
// without a default that is mutated by 0 stays absent.
func (a *Actor) MutateStatus(def content.StatusEffectDef, delta int) StatusChange {
	if a.StatusEffects == nil {
		a.StatusEffects = make(map[string]int)
	}
	old, present := a.StatusEffects[def.ID]
	ch := StatusChange{ID: def.ID, Old: old, WasPresent: present}

	if !present && delta == 0 && def.Default == nil {
		return ch
	}

	base := old
	if !present {
		base = 0
		if def.Default != nil {
			base = *def.Default
		}
	}
	next := def.Clamp(base + delta)

	if next <= def.Min && !def.AllowZero {
		delete(a.StatusEffects, def.ID)
		ch.New = next
		switch {
		case !present:
			ch.Transition = Unchanged
		case old > 0:
			ch.Transition = Cured
		default:
			ch.Transition = Removed
		}
		return ch
	}

	a.StatusEffects[def.ID] = next
	ch.New = next
	ch.Present = true
	switch {
	case !present:
		ch.Transition = NewlySet
	case next > old:
		ch.Transition = Increased
	case next < old:
		ch.Transition = Decreased
	}
	return ch
}
