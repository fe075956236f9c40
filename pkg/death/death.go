// Package death narrates the end of a run.
//
// Endings are looked up by "death_by_<cause>", then by each of the event's
// tags, then under "generic". A built-in line guarantees there is always an
// ending to show.
package death

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/random"
	"github.com/KH-Mind/tbrr-sub000/pkg/state"
)

const (
	GenericKey = "generic"
	keyPrefix  = "death_by_"

	fallbackEnding   = "Your journey ends here."
	fallbackReprieve = "Fate is not finished with you. You wake, barely alive."
)

// Tables supplies the death narration. *content.Library satisfies it.
type Tables interface {
	Death() content.DeathTable
}

// Narrative is the text produced for a death.
type Narrative struct {
	Resolved bool // false when the cause was missing and nothing happened
	Cause    string
	Key      string // table key the ending came from; empty for the built-in line
	Ending   string
	FollowUp string
	Closing  string
	Reprieve string // set when the actor was spared
}

// Lines returns the narrative in display order.
func (n Narrative) Lines() []string {
	var out []string
	for _, l := range []string{n.Ending, n.FollowUp, n.Closing, n.Reprieve} {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Resolver resolves deaths.
type Resolver struct {
	tables Tables
	rng    random.Source
	logger *slog.Logger
}

// New creates a death resolver.
func New(tables Tables, rng random.Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tables: tables, rng: rng, logger: logger}
}

// Resolve narrates a death by cause and updates the actor and session.
//
// An empty cause is an authoring error: nothing is changed and the narrative
// is unresolved. Otherwise the session is over and the cause is counted. A
// fated actor is spared with 1 HP; anyone else is lost.
func (r *Resolver) Resolve(cause string, tags []string, a *actor.Actor, s *state.Session) Narrative {
	cause = strings.TrimSpace(cause)
	if cause == "" {
		r.logger.Warn("Death without a cause, actor spared", "actor_id", a.ID.String())
		return Narrative{}
	}

	t := r.tables.Death()
	sensitive := a.CruelWorldEnabled()
	n := Narrative{Resolved: true, Cause: cause}

	key, endings := r.lookup(t, cause, tags, sensitive)
	n.Key = key
	n.Ending, _ = random.Pick(r.rng, endings)
	if n.Ending == "" {
		n.Ending = fallbackEnding
	}

	followUps := t.FollowUps
	if sensitive {
		followUps = append(slices.Clone(followUps), t.SensitiveFollowUps...)
	}
	n.FollowUp, _ = random.Pick(r.rng, followUps)
	n.Closing, _ = random.Pick(r.rng, t.Closings)

	if a.IsFatedOne() {
		n.Reprieve, _ = random.Pick(r.rng, t.Reprieves)
		if n.Reprieve == "" {
			n.Reprieve = fallbackReprieve
		}
		a.SetResource(actor.HP, 1)
		a.Lost = false
	} else {
		a.Lost = true
	}

	s.RecordDeath(cause)
	r.logger.Info("Actor died",
		"cause", cause,
		"key", key,
		"fated", a.IsFatedOne(),
		"session_id", s.ID.String())
	return n
}

// lookup walks the fallback chain and returns the key and endings found.
func (r *Resolver) lookup(t content.DeathTable, cause string, tags []string, sensitive bool) (string, []string) {
	keys := []string{keyPrefix + cause}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || tag == "none" {
			continue
		}
		keys = append(keys, tag)
	}
	keys = append(keys, GenericKey)

	for _, k := range keys {
		endings := t.Endings[k]
		if sensitive {
			endings = append(slices.Clone(endings), t.SensitiveEndings[k]...)
		}
		if len(endings) > 0 {
			return k, endings
		}
	}
	return "", nil
}
