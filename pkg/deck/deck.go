// Package deck draws events from a pool without replacement.
//
// The remaining ids of each pool live in the session, so a deck survives
// save and load. Every draw is an independent uniform pick from what is left;
// an exhausted deck is refilled from the pool's current membership.
package deck

import (
	"slices"

	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/random"
)

// Store holds the remaining ids per pool key.
type Store interface {
	Deck(key string) []string
	SetDeck(key string, ids []string)
}

// Sampler draws from pool decks.
type Sampler struct {
	rng random.Source
}

// New creates a sampler drawing from rng.
func New(rng random.Source) *Sampler {
	return &Sampler{rng: rng}
}

// Draw removes and returns one id from the pool's deck.
// It returns false when the pool has no members.
func (d *Sampler) Draw(store Store, pool content.Pool) (string, bool) {
	return d.DrawWhere(store, pool, nil)
}

// DrawWhere is Draw restricted to ids accepted by keep; a nil keep accepts
// everything. Rejected ids stay in the deck. When nothing left in the cycle is
// accepted a new cycle starts, and if nothing in the fresh cycle is accepted
// either, DrawWhere returns false.
func (d *Sampler) DrawWhere(store Store, pool content.Pool, keep func(id string) bool) (string, bool) {
	members := unique(pool.Events)
	if len(members) == 0 {
		return "", false
	}
	key := pool.Key()

	remaining := filterMembers(store.Deck(key), members)
	id, ok := d.take(&remaining, keep)
	if !ok {
		remaining = slices.Clone(members)
		id, ok = d.take(&remaining, keep)
	}
	store.SetDeck(key, remaining)
	return id, ok
}

func (d *Sampler) take(remaining *[]string, keep func(id string) bool) (string, bool) {
	eligible := *remaining
	if keep != nil {
		eligible = slices.DeleteFunc(slices.Clone(eligible), func(id string) bool { return !keep(id) })
	}
	id, ok := random.Pick(d.rng, eligible)
	if !ok {
		return "", false
	}
	i := slices.Index(*remaining, id)
	*remaining = slices.Delete(*remaining, i, i+1)
	return id, true
}

// filterMembers drops ids that are no longer in the pool.
func filterMembers(deck, members []string) []string {
	out := make([]string, 0, len(deck))
	for _, id := range deck {
		if slices.Contains(members, id) && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func unique(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
