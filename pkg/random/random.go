// Package random provides the pseudo-random source shared by every draw in a run.
//
// A run owns exactly one Source. The weighted resolver, value keywords, random
// item and skill picks, deck draws and death endings all read from it, so a
// fixed seed reproduces a run as long as the same inputs arrive in the same order.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Source is the narrow view of a PRNG the engine needs.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a uniform integer in [0, n). n must be > 0.
	IntN(n int) int
}

// New returns a PCG-backed source for the given seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Locked serializes access to a Source so the run's stream can be shared with
// interaction handlers, which run on their own goroutine.
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src.
func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

// IntN implements Source.
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Between returns a uniform integer in the closed range [lo, hi].
// The bounds may be given in either order.
func Between(src Source, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Pick returns a uniformly chosen element of items.
// The second return value is false when items is empty.
func Pick[T any](src Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[src.IntN(len(items))], true
}

// Scripted replays a fixed list of values, each reduced modulo n.
// It is meant for tests that need to steer a specific draw.
type Scripted struct {
	Values []int
	next   int
}

// IntN implements Source.
func (s *Scripted) IntN(n int) int {
	if len(s.Values) == 0 || n <= 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
