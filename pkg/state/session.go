package state

import (
	"github.com/google/uuid"
)

// Session is the mutable state of one run: where the player is, what has
// happened so far, and the per-pool decks.
type Session struct {
	ID              uuid.UUID           `json:"id"`
	Flags           map[string]bool     `json:"flags,omitempty"` // presence only
	Floor           int                 `json:"floor"`
	Area            string              `json:"area,omitempty"`
	Map             string              `json:"map,omitempty"`
	Reentrant       bool                `json:"reentrant,omitempty"` // set while a chained event resolves
	EventCount      int                 `json:"event_count"`
	Decks           map[string][]string `json:"decks,omitempty"` // pool key -> ids left in the current cycle
	LastLoggedFloor int                 `json:"last_logged_floor"`
	Over            bool                `json:"over,omitempty"`
	Ending          string              `json:"ending,omitempty"`
	DeathStats      map[string]int      `json:"death_stats,omitempty"`
	FiredForced     map[string]bool     `json:"fired_forced,omitempty"`
	CurrentEvent    string              `json:"current_event,omitempty"`
}

// NewSession starts a run on floor 1 of the given area.
func NewSession(area string) *Session {
	return &Session{
		ID:          uuid.New(),
		Flags:       make(map[string]bool),
		Floor:       1,
		Area:        area,
		Decks:       make(map[string][]string),
		DeathStats:  make(map[string]int),
		FiredForced: make(map[string]bool),
	}
}

func (s *Session) HasFlag(name string) bool {
	return s.Flags[name]
}

func (s *Session) GetArea() string {
	return s.Area
}

// SetFlag marks a flag present.
func (s *Session) SetFlag(name string) {
	if s.Flags == nil {
		s.Flags = make(map[string]bool)
	}
	s.Flags[name] = true
}

// ClearFlag removes a flag.
func (s *Session) ClearFlag(name string) {
	delete(s.Flags, name)
}

// EnterChain marks the session reentrant and returns a func restoring the previous value.
func (s *Session) EnterChain() func() {
	prev := s.Reentrant
	s.Reentrant = true
	return func() { s.Reentrant = prev }
}

// Deck returns the ids left in the deck for a pool key.
func (s *Session) Deck(key string) []string {
	return s.Decks[key]
}

// SetDeck stores the ids left in the deck for a pool key.
func (s *Session) SetDeck(key string, ids []string) {
	if s.Decks == nil {
		s.Decks = make(map[string][]string)
	}
	s.Decks[key] = ids
}

// RecordDeath ends the run and counts the cause.
func (s *Session) RecordDeath(cause string) {
	if s.DeathStats == nil {
		s.DeathStats = make(map[string]int)
	}
	s.DeathStats[cause]++
	s.Over = true
}

// ForcedFired reports whether a once-only forced event has already fired.
func (s *Session) ForcedFired(id string) bool {
	return s.FiredForced[id]
}

// MarkForced records that a forced event fired.
func (s *Session) MarkForced(id string) {
	if s.FiredForced == nil {
		s.FiredForced = make(map[string]bool)
	}
	s.FiredForced[id] = true
}

// Descend moves the run to the next floor.
func (s *Session) Descend() {
	s.Floor++
}

func (s *Session) GetFloor() int {
	return s.Floor
}
