package death

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/random"
	"github.com/KH-Mind/tbrr-sub000/pkg/state"
)

type staticTables content.DeathTable

func (t staticTables) Death() content.DeathTable { return content.DeathTable(t) }

var table = staticTables{
	Endings: map[string][]string{
		"death_by_fall": {"You fell."},
		"undead":        {"The dead claim you."},
		"generic":       {"You died."},
	},
	SensitiveEndings: map[string][]string{
		"death_by_fall":   {"You fell, badly."},
		"death_by_hunger": {"Starved."},
	},
	FollowUps:          []string{"Silence follows."},
	SensitiveFollowUps: []string{"Crows gather."},
	Closings:           []string{"The dungeon waits."},
	Reprieves:          []string{"Not yet."},
}

func TestResolve_Chain(t *testing.T) {
	tests := []struct {
		name      string
		tables    staticTables
		cause     string
		tags      []string
		sensitive bool
		wantKey   string
	}{
		{"direct cause", table, "fall", nil, false, "death_by_fall"},
		{"tag fallback skips none and lowercases", table, "drowning", []string{"None", "UNDEAD"}, false, "undead"},
		{"generic fallback", table, "drowning", []string{"forest"}, false, "generic"},
		{"sensitive only with toggle", table, "hunger", nil, true, "death_by_hunger"},
		{"sensitive ignored without toggle", table, "hunger", nil, false, "generic"},
		{"built-in when tables are empty", staticTables{}, "anything", nil, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := actor.New("Ash", 10, 1, 1)
			a.CruelWorld = tt.sensitive
			s := state.NewSession("")
			n := New(tt.tables, random.New(2), nil).Resolve(tt.cause, tt.tags, a, s)

			assert.True(t, n.Resolved)
			assert.Equal(t, tt.wantKey, n.Key)
			assert.NotEmpty(t, n.Ending)
			assert.True(t, s.Over)
			assert.Equal(t, 1, s.DeathStats[tt.cause])
		})
	}
}

func TestResolve_SensitiveUnion(t *testing.T) {
	a := actor.New("Ash", 10, 1, 1)
	a.CruelWorld = true
	seen := map[string]bool{}
	r := New(table, random.New(9), nil)
	for i := 0; i < 200; i++ {
		n := r.Resolve("fall", nil, a, state.NewSession(""))
		seen[n.Ending] = true
		seen[n.FollowUp] = true
	}
	for _, want := range []string{"You fell.", "You fell, badly.", "Silence follows.", "Crows gather."} {
		assert.True(t, seen[want], "expected %q to be drawn", want)
	}
}

func TestResolve_EmptyCause(t *testing.T) {
	a := actor.New("Ash", 10, 1, 1)
	a.HP = 0
	s := state.NewSession("")
	n := New(table, random.New(1), nil).Resolve("  ", nil, a, s)

	assert.False(t, n.Resolved)
	assert.False(t, a.Lost)
	assert.False(t, s.Over)
	assert.Empty(t, s.DeathStats)
}

func TestResolve_LostOrSpared(t *testing.T) {
	r := New(table, random.New(1), nil)

	mortal := actor.New("Ash", 10, 1, 1)
	mortal.HP = 0
	n := r.Resolve("fall", nil, mortal, state.NewSession(""))
	assert.True(t, mortal.Lost)
	assert.Empty(t, n.Reprieve)
	assert.Equal(t, []string{"You fell.", "Silence follows.", "The dungeon waits."}, n.Lines())

	fated := actor.New("Bo", 10, 1, 1)
	fated.FatedOne = true
	fated.HP = 0
	s := state.NewSession("")
	n = r.Resolve("fall", nil, fated, s)
	assert.False(t, fated.Lost)
	assert.Equal(t, 1, fated.HP)
	assert.Equal(t, "Not yet.", n.Reprieve)
	assert.True(t, s.Over)
}
