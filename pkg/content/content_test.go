package content

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDerivedResults_SuccessFailurePair(t *testing.T) {
	c := Choice{
		SuccessRate: 80,
		Success:     &Result{Description: []string{"You made it."}},
		Failure:     &Result{Type: "ouch", Chance: 55},
	}
	got := c.DerivedResults()
	require.Len(t, got, 2)
	assert.Equal(t, ResultSuccess, got[0].Type)
	assert.Equal(t, 80, got[0].Chance)
	assert.Equal(t, "ouch", got[1].Type)
	assert.Equal(t, 20, got[1].Chance)

	// the authored choice is left untouched
	assert.Equal(t, 55, c.Failure.Chance)
}

func TestDerivedResults_ExplicitListWins(t *testing.T) {
	c := Choice{
		SuccessRate: 80,
		Results:     []Result{{Chance: 30}, {Chance: 70}},
		Success:     &Result{},
	}
	got := c.DerivedResults()
	require.Len(t, got, 2)
	assert.Equal(t, 30, got[0].Chance)
}

func TestDerivedResults_MissingHalves(t *testing.T) {
	assert.Empty(t, Choice{SuccessRate: 50}.DerivedResults())

	only := Choice{SuccessRate: 150, Success: &Result{}}.DerivedResults()
	require.Len(t, only, 1)
	assert.Equal(t, 100, only[0].Chance)
}

func TestResultDecodesInlineEffects(t *testing.T) {
	doc := `
type: success
chance: 40
hp: small_damage
money: 25
item_gain: torch
status_effects:
  poison: 2
`
	var r Result
	require.NoError(t, yaml.Unmarshal([]byte(doc), &r))
	assert.Equal(t, 40, r.Chance)
	assert.Equal(t, "small_damage", string(r.HP))
	assert.Equal(t, "25", string(r.Money))
	assert.Equal(t, "torch", r.ItemGain)
	assert.Equal(t, 2, r.StatusEffects["poison"])

	var j Result
	require.NoError(t, json.Unmarshal([]byte(`{"chance":10,"hp":-4,"next":"cellar"}`), &j))
	assert.Equal(t, "-4", string(j.HP))
	assert.Equal(t, "cellar", j.Next)
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.AddEvent(Event{ID: "gate", Title: "The Gate"}))
	require.NoError(t, lib.AddItem(ItemDef{ID: "gem", Name: "Red Gem", Rarity: "rare"}))
	require.NoError(t, lib.AddItem(ItemDef{ID: "rock", Rarity: "common"}))
	require.NoError(t, lib.AddItem(ItemDef{ID: "ruby", Rarity: "Rare"}))
	require.NoError(t, lib.AddSkill(SkillDef{ID: "swim"}))

	err := lib.AddEvent(Event{Title: "nameless"})
	assert.True(t, errors.Is(err, ErrMissingID))

	e, ok := lib.Event("gate")
	require.True(t, ok)
	assert.Equal(t, "The Gate", e.Title)

	_, ok = lib.Event("nope")
	assert.False(t, ok)

	r, ok := lib.Rarity("gem")
	assert.True(t, ok)
	assert.Equal(t, "rare", r)
	assert.Equal(t, []string{"gem", "ruby"}, lib.ItemsOfRarity("rare"))
	assert.Equal(t, "Red Gem", lib.ItemName("gem"))
	assert.Equal(t, "rock", lib.ItemName("rock"))
	assert.Equal(t, []string{"swim"}, lib.SkillIDs())
}

func TestLibraryPoolFallbacks(t *testing.T) {
	lib := NewLibrary()
	lib.AddPool(Pool{Floor: 1, Area: "crypt", Events: []string{"a"}})
	lib.AddPool(Pool{Area: "crypt", Events: []string{"b"}})
	lib.AddPool(Pool{Floor: 2, Events: []string{"c"}})

	p, ok := lib.PoolFor(1, "crypt")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, p.Events)

	p, ok = lib.PoolFor(3, "crypt")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, p.Events)

	p, ok = lib.PoolFor(2, "forest")
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, p.Events)

	_, ok = lib.PoolFor(9, "forest")
	assert.False(t, ok)

	lib.AddPool(Pool{Events: []string{"d"}})
	p, ok = lib.PoolFor(9, "forest")
	require.True(t, ok)
	assert.Equal(t, []string{"d"}, p.Events)

	p, ok = lib.PoolFor(1, "crypt")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, p.Events)
}

func TestLibraryMergeDeath(t *testing.T) {
	lib := NewLibrary()
	lib.MergeDeath(DeathTable{Endings: map[string][]string{"generic": {"one"}}, Closings: []string{"c1"}})
	lib.MergeDeath(DeathTable{Endings: map[string][]string{"generic": {"two"}, "death_by_fall": {"splat"}}})

	d := lib.Death()
	assert.Equal(t, []string{"one", "two"}, d.Endings["generic"])
	assert.Equal(t, []string{"splat"}, d.Endings["death_by_fall"])
	assert.Equal(t, []string{"c1"}, d.Closings)
}

func TestForcedDefaultsID(t *testing.T) {
	lib := NewLibrary()
	require.NoError(t, lib.AddForced(ForcedEvent{Event: "boss"}))
	assert.Equal(t, "boss", lib.Forced()[0].ID)
	assert.Error(t, lib.AddForced(ForcedEvent{}))
}
