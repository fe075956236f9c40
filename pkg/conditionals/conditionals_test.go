package conditionals

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockActorView implements ActorView for testing
type mockActorView struct {
	skills     []string
	items      []string
	resources  map[string]int
	status     map[string]int
	identity   map[string]string
	cruelWorld bool
	fatedOne   bool
}

func (m *mockActorView) HasSkill(id string) bool { return slices.Contains(m.skills, id) }
func (m *mockActorView) HasItem(id string) bool  { return slices.Contains(m.items, id) }
func (m *mockActorView) GetItems() []string      { return m.items }
func (m *mockActorView) GetResource(name string) (int, bool) {
	v, ok := m.resources[name]
	return v, ok
}
func (m *mockActorView) GetStatusEffect(id string) (int, bool) {
	v, ok := m.status[id]
	return v, ok
}
func (m *mockActorView) GetIdentity(field string) string { return m.identity[field] }
func (m *mockActorView) CruelWorldEnabled() bool         { return m.cruelWorld }
func (m *mockActorView) IsFatedOne() bool                { return m.fatedOne }

// mockSessionView implements SessionView for testing
type mockSessionView struct {
	flags map[string]bool
	area  string
}

func (m *mockSessionView) HasFlag(name string) bool { return m.flags[name] }
func (m *mockSessionView) GetArea() string          { return m.area }

type mockItems map[string]string

func (m mockItems) Rarity(id string) (string, bool) {
	r, ok := m[id]
	return r, ok
}

func newFixture() (*mockActorView, *mockSessionView) {
	a := &mockActorView{
		skills:    []string{"lockpicking", "swimming"},
		items:     []string{"rusty_key", "moon_pendant"},
		resources: map[string]int{"hp": 40, "ap": 3, "money": 120},
		status:    map[string]int{"poison": 2, "blessed": 0},
		identity: map[string]string{
			FieldGender:         "female",
			FieldGenderIdentity: "woman",
			FieldClothing:       "Tattered Robe",
			FieldRace:           "Half-Elf",
			FieldJob:            "Thief",
			FieldBackground:     "street urchin",
		},
		cruelWorld: true,
	}
	s := &mockSessionView{
		flags: map[string]bool{"met_witch": true},
		area:  "sunken_forest",
	}
	return a, s
}

func TestEvaluate(t *testing.T) {
	a, s := newFixture()
	eval := NewEvaluator(mockItems{"moon_pendant": "rare", "rusty_key": "common"})

	tests := []struct {
		name     string
		expr     string
		expected bool
	}{
		{"blank is true", "", true},
		{"whitespace is true", "   ", true},
		{"skill present", "skill:lockpicking", true},
		{"skill missing", "skill:flying", false},
		{"job match case-insensitive", "job:thief", true},
		{"job mismatch", "job:knight", false},
		{"item owned", "item:rusty_key", true},
		{"item missing", "item:gold_crown", false},
		{"ap >=", "ap>=3", true},
		{"ap >", "ap>3", false},
		{"money <", "money<121", true},
		{"money <=", "money<=119", false},
		{"hp >", "hp>39", true},
		{"unparsable literal", "hp>=lots", false},
		{"area match", "area:sunken_forest", true},
		{"area mismatch", "area:desert", false},
		{"status present", "status_effect[poison]", true},
		{"status present at zero", "status_effect[blessed]", true},
		{"status absent", "status_effect[burning]", false},
		{"status compare", "status_effect[poison]>=2", true},
		{"status compare fails", "status_effect[poison]>2", false},
		{"status equals", "status_effect[poison]=2", true},
		{"status unparsable value", "status_effect[poison]>=x", false},
		{"gender exact", "gender[female]", true},
		{"gender identity exact", "gender_identity[woman]", true},
		{"clothing exact ignores case", "clothing[tattered robe]", true},
		{"race exact mismatch", "race[elf]", false},
		{"race contains", "race_contains:elf", true},
		{"clothing contains", "clothing_contains:robe", true},
		{"background contains", "background_contains:urchin", true},
		{"job contains mismatch", "job_contains:sword", false},
		{"cruel world", "cruel_world", true},
		{"fated one", "fated_one", false},
		{"rarity owned", "has_any_item:rare", true},
		{"rarity not owned", "has_any_item:legendary", false},
		{"flag present", "flag:met_witch", true},
		{"flag absent", "flag:killed_witch", false},
		{"negation", "not:flag:killed_witch", true},
		{"negated true atom", "not:skill:lockpicking", false},
		{"unknown prefix fails", "mood:happy", false},
		{"and all true", "skill:lockpicking&item:rusty_key&ap>=1", true},
		{"and one false", "skill:lockpicking&item:gold_crown", false},
		{"or any true", "item:gold_crown|flag:met_witch", true},
		{"or none true", "item:gold_crown|flag:killed_witch", false},
		{"dnf", "item:gold_crown&skill:lockpicking|area:sunken_forest&not:fated_one", true},
		{"spaces around atoms", " skill:swimming & area:sunken_forest ", true},
		{"unknown inside and", "skill:swimming&bogus", false},
		{"unknown inside or", "bogus|skill:swimming", true},
		{"trailing or", "skill:flying|", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, eval.Evaluate(tt.expr, a, s), "expr %q", tt.expr)
		})
	}
}

func TestEvaluate_IsPure(t *testing.T) {
	a, s := newFixture()
	eval := NewEvaluator(nil)
	expr := "skill:lockpicking&hp>10|flag:other"
	first := eval.Evaluate(expr, a, s)
	for i := 0; i < 100; i++ {
		if eval.Evaluate(expr, a, s) != first {
			t.Fatalf("evaluation changed on call %d", i)
		}
	}
}

func TestEvaluate_NilViews(t *testing.T) {
	eval := NewEvaluator(nil)
	assert.True(t, eval.Evaluate("", nil, nil))
	assert.False(t, eval.Evaluate("skill:x", nil, nil))
	assert.False(t, eval.Evaluate("flag:x", nil, nil))
	assert.True(t, eval.Evaluate("not:area:x", nil, nil))
	assert.False(t, eval.Evaluate("has_any_item:rare", nil, nil))
}

func TestParse(t *testing.T) {
	t.Run("structure is OR of ANDs", func(t *testing.T) {
		x := Parse("a:1&skill:b|not:flag:c")
		if assert.Len(t, x.Terms, 2) {
			assert.Len(t, x.Terms[0].Atoms, 2)
			assert.Len(t, x.Terms[1].Atoms, 1)
			assert.True(t, x.Terms[1].Atoms[0].Negated)
			assert.Equal(t, FlagPred{Name: "c"}, x.Terms[1].Atoms[0].Pred)
			assert.IsType(t, UnknownPred{}, x.Terms[0].Atoms[0].Pred)
		}
	})

	t.Run("blank has no terms", func(t *testing.T) {
		assert.Empty(t, Parse(" ").Terms)
	})

	t.Run("double negation cancels", func(t *testing.T) {
		atom := Parse("not:not:skill:x").Terms[0].Atoms[0]
		assert.False(t, atom.Negated)
		assert.Equal(t, SkillPred{ID: "x"}, atom.Pred)
	})

	t.Run("comparison", func(t *testing.T) {
		atom := Parse("money<=50").Terms[0].Atoms[0]
		assert.Equal(t, ComparePred{Resource: "money", Op: OpLE, Value: 50, Valid: true}, atom.Pred)
	})

	t.Run("gender identity is not gender", func(t *testing.T) {
		atom := Parse("gender_identity[man]").Terms[0].Atoms[0]
		assert.Equal(t, IdentityPred{Field: FieldGenderIdentity, Value: "man"}, atom.Pred)
	})

	t.Run("unterminated bracket is unknown", func(t *testing.T) {
		atom := Parse("gender[man").Terms[0].Atoms[0]
		assert.IsType(t, UnknownPred{}, atom.Pred)
	})
}

func TestLint(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		count int
	}{
		{"clean", "skill:a&flag:b|hp>3", 0},
		{"unknown prefix", "mood:sad", 1},
		{"bad number", "ap>=many", 1},
		{"bad status number", "status_effect[x]<y", 1},
		{"empty atom", "skill:a&", 1},
		{"several", "foo|bar&hp>x", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Lint(tt.expr), tt.count)
		})
	}
}
