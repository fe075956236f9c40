package actor

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/KH-Mind/tbrr-sub000/pkg/conditionals"
)

// Resource names.
const (
	HP    = "hp"
	AP    = "ap"
	Money = "money"
)

// Actor is the player character being run through the dungeon.
// All resources stay within [0, max].
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	HP       int `json:"hp"`
	MaxHP    int `json:"max_hp"`
	AP       int `json:"ap"`
	MaxAP    int `json:"max_ap"`
	Money    int `json:"money"`
	MaxMoney int `json:"max_money"`

	Inventory     []string       `json:"inventory,omitempty"` // unique, in acquisition order
	Skills        []string       `json:"skills,omitempty"`    // unique, in acquisition order
	StatusEffects map[string]int `json:"status_effects,omitempty"`

	Gender         string `json:"gender,omitempty"`
	GenderIdentity string `json:"gender_identity,omitempty"`
	Clothing       string `json:"clothing,omitempty"`
	Job            string `json:"job,omitempty"`
	Background     string `json:"background,omitempty"`
	BodyType       string `json:"body_type,omitempty"`
	RaceName       string `json:"race_name,omitempty"`
	RaceType       string `json:"race_type,omitempty"`
	Portrait       string `json:"portrait,omitempty"`

	CruelWorld bool `json:"cruel_world,omitempty"` // extended content enabled
	FatedOne   bool `json:"fated_one,omitempty"`   // immune to permadeath
	Lost       bool `json:"lost,omitempty"`        // permanently dead
}

// New creates an actor with full HP and AP.
func New(name string, maxHP, maxAP, maxMoney int) *Actor {
	a := &Actor{
		ID:            uuid.New(),
		Name:          name,
		MaxHP:         max(maxHP, 0),
		MaxAP:         max(maxAP, 0),
		MaxMoney:      max(maxMoney, 0),
		StatusEffects: make(map[string]int),
	}
	a.HP = a.MaxHP
	a.AP = a.MaxAP
	return a
}

var _ conditionals.ActorView = (*Actor)(nil)

// Clone returns a deep copy that shares no slices or maps with a.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}
	c := *a
	c.Inventory = slices.Clone(a.Inventory)
	c.Skills = slices.Clone(a.Skills)
	c.StatusEffects = maps.Clone(a.StatusEffects)
	return &c
}

// GetResource returns the current value of hp, ap or money.
func (a *Actor) GetResource(name string) (int, bool) {
	switch name {
	case HP:
		return a.HP, true
	case AP:
		return a.AP, true
	case Money:
		return a.Money, true
	}
	return 0, false
}

// GetResourceMax returns the maximum of hp, ap or money.
func (a *Actor) GetResourceMax(name string) (int, bool) {
	switch name {
	case HP:
		return a.MaxHP, true
	case AP:
		return a.MaxAP, true
	case Money:
		return a.MaxMoney, true
	}
	return 0, false
}

// Adjust adds delta to a resource, clamped to [0, max], and returns the applied change.
func (a *Actor) Adjust(name string, delta int) int {
	cur, ok := a.GetResource(name)
	if !ok {
		return 0
	}
	next := a.SetResource(name, cur+delta)
	return next - cur
}

// SetResource sets a resource clamped to [0, max] and returns the stored value.
func (a *Actor) SetResource(name string, v int) int {
	limit, ok := a.GetResourceMax(name)
	if !ok {
		return 0
	}
	v = min(max(v, 0), limit)
	switch name {
	case HP:
		a.HP = v
	case AP:
		a.AP = v
	case Money:
		a.Money = v
	}
	return v
}

// IsDead returns true if HP has reached 0.
func (a *Actor) IsDead() bool {
	return a.HP <= 0
}

func (a *Actor) HasItem(id string) bool {
	return slices.Contains(a.Inventory, id)
}

func (a *Actor) GetItems() []string {
	return a.Inventory
}

// AddItem adds an item if it is not already owned. It reports whether the inventory changed.
func (a *Actor) AddItem(id string) bool {
	if id == "" || a.HasItem(id) {
		return false
	}
	a.Inventory = append(a.Inventory, id)
	return true
}

// RemoveItem removes an owned item. It reports whether the inventory changed.
func (a *Actor) RemoveItem(id string) bool {
	i := slices.Index(a.Inventory, id)
	if i < 0 {
		return false
	}
	a.Inventory = slices.Delete(a.Inventory, i, i+1)
	return true
}

func (a *Actor) HasSkill(id string) bool {
	return slices.Contains(a.Skills, id)
}

// AddSkill teaches a skill. It reports whether the skill was new.
func (a *Actor) AddSkill(id string) bool {
	if id == "" || a.HasSkill(id) {
		return false
	}
	a.Skills = append(a.Skills, id)
	return true
}

// RemoveSkill forgets a skill. It reports whether the skill was known.
func (a *Actor) RemoveSkill(id string) bool {
	i := slices.Index(a.Skills, id)
	if i < 0 {
		return false
	}
	a.Skills = slices.Delete(a.Skills, i, i+1)
	return true
}

func (a *Actor) GetStatusEffect(id string) (int, bool) {
	v, ok := a.StatusEffects[id]
	return v, ok
}

// GetIdentity returns the identity field used by condition atoms.
// "race" reads the race name.
func (a *Actor) GetIdentity(field string) string {
	switch field {
	case conditionals.FieldGender:
		return a.Gender
	case conditionals.FieldGenderIdentity:
		return a.GenderIdentity
	case conditionals.FieldClothing:
		return a.Clothing
	case conditionals.FieldRace:
		return a.RaceName
	case conditionals.FieldJob:
		return a.Job
	case conditionals.FieldBackground:
		return a.Background
	}
	return ""
}

func (a *Actor) CruelWorldEnabled() bool { return a.CruelWorld }

func (a *Actor) IsFatedOne() bool { return a.FatedOne }
