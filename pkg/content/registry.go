package content

import (
	"fmt"
	"math"
)

// StatusEffectDef describes the bounds of a status effect.
type StatusEffectDef struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Min       int    `json:"min" yaml:"min"`
	Max       int    `json:"max" yaml:"max"`
	Default   *int   `json:"default,omitempty" yaml:"default,omitempty"` // seed value when first applied
	AllowZero bool   `json:"allow_zero,omitempty" yaml:"allow_zero,omitempty"`
}

// UnknownStatusEffect is the definition used when a status effect id has no registration.
func UnknownStatusEffect(id string) StatusEffectDef {
	return StatusEffectDef{ID: id, Name: id, Min: 0, Max: math.MaxInt32}
}

// Clamp bounds v to [Min, Max].
func (d StatusEffectDef) Clamp(v int) int {
	return min(max(v, d.Min), d.Max)
}

// ItemDef is item metadata.
type ItemDef struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Rarity string `json:"rarity,omitempty" yaml:"rarity,omitempty"`
}

// SkillDef is skill metadata.
type SkillDef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Pool is the set of event ids that may be drawn on a floor and area.
// Floor 0 matches every floor; an empty Area matches every area.
type Pool struct {
	ID     string   `json:"id,omitempty" yaml:"id,omitempty"`
	Floor  int      `json:"floor,omitempty" yaml:"floor,omitempty"`
	Area   string   `json:"area,omitempty" yaml:"area,omitempty"`
	Events []string `json:"events" yaml:"events"`
}

// Key identifies the pool's deck in a session.
func (p Pool) Key() string {
	return PoolKey(p.Floor, p.Area)
}

// PoolKey builds the deck identity for a floor and area.
func PoolKey(floor int, area string) string {
	return fmt.Sprintf("%d/%s", floor, area)
}

// ForcedEvent overrides the pool draw when its condition holds.
// Higher Priority is evaluated first; ties keep authored order.
type ForcedEvent struct {
	ID        string   `json:"id" yaml:"id"`
	Event     string   `json:"event" yaml:"event"`
	Priority  int      `json:"priority,omitempty" yaml:"priority,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Floors    []int    `json:"floors,omitempty" yaml:"floors,omitempty"` // empty matches every floor
	Areas     []string `json:"areas,omitempty" yaml:"areas,omitempty"`   // empty matches every area
	Once      bool     `json:"once,omitempty" yaml:"once,omitempty"`
}

// DeathTable holds death narration keyed by "death_by_<cause>", tag, or "generic".
type DeathTable struct {
	Endings            map[string][]string `json:"endings" yaml:"endings"`
	SensitiveEndings   map[string][]string `json:"sensitive_endings,omitempty" yaml:"sensitive_endings,omitempty"`
	FollowUps          []string            `json:"follow_ups,omitempty" yaml:"follow_ups,omitempty"`
	SensitiveFollowUps []string            `json:"sensitive_follow_ups,omitempty" yaml:"sensitive_follow_ups,omitempty"`
	Closings           []string            `json:"closings,omitempty" yaml:"closings,omitempty"`
	Reprieves          []string            `json:"reprieves,omitempty" yaml:"reprieves,omitempty"`
}
