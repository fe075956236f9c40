package content

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrMissingID is returned when content without an id is added to a Library.
var ErrMissingID = errors.New("content has no id")

// Library is the id-cached, read-only view of all loaded content.
// It is filled once by a loader and then shared by every run.
type Library struct {
	events        map[string]*Event
	statusEffects map[string]StatusEffectDef
	items         map[string]ItemDef
	skills        map[string]SkillDef
	pools         map[string]Pool
	forced        []ForcedEvent
	death         DeathTable
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{
		events:        make(map[string]*Event),
		statusEffects: make(map[string]StatusEffectDef),
		items:         make(map[string]ItemDef),
		skills:        make(map[string]SkillDef),
		pools:         make(map[string]Pool),
	}
}

// AddEvent registers an event. A later event with the same id replaces the earlier one.
func (l *Library) AddEvent(e Event) error {
	if e.ID == "" {
		return fmt.Errorf("event %q: %w", e.Title, ErrMissingID)
	}
	l.events[e.ID] = &e
	return nil
}

// AddStatusEffect registers a status effect definition.
func (l *Library) AddStatusEffect(d StatusEffectDef) error {
	if d.ID == "" {
		return fmt.Errorf("status effect: %w", ErrMissingID)
	}
	l.statusEffects[d.ID] = d
	return nil
}

// AddItem registers item metadata.
func (l *Library) AddItem(d ItemDef) error {
	if d.ID == "" {
		return fmt.Errorf("item: %w", ErrMissingID)
	}
	l.items[d.ID] = d
	return nil
}

// AddSkill registers skill metadata.
func (l *Library) AddSkill(d SkillDef) error {
	if d.ID == "" {
		return fmt.Errorf("skill: %w", ErrMissingID)
	}
	l.skills[d.ID] = d
	return nil
}

// AddPool registers an event pool under its floor/area key.
func (l *Library) AddPool(p Pool) {
	l.pools[p.Key()] = p
}

// AddForced registers a forced event.
func (l *Library) AddForced(f ForcedEvent) error {
	if f.ID == "" {
		f.ID = f.Event
	}
	if f.ID == "" {
		return fmt.Errorf("forced event: %w", ErrMissingID)
	}
	l.forced = append(l.forced, f)
	return nil
}

// MergeDeath folds t into the library's death table.
func (l *Library) MergeDeath(t DeathTable) {
	if l.death.Endings == nil {
		l.death.Endings = make(map[string][]string)
	}
	if l.death.SensitiveEndings == nil {
		l.death.SensitiveEndings = make(map[string][]string)
	}
	for k, v := range t.Endings {
		l.death.Endings[k] = append(l.death.Endings[k], v...)
	}
	for k, v := range t.SensitiveEndings {
		l.death.SensitiveEndings[k] = append(l.death.SensitiveEndings[k], v...)
	}
	l.death.FollowUps = append(l.death.FollowUps, t.FollowUps...)
	l.death.SensitiveFollowUps = append(l.death.SensitiveFollowUps, t.SensitiveFollowUps...)
	l.death.Closings = append(l.death.Closings, t.Closings...)
	l.death.Reprieves = append(l.death.Reprieves, t.Reprieves...)
}

// Event returns the event with the given id.
func (l *Library) Event(id string) (*Event, bool) {
	e, ok := l.events[id]
	return e, ok
}

// EventIDs returns every event id in sorted order.
func (l *Library) EventIDs() []string {
	ids := make([]string, 0, len(l.events))
	for id := range l.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StatusEffect returns a status effect definition.
func (l *Library) StatusEffect(id string) (StatusEffectDef, bool) {
	d, ok := l.statusEffects[id]
	return d, ok
}

// Rarity returns the rarity class of an item.
func (l *Library) Rarity(itemID string) (string, bool) {
	d, ok := l.items[itemID]
	if !ok || d.Rarity == "" {
		return "", false
	}
	return d.Rarity, true
}

// Item returns item metadata.
func (l *Library) Item(id string) (ItemDef, bool) {
	d, ok := l.items[id]
	return d, ok
}

// ItemsOfRarity returns every registered item id of the rarity, sorted.
func (l *Library) ItemsOfRarity(rarity string) []string {
	var ids []string
	for id, d := range l.items {
		if strings.EqualFold(d.Rarity, rarity) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SkillIDs returns every registered skill id, sorted.
func (l *Library) SkillIDs() []string {
	ids := make([]string, 0, len(l.skills))
	for id := range l.skills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ItemName returns the display name of an item, or its id when unknown.
func (l *Library) ItemName(id string) string {
	if d, ok := l.items[id]; ok && d.Name != "" {
		return d.Name
	}
	return id
}

// SkillName returns the display name of a skill, or its id when unknown.
func (l *Library) SkillName(id string) string {
	if d, ok := l.skills[id]; ok && d.Name != "" {
		return d.Name
	}
	return id
}

// StatusName returns the display name of a status effect, or its id when unknown.
func (l *Library) StatusName(id string) string {
	if d, ok := l.statusEffects[id]; ok && d.Name != "" {
		return d.Name
	}
	return id
}

// PoolFor returns the most specific pool for a floor and area:
// exact match, then any floor in the area, then any area on the floor, then
// the catch-all pool registered with neither.
func (l *Library) PoolFor(floor int, area string) (Pool, bool) {
	for _, key := range []string{PoolKey(floor, area), PoolKey(0, area), PoolKey(floor, ""), PoolKey(0, "")} {
		if p, ok := l.pools[key]; ok {
			return p, true
		}
	}
	return Pool{}, false
}

// Pools returns every registered pool ordered by key.
func (l *Library) Pools() []Pool {
	keys := make([]string, 0, len(l.pools))
	for k := range l.pools {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Pool, 0, len(keys))
	for _, k := range keys {
		out = append(out, l.pools[k])
	}
	return out
}

// Forced returns the forced events in authored order.
func (l *Library) Forced() []ForcedEvent {
	return slices.Clone(l.forced)
}

// Death returns the merged death table.
func (l *Library) Death() DeathTable {
	return l.death
}
