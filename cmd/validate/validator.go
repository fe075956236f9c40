package main

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/KH-Mind/tbrr-sub000/pkg/conditionals"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/valueexpr"
)

// ContentValidator collects problems found in a loaded library.
// Errors break play; warnings are legal but probably unintended.
type ContentValidator struct {
	lib      *content.Library
	errors   []string
	warnings []string
}

func (v *ContentValidator) validateLibrary(lib *content.Library) {
	v.lib = lib

	for _, id := range lib.EventIDs() {
		ev, _ := lib.Event(id)
		v.validateEvent(ev)
	}

	for _, pool := range lib.Pools() {
		where := fmt.Sprintf("pool %s", pool.Key())
		if len(pool.Events) == 0 {
			v.addWarning("%s has no events", where)
		}
		for _, id := range pool.Events {
			v.requireEvent(where, id)
		}
	}

	for _, f := range lib.Forced() {
		where := fmt.Sprintf("forced event %s", f.ID)
		v.requireEvent(where, f.Event)
		v.validateCondition(where, f.Condition)
	}

	if len(lib.Death().Endings[generic]) == 0 {
		v.addWarning("death table has no %q endings; the built-in line will be used", generic)
	}
}

const generic = "generic"

func (v *ContentValidator) validateEvent(ev *content.Event) {
	where := "event " + ev.ID
	v.validateIDFormat(where, ev.ID)

	labels := make([]string, 0, len(ev.Requirements))
	for label := range ev.Requirements {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		v.validateCondition(where+" requirement "+label, ev.Requirements[label])
	}
	for _, id := range ev.RequiredItems {
		v.checkItem(where, id)
	}

	if ev.Next != "" {
		v.requireEvent(where, ev.Next)
	}
	if ev.InitialEffects != nil {
		v.validateEffects(where+" initial effects", ev.InitialEffects)
	}
	if ev.Interaction != nil {
		v.validateInteraction(where, ev.Interaction)
	}
	if ev.Death && len(ev.Choices) > 0 {
		v.addWarning("%s is a death event; its choices are never offered", where)
	}
	if len(ev.Choices) == 0 && ev.Next == "" && ev.InitialEffects == nil && ev.Interaction == nil && !ev.Death && len(ev.Description) == 0 {
		v.addWarning("%s has no description, choices or effects", where)
	}

	for i, c := range ev.Choices {
		cw := fmt.Sprintf("%s choice %d (%s)", where, i+1, c.Text)
		v.validateCondition(cw, c.Condition)
		if c.APCost < 0 {
			v.addError("%s has negative ap_cost %d", cw, c.APCost)
		}
		if c.SuccessRate < 0 || c.SuccessRate > 100 {
			v.addError("%s success_rate %d is outside 0-100", cw, c.SuccessRate)
		}
		results := c.DerivedResults()
		if len(results) == 0 {
			v.addError("%s has no results", cw)
		}
		for j, r := range results {
			v.validateResult(fmt.Sprintf("%s result %d", cw, j+1), r)
		}
	}
}

func (v *ContentValidator) validateResult(where string, r content.Result) {
	v.validateCondition(where, r.Condition)
	if r.Chance < 0 {
		v.addWarning("%s has negative chance %d and will never be picked", where, r.Chance)
	}
	v.validateEffects(where, &r.Effects)
	if canHurt(r.HP) && r.DeathCause == "" {
		v.addWarning("%s can lower hp but has no death_cause", where)
	}
}

func (v *ContentValidator) validateEffects(where string, e *content.Effects) {
	v.validateValue(where, e.HP, valueexpr.KindHP)
	v.validateValue(where, e.AP, valueexpr.KindAP)
	v.validateValue(where, e.Money, valueexpr.KindMoney)

	for _, id := range append([]string{e.ItemGain, e.ItemLoss}, append(e.ItemGains, e.ItemLosses...)...) {
		if id != "" {
			v.checkItem(where, id)
		}
	}
	for _, p := range []*content.RandomPick{e.RandomItemGain, e.RandomItemLoss} {
		if p != nil && len(v.lib.ItemsOfRarity(p.Rarity)) == 0 {
			v.addWarning("%s asks for a random %q item but none exist", where, p.Rarity)
		}
	}

	ids := make([]string, 0, len(e.StatusEffects))
	for id := range e.StatusEffects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := v.lib.StatusEffect(id); !ok {
			v.addWarning("%s uses unregistered status effect %q", where, id)
		}
	}

	if e.Next != "" {
		v.requireEvent(where, e.Next)
	}
	if e.Interaction != nil {
		v.validateInteraction(where, e.Interaction)
	}
}

func (v *ContentValidator) validateInteraction(where string, in *content.Interaction) {
	if in.Type == "" {
		v.addError("%s has an interaction without a type", where)
	}
	keys := make([]string, 0, len(in.Results))
	for k := range in.Results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		follow := in.Results[k]
		fw := fmt.Sprintf("%s interaction result %s", where, k)
		v.validateValue(fw, follow.HP, valueexpr.KindHP)
		v.validateValue(fw, follow.Money, valueexpr.KindMoney)
		if follow.Next != "" {
			v.requireEvent(fw, follow.Next)
		}
	}
}

func (v *ContentValidator) validateCondition(where, expr string) {
	for _, d := range conditionals.Lint(expr) {
		v.addError("%s condition %s", where, d)
	}
}

func (v *ContentValidator) validateValue(where string, val valueexpr.Expr, kind valueexpr.Kind) {
	if err := valueexpr.Check(val, kind); err != nil {
		v.addError("%s: %v", where, err)
	}
}

func (v *ContentValidator) requireEvent(where, id string) {
	if _, ok := v.lib.Event(id); !ok {
		v.addError("%s refers to unknown event %q", where, id)
	}
}

func (v *ContentValidator) checkItem(where, id string) {
	if _, ok := v.lib.Item(id); !ok {
		v.addWarning("%s uses unregistered item %q", where, id)
	}
}

func (v *ContentValidator) validateIDFormat(where, id string) {
	if id != "" && !validIDRegex.MatchString(id) {
		v.addError("%s id should be lowercase snake_case", where)
	}
}

func (v *ContentValidator) addError(format string, args ...any) {
	v.errors = append(v.errors, "  - "+fmt.Sprintf(format, args...))
}

func (v *ContentValidator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// canHurt reports whether a valid hp value can reduce hp.
func canHurt(val valueexpr.Expr) bool {
	raw := strings.TrimSpace(string(val))
	if raw == "" {
		return false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n <= -1
	}
	word := valueexpr.Normalize(raw)
	return strings.HasSuffix(word, "_damage") || strings.HasPrefix(word, "hp_set") || strings.HasPrefix(word, "hp_to_")
}
