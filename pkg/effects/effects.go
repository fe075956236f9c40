// Package effects applies effect bundles to an actor and session.
//
// Categories are applied in a fixed order: hp, ap, money, items, skills,
// status effects, cosmetics and media, flags, ending, next event, interaction.
// When an hp loss drops the actor to zero the remaining categories are skipped
// and the outcome reports the death.
package effects

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/random"
	"github.com/KH-Mind/tbrr-sub000/pkg/state"
	"github.com/KH-Mind/tbrr-sub000/pkg/valueexpr"
)

// Registries is the content the applier looks things up in.
// *content.Library satisfies it.
type Registries interface {
	StatusEffect(id string) (content.StatusEffectDef, bool)
	Rarity(itemID string) (string, bool)
	ItemsOfRarity(rarity string) []string
	SkillIDs() []string
	ItemName(id string) string
	SkillName(id string) string
	StatusName(id string) string
}

// Invoker runs interactions. *interaction.Registry satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, typ string, params map[string]any, a *actor.Actor) (string, error)
}

// Outcome is what applying a bundle produced.
type Outcome struct {
	Lines          []Line
	DeathTriggered bool
	DeathCause     string // set when an interaction follow-up names the cause
	Next           string
	Ending         string
}

func (o *Outcome) add(l Line) {
	o.Lines = append(o.Lines, l)
}

// Applier applies effect bundles.
type Applier struct {
	reg          Registries
	values       *valueexpr.Parser
	rng          random.Source
	interactions Invoker
	logger       *slog.Logger
}

// NewApplier creates an applier. interactions may be nil, in which case
// interaction steps are reported as unavailable.
func NewApplier(reg Registries, rng random.Source, interactions Invoker, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		reg:          reg,
		values:       valueexpr.NewParser(rng),
		rng:          rng,
		interactions: interactions,
		logger:       logger,
	}
}

// Apply applies e to the actor and session. A nil bundle does nothing.
func (ap *Applier) Apply(ctx context.Context, e *content.Effects, a *actor.Actor, s *state.Session) Outcome {
	var out Outcome
	if e == nil {
		return out
	}

	if ap.applyHP(e.HP, a, &out) {
		return out
	}
	ap.applyResource(e.AP, valueexpr.KindAP, a, &out)
	ap.applyResource(e.Money, valueexpr.KindMoney, a, &out)

	ap.applyItems(e, a, &out)
	ap.applySkills(e, a, &out)
	ap.applyStatus(e.StatusEffects, a, &out)
	ap.applyCosmetics(e, a, &out)

	for _, f := range e.AddFlags {
		s.SetFlag(f)
	}
	for _, f := range e.RemoveFlags {
		s.ClearFlag(f)
	}

	if e.Ending != "" {
		s.Ending = e.Ending
		out.Ending = e.Ending
		ap.logger.Info("Ending reached", "ending", e.Ending, "session_id", s.ID.String())
	}
	if e.Next != "" {
		out.Next = e.Next
	}
	if e.Interaction != nil {
		ap.RunInteraction(ctx, e.Interaction, a, &out)
	}
	return out
}

// RunInteraction invokes the interaction and applies the follow-up bundle
// registered for its result key. Failures are reported and skip the follow-up.
func (ap *Applier) RunInteraction(ctx context.Context, in *content.Interaction, a *actor.Actor, out *Outcome) {
	if ap.interactions == nil {
		out.add(important("[interaction] %s is not available.", in.Type))
		return
	}
	key, err := ap.interactions.Invoke(ctx, in.Type, in.Params, a)
	if err != nil {
		out.add(important("[interaction] %s failed: %v", in.Type, err))
		return
	}
	follow, ok := in.Results[key]
	if !ok {
		ap.logger.Warn("Interaction result has no follow-up", "type", in.Type, "result", key)
		return
	}

	for _, d := range follow.Description {
		out.add(text("%s", d))
	}
	if ap.applyHP(follow.HP, a, out) {
		out.DeathCause = follow.DeathCause
		return
	}
	ap.applyResource(follow.Money, valueexpr.KindMoney, a, out)
	if follow.Next != "" {
		out.Next = follow.Next
	}
}

// applyHP applies an hp change and reports whether it killed the actor.
func (ap *Applier) applyHP(v valueexpr.Expr, a *actor.Actor, out *Outcome) bool {
	delta, ok := ap.applyResource(v, valueexpr.KindHP, a, out)
	if ok && delta < 0 && a.IsDead() {
		out.DeathTriggered = true
		ap.logger.Debug("HP reached zero", "actor_id", a.ID.String())
		return true
	}
	return false
}

// applyResource resolves and applies one resource change. It returns the
// resolved delta before clamping and whether anything was attempted.
// Damage taken at zero hp still counts as damage.
func (ap *Applier) applyResource(v valueexpr.Expr, kind valueexpr.Kind, a *actor.Actor, out *Outcome) (int, bool) {
	if v == "" {
		return 0, false
	}
	delta, err := ap.values.Resolve(v, a, kind)
	if err != nil {
		ap.reportValueError(err, v, kind, out)
		return 0, false
	}
	if delta == 0 {
		return 0, true
	}
	applied := a.Adjust(string(kind), delta)
	cur, _ := a.GetResource(string(kind))
	limit, _ := a.GetResourceMax(string(kind))
	out.add(important("%s %+d (%d/%d)", label(kind), applied, cur, limit))
	return delta, true
}

func (ap *Applier) reportValueError(err error, v valueexpr.Expr, kind valueexpr.Kind, out *Outcome) {
	if errors.Is(err, valueexpr.ErrUnknownKeyword) {
		ap.logger.Warn("Unknown value keyword", "value", string(v), "kind", string(kind))
	} else {
		ap.logger.Error("Failed to resolve value", "value", string(v), "kind", string(kind), "error", err)
	}
	out.add(ContentError("unknown %s value %q", kind, string(v)))
}

func label(kind valueexpr.Kind) string {
	switch kind {
	case valueexpr.KindHP:
		return "HP"
	case valueexpr.KindAP:
		return "AP"
	}
	return "Money"
}

func (ap *Applier) applyItems(e *content.Effects, a *actor.Actor, out *Outcome) {
	gains := collect(e.ItemGain, e.ItemGains)
	if e.RandomItemGain != nil {
		gains = append(gains, ap.pickUnowned(e.RandomItemGain, a, out)...)
	}
	for _, id := range gains {
		if a.AddItem(id) {
			out.add(important("Obtained %s.", ap.reg.ItemName(id)))
		}
	}

	for _, id := range collect(e.ItemLoss, e.ItemLosses) {
		if a.RemoveItem(id) {
			out.add(important("Lost %s.", ap.reg.ItemName(id)))
		}
	}
	if e.RandomItemLoss != nil {
		ap.loseRandom(e.RandomItemLoss, a, out)
	}
}

// pickUnowned draws distinct items of the rarity that the actor does not own yet.
func (ap *Applier) pickUnowned(p *content.RandomPick, a *actor.Actor, out *Outcome) []string {
	pool := slices.DeleteFunc(ap.reg.ItemsOfRarity(p.Rarity), a.HasItem)
	if len(pool) == 0 {
		out.add(text("You find nothing of note."))
		return nil
	}
	var picked []string
	for range p.N() {
		id, ok := random.Pick(ap.rng, pool)
		if !ok {
			break
		}
		picked = append(picked, id)
		pool = slices.DeleteFunc(pool, func(x string) bool { return x == id })
	}
	return picked
}

// loseRandom removes items drawn from the owned items of the rarity.
func (ap *Applier) loseRandom(p *content.RandomPick, a *actor.Actor, out *Outcome) {
	for range p.N() {
		var owned []string
		for _, id := range a.GetItems() {
			if r, ok := ap.reg.Rarity(id); ok && strings.EqualFold(r, p.Rarity) {
				owned = append(owned, id)
			}
		}
		id, ok := random.Pick(ap.rng, owned)
		if !ok {
			out.add(text("You have nothing of that kind to lose."))
			return
		}
		a.RemoveItem(id)
		out.add(important("Lost %s.", ap.reg.ItemName(id)))
	}
}

func (ap *Applier) applySkills(e *content.Effects, a *actor.Actor, out *Outcome) {
	gains := collect(e.SkillGain, e.SkillGains)
	if e.RandomSkillGain > 0 {
		pool := slices.DeleteFunc(ap.reg.SkillIDs(), a.HasSkill)
		for range e.RandomSkillGain {
			id, ok := random.Pick(ap.rng, pool)
			if !ok {
				break
			}
			gains = append(gains, id)
			pool = slices.DeleteFunc(pool, func(x string) bool { return x == id })
		}
	}
	for _, id := range gains {
		if a.AddSkill(id) {
			out.add(important("Learned %s.", ap.reg.SkillName(id)))
		}
	}
	for _, id := range collect(e.SkillLoss, e.SkillLosses) {
		if a.RemoveSkill(id) {
			out.add(important("Forgot %s.", ap.reg.SkillName(id)))
		}
	}
}

func (ap *Applier) applyStatus(deltas map[string]int, a *actor.Actor, out *Outcome) {
	if len(deltas) == 0 {
		return
	}
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		def, ok := ap.reg.StatusEffect(id)
		if !ok {
			ap.logger.Warn("Unknown status effect, using unbounded defaults", "status_effect", id)
			def = content.UnknownStatusEffect(id)
		}
		ch := a.MutateStatus(def, deltas[id])
		name := ap.reg.StatusName(id)
		switch ch.Transition {
		case actor.NewlySet:
			out.add(important("%s applied (%d).", name, ch.New))
		case actor.Increased:
			out.add(important("%s increased to %d.", name, ch.New))
		case actor.Decreased:
			out.add(important("%s decreased to %d.", name, ch.New))
		case actor.Cured:
			out.add(important("%s cured.", name))
		case actor.Removed:
			out.add(important("%s removed.", name))
		}
	}
}

func (ap *Applier) applyCosmetics(e *content.Effects, a *actor.Actor, out *Outcome) {
	overwrites := []struct {
		name  string
		value *string
		field *string
	}{
		{"clothing", e.Clothing, &a.Clothing},
		{"job", e.Job, &a.Job},
		{"background", e.Background, &a.Background},
		{"body type", e.BodyType, &a.BodyType},
		{"race", e.RaceName, &a.RaceName},
		{"race type", e.RaceType, &a.RaceType},
		{"gender", e.Gender, &a.Gender},
		{"gender identity", e.GenderIdentity, &a.GenderIdentity},
		{"portrait", e.Portrait, &a.Portrait},
	}
	for _, o := range overwrites {
		if o.value == nil || *o.field == *o.value {
			continue
		}
		*o.field = *o.value
		if o.name != "portrait" {
			out.add(text("Your %s is now %s.", o.name, *o.value))
		}
	}

	for _, img := range e.Images {
		out.add(Line{Kind: Image, Text: img})
	}
	if e.Sound != "" {
		out.add(Line{Kind: Sound, Text: e.Sound})
	}
	if e.Expression != "" {
		out.add(Line{Kind: Expression, Text: e.Expression})
	}
}

func collect(single string, many []string) []string {
	var out []string
	if single != "" {
		out = append(out, single)
	}
	for _, id := range many {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
