// Package engine runs events: it shows them, asks for a choice, resolves the
// weighted outcome, applies its effects and follows chained events.
//
// Each RunEvent walks Displaying, AwaitingChoice and Resolving, then either
// Chaining into the next event or reaching Terminal. Chained events run with
// the session marked reentrant so the event counter and the acknowledgement
// happen once per chain. A death ends the whole chain immediately.
package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
	"github.com/KH-Mind/tbrr-sub000/pkg/conditionals"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/death"
	"github.com/KH-Mind/tbrr-sub000/pkg/deck"
	"github.com/KH-Mind/tbrr-sub000/pkg/effects"
	"github.com/KH-Mind/tbrr-sub000/pkg/forced"
	"github.com/KH-Mind/tbrr-sub000/pkg/random"
	"github.com/KH-Mind/tbrr-sub000/pkg/resolver"
	"github.com/KH-Mind/tbrr-sub000/pkg/state"
	"github.com/KH-Mind/tbrr-sub000/pkg/textfilter"
)

var (
	ErrUnknownEvent  = errors.New("unknown event")
	ErrRunOver       = errors.New("run is over")
	ErrNoPool        = errors.New("no event pool")
	ErrNothingToDraw = errors.New("no eligible event to draw")
)

// MaxChainDepth stops runaway chains such as an event that names itself as next.
const MaxChainDepth = 32

// Phase is a state of the resolution state machine.
type Phase string

const (
	Displaying     Phase = "displaying"
	AwaitingChoice Phase = "awaiting_choice"
	Resolving      Phase = "resolving"
	Chaining       Phase = "chaining"
	Terminal       Phase = "terminal"
	Dead           Phase = "dead"
)

// Outcome records what happened while running one event.
type Outcome struct {
	EventID string
	Phases  []Phase
	Skipped bool   // no choice was available
	Result  string // type of the resolved result
	Chained *Outcome
	Died    bool
	Death   death.Narrative
	Ending  string
}

func (o *Outcome) enter(p Phase) {
	o.Phases = append(o.Phases, p)
}

// Last returns the innermost outcome of a chain.
func (o *Outcome) Last() *Outcome {
	for o.Chained != nil {
		o = o.Chained
	}
	return o
}

// Engine resolves events for one run. It is not safe for concurrent use.
type Engine struct {
	lib      *content.Library
	eval     *conditionals.Evaluator
	resolver *resolver.Resolver
	applier  *effects.Applier
	death    *death.Resolver
	deck     *deck.Sampler
	forced   *forced.Selector
	out      Presenter
	in       Prompter
	filter   *textfilter.Filter
	rng      random.Source
	logger   *slog.Logger
}

// New creates an engine over the library. rng is the run's only random source.
func New(lib *content.Library, rng random.Source, out Presenter, in Prompter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	eval := conditionals.NewEvaluator(lib)
	return &Engine{
		lib:      lib,
		eval:     eval,
		resolver: resolver.New(eval, rng),
		applier:  effects.NewApplier(lib, rng, nil, logger),
		death:    death.New(lib, rng, logger),
		deck:     deck.New(rng),
		forced:   forced.New(eval, lib.Forced()),
		out:      out,
		in:       in,
		rng:      rng,
		logger:   logger,
	}
}

// WithInteractions routes interaction steps to inv.
// Returns the Engine for method chaining
func (e *Engine) WithInteractions(inv effects.Invoker) *Engine {
	e.applier = effects.NewApplier(e.lib, e.rng, inv, e.logger)
	return e
}

// WithFilter masks sensitive terms for actors without extended content.
// Returns the Engine for method chaining
func (e *Engine) WithFilter(f *textfilter.Filter) *Engine {
	e.filter = f
	return e
}

// Eligible reports whether ev may be drawn: every requirement condition holds
// and every required item is owned.
func (e *Engine) Eligible(ev *content.Event, a *actor.Actor, s *state.Session) bool {
	for label, cond := range ev.Requirements {
		if !e.eval.Evaluate(cond, a, s) {
			e.logger.Debug("Event requirement not met", "event_id", ev.ID, "requirement", label)
			return false
		}
	}
	for _, id := range ev.RequiredItems {
		if !a.HasItem(id) {
			return false
		}
	}
	return true
}

// Step runs the next event of the floor: a forced event when one applies,
// otherwise a draw from the floor's pool.
func (e *Engine) Step(ctx context.Context, a *actor.Actor, s *state.Session) (Outcome, error) {
	if s.Over {
		return Outcome{}, ErrRunOver
	}

	if f, ok := e.forced.Select(a, s); ok {
		if f.Once {
			s.MarkForced(f.ID)
		}
		if _, known := e.lib.Event(f.Event); known {
			e.logger.Debug("Forced event selected", "forced_id", f.ID, "event_id", f.Event)
			return e.RunEvent(ctx, a, s, f.Event)
		}
		e.contentError(a, "forced event %s names unknown event %s", f.ID, f.Event)
	}

	pool, ok := e.lib.PoolFor(s.Floor, s.Area)
	if !ok {
		return Outcome{}, fmt.Errorf("%w for floor %d area %q", ErrNoPool, s.Floor, s.Area)
	}
	id, ok := e.deck.DrawWhere(s, pool, func(id string) bool {
		ev, known := e.lib.Event(id)
		return known && e.Eligible(ev, a, s)
	})
	if !ok {
		return Outcome{}, fmt.Errorf("%w for floor %d area %q", ErrNothingToDraw, s.Floor, s.Area)
	}
	return e.RunEvent(ctx, a, s, id)
}

// RunEvent runs the event with the given id to completion.
// Errors come only from an unknown id or the prompt boundary. An event marked
// as a death kills the actor once its text and interaction have been shown.
func (e *Engine) RunEvent(ctx context.Context, a *actor.Actor, s *state.Session, id string) (Outcome, error) {
	ev, ok := e.lib.Event(id)
	if !ok {
		return Outcome{EventID: id}, fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}
	return e.run(ctx, a, s, ev, 0)
}

func (e *Engine) run(ctx context.Context, a *actor.Actor, s *state.Session, ev *content.Event, depth int) (Outcome, error) {
	out := Outcome{EventID: ev.ID}
	s.CurrentEvent = ev.ID
	e.logger.Debug("Running event", "event_id", ev.ID, "reentrant", s.Reentrant, "depth", depth)

	out.enter(Displaying)
	if !s.Reentrant && s.Floor != s.LastLoggedFloor {
		e.out.Important(fmt.Sprintf("Floor %d", s.Floor))
		s.LastLoggedFloor = s.Floor
	}
	e.show(a, ev)
	initial := e.applier.Apply(ctx, ev.InitialEffects, a, s)
	e.present(a, initial.Lines)
	if initial.DeathTriggered {
		e.die(a, s, ev, cmp.Or(initial.DeathCause, ev.ID), &out)
		return out, nil
	}
	next := initial.Next

	if ev.Interaction != nil {
		var played effects.Outcome
		e.applier.RunInteraction(ctx, ev.Interaction, a, &played)
		e.present(a, played.Lines)
		if played.DeathTriggered {
			e.die(a, s, ev, cmp.Or(played.DeathCause, ev.ID), &out)
			return out, nil
		}
		if played.Next != "" {
			next = played.Next
		}
	}
	if ev.Death {
		e.die(a, s, ev, ev.ID, &out)
		return out, nil
	}

	if len(ev.Choices) > 0 {
		out.enter(AwaitingChoice)
		visible := e.visibleChoices(ev, a, s)
		if len(visible) == 0 {
			e.logger.Info("No choice available, skipping event", "event_id", ev.ID)
			e.out.Text("There is nothing you can do here.")
			out.Skipped = true
			return e.finish(ctx, s, ev, out)
		}

		labels := make([]string, len(visible))
		for i, c := range visible {
			labels[i] = e.choiceLabel(a, c)
		}
		picked, err := e.choose(ctx, labels)
		if err != nil {
			return out, err
		}
		choice := visible[picked-1]

		out.enter(Resolving)
		applied := e.resolve(ctx, a, s, ev, choice, &out)
		if out.Died {
			return out, nil
		}
		if applied.Next != "" {
			next = applied.Next
		}
		out.Ending = applied.Ending
	}

	if next == "" {
		next = ev.Next
	}
	if next != "" {
		out.enter(Chaining)
		inner, err := e.chain(ctx, a, s, next, depth+1)
		out.Chained = inner
		if err != nil {
			return out, err
		}
		if inner != nil && inner.Died {
			out.Died = true
			out.Death = inner.Death
			return out, nil
		}
	}

	if ev.Boss && !s.Over {
		s.Descend()
		e.logger.Info("Boss cleared", "event_id", ev.ID, "floor", s.Floor)
	}
	return e.finish(ctx, s, ev, out)
}

// choose asks until the pick is one of the offered options.
func (e *Engine) choose(ctx context.Context, labels []string) (int, error) {
	for {
		picked, err := e.in.Choose(ctx, labels)
		if err != nil {
			return 0, err
		}
		if picked >= 1 && picked <= len(labels) {
			return picked, nil
		}
		e.logger.Warn("Choice out of range", "pick", picked, "options", len(labels))
		e.out.Text(fmt.Sprintf("Pick a number from 1 to %d.", len(labels)))
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
}

// resolve spends the choice's AP, picks a result and applies it.
func (e *Engine) resolve(ctx context.Context, a *actor.Actor, s *state.Session, ev *content.Event, choice content.Choice, out *Outcome) effects.Outcome {
	if spent := a.Adjust(actor.AP, -choice.APCost); spent != 0 {
		e.out.Important(fmt.Sprintf("AP %+d (%d/%d)", spent, a.AP, a.MaxAP))
	}

	res, err := e.resolver.Resolve(choice.DerivedResults(), a, s)
	if err != nil {
		e.contentError(a, "choice %q in %s has no results", choice.Text, ev.ID)
		return effects.Outcome{}
	}
	out.Result = res.Type
	e.logger.Debug("Result resolved", "event_id", ev.ID, "result", res.Type)

	for _, line := range res.Description {
		e.out.Text(e.filtered(a, line))
	}
	applied := e.applier.Apply(ctx, &res.Effects, a, s)
	e.present(a, applied.Lines)
	if applied.DeathTriggered {
		cause := res.DeathCause
		if applied.DeathCause != "" {
			cause = applied.DeathCause
		}
		e.die(a, s, ev, cause, out)
	}
	return applied
}

// chain runs the next event with the session marked reentrant.
// The previous reentrancy is restored on every return path.
func (e *Engine) chain(ctx context.Context, a *actor.Actor, s *state.Session, id string, depth int) (*Outcome, error) {
	defer s.EnterChain()()

	if depth > MaxChainDepth {
		e.contentError(a, "chain too deep at %s", id)
		return nil, nil
	}
	ev, ok := e.lib.Event(id)
	if !ok {
		e.contentError(a, "unknown next event %s", id)
		return nil, nil
	}
	inner, err := e.run(ctx, a, s, ev, depth)
	return &inner, err
}

// finish is the Terminal phase. Bookkeeping only runs outside a chain.
func (e *Engine) finish(ctx context.Context, s *state.Session, ev *content.Event, out Outcome) (Outcome, error) {
	out.enter(Terminal)
	if s.Reentrant {
		return out, nil
	}
	s.EventCount++
	if s.Ending != "" {
		s.Over = true
		e.logger.Info("Run ended", "ending", s.Ending, "session_id", s.ID.String())
	}
	e.logger.Debug("Event finished", "event_id", ev.ID, "event_count", s.EventCount)
	if err := e.in.Acknowledge(ctx); err != nil {
		return out, err
	}
	return out, nil
}

func (e *Engine) die(a *actor.Actor, s *state.Session, ev *content.Event, cause string, out *Outcome) {
	n := e.death.Resolve(cause, ev.Tags, a, s)
	if !n.Resolved {
		e.contentError(a, "lethal result in %s has no death cause", ev.ID)
		return
	}
	out.enter(Dead)
	out.Died = true
	out.Death = n
	for _, line := range n.Lines() {
		e.out.Important(e.filtered(a, line))
	}
}

func (e *Engine) show(a *actor.Actor, ev *content.Event) {
	if ev.Title != "" {
		e.out.Text(e.filtered(a, ev.Title))
	}
	for _, line := range ev.Description {
		e.out.Text(e.filtered(a, line))
	}
	for _, img := range ev.Images {
		e.out.Image(img)
	}
	if ev.Sound != "" {
		e.out.Sound(ev.Sound)
	}
}

func (e *Engine) visibleChoices(ev *content.Event, a *actor.Actor, s *state.Session) []content.Choice {
	return slices.DeleteFunc(slices.Clone(ev.Choices), func(c content.Choice) bool {
		return !e.eval.Evaluate(c.Condition, a, s)
	})
}

func (e *Engine) choiceLabel(a *actor.Actor, c content.Choice) string {
	label := e.filtered(a, c.Text)
	if c.APCost > 0 {
		label = fmt.Sprintf("%s (%d AP)", label, c.APCost)
	}
	return label
}

func (e *Engine) present(a *actor.Actor, lines []effects.Line) {
	for _, l := range lines {
		switch l.Kind {
		case effects.Important:
			e.out.Important(e.filtered(a, l.Text))
		case effects.Image:
			e.out.Image(l.Text)
		case effects.Sound:
			e.out.Sound(l.Text)
		case effects.Expression:
			e.out.Expression(l.Text)
		default:
			e.out.Text(e.filtered(a, l.Text))
		}
	}
}

func (e *Engine) contentError(a *actor.Actor, format string, args ...any) {
	line := effects.ContentError(format, args...)
	e.logger.Warn("Content error", "detail", strings.TrimPrefix(line.Text, "[content] "))
	e.present(a, []effects.Line{line})
}

func (e *Engine) filtered(a *actor.Actor, text string) string {
	if e.filter == nil || a.CruelWorldEnabled() {
		return text
	}
	return e.filter.FilterText(text)
}
