package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/KH-Mind/tbrr-sub000/internal/logger"
	"github.com/KH-Mind/tbrr-sub000/internal/storage"
	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/engine"
	"github.com/KH-Mind/tbrr-sub000/pkg/state"
)

// statusMsg carries a copy of the run state for the side panel.
// It is built on the engine goroutine so the UI never touches live state.
type statusMsg struct {
	Name       string
	HP, MaxHP  int
	AP, MaxAP  int
	Money      int
	Floor      int
	Area       string
	Events     int
	Inventory  []string
	Skills     []string
	Statuses   []string
	CruelWorld bool
	FatedOne   bool
}

// runEndedMsg is sent once when the engine goroutine stops.
type runEndedMsg struct {
	reason string
	err    error
}

// runner drives Engine.Step until the run ends or ctx is cancelled.
type runner struct {
	eng     *engine.Engine
	lib     *content.Library
	actor   *actor.Actor
	session *state.Session
	seed    int64
	store   storage.RunStore // nil disables saving
	out     sender
	logger  *slog.Logger
}

func (r *runner) Run(ctx context.Context) {
	r.out.Send(r.snapshot())
	for {
		if ctx.Err() != nil {
			return
		}
		outcome, err := r.eng.Step(ctx, r.actor, r.session)
		r.out.Send(r.snapshot())
		r.save(ctx)

		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return
		case errors.Is(err, engine.ErrNoPool), errors.Is(err, engine.ErrNothingToDraw):
			r.logger.Warn("No event to run", "floor", r.session.Floor, "area", r.session.Area, "error", err)
			r.out.Send(runEndedMsg{reason: "The dungeon has nothing more for you.", err: err})
			return
		case err != nil && !errors.Is(err, engine.ErrRunOver):
			logger.WithError(r.logger, err).Error("Step failed")
			r.out.Send(runEndedMsg{reason: "The run stopped unexpectedly.", err: err})
			return
		}

		if !r.session.Over {
			continue
		}
		if r.session.Ending != "" {
			r.out.Send(runEndedMsg{reason: fmt.Sprintf("Ending reached: %s", r.session.Ending)})
			return
		}
		if r.actor.Lost {
			r.out.Send(runEndedMsg{reason: r.deathSummary(outcome)})
			return
		}
		// Spared by fate: a fresh run on floor 1 with the same character.
		r.logger.Info("Actor spared, starting a new run", "actor", r.actor.Name)
		r.session = r.reprieve()
		r.out.Send(r.snapshot())
	}
}

func (r *runner) reprieve() *state.Session {
	next := state.NewSession(r.session.Area)
	next.DeathStats = r.session.DeathStats
	return next
}

func (r *runner) deathSummary(o engine.Outcome) string {
	last := o.Last()
	if last.Death.Cause != "" {
		return fmt.Sprintf("You died (%s).", last.Death.Cause)
	}
	return "You died."
}

func (r *runner) save(ctx context.Context) {
	if r.store == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	run := &storage.Run{
		Actor:   r.actor,
		Session: r.session,
		Seed:    r.seed,
		SavedAt: time.Now(),
	}
	if err := r.store.SaveRun(saveCtx, run); err != nil {
		logger.WithError(r.logger, err).Warn("Failed to save run", "session_id", r.session.ID.String())
	}
}

func (r *runner) snapshot() statusMsg {
	a, s := r.actor, r.session
	msg := statusMsg{
		Name:       a.Name,
		HP:         a.HP,
		MaxHP:      a.MaxHP,
		AP:         a.AP,
		MaxAP:      a.MaxAP,
		Money:      a.Money,
		Floor:      s.Floor,
		Area:       s.Area,
		Events:     s.EventCount,
		CruelWorld: a.CruelWorld,
		FatedOne:   a.FatedOne,
	}
	for _, id := range a.Inventory {
		msg.Inventory = append(msg.Inventory, r.lib.ItemName(id))
	}
	for _, id := range a.Skills {
		msg.Skills = append(msg.Skills, r.lib.SkillName(id))
	}
	for id, v := range a.StatusEffects {
		msg.Statuses = append(msg.Statuses, fmt.Sprintf("%s %d", r.lib.StatusName(id), v))
	}
	sort.Strings(msg.Statuses)
	return msg
}
