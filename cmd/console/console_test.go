package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KH-Mind/tbrr-sub000/internal/storage"
	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
	"github.com/KH-Mind/tbrr-sub000/pkg/content"
	"github.com/KH-Mind/tbrr-sub000/pkg/engine"
	"github.com/KH-Mind/tbrr-sub000/pkg/random"
	"github.com/KH-Mind/tbrr-sub000/pkg/state"
)

// autoSender records messages and answers prompts the way a player would.
type autoSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
	pick int
}

func (s *autoSender) Send(msg tea.Msg) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	switch m := msg.(type) {
	case choiceMsg:
		m.reply <- max(s.pick, 1)
	case ackMsg:
		m.reply <- struct{}{}
	}
}

func (s *autoSender) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.msgs {
		if l, ok := m.(lineMsg); ok {
			out = append(out, l.text)
		}
	}
	return out
}

func (s *autoSender) last() tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msgs[len(s.msgs)-1]
}

// silentSender never answers prompts.
type silentSender struct{}

func (silentSender) Send(tea.Msg) {}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBridge_Choose(t *testing.T) {
	s := &autoSender{pick: 2}
	b := newTeaBridge(s)

	pick, err := b.Choose(context.Background(), []string{"Left", "Right"})
	require.NoError(t, err)
	assert.Equal(t, 2, pick)

	_, err = b.Choose(context.Background(), nil)
	assert.ErrorIs(t, err, errNoOptions)
}

func TestBridge_PromptsStopWithContext(t *testing.T) {
	b := newTeaBridge(silentSender{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := b.Choose(ctx, []string{"Wait"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, b.Acknowledge(ctx), context.DeadlineExceeded)
}

func TestBridge_LineKinds(t *testing.T) {
	s := &autoSender{}
	b := newTeaBridge(s)
	b.Text("plain")
	b.Important("HP -2 (8/10)")
	b.Image("door.png")

	require.Len(t, s.msgs, 3)
	assert.Equal(t, lineMsg{kind: kindText, text: "plain"}, s.msgs[0])
	assert.Equal(t, lineMsg{kind: kindImportant, text: "HP -2 (8/10)"}, s.msgs[1])
	assert.Equal(t, lineMsg{kind: kindMedia, text: "[image] door.png"}, s.msgs[2])
}

func TestConsoleUI_NumberKeysChoose(t *testing.T) {
	reply := make(chan int, 1)
	m := NewConsoleUI(func() {})
	model, _ := m.Update(choiceMsg{options: []string{"Fight", "Flee"}, reply: reply})

	// Out of range keys are ignored.
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	assert.Empty(t, reply)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	assert.Equal(t, 2, <-reply)

	ui := model.(ConsoleUI)
	assert.Nil(t, ui.choice)
	assert.Contains(t, ui.plainLog(), "> Flee")
}

func TestConsoleUI_EnterAcknowledges(t *testing.T) {
	reply := make(chan struct{}, 1)
	m := NewConsoleUI(func() {})
	model, _ := m.Update(ackMsg{reply: reply})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	select {
	case <-reply:
	default:
		t.Fatal("enter did not acknowledge")
	}
	assert.Nil(t, model.(ConsoleUI).ack)
}

func TestConsoleUI_QuitModalCancelsRun(t *testing.T) {
	cancelled := false
	m := NewConsoleUI(func() { cancelled = true })

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, model.(ConsoleUI).showQuitModal)

	// Output still lands in the log while the modal is up.
	model, _ = model.Update(lineMsg{text: "A bell tolls."})
	assert.True(t, model.(ConsoleUI).showQuitModal)
	assert.Contains(t, model.(ConsoleUI).plainLog(), "A bell tolls.")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	assert.True(t, cancelled)
	assert.NotNil(t, cmd)
}

func TestWriteMetadata(t *testing.T) {
	out := writeMetadata(statusMsg{
		Name:      "Ash",
		HP:        8,
		MaxHP:     20,
		Floor:     2,
		Area:      "sunken crypt",
		Inventory: []string{"Rope"},
	})
	assert.Contains(t, out, "HP:    8/20")
	assert.Contains(t, out, "Floor 2, Sunken Crypt")
	assert.Contains(t, out, "• Rope")
	assert.Contains(t, out, "Skills:\nNone")
}

func endingLibrary(t *testing.T) *content.Library {
	t.Helper()
	lib := content.NewLibrary()
	require.NoError(t, lib.AddEvent(content.Event{
		ID:          "gate",
		Title:       "The Gate",
		Description: []string{"Daylight beyond."},
		Choices: []content.Choice{{
			Text: "Leave",
			Results: []content.Result{{
				Type:    "escaped",
				Chance:  100,
				Effects: content.Effects{Ending: "freedom"},
			}},
		}},
	}))
	require.NoError(t, lib.AddItem(content.ItemDef{ID: "rope", Name: "Rope"}))
	lib.AddPool(content.Pool{Floor: 1, Area: "crypt", Events: []string{"gate"}})
	return lib
}

func TestRunner_RunsToEndingAndSaves(t *testing.T) {
	lib := endingLibrary(t)
	out := &autoSender{}
	store := storage.NewMockRunStore()
	eng := engine.New(lib, random.New(3), newTeaBridge(out), newTeaBridge(out), quietLogger())

	a := actor.New("Ash", 10, 5, 50)
	a.AddItem("rope")
	s := state.NewSession("crypt")
	r := &runner{eng: eng, lib: lib, actor: a, session: s, seed: 3, store: store, out: out, logger: quietLogger()}

	r.Run(context.Background())

	ended, ok := out.last().(runEndedMsg)
	require.True(t, ok)
	assert.Contains(t, ended.reason, "freedom")
	assert.Contains(t, out.lines(), "The Gate")

	saved, err := store.LoadRun(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), saved.Seed)
	assert.Equal(t, "freedom", saved.Session.Ending)
	assert.Equal(t, []string{"rope"}, saved.Actor.Inventory)
}

// failingStore rejects every save.
type failingStore struct {
	*storage.MockRunStore
}

func (failingStore) SaveRun(context.Context, *storage.Run) error {
	return errors.New("disk full")
}

func TestRunner_SaveFailureIsLogged(t *testing.T) {
	lib := endingLibrary(t)
	out := &autoSender{}
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	eng := engine.New(lib, random.New(3), newTeaBridge(out), newTeaBridge(out), quietLogger())
	r := &runner{
		eng:     eng,
		lib:     lib,
		actor:   actor.New("Ash", 10, 5, 50),
		session: state.NewSession("crypt"),
		store:   failingStore{storage.NewMockRunStore()},
		out:     out,
		logger:  log,
	}

	r.Run(context.Background())

	ended, ok := out.last().(runEndedMsg)
	require.True(t, ok)
	assert.Contains(t, ended.reason, "freedom")
	assert.Contains(t, buf.String(), `"msg":"Failed to save run"`)
	assert.Contains(t, buf.String(), `"error":"disk full"`)
}

func TestRunner_NoPoolEndsRun(t *testing.T) {
	lib := content.NewLibrary()
	out := &autoSender{}
	eng := engine.New(lib, random.New(1), engine.Discard{}, newTeaBridge(out), quietLogger())
	r := &runner{eng: eng, lib: lib, actor: actor.New("Ash", 10, 5, 50), session: state.NewSession("void"), out: out, logger: quietLogger()}

	r.Run(context.Background())

	ended, ok := out.last().(runEndedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, ended.err, engine.ErrNoPool)
}

func TestRunner_Snapshot(t *testing.T) {
	lib := endingLibrary(t)
	a := actor.New("Ash", 10, 5, 50)
	a.AddItem("rope")
	a.StatusEffects["poison"] = 2
	r := &runner{lib: lib, actor: a, session: state.NewSession("crypt")}

	snap := r.snapshot()
	assert.Equal(t, []string{"Rope"}, snap.Inventory)
	assert.Equal(t, []string{"poison 2"}, snap.Statuses)
	assert.Equal(t, 1, snap.Floor)
}

func TestInteractions_UseRunStream(t *testing.T) {
	reg := newInteractions(time.Second, &random.Scripted{Values: []int{0, 1, 2, 3}}, quietLogger())
	a := actor.New("Ash", 10, 5, 50)
	ctx := context.Background()

	flip, err := reg.Invoke(ctx, "coin_flip", nil, a)
	require.NoError(t, err)
	assert.Equal(t, "heads", flip)
	flip, err = reg.Invoke(ctx, "coin_flip", nil, a)
	require.NoError(t, err)
	assert.Equal(t, "tails", flip)

	// Rolls of 3 then 4 against the default target of 4.
	roll, err := reg.Invoke(ctx, "dice", nil, a)
	require.NoError(t, err)
	assert.Equal(t, "lose", roll)
	roll, err = reg.Invoke(ctx, "dice", map[string]any{"target": float64(4)}, a)
	require.NoError(t, err)
	assert.Equal(t, "win", roll)
}
