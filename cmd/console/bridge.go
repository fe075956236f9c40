package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/KH-Mind/tbrr-sub000/pkg/engine"
)

var errNoOptions = errors.New("no options to choose from")

// sender is the part of *tea.Program the bridge needs.
type sender interface {
	Send(msg tea.Msg)
}

type lineKind int

const (
	kindText lineKind = iota
	kindImportant
	kindMedia
)

type lineMsg struct {
	kind lineKind
	text string
}

// choiceMsg asks the UI for a pick. The UI writes the 1-based index to reply.
type choiceMsg struct {
	options []string
	reply   chan int
}

type ackMsg struct {
	reply chan struct{}
}

// teaBridge lets the engine goroutine talk to the Bubble Tea program.
// Output is pushed as messages; prompts block until the UI replies or ctx ends.
type teaBridge struct {
	out sender
}

var (
	_ engine.Presenter = (*teaBridge)(nil)
	_ engine.Prompter  = (*teaBridge)(nil)
)

func newTeaBridge(out sender) *teaBridge {
	return &teaBridge{out: out}
}

func (b *teaBridge) Text(line string) {
	b.out.Send(lineMsg{kind: kindText, text: line})
}

func (b *teaBridge) Important(line string) {
	b.out.Send(lineMsg{kind: kindImportant, text: line})
}

func (b *teaBridge) Image(name string) {
	b.out.Send(lineMsg{kind: kindMedia, text: "[image] " + name})
}

func (b *teaBridge) Sound(name string) {
	b.out.Send(lineMsg{kind: kindMedia, text: "[sound] " + name})
}

func (b *teaBridge) Expression(name string) {
	b.out.Send(lineMsg{kind: kindMedia, text: "[expression] " + name})
}

func (b *teaBridge) Choose(ctx context.Context, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errNoOptions
	}
	reply := make(chan int, 1)
	b.out.Send(choiceMsg{options: options, reply: reply})
	select {
	case pick := <-reply:
		return pick, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (b *teaBridge) Acknowledge(ctx context.Context) error {
	reply := make(chan struct{}, 1)
	b.out.Send(ackMsg{reply: reply})
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
