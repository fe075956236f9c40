package engine

import "context"

// Presenter receives output. Calls are fire-and-forget.
type Presenter interface {
	Text(line string)
	Important(line string) // resource, inventory and status changes; content errors
	Image(name string)
	Sound(name string)
	Expression(name string)
}

// Prompter blocks for player input.
type Prompter interface {
	// Choose shows options and returns the 1-based index picked.
	Choose(ctx context.Context, options []string) (int, error)
	// Acknowledge waits until the player moves on.
	Acknowledge(ctx context.Context) error
}

// Discard is a Presenter that drops everything.
type Discard struct{}

func (Discard) Text(string) {}
func (Discard) Important(string) {}
func (Discard) Image(string) {}
func (Discard) Sound(string) {}
func (Discard) Expression(string) {}
