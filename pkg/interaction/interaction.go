// Package interaction runs minigames and other external steps that an event
// delegates to. A Handler is registered per interaction type and returns a
// result key that content maps to a follow-up bundle.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
)

var (
	ErrUnknownInteraction = errors.New("unknown interaction type")
	ErrInteractionTimeout = errors.New("interaction timed out")
)

// DefaultTimeout bounds a handler call when the registry has none configured.
const DefaultTimeout = 30 * time.Second

// Handler executes one interaction type. It receives a copy of the actor and
// the parameters, so any change it makes is discarded; the result key is the
// only thing that reaches the run. Handlers should return once ctx is done.
type Handler interface {
	Execute(ctx context.Context, params map[string]any, a *actor.Actor) (string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, params map[string]any, a *actor.Actor) (string, error)

func (f HandlerFunc) Execute(ctx context.Context, params map[string]any, a *actor.Actor) (string, error) {
	return f(ctx, params, a)
}

// Registry maps interaction types to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. A timeout <= 0 uses DefaultTimeout.
func NewRegistry(timeout time.Duration, logger *slog.Logger) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		timeout:  timeout,
		logger:   logger,
	}
}

// Register adds or replaces the handler for typ.
func (r *Registry) Register(typ string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typ] = h
}

// Types returns the registered interaction types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	return out
}

type outcome struct {
	key string
	err error
}

// Invoke runs the handler for typ with a bounded wait.
// Handler panics are recovered and returned as errors. A handler still running
// after the wait only ever sees its own copy of the actor.
func (r *Registry) Invoke(ctx context.Context, typ string, params map[string]any, a *actor.Actor) (string, error) {
	r.mu.RLock()
	h, ok := r.handlers[typ]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownInteraction, typ)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("interaction %s panicked: %v", typ, p)}
			}
		}()
		key, err := h.Execute(ctx, maps.Clone(params), a.Clone())
		done <- outcome{key: key, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			r.logger.Warn("Interaction failed", "type", typ, "error", out.err)
			return "", out.err
		}
		r.logger.Debug("Interaction finished", "type", typ, "result", out.key)
		return out.key, nil
	case <-ctx.Done():
		r.logger.Warn("Interaction timed out", "type", typ, "timeout", r.timeout)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", ErrInteractionTimeout, typ)
		}
		return "", ctx.Err()
	}
}
