package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
	"github.com/KH-Mind/tbrr-sub000/pkg/state"
)

// ErrRunNotFound is returned when no saved run exists for an id.
var ErrRunNotFound = errors.New("run not found")

// Run is everything needed to resume a run. Content is referenced by id only.
type Run struct {
	Actor   *actor.Actor   `json:"actor"`
	Session *state.Session `json:"session"`
	Seed    int64          `json:"seed"`
	SavedAt time.Time      `json:"saved_at"`
}

// RunStore persists runs keyed by session id.
type RunStore interface {
	Ping(ctx context.Context) error
	Close() error

	SaveRun(ctx context.Context, run *Run) error
	LoadRun(ctx context.Context, id uuid.UUID) (*Run, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error
	ListRuns(ctx context.Context) ([]uuid.UUID, error)
}
