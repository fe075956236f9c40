package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRunStore is an in-memory RunStore for tests and offline play.
// Runs are stored as JSON so loads never alias the saved actor or session.
type MockRunStore struct {
	mu        sync.RWMutex
	runs      map[uuid.UUID][]byte
	pingError error
}

// Ensure MockRunStore implements RunStore interface
var _ RunStore = (*MockRunStore)(nil)

// NewMockRunStore creates a new mock run store
func NewMockRunStore() *MockRunStore {
	return &MockRunStore{
		runs: make(map[uuid.UUID][]byte),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockRunStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockRunStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockRunStore) Close() error {
	return nil
}

func (m *MockRunStore) SaveRun(ctx context.Context, run *Run) error {
	if run == nil || run.Session == nil {
		return fmt.Errorf("failed to save run: no session")
	}
	run.SavedAt = time.Now()
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.Session.ID] = data
	return nil
}

func (m *MockRunStore) LoadRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	m.mu.RLock()
	data, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

func (m *MockRunStore) DeleteRun(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
	return nil
}

func (m *MockRunStore) ListRuns(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	return ids, nil
}
