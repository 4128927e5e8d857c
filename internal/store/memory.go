package store

import (
	"context"
	"sort"
	"sync"

	"moviely/internal/project"
)

// Memory keeps deep copies of projects in process memory.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]project.State
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{projects: make(map[string]project.State)}
}

func (m *Memory) Save(_ context.Context, state project.State, id string) (string, error) {
	id, err := ResolveID(state, id)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[id] = state.Clone()
	return id, nil
}

func (m *Memory) Load(_ context.Context, id string) (project.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.projects[id]
	if !ok {
		return project.State{}, notFound(id)
	}
	return state.Clone(), nil
}

// LoadUnchecked is Load; memory projects are never re-decoded.
func (m *Memory) LoadUnchecked(ctx context.Context, id string) (project.State, error) {
	return m.Load(ctx, id)
}

func (m *Memory) List(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.projects))
	for id := range m.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.projects[id]
	delete(m.projects, id)
	return ok, nil
}

func (m *Memory) Exists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.projects[id]
	return ok, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
