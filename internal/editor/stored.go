package editor

import (
	"context"
	"sync"

	"moviely/internal/actions"
	"moviely/internal/composition"
	"moviely/internal/logging"
	"moviely/internal/project"
	"moviely/internal/render"
	"moviely/internal/store"
)

// lockProject serialises writers to id within this process and, when a lock
// directory is configured, across processes.
func (m *Manager) lockProject(ctx context.Context, id string) (func(), error) {
	m.keysMu.Lock()
	mu, ok := m.keys[id]
	if !ok {
		mu = &sync.Mutex{}
		m.keys[id] = mu
	}
	m.keysMu.Unlock()

	mu.Lock()
	if m.lockDir == "" {
		return mu.Unlock, nil
	}
	fileLock, err := store.Lock(ctx, m.lockDir, id)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	return func() {
		if err := fileLock.Unlock(); err != nil {
			logging.WarnWithContext(m.logger, "project lock release failed", "lock_release_failed",
				logging.String("id", id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "later writers may wait for the lock"),
			)
		}
		mu.Unlock()
	}, nil
}

// CreateStored saves a new project under id, refusing to overwrite.
func (m *Manager) CreateStored(ctx context.Context, state project.State, id string) (string, error) {
	id, err := store.ResolveID(state, id)
	if err != nil {
		return "", err
	}
	unlock, err := m.lockProject(ctx, id)
	if err != nil {
		return "", err
	}
	defer unlock()
	exists, err := m.store.Exists(ctx, id)
	if err != nil {
		return "", err
	}
	if exists {
		return "", alreadyExists(id)
	}
	return m.store.Save(ctx, state, id)
}

// Update loads id, applies fn and saves the result while holding the
// project's writer lock. Nothing is saved when fn fails. Sources are not
// re-checked on load so a clip whose file vanished can still be removed.
func (m *Manager) Update(ctx context.Context, id string, fn func(project.State) (project.State, error)) (project.State, error) {
	if err := store.ValidateID(id); err != nil {
		return project.State{}, err
	}
	unlock, err := m.lockProject(ctx, id)
	if err != nil {
		return project.State{}, err
	}
	defer unlock()

	state, err := m.store.LoadUnchecked(ctx, id)
	if err != nil {
		return project.State{}, err
	}
	next, err := fn(state)
	if err != nil {
		return project.State{}, err
	}
	if _, err := m.store.Save(ctx, next, id); err != nil {
		return project.State{}, err
	}
	return next, nil
}

// ApplyStored runs action against the stored project id and persists the
// result.
func (m *Manager) ApplyStored(ctx context.Context, id, action string, args actions.Args) (project.State, error) {
	next, err := m.Update(ctx, id, func(state project.State) (project.State, error) {
		return m.registry.Execute(ctx, action, state, args)
	})
	if err != nil {
		return project.State{}, err
	}
	m.logger.Info("operation applied",
		logging.String("id", id),
		logging.String(logging.FieldAction, action),
		logging.Int("clips", next.ClipCount()),
		logging.String(logging.FieldEventType, "action_applied"),
	)
	return next, nil
}

// LoadStored returns the stored project id without changing the current
// project.
func (m *Manager) LoadStored(ctx context.Context, id string) (project.State, error) {
	return m.store.Load(ctx, id)
}

// ListStored returns the stored project ids.
func (m *Manager) ListStored(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// DeleteStored removes id and reports whether it existed.
func (m *Manager) DeleteStored(ctx context.Context, id string) (bool, error) {
	if err := store.ValidateID(id); err != nil {
		return false, err
	}
	unlock, err := m.lockProject(ctx, id)
	if err != nil {
		return false, err
	}
	defer unlock()
	return m.store.Delete(ctx, id)
}

// PlanStored builds the composition plan of the stored project id.
func (m *Manager) PlanStored(ctx context.Context, id string) (composition.Plan, error) {
	state, err := m.store.LoadUnchecked(ctx, id)
	if err != nil {
		return composition.Plan{}, err
	}
	return composition.Build(state)
}

// RenderStored renders the stored project id. A clip whose source vanished
// after it was added fails the render with a missing-asset error.
func (m *Manager) RenderStored(ctx context.Context, id, outputPath string, opts render.Options) (render.Result, error) {
	state, err := m.store.LoadUnchecked(ctx, id)
	if err != nil {
		return render.Result{}, err
	}
	return m.renderState(ctx, state, outputPath, opts)
}
