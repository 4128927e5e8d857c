package actions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"moviely/internal/logging"
	"moviely/internal/project"
	"moviely/internal/services"
)

// Func transforms a project state. Implementations must not mutate the input.
type Func func(ctx context.Context, state project.State, args Args) (project.State, error)

// Param documents one argument accepted by an operation.
type Param struct {
	Name        string
	Type        string
	Required    bool
	Default     string
	Description string
}

// Operation is a named state transformation plus its description.
type Operation struct {
	Name    string
	Summary string
	Params  []Param
	Fn      Func
}

func (op Operation) accepts(key string) bool {
	for _, p := range op.Params {
		if p.Name == key {
			return true
		}
	}
	return false
}

// Registry maps operation names to transformations.
type Registry struct {
	mu     sync.RWMutex
	ops    map[string]Operation
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		ops:    make(map[string]Operation),
		logger: logging.NewComponentLogger(logger, "actions"),
	}
}

// Register installs fn under name. Registering an existing name replaces the
// previous operation.
func (r *Registry) Register(name string, fn Func) {
	r.RegisterOperation(Operation{Name: name, Fn: fn})
}

// RegisterOperation installs a described operation, replacing any previous
// registration with the same name.
func (r *Registry) RegisterOperation(op Operation) {
	op.Name = strings.TrimSpace(op.Name)
	if op.Name == "" || op.Fn == nil {
		panic("actions: operation requires a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[op.Name]; exists {
		r.logger.Debug("replacing registered operation", logging.String("action", op.Name))
	}
	r.ops[op.Name] = op
}

// Execute runs the named operation against a copy of state and returns the
// resulting state. state itself is never modified.
func (r *Registry) Execute(ctx context.Context, name string, state project.State, args Args) (project.State, error) {
	op, ok := r.lookup(name)
	if !ok {
		return project.State{}, services.Wrap(services.ErrUnknownAction, "actions", name,
			fmt.Sprintf("unknown operation (available: %s)", strings.Join(r.List(), ", ")), nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return project.State{}, err
	}
	if len(op.Params) > 0 {
		for key := range args {
			if !op.accepts(key) {
				return project.State{}, services.Wrap(services.ErrValidation, "actions", name,
					fmt.Sprintf("unexpected argument %q", key), nil)
			}
		}
	}
	if args == nil {
		args = Args{}
	}

	ctx = services.WithAction(ctx, name)
	next, err := op.Fn(ctx, state.Clone(), args)
	if err != nil {
		logging.WithContext(ctx, r.logger).Debug("operation failed",
			logging.String("kind", services.Kind(err)),
			logging.Error(err),
		)
		return project.State{}, fmt.Errorf("%s: %w", name, err)
	}
	logging.WithContext(ctx, r.logger).Debug("operation applied",
		logging.String("project", next.Name),
		logging.Int("clip_count", next.ClipCount()),
	)
	return next, nil
}

// List returns the registered operation names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the registered operation with name.
func (r *Registry) Describe(name string) (Operation, error) {
	op, ok := r.lookup(name)
	if !ok {
		return Operation{}, services.Wrap(services.ErrUnknownAction, "actions", name, "unknown operation", nil)
	}
	op.Params = append([]Param(nil), op.Params...)
	return op, nil
}

// Operations returns every registered operation sorted by name.
func (r *Registry) Operations() []Operation {
	names := r.List()
	out := make([]Operation, 0, len(names))
	for _, name := range names {
		if op, ok := r.lookup(name); ok {
			out = append(out, op)
		}
	}
	return out
}

func (r *Registry) lookup(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[strings.TrimSpace(name)]
	return op, ok
}
