package editor

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"moviely/internal/actions"
	"moviely/internal/composition"
	"moviely/internal/config"
	"moviely/internal/logging"
	"moviely/internal/media/ffprobe"
	"moviely/internal/mediasearch"
	"moviely/internal/project"
	"moviely/internal/render"
	"moviely/internal/services"
	"moviely/internal/store"
	"moviely/internal/templates"
)

// MediaSearcher finds and downloads stock media.
type MediaSearcher interface {
	Search(ctx context.Context, query, provider, mediaType string, limit int) ([]mediasearch.Result, error)
	SearchMusic(ctx context.Context, query string, limit int) ([]mediasearch.Result, error)
	Download(ctx context.Context, result mediasearch.Result) (string, error)
}

// Options wires a Manager. Store, Templates, Registry and Renderer are
// required; the rest fall back to defaults.
type Options struct {
	Store        store.Store
	Templates    *templates.Manager
	Registry     *actions.Registry
	Renderer     *render.Executor
	Search       MediaSearcher
	RenderOpts   render.Options
	OutputDir    string
	LockDir      string
	DefaultLimit int
	Logger       *slog.Logger
}

// Manager coordinates project editing, persistence and rendering.
type Manager struct {
	store        store.Store
	templates    *templates.Manager
	registry     *actions.Registry
	renderer     *render.Executor
	search       MediaSearcher
	renderOpts   render.Options
	outputDir    string
	lockDir      string
	defaultLimit int
	logger       *slog.Logger

	mu        sync.Mutex
	current   *project.State
	currentID string

	keysMu sync.Mutex
	keys   map[string]*sync.Mutex
}

// New validates opts and returns a Manager.
func New(opts Options) (*Manager, error) {
	switch {
	case opts.Store == nil:
		return nil, services.Wrap(services.ErrConfiguration, "editor", "new", "store is required", nil)
	case opts.Templates == nil:
		return nil, services.Wrap(services.ErrConfiguration, "editor", "new", "template manager is required", nil)
	case opts.Registry == nil:
		return nil, services.Wrap(services.ErrConfiguration, "editor", "new", "action registry is required", nil)
	case opts.Renderer == nil:
		return nil, services.Wrap(services.ErrConfiguration, "editor", "new", "renderer is required", nil)
	}
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = mediasearch.DefaultLimit
	}
	return &Manager{
		store:        opts.Store,
		templates:    opts.Templates,
		registry:     opts.Registry,
		renderer:     opts.Renderer,
		search:       opts.Search,
		renderOpts:   opts.RenderOpts,
		outputDir:    opts.OutputDir,
		lockDir:      opts.LockDir,
		defaultLimit: limit,
		logger:       logging.NewComponentLogger(opts.Logger, "editor"),
		keys:         make(map[string]*sync.Mutex),
	}, nil
}

// NewFromConfig assembles the full production stack: configured store,
// ffprobe-backed crop sizing, ffmpeg rendering and media search.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "editor", "new", "config is required", nil)
	}
	assets := project.FileAssets{}
	s, err := store.Open(ctx, cfg, assets)
	if err != nil {
		return nil, err
	}
	prober := ffprobe.NewProber(cfg.Render.FFprobeBinary)
	registry := actions.NewDefaultRegistry(actions.Dependencies{Assets: assets, Prober: prober, Logger: logger})
	backend := render.NewFFmpeg(cfg.Render.FFmpegBinary, cfg.Render.FontFile, prober.HasAudio, logger)
	m, err := New(Options{
		Store:     s,
		Templates: templates.NewManager(cfg.Paths.TemplatesDir, assets),
		Registry:  registry,
		Renderer:  render.NewExecutor(backend, assets, logger),
		Search:    mediasearch.NewFromConfig(cfg, logger),
		RenderOpts: render.Options{
			Codec:      cfg.Render.Codec,
			Preset:     cfg.Render.Preset,
			AudioCodec: cfg.Render.AudioCodec,
		},
		OutputDir:    cfg.Paths.OutputDir,
		LockDir:      cfg.LockDir(),
		DefaultLimit: cfg.Search.DefaultLimit,
		Logger:       logger,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return m, nil
}

// Close releases the store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Store exposes the persistence backend.
func (m *Manager) Store() store.Store { return m.store }

// Registry exposes the operation registry.
func (m *Manager) Registry() *actions.Registry { return m.registry }

// CreateProject replaces the current project with an empty one.
func (m *Manager) CreateProject(settings project.Settings) (project.State, error) {
	if settings.FPS == 0 {
		settings.FPS = project.DefaultFPS
	}
	state, err := project.New(settings)
	if err != nil {
		return project.State{}, err
	}
	m.setCurrent(state, "")
	m.logger.Info("project created",
		logging.String("name", state.Name),
		logging.String("resolution", state.Resolution.String()),
		logging.Int("fps", state.FPS),
	)
	return state, nil
}

// FromTemplate instantiates the named template without touching the current
// project. A non-empty name renames the result.
func (m *Manager) FromTemplate(templateName, name string) (project.State, error) {
	state, err := m.templates.Load(templateName)
	if err != nil {
		return project.State{}, err
	}
	if strings.TrimSpace(name) == "" {
		return state, nil
	}
	settings := state.Settings()
	settings.Name = name
	return state.WithSettings(settings)
}

// LoadTemplate replaces the current project with the named template.
func (m *Manager) LoadTemplate(templateName, name string) (project.State, error) {
	state, err := m.FromTemplate(templateName, name)
	if err != nil {
		return project.State{}, err
	}
	m.setCurrent(state, "")
	m.logger.Info("template loaded", logging.String("template", templateName), logging.String("name", state.Name))
	return state, nil
}

// Current returns the current project, if any.
func (m *Manager) Current() (project.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return project.State{}, false
	}
	return m.current.Clone(), true
}

// SaveProject persists the current project under id (or the id it was
// loaded from, or its name slug) and returns the id used.
func (m *Manager) SaveProject(ctx context.Context, id string) (string, error) {
	state, currentID, err := m.requireCurrent()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		id = currentID
	}
	id, err = store.ResolveID(state, id)
	if err != nil {
		return "", err
	}
	unlock, err := m.lockProject(ctx, id)
	if err != nil {
		return "", err
	}
	defer unlock()
	saved, err := m.store.Save(ctx, state, id)
	if err != nil {
		return "", err
	}
	m.setCurrent(state, saved)
	m.logger.Info("project saved", logging.String("id", saved), logging.Int("clips", state.ClipCount()))
	return saved, nil
}

// LoadProject makes the stored project id current.
func (m *Manager) LoadProject(ctx context.Context, id string) (project.State, error) {
	state, err := m.store.Load(ctx, id)
	if err != nil {
		return project.State{}, err
	}
	m.setCurrent(state, id)
	return state, nil
}

// Apply runs an operation on the current project. On failure the current
// project is left unchanged.
func (m *Manager) Apply(ctx context.Context, action string, args actions.Args) (project.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return project.State{}, noProject()
	}
	ctx = services.WithProject(ctx, m.current.Name)
	next, err := m.registry.Execute(ctx, action, *m.current, args)
	if err != nil {
		return project.State{}, err
	}
	m.current = &next
	return next.Clone(), nil
}

// Render renders the current project. An empty outputPath writes
// <output_dir>/<project slug>.mp4.
func (m *Manager) Render(ctx context.Context, outputPath string, opts render.Options) (render.Result, error) {
	state, _, err := m.requireCurrent()
	if err != nil {
		return render.Result{}, err
	}
	return m.renderState(ctx, state, outputPath, opts)
}

// Plan returns the composition plan of the current project.
func (m *Manager) Plan() (composition.Plan, error) {
	state, _, err := m.requireCurrent()
	if err != nil {
		return composition.Plan{}, err
	}
	return composition.Build(state)
}

// Info summarises the current project.
func (m *Manager) Info() (Info, error) {
	state, _, err := m.requireCurrent()
	if err != nil {
		return Info{}, err
	}
	return Describe(state), nil
}

// ListActions returns every registered operation in name order.
func (m *Manager) ListActions() []actions.Operation {
	return m.registry.Operations()
}

// ListTemplates returns the available templates.
func (m *Manager) ListTemplates() ([]templates.Info, error) {
	return m.templates.List()
}

// SaveTemplate stores the current project as a user template.
func (m *Manager) SaveTemplate(name string) (string, error) {
	state, _, err := m.requireCurrent()
	if err != nil {
		return "", err
	}
	return m.templates.Save(state, name)
}

// Search finds stock video or images. A non-positive limit uses the
// configured default.
func (m *Manager) Search(ctx context.Context, query, provider, mediaType string, limit int) ([]mediasearch.Result, error) {
	if m.search == nil {
		return nil, noSearch()
	}
	if limit <= 0 {
		limit = m.defaultLimit
	}
	return m.search.Search(ctx, query, provider, mediaType, limit)
}

// SearchMusic finds music tracks.
func (m *Manager) SearchMusic(ctx context.Context, query string, limit int) ([]mediasearch.Result, error) {
	if m.search == nil {
		return nil, noSearch()
	}
	if limit <= 0 {
		limit = m.defaultLimit
	}
	return m.search.SearchMusic(ctx, query, limit)
}

// Download fetches a search result and returns its local path.
func (m *Manager) Download(ctx context.Context, result mediasearch.Result) (string, error) {
	if m.search == nil {
		return "", noSearch()
	}
	return m.search.Download(ctx, result)
}

func (m *Manager) renderState(ctx context.Context, state project.State, outputPath string, opts render.Options) (render.Result, error) {
	if strings.TrimSpace(outputPath) == "" {
		outputPath = filepath.Join(m.outputDir, store.Slug(state.Name)+".mp4")
	}
	ctx = services.WithProject(ctx, state.Name)
	return m.renderer.Render(ctx, state, outputPath, m.mergeRenderOptions(opts))
}

func (m *Manager) mergeRenderOptions(opts render.Options) render.Options {
	if opts.Codec == "" {
		opts.Codec = m.renderOpts.Codec
	}
	if opts.Preset == "" {
		opts.Preset = m.renderOpts.Preset
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = m.renderOpts.AudioCodec
	}
	return opts
}

func (m *Manager) setCurrent(state project.State, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := state.Clone()
	m.current = &clone
	m.currentID = id
}

func (m *Manager) requireCurrent() (project.State, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return project.State{}, "", noProject()
	}
	return m.current.Clone(), m.currentID, nil
}

func noProject() error {
	return services.Wrap(services.ErrValidation, "editor", "", "no active project; create, load or use a template first", nil)
}

func noSearch() error {
	return services.Wrap(services.ErrConfiguration, "editor", "search", "media search is not configured", nil)
}
