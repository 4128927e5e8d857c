// Package render executes composition plans against a media backend.
//
// The executor owns everything around the encode: precondition checks, the
// temporary sibling output and the final rename. Backends only turn a plan
// into a file at the path they are given.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moviely/internal/composition"
	"moviely/internal/logging"
	"moviely/internal/project"
	"moviely/internal/services"
)

// Options control encoding.
type Options struct {
	Codec      string
	Preset     string
	AudioCodec string
}

// DefaultOptions returns libx264/medium/aac.
func DefaultOptions() Options {
	return Options{Codec: "libx264", Preset: "medium", AudioCodec: "aac"}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if strings.TrimSpace(o.Codec) == "" {
		o.Codec = def.Codec
	}
	if strings.TrimSpace(o.Preset) == "" {
		o.Preset = def.Preset
	}
	if strings.TrimSpace(o.AudioCodec) == "" {
		o.AudioCodec = def.AudioCodec
	}
	return o
}

// Result describes a finished render.
type Result struct {
	OutputPath string
	Duration   float64
	ClipCount  int
}

// Backend encodes a plan into outputPath.
type Backend interface {
	Encode(ctx context.Context, plan composition.Plan, outputPath string, opts Options) error
}

// Executor renders project states.
type Executor struct {
	backend Backend
	assets  project.AssetChecker
	logger  *slog.Logger
}

// NewExecutor constructs an executor. A nil assets checker uses the local
// filesystem.
func NewExecutor(backend Backend, assets project.AssetChecker, logger *slog.Logger) *Executor {
	if assets == nil {
		assets = project.FileAssets{}
	}
	return &Executor{
		backend: backend,
		assets:  assets,
		logger:  logging.NewComponentLogger(logger, "render"),
	}
}

// Plan checks preconditions and returns the plan Render would execute.
func (e *Executor) Plan(state project.State) (composition.Plan, error) {
	if state.ClipCount() == 0 {
		return composition.Plan{}, services.Wrap(services.ErrEmptyProject, "render", "plan",
			fmt.Sprintf("project %q has no clips", state.Name), nil)
	}
	for _, clip := range state.Clips {
		if !clip.Kind.NeedsFile() {
			continue
		}
		if err := e.assets.CheckAsset(clip.Source); err != nil {
			return composition.Plan{}, services.Wrap(services.ErrMissingAsset, "render", "clip "+clip.ID,
				"source is no longer available", err)
		}
	}
	return composition.Require(state)
}

// Render writes state to outputPath, replacing any existing file. Output is
// written to a temporary sibling and only renamed into place on success.
func (e *Executor) Render(ctx context.Context, state project.State, outputPath string, opts Options) (Result, error) {
	if e == nil || e.backend == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "render", "", "render backend not configured", nil)
	}
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return Result{}, services.Wrap(services.ErrValidation, "render", "", "output path is required", nil)
	}
	plan, err := e.Plan(state)
	if err != nil {
		return Result{}, err
	}
	opts = opts.withDefaults()

	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "render", "", "resolve output path", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrBackendFailure, "render", "", "create output directory", err)
	}
	tmpPath := TempPath(abs)

	ctx = services.WithProject(ctx, state.Name)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("render started",
		logging.String(logging.FieldEventType, "render_started"),
		logging.String("output", abs),
		logging.Int("clip_count", plan.ClipCount()),
		logging.Float64("duration_seconds", plan.Duration),
		logging.String("codec", opts.Codec),
	)
	started := time.Now()

	if err := e.backend.Encode(ctx, plan, tmpPath, opts); err != nil {
		_ = os.Remove(tmpPath)
		logging.ErrorWithContext(logger, "render failed", "render_failed", logging.Error(err))
		return Result{}, services.Wrap(services.ErrBackendFailure, "render", "encode", "", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return Result{}, services.Wrap(services.ErrBackendFailure, "render", "encode", "backend did not produce output", err)
	}
	if err := os.Rename(tmpPath, abs); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, services.Wrap(services.ErrBackendFailure, "render", "", "replace output file", err)
	}

	logger.Info("render complete",
		logging.String(logging.FieldEventType, "render_complete"),
		logging.String("output", abs),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{OutputPath: abs, Duration: plan.Duration, ClipCount: plan.ClipCount()}, nil
}

// TempPath returns the sibling path used while rendering to outputPath. The
// extension is kept so the encoder can infer the container.
func TempPath(outputPath string) string {
	dir := filepath.Dir(outputPath)
	base := filepath.Base(outputPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, ".render-"+strings.TrimSuffix(base, ext)+".tmp"+ext)
}
