package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"moviely/internal/actions"
	"moviely/internal/editor"
	"moviely/internal/project"
	"moviely/internal/render"
	"moviely/internal/services"
)

func healthHandler(cfg ServerConfig, started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(started).Seconds()),
		})
	}
}

func listActionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ops := cfg.Editor.ListActions()
		out := make([]ActionResponse, 0, len(ops))
		for _, op := range ops {
			out = append(out, actionToResponse(op))
		}
		WriteJSON(w, http.StatusOK, out)
	}
}

func describeActionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, err := cfg.Editor.Registry().Describe(chi.URLParam(r, "name"))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, actionToResponse(op))
	}
}

func listTemplatesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		infos, err := cfg.Editor.ListTemplates()
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, infos)
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := cfg.Editor.ListStored(r.Context())
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		WriteJSON(w, http.StatusOK, ProjectsResponse{Projects: ids})
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			WriteServiceError(w, err)
			return
		}
		state, err := stateFromRequest(cfg, req)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		id, err := cfg.Editor.CreateStored(r.Context(), state, req.ID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		writeProject(w, http.StatusCreated, id, state)
	}
}

func stateFromRequest(cfg ServerConfig, req CreateProjectRequest) (project.State, error) {
	if strings.TrimSpace(req.Template) != "" {
		return cfg.Editor.FromTemplate(req.Template, req.Name)
	}
	settings := project.Settings{
		Name:       req.Name,
		Resolution: project.Resolution{Width: 1920, Height: 1080},
		FPS:        req.FPS,
	}
	if req.Resolution != nil {
		settings.Resolution = project.Resolution{Width: req.Resolution[0], Height: req.Resolution[1]}
	}
	if req.BackgroundColor != nil {
		settings.Background = project.Color{R: req.BackgroundColor[0], G: req.BackgroundColor[1], B: req.BackgroundColor[2]}
	}
	if settings.FPS == 0 {
		settings.FPS = project.DefaultFPS
	}
	return project.New(settings)
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		state, err := cfg.Editor.LoadStored(r.Context(), id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		writeProject(w, http.StatusOK, id, state)
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		deleted, err := cfg.Editor.DeleteStored(r.Context(), id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		if !deleted {
			WriteError(w, http.StatusNotFound, "project "+id+" not found", "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func projectInfoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := cfg.Editor.LoadStored(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, editor.Describe(state))
	}
}

func projectPlanHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := cfg.Editor.PlanStored(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, editor.DescribePlan(plan))
	}
}

func applyActionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		action := chi.URLParam(r, "name")
		args := actions.Args{}
		if err := decodeBody(w, r, &args, true); err != nil {
			WriteServiceError(w, err)
			return
		}
		ctx := services.WithAction(services.WithProject(r.Context(), id), action)
		state, err := cfg.Editor.ApplyStored(ctx, id, action, args)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		writeProject(w, http.StatusOK, id, state)
	}
}

func renderProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req RenderRequest
		if err := decodeBody(w, r, &req, true); err != nil {
			WriteServiceError(w, err)
			return
		}
		opts := render.Options{Codec: req.Codec, Preset: req.Preset, AudioCodec: req.AudioCodec}
		result, err := cfg.Editor.RenderStored(services.WithProject(r.Context(), id), id, req.OutputPath, opts)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, renderToResponse(result))
	}
}

func writeProject(w http.ResponseWriter, status int, id string, state project.State) {
	doc, err := project.Marshal(state)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, status, ProjectResponse{ID: id, Project: doc})
}

// decodeBody reads a JSON body into dst. An empty body is accepted when
// optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return nil
		}
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return services.Wrap(services.ErrValidation, "api", "decode", "invalid request body", err)
	}
	return nil
}
