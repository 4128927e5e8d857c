package api

import (
	"encoding/json"

	"moviely/internal/actions"
	"moviely/internal/render"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

// ParamResponse documents one operation argument.
type ParamResponse struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// ActionResponse describes a registered operation.
type ActionResponse struct {
	Name    string          `json:"name"`
	Summary string          `json:"summary"`
	Params  []ParamResponse `json:"params"`
}

// ProjectsResponse lists stored project ids.
type ProjectsResponse struct {
	Projects []string `json:"projects"`
}

// ProjectResponse carries a project in its persisted document layout.
type ProjectResponse struct {
	ID      string          `json:"id"`
	Project json.RawMessage `json:"project"`
}

// CreateProjectRequest creates a stored project from explicit settings or a
// template.
type CreateProjectRequest struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Template        string  `json:"template"`
	Resolution      *[2]int `json:"resolution"`
	FPS             int     `json:"fps"`
	BackgroundColor *[3]int `json:"background_color"`
}

// RenderRequest overrides render settings for one render.
type RenderRequest struct {
	OutputPath string `json:"output_path"`
	Codec      string `json:"codec"`
	Preset     string `json:"preset"`
	AudioCodec string `json:"audio_codec"`
}

// RenderResponse describes a finished render.
type RenderResponse struct {
	OutputPath string  `json:"output_path"`
	Duration   float64 `json:"duration"`
	ClipCount  int     `json:"clip_count"`
}

func actionToResponse(op actions.Operation) ActionResponse {
	params := make([]ParamResponse, 0, len(op.Params))
	for _, p := range op.Params {
		params = append(params, ParamResponse{
			Name:        p.Name,
			Type:        p.Type,
			Required:    p.Required,
			Default:     p.Default,
			Description: p.Description,
		})
	}
	return ActionResponse{Name: op.Name, Summary: op.Summary, Params: params}
}

func renderToResponse(res render.Result) RenderResponse {
	return RenderResponse{OutputPath: res.OutputPath, Duration: res.Duration, ClipCount: res.ClipCount}
}
