package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"moviely/internal/config"
)

const versionTimeout = 5 * time.Second

// Requirement defines an external tool moviely relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// Requirements lists the tools the configured render pipeline needs.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg, ffprobe := "ffmpeg", "ffprobe"
	if cfg != nil {
		if v := strings.TrimSpace(cfg.Render.FFmpegBinary); v != "" {
			ffmpeg = v
		}
		if v := strings.TrimSpace(cfg.Render.FFprobeBinary); v != "" {
			ffprobe = v
		}
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Composites and encodes renders"},
		{Name: "FFprobe", Command: ffprobe, Description: "Probes media size and audio streams"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Available binaries are asked for their version; a failed version probe
// leaves the binary available with a detail message.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		version, err := ProbeVersion(ctx, resolved)
		if err != nil {
			status.Detail = fmt.Sprintf("version probe failed: %v", err)
		}
		status.Version = version
		results = append(results, status)
	}
	return results
}

// CheckFontFile reports whether the configured text font exists. An empty
// path means the backend default font is used.
func CheckFontFile(path string) Status {
	status := Status{
		Name:        "Font",
		Command:     strings.TrimSpace(path),
		Description: "Font used for text clips",
		Optional:    true,
	}
	if status.Command == "" {
		status.Available = true
		status.Detail = "using ffmpeg default font"
		return status
	}
	info, err := os.Stat(status.Command)
	if err != nil || info.IsDir() {
		status.Detail = fmt.Sprintf("font file %q not found", status.Command)
		return status
	}
	status.Available = true
	return status
}

// Check runs every doctor check for cfg.
func Check(ctx context.Context, cfg *config.Config) []Status {
	results := CheckBinaries(ctx, Requirements(cfg))
	if cfg != nil {
		results = append(results, CheckFontFile(cfg.Render.FontFile))
	}
	return results
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
