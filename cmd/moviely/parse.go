package main

import (
	"fmt"
	"strconv"
	"strings"

	"moviely/internal/project"
	"moviely/internal/services"
)

// parseResolution accepts "1920x1080" or "1920:1080".
func parseResolution(value string) (project.Resolution, error) {
	raw := strings.ToLower(strings.TrimSpace(value))
	sep := "x"
	if strings.Contains(raw, ":") {
		sep = ":"
	}
	parts := strings.Split(raw, sep)
	if len(parts) != 2 {
		return project.Resolution{}, flagError("resolution", value, "expected WIDTHxHEIGHT")
	}
	width, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	height, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return project.Resolution{}, flagError("resolution", value, "expected WIDTHxHEIGHT")
	}
	return project.Resolution{Width: width, Height: height}, nil
}

// parseColor accepts "r,g,b" with 0..255 channels.
func parseColor(value string) (project.Color, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 3 {
		return project.Color{}, flagError("background", value, "expected R,G,B")
	}
	var channels [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return project.Color{}, flagError("background", value, "expected R,G,B")
		}
		channels[i] = n
	}
	return project.Color{R: channels[0], G: channels[1], B: channels[2]}, nil
}

func flagError(flag, value, message string) error {
	return services.Wrap(services.ErrValidation, "cli", flag, fmt.Sprintf("invalid --%s %q: %s", flag, value, message), nil)
}
