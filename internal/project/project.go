package project

import (
	"fmt"
	"math"
	"strings"

	"moviely/internal/services"
)

const (
	MaxWidth   = 7680
	MaxHeight  = 4320
	MaxFPS     = 120
	DefaultFPS = 30
)

// Resolution is the output frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// AspectRatio returns width divided by height.
func (r Resolution) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// Color is an 8-bit RGB colour.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex renders the colour as 0xRRGGBB, the form ffmpeg filters accept.
func (c Color) Hex() string {
	return fmt.Sprintf("0x%02X%02X%02X", c.R, c.G, c.B)
}

// Brightness returns the mean channel value scaled to [0, 1].
func (c Color) Brightness() float64 {
	return float64(c.R+c.G+c.B) / (3 * 255)
}

// Settings describes a project before it has any clips.
type Settings struct {
	Name       string
	Resolution Resolution
	FPS        int
	Background Color
}

// State is an immutable snapshot of a project. Methods that change content
// return a new State and leave the receiver untouched.
type State struct {
	Name       string
	Resolution Resolution
	FPS        int
	Background Color
	Clips      []Clip
}

// New validates settings and returns an empty project.
func New(settings Settings) (State, error) {
	return NewWithClips(settings, nil)
}

// NewWithClips validates settings and clips together. Clip values are assumed
// to have been produced by NewClip; only cross-clip rules are rechecked.
func NewWithClips(settings Settings, clips []Clip) (State, error) {
	if err := ValidateSettings(settings); err != nil {
		return State{}, err
	}
	state := State{
		Name:       strings.TrimSpace(settings.Name),
		Resolution: settings.Resolution,
		FPS:        settings.FPS,
		Background: settings.Background,
		Clips:      make([]Clip, 0, len(clips)),
	}
	seen := make(map[string]struct{}, len(clips))
	for _, clip := range clips {
		if err := clip.validateFields(); err != nil {
			return State{}, err
		}
		if _, dup := seen[clip.ID]; dup {
			return State{}, duplicateError(clip.ID)
		}
		seen[clip.ID] = struct{}{}
		state.Clips = append(state.Clips, clip.Clone())
	}
	return state, nil
}

// ValidateSettings checks name, resolution, fps and background bounds.
func ValidateSettings(settings Settings) error {
	fail := func(message string) error {
		return services.Wrap(services.ErrValidation, "project", "settings", message, nil)
	}
	if strings.TrimSpace(settings.Name) == "" {
		return fail("project name is required")
	}
	res := settings.Resolution
	if res.Width <= 0 || res.Height <= 0 {
		return fail(fmt.Sprintf("resolution must be positive, got %s", res))
	}
	if res.Width > MaxWidth || res.Height > MaxHeight {
		return fail(fmt.Sprintf("resolution %s exceeds maximum %dx%d", res, MaxWidth, MaxHeight))
	}
	if settings.FPS <= 0 || settings.FPS > MaxFPS {
		return fail(fmt.Sprintf("fps must be between 1 and %d, got %d", MaxFPS, settings.FPS))
	}
	for _, channel := range []int{settings.Background.R, settings.Background.G, settings.Background.B} {
		if channel < 0 || channel > 255 {
			return fail(fmt.Sprintf("background colour channels must be 0-255, got %v", settings.Background))
		}
	}
	return nil
}

func duplicateError(id string) error {
	return services.Wrap(services.ErrValidation, "project", "clip "+id, "duplicate clip id", nil)
}

// Settings returns the project-level fields without clips.
func (s State) Settings() Settings {
	return Settings{Name: s.Name, Resolution: s.Resolution, FPS: s.FPS, Background: s.Background}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Clips = make([]Clip, len(s.Clips))
	for i, clip := range s.Clips {
		out.Clips[i] = clip.Clone()
	}
	return out
}

// Equal reports structural equality, including clip order.
func (s State) Equal(other State) bool {
	if s.Name != other.Name || s.Resolution != other.Resolution ||
		s.FPS != other.FPS || s.Background != other.Background {
		return false
	}
	if len(s.Clips) != len(other.Clips) {
		return false
	}
	for i := range s.Clips {
		if !s.Clips[i].Equal(other.Clips[i]) {
			return false
		}
	}
	return true
}

// ClipIndex returns the position of the clip with id, or -1.
func (s State) ClipIndex(id string) int {
	for i, clip := range s.Clips {
		if clip.ID == id {
			return i
		}
	}
	return -1
}

// ClipByID returns a copy of the clip with id.
func (s State) ClipByID(id string) (Clip, error) {
	idx := s.ClipIndex(id)
	if idx < 0 {
		return Clip{}, services.Wrap(services.ErrNotFound, "project", "clip "+id,
			fmt.Sprintf("no clip with id %q in project %q", id, s.Name), nil)
	}
	return s.Clips[idx].Clone(), nil
}

// ClipCount returns the number of clips.
func (s State) ClipCount() int {
	return len(s.Clips)
}

// TotalDuration returns the end of the last clip on the timeline, or zero.
func (s State) TotalDuration() float64 {
	total := 0.0
	for _, clip := range s.Clips {
		total = math.Max(total, clip.End())
	}
	return total
}

// AppendClip returns a new state with clip added after the existing clips.
func (s State) AppendClip(clip Clip) (State, error) {
	if s.ClipIndex(clip.ID) >= 0 {
		return State{}, duplicateError(clip.ID)
	}
	out := s.Clone()
	out.Clips = append(out.Clips, clip.Clone())
	return out, nil
}

// ReplaceClip returns a new state with the clip sharing clip.ID swapped for
// clip, keeping its insertion position.
func (s State) ReplaceClip(clip Clip) (State, error) {
	if _, err := s.ClipByID(clip.ID); err != nil {
		return State{}, err
	}
	if err := clip.validateFields(); err != nil {
		return State{}, err
	}
	out := s.Clone()
	out.Clips[s.ClipIndex(clip.ID)] = clip.Clone()
	return out, nil
}

// RemoveClip returns a new state without the clip with id.
func (s State) RemoveClip(id string) (State, error) {
	idx := s.ClipIndex(id)
	if idx < 0 {
		_, err := s.ClipByID(id)
		return State{}, err
	}
	out := s.Clone()
	out.Clips = append(out.Clips[:idx], out.Clips[idx+1:]...)
	return out, nil
}

// WithSettings returns a copy carrying new project-level settings.
func (s State) WithSettings(settings Settings) (State, error) {
	if err := ValidateSettings(settings); err != nil {
		return State{}, err
	}
	out := s.Clone()
	out.Name = strings.TrimSpace(settings.Name)
	out.Resolution = settings.Resolution
	out.FPS = settings.FPS
	out.Background = settings.Background
	return out, nil
}
