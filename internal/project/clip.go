package project

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"moviely/internal/services"
)

const (
	DefaultTrackLayer = 1
	DefaultVolume     = 1.0
	MaxVolume         = 2.0
)

// Clip is a timed piece of media or text placed on the timeline.
type Clip struct {
	ID         string   `json:"id"`
	Kind       Kind     `json:"type"`
	Source     string   `json:"source"`
	Duration   float64  `json:"duration"`
	Start      float64  `json:"start"`
	TrackLayer int      `json:"track_layer"`
	Effects    []Effect `json:"effects"`
	Volume     float64  `json:"volume"`
}

// ClipSpec carries the fields used to construct a Clip. Nil pointers take the
// documented defaults (track layer 1, volume 1.0).
type ClipSpec struct {
	ID         string
	Kind       string
	Source     string
	Duration   float64
	Start      float64
	TrackLayer *int
	Volume     *float64
	Effects    []Effect
}

// NewClipID returns a fresh clip identifier.
func NewClipID() string {
	return "clip_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewClip validates spec and returns the clip it describes. Field bounds are
// checked before the source file so malformed input never touches the
// filesystem.
func NewClip(spec ClipSpec, assets AssetChecker) (Clip, error) {
	kind, err := ParseKind(spec.Kind)
	if err != nil {
		return Clip{}, err
	}
	clip := Clip{
		ID:         strings.TrimSpace(spec.ID),
		Kind:       kind,
		Source:     spec.Source,
		Duration:   spec.Duration,
		Start:      spec.Start,
		TrackLayer: DefaultTrackLayer,
		Volume:     DefaultVolume,
	}
	if spec.TrackLayer != nil {
		clip.TrackLayer = *spec.TrackLayer
	}
	if spec.Volume != nil {
		clip.Volume = *spec.Volume
	}
	if clip.ID == "" {
		clip.ID = NewClipID()
	}
	clip.Effects = make([]Effect, 0, len(spec.Effects))
	for _, effect := range spec.Effects {
		normalized, err := NewEffect(effect.Type, effect.Parameters)
		if err != nil {
			return Clip{}, err
		}
		clip.Effects = append(clip.Effects, normalized)
	}
	if err := clip.validateFields(); err != nil {
		return Clip{}, err
	}
	if kind.NeedsFile() {
		if err := checkerOrDefault(assets).CheckAsset(clip.Source); err != nil {
			return Clip{}, err
		}
	}
	return clip, nil
}

func (c Clip) validateFields() error {
	if c.Kind == KindText {
		if strings.TrimSpace(c.Source) == "" {
			return clipError(c.ID, "text clips require source content")
		}
	} else if strings.TrimSpace(c.Source) == "" {
		return clipError(c.ID, fmt.Sprintf("%s clips require a source path", c.Kind))
	}
	if err := ValidateDuration(c.Duration); err != nil {
		return clipError(c.ID, err.Error())
	}
	if err := ValidateStart(c.Start); err != nil {
		return clipError(c.ID, err.Error())
	}
	if c.TrackLayer < 1 {
		return clipError(c.ID, fmt.Sprintf("track_layer must be >= 1, got %d", c.TrackLayer))
	}
	if err := ValidateVolume(c.Volume); err != nil {
		return clipError(c.ID, err.Error())
	}
	if !c.Kind.HasAudio() && c.Volume != DefaultVolume {
		return clipError(c.ID, fmt.Sprintf("%s clips have no audio; volume must stay %.1f", c.Kind, DefaultVolume))
	}
	return nil
}

// ValidateDuration requires a finite duration greater than zero.
func ValidateDuration(duration float64) error {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}
	return nil
}

// ValidateStart requires a finite, non-negative timeline position.
func ValidateStart(start float64) error {
	if math.IsNaN(start) || math.IsInf(start, 0) || start < 0 {
		return fmt.Errorf("start must be non-negative, got %v", start)
	}
	return nil
}

// ValidateVolume requires a volume multiplier within [0, MaxVolume].
func ValidateVolume(volume float64) error {
	if math.IsNaN(volume) || volume < 0 || volume > MaxVolume {
		return fmt.Errorf("volume must be between 0.0 and %.1f, got %v", MaxVolume, volume)
	}
	return nil
}

func clipError(id, message string) error {
	op := "clip"
	if id != "" {
		op = "clip " + id
	}
	return services.Wrap(services.ErrValidation, "project", op, message, nil)
}

// End returns the timeline position where the clip stops.
func (c Clip) End() float64 {
	return c.Start + c.Duration
}

// Overlaps reports whether the two clips share any instant of the timeline.
func (c Clip) Overlaps(other Clip) bool {
	return c.Start < other.End() && other.Start < c.End()
}

// Clone returns a deep copy of the clip.
func (c Clip) Clone() Clip {
	out := c
	out.Effects = make([]Effect, len(c.Effects))
	for i, effect := range c.Effects {
		out.Effects[i] = effect.Clone()
	}
	return out
}

// WithEffect returns a copy of the clip with effect appended.
func (c Clip) WithEffect(effect Effect) Clip {
	out := c.Clone()
	out.Effects = append(out.Effects, effect.Clone())
	return out
}

// Equal reports structural equality.
func (c Clip) Equal(other Clip) bool {
	if c.ID != other.ID || c.Kind != other.Kind || c.Source != other.Source ||
		c.Duration != other.Duration || c.Start != other.Start ||
		c.TrackLayer != other.TrackLayer || c.Volume != other.Volume {
		return false
	}
	if len(c.Effects) != len(other.Effects) {
		return false
	}
	for i := range c.Effects {
		if !c.Effects[i].Equal(other.Effects[i]) {
			return false
		}
	}
	return true
}
