package project

import (
	"fmt"
	"strings"

	"moviely/internal/services"
)

// Kind identifies the media variant a clip carries.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindImage Kind = "image"
	KindText  Kind = "text"
)

type kindRules struct {
	needsFile  bool
	hasAudio   bool
	hasPicture bool
}

var kindTable = map[Kind]kindRules{
	KindVideo: {needsFile: true, hasAudio: true, hasPicture: true},
	KindAudio: {needsFile: true, hasAudio: true},
	KindImage: {needsFile: true, hasPicture: true},
	KindText:  {hasPicture: true},
}

// Kinds lists every supported clip kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindVideo, KindAudio, KindImage, KindText}
}

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := kindTable[kind]; !ok {
		return "", services.Wrap(services.ErrValidation, "project", "clip type",
			fmt.Sprintf("unsupported clip type %q (want video, audio, image or text)", value), nil)
	}
	return kind, nil
}

// NeedsFile reports whether the clip source must be a local media file.
func (k Kind) NeedsFile() bool { return kindTable[k].needsFile }

// HasAudio reports whether clips of this kind carry an audio component.
func (k Kind) HasAudio() bool { return kindTable[k].hasAudio }

// HasPicture reports whether clips of this kind draw onto the frame.
func (k Kind) HasPicture() bool { return kindTable[k].hasPicture }

func (k Kind) String() string { return string(k) }
