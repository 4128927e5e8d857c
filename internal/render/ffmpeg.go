package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"moviely/internal/composition"
	"moviely/internal/logging"
	"moviely/internal/project"
)

const (
	ffmpegCommand = "ffmpeg"
	textFontSize  = 70
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// AudioProbe reports whether a media file carries an audio stream.
type AudioProbe func(ctx context.Context, path string) (bool, error)

// FFmpeg renders plans by building a single filter graph: a solid background
// with every picture clip overlaid in draw order, and every audio stream
// delayed to its start and mixed.
type FFmpeg struct {
	binary   string
	fontFile string
	probe    AudioProbe
	run      commandRunner
	logger   *slog.Logger
}

// NewFFmpeg constructs the ffmpeg backend. probe decides whether video clips
// contribute audio; nil assumes they do.
func NewFFmpeg(binary, fontFile string, probe AudioProbe, logger *slog.Logger) *FFmpeg {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = ffmpegCommand
	}
	return &FFmpeg{
		binary:   binary,
		fontFile: strings.TrimSpace(fontFile),
		probe:    probe,
		run:      defaultCommandRunner,
		logger:   logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (f *FFmpeg) WithCommandRunner(r commandRunner) {
	if f != nil && r != nil {
		f.run = r
	}
}

// Encode implements Backend.
func (f *FFmpeg) Encode(ctx context.Context, plan composition.Plan, outputPath string, opts Options) error {
	workDir, err := os.MkdirTemp(filepath.Dir(outputPath), ".render-work-")
	if err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	args, err := f.buildArgs(ctx, plan, outputPath, workDir, opts.withDefaults())
	if err != nil {
		return err
	}
	f.logger.Debug("executing ffmpeg",
		logging.String("output", outputPath),
		logging.Int("arg_count", len(args)),
	)
	if err := f.run(ctx, f.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

type graph struct {
	inputs  []string
	filters []string
	next    int
}

func (g *graph) addInput(args ...string) int {
	g.inputs = append(g.inputs, args...)
	idx := g.next
	g.next++
	return idx
}

func (f *FFmpeg) buildArgs(ctx context.Context, plan composition.Plan, outputPath, workDir string, opts Options) ([]string, error) {
	res := plan.Resolution
	duration := num(plan.Duration)
	g := &graph{}
	g.addInput("-f", "lavfi", "-i", fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s",
		plan.Background.Hex(), res.Width, res.Height, plan.FPS, duration))

	current := "0:v"
	var audioLabels []string
	for i, entry := range plan.DrawOrder() {
		clip := entry.Clip
		start := num(entry.Start)
		clipDur := num(clip.Duration)
		input := -1
		switch clip.Kind {
		case project.KindVideo, project.KindAudio:
			input = g.addInput("-i", clip.Source)
		case project.KindImage:
			input = g.addInput("-loop", "1", "-t", clipDur, "-i", clip.Source)
		}

		if clip.Kind.HasPicture() {
			chain := make([]string, 0, 8)
			var source string
			if clip.Kind == project.KindText {
				textPath := filepath.Join(workDir, fmt.Sprintf("text-%d.txt", i))
				if err := os.WriteFile(textPath, []byte(clip.Source), 0o600); err != nil {
					return nil, fmt.Errorf("write text for clip %s: %w", clip.ID, err)
				}
				chain = append(chain,
					fmt.Sprintf("color=c=black@0.0:s=%dx%d:r=%d:d=%s", res.Width, res.Height, plan.FPS, clipDur),
					"format=yuva420p",
					f.drawText(textPath, plan.Background),
				)
			} else {
				source = fmt.Sprintf("[%d:v]", input)
				chain = append(chain,
					"trim=duration="+clipDur,
					"setpts=PTS-STARTPTS",
					"format=yuva420p",
				)
			}
			chain = append(chain, entry.Pipeline.VideoFilters()...)
			if clip.Kind != project.KindText && !entry.Pipeline.Sized() {
				chain = append(chain,
					fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", res.Width, res.Height),
					fmt.Sprintf("crop=%d:%d", res.Width, res.Height),
				)
			}
			chain = append(chain, fmt.Sprintf("setpts=PTS-STARTPTS+%s/TB", start))
			layer := fmt.Sprintf("v%d", i)
			g.filters = append(g.filters, source+strings.Join(chain, ",")+"["+layer+"]")

			out := fmt.Sprintf("o%d", i)
			g.filters = append(g.filters, fmt.Sprintf(
				"[%s][%s]overlay=x=(W-w)/2:y=(H-h)/2:eof_action=pass:enable='between(t,%s,%s)'[%s]",
				current, layer, start, num(entry.End), out))
			current = out
		}

		if clip.Kind.HasAudio() && input >= 0 {
			hasAudio := true
			if clip.Kind == project.KindVideo && f.probe != nil {
				var err error
				if hasAudio, err = f.probe(ctx, clip.Source); err != nil {
					return nil, fmt.Errorf("probe audio for clip %s: %w", clip.ID, err)
				}
			}
			if hasAudio {
				delay := strconv.FormatInt(int64(entry.Start*1000+0.5), 10)
				chain := []string{"atrim=duration=" + clipDur, "asetpts=PTS-STARTPTS"}
				chain = append(chain, entry.Pipeline.AudioFilters()...)
				chain = append(chain, "volume="+num(clip.Volume), "adelay=delays="+delay+":all=1")
				label := fmt.Sprintf("a%d", i)
				g.filters = append(g.filters, fmt.Sprintf("[%d:a]%s[%s]", input, strings.Join(chain, ","), label))
				audioLabels = append(audioLabels, label)
			}
		}
	}

	g.filters = append(g.filters, fmt.Sprintf("[%s]format=yuv420p[vout]", current))
	switch len(audioLabels) {
	case 0:
	case 1:
		g.filters = append(g.filters, fmt.Sprintf("[%s]anull[aout]", audioLabels[0]))
	default:
		var in strings.Builder
		for _, label := range audioLabels {
			in.WriteString("[" + label + "]")
		}
		g.filters = append(g.filters, fmt.Sprintf("%samix=inputs=%d:duration=longest:normalize=0[aout]", in.String(), len(audioLabels)))
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	args = append(args, g.inputs...)
	args = append(args, "-filter_complex", strings.Join(g.filters, ";"), "-map", "[vout]")
	if len(audioLabels) > 0 {
		args = append(args, "-map", "[aout]", "-c:a", opts.AudioCodec)
	} else {
		args = append(args, "-an")
	}
	args = append(args,
		"-c:v", opts.Codec,
		"-preset", opts.Preset,
		"-r", strconv.Itoa(plan.FPS),
		"-t", duration,
		"-pix_fmt", "yuv420p",
		outputPath,
	)
	return args, nil
}

// drawText renders the text file centred, black on bright backgrounds and
// white otherwise.
func (f *FFmpeg) drawText(textPath string, background project.Color) string {
	color := "white"
	if background.Brightness() > 0.5 {
		color = "black"
	}
	opts := []string{
		"textfile=" + escapeFilterValue(textPath),
		"fontcolor=" + color,
		"fontsize=" + strconv.Itoa(textFontSize),
		"x=(w-text_w)/2",
		"y=(h-text_h)/2",
	}
	if f.fontFile != "" {
		opts = append(opts, "fontfile="+escapeFilterValue(f.fontFile))
	}
	return "drawtext=" + strings.Join(opts, ":")
}

func escapeFilterValue(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`, `,`, `\,`, `;`, `\;`, `[`, `\[`, `]`, `\]`)
	return replacer.Replace(value)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
