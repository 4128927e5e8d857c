package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviely/internal/editor"
	"moviely/internal/render"
	"moviely/internal/services"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		output     string
		codec      string
		preset     string
		audioCodec string
	)

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render a stored project to a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			opts := render.Options{Codec: codec, Preset: preset, AudioCodec: audioCodec}
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				result, err := m.RenderStored(services.WithProject(cmd.Context(), id), id, output, opts)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"output_path": result.OutputPath,
						"duration":    result.Duration,
						"clip_count":  result.ClipCount,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d clips (%s) to %s\n",
					result.ClipCount, formatSeconds(result.Duration), result.OutputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to <output_dir>/<project>.mp4)")
	cmd.Flags().StringVar(&codec, "codec", "", "Video codec override")
	cmd.Flags().StringVar(&preset, "preset", "", "Encoder preset override")
	cmd.Flags().StringVar(&audioCodec, "audio-codec", "", "Audio codec override")
	return cmd
}
