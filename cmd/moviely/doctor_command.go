package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moviely/internal/deps"
	"moviely/internal/services"
)

const statusLabelWidth = 10

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that ffmpeg, ffprobe and the text font are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.Check(cmd.Context(), cfg)
			missing := deps.MissingRequired(statuses)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				color := shouldColorize(out)
				for _, status := range statuses {
					fmt.Fprintln(out, renderDependencyLine(status, color))
				}
			}
			if len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, status := range missing {
					names = append(names, status.Name)
				}
				return services.Wrap(services.ErrExternalTool, "cli", "doctor",
					"missing required tools: "+strings.Join(names, ", "), nil)
			}
			return nil
		},
	}
}

func renderDependencyLine(status deps.Status, color bool) string {
	label, tint := "OK", ansiGreen
	switch {
	case !status.Available && status.Optional:
		label, tint = "WARN", ansiYellow
	case !status.Available:
		label, tint = "MISSING", ansiRed
	}
	detail := status.Command
	if status.Version != "" {
		detail += " (" + status.Version + ")"
	}
	if status.Detail != "" {
		if detail != "" {
			detail += " - "
		}
		detail += status.Detail
	}
	line := fmt.Sprintf("  %-*s [%s] %s", statusLabelWidth, status.Name+":", label, detail)
	return colorize(color, tint, line)
}
