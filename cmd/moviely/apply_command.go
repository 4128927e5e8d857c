package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moviely/internal/actions"
	"moviely/internal/editor"
	"moviely/internal/services"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "apply <id> <operation> [key=value ...]",
		Short: "Apply a registered operation to a stored project",
		Long: "Apply a registered operation to a stored project and save the result.\n\n" +
			"Values are decoded as JSON when possible (numbers, booleans, objects, lists)\n" +
			"and kept as strings otherwise, e.g.\n\n" +
			"  moviely apply demo add_clip clip_type=text source='Hello' duration=3\n" +
			"  moviely apply demo apply_effect clip_id=title effect_type=fade parameters='{\"in\":0.5}'",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, operation := args[0], args[1]
			opArgs, err := buildArgs(args[2:], argsJSON)
			if err != nil {
				return err
			}
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				ctxWithAction := services.WithAction(services.WithProject(cmd.Context(), id), operation)
				state, err := m.ApplyStored(ctxWithAction, id, operation, opArgs)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"id": id, "project": editor.Describe(state)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s to %s (%d clips, %s)\n",
					operation, id, state.ClipCount(), formatSeconds(state.TotalDuration()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&argsJSON, "args-json", "", "Operation arguments as a JSON object")
	return cmd
}

// buildArgs merges a JSON object with key=value pairs; pairs win.
func buildArgs(pairs []string, rawJSON string) (actions.Args, error) {
	args := actions.Args{}
	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &args); err != nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "apply", "--args-json must be a JSON object", err)
		}
	}
	assigned, err := actions.ParseAssignments(pairs)
	if err != nil {
		return nil, err
	}
	for key, value := range assigned {
		args[key] = value
	}
	return args, nil
}
