package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"moviely/internal/actions"
	"moviely/internal/editor"
)

func newActionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "actions [operation]",
		Short: "List registered operations or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				if len(args) == 1 {
					op, err := m.Registry().Describe(args[0])
					if err != nil {
						return err
					}
					return printOperation(cmd, ctx, op)
				}
				ops := m.ListActions()
				if ctx.jsonOutput() {
					out := make([]map[string]any, 0, len(ops))
					for _, op := range ops {
						out = append(out, operationJSON(op))
					}
					return writeJSON(cmd, out)
				}
				rows := make([][]string, 0, len(ops))
				for _, op := range ops {
					rows = append(rows, []string{op.Name, op.Summary})
				}
				printTable(cmd, []string{"Operation", "Summary"}, rows, nil)
				return nil
			})
		},
	}
}

func operationJSON(op actions.Operation) map[string]any {
	params := make([]map[string]any, 0, len(op.Params))
	for _, p := range op.Params {
		params = append(params, map[string]any{
			"name":        p.Name,
			"type":        p.Type,
			"required":    p.Required,
			"default":     p.Default,
			"description": p.Description,
		})
	}
	return map[string]any{"name": op.Name, "summary": op.Summary, "params": params}
}

func printOperation(cmd *cobra.Command, ctx *commandContext, op actions.Operation) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, operationJSON(op))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", op.Name, op.Summary)
	if len(op.Params) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(op.Params))
	for _, p := range op.Params {
		def := p.Default
		if def == "" {
			def = "-"
		}
		rows = append(rows, []string{p.Name, p.Type, yesNo(p.Required), def, p.Description})
	}
	fmt.Fprintln(out)
	printTable(cmd, []string{"Param", "Type", "Required", "Default", "Description"}, rows, nil)
	return nil
}

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "List templates or save a project as one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTemplates(cmd, ctx)
		},
	}
	templatesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and user templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTemplates(cmd, ctx)
		},
	})
	templatesCmd.AddCommand(&cobra.Command{
		Use:   "save <project-id> <template-name>",
		Short: "Save a stored project as a user template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				if _, err := m.LoadProject(cmd.Context(), args[0]); err != nil {
					return err
				}
				path, err := m.SaveTemplate(args[1])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"name": args[1], "path": path})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved template %s to %s\n", args[1], path)
				return nil
			})
		},
	})
	return templatesCmd
}

func listTemplates(cmd *cobra.Command, ctx *commandContext) error {
	return ctx.withEditor(cmd, func(m *editor.Manager) error {
		infos, err := m.ListTemplates()
		if err != nil {
			return err
		}
		if ctx.jsonOutput() {
			return writeJSON(cmd, infos)
		}
		rows := make([][]string, 0, len(infos))
		for _, info := range infos {
			rows = append(rows, []string{
				info.Name,
				info.Title,
				info.Source,
				info.Resolution.String(),
				strconv.Itoa(info.FPS),
				strconv.Itoa(info.ClipCount),
			})
		}
		printTable(cmd, []string{"Name", "Title", "Source", "Resolution", "FPS", "Clips"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight})
		return nil
	})
}
