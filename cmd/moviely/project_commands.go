package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"moviely/internal/editor"
	"moviely/internal/project"
	"moviely/internal/services"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Create, inspect and delete stored projects",
	}
	projectCmd.AddCommand(newProjectNewCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectDeleteCommand(ctx))
	projectCmd.AddCommand(newProjectPlanCommand(ctx))
	return projectCmd
}

func newProjectNewCommand(ctx *commandContext) *cobra.Command {
	var (
		name       string
		resolution string
		fps        int
		background string
		template   string
	)

	cmd := &cobra.Command{
		Use:   "new <id>",
		Short: "Create a stored project from settings or a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if strings.TrimSpace(name) == "" {
				name = id
			}
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				var state project.State
				var err error
				if strings.TrimSpace(template) != "" {
					state, err = m.FromTemplate(template, name)
				} else {
					state, err = settingsState(name, resolution, fps, background)
				}
				if err != nil {
					return err
				}
				saved, err := m.CreateStored(cmd.Context(), state, id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"id": saved, "project": editor.Describe(state)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s, %s @ %dfps, %d clips)\n",
					saved, state.Name, state.Resolution, state.FPS, state.ClipCount())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (defaults to the id)")
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "1920x1080", "Output resolution as WIDTHxHEIGHT")
	cmd.Flags().IntVar(&fps, "fps", project.DefaultFPS, "Frames per second")
	cmd.Flags().StringVar(&background, "background", "0,0,0", "Background colour as R,G,B")
	cmd.Flags().StringVarP(&template, "template", "t", "", "Seed the project from a template")
	return cmd
}

func settingsState(name, resolution string, fps int, background string) (project.State, error) {
	res, err := parseResolution(resolution)
	if err != nil {
		return project.State{}, err
	}
	bg, err := parseColor(background)
	if err != nil {
		return project.State{}, err
	}
	return project.New(project.Settings{Name: name, Resolution: res, FPS: fps, Background: bg})
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				state, err := m.LoadStored(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if raw {
					doc, err := project.Marshal(state)
					if err != nil {
						return err
					}
					var pretty any
					if err := json.Unmarshal(doc, &pretty); err != nil {
						return err
					}
					return writeJSON(cmd, pretty)
				}
				info := editor.Describe(state)
				if ctx.jsonOutput() {
					return writeJSON(cmd, info)
				}
				printProjectInfo(cmd, args[0], info)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the persisted project document")
	return cmd
}

func printProjectInfo(cmd *cobra.Command, id string, info editor.Info) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project:    %s (%s)\n", info.Name, id)
	fmt.Fprintf(out, "Resolution: %dx%d @ %dfps\n", info.Resolution[0], info.Resolution[1], info.FPS)
	fmt.Fprintf(out, "Background: %d,%d,%d\n", info.Background[0], info.Background[1], info.Background[2])
	fmt.Fprintf(out, "Duration:   %s\n", formatSeconds(info.TotalDuration))
	fmt.Fprintf(out, "Clips:      %d\n", info.ClipCount)
	if info.ClipCount == 0 {
		return
	}

	var rows [][]string
	for _, layer := range info.Layers {
		for _, clip := range layer.Clips {
			rows = append(rows, []string{
				strconv.Itoa(layer.Layer),
				clip.ID,
				clip.Type,
				formatSeconds(clip.Start),
				formatSeconds(clip.Duration),
				formatVolume(clip.Volume),
				joinOrDash(clip.Effects),
				clip.Source,
			})
		}
	}
	fmt.Fprintln(out)
	printTable(cmd,
		[]string{"Layer", "ID", "Type", "Start", "Duration", "Volume", "Effects", "Source"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	)
}

type projectSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Clips    int     `json:"clips"`
	Duration float64 `json:"duration"`
	Error    string  `json:"error,omitempty"`
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				ids, err := m.ListStored(cmd.Context())
				if err != nil {
					return err
				}
				summaries := make([]projectSummary, 0, len(ids))
				for _, id := range ids {
					summary := projectSummary{ID: id}
					state, err := m.LoadStored(cmd.Context(), id)
					if err != nil {
						summary.Error = err.Error()
					} else {
						summary.Name = state.Name
						summary.Clips = state.ClipCount()
						summary.Duration = state.TotalDuration()
					}
					summaries = append(summaries, summary)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, summaries)
				}
				if len(summaries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No projects")
					return nil
				}
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					name := s.Name
					if s.Error != "" {
						name = "unreadable: " + truncate(s.Error, 48)
					}
					rows = append(rows, []string{s.ID, name, strconv.Itoa(s.Clips), formatSeconds(s.Duration)})
				}
				printTable(cmd, []string{"ID", "Name", "Clips", "Duration"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight})
				return nil
			})
		},
	}
}

func newProjectDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				deleted, err := m.DeleteStored(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return services.Wrap(services.ErrNotFound, "cli", "delete", fmt.Sprintf("project %q not found", args[0]), nil)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"id": args[0], "deleted": true})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
				return nil
			})
		},
	}
}

func newProjectPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <id>",
		Short: "Show the composition plan of a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				plan, err := m.PlanStored(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				info := editor.DescribePlan(plan)
				if ctx.jsonOutput() {
					return writeJSON(cmd, info)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Plan:       %s\n", info.Name)
				fmt.Fprintf(out, "Duration:   %s\n", formatSeconds(info.Duration))
				fmt.Fprintf(out, "Renderable: %s\n", yesNo(info.Renderable))
				if len(info.Entries) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(info.Entries))
				for _, entry := range info.Entries {
					rows = append(rows, []string{
						strconv.Itoa(entry.Z),
						strconv.Itoa(entry.Layer),
						entry.ClipID,
						entry.Type,
						formatSeconds(entry.Start),
						formatSeconds(entry.End),
						joinOrDash(append(append([]string{}, entry.VideoFilters...), entry.AudioFilters...)),
					})
				}
				fmt.Fprintln(out)
				printTable(cmd, []string{"Z", "Layer", "Clip", "Type", "Start", "End", "Filters"}, rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft})
				return nil
			})
		},
	}
}
