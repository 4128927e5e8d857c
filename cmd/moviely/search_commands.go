package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moviely/internal/editor"
	"moviely/internal/mediasearch"
	"moviely/internal/services"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		provider  string
		mediaType string
		limit     int
		music     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stock video, images or music",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				var results []mediasearch.Result
				var err error
				if music {
					results, err = m.SearchMusic(cmd.Context(), query, limit)
				} else {
					results, err = m.Search(cmd.Context(), query, provider, mediaType, limit)
				}
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, results)
				}
				if len(results) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No results")
					return nil
				}
				printSearchResults(cmd, results)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", mediasearch.ProviderPexels, "Provider: pexels or pixabay")
	cmd.Flags().StringVarP(&mediaType, "type", "t", mediasearch.MediaVideo, "Media type: video or image")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum results (1-50, defaults to the configured limit)")
	cmd.Flags().BoolVar(&music, "music", false, "Search Jamendo music instead")
	return cmd
}

func printSearchResults(cmd *cobra.Command, results []mediasearch.Result) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		size := "-"
		if r.Width > 0 && r.Height > 0 {
			size = fmt.Sprintf("%dx%d", r.Width, r.Height)
		}
		duration := "-"
		if r.Duration > 0 {
			duration = formatSeconds(r.Duration)
		}
		rows = append(rows, []string{r.Provider, r.ID, r.MediaType, truncate(r.Title, 40), size, duration, r.URL})
	}
	printTable(cmd, []string{"Provider", "ID", "Type", "Title", "Size", "Duration", "URL"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft})
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var (
		provider  string
		id        string
		mediaType string
	)

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a search result into the download cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(id) == "" {
				return services.Wrap(services.ErrValidation, "cli", "download", "--id is required", nil)
			}
			result := mediasearch.Result{ID: id, URL: args[0], Provider: provider, MediaType: mediaType}
			return ctx.withEditor(cmd, func(m *editor.Manager) error {
				path, err := m.Download(cmd.Context(), result)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"path": path})
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", mediasearch.ProviderPexels, "Provider the result came from")
	cmd.Flags().StringVar(&id, "id", "", "Provider result id")
	cmd.Flags().StringVarP(&mediaType, "type", "t", mediasearch.MediaVideo, "Media type: video, image or audio")
	return cmd
}
