package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"permasnap/internal/history"
)

type historyEntryJSON struct {
	ID           int64  `json:"id"`
	RequestID    string `json:"request_id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	ContentID    string `json:"content_id"`
	PageID       string `json:"page_id"`
	ScreenshotID string `json:"screenshot_id"`
	Archiver     string `json:"archiver,omitempty"`
	CapturedAt   int64  `json:"captured_at"`
	CreatedAt    string `json:"created_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently published archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				items := make([]historyEntryJSON, 0, len(entries))
				for _, entry := range entries {
					items = append(items, historyEntryJSON{
						ID:           entry.ID,
						RequestID:    entry.RequestID,
						URL:          entry.SourceURL,
						Title:        entry.Title,
						ContentID:    entry.ContentID,
						PageID:       entry.PageID,
						ScreenshotID: entry.ScreenshotID,
						Archiver:     entry.Archiver,
						CapturedAt:   entry.CapturedAt,
						CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
					})
				}
				return writeJSON(cmd, map[string]any{"archives": items})
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No archives recorded in %s\n", store.Path())
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					entry.CapturedTime().Local().Format("2006-01-02 15:04"),
					truncate(entry.Title, 40),
					truncate(entry.SourceURL, 48),
					entry.ContentID,
				})
			}
			fmt.Fprint(out, renderTable([]column{
				{header: "ID", right: true},
				{header: "Captured"},
				{header: "Title", maxWidth: 40},
				{header: "URL", maxWidth: 48},
				{header: "Manifest"},
			}, rows))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of archives to show")
	return cmd
}
