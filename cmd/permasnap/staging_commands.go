package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"permasnap/internal/logging"
	"permasnap/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage scratch directories",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scratch directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			scratchDir := cfg.Paths.ScratchDir
			dirs, err := staging.ListDirectories(scratchDir)
			if err != nil {
				return fmt.Errorf("list scratch directories: %w", err)
			}
			var totalSize int64
			for _, dir := range dirs {
				totalSize += dir.Size
			}

			if ctx.JSONMode() {
				if dirs == nil {
					dirs = []staging.DirInfo{}
				}
				return writeJSON(cmd, map[string]any{
					"scratch_dir":      scratchDir,
					"directories":      dirs,
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No scratch directories found")
				return nil
			}

			fmt.Fprintf(out, "Scratch directory: %s\n\n", scratchDir)
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				age := time.Since(dir.ModTime).Truncate(time.Minute)
				rows = append(rows, []string{dir.Name, formatDuration(age), formatBytes(dir.Size)})
			}
			fmt.Fprint(out, renderTable([]column{
				{header: "Directory"},
				{header: "Age", right: true},
				{header: "Size", right: true},
			}, rows))
			fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), formatBytes(totalSize))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var cleanAll bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove abandoned scratch directories",
		Long: `Remove scratch directories left behind by interrupted captures.

By default only directories older than staging.stale_after_hours are removed,
so captures still in progress are left alone. Use --all to remove every
scratch directory regardless of age.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			maxAge := cfg.StaleAfter()
			if cleanAll {
				maxAge = -time.Minute
			}

			result := staging.CleanStale(cmd.Context(), cfg.Paths.ScratchDir, maxAge, logging.NewNop())
			if ctx.JSONMode() {
				errs := make([]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
				}
				return writeJSON(cmd, map[string]any{
					"removed": len(result.Removed),
					"errors":  errs,
				})
			}

			out := cmd.OutOrStdout()
			switch {
			case len(result.Removed) == 0 && len(result.Errors) == 0:
				fmt.Fprintln(out, "No scratch directories to clean")
			case len(result.Errors) > 0:
				fmt.Fprintf(out, "Removed %d scratch directories, %d errors\n", len(result.Removed), len(result.Errors))
				for _, e := range result.Errors {
					fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
				}
			default:
				fmt.Fprintf(out, "Removed %d scratch directories\n", len(result.Removed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cleanAll, "all", false, "Remove all scratch directories (including active ones)")
	return cmd
}
