package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"permasnap/internal/logging"
	"permasnap/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		filter logs.Filter
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the persistent archive log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := filter.Validate(); err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()

			// Filtering happens after the tail, so read generously when narrowing.
			limit := lines
			if !filter.Empty() && limit > 0 {
				limit *= 20
			}
			recent, offset, err := logs.Last(path, limit)
			if err != nil {
				return err
			}
			recent = filter.Apply(recent)
			if lines > 0 && len(recent) > lines {
				recent = recent[len(recent)-lines:]
			}
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, logs.DefaultPollInterval, func(line string) {
				if filter.Match(line) {
					fmt.Fprintln(out, line)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new log lines")
	cmd.Flags().StringVar(&filter.RequestID, "request", "", "Only show lines for one archive request id")
	cmd.Flags().StringVar(&filter.Level, "level", "", "Minimum level to show (debug, info, warn, error)")
	return cmd
}
