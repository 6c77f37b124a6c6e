package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"permasnap/internal/deps"
	"permasnap/internal/preflight"
)

type statusCheckJSON struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check dependencies and external services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			depStatuses := preflight.CheckSystemDeps(cfg)
			checks := preflight.RunAll(cmd.Context(), cfg)

			if ctx.JSONMode() {
				items := make([]statusCheckJSON, 0, len(depStatuses)+len(checks))
				for _, dep := range depStatuses {
					items = append(items, statusCheckJSON{
						Name:     dep.Name,
						Passed:   dep.Available,
						Optional: dep.Optional,
						Detail:   depDetail(dep),
					})
				}
				for _, check := range checks {
					items = append(items, statusCheckJSON{Name: check.Name, Passed: check.Passed, Detail: check.Detail})
				}
				return writeJSON(cmd, map[string]any{
					"config_path":  ctx.configPath,
					"remote":       cfg.RemoteEnabled(),
					"checks":       items,
					"missing_deps": len(deps.MissingRequired(depStatuses)),
				})
			}

			configPath := ctx.configPath
			if !ctx.configExists {
				configPath += " (not found, using defaults)"
			}
			board := newStatusBoard(cmd.OutOrStdout())

			board.section("Configuration")
			board.row("Config", stateInfo, configPath)
			board.row("Capture mode", stateInfo, captureMode(cfg.RemoteEnabled()))
			board.row("Digest", stateInfo, cfg.Archive.HashAlgorithm)

			board.section("Dependencies")
			for _, dep := range depStatuses {
				state := stateOK
				switch {
				case dep.Available:
				case dep.Optional:
					state = stateWarn
				default:
					state = stateFail
				}
				board.row(dep.Name, state, depDetail(dep))
			}

			board.section("Services")
			for _, check := range checks {
				state := stateOK
				if !check.Passed {
					state = stateFail
				}
				board.row(check.Name, state, check.Detail)
			}
			return board.err
		},
	}
}

type checkState int

const (
	stateInfo checkState = iota
	stateOK
	stateWarn
	stateFail
)

var stateStyles = map[checkState]struct{ label, color string }{
	stateInfo: {"INFO", "\x1b[34m"},
	stateOK:   {"OK", "\x1b[32m"},
	stateWarn: {"WARN", "\x1b[33m"},
	stateFail: {"FAIL", "\x1b[31m"},
}

const ansiReset = "\x1b[0m"

// statusBoard prints aligned status rows grouped under section headings.
// Colour is only used when writing to a terminal.
type statusBoard struct {
	w        io.Writer
	color    bool
	sections int
	err      error
}

func newStatusBoard(w io.Writer) *statusBoard {
	color := false
	if file, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	}
	return &statusBoard{w: w, color: color}
}

func (b *statusBoard) section(title string) {
	if b.sections > 0 {
		b.printf("\n")
	}
	b.sections++
	b.printf("%s\n", title)
}

func (b *statusBoard) row(label string, state checkState, detail string) {
	style := stateStyles[state]
	badge := fmt.Sprintf("%-6s", "["+style.label+"]")
	if b.color {
		badge = style.color + badge + ansiReset
	}
	line := fmt.Sprintf("  %-18s %s", label, badge)
	if detail != "" {
		line += " " + detail
	}
	b.printf("%s\n", line)
}

func (b *statusBoard) printf(format string, args ...any) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}

func depDetail(dep deps.Status) string {
	if dep.Available {
		return dep.Path
	}
	return dep.Detail
}

func captureMode(remote bool) string {
	if remote {
		return "remote browser"
	}
	return "local browser"
}
