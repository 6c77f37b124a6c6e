package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"permasnap/internal/archive"
	"permasnap/internal/publisher"
)

// tokenEnv supplies the identity token when no flag is given.
const tokenEnv = "PERMASNAP_ID_TOKEN"

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	var (
		token     string
		tokenFile string
		address   string
	)

	cmd := &cobra.Command{
		Use:   "archive <url>",
		Short: "Capture a page and publish it to permanent storage",
		Long: `Capture a page with the configured renderer, publish the HTML and the
screenshot, and publish a manifest linking both. The manifest identifier is
printed on success.

The identity token is read from --token, --token-file, or the
PERMASNAP_ID_TOKEN environment variable, in that order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			idToken, err := resolveToken(token, tokenFile)
			if err != nil {
				return err
			}

			logger, err := ctx.logger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			archiver, err := archive.NewFromConfig(cfg, logger, ctx.archiveDeps)
			if err != nil {
				return err
			}
			defer archiver.Close()

			started := time.Now()
			result, err := archiver.Archive(cmd.Context(), archive.Request{
				URL:        args[0],
				Credential: publisher.Credential{IDToken: idToken},
				Address:    strings.TrimSpace(address),
			})
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Archived %s\n", result.URL)
			fmt.Fprintf(out, "  Title:      %s\n", result.Title)
			fmt.Fprintf(out, "  Manifest:   %s\n", result.ContentID)
			fmt.Fprintf(out, "  Page:       %s\n", result.PageID)
			fmt.Fprintf(out, "  Screenshot: %s\n", result.ScreenshotID)
			if result.WebpageURL != "" {
				fmt.Fprintf(out, "  View:       %s\n", result.WebpageURL)
			}
			fmt.Fprintf(out, "  Captured:   %s (%s)\n",
				time.Unix(result.Timestamp, 0).Format(time.RFC3339),
				time.Since(started).Round(time.Second))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Identity token forwarded to the upload gateway")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "Read the identity token from a file")
	cmd.Flags().StringVar(&address, "address", "", "Archiver address recorded in the manifest tags")
	return cmd
}

func resolveToken(flagValue, path string) (string, error) {
	if token := strings.TrimSpace(flagValue); token != "" {
		return token, nil
	}
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read token file: %w", err)
		}
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("token file %s is empty", path)
	}
	if token := strings.TrimSpace(os.Getenv(tokenEnv)); token != "" {
		return token, nil
	}
	return "", errors.New("identity token required (use --token, --token-file, or " + tokenEnv + ")")
}
