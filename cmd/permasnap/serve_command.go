package main

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"permasnap/internal/archive"
	"permasnap/internal/logging"
	"permasnap/internal/preflight"
	"permasnap/internal/ratelimit"
	"permasnap/internal/server"
	"permasnap/internal/staging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the archive HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			logger, err := ctx.logger(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			runCtx := cmd.Context()
			for _, result := range preflight.Failed(preflight.RunAll(runCtx, cfg)) {
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
					logging.String(logging.FieldImpact, "archive requests may fail"),
				)
			}
			if cleaned := staging.CleanStale(runCtx, cfg.Paths.ScratchDir, cfg.StaleAfter(), logger); len(cleaned.Removed) > 0 {
				logger.Info("removed stale scratch directories", logging.Int("count", len(cleaned.Removed)))
			}

			limiter, err := ratelimit.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			if closer, ok := limiter.(io.Closer); ok {
				defer closer.Close()
			}

			archiver, err := archive.NewFromConfig(cfg, logger, ctx.archiveDeps)
			if err != nil {
				return err
			}
			defer archiver.Close()

			gin.SetMode(gin.ReleaseMode)
			srv := server.New(cfg, archiver,
				server.WithLogger(logger),
				server.WithLimiter(limiter),
			)
			return srv.Run(runCtx)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override the configured listen address")
	return cmd
}
