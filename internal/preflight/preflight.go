package preflight

import (
	"context"
	"strings"

	"permasnap/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir),
		CheckFreeSpace("Scratch free space", cfg.Paths.ScratchDir, MinFreeBytes),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckEndpoint(ctx, "Upload gateway", cfg.Publisher.UploadURL),
	}
	if strings.TrimSpace(cfg.Publisher.APIID) == "" {
		results = append(results, Result{Name: "Upload API id", Detail: "not configured (set publisher.api_id or OTHENT_API_ID)"})
	}
	if cfg.RemoteEnabled() {
		results = append(results, CheckEndpoint(ctx, "Remote browser", cfg.RemoteBrowser.Endpoint))
	}
	if addr := strings.TrimSpace(cfg.Server.RedisAddr); addr != "" {
		results = append(results, CheckRedis(ctx, addr, cfg.Server.RedisPassword, cfg.Server.RedisDB))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
