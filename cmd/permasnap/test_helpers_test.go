package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"permasnap/internal/archive"
	"permasnap/internal/config"
	"permasnap/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	renderer   *testsupport.FakeRenderer
	transport  *testsupport.StubTransport
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("BROWSERLESS_API_KEY", "")
	t.Setenv("OTHENT_API_ID", "")
	t.Setenv(tokenEnv, "")

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		renderer:   testsupport.NewFakeRenderer("Example Domain"),
		transport:  testsupport.NewStubTransport(),
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.archiveDeps = archive.Dependencies{
		Renderer:  env.renderer,
		Transport: env.transport,
		Sleeper:   func(_ time.Duration) {},
	}
	return runCLIWithContext(t, ctx, args, env.configPath)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithContext(t, newCommandContext(), args, configPath)
}

func runCLIWithContext(t *testing.T, ctx *commandContext, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWithContext(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nscratch_dir = %q\ndata_dir = %q\nlog_dir = %q\n\n[renderer]\nbinary = %q\n\n[publisher]\nupload_url = %q\napi_id = %q\n",
		cfg.Paths.ScratchDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Renderer.Binary,
		cfg.Publisher.UploadURL,
		cfg.Publisher.APIID,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
