package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// RenderRequest describes one page render.
type RenderRequest struct {
	URL         string
	OutputDir   string
	UserAgent   string
	BrowserArgs []string
	// BrowserEndpoint, when set, points the renderer at a remote browser.
	BrowserEndpoint string
}

// Renderer renders a URL into a directory containing the page, a screenshot,
// and a metadata file.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// RendererOption configures a CommandRenderer.
type RendererOption func(*CommandRenderer)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) RendererOption {
	return func(r *CommandRenderer) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// CommandRenderer runs an external rendering program.
type CommandRenderer struct {
	binary string
	exec   Executor
}

// NewCommandRenderer constructs a renderer for the given executable.
func NewCommandRenderer(binary string, opts ...RendererOption) (*CommandRenderer, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("renderer binary required")
	}
	renderer := &CommandRenderer{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(renderer)
	}
	return renderer, nil
}

// Render invokes the renderer subprocess and waits for it to exit.
func (r *CommandRenderer) Render(ctx context.Context, req RenderRequest) error {
	if strings.TrimSpace(req.OutputDir) == "" {
		return errors.New("output directory required")
	}
	var tail outputTail
	if err := r.exec.Run(ctx, r.binary, renderArgs(req), tail.add); err != nil {
		if last := tail.String(); last != "" {
			return fmt.Errorf("render %s: %w (output: %s)", req.URL, err, last)
		}
		return fmt.Errorf("render %s: %w", req.URL, err)
	}
	return nil
}

func renderArgs(req RenderRequest) []string {
	args := []string{"--url", req.URL, "--output", req.OutputDir}
	if ua := strings.TrimSpace(req.UserAgent); ua != "" {
		args = append(args, "--user-agent", ua)
	}
	for _, arg := range req.BrowserArgs {
		args = append(args, "--browser-arg", arg)
	}
	if endpoint := strings.TrimSpace(req.BrowserEndpoint); endpoint != "" {
		args = append(args, "--browser-endpoint", endpoint)
	}
	return args
}

// outputTail keeps the last few lines of subprocess output for error reports.
type outputTail struct {
	mu    sync.Mutex
	lines []string
}

const outputTailLines = 5

func (t *outputTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > outputTailLines {
		t.lines = t.lines[len(t.lines)-outputTailLines:]
	}
}

func (t *outputTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, " | ")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("wait command: %w", ctxErr)
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
