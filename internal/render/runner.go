package render

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/framecraft/framecraft/internal/logging"
)

const (
	maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics
)

// ErrNotConfigured is returned when no render command has been set.
var ErrNotConfigured = errors.New("render command not configured")

// Runner executes the render toolchain as a subprocess.
type Runner interface {
	// Probe resolves the render executable and asks it for a version.
	Probe(ctx context.Context) (*Capabilities, error)

	// Render runs `<command> <propsPath> <outPath>`.
	Render(ctx context.Context, propsPath, outPath string) (RunResult, error)

	// ValidateOutput checks that path holds a non-empty MP4 file.
	ValidateOutput(path string) (os.FileInfo, error)

	// ArtifactsDir returns the base directory for props and renders.
	ArtifactsDir() string
}

// Config holds the runner's configuration.
type Config struct {
	Command       string        // render command line, split on whitespace
	ArtifactsBase string        // base dir for outputs, e.g. ~/.framecraft/renders
	ProbeTimeout  time.Duration // timeout for the version probe
	RenderTimeout time.Duration // timeout for a full render
	Logger        *slog.Logger
	DebugPaths    bool // if true, log full file paths; otherwise sanitise
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig(dataDir string, logger *slog.Logger) Config {
	return Config{
		ArtifactsBase: filepath.Join(dataDir, "renders"),
		ProbeTimeout:  30 * time.Second,
		RenderTimeout: 30 * time.Minute,
		Logger:        logger,
	}
}

// SubprocessRunner is the production implementation of Runner.
type SubprocessRunner struct {
	cfg  Config
	path string   // resolved executable
	args []string // leading arguments from the command line
}

// NewRunner creates a SubprocessRunner, resolving the executable named by
// cfg.Command.
func NewRunner(cfg Config) (*SubprocessRunner, error) {
	fields := strings.Fields(cfg.Command)
	if len(fields) == 0 {
		return nil, ErrNotConfigured
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("cannot locate render command %q: %w", fields[0], err)
	}

	if err := os.MkdirAll(cfg.ArtifactsBase, 0755); err != nil {
		return nil, fmt.Errorf("cannot create artifacts dir: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg.Logger.Info("render runner initialised",
		"executable", path,
		"artifacts_dir", cfg.ArtifactsBase,
	)

	return &SubprocessRunner{cfg: cfg, path: path, args: fields[1:]}, nil
}

func (r *SubprocessRunner) ArtifactsDir() string {
	return r.cfg.ArtifactsBase
}

// Probe runs `<command> --version`. A command that resolves but rejects the
// flag is still reported as available.
func (r *SubprocessRunner) Probe(ctx context.Context) (*Capabilities, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout)
	defer cancel()

	caps := &Capabilities{Executable: r.path, Available: true, ProbedAt: time.Now()}

	args := append(append([]string{}, r.args...), "--version")
	out, err := exec.CommandContext(ctx, r.path, args...).Output()
	if err != nil {
		caps.Error = err.Error()
	} else {
		caps.Version = firstLine(out)
	}

	r.cfg.Logger.Info("render probe complete",
		"executable", r.safePath(r.path),
		"version", caps.Version,
	)
	return caps, nil
}

// Render runs the render command with the configured timeout.
func (r *SubprocessRunner) Render(ctx context.Context, propsPath, outPath string) (RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RenderTimeout)
	defer cancel()

	if _, err := os.Stat(propsPath); err != nil {
		return RunResult{}, fmt.Errorf("props file missing: %w", err)
	}

	result := r.exec(ctx, outPath, propsPath, outPath)
	if ctx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("render timed out after %s", r.cfg.RenderTimeout)
	}
	return result, nil
}

// ValidateOutput checks that the render produced an MP4: a non-empty file
// whose first box is "ftyp".
func (r *SubprocessRunner) ValidateOutput(path string) (os.FileInfo, error) {
	return validateMP4(path)
}

func validateMP4(path string) (os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open render output: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, errors.New("render output is empty")
	}

	header := make([]byte, 8)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("render output too short: %w", err)
	}
	if string(header[4:8]) != "ftyp" {
		return nil, errors.New("render output is not an MP4 file")
	}
	return info, nil
}

// exec is the core subprocess execution helper.
func (r *SubprocessRunner) exec(ctx context.Context, outPath string, args ...string) RunResult {
	start := time.Now()

	if outPath != "" {
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			r.cfg.Logger.Error("cannot create output dir", "error", err)
			return RunResult{ExitCode: -1, StderrTail: err.Error(), Duration: time.Since(start)}
		}
	}

	cmdArgs := append(append([]string{}, r.args...), args...)
	cmd := exec.CommandContext(ctx, r.path, cmdArgs...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderrBuf, limit: maxStderrBytes}
	cmd.Stdout = io.Discard

	r.cfg.Logger.Info("executing render command",
		"executable", r.safePath(r.path),
		"output", r.safePath(outPath),
	)

	err := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
			stderrBuf.WriteString(err.Error())
		}
	}

	stderrTail := stderrBuf.String()

	if exitCode != 0 {
		r.cfg.Logger.Warn("render command failed",
			"exit_code", exitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(stderrTail, 512),
		)
	} else {
		r.cfg.Logger.Info("render command succeeded",
			"duration_ms", elapsed.Milliseconds(),
			"output", r.safePath(outPath),
		)
	}

	return RunResult{
		ExitCode:   exitCode,
		OutputPath: outPath,
		StderrTail: stderrTail,
		Duration:   elapsed,
	}
}

func (r *SubprocessRunner) safePath(path string) string {
	if r.cfg.DebugPaths {
		return path
	}
	if short := logging.SanitizePath(path); short != path {
		return short
	}
	return filepath.Base(path)
}

func firstLine(b []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(b))
	if sc.Scan() {
		return strings.TrimSpace(sc.Text())
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		tail := append([]byte(nil), b[len(b)-lw.limit:]...)
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}
