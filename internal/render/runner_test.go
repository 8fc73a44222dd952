package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/framecraft/framecraft/internal/scene"
)

func TestRunResult_IsSuccess(t *testing.T) {
	tests := []struct {
		exitCode int
		want     bool
	}{
		{0, true},
		{1, false},
		{-1, false},
		{127, false},
	}
	for _, tt := range tests {
		r := RunResult{ExitCode: tt.exitCode}
		if got := r.IsSuccess(); got != tt.want {
			t.Errorf("RunResult{ExitCode: %d}.IsSuccess() = %v, want %v", tt.exitCode, got, tt.want)
		}
	}
}

func TestLimitedWriter_KeepsOnlyTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 10}

	lw.Write([]byte("hello"))
	if buf.String() != "hello" {
		t.Errorf("after short write got %q, want %q", buf.String(), "hello")
	}

	lw.Write([]byte(" world of test data"))
	if got, want := buf.String(), " test data"; got != want {
		t.Errorf("after overflow got %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "...world"},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestNewRunner_NotConfigured(t *testing.T) {
	_, err := NewRunner(Config{ArtifactsBase: t.TempDir()})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("NewRunner() error = %v, want ErrNotConfigured", err)
	}
}

func TestNewRunner_CommandNotFound(t *testing.T) {
	_, err := NewRunner(Config{Command: "/nonexistent/render999", ArtifactsBase: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for missing render command")
	}
}

func TestWriteProps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job", "props.json")
	props := Props{
		FPS: 30, Width: 1920, Height: 1080,
		Scenes: []SceneProps{{
			ID: "s1", Name: "Intro", DurationInFrames: 90, BackgroundColor: "#111",
			Elements: []scene.Element{{
				ID: "t", DurationInFrames: 90,
				Config: &scene.AnimatedTextConfig{Text: "Hi"},
			}},
		}},
	}

	if err := WriteProps(path, props); err != nil {
		t.Fatalf("WriteProps() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read props: %v", err)
	}
	for _, want := range []string{`"fps": 30`, `"durationInFrames": 90`, `"type": "AnimatedText"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("props missing %s:\n%s", want, data)
		}
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".props-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestProps_TotalDuration(t *testing.T) {
	p := Props{Scenes: []SceneProps{{DurationInFrames: 90}, {DurationInFrames: 60}}}
	if got := p.TotalDurationInFrames(); got != 150 {
		t.Errorf("TotalDurationInFrames() = %d, want 150", got)
	}
}

func TestValidateMP4(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.mp4")
	os.WriteFile(good, []byte("\x00\x00\x00\x18ftypisom0000"), 0644)
	if _, err := validateMP4(good); err != nil {
		t.Errorf("validateMP4(good) error = %v", err)
	}

	empty := filepath.Join(dir, "empty.mp4")
	os.WriteFile(empty, nil, 0644)
	if _, err := validateMP4(empty); err == nil {
		t.Error("validateMP4(empty) should fail")
	}

	text := filepath.Join(dir, "text.mp4")
	os.WriteFile(text, []byte("not a video at all"), 0644)
	if _, err := validateMP4(text); err == nil {
		t.Error("validateMP4(text) should fail")
	}

	if _, err := validateMP4(filepath.Join(dir, "missing.mp4")); err == nil {
		t.Error("validateMP4(missing) should fail")
	}
}

const fakeRenderScript = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "fake-render 1.2.3"
  exit 0
fi
if [ "$1" = "fail" ]; then
  echo "boom" >&2
  exit 3
fi
printf '\000\000\000\030ftypisom' > "$2"
`

func writeScript(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "render.sh")
	if err := os.WriteFile(path, []byte(fakeRenderScript), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestSubprocessRunner_RenderAndProbe(t *testing.T) {
	script := writeScript(t)
	artifacts := t.TempDir()

	r, err := NewRunner(Config{
		Command:       script,
		ArtifactsBase: artifacts,
		ProbeTimeout:  10 * time.Second,
		RenderTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	caps, err := r.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !caps.Available || caps.Version != "fake-render 1.2.3" {
		t.Errorf("Probe() = %+v", caps)
	}

	propsPath := filepath.Join(artifacts, "job", "props.json")
	if err := WriteProps(propsPath, Props{FPS: 30}); err != nil {
		t.Fatalf("WriteProps() error = %v", err)
	}
	outPath := filepath.Join(artifacts, "job", "out.mp4")

	res, err := r.Render(context.Background(), propsPath, outPath)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !res.IsSuccess() {
		t.Fatalf("Render() exit = %d, stderr = %q", res.ExitCode, res.StderrTail)
	}
	if _, err := r.ValidateOutput(outPath); err != nil {
		t.Errorf("ValidateOutput() error = %v", err)
	}
}

func TestSubprocessRunner_RenderFailureKeepsStderr(t *testing.T) {
	script := writeScript(t)
	artifacts := t.TempDir()

	r, err := NewRunner(Config{
		Command:       script + " fail",
		ArtifactsBase: artifacts,
		RenderTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	propsPath := filepath.Join(artifacts, "props.json")
	WriteProps(propsPath, Props{})

	res, err := r.Render(context.Background(), propsPath, filepath.Join(artifacts, "out.mp4"))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.StderrTail, "boom") {
		t.Errorf("stderr tail = %q, want boom", res.StderrTail)
	}
}

func TestSubprocessRunner_RenderMissingProps(t *testing.T) {
	script := writeScript(t)
	r, err := NewRunner(Config{Command: script, ArtifactsBase: t.TempDir(), RenderTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if _, err := r.Render(context.Background(), "/nonexistent/props.json", "/tmp/out.mp4"); err == nil {
		t.Error("Render() should fail without a props file")
	}
}

type fakeProbeRunner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeProbeRunner) Probe(ctx context.Context) (*Capabilities, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &Capabilities{Executable: "render", Available: true, ProbedAt: time.Now()}, nil
}

func (f *fakeProbeRunner) Render(ctx context.Context, propsPath, outPath string) (RunResult, error) {
	return RunResult{}, nil
}

func (f *fakeProbeRunner) ValidateOutput(path string) (os.FileInfo, error) { return nil, nil }
func (f *fakeProbeRunner) ArtifactsDir() string                            { return "" }

func TestCachedProbe_CachesWithinTTL(t *testing.T) {
	fake := &fakeProbeRunner{}
	p := NewCachedProbe(fake, nil)

	for i := 0; i < 3; i++ {
		if _, err := p.Get(context.Background()); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	if got := fake.calls.Load(); got != 1 {
		t.Errorf("probe calls = %d, want 1", got)
	}

	p.Invalidate()
	if p.Peek() != nil {
		t.Error("Peek() after Invalidate should be nil")
	}
	p.Get(context.Background())
	if got := fake.calls.Load(); got != 2 {
		t.Errorf("probe calls after invalidate = %d, want 2", got)
	}
}

func TestCachedProbe_StaleOnFailure(t *testing.T) {
	fake := &fakeProbeRunner{}
	p := NewCachedProbe(fake, nil)

	first, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	fake.err = errors.New("probe exploded")
	got, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v, want stale result", err)
	}
	if got != first {
		t.Error("Refresh() should return the stale capabilities")
	}

	p.Invalidate()
	if _, err := p.Refresh(context.Background()); err == nil {
		t.Error("Refresh() with no cache should fail")
	}
}
