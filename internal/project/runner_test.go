package project

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/framecraft/framecraft/internal/render"
)

type fakeRenderer struct {
	dir         string
	probeCalls  atomic.Int32
	renderCalls atomic.Int32
	exitCode    int
	stderr      string
	unavailable bool
	gotProps    string
}

func (f *fakeRenderer) Probe(ctx context.Context) (*render.Capabilities, error) {
	f.probeCalls.Add(1)
	return &render.Capabilities{Executable: "fake", Available: !f.unavailable, ProbedAt: time.Now()}, nil
}

func (f *fakeRenderer) Render(ctx context.Context, propsPath, outPath string) (render.RunResult, error) {
	f.renderCalls.Add(1)
	f.gotProps = propsPath
	if f.exitCode != 0 {
		return render.RunResult{ExitCode: f.exitCode, StderrTail: f.stderr}, nil
	}
	mp4 := []byte{0, 0, 0, 24, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}
	if err := os.WriteFile(outPath, mp4, 0644); err != nil {
		return render.RunResult{}, err
	}
	return render.RunResult{ExitCode: 0, OutputPath: outPath, Duration: time.Millisecond}, nil
}

func (f *fakeRenderer) ValidateOutput(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (f *fakeRenderer) ArtifactsDir() string { return f.dir }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func queueRender(t *testing.T, svc *Service) *Job {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.AddScene(ctx, SceneInput{Name: "Intro", DurationInFrames: 90, Elements: rawElements(t, textElement)}); err != nil {
		t.Fatalf("AddScene() error = %v", err)
	}
	job, err := svc.EnqueueRender(ctx)
	if err != nil {
		t.Fatalf("EnqueueRender() error = %v", err)
	}
	return job
}

func TestRunner_RenderJobCompletes(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	job := queueRender(t, svc)

	fake := &fakeRenderer{dir: t.TempDir()}
	runner := NewRunner(repo, fake, render.NewCachedProbe(fake, nil), testLogger())
	runner.processNextJob(ctx)

	got, err := repo.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != JobStatusCompleted || got.Progress != 100 {
		t.Fatalf("job = %+v, want completed at 100", got)
	}
	wantOut := filepath.Join(fake.dir, job.ID, outputFilename)
	if got.OutputPath != wantOut {
		t.Errorf("OutputPath = %s, want %s", got.OutputPath, wantOut)
	}

	data, err := os.ReadFile(fake.gotProps)
	if err != nil {
		t.Fatalf("props not written: %v", err)
	}
	var props render.Props
	if err := json.Unmarshal(data, &props); err != nil {
		t.Fatalf("props not JSON: %v", err)
	}
	if props.FPS != 30 || len(props.Scenes) != 1 || props.Scenes[0].Name != "Intro" {
		t.Errorf("props = %+v", props)
	}
	if props.TotalDurationInFrames() != 90 {
		t.Errorf("total frames = %d, want 90", props.TotalDurationInFrames())
	}

	runner.processNextJob(ctx)
	if fake.renderCalls.Load() != 1 {
		t.Errorf("render calls = %d, completed jobs must not rerun", fake.renderCalls.Load())
	}
}

func TestRunner_RenderFailures(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeRenderer
		wantErr string
	}{
		{name: "nonzero exit", fake: &fakeRenderer{exitCode: 3, stderr: "boom"}, wantErr: "render exited 3: boom"},
		{name: "toolchain unavailable", fake: &fakeRenderer{unavailable: true}, wantErr: "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)
			ctx := context.Background()
			job := queueRender(t, svc)

			tt.fake.dir = t.TempDir()
			runner := NewRunner(repo, tt.fake, render.NewCachedProbe(tt.fake, nil), testLogger())
			runner.processNextJob(ctx)

			got, _ := repo.GetJob(ctx, job.ID)
			if got.Status != JobStatusFailed {
				t.Fatalf("Status = %s, want failed", got.Status)
			}
			if !strings.Contains(got.Error, tt.wantErr) {
				t.Errorf("Error = %q, want it to contain %q", got.Error, tt.wantErr)
			}
		})
	}
}

func TestRunner_NotConfigured(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	job := queueRender(t, svc)

	runner := NewRunner(repo, nil, nil, nil)
	runner.processNextJob(ctx)

	got, _ := repo.GetJob(ctx, job.ID)
	if got.Status != JobStatusFailed || got.Error != render.ErrNotConfigured.Error() {
		t.Errorf("job = %s %q", got.Status, got.Error)
	}
}

func TestRunner_EmptyProjectFails(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	job := queueRender(t, svc)

	scenes, _ := svc.ListScenes(ctx)
	if err := svc.RemoveScene(ctx, scenes[0].ID); err != nil {
		t.Fatalf("RemoveScene() error = %v", err)
	}

	fake := &fakeRenderer{dir: t.TempDir()}
	NewRunner(repo, fake, render.NewCachedProbe(fake, nil), testLogger()).processNextJob(ctx)

	got, _ := repo.GetJob(ctx, job.ID)
	if got.Status != JobStatusFailed || got.Error != ErrEmptyProject.Error() {
		t.Errorf("job = %s %q", got.Status, got.Error)
	}
	if fake.renderCalls.Load() != 0 {
		t.Error("renderer called for an empty project")
	}
}

func TestRunner_PauseResume(t *testing.T) {
	_, repo := setupTestDB(t)
	runner := NewRunner(repo, nil, nil, nil)
	runner.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for !runner.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !runner.IsRunning() {
		t.Fatal("runner did not start")
	}

	runner.Pause()
	if !runner.IsPaused() {
		t.Error("IsPaused() = false after Pause")
	}
	runner.Resume()
	if runner.IsPaused() {
		t.Error("IsPaused() = true after Resume")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	if runner.IsRunning() {
		t.Error("IsRunning() = true after stop")
	}
}

func TestRunner_GetActiveJobCount(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	job := queueRender(t, svc)

	runner := NewRunner(repo, nil, nil, nil)
	if n := runner.GetActiveJobCount(ctx); n != 0 {
		t.Errorf("active = %d, want 0", n)
	}
	repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, "")
	if n := runner.GetActiveJobCount(ctx); n != 1 {
		t.Errorf("active = %d, want 1", n)
	}
}

func TestRepository_ListPendingJobsOldestFirst(t *testing.T) {
	_, repo := setupTestDB(t)
	svc := NewService(repo, nil, 0)
	ctx := context.Background()

	first := queueRender(t, svc)
	second, err := svc.EnqueueRender(ctx)
	if err != nil {
		t.Fatalf("EnqueueRender() error = %v", err)
	}

	jobs, err := repo.ListPendingJobs(ctx)
	if err != nil {
		t.Fatalf("ListPendingJobs() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != first.ID || jobs[1].ID != second.ID {
		t.Errorf("pending order wrong: %+v", jobs)
	}

	if err := repo.UpdateJobStatus(ctx, first.ID, JobStatusCompleted, ""); err != nil {
		t.Fatal(err)
	}
	jobs, _ = repo.ListPendingJobs(ctx)
	if len(jobs) != 1 || jobs[0].ID != second.ID {
		t.Errorf("pending after completion = %+v", jobs)
	}

	if got, err := repo.GetJob(ctx, "missing"); err != nil || got != nil {
		t.Errorf("GetJob(missing) = %+v, %v; want nil, nil", got, err)
	}
}
