package project

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/framecraft/framecraft/internal/logging"
	"github.com/framecraft/framecraft/internal/render"
)

const (
	propsFilename  = "props.json"
	outputFilename = "render.mp4"
)

// Runner polls for pending render jobs and executes them one at a time.
type Runner struct {
	repo         Repository
	renderer     render.Runner
	probe        *render.CachedProbe
	logger       *slog.Logger
	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

// NewRunner creates a job runner. A nil renderer is allowed: jobs then fail
// with render.ErrNotConfigured.
func NewRunner(repo Repository, renderer render.Runner, probe *render.CachedProbe, logger *slog.Logger) *Runner {
	return &Runner{
		repo:         repo,
		renderer:     renderer,
		probe:        probe,
		logger:       logging.WithComponent(logger, "render_runner"),
		pollInterval: 5 * time.Second,
	}
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("job runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			if !r.paused.Load() {
				r.processNextJob(ctx)
			}
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("job runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("job runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// RunOnce processes the oldest pending job, if any, and returns when it is
// done. It ignores the paused flag.
func (r *Runner) RunOnce(ctx context.Context) {
	r.processNextJob(ctx)
}

func (r *Runner) processNextJob(ctx context.Context) {
	jobs, err := r.repo.ListPendingJobs(ctx)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	job := jobs[0]
	r.logger.Info("processing job", "job_id", job.ID, "type", job.Type)

	switch job.Type {
	case JobTypeRender:
		r.processRenderJob(ctx, job)
	default:
		r.logger.Warn("unknown job type", "type", job.Type)
		r.fail(ctx, job, "unknown job type")
	}
}

func (r *Runner) processRenderJob(ctx context.Context, job *Job) {
	log := logging.WithJobID(r.logger, job.ID)

	if r.renderer == nil || r.probe == nil {
		r.fail(ctx, job, render.ErrNotConfigured.Error())
		return
	}

	st, err := r.repo.LoadState(ctx, job.ProjectID)
	if err != nil || st == nil {
		r.fail(ctx, job, "project not found")
		return
	}
	if len(st.Scenes) == 0 {
		r.fail(ctx, job, ErrEmptyProject.Error())
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusRunning, "")

	caps, err := r.probe.Get(ctx)
	if err != nil {
		r.fail(ctx, job, fmt.Sprintf("render probe failed: %v", err))
		return
	}
	if !caps.Available {
		r.fail(ctx, job, "render toolchain unavailable")
		return
	}

	dir := filepath.Join(r.renderer.ArtifactsDir(), job.ID)
	propsPath := filepath.Join(dir, propsFilename)
	outPath := filepath.Join(dir, outputFilename)

	if err := render.WriteProps(propsPath, renderProps(st)); err != nil {
		r.fail(ctx, job, err.Error())
		return
	}
	r.repo.UpdateJobProgress(ctx, job.ID, 10)

	log.Info("rendering project", "project_id", st.Project.ID, "scenes", len(st.Scenes),
		"frames", st.TotalDurationInFrames())

	result, err := r.renderer.Render(ctx, propsPath, outPath)
	if err != nil {
		r.fail(ctx, job, fmt.Sprintf("render error: %v", err))
		return
	}
	if !result.IsSuccess() {
		r.fail(ctx, job, fmt.Sprintf("render exited %d: %s", result.ExitCode, truncateStr(result.StderrTail, 512)))
		return
	}

	info, err := r.renderer.ValidateOutput(outPath)
	if err != nil {
		r.fail(ctx, job, fmt.Sprintf("render output invalid: %v", err))
		return
	}

	r.repo.SetJobOutput(ctx, job.ID, outPath)
	r.repo.UpdateJobProgress(ctx, job.ID, 100)
	r.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted, "")
	log.Info("render job completed", "duration", result.Duration, "bytes", info.Size())
}

func (r *Runner) fail(ctx context.Context, job *Job, msg string) {
	if err := r.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, msg); err != nil {
		r.logger.Error("failed to mark job failed", "job_id", job.ID, "error", err)
		return
	}
	r.logger.Warn("render job failed", "job_id", job.ID, "error", msg)
}

// renderProps converts a project snapshot into renderer input.
func renderProps(st *State) render.Props {
	props := render.Props{
		FPS:    st.Project.FPS,
		Width:  st.Project.Width,
		Height: st.Project.Height,
		Scenes: make([]render.SceneProps, len(st.Scenes)),
	}
	for i, sc := range st.Scenes {
		props.Scenes[i] = render.SceneProps{
			ID:               sc.ID,
			Name:             sc.Name,
			DurationInFrames: sc.DurationInFrames,
			BackgroundColor:  sc.BackgroundColor,
			Elements:         sc.Elements,
		}
	}
	return props
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[len(s)-maxLen:]
}

// GetActiveJobCount returns how many jobs are running right now.
func (r *Runner) GetActiveJobCount(ctx context.Context) int {
	jobs, err := r.repo.ListJobs(ctx, 100)
	if err != nil {
		return 0
	}
	count := 0
	for _, j := range jobs {
		if j.Status == JobStatusRunning {
			count++
		}
	}
	return count
}
