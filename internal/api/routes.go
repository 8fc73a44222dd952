package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/framecraft/framecraft/internal/codegen"
	"github.com/framecraft/framecraft/internal/config"
	"github.com/framecraft/framecraft/internal/generate"
	"github.com/framecraft/framecraft/internal/logging"
	"github.com/framecraft/framecraft/internal/project"
	"github.com/framecraft/framecraft/internal/scene"
)

// maxBodyBytes caps request bodies; scenes are small JSON documents.
const maxBodyBytes = 4 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Validator == nil {
		cfg.Validator = scene.NewValidator()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.AuthToken, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/project", getProjectHandler(cfg))
		r.Patch("/project", updateProjectHandler(cfg))
		r.Post("/project/reset", resetHandler(cfg))

		r.Get("/scenes", listScenesHandler(cfg))
		r.Post("/scenes", addSceneHandler(cfg))
		r.Delete("/scenes", removeScenesHandler(cfg))
		r.Post("/scenes/select", selectSceneHandler(cfg))
		r.Post("/scenes/reorder", reorderScenesHandler(cfg))
		r.Get("/scenes/{id}", getSceneHandler(cfg))
		r.Patch("/scenes/{id}", updateSceneHandler(cfg))
		r.Delete("/scenes/{id}", removeSceneHandler(cfg))
		r.Post("/scenes/{id}/resize", resizeSceneHandler(cfg))
		r.Get("/scenes/{id}/code", sceneCodeHandler(cfg))

		r.Post("/validate", validateHandler(cfg))
		r.Post("/compile", compileHandler(cfg))

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(NewGenerateLimiter(cfg.GenerateRPM), cfg.Logger))
			r.Post("/generate", generateHandler(cfg))
			r.Post("/scenes/{id}/generate", generateSceneHandler(cfg))
		})

		r.Get("/history", historyHandler(cfg))
		r.Post("/undo", travelHandler(cfg, cfg.Service.Undo))
		r.Post("/redo", travelHandler(cfg, cfg.Service.Redo))

		r.Post("/render", renderHandler(cfg))
		r.Get("/jobs", listJobsHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))

		r.Post("/export/code", exportCodeHandler(cfg))
	})

	r.Group(func(r chi.Router) {
		r.Use(LoopbackGuard())
		r.Get("/renders/{id}", renderPlaybackHandler(cfg))
		r.Head("/renders/{id}", renderPlaybackHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		st, err := cfg.Service.GetProject(ctx)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		jobs, _ := cfg.Service.ListJobs(ctx, 10)

		state := "idle"
		var activeJob *JobResponse
		jobsRunning := 0
		lastError := ""

		if cfg.Runner != nil && cfg.Runner.IsPaused() {
			state = "paused"
		}
		for _, sc := range st.Scenes {
			if sc.Status == project.StatusGenerating {
				state = "generating"
			}
		}

		for _, j := range jobs {
			if j.Status == project.JobStatusRunning {
				state = "rendering"
				resp := JobToResponse(j)
				activeJob = &resp
				jobsRunning++
			}
			if j.Status == project.JobStatusFailed && lastError == "" {
				lastError = j.Error
			}
		}

		if lastError != "" && state == "idle" {
			state = "error"
		}

		resp := StatusResponse{
			State:                 state,
			LastError:             lastError,
			ProjectName:           st.Project.Name,
			ScenesCount:           len(st.Scenes),
			TotalDurationInFrames: st.TotalDurationInFrames(),
			JobsRunning:           jobsRunning,
			ActiveJob:             activeJob,
			CanUndo:               cfg.Service.CanUndo(),
			CanRedo:               cfg.Service.CanRedo(),
			Generation: GenerationStatus{
				Configured: cfg.GenerationConfigured,
				Model:      cfg.GenerationModel,
			},
		}

		if cfg.Probe != nil {
			if caps := cfg.Probe.Peek(); caps != nil {
				resp.Render = &RenderStatusResponse{
					Available:  caps.Available,
					Executable: caps.Executable,
					Version:    caps.Version,
					Error:      caps.Error,
				}
				if !caps.ProbedAt.IsZero() {
					resp.Render.LastProbeAt = caps.ProbedAt.Format(time.RFC3339)
				}
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := cfg.Service.GetProject(r.Context())
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, st)
	}
}

func updateProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch project.ProjectPatch
		if !decodeBody(w, r, &patch) {
			return
		}
		if err := cfg.Service.UpdateProject(r.Context(), patch); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		getProjectHandler(cfg)(w, r)
	}
}

func resetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Service.Reset(r.Context()); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		getProjectHandler(cfg)(w, r)
	}
}

func listScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scenes, err := cfg.Service.ListScenes(r.Context())
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, ScenesResponse{Scenes: scenes})
	}
}

func addSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in project.SceneInput
		if r.ContentLength != 0 && !decodeBody(w, r, &in) {
			return
		}
		sc, err := cfg.Service.AddScene(r.Context(), in)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, sc)
	}
}

func getSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := cfg.Service.GetScene(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, sc)
	}
}

func updateSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch project.ScenePatch
		if !decodeBody(w, r, &patch) {
			return
		}
		sc, err := cfg.Service.UpdateScene(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, sc)
	}
}

func removeSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Service.RemoveScene(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func removeScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RemoveScenesRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if len(req.IDs) == 0 {
			WriteError(w, http.StatusBadRequest, "ids must not be empty", CodeBadRequest)
			return
		}
		if err := cfg.Service.RemoveScenes(r.Context(), req.IDs); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func selectSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectSceneRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := cfg.Service.SelectScene(r.Context(), req.SceneID); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func reorderScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReorderRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.From == nil || req.To == nil {
			WriteError(w, http.StatusBadRequest, "from and to are required", CodeBadRequest)
			return
		}
		if err := cfg.Service.ReorderScenes(r.Context(), *req.From, *req.To); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		listScenesHandler(cfg)(w, r)
	}
}

func resizeSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResizeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		sc, err := cfg.Service.ResizeScene(r.Context(), chi.URLParam(r, "id"), req.DurationInFrames, req.Edge)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, sc)
	}
}

func sceneCodeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sc, err := cfg.Service.GetScene(r.Context(), id)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		code, err := cfg.Service.CompileScene(r.Context(), id)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, CompileResponse{ComponentName: codegen.ComponentName(sc.Name), Code: code})
	}
}

func validateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := decodeRaw(w, r)
		if !ok {
			return
		}
		sc, err := cfg.Validator.Validate(raw)
		if err != nil {
			details, ok := validationDetails(err)
			if !ok {
				writeServiceError(w, cfg.Logger, err)
				return
			}
			WriteJSON(w, http.StatusOK, ValidateResponse{Valid: false, Errors: details})
			return
		}
		WriteJSON(w, http.StatusOK, ValidateResponse{Valid: true, Scene: sc})
	}
}

func compileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := decodeRaw(w, r)
		if !ok {
			return
		}
		sc, err := cfg.Validator.Validate(raw)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		code, err := codegen.Compile(sc)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, CompileResponse{ComponentName: codegen.ComponentName(sc.Name), Code: code})
	}
}

func generateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Prompt == "" {
			WriteError(w, http.StatusBadRequest, "Prompt is required", CodeBadRequest)
			return
		}
		pc := generate.DefaultProjectContext()
		if req.ProjectContext != nil {
			pc = *req.ProjectContext
		}

		ctx, cancel := generationContext(r.Context(), cfg.GenerateTimeout)
		defer cancel()

		res, err := cfg.Generator.Generate(ctx, req.Prompt, pc)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, res)
	}
}

func generateSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SceneGenerateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Prompt == "" {
			WriteError(w, http.StatusBadRequest, "Prompt is required", CodeBadRequest)
			return
		}

		ctx, cancel := generationContext(r.Context(), cfg.GenerateTimeout)
		defer cancel()

		sc, err := cfg.Service.Generate(ctx, chi.URLParam(r, "id"), req.Prompt, cfg.Generator)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, sc)
	}
}

func generationContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func historyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HistoryResponse{CanUndo: cfg.Service.CanUndo(), CanRedo: cfg.Service.CanRedo()})
	}
}

func travelHandler(cfg ServerConfig, travel func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := travel(r.Context()); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		historyHandler(cfg)(w, r)
	}
}

func renderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := cfg.Service.EnqueueRender(r.Context())
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, RenderResponse{JobID: job.ID})
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := cfg.Service.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", CodeInternal)
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := cfg.Service.GetJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}

func renderPlaybackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "id")
		job, err := cfg.Service.GetJob(r.Context(), jobID)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		if job.Status != project.JobStatusCompleted || job.OutputPath == "" {
			WriteError(w, http.StatusNotFound, "render not available", CodeNotFound)
			return
		}
		if cfg.Playback == nil {
			WriteError(w, http.StatusNotFound, "playback not configured", CodeNotFound)
			return
		}

		if err := cfg.Playback.ServeFile(w, r, job.OutputPath); err != nil {
			cfg.Logger.Error("playback error", "error", err, "job_id", jobID)
			WriteError(w, http.StatusInternalServerError, "playback failed", CodeInternal)
		}
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
		return false
	}
	return true
}

func decodeRaw(w http.ResponseWriter, r *http.Request) (any, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
		return nil, false
	}
	raw, err := scene.DecodeRaw(data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON", CodeBadRequest)
		return nil, false
	}
	return raw, true
}

// writeServiceError maps store, validation and generation errors onto HTTP
// responses.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if details, ok := validationDetails(err); ok {
		writeErrorResponse(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   err.Error(),
			Code:    CodeValidationFailed,
			Details: details,
		})
		return
	}

	switch {
	case errors.Is(err, project.ErrSceneNotFound), errors.Is(err, project.ErrJobNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, project.ErrStaleGeneration),
		errors.Is(err, project.ErrNothingToUndo),
		errors.Is(err, project.ErrNothingToRedo):
		WriteError(w, http.StatusConflict, err.Error(), CodeConflict)
	case errors.Is(err, project.ErrInvalidIndex),
		errors.Is(err, project.ErrInvalidEdge),
		errors.Is(err, project.ErrInvalidFPS),
		errors.Is(err, project.ErrInvalidSize),
		errors.Is(err, project.ErrEmptyProject),
		errors.Is(err, generate.ErrEmptyPrompt):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
	case errors.Is(err, generate.ErrNotConfigured):
		WriteError(w, http.StatusServiceUnavailable, err.Error(), CodeGenerationFailed)
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, "generation timed out", CodeGenerationFailed)
	case errors.Is(err, generate.ErrInvalidJSON),
		errors.Is(err, generate.ErrEmptyResponse),
		errors.Is(err, generate.ErrModelRequest):
		WriteError(w, http.StatusBadGateway, err.Error(), CodeGenerationFailed)
	default:
		logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error(), CodeInternal)
	}
}
