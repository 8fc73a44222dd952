package api

import (
	"errors"
	"time"

	"github.com/framecraft/framecraft/internal/generate"
	"github.com/framecraft/framecraft/internal/project"
	"github.com/framecraft/framecraft/internal/scene"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL_ERROR"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State                 string                `json:"state"`
	LastError             string                `json:"last_error,omitempty"`
	ProjectName           string                `json:"project_name"`
	ScenesCount           int                   `json:"scenes_count"`
	TotalDurationInFrames int                   `json:"total_duration_in_frames"`
	JobsRunning           int                   `json:"jobs_running"`
	ActiveJob             *JobResponse          `json:"active_job,omitempty"`
	CanUndo               bool                  `json:"can_undo"`
	CanRedo               bool                  `json:"can_redo"`
	Generation            GenerationStatus      `json:"generation"`
	Render                *RenderStatusResponse `json:"render,omitempty"`
}

type GenerationStatus struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model,omitempty"`
}

type RenderStatusResponse struct {
	Available   bool   `json:"available"`
	Executable  string `json:"executable,omitempty"`
	Version     string `json:"version,omitempty"`
	Error       string `json:"error,omitempty"`
	LastProbeAt string `json:"last_probe_at,omitempty"`
}

type ScenesResponse struct {
	Scenes []*project.Scene `json:"scenes"`
}

type RemoveScenesRequest struct {
	IDs []string `json:"ids"`
}

type SelectSceneRequest struct {
	SceneID string `json:"scene_id"`
}

type ReorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type ResizeRequest struct {
	DurationInFrames int          `json:"durationInFrames"`
	Edge             project.Edge `json:"edge"`
}

// GenerateRequest is the stateless generation body. ProjectContext is
// optional and defaults to one 30fps 1920x1080 scene.
type GenerateRequest struct {
	Prompt         string                   `json:"prompt"`
	ProjectContext *generate.ProjectContext `json:"projectContext,omitempty"`
}

type SceneGenerateRequest struct {
	Prompt string `json:"prompt"`
}

type ValidateResponse struct {
	Valid  bool          `json:"valid"`
	Scene  *scene.Scene  `json:"scene,omitempty"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

type CompileResponse struct {
	ComponentName string `json:"component_name"`
	Code          string `json:"code"`
}

type HistoryResponse struct {
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

type RenderResponse struct {
	JobID string `json:"job_id"`
}

type JobResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	ProjectID string `json:"project_id,omitempty"`
	Progress  int    `json:"progress"`
	VideoURL  string `json:"video_url,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// ErrorDetail describes one validation violation.
type ErrorDetail struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

func JobToResponse(j *project.Job) JobResponse {
	resp := JobResponse{
		ID:        j.ID,
		Type:      j.Type,
		Status:    j.Status,
		ProjectID: j.ProjectID,
		Progress:  j.Progress,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
	if j.Status == project.JobStatusCompleted && j.OutputPath != "" {
		resp.VideoURL = "/renders/" + j.ID
	}
	return resp
}

// validationDetails flattens err into details when it carries scene
// validation errors.
func validationDetails(err error) ([]ErrorDetail, bool) {
	var verrs scene.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	details := make([]ErrorDetail, len(verrs))
	for i, fe := range verrs {
		details[i] = ErrorDetail{Path: fe.FieldPath(), Kind: fe.Kind(), Message: fe.Error()}
	}
	return details, true
}
