// Package project is the scene store: a single editable project holding an
// ordered list of scenes, persisted in SQLite, with undo/redo, generation
// tickets and a render job queue.
package project

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/framecraft/framecraft/internal/scene"
)

const (
	// MaxUndo is the depth of both the undo and redo stacks.
	MaxUndo = 3
	// MinSceneDuration is the smallest duration ResizeScene allows, in frames.
	MinSceneDuration = 15

	DefaultProjectName     = "Untitled Project"
	DefaultFPS             = 30
	DefaultSceneDuration   = 150
	DefaultBackgroundColor = "#000000"
)

var (
	ErrSceneNotFound   = errors.New("scene not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrStaleGeneration = errors.New("generation ticket is stale")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrInvalidIndex    = errors.New("scene index out of range")
	ErrInvalidEdge     = errors.New("edge must be left or right")
	ErrInvalidFPS      = errors.New("fps must be 30 or 60")
	ErrInvalidSize     = errors.New("width and height must be positive")
	ErrEmptyProject    = errors.New("project has no scenes")
)

type SceneStatus string

const (
	StatusIdle       SceneStatus = "idle"
	StatusGenerating SceneStatus = "generating"
	StatusReady      SceneStatus = "ready"
	StatusError      SceneStatus = "error"
)

type Edge string

const (
	EdgeLeft  Edge = "left"
	EdgeRight Edge = "right"
)

type Project struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	FPS             int       `json:"fps"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	SelectedSceneID string    `json:"selectedSceneId,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Scene is a stored scene. Element configs are never mutated in place, so
// copies may share them.
type Scene struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Prompt           string          `json:"prompt"`
	DurationInFrames int             `json:"durationInFrames"`
	BackgroundColor  string          `json:"backgroundColor"`
	Elements         []scene.Element `json:"elements"`
	GeneratedCode    string          `json:"generatedCode"`
	Status           SceneStatus     `json:"status"`
	Error            string          `json:"error,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Definition returns the validated scene shape the compiler consumes.
func (s *Scene) Definition() *scene.Scene {
	return &scene.Scene{
		Name:             s.Name,
		DurationInFrames: s.DurationInFrames,
		BackgroundColor:  s.BackgroundColor,
		Elements:         s.Elements,
	}
}

func (s *Scene) clone() *Scene {
	c := *s
	c.Elements = make([]scene.Element, len(s.Elements))
	copy(c.Elements, s.Elements)
	return &c
}

// State is a full project snapshot: the unit of persistence and of undo.
type State struct {
	Project Project  `json:"project"`
	Scenes  []*Scene `json:"scenes"`
}

func (st *State) clone() *State {
	c := &State{Project: st.Project, Scenes: make([]*Scene, len(st.Scenes))}
	for i, s := range st.Scenes {
		c.Scenes[i] = s.clone()
	}
	return c
}

func (st *State) index(id string) int {
	for i, s := range st.Scenes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// TotalDurationInFrames sums every scene duration.
func (st *State) TotalDurationInFrames() int {
	total := 0
	for _, s := range st.Scenes {
		total += s.DurationInFrames
	}
	return total
}

const (
	JobTypeRender = "render"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type Job struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	ProjectID  string    `json:"project_id,omitempty"`
	Progress   int       `json:"progress"`
	OutputPath string    `json:"output_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ChangeEvent is delivered to OnChange listeners after every committed
// mutation.
type ChangeEvent struct {
	Op        string `json:"op"`
	ProjectID string `json:"project_id"`
	SceneID   string `json:"scene_id,omitempty"`
}

func NewID() string {
	return uuid.NewString()
}
