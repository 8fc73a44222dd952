// Package render drives the external video renderer as a subprocess. The
// renderer is handed a props file describing the project and writes an MP4.
package render

import (
	"time"

	"github.com/framecraft/framecraft/internal/scene"
)

// Capabilities describes the configured render toolchain as seen by a probe.
type Capabilities struct {
	Executable string    `json:"executable"`
	Version    string    `json:"version,omitempty"`
	Available  bool      `json:"available"`
	Error      string    `json:"error,omitempty"`
	ProbedAt   time.Time `json:"probed_at"`
}

// RunResult is the structured outcome of one render subprocess.
type RunResult struct {
	ExitCode   int           `json:"exit_code"`
	OutputPath string        `json:"output_path,omitempty"`
	StderrTail string        `json:"stderr_tail,omitempty"` // last N bytes of stderr
	Duration   time.Duration `json:"duration"`
}

// IsSuccess returns true when the subprocess exited cleanly.
func (r RunResult) IsSuccess() bool { return r.ExitCode == 0 }

// Props is the input the renderer composition receives. Scenes play back to
// back in slice order.
type Props struct {
	FPS    int          `json:"fps"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Scenes []SceneProps `json:"scenes"`
}

type SceneProps struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	DurationInFrames int             `json:"durationInFrames"`
	BackgroundColor  string          `json:"backgroundColor"`
	Elements         []scene.Element `json:"elements"`
}

// TotalDurationInFrames sums the scene durations.
func (p Props) TotalDurationInFrames() int {
	total := 0
	for _, s := range p.Scenes {
		total += s.DurationInFrames
	}
	return total
}
