package export

import "github.com/framecraft/framecraft/internal/scene"

// ExportRequest is the body of a code export call. An empty SceneIDs exports
// every scene in project order.
type ExportRequest struct {
	OutputDir string   `json:"output_dir"`
	SceneIDs  []string `json:"scene_ids,omitempty"`
}

// Source is one scene to write. When Code is empty it is compiled from
// Definition.
type Source struct {
	SceneID    string
	Name       string
	Definition *scene.Scene
	Code       string
}

type WrittenFile struct {
	SceneID string `json:"scene_id"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
}

type ExportResponse struct {
	Status    string        `json:"status"`
	OutputDir string        `json:"output_dir"`
	Files     []WrittenFile `json:"files"`
}
