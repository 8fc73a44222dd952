package api

import (
	"fmt"
	"net/http"

	"github.com/framecraft/framecraft/internal/export"
	"github.com/framecraft/framecraft/internal/project"
)

func exportCodeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if !decodeBody(w, r, &req) {
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
			return
		}

		scenes, err := exportScenes(r, cfg.Service, req.SceneIDs)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		if len(scenes) == 0 {
			WriteError(w, http.StatusBadRequest, project.ErrEmptyProject.Error(), CodeBadRequest)
			return
		}

		sources := make([]export.Source, len(scenes))
		for i, sc := range scenes {
			sources[i] = export.Source{
				SceneID:    sc.ID,
				Name:       sc.Name,
				Definition: sc.Definition(),
				Code:       sc.GeneratedCode,
			}
		}

		files, err := export.WriteSources(r.Context(), req.OutputDir, sources, export.DefaultConcurrency)
		if err != nil {
			cfg.Logger.Error("code export failed", "error", err, "output_dir", req.OutputDir)
			WriteError(w, http.StatusInternalServerError, "failed to write export files", CodeInternal)
			return
		}

		cfg.Logger.Info("code exported", "files", len(files), "output_dir", req.OutputDir)
		WriteJSON(w, http.StatusOK, export.ExportResponse{
			Status:    "ok",
			OutputDir: req.OutputDir,
			Files:     files,
		})
	}
}

// exportScenes returns the requested scenes in the order given, or every
// scene in project order when ids is empty.
func exportScenes(r *http.Request, svc *project.Service, ids []string) ([]*project.Scene, error) {
	if len(ids) == 0 {
		return svc.ListScenes(r.Context())
	}
	scenes := make([]*project.Scene, 0, len(ids))
	for _, id := range ids {
		sc, err := svc.GetScene(r.Context(), id)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", id, err)
		}
		scenes = append(scenes, sc)
	}
	return scenes, nil
}
