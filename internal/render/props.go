package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteProps writes p as JSON to path, creating parent directories. The file
// is written to a sibling temp file first and renamed into place so a
// renderer never reads a partial document.
func WriteProps(path string, p Props) error {
	if p.Scenes == nil {
		p.Scenes = []SceneProps{}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode render props: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create props dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".props-*.json")
	if err != nil {
		return fmt.Errorf("cannot create props file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write props file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write props file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot move props file into place: %w", err)
	}
	return nil
}
