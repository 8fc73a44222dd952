package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	exportpkg "github.com/framecraft/framecraft/internal/export"
)

func TestExportCode_AllScenes(t *testing.T) {
	outDir := t.TempDir()
	router := NewRouter(testConfig(t))
	addScene(t, router, `{"name":"Intro","durationInFrames":90,"elements":`+titleElements+`}`)
	addScene(t, router, `{"name":"Empty Scene"}`)

	rr := doRequest(t, router, http.MethodPost, "/export/code", `{"output_dir":"`+outDir+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp exportpkg.ExportResponse
	decodeInto(t, rr, &resp)
	if resp.Status != "ok" || len(resp.Files) != 2 {
		t.Fatalf("response = %+v", resp)
	}

	wantFiles := []string{"01_Intro.tsx", "02_Empty_Scene.tsx"}
	for i, want := range wantFiles {
		if got := filepath.Base(resp.Files[i].Path); got != want {
			t.Errorf("files[%d] = %q, want %q", i, got, want)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "01_Intro.tsx"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "export const IntroScene") {
		t.Errorf("Intro export missing component:\n%s", data)
	}

	data, err = os.ReadFile(filepath.Join(outDir, "02_Empty_Scene.tsx"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "export const EmptySceneScene") {
		t.Errorf("scene without elements should still compile:\n%s", data)
	}
}

func TestExportCode_SelectedScenes(t *testing.T) {
	outDir := t.TempDir()
	router := NewRouter(testConfig(t))
	addScene(t, router, `{"name":"A"}`)
	b := addScene(t, router, `{"name":"B"}`)

	rr := doRequest(t, router, http.MethodPost, "/export/code", `{"output_dir":"`+outDir+`","scene_ids":["`+b.ID+`"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp exportpkg.ExportResponse
	decodeInto(t, rr, &resp)
	if len(resp.Files) != 1 || resp.Files[0].SceneID != b.ID || filepath.Base(resp.Files[0].Path) != "01_B.tsx" {
		t.Errorf("files = %+v", resp.Files)
	}
}

func TestExportCode_Errors(t *testing.T) {
	outDir := t.TempDir()

	tests := []struct {
		name       string
		scenes     []string
		body       string
		wantStatus int
	}{
		{"invalid body", nil, `{`, http.StatusBadRequest},
		{"relative dir", []string{`{"name":"A"}`}, `{"output_dir":"exports"}`, http.StatusBadRequest},
		{"path traversal", []string{`{"name":"A"}`}, `{"output_dir":"` + outDir + `/../x"}`, http.StatusBadRequest},
		{"missing dir", []string{`{"name":"A"}`}, `{"output_dir":"` + filepath.Join(outDir, "nope") + `"}`, http.StatusBadRequest},
		{"empty project", nil, `{"output_dir":"` + outDir + `"}`, http.StatusBadRequest},
		{"unknown scene", []string{`{"name":"A"}`}, `{"output_dir":"` + outDir + `","scene_ids":["missing"]}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(testConfig(t))
			for _, sc := range tt.scenes {
				addScene(t, router, sc)
			}

			rr := doRequest(t, router, http.MethodPost, "/export/code", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestExportCodeRoute_PreflightAllowsPost(t *testing.T) {
	router := NewRouter(testConfig(t))

	req := httptest.NewRequest(http.MethodOptions, "/export/code", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	allowMethods := rr.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(allowMethods, "POST") {
		t.Fatalf("Access-Control-Allow-Methods = %q, want to include POST", allowMethods)
	}
}
