package playback

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeVideo(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "job-1", "render.mp4")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestServeFile(t *testing.T) {
	root := t.TempDir()
	path := writeVideo(t, root)
	srv := NewServer(root, nil)

	tests := []struct {
		name       string
		method     string
		rangeHdr   string
		wantStatus int
		wantBody   string
		wantRange  string
	}{
		{name: "full", method: http.MethodGet, wantStatus: http.StatusOK, wantBody: "0123456789"},
		{name: "partial", method: http.MethodGet, rangeHdr: "bytes=2-5", wantStatus: http.StatusPartialContent, wantBody: "2345", wantRange: "bytes 2-5/10"},
		{name: "suffix", method: http.MethodGet, rangeHdr: "bytes=-3", wantStatus: http.StatusPartialContent, wantBody: "789", wantRange: "bytes 7-9/10"},
		{name: "malformed ignored", method: http.MethodGet, rangeHdr: "frames=1-2", wantStatus: http.StatusOK, wantBody: "0123456789"},
		{name: "unsatisfiable", method: http.MethodGet, rangeHdr: "bytes=50-", wantStatus: http.StatusRequestedRangeNotSatisfiable, wantRange: "bytes */10"},
		{name: "head", method: http.MethodHead, wantStatus: http.StatusOK, wantBody: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/renders/job-1", nil)
			if tt.rangeHdr != "" {
				req.Header.Set("Range", tt.rangeHdr)
			}
			rr := httptest.NewRecorder()

			if err := srv.ServeFile(rr, req, path); err != nil {
				t.Fatalf("ServeFile() error = %v", err)
			}
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusRequestedRangeNotSatisfiable {
				if got := rr.Header().Get("Content-Range"); got != tt.wantRange {
					t.Errorf("Content-Range = %q, want %q", got, tt.wantRange)
				}
				return
			}
			if got := rr.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if got := rr.Header().Get("Content-Range"); got != tt.wantRange {
				t.Errorf("Content-Range = %q, want %q", got, tt.wantRange)
			}
			if got := rr.Header().Get("Content-Type"); got != "video/mp4" {
				t.Errorf("Content-Type = %q", got)
			}
			if got := rr.Header().Get("Accept-Ranges"); got != "bytes" {
				t.Errorf("Accept-Ranges = %q", got)
			}
		})
	}
}

func TestServeFile_Missing(t *testing.T) {
	root := t.TempDir()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/renders/x", nil)

	if err := NewServer(root, nil).ServeFile(rr, req, filepath.Join(root, "x", "render.mp4")); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestServeFile_OutsideRoot(t *testing.T) {
	root := t.TempDir()
	other := writeVideo(t, t.TempDir())
	srv := NewServer(root, nil)

	for _, p := range []string{other, filepath.Join(root, "..", "escape.mp4")} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/renders/x", nil)
		if err := srv.ServeFile(rr, req, p); err != ErrOutsideRoot {
			t.Errorf("ServeFile(%q) error = %v, want ErrOutsideRoot", p, err)
		}
	}
}
