package generate

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/framecraft/framecraft/internal/scene"
)

type fakeGenerator struct {
	response string
	err      error

	gotSystem string
	gotUser   string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	return f.response, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPipeline_Generate(t *testing.T) {
	fake := &fakeGenerator{response: DemoScene}
	p := NewPipeline(fake, nil, testLogger())

	res, err := p.Generate(context.Background(), "a title reveal", ProjectContext{SceneCount: 2, FPS: 60, Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if res.Scene.Name != "Epic Title Reveal" {
		t.Errorf("Scene.Name = %q", res.Scene.Name)
	}
	if len(res.Scene.Elements) != 3 {
		t.Errorf("len(Elements) = %d, want 3", len(res.Scene.Elements))
	}
	if !strings.Contains(res.Code, "export const EpicTitleRevealScene = () => {") {
		t.Errorf("code missing component declaration:\n%s", res.Code)
	}

	if fake.gotSystem != SystemPrompt {
		t.Error("generator did not receive the system prompt")
	}
	for _, want := range []string{`"a title reveal"`, "1280x720", "FPS: 60", "scene #2"} {
		if !strings.Contains(fake.gotUser, want) {
			t.Errorf("user prompt missing %q:\n%s", want, fake.gotUser)
		}
	}
}

func TestPipeline_Errors(t *testing.T) {
	boom := errors.New("upstream down")

	tests := []struct {
		name     string
		prompt   string
		response string
		genErr   error
		want     error
	}{
		{"empty prompt", "   ", DemoScene, nil, ErrEmptyPrompt},
		{"generator error", "x", "", boom, boom},
		{"empty response", "x", "  \n", nil, ErrEmptyResponse},
		{"invalid json", "x", "{not json", nil, ErrInvalidJSON},
		{"not configured", "x", "", ErrNotConfigured, ErrNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(&fakeGenerator{response: tt.response, err: tt.genErr}, nil, testLogger())
			_, err := p.Generate(context.Background(), tt.prompt, DefaultProjectContext())
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPipeline_ValidationFailure(t *testing.T) {
	response := `{"name":"Bad","durationInFrames":90,"elements":[
		{"type":"GradientTransition","startFrame":0,"durationInFrames":90,"position":{"x":0,"y":0},"config":{"gradients":["red"]}}
	]}`
	p := NewPipeline(&fakeGenerator{response: response}, nil, testLogger())

	_, err := p.Generate(context.Background(), "x", DefaultProjectContext())

	var minLen *scene.MinimumArrayLengthError
	if !errors.As(err, &minLen) {
		t.Fatalf("Generate() error = %v, want MinimumArrayLengthError", err)
	}
	if minLen.Path != "elements[0].config.gradients" {
		t.Errorf("Path = %q", minLen.Path)
	}
	if errors.Is(err, ErrInvalidJSON) {
		t.Error("schema violations must not be reported as invalid JSON")
	}
}

func TestBuildUserPrompt_Defaults(t *testing.T) {
	got := BuildUserPrompt("  snowy night  ", ProjectContext{})
	for _, want := range []string{`"snowy night"`, "1920x1080", "FPS: 30", "scene #1", "Return ONLY valid JSON"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestStatic_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Static{Response: DemoScene}).GenerateContent(ctx, "", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateContent() error = %v, want context.Canceled", err)
	}
}

func TestNewGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), GeminiConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewGemini() error = %v, want ErrNotConfigured", err)
	}
	if _, err := (Unconfigured{}).GenerateContent(context.Background(), "", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Unconfigured error = %v", err)
	}
}
