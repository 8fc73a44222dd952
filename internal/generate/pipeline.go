package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/framecraft/framecraft/internal/codegen"
	"github.com/framecraft/framecraft/internal/scene"
)

const rawLogLimit = 2000

// Result is a validated scene and its compiled source.
type Result struct {
	Scene *scene.Scene `json:"scene"`
	Code  string       `json:"code"`
}

// Pipeline runs prompt building, generation, parsing, validation and
// compilation in sequence.
type Pipeline struct {
	gen       Generator
	validator *scene.Validator
	logger    *slog.Logger
}

func NewPipeline(gen Generator, validator *scene.Validator, logger *slog.Logger) *Pipeline {
	if validator == nil {
		validator = scene.NewValidator()
	}
	return &Pipeline{gen: gen, validator: validator, logger: logger}
}

// Generate returns a validated, compiled scene for prompt. A response that is
// not JSON fails with ErrInvalidJSON; one that is JSON but violates the scene
// contract fails with scene.ValidationErrors.
func (p *Pipeline) Generate(ctx context.Context, prompt string, pc ProjectContext) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	start := time.Now()
	text, err := p.gen.GenerateContent(ctx, SystemPrompt, BuildUserPrompt(prompt, pc))
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		p.logRaw("model returned invalid JSON", text, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	s, err := p.validator.Validate(raw)
	if err != nil {
		p.logRaw("generated scene failed validation", text, err)
		return nil, err
	}

	code, err := codegen.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("generate: compile generated scene: %w", err)
	}

	if p.logger != nil {
		p.logger.Info("scene generated",
			"name", s.Name,
			"elements", len(s.Elements),
			"duration_frames", s.DurationInFrames,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return &Result{Scene: s, Code: code}, nil
}

func (p *Pipeline) logRaw(msg, text string, err error) {
	if p.logger == nil {
		return
	}
	if len(text) > rawLogLimit {
		text = text[:rawLogLimit]
	}
	p.logger.Warn(msg, "error", err, "raw", text)
}
