// Package generate turns a natural-language prompt into a validated scene and
// its compiled component source, using an LLM as the scene author.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const defaultTemperature = float32(0.9)

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("generate: GEMINI_API_KEY is not set")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("generate: empty response from model")
	// ErrInvalidJSON is returned when the model output is not parseable JSON.
	ErrInvalidJSON = errors.New("generate: model returned invalid JSON")
	// ErrEmptyPrompt is returned for a blank prompt.
	ErrEmptyPrompt = errors.New("generate: prompt is required")
	// ErrModelRequest wraps transport and API failures from the model.
	ErrModelRequest = errors.New("generate: model request failed")
)

// Generator produces raw scene JSON text from a system and user prompt.
type Generator interface {
	GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeminiConfig configures the Gemini generator.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature *float32
}

// Gemini is a Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	temp   *float32
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: cannot create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temp := cfg.Temperature
	if temp == nil {
		temp = genai.Ptr(defaultTemperature)
	}
	return &Gemini{client: client, model: model, temp: temp}, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.model }

// GenerateContent asks the model for a JSON response.
func (g *Gemini) GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       g.temp,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelRequest, err)
	}
	return resp.Text(), nil
}

// Unconfigured is a Generator that always fails with ErrNotConfigured. The
// agent uses it when no API key is set so the rest of the API stays usable.
type Unconfigured struct{}

func (Unconfigured) GenerateContent(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

// Static is a Generator that returns a fixed response. It backs offline demos
// and tests.
type Static struct {
	Response string
}

func (s Static) GenerateContent(ctx context.Context, _, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Response, nil
}

// DemoScene is a small complete scene used by Static in demo mode.
const DemoScene = `{
  "name": "Epic Title Reveal",
  "durationInFrames": 180,
  "backgroundColor": "#0a0a0a",
  "elements": [
    {
      "type": "GradientTransition",
      "id": "bg-gradient",
      "startFrame": 0,
      "durationInFrames": 180,
      "position": { "x": 0, "y": 0 },
      "zIndex": 0,
      "config": {
        "gradients": [
          "radial-gradient(circle at 50% 50%, #1a0533 0%, #0a0a0a 70%)",
          "radial-gradient(circle at 30% 70%, #0a1628 0%, #0a0a0a 70%)"
        ],
        "easing": "easeInOut"
      }
    },
    {
      "type": "AnimatedText",
      "id": "main-title",
      "startFrame": 20,
      "durationInFrames": 120,
      "position": { "x": 960, "y": 540 },
      "zIndex": 2,
      "config": {
        "text": "HELLO WORLD",
        "fontSize": 120,
        "fontWeight": 900,
        "split": "character",
        "splitStagger": 3,
        "easing": "spring",
        "animation": { "opacity": [0, 1], "y": [40, 0], "blur": [8, 0] }
      }
    },
    {
      "type": "ParticleSystem",
      "id": "sparkles",
      "startFrame": 30,
      "durationInFrames": 150,
      "position": { "x": 960, "y": 530 },
      "zIndex": 1,
      "config": {
        "spawnRate": 3,
        "maxParticles": 80,
        "particleLifespan": 45,
        "particleSize": 6,
        "particleColor": "#ffffff",
        "particleStyle": "glow",
        "velocity": { "x": 0, "y": -1.5, "varianceX": 2 },
        "gravity": { "x": 0, "y": 0.02 },
        "drag": 0.98,
        "opacity": [0, 1, 0],
        "spawnArea": { "width": 1000, "height": 200 },
        "wiggle": { "magnitude": 0.5, "frequency": 0.3 }
      }
    }
  ]
}`
