package scene

import (
	"encoding/json"
	"fmt"
)

type elementEnvelope struct {
	ID               string          `json:"id"`
	Type             ElementType     `json:"type"`
	StartFrame       int             `json:"startFrame"`
	DurationInFrames int             `json:"durationInFrames"`
	Position         Position        `json:"position"`
	ZIndex           int             `json:"zIndex"`
	Config           json.RawMessage `json:"config"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	if e.Config == nil {
		return nil, fmt.Errorf("element %q has no config", e.ID)
	}
	cfg, err := json.Marshal(e.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal %s config: %w", e.Type(), err)
	}
	return json.Marshal(elementEnvelope{
		ID:               e.ID,
		Type:             e.Type(),
		StartFrame:       e.StartFrame,
		DurationInFrames: e.DurationInFrames,
		Position:         e.Position,
		ZIndex:           e.ZIndex,
		Config:           cfg,
	})
}

// UnmarshalJSON decodes an element that was previously produced by the
// validator and stored. It does not apply bounds or defaults; untrusted input
// must go through Validator instead.
func (e *Element) UnmarshalJSON(data []byte) error {
	var env elementEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	cfg := newConfig(env.Type)
	if cfg == nil {
		return &UnknownElementTypeError{Path: "type", Type: string(env.Type)}
	}
	if len(env.Config) > 0 {
		if err := json.Unmarshal(env.Config, cfg); err != nil {
			return fmt.Errorf("decode %s config: %w", env.Type, err)
		}
	}
	*e = Element{
		ID:               env.ID,
		StartFrame:       env.StartFrame,
		DurationInFrames: env.DurationInFrames,
		Position:         env.Position,
		ZIndex:           env.ZIndex,
		Config:           cfg,
	}
	return nil
}

// ToRaw converts a validated scene back into the untyped shape the validator
// accepts, so it can be re-validated after edits.
func ToRaw(s *Scene) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DecodeRaw parses JSON text into the untyped value the validator consumes.
func DecodeRaw(data []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
