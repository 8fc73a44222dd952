package scene

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestElementJSONRoundTrip(t *testing.T) {
	depth := 40.0
	start := 5
	in := Element{
		ID:               "p1",
		StartFrame:       3,
		DurationInFrames: 50,
		Position:         Position{X: 10, Y: 20},
		ZIndex:           1,
		Config: &ParticleSystemConfig{
			SpawnRate:     5,
			ParticleColor: "#fff",
			ParticleStyle: ParticleGlow,
			Opacity:       []float64{1, 0},
			SpawnArea:     SpawnArea{Width: 100, Height: 10, Depth: &depth},
			StartFrame:    &start,
		},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"type":"ParticleSystem"`) {
		t.Errorf("missing type tag: %s", data)
	}

	var out Element
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestElementUnmarshalUnknownType(t *testing.T) {
	var el Element
	err := json.Unmarshal([]byte(`{"id":"x","type":"Hologram","config":{}}`), &el)
	var unknown *UnknownElementTypeError
	if !errors.As(err, &unknown) || unknown.Type != "Hologram" {
		t.Fatalf("error = %v, want UnknownElementTypeError", err)
	}
}

func TestTextValueJSON(t *testing.T) {
	var v TextValue
	if err := json.Unmarshal([]byte(`["a","b"]`), &v); err != nil || !v.IsList {
		t.Fatalf("list: %+v, %v", v, err)
	}
	if err := json.Unmarshal([]byte(`"solo"`), &v); err != nil || v.IsList || v.Single != "solo" {
		t.Fatalf("single: %+v, %v", v, err)
	}
	if err := json.Unmarshal([]byte(`7`), &v); err == nil {
		t.Error("expected error for numeric text")
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	lo, hi := 8.0, 400.0
	errs := ValidationErrors{
		&MissingRequiredFieldError{Path: "name"},
		&FieldOutOfRangeError{Path: "elements[0].config.fontSize", Value: 500, Min: &lo, Max: &hi},
	}
	msg := errs.Error()
	for _, want := range []string{"2 errors", "name: required field is missing", "500 is out of range [8, 400]"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
