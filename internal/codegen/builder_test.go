package codegen

import (
	"math"
	"testing"

	"github.com/framecraft/framecraft/internal/scene"
)

func TestFieldsOmitAbsent(t *testing.T) {
	var f fields
	f.num("a", 1)
	f.optNum("b", nil)
	f.optRange("c", nil)
	f.optRange("d", &scene.Range{2, -1})
	if got, want := f.String(), "{ a: 1, d: [2, -1] }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	var empty fields
	if got := empty.String(); got != "{}" {
		t.Errorf("empty String() = %q", got)
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{64, "64"},
		{0.95, "0.95"},
		{-2, "-2"},
		{1e21, "1000000000000000000000"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#fff", `'#fff'`},
		{"it's", `'it\'s'`},
		{`a\b`, `'a\\b'`},
		{"line\nbreak", `'line\nbreak'`},
		{"\x01", `'\x01'`},
		{"\u2028", `'\u2028'`},
	}
	for _, tt := range tests {
		if got := jsString(tt.in); got != tt.want {
			t.Errorf("jsString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestJSONLiteralKeepsHTML(t *testing.T) {
	if got := jsonLiteral("<b>&</b>"); got != `"<b>&</b>"` {
		t.Errorf("jsonLiteral = %s", got)
	}
}

func TestObjectKey(t *testing.T) {
	tests := map[string]string{
		"fontSize":    "fontSize",
		"font-family": "'font-family'",
		"_x1":         "_x1",
		"1x":          "'1x'",
	}
	for in, want := range tests {
		if got := objectKey(in); got != want {
			t.Errorf("objectKey(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestGlowColor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#ff8800", "#ff880099"},
		{"#f80", "#ff880099"},
		{"#ff8800cc", "#ff880099"},
		{"#f80c", "#ff880099"},
		{"gold", "color-mix(in srgb, gold 60%, transparent)"},
		{"rgb(1, 2, 3)", "color-mix(in srgb, rgb(1, 2, 3) 60%, transparent)"},
		{"#zzzzzz", "color-mix(in srgb, #zzzzzz 60%, transparent)"},
	}
	for _, tt := range tests {
		if got := glowColor(tt.in); got != tt.want {
			t.Errorf("glowColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
