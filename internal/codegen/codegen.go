// Package codegen compiles a validated scene into React/Remotion component
// source. Output is deterministic: the same scene always yields the same
// bytes, and elements are emitted in slice order regardless of zIndex.
package codegen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/framecraft/framecraft/internal/scene"
)

const (
	baseImport   = "import { AbsoluteFill, Sequence } from 'remotion';"
	bitsLibrary  = "remotion-bits"
	elementDepth = 3
)

// UnsupportedElementTypeError is returned when an element carries a config
// the compiler has no emitter for. Validated scenes never trigger it.
type UnsupportedElementTypeError struct {
	ElementID string
	Type      string
}

func (e *UnsupportedElementTypeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("codegen: element %q has no config", e.ElementID)
	}
	return fmt.Sprintf("codegen: unsupported element type %q (element %q)", e.Type, e.ElementID)
}

// Compile renders s as a single exported component. It reads only the scene
// name, background and elements.
func Compile(s *scene.Scene) (string, error) {
	if s == nil {
		return "", errors.New("codegen: nil scene")
	}

	e := &emitter{
		w:       &writer{depth: elementDepth},
		imports: make(map[string]struct{}),
	}
	for i, el := range s.Elements {
		if i > 0 {
			e.w.blank()
		}
		if err := e.element(el); err != nil {
			return "", err
		}
	}

	out := &writer{}
	out.line(baseImport)
	for _, imp := range e.importLines() {
		out.line(imp)
	}
	out.blank()
	out.open("export const " + ComponentName(s.Name) + " = () => {")
	out.open("return (")
	var bg fields
	bg.str("backgroundColor", s.BackgroundColor)
	out.open(tag("AbsoluteFill", props{"style={" + bg.String() + "}"}, false))
	out.lines = append(out.lines, e.w.lines...)
	out.close("</AbsoluteFill>")
	out.close(");")
	out.close("};")

	return out.String() + "\n", nil
}

// ComponentName derives the component identifier from a scene name by
// dropping every character that is not an ASCII letter or digit.
func ComponentName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	base := b.String()
	switch {
	case base == "":
		base = "Untitled"
	case base[0] >= '0' && base[0] <= '9':
		base = "Scene" + base
	}
	return base + "Scene"
}

type emitter struct {
	w       *writer
	imports map[string]struct{}
}

// use records one import line for the given library symbols.
func (e *emitter) use(symbols ...string) {
	line := "import { " + strings.Join(symbols, ", ") + " } from '" + bitsLibrary + "';"
	e.imports[line] = struct{}{}
}

func (e *emitter) importLines() []string {
	lines := make([]string, 0, len(e.imports))
	for line := range e.imports {
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}

func (e *emitter) element(el scene.Element) error {
	var emit func()
	switch c := el.Config.(type) {
	case *scene.AnimatedTextConfig:
		emit = func() { e.animatedText(el, c) }
	case *scene.TypeWriterConfig:
		emit = func() { e.typeWriter(el, c) }
	case *scene.GradientTransitionConfig:
		emit = func() { e.gradientTransition(el, c) }
	case *scene.ParticleSystemConfig:
		emit = func() { e.particleSystem(el, c) }
	case *scene.StaggeredMotionConfig:
		emit = func() { e.staggeredMotion(el, c) }
	case *scene.AnimatedCounterConfig:
		emit = func() { e.animatedCounter(el, c) }
	case *scene.MatrixRainConfig:
		emit = func() { e.matrixRain(el, c) }
	case *scene.CodeBlockConfig:
		emit = func() { e.codeBlock(el, c) }
	case *scene.Scene3DConfig:
		emit = func() { e.scene3D(el, c) }
	case *scene.ScrollingColumnsConfig:
		emit = func() { e.scrollingColumns(el, c) }
	default:
		return &UnsupportedElementTypeError{ElementID: el.ID, Type: string(el.Type())}
	}

	var seq props
	seq.integer("from", el.StartFrame)
	seq.integer("durationInFrames", el.DurationInFrames)
	seq.enum("layout", "none")
	e.w.open(tag("Sequence", seq, false))
	emit()
	e.w.close("</Sequence>")
	return nil
}
