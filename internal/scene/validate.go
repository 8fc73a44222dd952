package scene

import (
	"sort"

	"github.com/google/uuid"
)

// Scene-level duration bounds, in frames.
const (
	MinSceneDuration = 1
	MaxSceneDuration = 9000
)

// Validator turns untrusted decoded JSON into a fully defaulted Scene.
// It holds no state between calls and is safe for concurrent use as long as
// NewID is.
type Validator struct {
	// NewID returns a fresh element id. Defaults to uuid.NewString.
	NewID func() string
}

func NewValidator() *Validator {
	return &Validator{NewID: uuid.NewString}
}

// Validate validates raw with a default Validator.
func Validate(raw any) (*Scene, error) {
	return NewValidator().Validate(raw)
}

// Validate checks raw (the result of decoding JSON into an `any`) against the
// scene contract. On failure it returns ValidationErrors holding every
// violation in document order; no partial scene is returned.
func (v *Validator) Validate(raw any) (*Scene, error) {
	r := &reader{}
	root, ok := r.object("", raw)
	if !ok {
		return nil, r.errs
	}

	s := &Scene{
		Name:             root.requiredString("name"),
		DurationInFrames: root.requiredInteger("durationInFrames", between(MinSceneDuration, MaxSceneDuration)),
		BackgroundColor:  root.str("backgroundColor", DefaultBackgroundColor),
	}
	items, _ := root.list("elements", true, 0)
	s.Elements = v.elements(r, "elements", items, s.DurationInFrames)

	if len(r.errs) > 0 {
		return nil, r.errs
	}
	return s, nil
}

// ValidateElements validates an element array on its own, for edits to a
// scene whose duration is already known.
func (v *Validator) ValidateElements(raw any, sceneDuration int) ([]Element, error) {
	r := &reader{}
	items, ok := raw.([]any)
	if !ok {
		return nil, ValidationErrors{&InvalidFieldTypeError{Path: "elements", Expected: "array", Got: jsonKind(raw)}}
	}
	elements := v.elements(r, "elements", items, sceneDuration)
	if len(r.errs) > 0 {
		return nil, r.errs
	}
	return elements, nil
}

func (v *Validator) elements(r *reader, path string, items []any, sceneDuration int) []Element {
	out := make([]Element, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		el, ok := v.element(r, indexPath(path, i), item, sceneDuration)
		if !ok {
			continue
		}
		if el.ID == "" || seen[el.ID] {
			el.ID = v.freshID(seen)
		}
		seen[el.ID] = true
		out = append(out, el)
	}
	return out
}

func (v *Validator) freshID(seen map[string]bool) string {
	newID := v.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	for {
		id := newID()
		if id != "" && !seen[id] {
			return id
		}
	}
}

func (v *Validator) element(r *reader, path string, raw any, sceneDuration int) (Element, bool) {
	before := len(r.errs)
	o, ok := r.object(path, raw)
	if !ok {
		return Element{}, false
	}

	typeErrs := len(r.errs)
	typ := ElementType(o.requiredString("type"))
	typeRead := len(r.errs) == typeErrs
	el := Element{
		ID:               o.str("id", ""),
		StartFrame:       o.requiredInteger("startFrame", atLeast(0)),
		DurationInFrames: o.requiredInteger("durationInFrames", atLeast(1)),
	}
	if pos, ok := o.child("position", true); ok {
		el.Position = Position{
			X: pos.number("x", unbounded, 0),
			Y: pos.number("y", unbounded, 0),
		}
	}
	el.ZIndex = o.integer("zIndex", atLeast(0), 0)

	cfg, hasConfig := o.child("config", true)
	switch {
	case !typeRead:
	case !typ.IsKnown():
		r.fail(&UnknownElementTypeError{Path: o.at("type"), Type: string(typ)})
	case hasConfig:
		el.Config = readConfig(typ, cfg)
	}

	if len(r.errs) != before {
		return Element{}, false
	}

	// Elements may not outlive their scene: late starts are rejected and
	// overlong durations are clamped to the scene end.
	if sceneDuration >= MinSceneDuration {
		if el.StartFrame >= sceneDuration {
			lo, hi := 0.0, float64(sceneDuration-1)
			r.fail(&FieldOutOfRangeError{Path: o.at("startFrame"), Value: float64(el.StartFrame), Min: &lo, Max: &hi})
			return Element{}, false
		}
		if el.EndFrame() > sceneDuration {
			el.DurationInFrames = sceneDuration - el.StartFrame
		}
	}
	return el, true
}

func readConfig(t ElementType, o *object) Config {
	switch t {
	case TypeAnimatedText:
		return readAnimatedText(o)
	case TypeTypeWriter:
		return readTypeWriter(o)
	case TypeGradientTransition:
		return readGradientTransition(o)
	case TypeParticleSystem:
		return readParticleSystem(o)
	case TypeStaggeredMotion:
		return readStaggeredMotion(o)
	case TypeAnimatedCounter:
		return readAnimatedCounter(o)
	case TypeMatrixRain:
		return readMatrixRain(o)
	case TypeCodeBlock:
		return readCodeBlock(o)
	case TypeScene3D:
		return readScene3D(o)
	case TypeScrollingColumns:
		return readScrollingColumns(o)
	}
	return nil
}

var (
	fontSizeBounds   = between(8, 400)
	fontWeightBounds = between(100, 900)
	staggerBounds    = between(0, 30)
)

func readAnimatedText(o *object) *AnimatedTextConfig {
	c := &AnimatedTextConfig{
		Text:         o.requiredString("text"),
		FontSize:     o.number("fontSize", fontSizeBounds, DefaultTextFontSize),
		FontWeight:   o.number("fontWeight", fontWeightBounds, DefaultTextFontWeight),
		Color:        o.str("color", DefaultColor),
		Split:        Split(o.enum("split", splitNames, string(DefaultTextSplit))),
		SplitStagger: o.number("splitStagger", staggerBounds, DefaultTextSplitStagger),
		Easing:       Easing(o.enum("easing", easingNames, string(DefaultTextEasing))),
	}
	anim := o.childOrEmpty("animation")
	c.Animation = TextAnimation{
		Opacity: anim.rangePtr("opacity"),
		Y:       anim.rangePtr("y"),
		X:       anim.rangePtr("x"),
		Scale:   anim.rangePtr("scale"),
		Rotate:  anim.rangePtr("rotate"),
		Blur:    anim.rangePtr("blur"),
	}
	return c
}

func readTypeWriter(o *object) *TypeWriterConfig {
	c := &TypeWriterConfig{}
	if v, ok := o.get("text"); !ok {
		o.missing("text")
	} else {
		switch t := v.(type) {
		case string:
			c.Text = TextValue{Single: t}
		case []any:
			c.Text = TextValue{List: o.stringList("text", true, 0), IsList: true}
		default:
			o.r.fail(&InvalidFieldTypeError{Path: o.at("text"), Expected: "string or array of strings", Got: jsonKind(v)})
		}
	}
	c.TypeSpeed = o.number("typeSpeed", between(1, 30), DefaultTypeSpeed)
	c.DeleteSpeed = o.number("deleteSpeed", between(1, 30), DefaultDeleteSpeed)
	c.PauseAfterType = o.number("pauseAfterType", atLeast(0), DefaultPauseAfterType)
	c.FontSize = o.number("fontSize", fontSizeBounds, DefaultTypeFontSize)
	c.Color = o.str("color", DefaultColor)
	c.Cursor = o.boolean("cursor", true)
	c.Loop = o.boolean("loop", false)
	c.ErrorRate = o.number("errorRate", between(0, 1), 0)
	return c
}

func readGradientTransition(o *object) *GradientTransitionConfig {
	return &GradientTransitionConfig{
		Gradients: o.stringList("gradients", true, 2),
		Easing:    Easing(o.enum("easing", easingNames, string(DefaultGradientEasing))),
		Width:     o.number("width", unbounded, DefaultCanvasWidth),
		Height:    o.number("height", unbounded, DefaultCanvasHeight),
	}
}

func readParticleSystem(o *object) *ParticleSystemConfig {
	c := &ParticleSystemConfig{
		SpawnRate:        o.number("spawnRate", between(0.1, 50), DefaultSpawnRate),
		MaxParticles:     o.number("maxParticles", between(1, 500), DefaultMaxParticles),
		ParticleLifespan: o.number("particleLifespan", atLeast(1), DefaultParticleLifespan),
		ParticleSize:     o.number("particleSize", between(1, 200), DefaultParticleSize),
		ParticleColor:    o.str("particleColor", DefaultColor),
		ParticleStyle:    ParticleStyle(o.enum("particleStyle", particleStyleNames, string(DefaultParticleStyle))),
	}

	for _, vo := range o.objectList("particleVariants", false, 0) {
		c.ParticleVariants = append(c.ParticleVariants, ParticleVariant{
			Size:    vo.requiredNumber("size", between(1, 200)),
			Color:   vo.requiredString("color"),
			Style:   ParticleStyle(vo.enum("style", particleStyleNames, string(ParticleSolid))),
			Opacity: vo.numberPtr("opacity", between(0, 1)),
		})
	}

	vel := o.childOrEmpty("velocity")
	c.Velocity = Velocity{
		X:         vel.number("x", unbounded, 0),
		Y:         vel.number("y", unbounded, DefaultVelocityY),
		Z:         vel.numberPtr("z", unbounded),
		VarianceX: vel.numberPtr("varianceX", unbounded),
		VarianceY: vel.numberPtr("varianceY", unbounded),
		VarianceZ: vel.numberPtr("varianceZ", unbounded),
	}
	grav := o.childOrEmpty("gravity")
	c.Gravity = Vector2{
		X: grav.number("x", unbounded, 0),
		Y: grav.number("y", unbounded, DefaultGravityY),
	}
	c.Drag = o.number("drag", between(0, 1), DefaultDrag)

	c.Opacity = o.numberList("opacity", false, 1)
	if c.Opacity == nil {
		c.Opacity = DefaultParticleOpacity()
	}

	area := o.childOrEmpty("spawnArea")
	c.SpawnArea = SpawnArea{
		Width:  area.number("width", unbounded, DefaultSpawnAreaWidth),
		Height: area.number("height", unbounded, DefaultSpawnAreaHeight),
		Depth:  area.numberPtr("depth", unbounded),
	}

	c.Perspective = o.numberPtr("perspective", unbounded)
	c.ParticleTexts = o.stringList("particleTexts", false, 0)
	c.ParticleFontSize = o.numberPtr("particleFontSize", unbounded)

	if w, ok := o.child("wiggle", false); ok {
		c.Wiggle = &Wiggle{
			Magnitude: w.requiredNumber("magnitude", between(0, 20)),
			Frequency: w.requiredNumber("frequency", between(0, 5)),
		}
	}
	if d, ok := o.child("drift", false); ok {
		c.Drift = &Vector2{
			X: d.requiredNumber("x", unbounded),
			Y: d.requiredNumber("y", unbounded),
		}
	}
	c.StartFrame = o.intPtr("startFrame", atLeast(0))
	if t, ok := o.child("transition", false); ok {
		c.Transition = &ParticleTransition{
			Opacity:  t.numberList("opacity", false, 0),
			Duration: t.numberPtr("duration", unbounded),
		}
	}
	return c
}

func readStaggeredMotion(o *object) *StaggeredMotionConfig {
	c := &StaggeredMotionConfig{
		Items:            o.stringList("items", true, 1),
		Stagger:          o.number("stagger", staggerBounds, DefaultStagger),
		StaggerDirection: StaggerDirection(o.enum("staggerDirection", staggerDirectionNames, string(DefaultStaggerDirection))),
		FontSize:         o.number("fontSize", fontSizeBounds, DefaultStaggerFontSize),
		Color:            o.str("color", DefaultColor),
		Easing:           Easing(o.enum("easing", easingNames, string(DefaultStaggerEasing))),
	}
	anim := o.childOrEmpty("animation")
	c.Animation = MotionAnimation{
		Opacity: anim.rangePtr("opacity"),
		Y:       anim.rangePtr("y"),
		X:       anim.rangePtr("x"),
		Scale:   anim.rangePtr("scale"),
	}
	return c
}

func readAnimatedCounter(o *object) *AnimatedCounterConfig {
	c := &AnimatedCounterConfig{}
	if v, ok := o.get("values"); !ok {
		o.missing("values")
	} else if _, isList := v.([]any); isList {
		c.Values = CounterValues{List: o.numberList("values", true, 1), IsList: true}
	} else if f, ok := o.r.number(o.at("values"), v, unbounded); ok {
		c.Values = CounterValues{Single: f}
	}
	c.Prefix = o.stringPtr("prefix", false)
	c.Postfix = o.stringPtr("postfix", false)
	c.ToFixed = o.intPtr("toFixed", between(0, 20))
	c.FontSize = o.number("fontSize", fontSizeBounds, DefaultCounterFontSize)
	c.FontWeight = o.number("fontWeight", fontWeightBounds, DefaultCounterFontWeight)
	c.Color = o.str("color", DefaultColor)
	c.Easing = Easing(o.enum("easing", easingNames, string(DefaultCounterEasing)))
	return c
}

func readMatrixRain(o *object) *MatrixRainConfig {
	return &MatrixRainConfig{
		FontSize:     o.number("fontSize", fontSizeBounds, DefaultMatrixFontSize),
		Color:        o.str("color", DefaultMatrixColor),
		Speed:        o.number("speed", between(0.1, 10), DefaultMatrixSpeed),
		Density:      o.number("density", between(0, 1), DefaultMatrixDensity),
		StreamLength: o.number("streamLength", between(1, 100), DefaultMatrixStreamLength),
		Charset:      o.stringPtr("charset", true),
	}
}

func readCodeBlock(o *object) *CodeBlockConfig {
	return &CodeBlockConfig{
		Code:            o.requiredString("code"),
		Language:        o.str("language", DefaultCodeLanguage),
		Theme:           CodeTheme(o.enum("theme", codeThemeNames, string(DefaultCodeTheme))),
		ShowLineNumbers: o.boolean("showLineNumbers", true),
		FontSize:        o.number("fontSize", fontSizeBounds, DefaultCodeFontSize),
		LineHeight:      o.number("lineHeight", between(0.5, 4), DefaultCodeLineHeight),
		Padding:         o.number("padding", between(0, 400), DefaultCodePadding),
	}
}

func readScene3D(o *object) *Scene3DConfig {
	c := &Scene3DConfig{
		Perspective:        o.number("perspective", between(0, 10000), DefaultPerspective),
		TransitionDuration: o.number("transitionDuration", atLeast(1), DefaultTransitionDuration),
		Easing:             Easing(o.enum("easing", easingNames, string(DefaultScene3DEasing))),
		StepDuration:       o.number("stepDuration", atLeast(1), DefaultStepDuration),
		Width:              o.number("width", unbounded, DefaultCanvasWidth),
		Height:             o.number("height", unbounded, DefaultCanvasHeight),
	}
	for _, so := range o.objectList("steps", true, 1) {
		c.Steps = append(c.Steps, Scene3DStep{
			Duration:     float64(so.requiredInteger("duration", atLeast(1))),
			X:            so.numberPtr("x", unbounded),
			Y:            so.numberPtr("y", unbounded),
			Z:            so.numberPtr("z", unbounded),
			RotateX:      so.numberPtr("rotateX", unbounded),
			RotateY:      so.numberPtr("rotateY", unbounded),
			RotateZ:      so.numberPtr("rotateZ", unbounded),
			Content:      so.requiredString("content"),
			ContentStyle: readStyleMap(so, "contentStyle"),
		})
	}
	return c
}

// readStyleMap reads a flat CSS-like map whose values are strings or numbers.
// Numbers are normalized to float64.
func readStyleMap(o *object, key string) map[string]any {
	so, ok := o.child(key, false)
	if !ok || len(so.fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(so.fields))
	for k := range so.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		v := so.fields[k]
		switch t := v.(type) {
		case string:
			out[k] = t
		default:
			if f, ok := toNumber(v); ok {
				out[k] = f
				continue
			}
			o.r.fail(&InvalidFieldTypeError{Path: so.at(k), Expected: "string or number", Got: jsonKind(v)})
		}
	}
	return out
}

func readScrollingColumns(o *object) *ScrollingColumnsConfig {
	c := &ScrollingColumnsConfig{
		Gap:       o.number("gap", atLeast(0), DefaultColumnGap),
		ColumnGap: o.number("columnGap", atLeast(0), DefaultColumnGap),
		Width:     o.number("width", unbounded, DefaultCanvasWidth),
		Height:    o.number("height", unbounded, DefaultCanvasHeight),
	}
	for _, co := range o.objectList("columns", true, 1) {
		col := ScrollingColumn{
			Colors: co.stringList("colors", true, 1),
			Labels: co.stringList("labels", false, 0),
			Speed:  co.numberPtr("speed", atLeast(0)),
		}
		if d := co.enumPtr("direction", columnDirectionNames); d != nil {
			dir := ColumnDirection(*d)
			col.Direction = &dir
		}
		c.Columns = append(c.Columns, col)
	}
	return c
}
