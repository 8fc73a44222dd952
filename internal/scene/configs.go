package scene

import (
	"encoding/json"
	"fmt"
)

// Defaults applied by the validator when a field is absent.
const (
	DefaultBackgroundColor = "#000000"
	DefaultColor           = "#ffffff"
	DefaultCanvasWidth     = 1920
	DefaultCanvasHeight    = 1080

	DefaultTextFontSize     = 64
	DefaultTextFontWeight   = 700
	DefaultTextSplit        = SplitWord
	DefaultTextSplitStagger = 5
	DefaultTextEasing       = EasingEaseOut

	DefaultTypeSpeed      = 3
	DefaultDeleteSpeed    = 2
	DefaultPauseAfterType = 30
	DefaultTypeFontSize   = 48

	DefaultGradientEasing = EasingLinear

	DefaultSpawnRate        = 5
	DefaultMaxParticles     = 100
	DefaultParticleLifespan = 60
	DefaultParticleSize     = 10
	DefaultParticleStyle    = ParticleSolid
	DefaultDrag             = 0.95
	DefaultVelocityY        = -2
	DefaultGravityY         = 0.5
	DefaultSpawnAreaWidth   = 200
	DefaultSpawnAreaHeight  = 50

	DefaultStagger          = 5
	DefaultStaggerDirection = StaggerForward
	DefaultStaggerFontSize  = 48
	DefaultStaggerEasing    = EasingEaseOut

	DefaultCounterFontSize   = 64
	DefaultCounterFontWeight = 700
	DefaultCounterEasing     = EasingEaseOut

	DefaultMatrixFontSize     = 16
	DefaultMatrixColor        = "#00ff41"
	DefaultMatrixSpeed        = 1
	DefaultMatrixDensity      = 0.5
	DefaultMatrixStreamLength = 20

	DefaultCodeLanguage   = "typescript"
	DefaultCodeTheme      = ThemeDark
	DefaultCodeFontSize   = 24
	DefaultCodeLineHeight = 1.5
	DefaultCodePadding    = 24

	DefaultPerspective        = 1000
	DefaultTransitionDuration = 30
	DefaultScene3DEasing      = EasingEaseInOut
	DefaultStepDuration       = 60

	DefaultColumnGap = 16
)

// DefaultParticleOpacity is the opacity keyframe list used when none is given.
func DefaultParticleOpacity() []float64 { return []float64{1, 0} }

type TextAnimation struct {
	Opacity *Range `json:"opacity,omitempty"`
	Y       *Range `json:"y,omitempty"`
	X       *Range `json:"x,omitempty"`
	Scale   *Range `json:"scale,omitempty"`
	Rotate  *Range `json:"rotate,omitempty"`
	Blur    *Range `json:"blur,omitempty"`
}

type AnimatedTextConfig struct {
	Text         string        `json:"text"`
	FontSize     float64       `json:"fontSize"`
	FontWeight   float64       `json:"fontWeight"`
	Color        string        `json:"color"`
	Split        Split         `json:"split"`
	SplitStagger float64       `json:"splitStagger"`
	Easing       Easing        `json:"easing"`
	Animation    TextAnimation `json:"animation"`
}

// TextValue is either a single string or a sequence of strings.
type TextValue struct {
	Single string
	List   []string
	IsList bool
}

func (t TextValue) MarshalJSON() ([]byte, error) {
	if t.IsList {
		if t.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(t.List)
	}
	return json.Marshal(t.Single)
}

func (t *TextValue) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = TextValue{List: list, IsList: true}
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("text must be a string or string array: %w", err)
	}
	*t = TextValue{Single: single}
	return nil
}

type TypeWriterConfig struct {
	Text           TextValue `json:"text"`
	TypeSpeed      float64   `json:"typeSpeed"`
	DeleteSpeed    float64   `json:"deleteSpeed"`
	PauseAfterType float64   `json:"pauseAfterType"`
	FontSize       float64   `json:"fontSize"`
	Color          string    `json:"color"`
	Cursor         bool      `json:"cursor"`
	Loop           bool      `json:"loop"`
	ErrorRate      float64   `json:"errorRate"`
}

type GradientTransitionConfig struct {
	Gradients []string `json:"gradients"`
	Easing    Easing   `json:"easing"`
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
}

type Velocity struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Z         *float64 `json:"z,omitempty"`
	VarianceX *float64 `json:"varianceX,omitempty"`
	VarianceY *float64 `json:"varianceY,omitempty"`
	VarianceZ *float64 `json:"varianceZ,omitempty"`
}

type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type SpawnArea struct {
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Depth  *float64 `json:"depth,omitempty"`
}

type Wiggle struct {
	Magnitude float64 `json:"magnitude"`
	Frequency float64 `json:"frequency"`
}

type ParticleVariant struct {
	Size    float64       `json:"size"`
	Color   string        `json:"color"`
	Style   ParticleStyle `json:"style"`
	Opacity *float64      `json:"opacity,omitempty"`
}

type ParticleTransition struct {
	Opacity  []float64 `json:"opacity,omitempty"`
	Duration *float64  `json:"duration,omitempty"`
}

type ParticleSystemConfig struct {
	SpawnRate        float64             `json:"spawnRate"`
	MaxParticles     float64             `json:"maxParticles"`
	ParticleLifespan float64             `json:"particleLifespan"`
	ParticleSize     float64             `json:"particleSize"`
	ParticleColor    string              `json:"particleColor"`
	ParticleStyle    ParticleStyle       `json:"particleStyle"`
	ParticleVariants []ParticleVariant   `json:"particleVariants,omitempty"`
	Velocity         Velocity            `json:"velocity"`
	Gravity          Vector2             `json:"gravity"`
	Drag             float64             `json:"drag"`
	Opacity          []float64           `json:"opacity"`
	SpawnArea        SpawnArea           `json:"spawnArea"`
	Perspective      *float64            `json:"perspective,omitempty"`
	ParticleTexts    []string            `json:"particleTexts,omitempty"`
	ParticleFontSize *float64            `json:"particleFontSize,omitempty"`
	Wiggle           *Wiggle             `json:"wiggle,omitempty"`
	Drift            *Vector2            `json:"drift,omitempty"`
	StartFrame       *int                `json:"startFrame,omitempty"`
	Transition       *ParticleTransition `json:"transition,omitempty"`
}

type MotionAnimation struct {
	Opacity *Range `json:"opacity,omitempty"`
	Y       *Range `json:"y,omitempty"`
	X       *Range `json:"x,omitempty"`
	Scale   *Range `json:"scale,omitempty"`
}

type StaggeredMotionConfig struct {
	Items            []string         `json:"items"`
	Stagger          float64          `json:"stagger"`
	StaggerDirection StaggerDirection `json:"staggerDirection"`
	FontSize         float64          `json:"fontSize"`
	Color            string           `json:"color"`
	Easing           Easing           `json:"easing"`
	Animation        MotionAnimation  `json:"animation"`
}

// CounterValues is either a single target number or a sequence of values.
type CounterValues struct {
	Single float64
	List   []float64
	IsList bool
}

func (c CounterValues) MarshalJSON() ([]byte, error) {
	if c.IsList {
		return json.Marshal(c.List)
	}
	return json.Marshal(c.Single)
}

func (c *CounterValues) UnmarshalJSON(data []byte) error {
	var list []float64
	if err := json.Unmarshal(data, &list); err == nil {
		*c = CounterValues{List: list, IsList: true}
		return nil
	}
	var single float64
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("values must be a number or number array: %w", err)
	}
	*c = CounterValues{Single: single}
	return nil
}

type AnimatedCounterConfig struct {
	Values     CounterValues `json:"values"`
	Prefix     *string       `json:"prefix,omitempty"`
	Postfix    *string       `json:"postfix,omitempty"`
	ToFixed    *int          `json:"toFixed,omitempty"`
	FontSize   float64       `json:"fontSize"`
	FontWeight float64       `json:"fontWeight"`
	Color      string        `json:"color"`
	Easing     Easing        `json:"easing"`
}

type MatrixRainConfig struct {
	FontSize     float64 `json:"fontSize"`
	Color        string  `json:"color"`
	Speed        float64 `json:"speed"`
	Density      float64 `json:"density"`
	StreamLength float64 `json:"streamLength"`
	Charset      *string `json:"charset,omitempty"`
}

type CodeBlockConfig struct {
	Code            string    `json:"code"`
	Language        string    `json:"language"`
	Theme           CodeTheme `json:"theme"`
	ShowLineNumbers bool      `json:"showLineNumbers"`
	FontSize        float64   `json:"fontSize"`
	LineHeight      float64   `json:"lineHeight"`
	Padding         float64   `json:"padding"`
}

// Scene3DStep is one camera stop. ContentStyle values are strings or float64.
type Scene3DStep struct {
	Duration     float64        `json:"duration"`
	X            *float64       `json:"x,omitempty"`
	Y            *float64       `json:"y,omitempty"`
	Z            *float64       `json:"z,omitempty"`
	RotateX      *float64       `json:"rotateX,omitempty"`
	RotateY      *float64       `json:"rotateY,omitempty"`
	RotateZ      *float64       `json:"rotateZ,omitempty"`
	Content      string         `json:"content"`
	ContentStyle map[string]any `json:"contentStyle,omitempty"`
}

type Scene3DConfig struct {
	Perspective        float64       `json:"perspective"`
	TransitionDuration float64       `json:"transitionDuration"`
	Easing             Easing        `json:"easing"`
	StepDuration       float64       `json:"stepDuration"`
	Steps              []Scene3DStep `json:"steps"`
	Width              float64       `json:"width"`
	Height             float64       `json:"height"`
}

type ScrollingColumn struct {
	Colors    []string         `json:"colors"`
	Labels    []string         `json:"labels,omitempty"`
	Speed     *float64         `json:"speed,omitempty"`
	Direction *ColumnDirection `json:"direction,omitempty"`
}

type ScrollingColumnsConfig struct {
	Columns   []ScrollingColumn `json:"columns"`
	Gap       float64           `json:"gap"`
	ColumnGap float64           `json:"columnGap"`
	Width     float64           `json:"width"`
	Height    float64           `json:"height"`
}

func (*AnimatedTextConfig) ElementType() ElementType       { return TypeAnimatedText }
func (*TypeWriterConfig) ElementType() ElementType         { return TypeTypeWriter }
func (*GradientTransitionConfig) ElementType() ElementType { return TypeGradientTransition }
func (*ParticleSystemConfig) ElementType() ElementType     { return TypeParticleSystem }
func (*StaggeredMotionConfig) ElementType() ElementType    { return TypeStaggeredMotion }
func (*AnimatedCounterConfig) ElementType() ElementType    { return TypeAnimatedCounter }
func (*MatrixRainConfig) ElementType() ElementType         { return TypeMatrixRain }
func (*CodeBlockConfig) ElementType() ElementType          { return TypeCodeBlock }
func (*Scene3DConfig) ElementType() ElementType            { return TypeScene3D }
func (*ScrollingColumnsConfig) ElementType() ElementType   { return TypeScrollingColumns }

func (*AnimatedTextConfig) sealed()       {}
func (*TypeWriterConfig) sealed()         {}
func (*GradientTransitionConfig) sealed() {}
func (*ParticleSystemConfig) sealed()     {}
func (*StaggeredMotionConfig) sealed()    {}
func (*AnimatedCounterConfig) sealed()    {}
func (*MatrixRainConfig) sealed()         {}
func (*CodeBlockConfig) sealed()          {}
func (*Scene3DConfig) sealed()            {}
func (*ScrollingColumnsConfig) sealed()   {}

// newConfig returns an empty config for t, or nil for an unknown tag.
func newConfig(t ElementType) Config {
	switch t {
	case TypeAnimatedText:
		return &AnimatedTextConfig{}
	case TypeTypeWriter:
		return &TypeWriterConfig{}
	case TypeGradientTransition:
		return &GradientTransitionConfig{}
	case TypeParticleSystem:
		return &ParticleSystemConfig{}
	case TypeStaggeredMotion:
		return &StaggeredMotionConfig{}
	case TypeAnimatedCounter:
		return &AnimatedCounterConfig{}
	case TypeMatrixRain:
		return &MatrixRainConfig{}
	case TypeCodeBlock:
		return &CodeBlockConfig{}
	case TypeScene3D:
		return &Scene3DConfig{}
	case TypeScrollingColumns:
		return &ScrollingColumnsConfig{}
	}
	return nil
}
