// Package scene defines the scene description model: the closed set of element
// variants, their field bounds and defaults, and the validator that turns
// untrusted JSON (usually LLM output) into a fully defaulted Scene.
package scene

// ElementType is the discriminator of the element union.
type ElementType string

const (
	TypeAnimatedText       ElementType = "AnimatedText"
	TypeTypeWriter         ElementType = "TypeWriter"
	TypeGradientTransition ElementType = "GradientTransition"
	TypeParticleSystem     ElementType = "ParticleSystem"
	TypeStaggeredMotion    ElementType = "StaggeredMotion"
	TypeAnimatedCounter    ElementType = "AnimatedCounter"
	TypeMatrixRain         ElementType = "MatrixRain"
	TypeCodeBlock          ElementType = "CodeBlock"
	TypeScene3D            ElementType = "Scene3D"
	TypeScrollingColumns   ElementType = "ScrollingColumns"
)

// ElementTypes lists every known variant in declaration order.
var ElementTypes = []ElementType{
	TypeAnimatedText,
	TypeTypeWriter,
	TypeGradientTransition,
	TypeParticleSystem,
	TypeStaggeredMotion,
	TypeAnimatedCounter,
	TypeMatrixRain,
	TypeCodeBlock,
	TypeScene3D,
	TypeScrollingColumns,
}

// IsKnown reports whether t is one of the ten variants.
func (t ElementType) IsKnown() bool {
	for _, known := range ElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Easing string

const (
	EasingLinear         Easing = "linear"
	EasingEaseIn         Easing = "easeIn"
	EasingEaseOut        Easing = "easeOut"
	EasingEaseInOut      Easing = "easeInOut"
	EasingEaseInCubic    Easing = "easeInCubic"
	EasingEaseOutCubic   Easing = "easeOutCubic"
	EasingEaseInOutCubic Easing = "easeInOutCubic"
	EasingSpring         Easing = "spring"
)

var easingNames = []string{
	string(EasingLinear),
	string(EasingEaseIn),
	string(EasingEaseOut),
	string(EasingEaseInOut),
	string(EasingEaseInCubic),
	string(EasingEaseOutCubic),
	string(EasingEaseInOutCubic),
	string(EasingSpring),
}

type Split string

const (
	SplitNone      Split = "none"
	SplitWord      Split = "word"
	SplitCharacter Split = "character"
	SplitLine      Split = "line"
)

var splitNames = []string{"none", "word", "character", "line"}

type StaggerDirection string

const (
	StaggerForward StaggerDirection = "forward"
	StaggerReverse StaggerDirection = "reverse"
	StaggerCenter  StaggerDirection = "center"
	StaggerRandom  StaggerDirection = "random"
)

var staggerDirectionNames = []string{"forward", "reverse", "center", "random"}

type ParticleStyle string

const (
	ParticleSolid    ParticleStyle = "solid"
	ParticleGradient ParticleStyle = "gradient"
	ParticleGlow     ParticleStyle = "glow"
)

var particleStyleNames = []string{"solid", "gradient", "glow"}

type CodeTheme string

const (
	ThemeDark  CodeTheme = "dark"
	ThemeLight CodeTheme = "light"
)

var codeThemeNames = []string{"dark", "light"}

type ColumnDirection string

const (
	ColumnUp   ColumnDirection = "up"
	ColumnDown ColumnDirection = "down"
)

var columnDirectionNames = []string{"up", "down"}

// Position is a pixel coordinate. Whether it marks the element's center or
// its top-left corner depends on the variant.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Range is an ordered [from, to] animation pair.
type Range [2]float64

// Scene is the validated scene graph. The store adds identity and lifecycle
// fields around it.
type Scene struct {
	Name             string    `json:"name"`
	DurationInFrames int       `json:"durationInFrames"`
	BackgroundColor  string    `json:"backgroundColor"`
	Elements         []Element `json:"elements"`
}

// Element is one visual unit of a scene. Config carries the variant payload
// and determines the element's type.
type Element struct {
	ID               string
	StartFrame       int
	DurationInFrames int
	Position         Position
	ZIndex           int
	Config           Config
}

// Type returns the variant tag, or "" when no config is attached.
func (e Element) Type() ElementType {
	if e.Config == nil {
		return ""
	}
	return e.Config.ElementType()
}

// EndFrame is the first frame after the element's visible range.
func (e Element) EndFrame() int {
	return e.StartFrame + e.DurationInFrames
}

// Config is implemented only by the variant config types of this package.
type Config interface {
	ElementType() ElementType
	sealed()
}
