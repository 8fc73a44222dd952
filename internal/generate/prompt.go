package generate

import (
	"fmt"
	"strings"
)

// ProjectContext tells the model where the scene will live.
type ProjectContext struct {
	SceneCount int `json:"sceneCount"`
	FPS        int `json:"fps"`
	Width      int `json:"width"`
	Height     int `json:"height"`
}

// DefaultProjectContext is used when a caller sends no context.
func DefaultProjectContext() ProjectContext {
	return ProjectContext{SceneCount: 1, FPS: 30, Width: 1920, Height: 1080}
}

// withDefaults fills zero fields from DefaultProjectContext.
func (c ProjectContext) withDefaults() ProjectContext {
	d := DefaultProjectContext()
	if c.SceneCount <= 0 {
		c.SceneCount = d.SceneCount
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	return c
}

// BuildUserPrompt wraps the user's request with canvas and position details.
func BuildUserPrompt(prompt string, c ProjectContext) string {
	c = c.withDefaults()
	var b strings.Builder
	b.WriteString("Create a scene for the following prompt:\n\n")
	fmt.Fprintf(&b, "%q\n\n", strings.TrimSpace(prompt))
	b.WriteString("Project context:\n")
	fmt.Fprintf(&b, "- Canvas: %dx%d pixels\n", c.Width, c.Height)
	fmt.Fprintf(&b, "- FPS: %d\n", c.FPS)
	fmt.Fprintf(&b, "- This is scene #%d in the project\n\n", c.SceneCount)
	b.WriteString("Generate a rich, visually appealing scene. Use multiple layered elements for depth.\n")
	b.WriteString("Return ONLY valid JSON matching the scene schema.")
	return b.String()
}

// SystemPrompt describes the scene schema to the model.
const SystemPrompt = `You are a motion graphics director. You turn a short text prompt into a JSON scene configuration that is rendered with the remotion-bits component library.

Return a single JSON object:
{
  "name": short descriptive name,
  "durationInFrames": total frames (at 30fps, 150 frames = 5 seconds),
  "backgroundColor": CSS color,
  "elements": [ ... ]
}

Every element has:
- "type": one of the component types below
- "id": unique string
- "startFrame": first frame the element is visible (0 = scene start)
- "durationInFrames": how long it is visible; startFrame + durationInFrames must not exceed the scene duration
- "position": { "x", "y" } in pixels on the canvas
- "zIndex": layer order, higher draws on top
- "config": the component settings

Easings: "linear", "easeIn", "easeOut", "easeInOut", "easeInCubic", "easeOutCubic", "easeInOutCubic", "spring".

## AnimatedText
text (required), fontSize 8-400 (64), fontWeight 100-900 (700), color, split "none"|"word"|"character"|"line" ("word"), splitStagger 0-30 (5), easing ("easeOut"), animation { opacity?, y?, x?, scale?, rotate?, blur? } where each key is a [from, to] pair.

## TypeWriter
text (string or array of strings, required), typeSpeed 1-30 (3), deleteSpeed 1-30 (2), pauseAfterType (30), fontSize 8-400 (48), color, cursor (true), loop (false), errorRate 0-1 (0).

## GradientTransition
gradients: at least two CSS gradient strings, easing ("linear"), width (1920), height (1080). Use position { "x": 0, "y": 0 } because gradients fill from the top-left corner.

## ParticleSystem
spawnRate 0.1-50 (5), maxParticles 1-500 (100), particleLifespan (60), particleSize 1-200 (10), particleColor, particleStyle "solid"|"gradient"|"glow", particleVariants [{ size, color, style, opacity? }], velocity { x, y, z?, varianceX?, varianceY?, varianceZ? }, gravity { x, y }, drag 0-1 (0.95), opacity keyframes e.g. [1, 0.5, 0], spawnArea { width, height, depth? }, perspective?, wiggle { magnitude 0-20, frequency 0-5 }?, drift { x, y }?, startFrame? (pre-fills the screen), transition { opacity?, duration? }?, particleTexts? (strings drawn as particles), particleFontSize?.
Position is the centre of the spawn area; particles may travel anywhere on screen. Snow falling from the top: position { "x": 960, "y": -200 }, spawnArea { "width": 1920, "height": 0 }, gradient style, a small wiggle and drift, startFrame 200. Fireflies: glow style with a large wiggle.

## StaggeredMotion
items (required strings), stagger 0-30 (5), staggerDirection "forward"|"reverse"|"center"|"random", fontSize 8-400 (48), color, easing, animation { opacity?, y?, x?, scale? } as [from, to] pairs.

## AnimatedCounter
values (number or array of numbers, required), prefix?, postfix?, toFixed 0-20?, fontSize 8-400 (64), fontWeight 100-900 (700), color, easing ("easeOut").

## MatrixRain
fontSize 8-400 (16), color ("#00ff41"), speed 0.1-10 (1), density 0-1 (0.5), streamLength 1-100 (20), charset?.

## CodeBlock
code (required), language ("typescript"), theme "dark"|"light", showLineNumbers (true), fontSize 8-400 (24), lineHeight 0.5-4 (1.5), padding 0-400 (24).

## Scene3D
steps (at least one): { duration (frames), content (text), x?, y?, z?, rotateX?, rotateY?, rotateZ?, contentStyle? }, perspective 0-10000 (1000), transitionDuration (30), easing ("easeInOut"), stepDuration (60), width (1920), height (1080).

## ScrollingColumns
columns (at least one): { colors (at least one CSS color), labels?, speed?, direction "up"|"down" }, gap (16), columnGap (16), width (1920), height (1080).

## Positioning
Text, counters, code and staggered items are positioned by their centre; the canvas centre is (960, 540) on a 1920x1080 canvas. Gradients, matrix rain, 3D scenes and scrolling columns are positioned by their top-left corner.

## Guidelines
1. Think like a motion designer: layer a background, a focal element and an accent.
2. Stagger entrances instead of starting everything on frame 0.
3. Keep scenes between 90 and 300 frames.
4. Use colors that match the mood of the prompt.
5. Every element id must be unique.
6. Output JSON only, with no commentary or code fences.`
