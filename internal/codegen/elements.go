package codegen

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/framecraft/framecraft/internal/scene"
)

// wrapper is the absolutely positioned container most variants sit in.
// Centered variants treat position as their midpoint; the rest as the
// top-left corner.
func wrapper(el scene.Element, centered bool) fields {
	var f fields
	f.str("position", "absolute")
	f.num("left", el.Position.X)
	f.num("top", el.Position.Y)
	if centered {
		f.str("transform", "translate(-50%, -50%)")
	}
	if el.ZIndex > 0 {
		f.integer("zIndex", el.ZIndex)
	}
	return f
}

func (e *emitter) openDiv(style fields) {
	e.w.open(tag("div", props{"style={" + style.String() + "}"}, false))
}

func (e *emitter) closeDiv() {
	e.w.close("</div>")
}

func (e *emitter) animatedText(el scene.Element, c *scene.AnimatedTextConfig) {
	e.use("AnimatedText")

	var transition fields
	transition.str("split", string(c.Split))
	transition.num("splitStagger", c.SplitStagger)
	transition.str("easing", string(c.Easing))
	transition.integer("duration", el.DurationInFrames)
	transition.optRange("opacity", c.Animation.Opacity)
	transition.optRange("y", c.Animation.Y)
	transition.optRange("x", c.Animation.X)
	transition.optRange("scale", c.Animation.Scale)
	transition.optRange("rotate", c.Animation.Rotate)
	transition.optRange("blur", c.Animation.Blur)

	var style fields
	style.num("fontSize", c.FontSize)
	style.num("fontWeight", c.FontWeight)
	style.str("color", c.Color)

	var p props
	p.object("transition", transition)
	p.object("style", style)

	e.openDiv(wrapper(el, true))
	e.w.open(tag("AnimatedText", p, false))
	e.w.line("{" + jsonLiteral(c.Text) + "}")
	e.w.close("</AnimatedText>")
	e.closeDiv()
}

func (e *emitter) typeWriter(el scene.Element, c *scene.TypeWriterConfig) {
	e.use("TypeWriter")

	style := wrapper(el, true)
	style.num("fontSize", c.FontSize)
	style.str("color", c.Color)

	var p props
	if c.Text.IsList {
		list := c.Text.List
		if list == nil {
			list = []string{}
		}
		p.expr("text", jsonLiteral(list))
	} else {
		p.text("text", c.Text.Single)
	}
	p.num("typeSpeed", c.TypeSpeed)
	p.num("deleteSpeed", c.DeleteSpeed)
	p.num("pauseAfterType", c.PauseAfterType)
	p.boolean("cursor", c.Cursor)
	p.boolean("loop", c.Loop)
	p.num("errorRate", c.ErrorRate)

	e.openDiv(style)
	e.w.line(tag("TypeWriter", p, true))
	e.closeDiv()
}

func (e *emitter) gradientTransition(el scene.Element, c *scene.GradientTransitionConfig) {
	e.use("GradientTransition")

	var size fields
	size.num("width", c.Width)
	size.num("height", c.Height)

	var p props
	p.expr("gradient", jsonLiteral(c.Gradients))
	p.integer("duration", el.DurationInFrames)
	p.enum("easing", string(c.Easing))
	p.object("style", size)

	e.openDiv(wrapper(el, false))
	e.w.line(tag("GradientTransition", p, true))
	e.closeDiv()
}

func (e *emitter) particleSystem(el scene.Element, c *scene.ParticleSystemConfig) {
	e.use("Particles", "Spawner", "Behavior")
	textParticles := len(c.ParticleTexts) > 0
	if textParticles {
		e.use("StaggeredMotion")
	}

	var velocity fields
	velocity.num("x", c.Velocity.X)
	velocity.num("y", c.Velocity.Y)
	velocity.optNum("z", c.Velocity.Z)
	velocity.optNum("varianceX", c.Velocity.VarianceX)
	velocity.optNum("varianceY", c.Velocity.VarianceY)
	velocity.optNum("varianceZ", c.Velocity.VarianceZ)

	var area fields
	area.num("width", c.SpawnArea.Width)
	area.num("height", c.SpawnArea.Height)
	area.optNum("depth", c.SpawnArea.Depth)

	var origin fields
	origin.num("x", el.Position.X)
	origin.num("y", el.Position.Y)

	var spawner props
	spawner.num("rate", c.SpawnRate)
	spawner.num("max", c.MaxParticles)
	spawner.num("lifespan", c.ParticleLifespan)
	spawner.object("velocity", velocity)
	spawner.object("area", area)
	spawner.object("position", origin)
	if c.StartFrame != nil {
		spawner.integer("startFrame", *c.StartFrame)
	}
	if t := c.Transition; t != nil {
		var tf fields
		if t.Opacity != nil {
			tf.list("opacity", t.Opacity)
		}
		tf.optNum("duration", t.Duration)
		spawner.object("transition", tf)
	}

	var fill props
	if el.ZIndex > 0 {
		var z fields
		z.integer("zIndex", el.ZIndex)
		fill.object("style", z)
	}
	var particles props
	if c.Perspective != nil {
		var persp fields
		persp.num("perspective", *c.Perspective)
		particles.object("style", persp)
	}

	e.w.open(tag("AbsoluteFill", fill, false))
	e.w.open(tag("Particles", particles, false))
	e.w.open(tag("Spawner", spawner, false))
	switch {
	case textParticles:
		fontSize := c.ParticleSize
		if c.ParticleFontSize != nil {
			fontSize = *c.ParticleFontSize
		}
		for i, word := range c.ParticleTexts {
			e.w.line(textParticle(i, word, fontSize, c.ParticleColor, c.Opacity))
		}
	case len(c.ParticleVariants) > 0:
		for _, v := range c.ParticleVariants {
			e.w.line(particleDiv(v.Size, v.Color, v.Style, v.Opacity))
		}
	default:
		e.w.line(particleDiv(c.ParticleSize, c.ParticleColor, c.ParticleStyle, nil))
	}
	e.w.close("</Spawner>")

	var gravity fields
	gravity.num("x", c.Gravity.X)
	gravity.num("y", c.Gravity.Y)
	var base props
	base.object("gravity", gravity)
	base.num("drag", c.Drag)
	if !textParticles {
		base.expr("opacity", numList(c.Opacity))
	}
	e.w.line(tag("Behavior", base, true))

	if c.Wiggle != nil {
		var wiggle fields
		wiggle.num("magnitude", c.Wiggle.Magnitude)
		wiggle.num("frequency", c.Wiggle.Frequency)
		var p props
		p.object("wiggle", wiggle)
		e.w.line(tag("Behavior", p, true))
	}
	if c.Drift != nil {
		var p props
		p.expr("handler", fmt.Sprintf("(p) => { p.velocity.x += %s; p.velocity.y += %s; }",
			num(c.Drift.X), num(c.Drift.Y)))
		e.w.line(tag("Behavior", p, true))
	}
	e.w.close("</Particles>")
	e.w.close("</AbsoluteFill>")
}

// particleDiv renders one particle sprite. solid is a flat circle, gradient
// fades radially to transparent at 70%, glow adds a box-shadow of 2x size
// blur and 1x size spread.
func particleDiv(size float64, color string, style scene.ParticleStyle, opacity *float64) string {
	var f fields
	f.num("width", size)
	f.num("height", size)
	f.str("borderRadius", "50%")
	switch style {
	case scene.ParticleGradient:
		f.str("background", "radial-gradient(circle, "+color+", transparent 70%)")
	case scene.ParticleGlow:
		f.str("backgroundColor", color)
		f.str("boxShadow", "0 0 "+num(size*2)+"px "+num(size)+"px "+glowColor(color))
	default:
		f.str("backgroundColor", color)
	}
	f.optNum("opacity", opacity)

	var p props
	p.object("style", f)
	return tag("div", p, true)
}

func textParticle(i int, word string, fontSize float64, color string, opacity []float64) string {
	var style fields
	style.num("fontSize", fontSize)
	style.str("color", color)
	style.str("textAlign", "center")
	var transition fields
	transition.list("opacity", opacity)

	var p props
	p.integer("key", i)
	p.object("style", style)
	p.object("transition", transition)
	return tag("StaggeredMotion", p, false) + "{" + jsonLiteral(word) + "}</StaggeredMotion>"
}

func (e *emitter) staggeredMotion(el scene.Element, c *scene.StaggeredMotionConfig) {
	e.use("StaggeredMotion")

	var transition fields
	transition.num("stagger", c.Stagger)
	transition.str("staggerDirection", string(c.StaggerDirection))
	transition.str("easing", string(c.Easing))
	transition.optRange("opacity", c.Animation.Opacity)
	transition.optRange("y", c.Animation.Y)
	transition.optRange("x", c.Animation.X)
	transition.optRange("scale", c.Animation.Scale)

	var itemStyle fields
	itemStyle.num("fontSize", c.FontSize)
	itemStyle.str("color", c.Color)

	var p props
	p.object("transition", transition)

	e.openDiv(wrapper(el, true))
	e.w.open(tag("StaggeredMotion", p, false))
	e.w.open("{" + jsonLiteral(c.Items) + ".map((item, i) => (")
	e.w.line("<div key={i} style={" + itemStyle.String() + "}>{item}</div>")
	e.w.close("))}")
	e.w.close("</StaggeredMotion>")
	e.closeDiv()
}

func (e *emitter) animatedCounter(el scene.Element, c *scene.AnimatedCounterConfig) {
	e.use("AnimatedCounter")

	style := wrapper(el, true)
	style.num("fontSize", c.FontSize)
	style.num("fontWeight", c.FontWeight)
	style.str("color", c.Color)
	style.str("whiteSpace", "nowrap")

	var transition fields
	if c.Values.IsList {
		transition.list("values", c.Values.List)
	} else {
		transition.num("values", c.Values.Single)
	}
	transition.str("easing", string(c.Easing))
	transition.integer("duration", el.DurationInFrames)

	var p props
	p.object("transition", transition)
	p.optText("prefix", c.Prefix)
	p.optText("postfix", c.Postfix)
	if c.ToFixed != nil {
		p.integer("toFixed", *c.ToFixed)
	}

	e.openDiv(style)
	e.w.line(tag("AnimatedCounter", p, true))
	e.closeDiv()
}

func (e *emitter) matrixRain(el scene.Element, c *scene.MatrixRainConfig) {
	e.use("MatrixRain")

	style := wrapper(el, false)
	style.str("width", "100%")
	style.str("height", "100%")
	style.str("overflow", "hidden")

	var p props
	p.num("fontSize", c.FontSize)
	p.text("color", c.Color)
	p.num("speed", c.Speed)
	p.num("density", c.Density)
	p.num("streamLength", c.StreamLength)
	p.optText("charset", c.Charset)

	e.openDiv(style)
	e.w.line(tag("MatrixRain", p, true))
	e.closeDiv()
}

func (e *emitter) codeBlock(el scene.Element, c *scene.CodeBlockConfig) {
	e.use("CodeBlock")

	var p props
	p.text("code", c.Code)
	p.text("language", c.Language)
	p.enum("theme", string(c.Theme))
	p.boolean("showLineNumbers", c.ShowLineNumbers)
	p.num("fontSize", c.FontSize)
	p.num("lineHeight", c.LineHeight)
	p.num("padding", c.Padding)

	e.openDiv(wrapper(el, true))
	e.w.line(tag("CodeBlock", p, true))
	e.closeDiv()
}

func (e *emitter) scene3D(el scene.Element, c *scene.Scene3DConfig) {
	e.use("Scene3D", "Step")

	style := wrapper(el, false)
	style.num("width", c.Width)
	style.num("height", c.Height)

	var fill fields
	fill.str("width", "100%")
	fill.str("height", "100%")

	var p props
	p.num("perspective", c.Perspective)
	p.num("transitionDuration", c.TransitionDuration)
	p.enum("easing", string(c.Easing))
	p.num("stepDuration", c.StepDuration)
	p.object("style", fill)

	e.openDiv(style)
	e.w.open(tag("Scene3D", p, false))
	for i, step := range c.Steps {
		var sp props
		sp.integer("key", i)
		sp.optNum("x", step.X)
		sp.optNum("y", step.Y)
		sp.optNum("z", step.Z)
		sp.optNum("rotateX", step.RotateX)
		sp.optNum("rotateY", step.RotateY)
		sp.optNum("rotateZ", step.RotateZ)
		sp.num("duration", step.Duration)

		e.w.open(tag("Step", sp, false))
		e.openDiv(stepContentStyle(step.ContentStyle))
		e.w.line("{" + jsonLiteral(step.Content) + "}")
		e.closeDiv()
		e.w.close("</Step>")
	}
	e.w.close("</Scene3D>")
	e.closeDiv()
}

// stepContentStyle centers step content and merges the step's own style on
// top, in sorted key order.
func stepContentStyle(extra map[string]any) fields {
	var f fields
	f.str("display", "flex")
	f.str("alignItems", "center")
	f.str("justifyContent", "center")
	f.str("width", "100%")
	f.str("height", "100%")

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := extra[k].(type) {
		case string:
			f.raw(objectKey(k), jsString(v))
		case float64:
			f.raw(objectKey(k), num(v))
		case int:
			f.raw(objectKey(k), strconv.Itoa(v))
		}
	}
	return f
}

func (e *emitter) scrollingColumns(el scene.Element, c *scene.ScrollingColumnsConfig) {
	e.use("ScrollingColumns")

	style := wrapper(el, false)
	style.num("width", c.Width)
	style.num("height", c.Height)
	style.str("overflow", "hidden")

	var fill fields
	fill.str("width", "100%")
	fill.str("height", "100%")

	var p props
	p.expr("columns", jsonLiteral(c.Columns))
	p.num("gap", c.Gap)
	p.num("columnGap", c.ColumnGap)
	p.object("style", fill)

	e.openDiv(style)
	e.w.line(tag("ScrollingColumns", p, true))
	e.closeDiv()
}
