package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/framecraft/framecraft/internal/scene"
)

const indentUnit = "  "

// writer collects output lines at a tracked nesting depth.
type writer struct {
	lines []string
	depth int
}

func (w *writer) line(s string) {
	w.lines = append(w.lines, strings.Repeat(indentUnit, w.depth)+s)
}

func (w *writer) blank() {
	w.lines = append(w.lines, "")
}

// open writes s and nests the following lines one level deeper.
func (w *writer) open(s string) {
	w.line(s)
	w.depth++
}

func (w *writer) close(s string) {
	w.depth--
	w.line(s)
}

func (w *writer) String() string {
	return strings.Join(w.lines, "\n")
}

// props accumulates JSX attributes in insertion order.
type props []string

// expr adds name={code}.
func (p *props) expr(name, code string) {
	*p = append(*p, name+"={"+code+"}")
}

// enum adds name="value". Only for values from a closed set, which never
// need escaping.
func (p *props) enum(name, value string) {
	*p = append(*p, name+`="`+value+`"`)
}

func (p *props) num(name string, v float64) {
	p.expr(name, num(v))
}

func (p *props) optNum(name string, v *float64) {
	if v != nil {
		p.num(name, *v)
	}
}

func (p *props) integer(name string, v int) {
	p.expr(name, strconv.Itoa(v))
}

func (p *props) boolean(name string, v bool) {
	p.expr(name, strconv.FormatBool(v))
}

// text adds a free-form string as a JSON string expression.
func (p *props) text(name, v string) {
	p.expr(name, jsonLiteral(v))
}

func (p *props) optText(name string, v *string) {
	if v != nil {
		p.text(name, *v)
	}
}

func (p *props) object(name string, f fields) {
	p.expr(name, f.String())
}

// tag renders <name props...> or its self-closing form.
func tag(name string, p props, selfClosing bool) string {
	var b strings.Builder
	b.WriteString("<" + name)
	for _, attr := range p {
		b.WriteString(" " + attr)
	}
	if selfClosing {
		b.WriteString(" />")
	} else {
		b.WriteString(">")
	}
	return b.String()
}

// fields accumulates the entries of a JS object literal. Optional values are
// appended only when present, so absent keys never reach the output.
type fields []string

func (f *fields) raw(key, code string) {
	*f = append(*f, key+": "+code)
}

func (f *fields) num(key string, v float64) {
	f.raw(key, num(v))
}

func (f *fields) optNum(key string, v *float64) {
	if v != nil {
		f.num(key, *v)
	}
}

func (f *fields) integer(key string, v int) {
	f.raw(key, strconv.Itoa(v))
}

func (f *fields) str(key, v string) {
	f.raw(key, jsString(v))
}

func (f *fields) list(key string, vs []float64) {
	f.raw(key, numList(vs))
}

func (f *fields) optRange(key string, r *scene.Range) {
	if r != nil {
		f.raw(key, numList(r[:]))
	}
}

func (f fields) String() string {
	if len(f) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(f, ", ") + " }"
}

// num formats a number the same way on every platform: shortest
// round-tripping decimal, no exponent, no negative zero.
func num(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func numList(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = num(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// jsString quotes s as a single-quoted JS string literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// jsonLiteral renders v as compact JSON, which is also a valid JS expression.
// Callers pass strings, string slices and validated structs only, none of
// which can fail to encode.
func jsonLiteral(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return strings.TrimSuffix(buf.String(), "\n")
}

// objectKey returns k bare when it is a valid identifier, quoted otherwise.
func objectKey(k string) string {
	if k == "" {
		return "''"
	}
	for i, r := range k {
		isLetter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isLetter && (i == 0 || !isDigit) {
			return jsString(k)
		}
	}
	return k
}
