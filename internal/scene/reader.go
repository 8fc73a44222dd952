package scene

import (
	"encoding/json"
	"fmt"
	"math"
)

type bounds struct {
	min *float64
	max *float64
}

func between(lo, hi float64) bounds { return bounds{min: &lo, max: &hi} }
func atLeast(lo float64) bounds     { return bounds{min: &lo} }

var unbounded = bounds{}

// maxInteger caps every integer field so the conversion to int is exact.
const maxInteger = math.MaxInt32

func (b bounds) contains(v float64) bool {
	if b.min != nil && v < *b.min {
		return false
	}
	if b.max != nil && v > *b.max {
		return false
	}
	return true
}

// reader accumulates violations while walking untyped input.
type reader struct {
	errs ValidationErrors
}

func (r *reader) fail(err FieldError) {
	r.errs = append(r.errs, err)
}

func (r *reader) object(path string, v any) (*object, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		r.fail(&InvalidFieldTypeError{Path: path, Expected: "object", Got: jsonKind(v)})
		return nil, false
	}
	return &object{r: r, path: path, fields: m}, true
}

func (r *reader) number(path string, v any, b bounds) (float64, bool) {
	f, ok := toNumber(v)
	if !ok {
		r.fail(&InvalidFieldTypeError{Path: path, Expected: "number", Got: jsonKind(v)})
		return 0, false
	}
	if !b.contains(f) {
		r.fail(&FieldOutOfRangeError{Path: path, Value: f, Min: b.min, Max: b.max})
		return 0, false
	}
	return f, true
}

func (r *reader) integer(path string, v any, b bounds) (int, bool) {
	f, ok := toNumber(v)
	if !ok {
		r.fail(&InvalidFieldTypeError{Path: path, Expected: "integer", Got: jsonKind(v)})
		return 0, false
	}
	if f != math.Trunc(f) {
		r.fail(&InvalidFieldTypeError{Path: path, Expected: "integer", Got: formatFloat(f)})
		return 0, false
	}
	if !b.contains(f) {
		r.fail(&FieldOutOfRangeError{Path: path, Value: f, Min: b.min, Max: b.max})
		return 0, false
	}
	if math.Abs(f) > maxInteger {
		lo, hi := float64(-maxInteger), float64(maxInteger)
		if b.min != nil {
			lo = *b.min
		}
		r.fail(&FieldOutOfRangeError{Path: path, Value: f, Min: &lo, Max: &hi})
		return 0, false
	}
	return int(f), true
}

func (r *reader) str(path string, v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		r.fail(&InvalidFieldTypeError{Path: path, Expected: "string", Got: jsonKind(v)})
		return "", false
	}
	return s, true
}

// object is a view over one JSON object with its path prefix.
type object struct {
	r      *reader
	path   string
	fields map[string]any
}

func (o *object) at(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

// get treats explicit nulls as absent.
func (o *object) get(key string) (any, bool) {
	v, ok := o.fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (o *object) missing(key string) {
	o.r.fail(&MissingRequiredFieldError{Path: o.at(key)})
}

func (o *object) number(key string, b bounds, def float64) float64 {
	v, ok := o.get(key)
	if !ok {
		return def
	}
	f, ok := o.r.number(o.at(key), v, b)
	if !ok {
		return def
	}
	return f
}

func (o *object) requiredNumber(key string, b bounds) float64 {
	v, ok := o.get(key)
	if !ok {
		o.missing(key)
		return 0
	}
	f, _ := o.r.number(o.at(key), v, b)
	return f
}

func (o *object) numberPtr(key string, b bounds) *float64 {
	v, ok := o.get(key)
	if !ok {
		return nil
	}
	f, ok := o.r.number(o.at(key), v, b)
	if !ok {
		return nil
	}
	return &f
}

func (o *object) integer(key string, b bounds, def int) int {
	v, ok := o.get(key)
	if !ok {
		return def
	}
	n, ok := o.r.integer(o.at(key), v, b)
	if !ok {
		return def
	}
	return n
}

func (o *object) requiredInteger(key string, b bounds) int {
	v, ok := o.get(key)
	if !ok {
		o.missing(key)
		return 0
	}
	n, _ := o.r.integer(o.at(key), v, b)
	return n
}

func (o *object) intPtr(key string, b bounds) *int {
	v, ok := o.get(key)
	if !ok {
		return nil
	}
	n, ok := o.r.integer(o.at(key), v, b)
	if !ok {
		return nil
	}
	return &n
}

func (o *object) str(key, def string) string {
	v, ok := o.get(key)
	if !ok {
		return def
	}
	s, ok := o.r.str(o.at(key), v)
	if !ok {
		return def
	}
	return s
}

func (o *object) requiredString(key string) string {
	v, ok := o.get(key)
	if !ok {
		o.missing(key)
		return ""
	}
	s, _ := o.r.str(o.at(key), v)
	return s
}

func (o *object) stringPtr(key string, nonEmpty bool) *string {
	v, ok := o.get(key)
	if !ok {
		return nil
	}
	s, ok := o.r.str(o.at(key), v)
	if !ok {
		return nil
	}
	if nonEmpty && s == "" {
		o.r.fail(&InvalidFieldTypeError{Path: o.at(key), Expected: "non-empty string", Got: "empty string"})
		return nil
	}
	return &s
}

func (o *object) boolean(key string, def bool) bool {
	v, ok := o.get(key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		o.r.fail(&InvalidFieldTypeError{Path: o.at(key), Expected: "boolean", Got: jsonKind(v)})
		return def
	}
	return b
}

func (o *object) enum(key string, allowed []string, def string) string {
	v, ok := o.get(key)
	if !ok {
		return def
	}
	s, ok := o.checkEnum(key, v, allowed)
	if !ok {
		return def
	}
	return s
}

func (o *object) enumPtr(key string, allowed []string) *string {
	v, ok := o.get(key)
	if !ok {
		return nil
	}
	s, ok := o.checkEnum(key, v, allowed)
	if !ok {
		return nil
	}
	return &s
}

func (o *object) checkEnum(key string, v any, allowed []string) (string, bool) {
	s, ok := o.r.str(o.at(key), v)
	if !ok {
		return "", false
	}
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	o.r.fail(&InvalidEnumValueError{Path: o.at(key), Value: s, Allowed: allowed})
	return "", false
}

// child returns the nested object at key. Absent optional objects yield
// (nil, false) without recording an error.
func (o *object) child(key string, required bool) (*object, bool) {
	v, ok := o.get(key)
	if !ok {
		if required {
			o.missing(key)
		}
		return nil, false
	}
	return o.r.object(o.at(key), v)
}

// childOrEmpty returns the nested object at key, or an empty one when absent
// so that every field falls back to its default.
func (o *object) childOrEmpty(key string) *object {
	if child, ok := o.child(key, false); ok {
		return child
	}
	return &object{r: o.r, path: o.at(key), fields: map[string]any{}}
}

func (o *object) list(key string, required bool, minLen int) ([]any, bool) {
	v, ok := o.get(key)
	if !ok {
		if required {
			o.missing(key)
		}
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		o.r.fail(&InvalidFieldTypeError{Path: o.at(key), Expected: "array", Got: jsonKind(v)})
		return nil, false
	}
	if len(items) < minLen {
		o.r.fail(&MinimumArrayLengthError{Path: o.at(key), Length: len(items), Required: minLen})
		return nil, false
	}
	return items, true
}

func (o *object) stringList(key string, required bool, minLen int) []string {
	items, ok := o.list(key, required, minLen)
	if !ok || len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := o.r.str(indexPath(o.at(key), i), item)
		if ok {
			out = append(out, s)
		}
	}
	return out
}

func (o *object) numberList(key string, required bool, minLen int) []float64 {
	items, ok := o.list(key, required, minLen)
	if !ok || len(items) == 0 {
		return nil
	}
	out := make([]float64, 0, len(items))
	for i, item := range items {
		f, ok := o.r.number(indexPath(o.at(key), i), item, unbounded)
		if ok {
			out = append(out, f)
		}
	}
	return out
}

// rangePtr reads an optional [from, to] pair, preserving order.
func (o *object) rangePtr(key string) *Range {
	v, ok := o.get(key)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		got := jsonKind(v)
		if ok {
			got = fmt.Sprintf("array of length %d", len(items))
		}
		o.r.fail(&InvalidFieldTypeError{Path: o.at(key), Expected: "[from, to] number pair", Got: got})
		return nil
	}
	var out Range
	for i, item := range items {
		f, ok := o.r.number(indexPath(o.at(key), i), item, unbounded)
		if !ok {
			return nil
		}
		out[i] = f
	}
	return &out
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := toNumber(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// objectList reads an array of objects, skipping entries that are not objects
// after recording the violation.
func (o *object) objectList(key string, required bool, minLen int) []*object {
	items, ok := o.list(key, required, minLen)
	if !ok {
		return nil
	}
	out := make([]*object, 0, len(items))
	for i, item := range items {
		if child, ok := o.r.object(indexPath(o.at(key), i), item); ok {
			out = append(out, child)
		}
	}
	return out
}
