package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Error kinds, used by API responses and logs.
const (
	KindMissingRequiredField = "missing_required_field"
	KindFieldOutOfRange      = "field_out_of_range"
	KindUnknownElementType   = "unknown_element_type"
	KindInvalidEnumValue     = "invalid_enum_value"
	KindMinimumArrayLength   = "minimum_array_length"
	KindInvalidFieldType     = "invalid_field_type"
)

// FieldError is a single violation located at a dotted field path such as
// "elements[2].config.fontSize".
type FieldError interface {
	error
	FieldPath() string
	Kind() string
}

type MissingRequiredFieldError struct {
	Path string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("%s: required field is missing", e.Path)
}
func (e *MissingRequiredFieldError) FieldPath() string { return e.Path }
func (e *MissingRequiredFieldError) Kind() string      { return KindMissingRequiredField }

// FieldOutOfRangeError reports a numeric bound violation. A nil Min or Max
// means the bound is open on that side.
type FieldOutOfRangeError struct {
	Path  string
	Value float64
	Min   *float64
	Max   *float64
}

func (e *FieldOutOfRangeError) Error() string {
	lo, hi := "-inf", "+inf"
	if e.Min != nil {
		lo = formatFloat(*e.Min)
	}
	if e.Max != nil {
		hi = formatFloat(*e.Max)
	}
	return fmt.Sprintf("%s: %s is out of range [%s, %s]", e.Path, formatFloat(e.Value), lo, hi)
}
func (e *FieldOutOfRangeError) FieldPath() string { return e.Path }
func (e *FieldOutOfRangeError) Kind() string      { return KindFieldOutOfRange }

type UnknownElementTypeError struct {
	Path string
	Type string
}

func (e *UnknownElementTypeError) Error() string {
	return fmt.Sprintf("%s: unknown element type %q", e.Path, e.Type)
}
func (e *UnknownElementTypeError) FieldPath() string { return e.Path }
func (e *UnknownElementTypeError) Kind() string      { return KindUnknownElementType }

type InvalidEnumValueError struct {
	Path    string
	Value   string
	Allowed []string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("%s: %q is not one of %s", e.Path, e.Value, strings.Join(e.Allowed, ", "))
}
func (e *InvalidEnumValueError) FieldPath() string { return e.Path }
func (e *InvalidEnumValueError) Kind() string      { return KindInvalidEnumValue }

type MinimumArrayLengthError struct {
	Path     string
	Length   int
	Required int
}

func (e *MinimumArrayLengthError) Error() string {
	return fmt.Sprintf("%s: has %d entries, needs at least %d", e.Path, e.Length, e.Required)
}
func (e *MinimumArrayLengthError) FieldPath() string { return e.Path }
func (e *MinimumArrayLengthError) Kind() string      { return KindMinimumArrayLength }

// InvalidFieldTypeError reports a value of the wrong JSON shape, for example a
// string where a number is expected or a fractional frame count.
type InvalidFieldTypeError struct {
	Path     string
	Expected string
	Got      string
}

func (e *InvalidFieldTypeError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Path, e.Expected, e.Got)
}
func (e *InvalidFieldTypeError) FieldPath() string { return e.Path }
func (e *InvalidFieldTypeError) Kind() string      { return KindInvalidFieldType }

// ValidationErrors holds every violation found in one validation pass, in
// document order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "scene validation failed"
	case 1:
		return "invalid scene: " + v[0].Error()
	}
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("invalid scene (%d errors): %s", len(v), strings.Join(msgs, "; "))
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}

// First returns the first violation, or nil.
func (v ValidationErrors) First() FieldError {
	if len(v) == 0 {
		return nil
	}
	return v[0]
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
