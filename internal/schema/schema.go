package schema

import (
	"fmt"
	"math"
)

// ParamType enumerates the value types a parameter spec can declare.
type ParamType string

const (
	TypeInt    ParamType = "int"
	TypeFloat  ParamType = "float"
	TypeString ParamType = "str"
)

// ParamSpec describes a single tunable strategy parameter.
type ParamSpec struct {
	Type        ParamType
	Default     any
	Min         *float64
	Max         *float64
	Options     []string
	Description string
}

// Schema maps parameter names to their specs.
type Schema map[string]ParamSpec

// ValidationError reports why a parameter value failed validation.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Param, e.Reason)
}

// Bound is a convenience constructor for Min/Max pointers.
func Bound(v float64) *float64 { return &v }

// Validate checks values against the schema. It returns nil when every
// declared parameter is either present with a conforming value or carries
// a default. Keys in values that the schema does not declare are ignored.
// Validate never mutates its inputs.
func Validate(s Schema, values map[string]any) error {
	for name, spec := range s {
		raw, ok := values[name]
		if !ok {
			if spec.Default == nil {
				return &ValidationError{Param: name, Reason: "missing and no default declared"}
			}
			continue
		}

		switch spec.Type {
		case TypeInt:
			n, ok := asIntegral(raw)
			if !ok {
				return &ValidationError{Param: name, Reason: fmt.Sprintf("expected integer, got %T (%v)", raw, raw)}
			}
			if err := checkBounds(name, spec, float64(n)); err != nil {
				return err
			}
		case TypeFloat:
			f, ok := asFloat(raw)
			if !ok {
				return &ValidationError{Param: name, Reason: fmt.Sprintf("expected number, got %T (%v)", raw, raw)}
			}
			if err := checkBounds(name, spec, f); err != nil {
				return err
			}
		case TypeString:
			str, ok := raw.(string)
			if !ok {
				return &ValidationError{Param: name, Reason: fmt.Sprintf("expected string, got %T", raw)}
			}
			if len(spec.Options) > 0 && !contains(spec.Options, str) {
				return &ValidationError{Param: name, Reason: fmt.Sprintf("%q is not one of %v", str, spec.Options)}
			}
		default:
			return &ValidationError{Param: name, Reason: fmt.Sprintf("unknown spec type %q", spec.Type)}
		}
	}
	return nil
}

// Defaults returns the subset of the schema that declares an explicit
// default value, keyed by parameter name.
func Defaults(s Schema) map[string]any {
	out := make(map[string]any, len(s))
	for name, spec := range s {
		if spec.Default != nil {
			out[name] = spec.Default
		}
	}
	return out
}

// IntValue extracts an already-validated integer parameter.
func IntValue(values map[string]any, name string) (int, error) {
	raw, ok := values[name]
	if !ok {
		return 0, &ValidationError{Param: name, Reason: "not present"}
	}
	n, ok := asIntegral(raw)
	if !ok {
		return 0, &ValidationError{Param: name, Reason: fmt.Sprintf("not an integer: %v", raw)}
	}
	return int(n), nil
}

// FloatValue extracts an already-validated float parameter.
func FloatValue(values map[string]any, name string) (float64, error) {
	raw, ok := values[name]
	if !ok {
		return 0, &ValidationError{Param: name, Reason: "not present"}
	}
	f, ok := asFloat(raw)
	if !ok {
		return 0, &ValidationError{Param: name, Reason: fmt.Sprintf("not a number: %v", raw)}
	}
	return f, nil
}

// StringValue extracts an already-validated string parameter.
func StringValue(values map[string]any, name string) (string, error) {
	raw, ok := values[name]
	if !ok {
		return "", &ValidationError{Param: name, Reason: "not present"}
	}
	str, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Param: name, Reason: fmt.Sprintf("not a string: %v", raw)}
	}
	return str, nil
}

func checkBounds(name string, spec ParamSpec, v float64) error {
	if spec.Min != nil && v < *spec.Min {
		return &ValidationError{Param: name, Reason: fmt.Sprintf("%v is below minimum %v", v, *spec.Min)}
	}
	if spec.Max != nil && v > *spec.Max {
		return &ValidationError{Param: name, Reason: fmt.Sprintf("%v is above maximum %v", v, *spec.Max)}
	}
	return nil
}

func asIntegral(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), true
		}
		return 0, false
	case float32:
		f := float64(v)
		if f == math.Trunc(f) {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
