package task

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the dynamic type held by a [Value].
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// ParseKind converts a kind name back to a Kind. Unknown names yield KindNull.
func ParseKind(s string) Kind {
	switch s {
	case "bool", "boolean":
		return KindBool
	case "number", "int", "float":
		return KindNumber
	case "string", "text":
		return KindString
	default:
		return KindNull
	}
}

// Value is a tagged scalar attribute value: a string, a number, a boolean, or
// null. Values are comparable with == and usable as map keys; two values are
// equal only when both the kind and the payload match, so Number(1) and
// String("1") are different values.
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// ValueOf converts a Go scalar into a Value. It accepts the types produced by
// encoding/json, database/sql drivers and the YAML/TOML decoders.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case []byte:
		return String(string(v)), nil
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(float64(v)), nil
	case int:
		return Number(float64(v)), nil
	case int8:
		return Number(float64(v)), nil
	case int16:
		return Number(float64(v)), nil
	case int32:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case uint:
		return Number(float64(v)), nil
	case uint8:
		return Number(float64(v)), nil
	case uint16:
		return Number(float64(v)), nil
	case uint32:
		return Number(float64(v)), nil
	case uint64:
		return Number(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Null(), fmt.Errorf("invalid number %q: %w", v, err)
		}
		return Number(f), nil
	default:
		return Null(), fmt.Errorf("unsupported attribute value type %T", x)
	}
}

// MustValueOf is like ValueOf but panics on unsupported types.
// It is intended for literals in tests and examples.
func MustValueOf(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Num returns the numeric payload and whether v is a number.
func (v Value) Num() (float64, bool) { return v.n, v.kind == KindNumber }

// Boolean returns the boolean payload and whether v is a boolean.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBool }

// Equal reports strict equality: same kind and same payload.
// NaN is never equal to anything, including itself.
func (v Value) Equal(o Value) bool {
	return v == o && !(v.kind == KindNumber && math.IsNaN(v.n))
}

// Compare orders values for display. Values of one kind compare naturally
// (false < true, numbers numerically, strings bytewise); mixed kinds order by
// kind rank bool < number < string, with null first.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		return cmp.Compare(v.kind, o.kind)
	}
	switch v.kind {
	case KindBool:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		default:
			return 1
		}
	case KindNumber:
		return cmp.Compare(v.n, o.n)
	case KindString:
		return cmp.Compare(v.s, o.s)
	}
	return 0
}

// Interface returns the payload as a plain Go value (nil, bool, float64 or string).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	default:
		return nil
	}
}

// String renders the value for labels: strings verbatim, integral numbers
// without a fraction, null as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// MarshalJSON encodes the value as a JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.n) || math.IsInf(v.n, 0)) {
		return nil, fmt.Errorf("cannot encode non-finite number %v", v.n)
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON scalar. Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}
	val, err := ValueOf(x)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// MarshalYAML encodes the value as a YAML scalar.
func (v Value) MarshalYAML() (any, error) { return v.Interface(), nil }

// UnmarshalYAML decodes a YAML scalar.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var x any
	if err := unmarshal(&x); err != nil {
		return err
	}
	val, err := ValueOf(x)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// MarshalTOML encodes the value as a TOML scalar. TOML has no null, so null
// values encode as the empty string.
func (v Value) MarshalTOML() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return nil, fmt.Errorf("cannot encode non-finite number %v", v.n)
		}
		return []byte(strconv.FormatFloat(v.n, 'f', -1, 64)), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		// JSON string escapes are valid TOML basic string escapes.
		return json.Marshal(v.s)
	}
}

// UnmarshalTOML decodes a TOML scalar.
func (v *Value) UnmarshalTOML(x any) error {
	val, err := ValueOf(x)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
