package registry

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type identifies the logical type of a configuration parameter
type Type int

const (
	TypeNone Type = iota
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeString
	TypeBytes
	TypeFloat
	TypeDouble
	TypeBool
)

// String returns the type name
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// Value is a typed configuration value as seen by the codec.
// The zero Value has TypeNone.
type Value struct {
	typ Type
	i   int64
	f   float64
	s   string
	b   []byte
}

// Int8Value wraps an int8
func Int8Value(v int8) Value { return Value{typ: TypeInt8, i: int64(v)} }

// Int16Value wraps an int16
func Int16Value(v int16) Value { return Value{typ: TypeInt16, i: int64(v)} }

// Int32Value wraps an int32
func Int32Value(v int32) Value { return Value{typ: TypeInt32, i: int64(v)} }

// Int64Value wraps an int64
func Int64Value(v int64) Value { return Value{typ: TypeInt64, i: v} }

// BoolValue wraps a bool
func BoolValue(v bool) Value {
	if v {
		return Value{typ: TypeBool, i: 1}
	}
	return Value{typ: TypeBool}
}

// FloatValue wraps a float32
func FloatValue(v float32) Value { return Value{typ: TypeFloat, f: float64(v)} }

// DoubleValue wraps a float64
func DoubleValue(v float64) Value { return Value{typ: TypeDouble, f: v} }

// StringValue wraps a string
func StringValue(v string) Value { return Value{typ: TypeString, s: v} }

// BytesValue wraps a byte slice. The slice is not copied.
func BytesValue(v []byte) Value { return Value{typ: TypeBytes, b: v} }

// Type returns the value's type tag
func (v Value) Type() Type { return v.typ }

// Accessors return the wrapped value converted to the named Go type. They
// do not check the type tag.
func (v Value) Int8() int8 { return int8(v.i) }
func (v Value) Int16() int16 { return int16(v.i) }
func (v Value) Int32() int32 { return int32(v.i) }
func (v Value) Int64() int64 { return v.i }
func (v Value) Bool() bool { return v.i != 0 }
func (v Value) Float() float32 { return float32(v.f) }
func (v Value) Double() float64 { return v.f }
func (v Value) Str() string { return v.s }
func (v Value) Bytes() []byte { return v.b }

func (t Type) isInteger() bool {
	return (t >= TypeInt8 && t <= TypeInt64) || t == TypeBool
}

func (t Type) isFloating() bool {
	return t == TypeFloat || t == TypeDouble
}

// integer ranges, indexed by type
var intBounds = map[Type][2]int64{
	TypeInt8:  {math.MinInt8, math.MaxInt8},
	TypeInt16: {math.MinInt16, math.MaxInt16},
	TypeInt32: {math.MinInt32, math.MaxInt32},
	TypeInt64: {math.MinInt64, math.MaxInt64},
	TypeBool:  {0, 1},
}

// ValueFromString parses s as a value of type t.
//
// Integers accept an optional sign and a base prefix (0x, 0o, 0b, or a
// leading 0 for octal) and are range-checked against t after parsing into an
// int64. maxLen bounds string values including their terminator, so a string
// of length n needs maxLen >= n+1. Bytes must go through BytesFromString.
func ValueFromString(s string, t Type, maxLen int) (Value, error) {
	const op = "value from string"

	switch {
	case t.isInteger():
		n, err := parseInt(s)
		if err != nil {
			return Value{}, err
		}
		bounds := intBounds[t]
		if n < bounds[0] || n > bounds[1] {
			return Value{}, NewOverflowError(op, fmt.Sprintf("%d out of range for %s", n, t))
		}
		return Value{typ: t, i: n}, nil

	case t.isFloating():
		bits := 64
		if t == TypeFloat {
			bits = 32
		}
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return Value{}, NewOverflowError(op, fmt.Sprintf("%q out of range for %s", s, t))
			}
			return Value{}, NewInvalidFormatError(op, fmt.Sprintf("%q is not a %s", s, t), err)
		}
		return Value{typ: t, f: f}, nil

	case t == TypeString:
		if len(s)+1 > maxLen {
			return Value{}, NewOverflowError(op, fmt.Sprintf("string of %d bytes exceeds %d", len(s), maxLen))
		}
		return StringValue(s), nil

	default:
		return Value{}, NewInvalidFormatError(op, fmt.Sprintf("cannot parse type %s", t), nil)
	}
}

func parseInt(s string) (int64, error) {
	const op = "value from string"

	if s == "" {
		return 0, NewInvalidFormatError(op, "empty integer", nil)
	}
	// base 0 would otherwise accept digit separators
	if strings.ContainsRune(s, '_') {
		return 0, NewInvalidFormatError(op, fmt.Sprintf("%q is not an integer", s), nil)
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, NewOverflowError(op, fmt.Sprintf("%q out of int64 range", s))
		}
		return 0, NewInvalidFormatError(op, fmt.Sprintf("%q is not an integer", s), err)
	}
	return n, nil
}

// BytesFromString decodes a base64 value into at most capacity bytes.
func BytesFromString(s string, capacity int) ([]byte, error) {
	const op = "bytes from string"

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, NewInvalidFormatError(op, "malformed base64", err)
	}
	if len(decoded) > capacity {
		return nil, NewOverflowError(op, fmt.Sprintf("%d decoded bytes exceed capacity %d", len(decoded), capacity))
	}
	return decoded, nil
}

// StringFromValue formats v for the wire. The result plus a terminator must
// fit in bufLen bytes, for strings as for every other type.
func StringFromValue(v Value, bufLen int) (string, error) {
	const op = "string from value"

	var out string
	switch {
	case v.typ.isInteger():
		out = strconv.FormatInt(v.i, 10)
	case v.typ == TypeFloat:
		out = strconv.FormatFloat(v.f, 'g', -1, 32)
	case v.typ == TypeDouble:
		out = strconv.FormatFloat(v.f, 'g', -1, 64)
	case v.typ == TypeString:
		out = v.s
	default:
		return "", NewInvalidFormatError(op, fmt.Sprintf("cannot format type %s", v.typ), nil)
	}

	if len(out)+1 > bufLen {
		return "", NewOverflowError(op, fmt.Sprintf("%d bytes do not fit in buffer of %d", len(out)+1, bufLen))
	}
	return out, nil
}

// StringFromBytes base64-encodes b. It fails instead of truncating when the
// encoding is longer than MaxValLen or does not fit in bufLen.
func StringFromBytes(b []byte, bufLen int) (string, error) {
	const op = "string from bytes"

	enc := base64.StdEncoding.EncodeToString(b)
	if len(enc) > MaxValLen {
		return "", NewOverflowError(op, fmt.Sprintf("encoded length %d exceeds %d", len(enc), MaxValLen))
	}
	if len(enc)+1 > bufLen {
		return "", NewOverflowError(op, fmt.Sprintf("encoded length %d does not fit in buffer of %d", len(enc), bufLen))
	}
	return enc, nil
}
