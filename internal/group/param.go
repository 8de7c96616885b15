package group

import (
	"unsafe"

	"github.com/muurk/devreg/internal/registry"
)

// Integer is the set of signed integer types a parameter can bind.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Param binds one named parameter to a Go variable.
type Param interface {
	// Name returns the parameter name within its group
	Name() string
	// Type returns the wire type of the parameter
	Type() registry.Type
	// Set parses value and assigns it. Nothing is assigned on error.
	Set(value string) error
	// Get formats the current value into at most bufLen-1 bytes
	Get(bufLen int) (string, error)
}

type intParam[T Integer] struct {
	name string
	typ  registry.Type
	ptr  *T
}

// Int binds an integer variable. The wire type follows the size of T.
func Int[T Integer](name string, ptr *T) Param {
	var typ registry.Type
	switch unsafe.Sizeof(*ptr) {
	case 1:
		typ = registry.TypeInt8
	case 2:
		typ = registry.TypeInt16
	case 4:
		typ = registry.TypeInt32
	default:
		typ = registry.TypeInt64
	}
	return &intParam[T]{name: name, typ: typ, ptr: ptr}
}

func (p *intParam[T]) Name() string        { return p.name }
func (p *intParam[T]) Type() registry.Type { return p.typ }

func (p *intParam[T]) Set(value string) error {
	v, err := registry.ValueFromString(value, p.typ, 0)
	if err != nil {
		return err
	}
	*p.ptr = T(v.Int64())
	return nil
}

func (p *intParam[T]) Get(bufLen int) (string, error) {
	return registry.StringFromValue(intValue(p.typ, int64(*p.ptr)), bufLen)
}

func intValue(t registry.Type, v int64) registry.Value {
	switch t {
	case registry.TypeInt8:
		return registry.Int8Value(int8(v))
	case registry.TypeInt16:
		return registry.Int16Value(int16(v))
	case registry.TypeInt32:
		return registry.Int32Value(int32(v))
	default:
		return registry.Int64Value(v)
	}
}

type boolParam struct {
	name string
	ptr  *bool
}

// Bool binds a boolean variable, exchanged as 0 or 1.
func Bool(name string, ptr *bool) Param {
	return &boolParam{name: name, ptr: ptr}
}

func (p *boolParam) Name() string        { return p.name }
func (p *boolParam) Type() registry.Type { return registry.TypeBool }

func (p *boolParam) Set(value string) error {
	v, err := registry.ValueFromString(value, registry.TypeBool, 0)
	if err != nil {
		return err
	}
	*p.ptr = v.Bool()
	return nil
}

func (p *boolParam) Get(bufLen int) (string, error) {
	return registry.StringFromValue(registry.BoolValue(*p.ptr), bufLen)
}

type floatParam struct {
	name string
	ptr  *float32
}

// Float binds a float32 variable.
func Float(name string, ptr *float32) Param {
	return &floatParam{name: name, ptr: ptr}
}

func (p *floatParam) Name() string        { return p.name }
func (p *floatParam) Type() registry.Type { return registry.TypeFloat }

func (p *floatParam) Set(value string) error {
	v, err := registry.ValueFromString(value, registry.TypeFloat, 0)
	if err != nil {
		return err
	}
	*p.ptr = v.Float()
	return nil
}

func (p *floatParam) Get(bufLen int) (string, error) {
	return registry.StringFromValue(registry.FloatValue(*p.ptr), bufLen)
}

type doubleParam struct {
	name string
	ptr  *float64
}

// Double binds a float64 variable.
func Double(name string, ptr *float64) Param {
	return &doubleParam{name: name, ptr: ptr}
}

func (p *doubleParam) Name() string        { return p.name }
func (p *doubleParam) Type() registry.Type { return registry.TypeDouble }

func (p *doubleParam) Set(value string) error {
	v, err := registry.ValueFromString(value, registry.TypeDouble, 0)
	if err != nil {
		return err
	}
	*p.ptr = v.Double()
	return nil
}

func (p *doubleParam) Get(bufLen int) (string, error) {
	return registry.StringFromValue(registry.DoubleValue(*p.ptr), bufLen)
}

type stringParam struct {
	name   string
	ptr    *string
	maxLen int
}

// String binds a string variable. maxLen bounds the stored string the same
// way a C buffer would: at most maxLen-1 bytes. maxLen is capped so that
// every accepted value can be exported.
func String(name string, ptr *string, maxLen int) Param {
	if maxLen <= 0 || maxLen > registry.MaxValLen+1 {
		maxLen = registry.MaxValLen + 1
	}
	return &stringParam{name: name, ptr: ptr, maxLen: maxLen}
}

func (p *stringParam) Name() string        { return p.name }
func (p *stringParam) Type() registry.Type { return registry.TypeString }

func (p *stringParam) Set(value string) error {
	v, err := registry.ValueFromString(value, registry.TypeString, p.maxLen)
	if err != nil {
		return err
	}
	*p.ptr = v.Str()
	return nil
}

func (p *stringParam) Get(bufLen int) (string, error) {
	return registry.StringFromValue(registry.StringValue(*p.ptr), bufLen)
}

type bytesParam struct {
	name     string
	ptr      *[]byte
	capacity int
}

// Bytes binds a byte slice, exchanged as base64. Decoded values longer
// than capacity are rejected.
func Bytes(name string, ptr *[]byte, capacity int) Param {
	return &bytesParam{name: name, ptr: ptr, capacity: capacity}
}

func (p *bytesParam) Name() string        { return p.name }
func (p *bytesParam) Type() registry.Type { return registry.TypeBytes }

func (p *bytesParam) Set(value string) error {
	b, err := registry.BytesFromString(value, p.capacity)
	if err != nil {
		return err
	}
	*p.ptr = b
	return nil
}

func (p *bytesParam) Get(bufLen int) (string, error) {
	return registry.StringFromBytes(*p.ptr, bufLen)
}
