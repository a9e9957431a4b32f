// Package ele defines the typed scalar and columnar value primitives shared
// by the configuration store, extension registry, tracing core and SQL
// engine.
package ele

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// Kind tags the variant held by an Ele.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindI32
	KindI64
	KindF32
	KindF64
	KindText
	KindURL
	KindDateTime
)

// ErrWrongElementType is returned by FromEle when the requested native type
// cannot represent the held variant, or when a narrowing conversion would
// lose information.
var ErrWrongElementType = errors.New("wrong element type")

// Ele is a tagged scalar. The zero value is Nil.
type Ele struct {
	kind Kind

	b   bool
	i32 int32
	i64 int64
	f32 float32
	f64 float64
	s   string  // Text, Url
	dt  uint64  // DateTime: microseconds since UNIX epoch
}

func Nil() Ele                { return Ele{kind: KindNil} }
func Bool(v bool) Ele         { return Ele{kind: KindBool, b: v} }
func I32(v int32) Ele         { return Ele{kind: KindI32, i32: v} }
func I64(v int64) Ele         { return Ele{kind: KindI64, i64: v} }
func F32(v float32) Ele       { return Ele{kind: KindF32, f32: v} }
func F64(v float64) Ele       { return Ele{kind: KindF64, f64: v} }
func Text(v string) Ele       { return Ele{kind: KindText, s: v} }
func URL(v string) Ele        { return Ele{kind: KindURL, s: v} }
func DateTime(us uint64) Ele  { return Ele{kind: KindDateTime, dt: us} }

// DateTimeFrom converts a time.Time to a DateTime element, truncating to
// microsecond precision as mandated by §3.
func DateTimeFrom(t time.Time) Ele { return DateTime(uint64(t.UnixMicro())) }

func (e Ele) Kind() Kind { return e.kind }
func (e Ele) IsNil() bool { return e.kind == KindNil }

// Equal implements total equality across all variants.
func (e Ele) Equal(o Ele) bool {
	if e.kind != o.kind {
		return false
	}
	switch e.kind {
	case KindNil:
		return true
	case KindBool:
		return e.b == o.b
	case KindI32:
		return e.i32 == o.i32
	case KindI64:
		return e.i64 == o.i64
	case KindF32:
		return e.f32 == o.f32
	case KindF64:
		return e.f64 == o.f64
	case KindText, KindURL:
		return e.s == o.s
	case KindDateTime:
		return e.dt == o.dt
	default:
		return false
	}
}

// String renders the element per the variant rules in spec §3:
// Nil -> "nil", Bool -> "True"/"False", DateTime -> RFC 3339.
func (e Ele) String() string {
	switch e.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if e.b {
			return "True"
		}
		return "False"
	case KindI32:
		return fmt.Sprintf("%d", e.i32)
	case KindI64:
		return fmt.Sprintf("%d", e.i64)
	case KindF32:
		return fmt.Sprintf("%g", e.f32)
	case KindF64:
		return fmt.Sprintf("%g", e.f64)
	case KindText, KindURL:
		return e.s
	case KindDateTime:
		return time.UnixMicro(int64(e.dt)).UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// ToString is an alias for String, matching the spec's to_string_lossy name.
func (e Ele) ToString() string { return e.String() }

// ToEle is the total injection from native Go scalars into Ele.
type ToEle interface {
	ToEle() Ele
}

type boolValue bool
type i32Value int32
type i64Value int64
type f32Value float32
type f64Value float64
type textValue string

func (v boolValue) ToEle() Ele { return Bool(bool(v)) }
func (v i32Value) ToEle() Ele  { return I32(int32(v)) }
func (v i64Value) ToEle() Ele  { return I64(int64(v)) }
func (v f32Value) ToEle() Ele  { return F32(float32(v)) }
func (v f64Value) ToEle() Ele  { return F64(float64(v)) }
func (v textValue) ToEle() Ele { return Text(string(v)) }

// From converts any supported native Go scalar into an Ele. Unsupported
// types produce Nil, never a panic — callers that need strict behavior
// should type-switch themselves before calling From.
func From(v any) Ele {
	switch x := v.(type) {
	case nil:
		return Nil()
	case bool:
		return boolValue(x).ToEle()
	case int32:
		return i32Value(x).ToEle()
	case int:
		return i64Value(int64(x)).ToEle()
	case int64:
		return i64Value(x).ToEle()
	case float32:
		return f32Value(x).ToEle()
	case float64:
		return f64Value(x).ToEle()
	case string:
		return textValue(x).ToEle()
	case time.Time:
		return DateTimeFrom(x)
	case Ele:
		return x
	default:
		return Nil()
	}
}

// FromEle is the partial projection from Ele back to a native Go type.
// Integer widening (I32->I64) always succeeds; narrowing (I64->I32)
// succeeds only when the value is in range.

func BoolFromEle(e Ele) (bool, error) {
	if e.kind != KindBool {
		return false, errors.Wrapf(ErrWrongElementType, "expected Bool, got %v", e.kind)
	}
	return e.b, nil
}

func I32FromEle(e Ele) (int32, error) {
	switch e.kind {
	case KindI32:
		return e.i32, nil
	case KindI64:
		if e.i64 < int64(-1<<31) || e.i64 > int64(1<<31-1) {
			return 0, errors.Wrapf(ErrWrongElementType, "i64 value %d out of i32 range", e.i64)
		}
		return int32(e.i64), nil
	default:
		return 0, errors.Wrapf(ErrWrongElementType, "expected I32-compatible, got %v", e.kind)
	}
}

func I64FromEle(e Ele) (int64, error) {
	switch e.kind {
	case KindI32:
		return int64(e.i32), nil
	case KindI64:
		return e.i64, nil
	default:
		return 0, errors.Wrapf(ErrWrongElementType, "expected I64-compatible, got %v", e.kind)
	}
}

func F32FromEle(e Ele) (float32, error) {
	if e.kind != KindF32 {
		return 0, errors.Wrapf(ErrWrongElementType, "expected F32, got %v", e.kind)
	}
	return e.f32, nil
}

func F64FromEle(e Ele) (float64, error) {
	switch e.kind {
	case KindF32:
		return float64(e.f32), nil
	case KindF64:
		return e.f64, nil
	default:
		return 0, errors.Wrapf(ErrWrongElementType, "expected F64-compatible, got %v", e.kind)
	}
}

func TextFromEle(e Ele) (string, error) {
	switch e.kind {
	case KindText, KindURL:
		return e.s, nil
	default:
		return "", errors.Wrapf(ErrWrongElementType, "expected Text, got %v", e.kind)
	}
}

func DateTimeFromEle(e Ele) (uint64, error) {
	if e.kind != KindDateTime {
		return 0, errors.Wrapf(ErrWrongElementType, "expected DateTime, got %v", e.kind)
	}
	return e.dt, nil
}
