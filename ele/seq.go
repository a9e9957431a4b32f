package ele

import "time"

// SeqKind tags the variant held by a Seq. It mirrors Kind but has no
// Nil-scalar counterpart distinction beyond SeqNil (an empty/absent column).
type SeqKind uint8

const (
	SeqNil SeqKind = iota
	SeqKindBool
	SeqKindI32
	SeqKindI64
	SeqKindF32
	SeqKindF64
	SeqKindText
	SeqKindDateTime
)

// Seq is a homogeneous columnar sequence. The zero value is the Nil
// variant (len 0).
type Seq struct {
	kind SeqKind

	bools []bool
	i32s  []int32
	i64s  []int64
	f32s  []float32
	f64s  []float64
	texts []string
	dts   []uint64 // DateTime: microseconds since epoch
}

func NewSeqNil() Seq               { return Seq{kind: SeqNil} }
func NewSeqBool(v []bool) Seq      { return Seq{kind: SeqKindBool, bools: v} }
func NewSeqI32(v []int32) Seq      { return Seq{kind: SeqKindI32, i32s: v} }
func NewSeqI64(v []int64) Seq      { return Seq{kind: SeqKindI64, i64s: v} }
func NewSeqF32(v []float32) Seq    { return Seq{kind: SeqKindF32, f32s: v} }
func NewSeqF64(v []float64) Seq    { return Seq{kind: SeqKindF64, f64s: v} }
func NewSeqText(v []string) Seq    { return Seq{kind: SeqKindText, texts: v} }
func NewSeqDateTime(v []uint64) Seq { return Seq{kind: SeqKindDateTime, dts: v} }

func (s Seq) Kind() SeqKind { return s.kind }

// Len returns the number of elements in the sequence.
func (s Seq) Len() int {
	switch s.kind {
	case SeqKindBool:
		return len(s.bools)
	case SeqKindI32:
		return len(s.i32s)
	case SeqKindI64:
		return len(s.i64s)
	case SeqKindF32:
		return len(s.f32s)
	case SeqKindF64:
		return len(s.f64s)
	case SeqKindText:
		return len(s.texts)
	case SeqKindDateTime:
		return len(s.dts)
	default:
		return 0
	}
}

func (s Seq) IsEmpty() bool { return s.Len() == 0 }

// Get returns the element at index i, or Nil if i is out of range.
func (s Seq) Get(i int) Ele {
	if i < 0 || i >= s.Len() {
		return Nil()
	}
	switch s.kind {
	case SeqKindBool:
		return Bool(s.bools[i])
	case SeqKindI32:
		return I32(s.i32s[i])
	case SeqKindI64:
		return I64(s.i64s[i])
	case SeqKindF32:
		return F32(s.f32s[i])
	case SeqKindF64:
		return F64(s.f64s[i])
	case SeqKindText:
		return Text(s.texts[i])
	case SeqKindDateTime:
		return DateTime(s.dts[i])
	default:
		return Nil()
	}
}

// Append returns a new Seq with v appended. It fails with
// ErrWrongElementType when v's variant doesn't match the sequence's kind,
// unless the sequence is still SeqNil, in which case it adopts v's kind.
func (s Seq) Append(v Ele) (Seq, error) {
	if s.kind == SeqNil && s.Len() == 0 {
		s = seedFromEle(v)
	}
	switch s.kind {
	case SeqKindBool:
		b, err := BoolFromEle(v)
		if err != nil {
			return s, err
		}
		s.bools = append(s.bools, b)
	case SeqKindI32:
		x, err := I32FromEle(v)
		if err != nil {
			return s, err
		}
		s.i32s = append(s.i32s, x)
	case SeqKindI64:
		x, err := I64FromEle(v)
		if err != nil {
			return s, err
		}
		s.i64s = append(s.i64s, x)
	case SeqKindF32:
		x, err := F32FromEle(v)
		if err != nil {
			return s, err
		}
		s.f32s = append(s.f32s, x)
	case SeqKindF64:
		x, err := F64FromEle(v)
		if err != nil {
			return s, err
		}
		s.f64s = append(s.f64s, x)
	case SeqKindText:
		x, err := TextFromEle(v)
		if err != nil {
			return s, err
		}
		s.texts = append(s.texts, x)
	case SeqKindDateTime:
		x, err := DateTimeFromEle(v)
		if err != nil {
			return s, err
		}
		s.dts = append(s.dts, x)
	default:
		return s, ErrWrongElementType
	}
	return s, nil
}

func seedFromEle(v Ele) Seq {
	switch v.Kind() {
	case KindBool:
		return NewSeqBool(nil)
	case KindI32:
		return NewSeqI32(nil)
	case KindI64:
		return NewSeqI64(nil)
	case KindF32:
		return NewSeqF32(nil)
	case KindF64:
		return NewSeqF64(nil)
	case KindText, KindURL:
		return NewSeqText(nil)
	case KindDateTime:
		return NewSeqDateTime(nil)
	default:
		return NewSeqNil()
	}
}

// ColumnSource abstracts a foreign columnar batch column (e.g. an
// arrow-style array) so extension-provided tables can build a Seq without
// this package depending on any concrete arrow implementation.
type ColumnSource interface {
	Len() int
	ValueAt(i int) any
}

// FromArrowLike converts a foreign columnar batch column into a Seq. It
// inspects the first non-nil value to decide the target variant; an empty
// or fully-nil source, or one whose element type is unrecognized, yields
// Seq::Nil to preserve query-plan progress rather than erroring.
func FromArrowLike(col ColumnSource) Seq {
	n := col.Len()
	if n == 0 {
		return NewSeqNil()
	}
	var kind SeqKind
	for i := 0; i < n; i++ {
		if v := col.ValueAt(i); v != nil {
			kind = kindOf(v)
			break
		}
	}
	if kind == SeqNil {
		return NewSeqNil()
	}
	s := emptySeqOf(kind, n)
	for i := 0; i < n; i++ {
		e := From(col.ValueAt(i))
		if e.IsNil() {
			e = zeroOf(kind)
		}
		var err error
		s, err = s.Append(e)
		if err != nil {
			return NewSeqNil()
		}
	}
	return s
}

func kindOf(v any) SeqKind {
	switch v.(type) {
	case bool:
		return SeqKindBool
	case int32:
		return SeqKindI32
	case int, int64:
		return SeqKindI64
	case float32:
		return SeqKindF32
	case float64:
		return SeqKindF64
	case string:
		return SeqKindText
	case time.Time:
		return SeqKindDateTime
	default:
		return SeqNil
	}
}

func emptySeqOf(kind SeqKind, cap int) Seq {
	switch kind {
	case SeqKindBool:
		return NewSeqBool(make([]bool, 0, cap))
	case SeqKindI32:
		return NewSeqI32(make([]int32, 0, cap))
	case SeqKindI64:
		return NewSeqI64(make([]int64, 0, cap))
	case SeqKindF32:
		return NewSeqF32(make([]float32, 0, cap))
	case SeqKindF64:
		return NewSeqF64(make([]float64, 0, cap))
	case SeqKindText:
		return NewSeqText(make([]string, 0, cap))
	case SeqKindDateTime:
		return NewSeqDateTime(make([]uint64, 0, cap))
	default:
		return NewSeqNil()
	}
}

func zeroOf(kind SeqKind) Ele {
	switch kind {
	case SeqKindBool:
		return Bool(false)
	case SeqKindI32:
		return I32(0)
	case SeqKindI64:
		return I64(0)
	case SeqKindF32:
		return F32(0)
	case SeqKindF64:
		return F64(0)
	case SeqKindText:
		return Text("")
	case SeqKindDateTime:
		return DateTime(0)
	default:
		return Nil()
	}
}
