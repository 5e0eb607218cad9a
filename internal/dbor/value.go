package dbor

import "bytes"

// ValueKind discriminates the variants of Value, the generic host-side
// representation of the wire grammar V. Value is the reference
// Encodable/Visitor adapter: it needs no generated code and is used by
// the CLI and by round-trip tests as ground truth.
type ValueKind int

const (
	KindValUint ValueKind = iota
	KindValInt
	KindValBool
	KindValUnit
	KindValNone
	KindValF32
	KindValF64
	KindValBytes
	KindValSeq
	KindValMap
	KindValVariant
)

// MapEntry is one key/value pair of a Value of Kind KindValMap.
type MapEntry struct {
	Key   Value
	Value Value
}

// VariantValue is the payload of a Value of Kind KindValVariant.
type VariantValue struct {
	Tag     VariantTag
	Payload Value
}

// Value is a tagged union over the DBOR data model (spec §3). Only the
// field matching Kind is meaningful.
type Value struct {
	Kind    ValueKind
	UintVal uint64
	IntVal  int64
	BoolVal bool
	F32Val  float32
	F64Val  float64
	Bytes   []byte
	Seq     []Value
	Map     []MapEntry
	Variant *VariantValue
}

func NewUint(v uint64) Value   { return Value{Kind: KindValUint, UintVal: v} }
func NewInt(v int64) Value     { return Value{Kind: KindValInt, IntVal: v} }
func NewBool(v bool) Value     { return Value{Kind: KindValBool, BoolVal: v} }
func NewUnit() Value           { return Value{Kind: KindValUnit} }
func NewNone() Value           { return Value{Kind: KindValNone} }
func NewF32(v float32) Value   { return Value{Kind: KindValF32, F32Val: v} }
func NewF64(v float64) Value   { return Value{Kind: KindValF64, F64Val: v} }
func NewBytes(b []byte) Value  { return Value{Kind: KindValBytes, Bytes: b} }
func NewSeq(items ...Value) Value { return Value{Kind: KindValSeq, Seq: items} }
func NewMap(entries ...MapEntry) Value {
	return Value{Kind: KindValMap, Map: entries}
}
func NewVariant(tag VariantTag, payload Value) Value {
	return Value{Kind: KindValVariant, Variant: &VariantValue{Tag: tag, Payload: payload}}
}

// EncodeDBOR implements Encodable.
func (v Value) EncodeDBOR(e *Encoder) error {
	switch v.Kind {
	case KindValUint:
		return e.EncodeUint(v.UintVal)
	case KindValInt:
		return e.EncodeInt(v.IntVal)
	case KindValBool:
		return e.EncodeBool(v.BoolVal)
	case KindValUnit:
		return e.EncodeUnit()
	case KindValNone:
		return e.EncodeNone()
	case KindValF32:
		return e.EncodeF32(v.F32Val)
	case KindValF64:
		return e.EncodeF64(v.F64Val)
	case KindValBytes:
		return e.EncodeBytes(v.Bytes)
	case KindValSeq:
		items := v.Seq
		return e.EncodeSeq(len(items), func(e *Encoder, i int) error {
			return items[i].EncodeDBOR(e)
		})
	case KindValMap:
		entries := v.Map
		return e.EncodeMap(len(entries), func(e *Encoder, i int) error {
			if err := entries[i].Key.EncodeDBOR(e); err != nil {
				return err
			}
			return entries[i].Value.EncodeDBOR(e)
		})
	case KindValVariant:
		return e.EncodeVariant(v.Variant.Tag, v.Variant.Payload)
	default:
		return newErr(KindUnsupported, -1, "unknown Value kind %d", v.Kind)
	}
}

// Equal reports whether v and other represent the same logical value.
// Map entry order matters, matching the wire format's lack of
// canonical map ordering (spec.md: "ordering of map entries is not
// canonicalized").
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindValUint:
		return v.UintVal == other.UintVal
	case KindValInt:
		return v.IntVal == other.IntVal
	case KindValBool:
		return v.BoolVal == other.BoolVal
	case KindValUnit, KindValNone:
		return true
	case KindValF32:
		return v.F32Val == other.F32Val
	case KindValF64:
		return v.F64Val == other.F64Val
	case KindValBytes:
		return bytes.Equal(v.Bytes, other.Bytes)
	case KindValSeq:
		if len(v.Seq) != len(other.Seq) {
			return false
		}
		for i := range v.Seq {
			if !v.Seq[i].Equal(other.Seq[i]) {
				return false
			}
		}
		return true
	case KindValMap:
		if len(v.Map) != len(other.Map) {
			return false
		}
		for i := range v.Map {
			if !v.Map[i].Key.Equal(other.Map[i].Key) || !v.Map[i].Value.Equal(other.Map[i].Value) {
				return false
			}
		}
		return true
	case KindValVariant:
		a, b := v.Variant, other.Variant
		if a.Tag.Named != b.Tag.Named {
			return false
		}
		if a.Tag.Named {
			if a.Tag.Name != b.Tag.Name {
				return false
			}
		} else if a.Tag.ID != b.Tag.ID {
			return false
		}
		return a.Payload.Equal(b.Payload)
	default:
		return false
	}
}

// DecodeValue reads one item from d into the generic Value tree.
func DecodeValue(d *Decoder) (Value, error) {
	var out Value
	sink := &valueSink{out: &out}
	if err := d.Decode(sink); err != nil {
		return Value{}, err
	}
	return out, nil
}

// valueSink is the Visitor that builds a Value tree; it requires no
// generated code and accepts any wire kind (it never raises
// TypeMismatch itself, since Value has a slot for every kind).
type valueSink struct {
	out *Value
}

func (s *valueSink) VisitUint(v uint64) error { *s.out = NewUint(v); return nil }
func (s *valueSink) VisitInt(v int64) error   { *s.out = NewInt(v); return nil }
func (s *valueSink) VisitBool(v bool) error   { *s.out = NewBool(v); return nil }
func (s *valueSink) VisitUnit() error         { *s.out = NewUnit(); return nil }
func (s *valueSink) VisitNone() error         { *s.out = NewNone(); return nil }
func (s *valueSink) VisitF32(v float32) error { *s.out = NewF32(v); return nil }
func (s *valueSink) VisitF64(v float64) error { *s.out = NewF64(v); return nil }

func (s *valueSink) VisitBytes(v []byte) error {
	cp := make([]byte, len(v))
	copy(cp, v)
	*s.out = NewBytes(cp)
	return nil
}

func (s *valueSink) VisitSeq(length int) (SeqVisitor, error) {
	return &seqSink{out: s.out, items: make([]Value, length)}, nil
}

func (s *valueSink) VisitMap(length int) (MapVisitor, error) {
	return &mapSink{out: s.out, entries: make([]MapEntry, length)}, nil
}

func (s *valueSink) VisitVariant(tag VariantTag) (Visitor, error) {
	vv := &VariantValue{Tag: tag}
	*s.out = Value{Kind: KindValVariant, Variant: vv}
	return &valueSink{out: &vv.Payload}, nil
}

type seqSink struct {
	out   *Value
	items []Value
}

func (s *seqSink) Element(i int) (Visitor, error) {
	return &valueSink{out: &s.items[i]}, nil
}

func (s *seqSink) Close() error {
	*s.out = Value{Kind: KindValSeq, Seq: s.items}
	return nil
}

type mapSink struct {
	out     *Value
	entries []MapEntry
}

func (m *mapSink) Key(i int) (Visitor, error) {
	return &valueSink{out: &m.entries[i].Key}, nil
}

func (m *mapSink) Value(i int) (Visitor, error) {
	return &valueSink{out: &m.entries[i].Value}, nil
}

func (m *mapSink) Close() error {
	*m.out = Value{Kind: KindValMap, Map: m.entries}
	return nil
}
