package dbor

import "unicode/utf8"

// This file supplies the "hand-written implementations for primitive
// host containers" spec.md §9 calls for: narrow Visitor adapters that
// bind one decoded wire item directly to a host scalar, string, slice,
// or optional field, without requiring generated code. cmd/dbor-gen
// composes these into per-struct adapters for user aggregate types.

// fieldVisitor implements Visitor by delegating to at most one
// installed callback; every other method reports TypeMismatch. Most
// callers should use the UintInto/IntInto/... constructors below
// rather than building a fieldVisitor directly.
type fieldVisitor struct {
	kind      string
	onUint    func(uint64) error
	onInt     func(int64) error
	onBool    func(bool) error
	onUnit    func() error
	onNone    func() error
	onF32     func(float32) error
	onF64     func(float64) error
	onBytes   func([]byte) error
	onSeq     func(int) (SeqVisitor, error)
	onMap     func(int) (MapVisitor, error)
	onVariant func(VariantTag) (Visitor, error)
}

func mismatch(kind string) error {
	return newErr(KindTypeMismatch, -1, "expected a %s item", kind)
}

func (f *fieldVisitor) VisitUint(v uint64) error {
	if f.onUint == nil {
		return mismatch(f.kind)
	}
	return f.onUint(v)
}

func (f *fieldVisitor) VisitInt(v int64) error {
	if f.onInt == nil {
		return mismatch(f.kind)
	}
	return f.onInt(v)
}

func (f *fieldVisitor) VisitBool(v bool) error {
	if f.onBool == nil {
		return mismatch(f.kind)
	}
	return f.onBool(v)
}

func (f *fieldVisitor) VisitUnit() error {
	if f.onUnit == nil {
		return mismatch(f.kind)
	}
	return f.onUnit()
}

func (f *fieldVisitor) VisitNone() error {
	if f.onNone == nil {
		return mismatch(f.kind)
	}
	return f.onNone()
}

func (f *fieldVisitor) VisitF32(v float32) error {
	if f.onF32 == nil {
		return mismatch(f.kind)
	}
	return f.onF32(v)
}

func (f *fieldVisitor) VisitF64(v float64) error {
	if f.onF64 == nil {
		return mismatch(f.kind)
	}
	return f.onF64(v)
}

func (f *fieldVisitor) VisitBytes(v []byte) error {
	if f.onBytes == nil {
		return mismatch(f.kind)
	}
	return f.onBytes(v)
}

func (f *fieldVisitor) VisitSeq(length int) (SeqVisitor, error) {
	if f.onSeq == nil {
		return nil, mismatch(f.kind)
	}
	return f.onSeq(length)
}

func (f *fieldVisitor) VisitMap(length int) (MapVisitor, error) {
	if f.onMap == nil {
		return nil, mismatch(f.kind)
	}
	return f.onMap(length)
}

func (f *fieldVisitor) VisitVariant(tag VariantTag) (Visitor, error) {
	if f.onVariant == nil {
		return nil, mismatch(f.kind)
	}
	return f.onVariant(tag)
}

// UintInto binds a Uint wire item to dst.
func UintInto(dst *uint64) Visitor {
	return &fieldVisitor{kind: "uint", onUint: func(v uint64) error { *dst = v; return nil }}
}

// IntInto binds an Int wire item to dst.
func IntInto(dst *int64) Visitor {
	return &fieldVisitor{kind: "int", onInt: func(v int64) error { *dst = v; return nil }}
}

// BoolInto binds a Bool wire item to dst.
func BoolInto(dst *bool) Visitor {
	return &fieldVisitor{kind: "bool", onBool: func(v bool) error { *dst = v; return nil }}
}

// UnitInto accepts (and discards) a Unit wire item.
func UnitInto() Visitor {
	return &fieldVisitor{kind: "unit", onUnit: func() error { return nil }}
}

// F32Into binds an f32 wire item to dst.
func F32Into(dst *float32) Visitor {
	return &fieldVisitor{kind: "f32", onF32: func(v float32) error { *dst = v; return nil }}
}

// F64Into binds an f64 wire item to dst.
func F64Into(dst *float64) Visitor {
	return &fieldVisitor{kind: "f64", onF64: func(v float64) error { *dst = v; return nil }}
}

// BytesInto binds a Bytes wire item to dst as raw octets.
func BytesInto(dst *[]byte) Visitor {
	return &fieldVisitor{kind: "bytes", onBytes: func(v []byte) error {
		cp := make([]byte, len(v))
		copy(cp, v)
		*dst = cp
		return nil
	}}
}

// StringInto binds a Bytes wire item to dst, rejecting octets that are
// not well-formed UTF-8 (spec §7 InvalidUtf8, raised only because this
// field asked for text). Callers needing a precise invalid-byte offset
// should validate with dbortext.ValidateUTF8 instead.
func StringInto(dst *string) Visitor {
	return &fieldVisitor{kind: "string", onBytes: func(v []byte) error {
		if !utf8.Valid(v) {
			return newErr(KindInvalidUtf8, -1, "bytes item is not valid UTF-8")
		}
		*dst = string(v)
		return nil
	}}
}

// OptionalInto wraps inner so that a None wire item clears *present
// without delegating, while every other wire item sets *present and
// delegates to inner.
func OptionalInto(present *bool, inner Visitor) Visitor {
	return &optionalVisitor{present: present, inner: inner}
}

type optionalVisitor struct {
	present *bool
	inner   Visitor
}

func (o *optionalVisitor) VisitNone() error {
	*o.present = false
	return nil
}

func (o *optionalVisitor) VisitUint(v uint64) error {
	*o.present = true
	return o.inner.VisitUint(v)
}

func (o *optionalVisitor) VisitInt(v int64) error {
	*o.present = true
	return o.inner.VisitInt(v)
}

func (o *optionalVisitor) VisitBool(v bool) error {
	*o.present = true
	return o.inner.VisitBool(v)
}

func (o *optionalVisitor) VisitUnit() error {
	*o.present = true
	return o.inner.VisitUnit()
}

func (o *optionalVisitor) VisitF32(v float32) error {
	*o.present = true
	return o.inner.VisitF32(v)
}

func (o *optionalVisitor) VisitF64(v float64) error {
	*o.present = true
	return o.inner.VisitF64(v)
}

func (o *optionalVisitor) VisitBytes(v []byte) error {
	*o.present = true
	return o.inner.VisitBytes(v)
}

func (o *optionalVisitor) VisitSeq(length int) (SeqVisitor, error) {
	*o.present = true
	return o.inner.VisitSeq(length)
}

func (o *optionalVisitor) VisitMap(length int) (MapVisitor, error) {
	*o.present = true
	return o.inner.VisitMap(length)
}

func (o *optionalVisitor) VisitVariant(tag VariantTag) (Visitor, error) {
	*o.present = true
	return o.inner.VisitVariant(tag)
}

// StructFields binds a fixed-length Seq wire item to fields, in
// positional order: fields stays wire-positional, matching spec.md's
// Non-goal that fields are positional inside sequences with no schema
// metadata.
func StructFields(fields ...Visitor) Visitor {
	return StructFieldsClose(nil, fields...)
}

// StructFieldsClose is StructFields plus an onClose hook run after every
// field has decoded successfully. Generated nested-struct adapters use
// this to stage optional/slice fields in local variables during decode
// and commit them into the host struct in one place, so a partially
// decoded sequence never leaves the struct half-populated.
func StructFieldsClose(onClose func() error, fields ...Visitor) Visitor {
	return &fieldVisitor{kind: "seq", onSeq: func(n int) (SeqVisitor, error) {
		if n != len(fields) {
			return nil, newErr(KindTypeMismatch, -1, "struct has %d fields, wire seq declares %d", len(fields), n)
		}
		return &fixedSeqVisitor{fields: fields, onClose: onClose}, nil
	}}
}

type fixedSeqVisitor struct {
	fields  []Visitor
	onClose func() error
}

func (f *fixedSeqVisitor) Element(i int) (Visitor, error) { return f.fields[i], nil }

func (f *fixedSeqVisitor) Close() error {
	if f.onClose == nil {
		return nil
	}
	return f.onClose()
}

// SliceInto binds a dynamic-length Seq wire item to *dst, growing it to
// the wire-declared length and using newElem to build a destination
// Visitor for each element's address.
func SliceInto[T any](dst *[]T, newElem func(*T) Visitor) Visitor {
	return &fieldVisitor{kind: "seq", onSeq: func(n int) (SeqVisitor, error) {
		*dst = make([]T, n)
		return &sliceSeqVisitor[T]{items: *dst, newElem: newElem}, nil
	}}
}

type sliceSeqVisitor[T any] struct {
	items   []T
	newElem func(*T) Visitor
}

func (s *sliceSeqVisitor[T]) Element(i int) (Visitor, error) {
	return s.newElem(&s.items[i]), nil
}
func (s *sliceSeqVisitor[T]) Close() error { return nil }
