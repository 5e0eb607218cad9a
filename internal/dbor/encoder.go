package dbor

import (
	"encoding/binary"
	"math"
)

// Encoder emits the minimal legal DBOR encoding for values presented to
// it through the Encodable adapter surface. It is stateless beyond the
// transport cursor and a stack of open seq/map/variant scopes used only
// to detect a caller announcing one element count and supplying
// another (CountMismatch, optional per spec but implemented here).
type Encoder struct {
	t      Transport
	scopes []*int
}

// NewEncoder returns an Encoder writing to t.
func NewEncoder(t Transport) *Encoder {
	return &Encoder{t: t}
}

// Encode writes v's minimal DBOR encoding.
func (e *Encoder) Encode(v Encodable) error {
	return v.EncodeDBOR(e)
}

func (e *Encoder) pushScope() *int {
	n := new(int)
	e.scopes = append(e.scopes, n)
	return n
}

func (e *Encoder) popScope() int {
	top := e.scopes[len(e.scopes)-1]
	e.scopes = e.scopes[:len(e.scopes)-1]
	return *top
}

// commitItem records that one complete V value has just finished
// writing, crediting it to the nearest enclosing open scope (if any).
// A nested container counts as exactly one item toward its parent's
// scope, regardless of how many items it contains itself.
func (e *Encoder) commitItem() {
	if len(e.scopes) > 0 {
		*e.scopes[len(e.scopes)-1]++
	}
}

// --- scalars -----------------------------------------------------------

// EncodeUint writes the minimal Uint encoding of v.
func (e *Encoder) EncodeUint(v uint64) error {
	if err := e.writeValueHeader(TypeUint, v); err != nil {
		return err
	}
	e.commitItem()
	return nil
}

// EncodeInt writes the minimal Int encoding of v.
func (e *Encoder) EncodeInt(v int64) error {
	switch {
	case v >= 0 && v <= 15:
		if err := e.t.WriteBytes([]byte{header(TypeInt, uint8(v))}); err != nil {
			return err
		}
	case v >= -8 && v <= -1:
		if err := e.t.WriteBytes([]byte{header(TypeInt, uint8(v+24))}); err != nil {
			return err
		}
	default:
		if err := e.writeSignedFollow(v); err != nil {
			return err
		}
	}
	e.commitItem()
	return nil
}

func (e *Encoder) writeSignedFollow(v int64) error {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return e.t.WriteBytes([]byte{header(TypeInt, paramFollowU8), byte(int8(v))})
	case v >= math.MinInt16 && v <= math.MaxInt16:
		buf := make([]byte, 3)
		buf[0] = header(TypeInt, paramFollowU16)
		binary.LittleEndian.PutUint16(buf[1:], uint16(int16(v)))
		return e.t.WriteBytes(buf)
	case v >= math.MinInt32 && v <= math.MaxInt32:
		buf := make([]byte, 5)
		buf[0] = header(TypeInt, paramFollowU32)
		binary.LittleEndian.PutUint32(buf[1:], uint32(int32(v)))
		return e.t.WriteBytes(buf)
	default:
		buf := make([]byte, 9)
		buf[0] = header(TypeInt, paramFollowU64)
		binary.LittleEndian.PutUint64(buf[1:], uint64(v))
		return e.t.WriteBytes(buf)
	}
}

// EncodeBool writes a Misc false/true scalar.
func (e *Encoder) EncodeBool(v bool) error {
	p := uint8(miscFalse)
	if v {
		p = miscTrue
	}
	if err := e.t.WriteBytes([]byte{header(TypeMisc, p)}); err != nil {
		return err
	}
	e.commitItem()
	return nil
}

// EncodeUnit writes the Misc unit scalar.
func (e *Encoder) EncodeUnit() error {
	if err := e.t.WriteBytes([]byte{header(TypeMisc, miscUnit)}); err != nil {
		return err
	}
	e.commitItem()
	return nil
}

// EncodeNone writes the Misc none scalar.
func (e *Encoder) EncodeNone() error {
	if err := e.t.WriteBytes([]byte{header(TypeMisc, miscNone)}); err != nil {
		return err
	}
	e.commitItem()
	return nil
}

// EncodeF32 writes v as IEEE-754 little-endian. The encoder never
// downcasts an f64 to f32 on the caller's behalf; the caller picks the
// kind.
func (e *Encoder) EncodeF32(v float32) error {
	buf := make([]byte, 5)
	buf[0] = header(TypeMisc, miscF32)
	binary.LittleEndian.PutUint32(buf[1:], math.Float32bits(v))
	if err := e.t.WriteBytes(buf); err != nil {
		return err
	}
	e.commitItem()
	return nil
}

// EncodeF64 writes v as IEEE-754 little-endian.
func (e *Encoder) EncodeF64(v float64) error {
	buf := make([]byte, 9)
	buf[0] = header(TypeMisc, miscF64)
	binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(v))
	if err := e.t.WriteBytes(buf); err != nil {
		return err
	}
	e.commitItem()
	return nil
}

// EncodeBytes writes a Bytes item carrying b's raw octets (used for
// both byte arrays and UTF-8 strings).
func (e *Encoder) EncodeBytes(b []byte) error {
	if err := e.writeValueHeader(TypeBytes, uint64(len(b))); err != nil {
		return err
	}
	if len(b) > 0 {
		if err := e.t.WriteBytes(b); err != nil {
			return err
		}
	}
	e.commitItem()
	return nil
}

// --- containers ----------------------------------------------------------

// EncodeSeq writes a Seq of n items. emit is called once per index in
// order and must write exactly one item each call.
func (e *Encoder) EncodeSeq(n int, emit func(*Encoder, int) error) error {
	if err := e.writeValueHeader(TypeSeq, uint64(n)); err != nil {
		return err
	}
	e.pushScope()
	for i := 0; i < n; i++ {
		if err := emit(e, i); err != nil {
			e.popScope()
			return err
		}
	}
	got := e.popScope()
	if got != n {
		return newErr(KindCountMismatch, e.t.Offset(), "seq declared %d items, emitted %d", n, got)
	}
	e.commitItem()
	return nil
}

// EncodeMap writes a Map of n key/value pairs. emit is called once per
// index in order and must write exactly two items each call: the key,
// then the value.
func (e *Encoder) EncodeMap(n int, emit func(*Encoder, int) error) error {
	if err := e.writeValueHeader(TypeMap, uint64(n)); err != nil {
		return err
	}
	e.pushScope()
	for i := 0; i < n; i++ {
		if err := emit(e, i); err != nil {
			e.popScope()
			return err
		}
	}
	got := e.popScope()
	if got != 2*n {
		return newErr(KindCountMismatch, e.t.Offset(), "map declared %d pairs, emitted %d items", n, got)
	}
	e.commitItem()
	return nil
}

// EncodeVariant writes a Variant with the given discriminant and a
// single payload item.
func (e *Encoder) EncodeVariant(tag VariantTag, payload Encodable) error {
	if tag.Named {
		if err := e.writeNamedVariantHeader(tag.Name); err != nil {
			return err
		}
	} else {
		if err := e.writeVariantIDHeader(tag.ID); err != nil {
			return err
		}
	}
	e.pushScope()
	if err := payload.EncodeDBOR(e); err != nil {
		e.popScope()
		return err
	}
	got := e.popScope()
	if got != 1 {
		return newErr(KindCountMismatch, e.t.Offset(), "variant payload wrote %d items, want 1", got)
	}
	e.commitItem()
	return nil
}

func (e *Encoder) writeVariantIDHeader(id uint32) error {
	switch {
	case id <= variantInlineMax:
		return e.t.WriteBytes([]byte{header(TypeVariant, uint8(id))})
	case id <= math.MaxUint8:
		return e.t.WriteBytes([]byte{header(TypeVariant, variantFollowU8), byte(id)})
	case id <= math.MaxUint16:
		buf := make([]byte, 3)
		buf[0] = header(TypeVariant, variantFollowU16)
		binary.LittleEndian.PutUint16(buf[1:], uint16(id))
		return e.t.WriteBytes(buf)
	default:
		buf := make([]byte, 5)
		buf[0] = header(TypeVariant, variantFollowU32)
		binary.LittleEndian.PutUint32(buf[1:], id)
		return e.t.WriteBytes(buf)
	}
}

func (e *Encoder) writeNamedVariantHeader(name string) error {
	if err := e.t.WriteBytes([]byte{header(TypeVariant, variantNamed)}); err != nil {
		return err
	}
	nb := []byte(name)
	n := uint64(len(nb))
	switch {
	case n <= namedInlineMax:
		if err := e.t.WriteBytes([]byte{byte(n)}); err != nil {
			return err
		}
	case n <= math.MaxUint8:
		if err := e.t.WriteBytes([]byte{namedFollowU8, byte(n)}); err != nil {
			return err
		}
	case n <= math.MaxUint16:
		buf := make([]byte, 3)
		buf[0] = namedFollowU16
		binary.LittleEndian.PutUint16(buf[1:], uint16(n))
		if err := e.t.WriteBytes(buf); err != nil {
			return err
		}
	case n <= math.MaxUint32:
		buf := make([]byte, 5)
		buf[0] = namedFollowU32
		binary.LittleEndian.PutUint32(buf[1:], uint32(n))
		if err := e.t.WriteBytes(buf); err != nil {
			return err
		}
	default:
		buf := make([]byte, 9)
		buf[0] = namedFollowU64
		binary.LittleEndian.PutUint64(buf[1:], n)
		if err := e.t.WriteBytes(buf); err != nil {
			return err
		}
	}
	return e.t.WriteBytes(nb)
}

// writeValueHeader writes the minimal-width header for a Uint value or
// a Seq/Bytes/Map length, all of which share the same (T,P) table:
// 0-23 inline, else u8/u16/u32/u64 follow classes.
func (e *Encoder) writeValueHeader(t Type, v uint64) error {
	switch {
	case v <= 23:
		return e.t.WriteBytes([]byte{header(t, uint8(v))})
	case v <= math.MaxUint8:
		return e.t.WriteBytes([]byte{header(t, paramFollowU8), byte(v)})
	case v <= math.MaxUint16:
		buf := make([]byte, 3)
		buf[0] = header(t, paramFollowU16)
		binary.LittleEndian.PutUint16(buf[1:], uint16(v))
		return e.t.WriteBytes(buf)
	case v <= math.MaxUint32:
		buf := make([]byte, 5)
		buf[0] = header(t, paramFollowU32)
		binary.LittleEndian.PutUint32(buf[1:], uint32(v))
		return e.t.WriteBytes(buf)
	default:
		buf := make([]byte, 9)
		buf[0] = header(t, paramFollowU64)
		binary.LittleEndian.PutUint64(buf[1:], v)
		return e.t.WriteBytes(buf)
	}
}
