package dbor

import (
	"encoding/binary"
	"math"
)

// DefaultMaxDepth bounds recursive nesting during decode, converting
// adversarial deeply-nested input into a structured error instead of
// stack exhaustion.
const DefaultMaxDepth = 1024

// Decoder reads DBOR items from a Transport and delivers them to a
// caller-supplied Visitor. It maintains a depth counter as its only
// structural state; everything else about "where we are" lives in the
// call stack of nested readItem calls, which mirrors the recursive
// shape of the value grammar itself.
type Decoder struct {
	t        Transport
	depth    int
	maxDepth int
}

// NewDecoder returns a Decoder reading from t with the default depth
// limit.
func NewDecoder(t Transport) *Decoder {
	return &Decoder{t: t, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth overrides the default recursion limit.
func (d *Decoder) SetMaxDepth(n int) { d.maxDepth = n }

// Offset reports the underlying transport's current byte offset, for
// callers (cmd/dbor-cli's dump mode) that annotate output with each
// item's position in the stream.
func (d *Decoder) Offset() int64 { return d.t.Offset() }

// Decode reads exactly one item and delivers it to v.
func (d *Decoder) Decode(v Visitor) error {
	return d.readItem(v)
}

func (d *Decoder) readItem(v Visitor) error {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.maxDepth {
		return newErr(KindDepthExceeded, d.t.Offset(), "nesting exceeds limit of %d", d.maxDepth)
	}
	b, err := d.t.ReadOne()
	if err != nil {
		return err
	}
	t, p := splitHeader(b)
	switch t {
	case TypeUint:
		val, err := d.readUintParam(p)
		if err != nil {
			return err
		}
		return v.VisitUint(val)
	case TypeInt:
		val, err := d.readIntParam(p)
		if err != nil {
			return err
		}
		return v.VisitInt(val)
	case TypeMisc:
		return d.dispatchMisc(p, v)
	case TypeVariant:
		return d.dispatchVariant(p, v)
	case TypeSeq:
		return d.dispatchSeq(p, v)
	case TypeBytes:
		return d.dispatchBytes(p, v)
	case TypeMap:
		return d.dispatchMap(p, v)
	default:
		return newErr(KindReserved, d.t.Offset(), "reserved type tag %d", t)
	}
}

func (d *Decoder) readUintParam(p uint8) (uint64, error) {
	switch {
	case p <= 23:
		return uint64(p), nil
	case p == paramFollowU8:
		b, err := d.t.ReadExact(1)
		if err != nil {
			return 0, err
		}
		return uint64(b[0]), nil
	case p == paramFollowU16:
		b, err := d.t.ReadExact(2)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case p == paramFollowU32:
		b, err := d.t.ReadExact(4)
		if err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case p == paramFollowU64:
		b, err := d.t.ReadExact(8)
		if err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b), nil
	default:
		return 0, newErr(KindReserved, d.t.Offset(), "reserved uint parameter %d", p)
	}
}

func (d *Decoder) readIntParam(p uint8) (int64, error) {
	switch {
	case p <= intInlinePosMax:
		return int64(p), nil
	case p >= intInlineNegLo && p <= intInlineNegHi:
		return int64(p) - 24, nil
	case p == paramFollowU8:
		b, err := d.t.ReadExact(1)
		if err != nil {
			return 0, err
		}
		return int64(int8(b[0])), nil
	case p == paramFollowU16:
		b, err := d.t.ReadExact(2)
		if err != nil {
			return 0, err
		}
		return int64(int16(binary.LittleEndian.Uint16(b))), nil
	case p == paramFollowU32:
		b, err := d.t.ReadExact(4)
		if err != nil {
			return 0, err
		}
		return int64(int32(binary.LittleEndian.Uint32(b))), nil
	case p == paramFollowU64:
		b, err := d.t.ReadExact(8)
		if err != nil {
			return 0, err
		}
		return int64(binary.LittleEndian.Uint64(b)), nil
	default:
		return 0, newErr(KindReserved, d.t.Offset(), "reserved int parameter %d", p)
	}
}

func (d *Decoder) dispatchMisc(p uint8, v Visitor) error {
	switch p {
	case miscFalse:
		return v.VisitBool(false)
	case miscTrue:
		return v.VisitBool(true)
	case miscUnit:
		return v.VisitUnit()
	case miscNone:
		return v.VisitNone()
	case miscF32:
		b, err := d.t.ReadExact(4)
		if err != nil {
			return err
		}
		return v.VisitF32(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case miscF64:
		b, err := d.t.ReadExact(8)
		if err != nil {
			return err
		}
		return v.VisitF64(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	default:
		return newErr(KindReserved, d.t.Offset(), "reserved misc parameter %d", p)
	}
}

func (d *Decoder) dispatchVariant(p uint8, v Visitor) error {
	var tag VariantTag
	switch {
	case p <= variantInlineMax:
		tag = UintTag(uint32(p))
	case p == variantFollowU8:
		b, err := d.t.ReadExact(1)
		if err != nil {
			return err
		}
		tag = UintTag(uint32(b[0]))
	case p == variantFollowU16:
		b, err := d.t.ReadExact(2)
		if err != nil {
			return err
		}
		tag = UintTag(uint32(binary.LittleEndian.Uint16(b)))
	case p == variantFollowU32:
		b, err := d.t.ReadExact(4)
		if err != nil {
			return err
		}
		tag = UintTag(binary.LittleEndian.Uint32(b))
	case p == variantNamed:
		nb, err := d.t.ReadOne()
		if err != nil {
			return err
		}
		n, err := d.readNamedLength(nb)
		if err != nil {
			return err
		}
		name, err := d.t.ReadExact(n)
		if err != nil {
			return err
		}
		tag = NameTag(string(name))
	default:
		return newErr(KindReserved, d.t.Offset(), "reserved variant parameter %d", p)
	}

	pv, err := v.VisitVariant(tag)
	if err != nil {
		return err
	}
	return d.readItem(pv)
}

func (d *Decoder) readNamedLength(nb byte) (int, error) {
	switch {
	case nb <= namedInlineMax:
		return int(nb), nil
	case nb == namedFollowU8:
		b, err := d.t.ReadExact(1)
		if err != nil {
			return 0, err
		}
		return int(b[0]), nil
	case nb == namedFollowU16:
		b, err := d.t.ReadExact(2)
		if err != nil {
			return 0, err
		}
		return int(binary.LittleEndian.Uint16(b)), nil
	case nb == namedFollowU32:
		b, err := d.t.ReadExact(4)
		if err != nil {
			return 0, err
		}
		n := binary.LittleEndian.Uint32(b)
		if uint64(n) > uint64(math.MaxInt) {
			return 0, newErr(KindLengthOverflow, d.t.Offset(), "variant name length %d exceeds platform capacity", n)
		}
		return int(n), nil
	case nb == namedFollowU64:
		b, err := d.t.ReadExact(8)
		if err != nil {
			return 0, err
		}
		n := binary.LittleEndian.Uint64(b)
		if n > uint64(math.MaxInt) {
			return 0, newErr(KindLengthOverflow, d.t.Offset(), "variant name length %d exceeds platform capacity", n)
		}
		return int(n), nil
	default:
		return 0, newErr(KindReserved, d.t.Offset(), "reserved named-variant-byte value %d", nb)
	}
}

// readLength decodes a Seq/Bytes/Map length using the shared
// value-header table and checks it against the platform's maximum
// container index before any allocation is made on the caller's
// behalf.
func (d *Decoder) readLength(p uint8) (int, error) {
	v, err := d.readUintParam(p)
	if err != nil {
		return 0, err
	}
	if v > uint64(math.MaxInt) {
		return 0, newErr(KindLengthOverflow, d.t.Offset(), "length %d exceeds platform capacity", v)
	}
	return int(v), nil
}

func (d *Decoder) dispatchSeq(p uint8, v Visitor) error {
	n, err := d.readLength(p)
	if err != nil {
		return err
	}
	sv, err := v.VisitSeq(n)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		ev, err := sv.Element(i)
		if err != nil {
			return err
		}
		if err := d.readItem(ev); err != nil {
			return err
		}
	}
	return sv.Close()
}

func (d *Decoder) dispatchBytes(p uint8, v Visitor) error {
	n, err := d.readLength(p)
	if err != nil {
		return err
	}
	data, err := d.t.ReadExact(n)
	if err != nil {
		return err
	}
	return v.VisitBytes(data)
}

func (d *Decoder) dispatchMap(p uint8, v Visitor) error {
	n, err := d.readLength(p)
	if err != nil {
		return err
	}
	mv, err := v.VisitMap(n)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		kv, err := mv.Key(i)
		if err != nil {
			return err
		}
		if err := d.readItem(kv); err != nil {
			return err
		}
		vv, err := mv.Value(i)
		if err != nil {
			return err
		}
		if err := d.readItem(vv); err != nil {
			return err
		}
	}
	return mv.Close()
}
