package dbor

// This file defines the adapter surface (spec §6) that lets arbitrary
// host data structures drive the codec without the codec reflecting on
// their layout: Encodable on the encode path, Visitor (and its
// container counterparts) on the decode path.

// Encodable is implemented by any host value that can drive the
// encoder directly. internal/dbor.Value implements it as the generic
// reference adapter; generated adapters (cmd/dbor-gen) implement it
// for user struct types.
type Encodable interface {
	EncodeDBOR(e *Encoder) error
}

// VariantTag identifies a Variant's discriminant: either a numeric id
// or a UTF-8 name (never both).
type VariantTag struct {
	Named bool
	ID    uint32
	Name  string
}

// UintTag builds a numeric VariantTag.
func UintTag(id uint32) VariantTag { return VariantTag{ID: id} }

// NameTag builds a named VariantTag.
func NameTag(name string) VariantTag { return VariantTag{Named: true, Name: name} }

// Visitor receives one decoded item. The decoder calls exactly one of
// these methods per item; which one depends on the wire type tag the
// decoder read, not on any expectation from the visitor. The visitor
// returning TypeMismatch (or any error) aborts the decode.
type Visitor interface {
	VisitUint(v uint64) error
	VisitInt(v int64) error
	VisitBool(v bool) error
	VisitUnit() error
	VisitNone() error
	VisitF32(v float32) error
	VisitF64(v float64) error
	VisitBytes(v []byte) error

	// VisitSeq is called once the Seq header's length is known. The
	// returned SeqVisitor supplies a destination Visitor for each of
	// the length elements, in order.
	VisitSeq(length int) (SeqVisitor, error)

	// VisitMap is called once the Map header's pair count is known.
	VisitMap(length int) (MapVisitor, error)

	// VisitVariant is called once the variant's tag is known. The
	// returned Visitor receives the single payload item.
	VisitVariant(tag VariantTag) (Visitor, error)
}

// SeqVisitor supplies one destination Visitor per sequence element and
// is notified when the sequence is fully consumed.
type SeqVisitor interface {
	Element(index int) (Visitor, error)
	Close() error
}

// MapVisitor supplies destination Visitors for a map's key and value
// items, in order (key before value), and is notified when all pairs
// have been consumed.
type MapVisitor interface {
	Key(index int) (Visitor, error)
	Value(index int) (Visitor, error)
	Close() error
}
