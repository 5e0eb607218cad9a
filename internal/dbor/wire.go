// Package dbor implements the DBOR binary serialization format: a
// CBOR-derived, length-prefixed encoding of typed, self-describing
// trees biased toward tight encoding of small integers and small
// collection lengths.
package dbor

// Type is the high 3 bits of an instruction byte.
type Type uint8

const (
	TypeUint    Type = 0
	TypeInt     Type = 1
	TypeMisc    Type = 2
	TypeVariant Type = 3
	TypeSeq     Type = 4
	TypeBytes   Type = 5
	TypeMap     Type = 6
	TypeReserved Type = 7
)

const (
	typeShift = 5
	paramMask = 0x1F
)

// header packs a type tag and a 5-bit parameter into one instruction byte.
func header(t Type, p uint8) byte {
	return byte(t)<<typeShift | (p & paramMask)
}

// splitHeader extracts the type tag and parameter from an instruction byte.
func splitHeader(b byte) (Type, uint8) {
	return Type(b >> typeShift), b & paramMask
}

// Parameter classes shared by Uint, Int, and the length encodings of
// Seq/Bytes/Map. The four "follow" classes always mean "read this many
// little-endian bytes for the value/length". Variant ids and
// variant-name lengths use their own constants below.
const (
	paramFollowU8  = 24
	paramFollowU16 = 25
	paramFollowU32 = 26
	paramFollowU64 = 27
)

// Misc (T=2) parameter values.
const (
	miscFalse = 0
	miscTrue  = 1
	miscUnit  = 2
	miscNone  = 3
	miscF32   = 4
	miscF64   = 5
)

// Variant (T=3) parameter values.
const (
	variantInlineMax  = 23
	variantFollowU8   = 24
	variantFollowU16  = 25
	variantFollowU32  = 26
	variantNamed      = 27
)

// Int (T=1) parameter layout.
const (
	intInlinePosMax = 15 // P 0..15 => value P
	intInlineNegLo  = 16 // P 16..23 => value P-24, i.e. -8..-1
	intInlineNegHi  = 23
)

// Named Variant Byte (follows a T=3,P=27 instruction byte) length classes.
const (
	namedInlineMax  = 247
	namedFollowU8   = 248
	namedFollowU16  = 249
	namedFollowU32  = 250
	namedFollowU64  = 251
)

// reservedMisc reports whether a T=2 parameter is outside the defined
// scalar set.
func reservedMisc(p uint8) bool {
	return p > miscF64
}

// reservedParam reports whether p is one of the universally-reserved
// high parameter values (28-31) shared by Uint, Int, Variant, Seq,
// Bytes, and Map headers.
func reservedParam(p uint8) bool {
	return p >= 28 && p <= 31
}
