package dbor

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func decodeHex(t *testing.T, h string) (Value, error) {
	t.Helper()
	raw, err := hex.DecodeString(h)
	if err != nil {
		t.Fatalf("bad test fixture hex %q: %v", h, err)
	}
	dec := NewDecoder(NewReaderTransport(bytes.NewReader(raw)))
	return DecodeValue(dec)
}

func TestDecodeUintWidths(t *testing.T) {
	tests := []struct {
		hex  string
		want uint64
	}{
		{"00", 0},
		{"17", 23},
		{"1818", 24},
		{"18ff", 255},
		{"190001", 256},
		{"19ffff", 65535},
		{"1a00000100", 65536},
		{"1affffffff", 1<<32 - 1},
		{"1b0000000001000000", 1 << 32},
	}
	for _, tt := range tests {
		v, err := decodeHex(t, tt.hex)
		if err != nil {
			t.Fatalf("decode %q: %v", tt.hex, err)
		}
		if v.Kind != KindValUint || v.UintVal != tt.want {
			t.Errorf("decode %q: got %+v, want uint %d", tt.hex, v, tt.want)
		}
	}
}

func TestDecodeIntInline(t *testing.T) {
	tests := []struct {
		hex  string
		want int64
	}{
		{"20", 0},
		{"2f", 15},
		{"37", -1},
		{"30", -8},
		{"38f7", -9},
	}
	for _, tt := range tests {
		v, err := decodeHex(t, tt.hex)
		if err != nil {
			t.Fatalf("decode %q: %v", tt.hex, err)
		}
		if v.Kind != KindValInt || v.IntVal != tt.want {
			t.Errorf("decode %q: got %+v, want int %d", tt.hex, v, tt.want)
		}
	}
}

func TestDecodeRoundTripCompound(t *testing.T) {
	want := NewSeq(
		NewBytes([]byte("Hello world!")),
		NewUint(4),
		NewUint(0x27),
		NewSeq(NewUint(0x1234), NewUint(0x6789), NewUint(0xABCD)),
	)
	hexStr := "84ac48656c6c6f20776f726c64210418278319341219896719cdab"
	got, err := decodeHex(t, hexStr)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got, want)
	}
}

func TestDecodeNamedVariant(t *testing.T) {
	v, err := decodeHex(t, "7b0568656c6c6f42")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if v.Kind != KindValVariant || !v.Variant.Tag.Named || v.Variant.Tag.Name != "hello" {
		t.Fatalf("expected named variant 'hello', got %+v", v)
	}
	if v.Variant.Payload.Kind != KindValUnit {
		t.Fatalf("expected unit payload, got %+v", v.Variant.Payload)
	}
}

func TestDecodeReservedTypeTag(t *testing.T) {
	_, err := decodeHex(t, "e0")
	if !IsKind(err, KindReserved) {
		t.Fatalf("expected Reserved, got %v", err)
	}
}

func TestDecodeReservedMiscParam(t *testing.T) {
	// T=2 (Misc), P=6: reserved.
	_, err := decodeHex(t, "46")
	if !IsKind(err, KindReserved) {
		t.Fatalf("expected Reserved, got %v", err)
	}
}

func TestDecodeUnexpectedEofOnMapPairs(t *testing.T) {
	// Map header declaring 6 pairs (P=6) but only 5 pairs of uints follow.
	raw := []byte{header(TypeMap, 6)}
	for i := 0; i < 5*2; i++ {
		raw = append(raw, header(TypeUint, uint8(i)))
	}
	dec := NewDecoder(NewReaderTransport(bytes.NewReader(raw)))
	_, err := DecodeValue(dec)
	if !IsKind(err, KindUnexpectedEof) {
		t.Fatalf("expected UnexpectedEof, got %v", err)
	}
}

func TestDecodeDepthExceeded(t *testing.T) {
	// Build a deeply nested seq of 1-element seqs exceeding the limit.
	var raw []byte
	depth := DefaultMaxDepth + 10
	for i := 0; i < depth; i++ {
		raw = append(raw, header(TypeSeq, 1))
	}
	raw = append(raw, header(TypeUint, 0))
	dec := NewDecoder(NewReaderTransport(bytes.NewReader(raw)))
	_, err := DecodeValue(dec)
	if !IsKind(err, KindDepthExceeded) {
		t.Fatalf("expected DepthExceeded, got %v", err)
	}
}

func TestDecodeLengthOverflowViaHugeBytesLength(t *testing.T) {
	raw := []byte{header(TypeBytes, paramFollowU64)}
	huge := make([]byte, 8)
	for i := range huge {
		huge[i] = 0xFF
	}
	raw = append(raw, huge...)
	dec := NewDecoder(NewReaderTransport(bytes.NewReader(raw)))
	_, err := DecodeValue(dec)
	if !IsKind(err, KindLengthOverflow) {
		t.Fatalf("expected LengthOverflow, got %v", err)
	}
}

func TestForwardOnlyOffsetOnError(t *testing.T) {
	raw := []byte{header(TypeUint, paramFollowU32), 0x01, 0x02} // truncated
	tr := NewReaderTransport(bytes.NewReader(raw))
	dec := NewDecoder(tr)
	_, err := DecodeValue(dec)
	if !IsKind(err, KindUnexpectedEof) {
		t.Fatalf("expected UnexpectedEof, got %v", err)
	}
	// The header and both available parameter bytes were consumed; the
	// cursor never moves back on failure.
	if got := tr.Offset(); got != int64(len(raw)) {
		t.Fatalf("expected offset %d after the failed read, got %d", len(raw), got)
	}
}

func TestEncodeDecodeRoundTripVariety(t *testing.T) {
	values := []Value{
		NewUint(0),
		NewUint(1 << 40),
		NewInt(-1000),
		NewBool(true),
		NewUnit(),
		NewNone(),
		NewF32(3.5),
		NewF64(-2.25),
		NewBytes([]byte("round trip")),
		NewSeq(NewUint(1), NewSeq(), NewBytes(nil)),
		NewMap(MapEntry{Key: NewUint(1), Value: NewBool(true)}, MapEntry{Key: NewBytes([]byte("k")), Value: NewInt(-2)}),
		NewVariant(UintTag(5), NewUint(9)),
		NewVariant(NameTag("tag"), NewSeq(NewUint(1), NewUint(2))),
	}
	for i, v := range values {
		var buf bytes.Buffer
		enc := NewEncoder(NewWriterTransport(&buf))
		if err := enc.Encode(v); err != nil {
			t.Fatalf("case %d: encode failed: %v", i, err)
		}
		dec := NewDecoder(NewReaderTransport(bytes.NewReader(buf.Bytes())))
		got, err := DecodeValue(dec)
		if err != nil {
			t.Fatalf("case %d: decode failed: %v", i, err)
		}
		if !got.Equal(v) {
			t.Fatalf("case %d: round trip mismatch: got=%+v want=%+v", i, got, v)
		}
	}
}
