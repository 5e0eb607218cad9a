package dbor

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func encodeToHex(t *testing.T, v Encodable) string {
	t.Helper()
	var buf bytes.Buffer
	enc := NewEncoder(NewWriterTransport(&buf))
	if err := enc.Encode(v); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return hex.EncodeToString(buf.Bytes())
}

func TestEncodeUintWidths(t *testing.T) {
	tests := []struct {
		v    uint64
		want string
	}{
		{0, "00"},
		{23, "17"},
		{24, "1818"},
		{255, "18ff"},
		{256, "190001"},
		{65535, "19ffff"},
		{65536, "1a00000100"},
		{1<<32 - 1, "1affffffff"},
		{1 << 32, "1b0000000001000000"},
	}
	for _, tt := range tests {
		got := encodeToHex(t, NewUint(tt.v))
		if got != tt.want {
			t.Errorf("Uint(%d): got %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestEncodeIntInline(t *testing.T) {
	tests := []struct {
		v    int64
		want string
	}{
		{0, "20"},
		{15, "2f"},
		{-1, "37"},
		{-8, "30"},
		{-9, "38f7"},
	}
	for _, tt := range tests {
		got := encodeToHex(t, NewInt(tt.v))
		if got != tt.want {
			t.Errorf("Int(%d): got %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestEncodeMisc(t *testing.T) {
	tests := []struct {
		name string
		v    Encodable
		want string
	}{
		{"false", NewBool(false), "40"},
		{"true", NewBool(true), "41"},
		{"unit", NewUnit(), "42"},
		{"none", NewNone(), "43"},
		{"f32", NewF32(1.0), "440000803f"},
		{"f64", NewF64(1.0), "45000000000000f03f"},
	}
	for _, tt := range tests {
		got := encodeToHex(t, tt.v)
		if got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEncodeCompoundFixture(t *testing.T) {
	// "Hello world!", 4, u8-tagged 0x27, seq of three u16-tagged uints.
	v := NewSeq(
		NewBytes([]byte("Hello world!")),
		NewUint(4),
		NewUint(0x27),
		NewSeq(NewUint(0x1234), NewUint(0x6789), NewUint(0xABCD)),
	)
	want := "84ac48656c6c6f20776f726c64210418278319341219896719cdab"
	got := encodeToHex(t, v)
	if got != want {
		t.Fatalf("compound fixture mismatch:\n got=%s\nwant=%s", got, want)
	}
}

func TestEncodeNamedVariant(t *testing.T) {
	v := NewVariant(NameTag("hello"), NewUnit())
	want := "7b0568656c6c6f42"
	got := encodeToHex(t, v)
	if got != want {
		t.Fatalf("named variant mismatch: got=%s want=%s", got, want)
	}
}

func TestEncodeSeqCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(NewWriterTransport(&buf))
	err := enc.EncodeSeq(1, func(e *Encoder, i int) error {
		// Declares 1 element but writes 2: wrong item count.
		if err := e.EncodeUint(1); err != nil {
			return err
		}
		return e.EncodeUint(2)
	})
	if !IsKind(err, KindCountMismatch) {
		t.Fatalf("expected CountMismatch, got %v", err)
	}
}

func TestEncodeMapCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(NewWriterTransport(&buf))
	err := enc.EncodeMap(1, func(e *Encoder, i int) error {
		// Only emit the key, never the value: wrong item count.
		return e.EncodeUint(1)
	})
	if err == nil {
		t.Fatal("expected CountMismatch")
	}
	if !IsKind(err, KindCountMismatch) {
		t.Fatalf("expected CountMismatch, got %v", err)
	}
}
