package dbortext

import (
	"testing"

	"github.com/dbor-go/dbor"
)

func TestValidateUTF8Valid(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("hello world"),
		[]byte("héllo wörld"),
		[]byte("日本語"),
	}
	for _, c := range cases {
		if err := ValidateUTF8(c); err != nil {
			t.Errorf("ValidateUTF8(%q) = %v, want nil", c, err)
		}
	}
}

func TestValidateUTF8Invalid(t *testing.T) {
	b := []byte{0x68, 0x65, 0xff, 0x6c, 0x6c, 0x6f}
	err := ValidateUTF8(b)
	if err == nil {
		t.Fatal("expected an error for an ill-formed byte sequence, got nil")
	}
	if !dbor.IsKind(err, dbor.KindInvalidUtf8) {
		t.Fatalf("expected Kind InvalidUtf8, got %v", err)
	}
}

func TestValidateUTF8TruncatedMultibyte(t *testing.T) {
	b := []byte{0xe6, 0x97}
	if err := ValidateUTF8(b); err == nil {
		t.Fatal("expected an error for a truncated multi-byte sequence, got nil")
	}
}
