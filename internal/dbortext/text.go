// Package dbortext validates that a Bytes item's octets are legal
// UTF-8 when a decoder visitor asks to interpret them as text (spec
// §7, InvalidUtf8). It is only reached when a visitor makes that
// request; the core decoder itself is agnostic to text vs. binary.
package dbortext

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dbor-go/dbor"
)

// ValidateUTF8 returns nil if b is well-formed UTF-8, or a *dbor.Error
// of Kind KindInvalidUtf8 naming the byte offset of the first ill-formed
// sequence. unicode.UTF8 is x/text's lenient pass-through decoder: it
// substitutes U+FFFD for ill-formed sequences and reports no error, so
// it cannot validate anything. unicode.UTF8Validator is the decoder
// x/text actually built for this — it errors on the first ill-formed
// sequence instead of repairing it.
func ValidateUTF8(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, n, err := transform.Bytes(unicode.UTF8Validator.NewDecoder(), b)
	if err != nil {
		return &dbor.Error{
			Kind:    dbor.KindInvalidUtf8,
			Message: "invalid UTF-8 sequence: " + err.Error(),
			Offset:  int64(n),
			Cause:   err,
		}
	}
	return nil
}
