package dborbatch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dbor-go/dbor"
)

// failingEncodable returns an error from EncodeDBOR, used to exercise
// EncodeAll's first-error cancellation path.
type failingEncodable struct{ err error }

func (f failingEncodable) EncodeDBOR(e *dbor.Encoder) error { return f.err }

func TestEncodeAllRoundTrip(t *testing.T) {
	items := []dbor.Encodable{
		dbor.NewUint(1),
		dbor.NewUint(2),
		dbor.NewBytes([]byte("three")),
	}

	out, err := EncodeAll(context.Background(), items, func() (dbor.Transport, func() []byte) {
		var buf bytes.Buffer
		return dbor.NewWriterTransport(&buf), func() []byte { return buf.Bytes() }
	})
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	if len(out) != len(items) {
		t.Fatalf("expected %d outputs, got %d", len(items), len(out))
	}
	for i, blob := range out {
		if len(blob) == 0 {
			t.Errorf("item %d encoded to empty output", i)
		}
		got, err := dbor.DecodeValue(dbor.NewDecoder(dbor.NewReaderTransport(bytes.NewReader(blob))))
		if err != nil {
			t.Fatalf("item %d: decode: %v", i, err)
		}
		if !got.Equal(items[i].(dbor.Value)) {
			t.Errorf("item %d: got %+v, want %+v", i, got, items[i])
		}
	}
}

func TestEncodeAllPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	items := []dbor.Encodable{
		dbor.NewUint(1),
		failingEncodable{err: boom},
	}
	_, err := EncodeAll(context.Background(), items, func() (dbor.Transport, func() []byte) {
		var buf bytes.Buffer
		return dbor.NewWriterTransport(&buf), func() []byte { return buf.Bytes() }
	})
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected the underlying error to be wrapped, got %v", err)
	}
}

func TestDecodeAllRoundTrip(t *testing.T) {
	values := []dbor.Value{dbor.NewUint(7), dbor.NewBool(true), dbor.NewBytes([]byte("x"))}
	var blobs [][]byte
	for _, v := range values {
		var buf bytes.Buffer
		enc := dbor.NewEncoder(dbor.NewWriterTransport(&buf))
		if err := enc.Encode(v); err != nil {
			t.Fatalf("encode fixture: %v", err)
		}
		blobs = append(blobs, buf.Bytes())
	}

	out, err := DecodeAll(context.Background(), blobs, func(b []byte) dbor.Transport {
		return dbor.NewReaderTransport(bytes.NewReader(b))
	})
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(out) != len(values) {
		t.Fatalf("expected %d results, got %d", len(values), len(out))
	}
	for i, v := range values {
		if !out[i].Equal(v) {
			t.Errorf("item %d: got %+v, want %+v", i, out[i], v)
		}
	}
}

func TestDecodeAllPropagatesError(t *testing.T) {
	blobs := [][]byte{{0xff, 0xff, 0xff}}
	_, err := DecodeAll(context.Background(), blobs, func(b []byte) dbor.Transport {
		return dbor.NewReaderTransport(bytes.NewReader(b))
	})
	if err == nil {
		t.Fatal("expected an error for malformed input, got nil")
	}
}
