package dborcli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dbor-go/dbor"
	"github.com/dbor-go/dbor/internal/dborschema"
)

func TestDumpDecodeAnnotatesOffsets(t *testing.T) {
	v, err := ParseValue(`[1, "hi"]`)
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}

	var encoded bytes.Buffer
	enc := dbor.NewEncoder(dbor.NewWriterTransport(&encoded))
	if err := enc.Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var out bytes.Buffer
	dec := dbor.NewDecoder(dbor.NewReaderTransport(bytes.NewReader(encoded.Bytes())))
	if err := DumpDecode(dec, &out); err != nil {
		t.Fatalf("DumpDecode: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "seq[2]") {
		t.Errorf("expected a seq[2] line, got:\n%s", text)
	}
	if !strings.Contains(text, "uint 1") {
		t.Errorf("expected a uint 1 line, got:\n%s", text)
	}
	if !strings.Contains(text, `bytes[2] "hi"`) {
		t.Errorf("expected a bytes[2] line, got:\n%s", text)
	}
	if !strings.Contains(text, "[off ") {
		t.Errorf("expected offset annotations, got:\n%s", text)
	}
}

func TestDumpDecodeCheckSchemaReportsIncompatible(t *testing.T) {
	v, err := ParseValue(`@old(1)`)
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	var encoded bytes.Buffer
	enc := dbor.NewEncoder(dbor.NewWriterTransport(&encoded))
	if err := enc.Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}

	reg := dborschema.NewRegistry()
	if err := reg.Register("old", "legacy variant", "0.1.0"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var out bytes.Buffer
	dec := dbor.NewDecoder(dbor.NewReaderTransport(bytes.NewReader(encoded.Bytes())))
	if err := DumpDecodeCheckSchema(dec, &out, reg, ">=0.2.0"); err != nil {
		t.Fatalf("DumpDecodeCheckSchema: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "variant @old") {
		t.Errorf("expected a variant @old line, got:\n%s", text)
	}
	if !strings.Contains(text, `incompatible with constraint ">=0.2.0": [old]`) {
		t.Errorf("expected an incompatibility report, got:\n%s", text)
	}
}

func TestDumpDecodeCheckSchemaReportsUnregistered(t *testing.T) {
	v, err := ParseValue(`@mystery(1)`)
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	var encoded bytes.Buffer
	enc := dbor.NewEncoder(dbor.NewWriterTransport(&encoded))
	if err := enc.Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var out bytes.Buffer
	dec := dbor.NewDecoder(dbor.NewReaderTransport(bytes.NewReader(encoded.Bytes())))
	if err := DumpDecodeCheckSchema(dec, &out, dborschema.NewRegistry(), ">=0.2.0"); err != nil {
		t.Fatalf("DumpDecodeCheckSchema: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "unregistered named variants: [mystery]") {
		t.Errorf("expected an unregistered report, got:\n%s", text)
	}
}

func TestPrintRendersValueTree(t *testing.T) {
	var out bytes.Buffer
	Print(&out, dbor.NewSeq(dbor.NewUint(1), dbor.NewBool(true)))
	text := out.String()
	if !strings.Contains(text, "seq[2]") || !strings.Contains(text, "uint 1") || !strings.Contains(text, "bool true") {
		t.Errorf("unexpected Print output:\n%s", text)
	}
}
