package dborcli

import "testing"

func TestParseValueScalars(t *testing.T) {
	cases := []struct {
		input string
		kind  int
	}{
		{"123", 0},
		{"-5", 1},
		{"true", 2},
		{"unit", 3},
		{"null", 4},
		{"1.5", 6},
		{`"hi"`, 7},
	}
	for _, c := range cases {
		v, err := ParseValue(c.input)
		if err != nil {
			t.Fatalf("ParseValue(%q): %v", c.input, err)
		}
		if int(v.Kind) != c.kind {
			t.Errorf("ParseValue(%q) kind = %d, want %d", c.input, v.Kind, c.kind)
		}
	}
}

func TestParseValueSeqAndMap(t *testing.T) {
	v, err := ParseValue(`[1, 2, "x"]`)
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	if len(v.Seq) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(v.Seq))
	}

	m, err := ParseValue(`{"a": 1, "b": 2}`)
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	if len(m.Map) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Map))
	}
}

func TestParseValueNamedVariant(t *testing.T) {
	v, err := ParseValue(`@hello("world")`)
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	if !v.Variant.Tag.Named || v.Variant.Tag.Name != "hello" {
		t.Fatalf("unexpected variant tag: %+v", v.Variant.Tag)
	}
}

func TestParseValueNumericVariant(t *testing.T) {
	v, err := ParseValue(`@7(42)`)
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	if v.Variant.Tag.Named || v.Variant.Tag.ID != 7 {
		t.Fatalf("unexpected variant tag: %+v", v.Variant.Tag)
	}
}

func TestParseValueTrailingGarbage(t *testing.T) {
	if _, err := ParseValue("123 456"); err == nil {
		t.Fatal("expected an error for trailing input, got nil")
	}
}

func TestParseValueUnterminatedString(t *testing.T) {
	if _, err := ParseValue(`"abc`); err == nil {
		t.Fatal("expected an error for an unterminated string, got nil")
	}
}
