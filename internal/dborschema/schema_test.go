package dborschema

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("point", "a 2D coordinate pair", "1.0.0"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	e, ok := r.Lookup("point")
	if !ok {
		t.Fatal("expected point to be registered")
	}
	if e.Description != "a 2D coordinate pair" {
		t.Errorf("unexpected description: %q", e.Description)
	}
	if e.Since.String() != "1.0.0" {
		t.Errorf("unexpected Since: %s", e.Since.String())
	}
}

func TestLookupMissing(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("nope"); ok {
		t.Fatal("expected Lookup to report not found")
	}
}

func TestRegisterInvalidVersion(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("bad", "", "not-a-version"); err == nil {
		t.Fatal("expected an error for an invalid semver string, got nil")
	}
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("zeta", "", "1.0.0")
	_ = r.Register("alpha", "", "1.0.0")
	_ = r.Register("mu", "", "1.0.0")
	got := r.Names()
	want := []string{"alpha", "mu", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestCompatibleWith(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("old", "", "0.1.0")
	_ = r.Register("new", "", "0.5.0")

	ok, incompatible, err := r.CompatibleWith(">=0.2.0")
	if err != nil {
		t.Fatalf("CompatibleWith: %v", err)
	}
	if ok {
		t.Fatal("expected incompatibility since 'old' predates the constraint")
	}
	if len(incompatible) != 1 || incompatible[0] != "old" {
		t.Fatalf("unexpected incompatible list: %v", incompatible)
	}

	ok, incompatible, err = r.CompatibleWith(">=0.0.1")
	if err != nil {
		t.Fatalf("CompatibleWith: %v", err)
	}
	if !ok || len(incompatible) != 0 {
		t.Fatalf("expected full compatibility, got ok=%v incompatible=%v", ok, incompatible)
	}
}

func TestCompatibleWithInvalidConstraint(t *testing.T) {
	r := NewRegistry()
	if _, _, err := r.CompatibleWith("not a constraint"); err == nil {
		t.Fatal("expected an error for an invalid constraint, got nil")
	}
}
