package dborcli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dbor-go/dbor"
	"github.com/dbor-go/dbor/internal/dborschema"
)

// Print writes a human-readable tree for v to w, one line per item,
// indented by nesting depth — the `dbor-cli decode` and `watch`
// rendering.
func Print(w io.Writer, v dbor.Value) {
	printValue(w, v, 0)
}

func printValue(w io.Writer, v dbor.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Kind {
	case dbor.KindValUint:
		fmt.Fprintf(w, "%suint %d\n", indent, v.UintVal)
	case dbor.KindValInt:
		fmt.Fprintf(w, "%sint %d\n", indent, v.IntVal)
	case dbor.KindValBool:
		fmt.Fprintf(w, "%sbool %t\n", indent, v.BoolVal)
	case dbor.KindValUnit:
		fmt.Fprintf(w, "%sunit\n", indent)
	case dbor.KindValNone:
		fmt.Fprintf(w, "%snone\n", indent)
	case dbor.KindValF32:
		fmt.Fprintf(w, "%sf32 %v\n", indent, v.F32Val)
	case dbor.KindValF64:
		fmt.Fprintf(w, "%sf64 %v\n", indent, v.F64Val)
	case dbor.KindValBytes:
		fmt.Fprintf(w, "%sbytes[%d] %q\n", indent, len(v.Bytes), v.Bytes)
	case dbor.KindValSeq:
		fmt.Fprintf(w, "%sseq[%d]\n", indent, len(v.Seq))
		for _, item := range v.Seq {
			printValue(w, item, depth+1)
		}
	case dbor.KindValMap:
		fmt.Fprintf(w, "%smap[%d]\n", indent, len(v.Map))
		for _, e := range v.Map {
			fmt.Fprintf(w, "%s  key:\n", indent)
			printValue(w, e.Key, depth+2)
			fmt.Fprintf(w, "%s  value:\n", indent)
			printValue(w, e.Value, depth+2)
		}
	case dbor.KindValVariant:
		if v.Variant.Tag.Named {
			fmt.Fprintf(w, "%svariant @%s\n", indent, v.Variant.Tag.Name)
		} else {
			fmt.Fprintf(w, "%svariant @%d\n", indent, v.Variant.Tag.ID)
		}
		printValue(w, v.Variant.Payload, depth+1)
	default:
		fmt.Fprintf(w, "%s<unknown kind %d>\n", indent, v.Kind)
	}
}

// DumpDecode reads one item from dec and writes a trace to w
// annotated with each item's byte offset — the `dbor-cli dump`
// rendering, richer than Print's plain value tree. It decodes with
// its own tracing Visitor instead of going through dbor.DecodeValue so
// it can read dec.Offset() right as each item finishes.
func DumpDecode(dec *dbor.Decoder, w io.Writer) error {
	return dec.Decode(&dumpVisitor{w: w, dec: dec, depth: 0})
}

// DumpDecodeCheckSchema is DumpDecode plus `dump --check-schema`: every
// named variant encountered while decoding is collected and, once
// decoding finishes, checked against reg for registration and
// constraint compatibility. An empty constraint only reports which
// named variants were seen, without a compatibility verdict.
func DumpDecodeCheckSchema(dec *dbor.Decoder, w io.Writer, reg *dborschema.Registry, constraint string) error {
	var seen []string
	v := &dumpVisitor{w: w, dec: dec, depth: 0, seen: &seen}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if len(seen) == 0 {
		return nil
	}
	fmt.Fprintf(w, "named variants seen: %v\n", seen)
	if constraint == "" {
		return nil
	}
	unregistered, incompatible, err := reg.CompatibleNames(seen, constraint)
	if err != nil {
		return err
	}
	if len(unregistered) > 0 {
		fmt.Fprintf(w, "unregistered named variants: %v\n", unregistered)
	}
	if len(incompatible) > 0 {
		fmt.Fprintf(w, "incompatible with constraint %q: %v\n", constraint, incompatible)
	}
	if len(unregistered) == 0 && len(incompatible) == 0 {
		fmt.Fprintf(w, "all named variants compatible with constraint %q\n", constraint)
	}
	return nil
}

type dumpVisitor struct {
	w     io.Writer
	dec   *dbor.Decoder
	depth int
	seen  *[]string // non-nil only under DumpDecodeCheckSchema; shared with every nested visitor
}

func (d *dumpVisitor) line(format string, args ...interface{}) {
	indent := strings.Repeat("  ", d.depth)
	fmt.Fprintf(d.w, "%s[off %d] "+format+"\n", append([]interface{}{indent, d.dec.Offset()}, args...)...)
}

func (d *dumpVisitor) VisitUint(v uint64) error { d.line("uint %d", v); return nil }
func (d *dumpVisitor) VisitInt(v int64) error   { d.line("int %d", v); return nil }
func (d *dumpVisitor) VisitBool(v bool) error   { d.line("bool %t", v); return nil }
func (d *dumpVisitor) VisitUnit() error         { d.line("unit"); return nil }
func (d *dumpVisitor) VisitNone() error         { d.line("none"); return nil }
func (d *dumpVisitor) VisitF32(v float32) error { d.line("f32 %v", v); return nil }
func (d *dumpVisitor) VisitF64(v float64) error { d.line("f64 %v", v); return nil }

func (d *dumpVisitor) VisitBytes(v []byte) error {
	d.line("bytes[%d] %q", len(v), v)
	return nil
}

func (d *dumpVisitor) VisitSeq(length int) (dbor.SeqVisitor, error) {
	d.line("seq[%d]", length)
	return &dumpSeq{parent: d}, nil
}

func (d *dumpVisitor) VisitMap(length int) (dbor.MapVisitor, error) {
	d.line("map[%d]", length)
	return &dumpMap{parent: d}, nil
}

func (d *dumpVisitor) VisitVariant(tag dbor.VariantTag) (dbor.Visitor, error) {
	if tag.Named {
		d.line("variant @%s", tag.Name)
		if d.seen != nil {
			*d.seen = append(*d.seen, tag.Name)
		}
	} else {
		d.line("variant @%d", tag.ID)
	}
	return &dumpVisitor{w: d.w, dec: d.dec, depth: d.depth + 1, seen: d.seen}, nil
}

type dumpSeq struct{ parent *dumpVisitor }

func (s *dumpSeq) Element(i int) (dbor.Visitor, error) {
	return &dumpVisitor{w: s.parent.w, dec: s.parent.dec, depth: s.parent.depth + 1, seen: s.parent.seen}, nil
}
func (s *dumpSeq) Close() error { return nil }

type dumpMap struct{ parent *dumpVisitor }

func (m *dumpMap) Key(i int) (dbor.Visitor, error) {
	return &dumpVisitor{w: m.parent.w, dec: m.parent.dec, depth: m.parent.depth + 1, seen: m.parent.seen}, nil
}
func (m *dumpMap) Value(i int) (dbor.Visitor, error) {
	return &dumpVisitor{w: m.parent.w, dec: m.parent.dec, depth: m.parent.depth + 1, seen: m.parent.seen}, nil
}
func (m *dumpMap) Close() error { return nil }
