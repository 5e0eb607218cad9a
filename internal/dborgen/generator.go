// Package dborgen implements the derive-like adapter generator
// referenced in spec.md §9 ("a derive-like code-generation path for
// user aggregates"): given a Go struct type, it emits an
// EncodeDBOR/Decode<Type> pair built on the hand-written field
// adapters in internal/dbor (UintInto, BytesInto, SliceInto, ...).
//
// Generated adapters treat the struct as a positional Seq, one wire
// item per exported field in declaration order (unexported fields are
// left out) — matching spec.md's Non-goal that fields are positional
// with no schema metadata on the wire. For that reason only fields
// whose Go type already matches a DBOR-native representation (uint64,
// int64, bool, string, []byte, float32, float64, a pointer to one of
// those for an optional field, a named struct type that itself has a
// generated adapter, or a slice of any of these but a pointer) are
// supported; anything else is reported as an error rather than
// silently skipped.
package dborgen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// GenOptions controls adapter generation, mirroring the shape of the
// teacher's mock generator options.
type GenOptions struct {
	TypeName       string
	PackageName    string
	Destination    string
	SourcePatterns []string
	BuildTags      []string
}

// Generate loads opts.SourcePatterns, locates the named struct type,
// and renders its Encodable/decode adapter pair.
func Generate(opts GenOptions) (string, error) {
	if strings.TrimSpace(opts.TypeName) == "" {
		return "", errors.New("TypeName is required")
	}
	patterns := opts.SourcePatterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = append(cfg.BuildFlags, fmt.Sprintf("-tags=%s", strings.Join(opts.BuildTags, ",")))
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return "", err
	}
	if packages.PrintErrors(pkgs) > 0 {
		return "", errors.New("failed to load packages")
	}

	var foundPkg *packages.Package
	var st *types.Struct
	for _, p := range pkgs {
		if p.Types == nil || p.Types.Scope() == nil {
			continue
		}
		obj := p.Types.Scope().Lookup(opts.TypeName)
		if obj == nil {
			continue
		}
		if s, ok := obj.Type().Underlying().(*types.Struct); ok {
			st = s
			foundPkg = p
			break
		}
	}
	if foundPkg == nil || st == nil {
		return "", fmt.Errorf("struct type %q not found in provided source patterns", opts.TypeName)
	}

	genPkgName := opts.PackageName
	if genPkgName == "" {
		genPkgName = foundPkg.Name
	}

	fields, err := describeFields(st)
	if err != nil {
		return "", fmt.Errorf("type %q: %w", opts.TypeName, err)
	}

	code, err := renderAdapter(genPkgName, opts.TypeName, fields)
	if err != nil {
		return "", err
	}
	if opts.Destination != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Destination), 0o755); err != nil {
			return "", err
		}
		if err := os.WriteFile(opts.Destination, []byte(code), 0o644); err != nil {
			return "", err
		}
	}
	return code, nil
}

// fieldKind is the subset of Go shapes the generator knows how to bind
// to a DBOR wire item.
type fieldKind int

const (
	kindUint fieldKind = iota
	kindInt
	kindBool
	kindString
	kindBytes
	kindF32
	kindF64
	kindOptional
	kindSlice
	kindNested
)

type field struct {
	name    string
	kind    fieldKind
	elem    *field // for kindOptional/kindSlice, describes the wrapped shape
	goType  string // the Go type's string form, for slice/nested element construction
}

func describeFields(st *types.Struct) ([]field, error) {
	fields := make([]field, 0, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		v := st.Field(i)
		if !v.Exported() {
			continue
		}
		f, err := classify(v.Name(), v.Type())
		if err != nil {
			return nil, err
		}
		fields = append(fields, *f)
	}
	return fields, nil
}

func classify(name string, t types.Type) (*field, error) {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch u.Kind() {
		case types.Uint64:
			return &field{name: name, kind: kindUint, goType: "uint64"}, nil
		case types.Int64:
			return &field{name: name, kind: kindInt, goType: "int64"}, nil
		case types.Bool:
			return &field{name: name, kind: kindBool, goType: "bool"}, nil
		case types.String:
			return &field{name: name, kind: kindString, goType: "string"}, nil
		case types.Float32:
			return &field{name: name, kind: kindF32, goType: "float32"}, nil
		case types.Float64:
			return &field{name: name, kind: kindF64, goType: "float64"}, nil
		}
		return nil, fmt.Errorf("field %s: unsupported basic type %s", name, u)
	case *types.Pointer:
		inner, err := classify(name, u.Elem())
		if err != nil {
			return nil, fmt.Errorf("field %s: optional %w", name, err)
		}
		if inner.kind == kindOptional || inner.kind == kindSlice || inner.kind == kindNested {
			return nil, fmt.Errorf("field %s: optional %s is unsupported", name, inner.goType)
		}
		return &field{name: name, kind: kindOptional, elem: inner, goType: "*" + inner.goType}, nil
	case *types.Slice:
		if b, ok := u.Elem().Underlying().(*types.Basic); ok && b.Kind() == types.Uint8 {
			return &field{name: name, kind: kindBytes, goType: "[]byte"}, nil
		}
		inner, err := classify(name, u.Elem())
		if err != nil {
			return nil, fmt.Errorf("field %s: slice element %w", name, err)
		}
		if inner.kind == kindOptional || inner.kind == kindSlice {
			return nil, fmt.Errorf("field %s: slice of %s is unsupported", name, inner.goType)
		}
		return &field{name: name, kind: kindSlice, elem: inner, goType: "[]" + inner.goType}, nil
	case *types.Struct:
		named, ok := t.(*types.Named)
		if !ok {
			return nil, fmt.Errorf("field %s: anonymous struct fields are unsupported", name)
		}
		return &field{name: name, kind: kindNested, goType: named.Obj().Name()}, nil
	default:
		return nil, fmt.Errorf("field %s: unsupported type %s", name, t)
	}
}

// renderAdapter emits the Go source for the EncodeDBOR method and the
// DecodeXxx function, using fmt.Fprintf string assembly in the
// teacher's generator style, then gofmt's the result.
func renderAdapter(pkg, typeName string, fields []field) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	buf.WriteString("import \"github.com/dbor-go/dbor\"\n\n")

	fmt.Fprintf(&buf, "// EncodeDBOR implements dbor.Encodable for %s.\n", typeName)
	fmt.Fprintf(&buf, "func (x *%s) EncodeDBOR(e *dbor.Encoder) error {\n", typeName)
	fmt.Fprintf(&buf, "\treturn e.EncodeSeq(%d, func(e *dbor.Encoder, i int) error {\n", len(fields))
	buf.WriteString("\t\tswitch i {\n")
	for i, f := range fields {
		fmt.Fprintf(&buf, "\t\tcase %d:\n", i)
		writeEncodeCase(&buf, "x."+f.name, f)
	}
	buf.WriteString("\t\t}\n\t\treturn nil\n\t})\n}\n\n")

	fmt.Fprintf(&buf, "// fieldsOf%s builds the positional field adapter for %s, reusable\n", typeName, typeName)
	fmt.Fprintf(&buf, "// both by Decode%s and by any generated parent embedding %s.\n", typeName, typeName)
	fmt.Fprintf(&buf, "func fieldsOf%s(x *%s) dbor.Visitor {\n", typeName, typeName)
	for i, f := range fields {
		writeDecodeLocals(&buf, i, f)
	}
	buf.WriteString("\treturn dbor.StructFieldsClose(func() error {\n")
	for i, f := range fields {
		writeDecodeAssign(&buf, i, f)
	}
	buf.WriteString("\t\treturn nil\n\t},\n")
	for i, f := range fields {
		fmt.Fprintf(&buf, "\t\t%s,\n", decodeVisitorExpr(i, f))
	}
	buf.WriteString("\t)\n}\n\n")

	fmt.Fprintf(&buf, "// Decode%s reads one %s from d.\n", typeName, typeName)
	fmt.Fprintf(&buf, "func Decode%s(d *dbor.Decoder) (*%s, error) {\n", typeName, typeName)
	fmt.Fprintf(&buf, "\tvar x %s\n", typeName)
	fmt.Fprintf(&buf, "\tif err := d.Decode(fieldsOf%s(&x)); err != nil {\n\t\treturn nil, err\n\t}\n", typeName)
	buf.WriteString("\treturn &x, nil\n}\n")

	fmted, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.String(), nil
	}
	return string(fmted), nil
}

func writeEncodeCase(buf *bytes.Buffer, expr string, f field) {
	switch f.kind {
	case kindUint:
		fmt.Fprintf(buf, "\t\t\treturn e.EncodeUint(%s)\n", expr)
	case kindInt:
		fmt.Fprintf(buf, "\t\t\treturn e.EncodeInt(%s)\n", expr)
	case kindBool:
		fmt.Fprintf(buf, "\t\t\treturn e.EncodeBool(%s)\n", expr)
	case kindString:
		fmt.Fprintf(buf, "\t\t\treturn e.EncodeBytes([]byte(%s))\n", expr)
	case kindBytes:
		fmt.Fprintf(buf, "\t\t\treturn e.EncodeBytes(%s)\n", expr)
	case kindF32:
		fmt.Fprintf(buf, "\t\t\treturn e.EncodeF32(%s)\n", expr)
	case kindF64:
		fmt.Fprintf(buf, "\t\t\treturn e.EncodeF64(%s)\n", expr)
	case kindOptional:
		fmt.Fprintf(buf, "\t\t\tif %s == nil {\n\t\t\t\treturn e.EncodeNone()\n\t\t\t}\n", expr)
		writeEncodeCase(buf, "(*"+expr+")", *f.elem)
	case kindSlice:
		fmt.Fprintf(buf, "\t\t\treturn e.EncodeSeq(len(%s), func(e *dbor.Encoder, j int) error {\n", expr)
		elemExpr := fmt.Sprintf("%s[j]", expr)
		buf.WriteString("\t\t\t\t")
		writeEncodeCase(buf, elemExpr, *f.elem)
		buf.WriteString("\t\t\t})\n")
	case kindNested:
		fmt.Fprintf(buf, "\t\t\treturn %s.EncodeDBOR(e)\n", expr)
	}
}

func decodeVisitorExpr(i int, f field) string {
	switch f.kind {
	case kindUint:
		return fmt.Sprintf("dbor.UintInto(&x.%s)", f.name)
	case kindInt:
		return fmt.Sprintf("dbor.IntInto(&x.%s)", f.name)
	case kindBool:
		return fmt.Sprintf("dbor.BoolInto(&x.%s)", f.name)
	case kindString:
		return fmt.Sprintf("dbor.StringInto(&x.%s)", f.name)
	case kindBytes:
		return fmt.Sprintf("dbor.BytesInto(&x.%s)", f.name)
	case kindF32:
		return fmt.Sprintf("dbor.F32Into(&x.%s)", f.name)
	case kindF64:
		return fmt.Sprintf("dbor.F64Into(&x.%s)", f.name)
	case kindOptional:
		return fmt.Sprintf("dbor.OptionalInto(&present%d, %s)", i, innerVisitorExpr(i, *f.elem))
	case kindSlice:
		return fmt.Sprintf("dbor.SliceInto(&slice%d, func(elem *%s) dbor.Visitor { return %s })", i, f.elem.goType, elemVisitorExpr(*f.elem, "elem"))
	case kindNested:
		return fmt.Sprintf("fieldsOf%s(&x.%s)", f.goType, f.name)
	}
	return ""
}

// innerVisitorExpr builds the Visitor expression for an optional
// field's wrapped local variable.
func innerVisitorExpr(i int, f field) string {
	switch f.kind {
	case kindUint:
		return fmt.Sprintf("dbor.UintInto(&value%d)", i)
	case kindInt:
		return fmt.Sprintf("dbor.IntInto(&value%d)", i)
	case kindBool:
		return fmt.Sprintf("dbor.BoolInto(&value%d)", i)
	case kindString:
		return fmt.Sprintf("dbor.StringInto(&value%d)", i)
	case kindBytes:
		return fmt.Sprintf("dbor.BytesInto(&value%d)", i)
	case kindF32:
		return fmt.Sprintf("dbor.F32Into(&value%d)", i)
	case kindF64:
		return fmt.Sprintf("dbor.F64Into(&value%d)", i)
	default:
		return fmt.Sprintf("dbor.UintInto(&value%d)", i)
	}
}

// elemVisitorExpr builds the Visitor expression for one slice element,
// given the classified element field shape. For kindNested it reuses
// the element type's own fieldsOfXxx helper instead of a Uint/Int/...
// adapter, the same helper a standalone field of that struct type uses.
func elemVisitorExpr(f field, varName string) string {
	switch f.kind {
	case kindUint:
		return fmt.Sprintf("dbor.UintInto(%s)", varName)
	case kindInt:
		return fmt.Sprintf("dbor.IntInto(%s)", varName)
	case kindBool:
		return fmt.Sprintf("dbor.BoolInto(%s)", varName)
	case kindString:
		return fmt.Sprintf("dbor.StringInto(%s)", varName)
	case kindBytes:
		return fmt.Sprintf("dbor.BytesInto(%s)", varName)
	case kindF32:
		return fmt.Sprintf("dbor.F32Into(%s)", varName)
	case kindF64:
		return fmt.Sprintf("dbor.F64Into(%s)", varName)
	case kindNested:
		return fmt.Sprintf("fieldsOf%s(%s)", f.goType, varName)
	default:
		return fmt.Sprintf("dbor.UintInto(%s)", varName)
	}
}

func writeDecodeLocals(buf *bytes.Buffer, i int, f field) {
	switch f.kind {
	case kindOptional:
		fmt.Fprintf(buf, "\tvar present%d bool\n\tvar value%d %s\n", i, i, f.elem.goType)
	case kindSlice:
		fmt.Fprintf(buf, "\tvar slice%d %s\n", i, f.goType)
	}
}

func writeDecodeAssign(buf *bytes.Buffer, i int, f field) {
	switch f.kind {
	case kindOptional:
		fmt.Fprintf(buf, "\tif present%d {\n\t\tx.%s = &value%d\n\t}\n", i, f.name, i)
	case kindSlice:
		fmt.Fprintf(buf, "\tx.%s = slice%d\n", f.name, i)
	}
}

// sortedNames returns the field names in sorted order, for a
// deterministic listing of generated field names. Nothing in this
// module calls it.
func sortedNames(fields []field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	sort.Strings(names)
	return names
}
