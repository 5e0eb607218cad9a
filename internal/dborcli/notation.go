// Package dborcli holds the pieces cmd/dbor-cli shares across its
// subcommands: a small textual notation for constructing dbor.Value
// literals from the command line, and a pretty-printer for dump mode.
package dborcli

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dbor-go/dbor"
)

// ParseValue reads one value from the small internal notation used by
// `dbor-cli encode`:
//
//	123          -> Uint
//	-123         -> Int
//	1.5          -> F64
//	true / false -> Bool
//	unit         -> Unit
//	null         -> None
//	"text"       -> Bytes (UTF-8 of the quoted content)
//	[a, b, c]    -> Seq
//	{k: v, ...}  -> Map, keys parsed as values themselves
//	@name(v)     -> named Variant
//	@42(v)       -> numeric Variant
//
// This is a convenience notation for the CLI only; it has no bearing
// on the wire format itself.
func ParseValue(input string) (dbor.Value, error) {
	p := &notationParser{src: []rune(input)}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return dbor.Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return dbor.Value{}, fmt.Errorf("unexpected trailing input at offset %d", p.pos)
	}
	return v, nil
}

type notationParser struct {
	src []rune
	pos int
}

func (p *notationParser) peek() (rune, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *notationParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *notationParser) expect(r rune) error {
	c, ok := p.peek()
	if !ok || c != r {
		return fmt.Errorf("expected %q at offset %d", r, p.pos)
	}
	p.pos++
	return nil
}

func (p *notationParser) parseValue() (dbor.Value, error) {
	p.skipSpace()
	c, ok := p.peek()
	if !ok {
		return dbor.Value{}, fmt.Errorf("unexpected end of input")
	}
	switch {
	case c == '"':
		return p.parseString()
	case c == '[':
		return p.parseSeq()
	case c == '{':
		return p.parseMap()
	case c == '@':
		return p.parseVariant()
	case c == '-' || unicode.IsDigit(c):
		return p.parseNumber()
	default:
		return p.parseKeyword()
	}
}

func (p *notationParser) parseKeyword() (dbor.Value, error) {
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(p.src[p.pos]) || p.src[p.pos] == '_') {
		p.pos++
	}
	word := string(p.src[start:p.pos])
	switch word {
	case "true":
		return dbor.NewBool(true), nil
	case "false":
		return dbor.NewBool(false), nil
	case "unit":
		return dbor.NewUnit(), nil
	case "null":
		return dbor.NewNone(), nil
	default:
		return dbor.Value{}, fmt.Errorf("unrecognized token %q at offset %d", word, start)
	}
}

func (p *notationParser) parseNumber() (dbor.Value, error) {
	start := p.pos
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && unicode.IsDigit(p.src[p.pos]) {
		p.pos++
	}
	isFloat := false
	if c, ok := p.peek(); ok && c == '.' {
		isFloat = true
		p.pos++
		for p.pos < len(p.src) && unicode.IsDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	text := string(p.src[start:p.pos])
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return dbor.Value{}, fmt.Errorf("invalid float %q: %w", text, err)
		}
		return dbor.NewF64(f), nil
	}
	if strings.HasPrefix(text, "-") {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return dbor.Value{}, fmt.Errorf("invalid int %q: %w", text, err)
		}
		return dbor.NewInt(i), nil
	}
	u, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return dbor.Value{}, fmt.Errorf("invalid uint %q: %w", text, err)
	}
	return dbor.NewUint(u), nil
}

func (p *notationParser) parseString() (dbor.Value, error) {
	if err := p.expect('"'); err != nil {
		return dbor.Value{}, err
	}
	var sb strings.Builder
	for {
		c, ok := p.peek()
		if !ok {
			return dbor.Value{}, fmt.Errorf("unterminated string literal")
		}
		if c == '"' {
			p.pos++
			break
		}
		if c == '\\' {
			p.pos++
			esc, ok := p.peek()
			if !ok {
				return dbor.Value{}, fmt.Errorf("unterminated escape sequence")
			}
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"', '\\':
				sb.WriteRune(esc)
			default:
				return dbor.Value{}, fmt.Errorf("unknown escape \\%c", esc)
			}
			p.pos++
			continue
		}
		sb.WriteRune(c)
		p.pos++
	}
	return dbor.NewBytes([]byte(sb.String())), nil
}

func (p *notationParser) parseSeq() (dbor.Value, error) {
	if err := p.expect('['); err != nil {
		return dbor.Value{}, err
	}
	var items []dbor.Value
	p.skipSpace()
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
		return dbor.NewSeq(items...), nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return dbor.Value{}, err
		}
		items = append(items, v)
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return dbor.Value{}, fmt.Errorf("unterminated sequence literal")
		}
		if c == ',' {
			p.pos++
			p.skipSpace()
			continue
		}
		if c == ']' {
			p.pos++
			break
		}
		return dbor.Value{}, fmt.Errorf("expected ',' or ']' at offset %d", p.pos)
	}
	return dbor.NewSeq(items...), nil
}

func (p *notationParser) parseMap() (dbor.Value, error) {
	if err := p.expect('{'); err != nil {
		return dbor.Value{}, err
	}
	var entries []dbor.MapEntry
	p.skipSpace()
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return dbor.NewMap(entries...), nil
	}
	for {
		key, err := p.parseValue()
		if err != nil {
			return dbor.Value{}, err
		}
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return dbor.Value{}, err
		}
		val, err := p.parseValue()
		if err != nil {
			return dbor.Value{}, err
		}
		entries = append(entries, dbor.MapEntry{Key: key, Value: val})
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return dbor.Value{}, fmt.Errorf("unterminated map literal")
		}
		if c == ',' {
			p.pos++
			p.skipSpace()
			continue
		}
		if c == '}' {
			p.pos++
			break
		}
		return dbor.Value{}, fmt.Errorf("expected ',' or '}' at offset %d", p.pos)
	}
	return dbor.NewMap(entries...), nil
}

func (p *notationParser) parseVariant() (dbor.Value, error) {
	if err := p.expect('@'); err != nil {
		return dbor.Value{}, err
	}
	c, ok := p.peek()
	if !ok {
		return dbor.Value{}, fmt.Errorf("unterminated variant literal")
	}
	var tag dbor.VariantTag
	if unicode.IsDigit(c) {
		start := p.pos
		for p.pos < len(p.src) && unicode.IsDigit(p.src[p.pos]) {
			p.pos++
		}
		id, err := strconv.ParseUint(string(p.src[start:p.pos]), 10, 32)
		if err != nil {
			return dbor.Value{}, fmt.Errorf("invalid variant id: %w", err)
		}
		tag = dbor.UintTag(uint32(id))
	} else {
		start := p.pos
		for p.pos < len(p.src) && (unicode.IsLetter(p.src[p.pos]) || unicode.IsDigit(p.src[p.pos]) || p.src[p.pos] == '_') {
			p.pos++
		}
		tag = dbor.NameTag(string(p.src[start:p.pos]))
	}
	p.skipSpace()
	if err := p.expect('('); err != nil {
		return dbor.Value{}, err
	}
	payload, err := p.parseValue()
	if err != nil {
		return dbor.Value{}, err
	}
	p.skipSpace()
	if err := p.expect(')'); err != nil {
		return dbor.Value{}, err
	}
	return dbor.NewVariant(tag, payload), nil
}
