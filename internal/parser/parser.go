// Package parser turns schema leaf values into compiled validators.
//
// Schema leaves are written in a small call-expression language:
// str(min=3), enum('a', 'b'), list(include('node'), required=False).
// A leaf that is not a recognized validator call compiles to a plain
// str() check; nil, boolean, numeric and timestamp leaves compile to
// the matching validator.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/aretw0/sieve/pkg/validators"
)

// Parser compiles schema leaves against a validator registry.
type Parser struct {
	registry validators.Registry
}

// NewParser creates a parser backed by the given registry; nil selects
// the default registry.
func NewParser(registry validators.Registry) *Parser {
	if registry == nil {
		registry = validators.Default()
	}
	return &Parser{registry: registry}
}

var callShape = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// Parse compiles one schema leaf into a validator.
func (p *Parser) Parse(leaf any) (validators.Validator, error) {
	switch v := leaf.(type) {
	case nil:
		return p.registry.Build("null", nil, nil)
	case bool:
		return p.registry.Build("enum", []any{v}, nil)
	case int:
		return p.registry.Build("enum", []any{v}, nil)
	case int64:
		return p.registry.Build("enum", []any{v}, nil)
	case uint64:
		return p.registry.Build("enum", []any{v}, nil)
	case float64:
		return p.registry.Build("enum", []any{v}, nil)
	case time.Time:
		return p.registry.Build("timestamp", nil, nil)
	case string:
		m := callShape.FindStringSubmatch(v)
		if m != nil && p.registry.Has(m[1]) && strings.HasSuffix(strings.TrimSpace(v), ")") {
			return p.ParseExpression(v)
		}
		// A bare string documents the field; any string satisfies it.
		return p.registry.Build("str", nil, nil)
	default:
		return nil, fmt.Errorf("unsupported schema leaf: %v (%T)", leaf, leaf)
	}
}

// ParseExpression compiles a validator call expression.
func (p *Parser) ParseExpression(src string) (validators.Validator, error) {
	lex := newLexer(src)
	v, err := p.parseValue(lex)
	if err != nil {
		return nil, fmt.Errorf("invalid schema expression '%s': %w", strings.TrimSpace(src), err)
	}
	if tok, err := lex.next(); err != nil {
		return nil, fmt.Errorf("invalid schema expression '%s': %w", strings.TrimSpace(src), err)
	} else if tok.kind != tokEOF {
		return nil, fmt.Errorf("invalid schema expression '%s': unexpected '%s'", strings.TrimSpace(src), tok.text)
	}
	val, ok := v.(validators.Validator)
	if !ok {
		return nil, fmt.Errorf("invalid schema expression '%s': not a validator call", strings.TrimSpace(src))
	}
	return val, nil
}

// parseValue parses a literal, a constant, a bare validator name, or a
// validator call. It returns either a validators.Validator or a
// literal value.
func (p *Parser) parseValue(lex *lexer) (any, error) {
	tok, err := lex.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokString:
		return tok.text, nil
	case tokInt:
		return tok.intVal, nil
	case tokFloat:
		return tok.floatVal, nil
	case tokIdent:
		switch tok.text {
		case "True", "true":
			return true, nil
		case "False", "false":
			return false, nil
		case "None", "none":
			return nil, nil
		}
		if lex.peekIs('(') {
			return p.parseCall(lex, tok.text)
		}
		if p.registry.Has(tok.text) {
			return p.registry.Build(tok.text, nil, nil)
		}
		return nil, fmt.Errorf("not a registered validator: '%s'", tok.text)
	default:
		return nil, fmt.Errorf("unexpected '%s'", tok.text)
	}
}

func (p *Parser) parseCall(lex *lexer, name string) (any, error) {
	if !p.registry.Has(name) {
		return nil, fmt.Errorf("not a registered validator: '%s'", name)
	}
	if err := lex.expect('('); err != nil {
		return nil, err
	}
	var args []any
	kwargs := map[string]any{}
	for {
		if lex.peekIs(')') {
			lex.skip()
			break
		}
		if err := p.parseArg(lex, &args, kwargs); err != nil {
			return nil, err
		}
		if lex.peekIs(',') {
			lex.skip()
			continue
		}
		if err := lex.expect(')'); err != nil {
			return nil, err
		}
		break
	}
	v, err := p.registry.Build(name, args, kwargs)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Parser) parseArg(lex *lexer, args *[]any, kwargs map[string]any) error {
	// An identifier followed by '=' is a keyword argument.
	if name, ok := lex.peekKeyword(); ok {
		lex.skipKeyword()
		v, err := p.parseValue(lex)
		if err != nil {
			return err
		}
		kwargs[name] = v
		return nil
	}
	v, err := p.parseValue(lex)
	if err != nil {
		return err
	}
	*args = append(*args, v)
	return nil
}

// --- lexer ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokFloat
	tokPunct
)

type token struct {
	kind     tokenKind
	text     string
	intVal   int
	floatVal float64
}

type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

// peekIs reports whether the next significant rune equals c.
func (l *lexer) peekIs(c rune) bool {
	l.skipSpace()
	return l.pos < len(l.src) && l.src[l.pos] == c
}

// skip consumes one significant rune.
func (l *lexer) skip() {
	l.skipSpace()
	if l.pos < len(l.src) {
		l.pos++
	}
}

func (l *lexer) expect(c rune) error {
	l.skipSpace()
	if l.pos >= len(l.src) || l.src[l.pos] != c {
		return fmt.Errorf("expected '%c'", c)
	}
	l.pos++
	return nil
}

// peekKeyword detects "ident =" without consuming it; '==' never
// appears in this grammar.
func (l *lexer) peekKeyword() (string, bool) {
	l.skipSpace()
	pos := l.pos
	if pos >= len(l.src) || !isIdentStart(l.src[pos]) {
		return "", false
	}
	for pos < len(l.src) && isIdentPart(l.src[pos]) {
		pos++
	}
	name := string(l.src[l.pos:pos])
	for pos < len(l.src) && unicode.IsSpace(l.src[pos]) {
		pos++
	}
	if pos < len(l.src) && l.src[pos] == '=' {
		return name, true
	}
	return "", false
}

func (l *lexer) skipKeyword() {
	l.skipSpace()
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	l.skipSpace()
	l.pos++ // '='
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, text: "<eof>"}, nil
	}
	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.src[start:l.pos])}, nil
	case c == '\'' || c == '"':
		return l.lexString(c)
	case unicode.IsDigit(c) || (c == '-' && l.pos+1 < len(l.src) && unicode.IsDigit(l.src[l.pos+1])):
		return l.lexNumber()
	case c == '(' || c == ')' || c == ',' || c == '=':
		l.pos++
		return token{kind: tokPunct, text: string(c)}, nil
	default:
		return token{}, fmt.Errorf("unexpected character '%c'", c)
	}
}

func (l *lexer) lexString(quote rune) (token, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			return token{kind: tokString, text: b.String()}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, fmt.Errorf("unterminated string")
			}
			switch l.src[l.pos] {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(l.src[l.pos])
			}
			l.pos++
		default:
			b.WriteRune(c)
			l.pos++
		}
	}
	return token{}, fmt.Errorf("unterminated string")
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	isFloat := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if unicode.IsDigit(c) {
			l.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			// '+'/'-' only valid right after an exponent marker.
			if (c == '+' || c == '-') && l.src[l.pos-1] != 'e' && l.src[l.pos-1] != 'E' {
				break
			}
			isFloat = isFloat || c == '.' || c == 'e' || c == 'E'
			l.pos++
			continue
		}
		break
	}
	text := string(l.src[start:l.pos])
	if !isFloat {
		n, err := strconv.Atoi(text)
		if err != nil {
			return token{}, fmt.Errorf("bad number '%s'", text)
		}
		return token{kind: tokInt, text: text, intVal: n}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, fmt.Errorf("bad number '%s'", text)
	}
	return token{kind: tokFloat, text: text, floatVal: f}, nil
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
