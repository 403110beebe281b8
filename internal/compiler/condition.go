package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Funcs resolves the condition functions that need the outside world.
type Funcs struct {
	// Exists reports whether a file or directory exists. When nil, Exists()
	// in a condition is an error.
	Exists func(path string) bool
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokWord
	tokLParen
	tokRParen
	tokComma
	tokNot
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		for l.pos < len(src) && unicode.IsSpace(rune(src[l.pos])) {
			l.pos++
		}
		if l.pos >= len(src) {
			l.toks = append(l.toks, token{kind: tokEOF, pos: l.pos})
			return l.toks, nil
		}
		start := l.pos
		c := src[l.pos]
		switch {
		case c == '\'':
			end := strings.IndexByte(src[start+1:], '\'')
			if end < 0 {
				return nil, &CompileError{Condition: src, Pos: start, Message: "unterminated string"}
			}
			l.emit(tokString, src[start+1:start+1+end], start)
			l.pos = start + end + 2
		case c == '(':
			l.emit(tokLParen, "(", start)
			l.pos++
		case c == ')':
			l.emit(tokRParen, ")", start)
			l.pos++
		case c == ',':
			l.emit(tokComma, ",", start)
			l.pos++
		case c == '=' || c == '!' || c == '<' || c == '>':
			if l.pos+1 < len(src) && src[l.pos+1] == '=' {
				l.emit(tokOp, src[start:start+2], start)
				l.pos += 2
				continue
			}
			switch c {
			case '!':
				l.emit(tokNot, "!", start)
			case '=':
				return nil, &CompileError{Condition: src, Pos: start, Message: "single '=' is not an operator"}
			default:
				l.emit(tokOp, string(c), start)
			}
			l.pos++
		default:
			for l.pos < len(src) && isWordByte(src[l.pos]) {
				l.pos++
			}
			if l.pos == start {
				return nil, &CompileError{Condition: src, Pos: start, Message: "unexpected character " + strconv.QuoteRune(rune(c))}
			}
			l.emit(tokWord, src[start:l.pos], start)
		}
	}
}

func (l *lexer) emit(k tokenKind, text string, pos int) {
	l.toks = append(l.toks, token{kind: k, text: text, pos: pos})
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' || c == '+' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parser renders the neutral expression while it parses.
type parser struct {
	src   string
	toks  []token
	i     int
	funcs Funcs
}

// Translate converts a condition into the neutral expression language. An
// empty condition translates to "true".
func Translate(cond string, funcs Funcs) (string, error) {
	if strings.TrimSpace(cond) == "" {
		return "true", nil
	}
	toks, err := lex(cond)
	if err != nil {
		return "", err
	}
	p := &parser{src: cond, toks: toks, funcs: funcs}
	out, err := p.or()
	if err != nil {
		return "", err
	}
	if t := p.peek(); t.kind != tokEOF {
		return "", p.errorf(t, "unexpected %q", t.text)
	}
	return out, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &CompileError{Condition: p.src, Pos: t.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	if t.kind == tokWord && strings.EqualFold(t.text, word) {
		p.i++
		return true
	}
	return false
}

func (p *parser) or() (string, error) {
	left, err := p.and()
	if err != nil {
		return "", err
	}
	for p.keyword("or") {
		right, err := p.and()
		if err != nil {
			return "", err
		}
		left = "(" + left + " || " + right + ")"
	}
	return left, nil
}

func (p *parser) and() (string, error) {
	left, err := p.unary()
	if err != nil {
		return "", err
	}
	for p.keyword("and") {
		right, err := p.unary()
		if err != nil {
			return "", err
		}
		left = "(" + left + " && " + right + ")"
	}
	return left, nil
}

func (p *parser) unary() (string, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.unary()
		if err != nil {
			return "", err
		}
		return "!(" + inner + ")", nil
	}
	return p.primary()
}

// operand is a parsed value before it is placed in boolean or comparison
// position.
type operand struct {
	tok     token
	text    string
	boolean string // rendered boolean when the operand came from a function
}

func (p *parser) primary() (string, error) {
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.or()
		if err != nil {
			return "", err
		}
		if t := p.next(); t.kind != tokRParen {
			return "", p.errorf(t, "expected ')'")
		}
		return "(" + inner + ")", nil
	}

	left, err := p.operand()
	if err != nil {
		return "", err
	}
	if t := p.peek(); t.kind == tokOp {
		p.next()
		right, err := p.operand()
		if err != nil {
			return "", err
		}
		return p.compare(t, left, right)
	}
	return p.asBool(left)
}

func (p *parser) operand() (operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return operand{tok: t, text: t.text}, nil
	case tokWord:
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		if strings.EqualFold(t.text, "and") || strings.EqualFold(t.text, "or") {
			return operand{}, p.errorf(t, "missing operand before %q", t.text)
		}
		return operand{tok: t, text: t.text}, nil
	case tokEOF:
		return operand{}, p.errorf(t, "unexpected end of condition")
	}
	return operand{}, p.errorf(t, "unexpected %q", t.text)
}

func (p *parser) call(name token) (operand, error) {
	p.next()
	var args []string
	for p.peek().kind != tokRParen {
		if len(args) > 0 {
			if t := p.next(); t.kind != tokComma {
				return operand{}, p.errorf(t, "expected ',' or ')'")
			}
		}
		t := p.next()
		if t.kind != tokString && t.kind != tokWord {
			return operand{}, p.errorf(t, "function arguments must be strings")
		}
		args = append(args, t.text)
	}
	p.next()

	switch strings.ToLower(name.text) {
	case "exists":
		if len(args) != 1 {
			return operand{}, p.errorf(name, "Exists takes one argument")
		}
		if p.funcs.Exists == nil {
			return operand{}, p.errorf(name, "Exists is not available")
		}
		return operand{tok: name, boolean: strconv.FormatBool(p.funcs.Exists(strings.TrimSpace(args[0])))}, nil
	case "hastrailingslash":
		if len(args) != 1 {
			return operand{}, p.errorf(name, "HasTrailingSlash takes one argument")
		}
		s := args[0]
		return operand{tok: name, boolean: strconv.FormatBool(strings.HasSuffix(s, "/") || strings.HasSuffix(s, `\`))}, nil
	}
	return operand{}, p.errorf(name, "unknown function %q", name.text)
}

func (p *parser) asBool(o operand) (string, error) {
	if o.boolean != "" {
		return o.boolean, nil
	}
	switch strings.ToLower(strings.TrimSpace(o.text)) {
	case "true", "on", "yes":
		return "true", nil
	case "false", "off", "no":
		return "false", nil
	}
	return "", p.errorf(o.tok, "%q is not a boolean", o.text)
}

func (p *parser) compare(op token, left, right operand) (string, error) {
	if left.boolean != "" || right.boolean != "" {
		if op.text != "==" && op.text != "!=" {
			return "", p.errorf(op, "cannot order booleans")
		}
		l, err := p.asBool(left)
		if err != nil {
			return "", err
		}
		r, err := p.asBool(right)
		if err != nil {
			return "", err
		}
		return "(" + l + " " + op.text + " " + r + ")", nil
	}

	ln, lok := number(left.text)
	rn, rok := number(right.text)
	if lok && rok {
		return "(" + ln + " " + op.text + " " + rn + ")", nil
	}
	if op.text != "==" && op.text != "!=" {
		return "", p.errorf(op, "%q needs numeric operands", op.text)
	}
	return "(" + quote(strings.ToLower(left.text)) + " " + op.text + " " + quote(strings.ToLower(right.text)) + ")", nil
}

// number renders s as a float literal when it reads as a number.
func number(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	var f float64
	var err error
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		var n uint64
		n, err = strconv.ParseUint(s[2:], 16, 64)
		f = float64(n)
	} else {
		f, err = strconv.ParseFloat(s, 64)
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out, true
}

// quote renders s as a double-quoted string both backends read the same way.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte("0123456789abcdef"[r>>4])
			b.WriteByte("0123456789abcdef"[r&0xf])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
