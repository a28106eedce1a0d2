package surrealql

import (
	"strings"
)

type tokenKind int

const (
	tIdent tokenKind = iota
	tNumber
	tString
	tParam
	tRecord
	tArrow
	tOp
	tPunct
)

type token struct {
	kind tokenKind
	text string
	off  int
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) errorf(off int, msg string) error {
	return &ParseError{Input: l.input, Offset: off, Msg: msg}
}

func (l *lexer) peek(ahead int) byte {
	if l.pos+ahead >= len(l.input) {
		return 0
	}
	return l.input[l.pos+ahead]
}

//lex splits the statement text into tokens. It reports unterminated strings,
//invalid parameters and characters outside the grammar; structural checks are
//left to the parser.
func lex(input string) ([]token, error) {
	l := &lexer{input: input}

	var tokens []token
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		start := l.pos

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++

		case isIdentStart(c):
			t, err := l.scanIdent()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, t)

		case isDigit(c):
			tokens = append(tokens, l.scanNumber())

		case c == '\'' || c == '"':
			t, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, t)

		case c == '$':
			l.pos++
			if !isIdentStart(l.peek(0)) {
				return nil, l.errorf(start, "'$' must introduce a parameter name")
			}
			for isIdentPart(l.peek(0)) {
				l.pos++
			}
			tokens = append(tokens, token{tParam, l.input[start:l.pos], start})

		case c == '-':
			if l.peek(1) == '>' {
				l.pos += 2
				tokens = append(tokens, token{tArrow, "->", start})
			} else {
				l.pos++
				tokens = append(tokens, token{tOp, "-", start})
			}

		case c == '<':
			switch {
			case l.peek(1) == '-' && l.peek(2) == '>':
				l.pos += 3
				tokens = append(tokens, token{tArrow, "<->", start})
			case l.peek(1) == '-':
				l.pos += 2
				tokens = append(tokens, token{tArrow, "<-", start})
			case l.peek(1) == '=':
				l.pos += 2
				tokens = append(tokens, token{tOp, "<=", start})
			default:
				l.pos++
				tokens = append(tokens, token{tOp, "<", start})
			}

		case strings.IndexByte("=!>+*/|&?", c) >= 0:
			tokens = append(tokens, l.scanOperator())

		case strings.IndexByte("()[]{},;:.", c) >= 0:
			l.pos++
			tokens = append(tokens, token{tPunct, string(c), start})

		default:
			return nil, l.errorf(start, "unexpected character "+string(c))
		}
	}

	return tokens, nil
}

//scanIdent reads a bare word. Record ids (table:id, table:uuid(),
//table:⟨raw⟩) and path-style idents (a.b, string::len) are folded into a
//single token so that canonical rendering keeps them glued together.
func (l *lexer) scanIdent() (token, error) {
	start := l.pos
	for isIdentPart(l.peek(0)) {
		l.pos++
	}

	for {
		switch {
		case l.peek(0) == ':' && l.peek(1) == ':' && isIdentStart(l.peek(2)):
			l.pos += 2
			for isIdentPart(l.peek(0)) {
				l.pos++
			}
			continue

		case l.peek(0) == '.' && isIdentStart(l.peek(1)):
			l.pos++
			for isIdentPart(l.peek(0)) {
				l.pos++
			}
			continue
		}
		break
	}

	//a colon glued to the word introduces a record id
	if l.peek(0) == ':' && l.recordIDFollows() {
		l.pos++
		if err := l.scanRecordID(); err != nil {
			return token{}, err
		}
		return token{tRecord, l.input[start:l.pos], start}, nil
	}

	return token{tIdent, l.input[start:l.pos], start}, nil
}

func (l *lexer) recordIDFollows() bool {
	c := l.peek(1)
	return isIdentPart(c) || c == '`' || strings.HasPrefix(l.input[l.pos+1:], "⟨")
}

func (l *lexer) scanRecordID() error {
	switch {
	case strings.HasPrefix(l.input[l.pos:], "⟨"):
		end := strings.Index(l.input[l.pos:], "⟩")
		if end < 0 {
			return l.errorf(l.pos, "unterminated record id")
		}
		l.pos += end + len("⟩")

	case l.peek(0) == '`':
		end := strings.IndexByte(l.input[l.pos+1:], '`')
		if end < 0 {
			return l.errorf(l.pos, "unterminated record id")
		}
		l.pos += end + 2

	default:
		for isIdentPart(l.peek(0)) {
			l.pos++
		}
		//id generation call, e.g. person:uuid()
		if l.peek(0) == '(' && l.peek(1) == ')' {
			l.pos += 2
		}
	}
	return nil
}

func (l *lexer) scanNumber() token {
	start := l.pos
	for isDigit(l.peek(0)) {
		l.pos++
	}
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.pos++
		for isDigit(l.peek(0)) {
			l.pos++
		}
	}
	return token{tNumber, l.input[start:l.pos], start}
}

func (l *lexer) scanString() (token, error) {
	start := l.pos
	quote := l.input[l.pos]
	l.pos++
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos += 2
		case quote:
			l.pos++
			return token{tString, l.input[start:l.pos], start}, nil
		default:
			l.pos++
		}
	}
	return token{}, l.errorf(start, "unterminated string")
}

func (l *lexer) scanOperator() token {
	start := l.pos
	two := ""
	if l.pos+1 < len(l.input) {
		two = l.input[l.pos : l.pos+2]
	}
	switch two {
	case "==", "!=", ">=", "+=", "-=", "||", "&&", "??", "?:":
		l.pos += 2
	default:
		l.pos++
	}
	return token{tOp, l.input[start:l.pos], start}
}
