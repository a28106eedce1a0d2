//Package surrealql validates and canonicalizes single SurrealQL statements and
//assembles them into composite transaction scripts.
//
//The grammar covered here is statement-level: each known verb is checked for
//its mandatory clauses and for structural soundness (balanced delimiters,
//terminated strings, a single statement per input). Expression contents are
//accepted token-wise; the engine remains the authority on full semantics.
package surrealql

import (
	"fmt"
	"strings"
)

//ParseError reports a statement rejected by the grammar. It carries the
//offending input so callers can surface it verbatim.
type ParseError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse statement: %s (offset %d in %q)", e.Msg, e.Offset, e.Input)
}

//IsParseError marks the error as a local validation failure that never
//reached the engine
func (e *ParseError) IsParseError() bool {
	return true
}

//Statement is a single accepted unit of SurrealQL, held in canonical form.
//The zero value is not a valid statement; obtain one through Parse.
type Statement struct {
	text string
}

//String returns the canonical text, without a trailing terminator
func (s Statement) String() string {
	return s.text
}

var keywords = map[string]bool{
	"CREATE": true, "SELECT": true, "UPDATE": true, "DELETE": true,
	"RELATE": true, "LET": true, "INSERT": true, "DEFINE": true,
	"REMOVE": true, "INFO": true, "FROM": true, "WHERE": true,
	"CONTENT": true, "MERGE": true, "SET": true, "RETURN": true,
	"BEFORE": true, "AFTER": true, "DIFF": true, "NONE": true,
	"ORDER": true, "BY": true, "ASC": true, "DESC": true, "LIMIT": true,
	"START": true, "GROUP": true, "SPLIT": true, "FETCH": true,
	"TIMEOUT": true, "PARALLEL": true, "INTO": true, "VALUES": true,
	"AND": true, "OR": true, "NOT": true, "IN": true, "CONTAINS": true,
	"ON": true, "TABLE": true, "FIELD": true, "INDEX": true, "FOR": true,
	"AS": true, "ONLY": true,
}

var verbs = map[string]bool{
	"CREATE": true, "SELECT": true, "UPDATE": true, "DELETE": true,
	"RELATE": true, "LET": true, "INSERT": true, "DEFINE": true,
	"REMOVE": true, "INFO": true, "RETURN": true,
}

func isKeyword(t token) bool {
	return t.kind == tIdent && keywords[strings.ToUpper(t.text)]
}

func keywordAt(tokens []token, i int, kw string) bool {
	return i < len(tokens) && tokens[i].kind == tIdent && strings.EqualFold(tokens[i].text, kw)
}

//Parse validates text as exactly one statement and returns its canonical
//round-tripped form: keywords uppercased, spacing normalized, strings, record
//ids and parameters preserved verbatim. The canonical form re-parses to
//itself.
func Parse(text string) (Statement, error) {
	tokens, err := lex(text)
	if err != nil {
		return Statement{}, err
	}

	fail := func(off int, msg string) (Statement, error) {
		return Statement{}, &ParseError{Input: text, Offset: off, Msg: msg}
	}

	//a single trailing terminator is tolerated; anything beyond that would
	//smuggle several statements into one Add
	if n := len(tokens); n > 0 && tokens[n-1].text == ";" {
		tokens = tokens[:n-1]
	}
	for _, t := range tokens {
		if t.kind == tPunct && t.text == ";" {
			return fail(t.off, "one statement at a time")
		}
	}

	if len(tokens) == 0 {
		return fail(0, "empty statement")
	}

	if err := checkBalance(text, tokens); err != nil {
		return Statement{}, err
	}

	head := tokens[0]
	verb := strings.ToUpper(head.text)
	if head.kind != tIdent || !verbs[verb] {
		return fail(head.off, "unknown statement "+head.text)
	}
	if err := checkClauses(text, verb, tokens); err != nil {
		return Statement{}, err
	}

	return Statement{text: render(tokens)}, nil
}

func checkBalance(input string, tokens []token) error {
	var open []token
	match := map[string]string{")": "(", "]": "[", "}": "{"}
	for _, t := range tokens {
		if t.kind != tPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			open = append(open, t)
		case ")", "]", "}":
			if len(open) == 0 || open[len(open)-1].text != match[t.text] {
				return &ParseError{Input: input, Offset: t.off, Msg: "unbalanced " + t.text}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		t := open[len(open)-1]
		return &ParseError{Input: input, Offset: t.off, Msg: "unclosed " + t.text}
	}
	return nil
}

func checkClauses(input, verb string, tokens []token) error {
	fail := func(off int, msg string) error {
		return &ParseError{Input: input, Offset: off, Msg: msg}
	}
	end := tokens[len(tokens)-1].off

	switch verb {
	case "CREATE", "UPDATE", "DELETE":
		if len(tokens) < 2 {
			return fail(end, verb+" needs a target")
		}
		if k := tokens[1].kind; k != tIdent && k != tRecord && k != tParam {
			return fail(tokens[1].off, verb+" target must be a table, record id or parameter")
		}

	case "SELECT":
		found := false
		for i := range tokens {
			if keywordAt(tokens, i, "FROM") {
				found = i > 1 && i < len(tokens)-1
				break
			}
		}
		if !found {
			return fail(end, "SELECT needs a FROM clause")
		}

	case "RELATE":
		for _, t := range tokens {
			if t.kind == tArrow {
				return nil
			}
		}
		return fail(end, "RELATE needs an edge (->)")

	case "LET":
		if len(tokens) < 3 || tokens[1].kind != tParam || tokens[2].text != "=" {
			return fail(end, "LET needs '$param = value'")
		}

	case "INSERT":
		for i := range tokens {
			if keywordAt(tokens, i, "INTO") {
				return nil
			}
		}
		return fail(end, "INSERT needs an INTO clause")

	case "DEFINE", "REMOVE", "INFO":
		if len(tokens) < 2 {
			return fail(end, verb+" needs a subject")
		}

	case "RETURN":
		if len(tokens) < 2 {
			return fail(end, "RETURN needs a value")
		}
	}
	return nil
}

//render writes the canonical text: keywords uppercased, one space between
//tokens except around arrows and inside bracketed openings/closings.
func render(tokens []token) string {
	var b strings.Builder
	var prev token
	for i, t := range tokens {
		text := t.text
		if isKeyword(t) {
			text = strings.ToUpper(text)
		}
		if i > 0 && needSpace(prev, t) {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		prev = t
	}
	return b.String()
}

func needSpace(prev, cur token) bool {
	if prev.kind == tArrow || cur.kind == tArrow {
		return false
	}
	switch cur.text {
	case ",", ";", ")", "]", ".", ":":
		return false
	}
	switch prev.text {
	case "(", "[", ".":
		return false
	}
	//calls glue the opening parenthesis to the callee
	if cur.text == "(" && prev.kind == tIdent && !isKeyword(prev) {
		return false
	}
	return true
}
