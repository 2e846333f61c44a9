package template

import (
	"strings"
)

// segmentKind distinguishes literal text from expression source in a split
// template string.
type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentExpression
)

// segment is one piece of a split template: either raw text copied to the
// output or the source of a {{ }} expression.
type segment struct {
	kind segmentKind
	text string
	pos  int
}

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// splitTemplate splits a raw template string into literal and expression
// segments. The scan is string-literal aware so that quoted delimiters inside
// an expression (the escape mechanism for emitting a literal "{{") do not
// terminate it. An opening delimiter without a matching close is a syntax
// error.
func splitTemplate(src string) ([]segment, error) {
	var segments []segment
	cur := 0

	for cur < len(src) {
		rel := strings.Index(src[cur:], openDelim)
		if rel == -1 {
			segments = append(segments, segment{segmentLiteral, src[cur:], cur})
			break
		}
		open := cur + rel
		if open > cur {
			segments = append(segments, segment{segmentLiteral, src[cur:open], cur})
		}

		exprStart := open + len(openDelim)
		end, err := findCloseDelim(src, exprStart)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment{segmentExpression, src[exprStart:end], exprStart})
		cur = end + len(closeDelim)
	}

	return segments, nil
}

// findCloseDelim scans from start for the closing delimiter, skipping over
// quoted string literals.
func findCloseDelim(src string, start int) (int, error) {
	i := start
	for i < len(src) {
		switch c := src[i]; c {
		case '\'', '"':
			j, ok := skipString(src, i)
			if !ok {
				return 0, syntaxErrorf(i, "unterminated string literal in expression")
			}
			i = j
		case '}':
			if i+1 < len(src) && src[i+1] == '}' {
				return i, nil
			}
			i++
		default:
			i++
		}
	}
	return 0, syntaxErrorf(start-len(openDelim), "unterminated expression: missing %q", closeDelim)
}

// skipString advances past a quoted string starting at src[i], honoring
// backslash escapes. Returns the index after the closing quote.
func skipString(src string, i int) (int, bool) {
	quote := src[i]
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1, true
		default:
			i++
		}
	}
	return 0, false
}

// tokenKind identifies a lexical token within an expression.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokOp // == != < <= > >=
	tokPipe
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
)

// token is a lexical token with its byte offset in the original source.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexExpression tokenizes a single expression's source. base is the offset of
// the expression within the enclosing template, used for error positions.
func lexExpression(src string, base int) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], base + start})
		case c >= '0' && c <= '9':
			tok, next := lexNumber(src, i, base)
			toks = append(toks, tok)
			i = next
		case (c == '-' || c == '+') && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9':
			tok, next := lexNumber(src, i, base)
			toks = append(toks, tok)
			i = next
		case c == '\'' || c == '"':
			text, next, err := lexString(src, i, base)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, text, base + i})
			i = next
		case c == '=' || c == '!':
			if i+1 >= len(src) || src[i+1] != '=' {
				return nil, syntaxErrorf(base+i, "unexpected character %q", c)
			}
			toks = append(toks, token{tokOp, src[i : i+2], base + i})
			i += 2
		case c == '<' || c == '>':
			if i+1 < len(src) && src[i+1] == '=' {
				toks = append(toks, token{tokOp, src[i : i+2], base + i})
				i += 2
			} else {
				toks = append(toks, token{tokOp, src[i : i+1], base + i})
				i++
			}
		case c == '|':
			toks = append(toks, token{tokPipe, "|", base + i})
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", base + i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", base + i})
			i++
		case c == '[':
			toks = append(toks, token{tokLBracket, "[", base + i})
			i++
		case c == ']':
			toks = append(toks, token{tokRBracket, "]", base + i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", base + i})
			i++
		case c == '.':
			toks = append(toks, token{tokDot, ".", base + i})
			i++
		default:
			return nil, syntaxErrorf(base+i, "unexpected character %q", c)
		}
	}
	toks = append(toks, token{tokEOF, "", base + len(src)})
	return toks, nil
}

func lexNumber(src string, i, base int) (token, int) {
	start := i
	if src[i] == '-' || src[i] == '+' {
		i++
	}
	for i < len(src) && src[i] >= '0' && src[i] <= '9' {
		i++
	}
	kind := tokInt
	if i+1 < len(src) && src[i] == '.' && src[i+1] >= '0' && src[i+1] <= '9' {
		kind = tokFloat
		i++
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			i++
		}
	}
	return token{kind, src[start:i], base + start}, i
}

// lexString decodes a quoted string literal, returning its unescaped value
// and the index after the closing quote.
func lexString(src string, i, base int) (string, int, error) {
	quote := src[i]
	var b strings.Builder
	j := i + 1
	for j < len(src) {
		c := src[j]
		switch {
		case c == '\\':
			if j+1 >= len(src) {
				return "", 0, syntaxErrorf(base+i, "unterminated string literal")
			}
			switch esc := src[j+1]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(esc)
			default:
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
			j += 2
		case c == quote:
			return b.String(), j + 1, nil
		default:
			b.WriteByte(c)
			j++
		}
	}
	return "", 0, syntaxErrorf(base+i, "unterminated string literal")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
