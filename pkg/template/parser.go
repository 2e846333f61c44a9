package template

import (
	"strconv"
)

// Operator binding powers, low to high. The filter pipe binds tighter than
// every operator so that "x | upper == 'A'" pipes before comparing, and
// logical not sits between and and the comparisons so that
// "not a and b or c" parses as "((not a) and b) or c".
const (
	bpOr         = 10
	bpAnd        = 20
	bpNot        = 30
	bpEquality   = 40
	bpRelational = 50
	bpMembership = 60
	bpPipe       = 70
)

// parser is a Pratt-style operator-precedence parser over a token stream.
type parser struct {
	toks  []token
	i     int
	depth int
}

// maxParseDepth caps recursion while parsing, so pathological nesting like
// "((((..." is rejected before it can exhaust the goroutine stack.
const maxParseDepth = 128

// parseExpressionSource lexes and parses a single expression. base is the
// expression's offset in the enclosing template for error reporting.
func parseExpressionSource(src string, base int) (node, error) {
	toks, err := lexExpression(src, base)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, syntaxErrorf(tok.pos, "unexpected token %q after expression", tok.text)
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		if tok.kind == tokEOF {
			return tok, syntaxErrorf(tok.pos, "expected %s, found end of expression", what)
		}
		return tok, syntaxErrorf(tok.pos, "expected %s, found %q", what, tok.text)
	}
	return p.next(), nil
}

// isKeyword reports whether tok is the given bare-word keyword.
func isKeyword(tok token, word string) bool {
	return tok.kind == tokIdent && tok.text == word
}

func (p *parser) parseExpr(minBP int) (node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxParseDepth {
		return nil, limitErrorf(p.peek().pos, "expression nesting exceeds %d levels", maxParseDepth)
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		bp, op := infixBinding(tok)
		if bp == 0 || bp < minBP {
			return left, nil
		}

		switch op {
		case "|":
			p.next()
			left, err = p.parseFilter(left)
		case "is":
			p.next()
			left, err = p.parseTest(left, tok.pos)
		case "not":
			// "not" in infix position is only valid as "not in".
			p.next()
			if !isKeyword(p.peek(), "in") {
				return nil, syntaxErrorf(tok.pos, "expected \"in\" after \"not\"")
			}
			p.next()
			left, err = p.parseBinary(left, "not in", tok.pos, bp)
		default:
			p.next()
			left, err = p.parseBinary(left, op, tok.pos, bp)
		}
		if err != nil {
			return nil, err
		}
	}
}

// infixBinding returns the binding power and canonical operator text of the
// token in infix position, or 0 when the token ends the expression.
func infixBinding(tok token) (int, string) {
	switch tok.kind {
	case tokOp:
		switch tok.text {
		case "==", "!=":
			return bpEquality, tok.text
		default:
			return bpRelational, tok.text
		}
	case tokPipe:
		return bpPipe, "|"
	case tokIdent:
		switch tok.text {
		case "or":
			return bpOr, "or"
		case "and":
			return bpAnd, "and"
		case "in":
			return bpMembership, "in"
		case "not":
			return bpMembership, "not"
		case "is":
			return bpMembership, "is"
		}
	}
	return 0, ""
}

func (p *parser) parseBinary(left node, op string, at, bp int) (node, error) {
	right, err := p.parseExpr(bp + 1)
	if err != nil {
		return nil, err
	}
	return &binaryNode{at: at, op: op, left: left, right: right}, nil
}

func (p *parser) parseFilter(input node) (node, error) {
	name, err := p.expect(tokIdent, "filter name")
	if err != nil {
		return nil, err
	}
	var args []node
	if p.peek().kind == tokLParen {
		p.next()
		args, err = p.parseArgs()
		if err != nil {
			return nil, err
		}
	}
	return &filterNode{at: name.pos, input: input, name: name.text, args: args}, nil
}

func (p *parser) parseTest(operand node, at int) (node, error) {
	negated := false
	if isKeyword(p.peek(), "not") {
		negated = true
		p.next()
	}
	name, err := p.expect(tokIdent, "test name")
	if err != nil {
		return nil, err
	}
	switch name.text {
	case "defined", "undefined", "none":
	default:
		return nil, syntaxErrorf(name.pos, "unknown test %q", name.text)
	}
	return &testNode{at: at, operand: operand, test: name.text, negated: negated}, nil
}

func (p *parser) parsePrefix() (node, error) {
	tok := p.peek()
	switch {
	case isKeyword(tok, "not"):
		p.next()
		operand, err := p.parseExpr(bpNot + 1)
		if err != nil {
			return nil, err
		}
		return &unaryNode{at: tok.pos, op: "not", operand: operand}, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression followed by any chain of .name
// and [index] accesses.
func (p *parser) parsePostfix() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch tok := p.peek(); tok.kind {
		case tokDot:
			p.next()
			seg := p.peek()
			switch seg.kind {
			case tokIdent:
				p.next()
				base = &getAttrNode{at: seg.pos, base: base, name: seg.text}
			case tokInt:
				// a.0 is shorthand for a[0].
				p.next()
				idx, _ := strconv.ParseInt(seg.text, 10, 64)
				base = &getIndexNode{at: seg.pos, base: base, index: &literalNode{at: seg.pos, val: Int(idx)}}
			default:
				return nil, syntaxErrorf(seg.pos, "expected attribute name after \".\"")
			}
		case tokLBracket:
			p.next()
			index, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket, "\"]\""); err != nil {
				return nil, err
			}
			base = &getIndexNode{at: tok.pos, base: base, index: index}
		default:
			return base, nil
		}
	}
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokInt:
		p.next()
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.pos, "invalid integer literal %q", tok.text)
		}
		return &literalNode{at: tok.pos, val: Int(n)}, nil
	case tokFloat:
		p.next()
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.pos, "invalid float literal %q", tok.text)
		}
		return &literalNode{at: tok.pos, val: Float(f)}, nil
	case tokString:
		p.next()
		return &literalNode{at: tok.pos, val: StringValue(tok.text)}, nil
	case tokLParen:
		p.next()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "\")\""); err != nil {
			return nil, err
		}
		return inner, nil
	case tokLBracket:
		p.next()
		items, err := p.parseListItems()
		if err != nil {
			return nil, err
		}
		return &listNode{at: tok.pos, items: items}, nil
	case tokIdent:
		switch tok.text {
		case "true", "True":
			p.next()
			return &literalNode{at: tok.pos, val: Bool(true)}, nil
		case "false", "False":
			p.next()
			return &literalNode{at: tok.pos, val: Bool(false)}, nil
		case "none", "null", "None":
			p.next()
			return &literalNode{at: tok.pos, val: None}, nil
		case "and", "or", "not", "in", "is":
			return nil, syntaxErrorf(tok.pos, "unexpected keyword %q", tok.text)
		}
		p.next()
		if p.peek().kind == tokLParen {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &callNode{at: tok.pos, name: tok.text, args: args}, nil
		}
		return &varNode{at: tok.pos, name: tok.text}, nil
	case tokEOF:
		return nil, syntaxErrorf(tok.pos, "unexpected end of expression")
	}
	return nil, syntaxErrorf(tok.pos, "unexpected token %q", tok.text)
}

// parseArgs parses a comma-separated argument list up to the closing paren,
// which is consumed.
func (p *parser) parseArgs() ([]node, error) {
	var args []node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch tok := p.peek(); tok.kind {
		case tokComma:
			p.next()
		case tokRParen:
			p.next()
			return args, nil
		default:
			return nil, syntaxErrorf(tok.pos, "expected \",\" or \")\" in argument list")
		}
	}
}

// parseListItems parses a list literal's items up to the closing bracket,
// which is consumed.
func (p *parser) parseListItems() ([]node, error) {
	var items []node
	if p.peek().kind == tokRBracket {
		p.next()
		return items, nil
	}
	for {
		item, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		switch tok := p.peek(); tok.kind {
		case tokComma:
			p.next()
		case tokRBracket:
			p.next()
			return items, nil
		default:
			return nil, syntaxErrorf(tok.pos, "expected \",\" or \"]\" in list literal")
		}
	}
}
