package template

import (
	"strings"
)

// Template is a parsed template: literal text interleaved with compiled
// expressions. Templates are immutable after parsing and safe to share
// between goroutines.
type Template struct {
	source string
	parts  []part
}

type part struct {
	isExpr  bool
	literal string
	expr    node
	exprSrc string
	pos     int
}

// Parse compiles a template source. Literal text outside {{ }} passes
// through untouched; each expression is parsed once up front so render-time
// errors are limited to evaluation.
func Parse(src string) (*Template, error) {
	segments, err := splitTemplate(src)
	if err != nil {
		return nil, withSource(err, src)
	}
	t := &Template{source: src, parts: make([]part, 0, len(segments))}
	for _, seg := range segments {
		if seg.kind == segmentLiteral {
			t.parts = append(t.parts, part{literal: seg.text})
			continue
		}
		expr := strings.TrimSpace(seg.text)
		if expr == "" {
			return nil, withSource(syntaxErrorf(seg.pos, "empty expression"), src)
		}
		n, err := parseExpressionSource(seg.text, seg.pos)
		if err != nil {
			return nil, withSource(err, src)
		}
		t.parts = append(t.parts, part{isExpr: true, expr: n, exprSrc: expr, pos: seg.pos})
	}
	return t, nil
}

// Source returns the original template text.
func (t *Template) Source() string {
	return t.source
}

// HasExpressions reports whether the template contains any {{ }} segments.
func (t *Template) HasExpressions() bool {
	for _, p := range t.parts {
		if p.isExpr {
			return true
		}
	}
	return false
}

// render evaluates every part against ev and concatenates the results using
// canonical string formatting.
func (t *Template) render(ev *evaluator) (string, error) {
	var b strings.Builder
	for _, p := range t.parts {
		if !p.isExpr {
			b.WriteString(p.literal)
			continue
		}
		v, err := ev.eval(p.expr, 0)
		if err != nil {
			return "", withSource(err, p.exprSrc)
		}
		b.WriteString(v.String())
	}
	return b.String(), nil
}

// renderValue evaluates the template, preserving the value kind when the
// template is a single bare expression.
func (t *Template) renderValue(ev *evaluator) (Value, error) {
	if expr, ok := t.soleExpression(); ok {
		v, err := ev.eval(expr.expr, 0)
		if err != nil {
			return None, withSource(err, expr.exprSrc)
		}
		return v, nil
	}
	s, err := t.render(ev)
	if err != nil {
		return None, err
	}
	return StringValue(s), nil
}

// soleExpression returns the template's single expression part when the
// template consists of exactly one expression and no literal text.
func (t *Template) soleExpression() (part, bool) {
	var expr part
	found := false
	for _, p := range t.parts {
		if p.isExpr {
			if found {
				return part{}, false
			}
			expr = p
			found = true
			continue
		}
		if p.literal != "" {
			return part{}, false
		}
	}
	return expr, found
}
