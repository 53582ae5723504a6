package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError is returned for any malformed filter or path string. It
// carries the 1-based column of the offending token (spec §4.3).
type SyntaxError struct {
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (column %d)", e.Msg, e.Column)
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.cur().kind != kind {
		return token{}, &SyntaxError{Column: p.cur().column, Msg: "expected " + what}
	}
	return p.advance(), nil
}

// splitAttrPath decomposes a raw dotted/URN-qualified identifier token into
// its schema URN (if any), attribute name, and dotted sub-attribute (if
// any), per spec §4.3.
func splitAttrPath(text string) AttrPath {
	schema := ""
	rest := text
	if len(text) >= 4 && strings.EqualFold(text[:4], "urn:") {
		if idx := strings.LastIndex(text, ":"); idx > 0 {
			schema = text[:idx]
			rest = text[idx+1:]
		}
	}
	attrName := rest
	subAttr := ""
	if idx := strings.Index(rest, "."); idx >= 0 {
		attrName = rest[:idx]
		subAttr = rest[idx+1:]
	}
	return AttrPath{Schema: schema, AttributeName: attrName, SubAttr: subAttr}
}

func parseLiteralValue(t token) (interface{}, error) {
	switch t.kind {
	case tokString:
		return t.text, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &SyntaxError{Column: t.column, Msg: "invalid numeric literal " + t.text}
		}
		return f, nil
	case tokBool:
		return t.text == "true", nil
	case tokNull:
		return nil, nil
	default:
		return nil, &SyntaxError{Column: t.column, Msg: "expected a comparison value"}
	}
}

// parseExpression parses the lowest-precedence "or" level.
func (p *parser) parseExpression() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = LogicalExpr{Left: left, Op: LogicalOr, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = LogicalExpr{Left: left, Op: LogicalAnd, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expression, error) {
	if p.cur().kind == tokNot {
		notCol := p.cur().column
		p.advance()
		if p.cur().kind != tokLParen {
			return nil, &SyntaxError{Column: notCol, Msg: "'not' must be followed by '(' expression ')'"}
		}
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return NotExpr{Expr: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expression, error) {
	switch p.cur().kind {
	case tokLParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdentifier:
		path := splitAttrPath(p.advance().text)
		switch p.cur().kind {
		case tokPresentOp:
			p.advance()
			return AttrExpr{Path: path, Op: OpPresent}, nil
		case tokCompareOp:
			op := CompareOp(p.advance().text)
			valTok := p.advance()
			value, err := parseLiteralValue(valTok)
			if err != nil {
				return nil, err
			}
			return AttrExpr{Path: path, Op: op, Value: value}, nil
		case tokLBracket:
			p.advance()
			sub, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket, "']'"); err != nil {
				return nil, err
			}
			return ValuePathExpr{Path: path, Sub: sub}, nil
		default:
			return nil, &SyntaxError{Column: p.cur().column, Msg: "expected a comparison operator, 'pr', or '[' after attribute path"}
		}
	default:
		return nil, &SyntaxError{Column: p.cur().column, Msg: "expected an attribute path or '('"}
	}
}

// parsePath parses a PATCH attribute path: attr | attr.sub | attr[filter] |
// attr[filter].sub (spec §4.3, §3).
func (p *parser) parsePath() (Path, error) {
	if p.cur().kind != tokIdentifier {
		return Path{}, &SyntaxError{Column: p.cur().column, Msg: "expected an attribute path"}
	}
	attrPath := splitAttrPath(p.advance().text)

	var valueFilter Expression
	var subAttr *string

	if p.cur().kind == tokLBracket {
		p.advance()
		vf, err := p.parseExpression()
		if err != nil {
			return Path{}, err
		}
		valueFilter = vf
		if _, err := p.expect(tokRBracket, "']'"); err != nil {
			return Path{}, err
		}
		if p.cur().kind == tokDot {
			p.advance()
			subTok, err := p.expect(tokIdentifier, "a sub-attribute name")
			if err != nil {
				return Path{}, err
			}
			name := subTok.text
			subAttr = &name
		}
	}

	return Path{AttributePath: attrPath, ValueFilter: valueFilter, SubAttribute: subAttr}, nil
}

// ParseFilter parses a full SCIM filter expression string.
func ParseFilter(raw string) (Expression, error) {
	toks, err := tokenize(raw)
	if err != nil {
		return nil, &SyntaxError{Column: len(raw) + 1, Msg: err.Error()}
	}
	p := &parser{toks: toks}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, &SyntaxError{Column: p.cur().column, Msg: "unexpected trailing input"}
	}
	return expr, nil
}

// ParsePath parses a PATCH attribute path string.
func ParsePath(raw string) (Path, error) {
	toks, err := tokenize(raw)
	if err != nil {
		return Path{}, &SyntaxError{Column: len(raw) + 1, Msg: err.Error()}
	}
	p := &parser{toks: toks}
	path, err := p.parsePath()
	if err != nil {
		return Path{}, err
	}
	if p.cur().kind != tokEOF {
		return Path{}, &SyntaxError{Column: p.cur().column, Msg: "unexpected trailing input"}
	}
	return path, nil
}
