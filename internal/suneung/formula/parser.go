package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// Token kinds of the arithmetic grammar. The grammar is deliberately
// tiny: numbers, the four operators, and parentheses. Variables never
// reach the parser, they are substituted to numeric literals first.
type tokenKind int

const (
	tokNumber tokenKind = iota
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind  tokenKind
	value float64
	pos   int
}

// tokenize splits a substituted formula into tokens. Any rune outside
// the arithmetic whitelist is a hard error; this is the structural
// replacement for the old character-regex injection check.
func tokenize(input string) ([]token, error) {
	var toks []token
	i := 0
	n := len(input)

	for i < n {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+':
			toks = append(toks, token{kind: tokPlus, pos: i})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, pos: i})
			i++
		case c == '*':
			toks = append(toks, token{kind: tokStar, pos: i})
			i++
		case c == '/':
			toks = append(toks, token{kind: tokSlash, pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < n && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				i++
			}
			lit := input[start:i]
			v, err := strconv.ParseFloat(lit, 64)
			if err != nil {
				return nil, &SyntaxError{
					Msg: fmt.Sprintf("잘못된 숫자 형식: %q", lit),
					Pos: start,
				}
			}
			toks = append(toks, token{kind: tokNumber, value: v, pos: start})
		default:
			return nil, ErrDisallowedToken
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: n})
	return toks, nil
}

// ---- AST ----

type node interface {
	eval() float64
}

type numberNode struct {
	value float64
}

func (n numberNode) eval() float64 { return n.value }

type unaryNode struct {
	op      tokenKind // tokMinus or tokPlus
	operand node
}

func (n unaryNode) eval() float64 {
	v := n.operand.eval()
	if n.op == tokMinus {
		return -v
	}
	return v
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n binaryNode) eval() float64 {
	l, r := n.left.eval(), n.right.eval()
	switch n.op {
	case tokPlus:
		return l + r
	case tokMinus:
		return l - r
	case tokStar:
		return l * r
	default:
		// 0으로 나누면 IEEE 규칙대로 Inf/NaN, 최종 결과에서 0으로 접음
		return l / r
	}
}

// ---- parser ----

// parser is a precedence-climbing expression parser over the token
// stream.
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func binaryPrecedence(kind tokenKind) int {
	switch kind {
	case tokPlus, tokMinus:
		return 1
	case tokStar, tokSlash:
		return 2
	default:
		return 0
	}
}

// parseExpr parses binary expressions at or above minPrec.
func (p *parser) parseExpr(minPrec int) (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		prec := binaryPrecedence(op.kind)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		p.next()

		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op.kind, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	t := p.peek()
	if t.kind == tokMinus || t.kind == tokPlus {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: t.kind, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode{value: t.value}, nil
	case tokLParen:
		inner, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Msg: "괄호가 닫히지 않았습니다", Pos: closing.pos}
		}
		return inner, nil
	case tokEOF:
		return nil, &SyntaxError{Msg: "수식이 완성되지 않았습니다", Pos: t.pos}
	default:
		return nil, &SyntaxError{Msg: "예상하지 못한 토큰", Pos: t.pos}
	}
}

// parse builds the AST for a fully-substituted arithmetic string.
func parse(input string) (node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrDisallowedToken
	}

	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	root, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	if trailing := p.peek(); trailing.kind != tokEOF {
		return nil, &SyntaxError{Msg: "수식 뒤에 해석할 수 없는 내용이 있습니다", Pos: trailing.pos}
	}
	return root, nil
}
