package formula

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenOperator
	tokenLParen
	tokenRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

// ParseFormula parses an arithmetic expression into a Node tree.
//
// Precedence from loosest to tightest: + and -, then * and /, then unary
// signs, then ** (or ^, right associative), then postfix !. So -x**2 is
// -(x**2) and 2**-1 is 0.5.
func ParseFormula(formula string) (*Node, error) {
	tokens, err := tokenize(formula)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrParse, tok.text, tok.pos)
	}
	return node, nil
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isWhitespace(c):
			i++
		case isDigit(c) || (c == '.' && i+1 < len(s) && isDigit(s[i+1])):
			start := i
			i = scanNumber(s, i)
			v, err := strconv.ParseFloat(s[start:i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q at %d", ErrParse, s[start:i], start)
			}
			tokens = append(tokens, token{kind: tokenNumber, text: s[start:i], value: v, pos: start})
		case isLetter(c) || c == '_':
			start := i
			for i < len(s) && (isLetter(s[i]) || isDigit(s[i]) || s[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: s[start:i], pos: start})
		case c == '*' && i+1 < len(s) && s[i+1] == '*':
			tokens = append(tokens, token{kind: tokenOperator, text: "**", pos: i})
			i += 2
		case c == '^':
			tokens = append(tokens, token{kind: tokenOperator, text: "**", pos: i})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '!':
			tokens = append(tokens, token{kind: tokenOperator, text: string(c), pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrParse, c, i)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty formula", ErrParse)
	}
	return append(tokens, token{kind: tokenEOF, text: "end of input", pos: len(s)}), nil
}

// scanNumber returns the end of the number starting at i. An exponent is only
// consumed when digits follow it, so "2e" stays a number and a name.
func scanNumber(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) acceptOperator(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.kind != tokenOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseExpression() (*Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOperator("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = operation(binaryOperator(op), left, right)
	}
}

func (p *parser) parseTerm() (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOperator("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = operation(binaryOperator(op), left, right)
	}
}

func (p *parser) parseUnary() (*Node, error) {
	if op, ok := p.acceptOperator("+", "-"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return operation(OpNegate, operand, nil), nil
		}
		return operand, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (*Node, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOperator("**"); ok {
		exponent, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return operation(OpPower, base, exponent), nil
	}
	return base, nil
}

func (p *parser) parsePostfix() (*Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOperator("!"); !ok {
			return node, nil
		}
		node = operation(OpFactorial, node, nil)
	}
}

func (p *parser) parsePrimary() (*Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		return &Node{Type: NodeTypeConstant, Value: tok.value}, nil

	case tokenIdent:
		if p.peek().kind == tokenLParen {
			op, ok := functions[tok.text]
			if !ok {
				return nil, fmt.Errorf("%w: function %q at %d", ErrUnknownSymbol, tok.text, tok.pos)
			}
			p.next()
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokenRParen); err != nil {
				return nil, err
			}
			return operation(op, arg, nil), nil
		}
		if v, ok := constants[tok.text]; ok {
			return &Node{Type: NodeTypeConstant, Value: v}, nil
		}
		if _, ok := functions[tok.text]; ok {
			return nil, fmt.Errorf("%w: function %q needs an argument at %d", ErrParse, tok.text, tok.pos)
		}
		return &Node{Type: NodeTypeVariable, Variable: tok.text}, nil

	case tokenLParen:
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}

	return nil, fmt.Errorf("%w: unexpected %q at %d", ErrParse, tok.text, tok.pos)
}

func (p *parser) expect(kind tokenKind) error {
	tok := p.next()
	if tok.kind != kind {
		return fmt.Errorf("%w: expected ')' but found %q at %d", ErrParse, tok.text, tok.pos)
	}
	return nil
}

func operation(op Operator, left, right *Node) *Node {
	return &Node{Type: NodeTypeOperation, Op: op, Left: left, Right: right}
}

func binaryOperator(sym string) Operator {
	for op, s := range binarySymbols {
		if s == sym {
			return op
		}
	}
	return OpAdd
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
