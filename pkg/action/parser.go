package action

import (
	"fmt"
	"strconv"

	"github.com/ethpandaops/schedeck/pkg/deck"
)

type token struct {
	typ   TokenType
	value string
}

type parser struct {
	tokens []string
	pos    int
}

// ParseCondition builds the condition tree from dequoted ACTIONX tokens.
// An empty token list yields a tree that is never satisfied.
func ParseCondition(tokens []string) (ASTNode, error) {
	p := &parser{tokens: tokens}

	if p.current().typ == TokenEnd {
		return NewOpNode(TokenEnd), nil
	}

	tree, err := p.parseOr()
	if err != nil {
		return ASTNode{}, err
	}

	if curr := p.current(); curr.typ != TokenEnd {
		return ASTNode{}, fmt.Errorf("%w: Extra unhandled data starting with token[%d] = %s in ACTIONX condition",
			ErrInvalidCondition, p.pos, curr.value)
	}

	return tree, nil
}

func (p *parser) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: TokenEnd}
	}

	arg := p.tokens[p.pos]

	return token{typ: tokenType(arg), value: arg}
}

func (p *parser) next() token {
	p.pos++
	return p.current()
}

func (p *parser) parseOr() (ASTNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return ASTNode{}, err
	}

	if p.current().typ != TokenOpOr {
		return left, nil
	}

	node := NewOpNode(TokenOpOr)
	node.AddChild(left)

	for p.current().typ == TokenOpOr {
		p.next()

		right, err := p.parseAnd()
		if err != nil {
			return ASTNode{}, err
		}

		node.AddChild(right)
	}

	return node, nil
}

func (p *parser) parseAnd() (ASTNode, error) {
	left, err := p.parseCmp()
	if err != nil {
		return ASTNode{}, err
	}

	if p.current().typ != TokenOpAnd {
		return left, nil
	}

	node := NewOpNode(TokenOpAnd)
	node.AddChild(left)

	for p.current().typ == TokenOpAnd {
		p.next()

		right, err := p.parseCmp()
		if err != nil {
			return ASTNode{}, err
		}

		node.AddChild(right)
	}

	return node, nil
}

func (p *parser) parseCmp() (ASTNode, error) {
	if p.current().typ == TokenOpenParen {
		p.next()

		inner, err := p.parseOr()
		if err != nil {
			return ASTNode{}, err
		}

		if curr := p.current(); curr.typ != TokenCloseParen {
			return ASTNode{}, fmt.Errorf("%w: expected ')' at token[%d], got %q", ErrInvalidCondition, p.pos, curr.value)
		}

		p.next()

		return inner, nil
	}

	left, err := p.parseLeft()
	if err != nil {
		return ASTNode{}, err
	}

	op := p.current()
	if !op.typ.IsComparison() {
		return ASTNode{}, fmt.Errorf("%w: expected comparison operator after %s, got %q", ErrInvalidCondition, left, op.value)
	}

	p.next()

	right, err := p.parseRight(left)
	if err != nil {
		return ASTNode{}, err
	}

	node := NewOpNode(op.typ)
	node.AddChild(left)
	node.AddChild(right)

	return node, nil
}

func (p *parser) parseLeft() (ASTNode, error) {
	curr := p.current()
	if curr.typ != TokenExpr {
		return ASTNode{}, fmt.Errorf("%w: Expected expression as left hand side of comparison, but got %s instead.",
			ErrInvalidCondition, curr.value)
	}

	return p.parseExpr(), nil
}

func (p *parser) parseRight(left ASTNode) (ASTNode, error) {
	curr := p.current()

	switch curr.typ {
	case TokenNumber:
		p.next()

		v, err := strconv.ParseFloat(curr.value, 64)
		if err != nil {
			return ASTNode{}, fmt.Errorf("%w: %w", ErrInvalidCondition, err)
		}

		return NewNumberNode(v), nil
	case TokenExpr:
		if left.FuncType == FuncTimeMonth {
			if month, ok := deck.MonthFromName(curr.value); ok {
				p.next()
				return NewNumberNode(float64(month)), nil
			}
		}

		return p.parseExpr(), nil
	default:
		return ASTNode{}, fmt.Errorf("%w: expected value as right hand side of comparison, got %q", ErrInvalidCondition, curr.value)
	}
}

// parseExpr consumes a function name and its arguments.
func (p *parser) parseExpr() ASTNode {
	fn := p.current().value

	var args []string
	for curr := p.next(); curr.typ == TokenExpr || curr.typ == TokenNumber; curr = p.next() {
		args = append(args, curr.value)
	}

	return NewExprNode(fn, args...)
}
