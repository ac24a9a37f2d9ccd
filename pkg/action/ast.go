package action

import (
	"fmt"
	"strconv"
	"strings"
)

// ASTNode is one node of a parsed ACTIONX condition. Leaf nodes are numbers
// or summary expressions; internal nodes are comparisons or AND/OR.
// Children are owned by value and the tree is not modified after parsing.
type ASTNode struct {
	Type     TokenType
	FuncType FuncType
	Func     string
	ArgList  []string
	ArgKind  ArgKind
	Number   float64

	children []ASTNode
}

// NewNumberNode returns a numeric literal leaf.
func NewNumberNode(v float64) ASTNode {
	return ASTNode{Type: TokenNumber, Number: v}
}

// NewExprNode returns a summary expression leaf. The argument kind is
// resolved from the function category and the first argument.
func NewExprNode(fn string, args ...string) ASTNode {
	funcType := FuncTypeOf(fn)

	return ASTNode{
		Type:     TokenExpr,
		FuncType: funcType,
		Func:     fn,
		ArgList:  args,
		ArgKind:  argKindOf(funcType, args),
	}
}

// NewOpNode returns a comparison or logical node without children.
func NewOpNode(t TokenType) ASTNode {
	return ASTNode{Type: t}
}

// AddChild appends child. For comparisons the first child is the left hand
// side.
func (n *ASTNode) AddChild(child ASTNode) {
	n.children = append(n.children, child)
}

// Size returns the number of children.
func (n ASTNode) Size() int {
	return len(n.children)
}

// Empty reports whether n is a leaf.
func (n ASTNode) Empty() bool {
	return len(n.children) == 0
}

// Children returns the child nodes.
func (n ASTNode) Children() []ASTNode {
	return n.children
}

// Eval evaluates the condition rooted at n.
func (n ASTNode) Eval(ctx Context) (Result, error) {
	if n.Empty() {
		if n.Type == TokenEnd {
			return NewResult(false), nil
		}

		return Result{}, fmt.Errorf("%w: %s", ErrLeafEvaluation, n)
	}

	if n.Type.IsLogical() {
		return n.evalLogicalOperation(ctx)
	}

	return n.evalComparison(ctx)
}

func (n ASTNode) evalLogicalOperation(ctx Context) (Result, error) {
	result, err := n.children[0].Eval(ctx)
	if err != nil {
		return Result{}, err
	}

	for _, child := range n.children[1:] {
		next, err := child.Eval(ctx)
		if err != nil {
			return Result{}, err
		}

		if n.Type == TokenOpAnd {
			result = result.MakeSetIntersection(next)
		} else {
			result = result.MakeSetUnion(next)
		}
	}

	return result, nil
}

func (n ASTNode) evalComparison(ctx Context) (Result, error) {
	if len(n.children) != 2 {
		return Result{}, fmt.Errorf("%w: %s expects two operands, got %d", ErrInvalidOperator, n.Type, len(n.children))
	}

	lhs, err := n.children[0].nodeValue(ctx)
	if err != nil {
		return Result{}, err
	}

	rhs, err := n.children[1].nodeValue(ctx)
	if err != nil {
		return Result{}, err
	}

	// A single named well on the right is a plain threshold.
	if n.children[1].namesEntity() {
		rhs = NewScalarValue(rhs.entities[0].value)
	}

	return lhs.evalCmp(n.Type, rhs)
}

func (n ASTNode) nodeValue(ctx Context) (Value, error) {
	if !n.Empty() {
		return Value{}, fmt.Errorf("%w: value requested from %s node", ErrInvalidOperator, n.Type)
	}

	switch {
	case n.Type == TokenNumber:
		return NewScalarValue(n.Number), nil
	case n.Type != TokenExpr:
		return Value{}, fmt.Errorf("%w: %s", ErrLeafEvaluation, n.Type)
	}

	switch n.ArgKind {
	case ArgPattern:
		return n.evalListExpression(ctx)
	case ArgWellList:
		return n.evalWellExpression(ctx)
	default:
		return n.evalScalarExpression(ctx)
	}
}

func (n ASTNode) evalScalarExpression(ctx Context) (Value, error) {
	if n.ArgKind == ArgNone {
		if v, ok := ctx.Get(n.Func); ok {
			return NewScalarValue(v), nil
		}

		if v, ok := ctx.UDQ(n.Func); ok {
			return NewScalarValue(v), nil
		}

		return Value{}, fmt.Errorf("%w: %s", ErrUndefinedVariable, n.Func)
	}

	entity := strings.Join(n.ArgList, ":")

	v, ok := ctx.GetEntity(n.Func, entity)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s:%s", ErrUndefinedVariable, n.Func, entity)
	}

	if n.namesEntity() {
		value := NewListValue()
		value.Add(n.ArgList[0], v)

		return value, nil
	}

	return NewScalarValue(v), nil
}

// namesEntity reports whether n reads one named well or group, whose value
// is tagged with that name.
func (n ASTNode) namesEntity() bool {
	return n.Type == TokenExpr && n.ArgKind == ArgName &&
		(n.FuncType == FuncWell || n.FuncType == FuncGroup)
}

func (n ASTNode) evalListExpression(ctx Context) (Value, error) {
	names, err := n.getWellList(ctx)
	if err != nil {
		return Value{}, err
	}

	value := NewListValue()

	for _, name := range names {
		if v, ok := ctx.GetEntity(n.Func, name); ok {
			value.Add(name, v)
		}
	}

	// Entities without a value are skipped, but a vector none of them has
	// is undefined.
	if len(names) > 0 && value.Len() == 0 {
		return Value{}, fmt.Errorf("%w: %s:%s", ErrUndefinedVariable, n.Func, n.ArgList[0])
	}

	return value, nil
}

func (n ASTNode) evalWellExpression(ctx Context) (Value, error) {
	return n.evalListExpression(ctx)
}

// getWellList resolves the first argument to the entity names it denotes.
func (n ASTNode) getWellList(ctx Context) ([]string, error) {
	if len(n.ArgList) == 0 {
		return nil, nil
	}

	pattern := n.ArgList[0]

	if n.FuncType == FuncGroup {
		return ctx.Groups(pattern), nil
	}

	names, ok := ctx.Wells(pattern)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedWellList, pattern)
	}

	return names, nil
}

// RequiredSummary adds every function mnemonic in the tree to out.
func (n ASTNode) RequiredSummary(out map[string]struct{}) {
	if n.Type == TokenExpr {
		out[n.Func] = struct{}{}
	}

	for _, child := range n.children {
		child.RequiredSummary(out)
	}
}

// String renders the tree in prefix form, e.g. (AND (> FOPR 100) ...).
func (n ASTNode) String() string {
	switch n.Type {
	case TokenNumber:
		return strconv.FormatFloat(n.Number, 'g', -1, 64)
	case TokenExpr:
		if len(n.ArgList) == 0 {
			return n.Func
		}

		return n.Func + " " + strings.Join(n.ArgList, " ")
	case TokenEnd:
		return "<empty>"
	}

	parts := make([]string, 0, len(n.children)+1)
	parts = append(parts, n.Type.String())

	for _, child := range n.children {
		parts = append(parts, child.String())
	}

	return "(" + strings.Join(parts, " ") + ")"
}
