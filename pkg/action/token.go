package action

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType classifies a condition token and the node built from it.
type TokenType int

const (
	TokenNumber TokenType = iota
	TokenExpr
	TokenOpenParen
	TokenCloseParen
	TokenOpGT
	TokenOpGE
	TokenOpLT
	TokenOpLE
	TokenOpEQ
	TokenOpNE
	TokenOpAnd
	TokenOpOr
	TokenEnd
)

//nolint:gochecknoglobals // Lookup table for operator names
var tokenNames = map[TokenType]string{
	TokenNumber:     "number",
	TokenExpr:       "expr",
	TokenOpenParen:  "(",
	TokenCloseParen: ")",
	TokenOpGT:       ">",
	TokenOpGE:       ">=",
	TokenOpLT:       "<",
	TokenOpLE:       "<=",
	TokenOpEQ:       "=",
	TokenOpNE:       "!=",
	TokenOpAnd:      "AND",
	TokenOpOr:       "OR",
	TokenEnd:        "end",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsComparison reports whether t is one of the six comparison operators.
func (t TokenType) IsComparison() bool {
	return t >= TokenOpGT && t <= TokenOpNE
}

// IsLogical reports whether t is AND or OR.
func (t TokenType) IsLogical() bool {
	return t == TokenOpAnd || t == TokenOpOr
}

func tokenType(arg string) TokenType {
	switch strings.ToLower(arg) {
	case "and":
		return TokenOpAnd
	case "or":
		return TokenOpOr
	case "(":
		return TokenOpenParen
	case ")":
		return TokenCloseParen
	case ">", ".gt.":
		return TokenOpGT
	case ">=", ".ge.":
		return TokenOpGE
	case "<", ".lt.":
		return TokenOpLT
	case "<=", ".le.":
		return TokenOpLE
	case "=", ".eq.":
		return TokenOpEQ
	case "!=", ".ne.":
		return TokenOpNE
	}

	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return TokenNumber
	}

	return TokenExpr
}

// FuncType is the summary category of a condition function.
type FuncType int

const (
	FuncNone FuncType = iota
	FuncField
	FuncWell
	FuncGroup
	FuncSegment
	FuncConnection
	FuncRegion
	FuncBlock
	FuncAquifer
	FuncTime
	FuncTimeMonth
)

func (f FuncType) String() string {
	switch f {
	case FuncField:
		return "field"
	case FuncWell:
		return "well"
	case FuncGroup:
		return "group"
	case FuncSegment:
		return "segment"
	case FuncConnection:
		return "connection"
	case FuncRegion:
		return "region"
	case FuncBlock:
		return "block"
	case FuncAquifer:
		return "aquifer"
	case FuncTime:
		return "time"
	case FuncTimeMonth:
		return "month"
	default:
		return "none"
	}
}

// MarshalText renders the category by name.
func (f FuncType) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// FuncTypeOf derives the category of a summary mnemonic from its leading
// letter. YEAR, MNTH and DAY are the calendar functions.
func FuncTypeOf(fn string) FuncType {
	switch fn {
	case "YEAR", "DAY":
		return FuncTime
	case "MNTH":
		return FuncTimeMonth
	case "":
		return FuncNone
	}

	switch fn[0] {
	case 'F':
		return FuncField
	case 'W':
		return FuncWell
	case 'G':
		return FuncGroup
	case 'S':
		return FuncSegment
	case 'C':
		return FuncConnection
	case 'R':
		return FuncRegion
	case 'B':
		return FuncBlock
	case 'A':
		return FuncAquifer
	default:
		return FuncNone
	}
}

// ArgKind records how the first argument of an expression resolves.
type ArgKind int

const (
	// ArgNone is an expression without arguments, e.g. FOPR.
	ArgNone ArgKind = iota
	// ArgName scopes the expression to one entity, e.g. WOPR OP1.
	ArgName
	// ArgPattern is a wildcard over well or group names, e.g. WOPR 'OP*'.
	ArgPattern
	// ArgWellList names a well list or well list template, e.g. WOPR '*PROD'.
	ArgWellList
)

func (k ArgKind) String() string {
	switch k {
	case ArgName:
		return "name"
	case ArgPattern:
		return "pattern"
	case ArgWellList:
		return "welllist"
	default:
		return "none"
	}
}

func argKindOf(funcType FuncType, args []string) ArgKind {
	if len(args) == 0 {
		return ArgNone
	}

	if funcType != FuncWell && funcType != FuncGroup {
		return ArgName
	}

	arg := args[0]
	if funcType == FuncWell && len(arg) > 1 && arg[0] == '*' {
		return ArgWellList
	}

	if strings.ContainsAny(arg, "*?") {
		return ArgPattern
	}

	return ArgName
}
