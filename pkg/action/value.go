package action

import (
	"fmt"
)

type entityValue struct {
	name  string
	value float64
}

// Value is the result of evaluating a leaf node: either one scalar or one
// value per entity.
type Value struct {
	scalar   float64
	isScalar bool
	entities []entityValue
}

// NewScalarValue returns a scalar value.
func NewScalarValue(v float64) Value {
	return Value{scalar: v, isScalar: true}
}

// NewListValue returns an empty per-entity value.
func NewListValue() Value {
	return Value{}
}

// Add appends the value of one entity.
func (v *Value) Add(name string, value float64) {
	v.entities = append(v.entities, entityValue{name: name, value: value})
}

// IsScalar reports whether v holds a single scalar.
func (v Value) IsScalar() bool {
	return v.isScalar
}

// Scalar returns the scalar value.
func (v Value) Scalar() (float64, bool) {
	return v.scalar, v.isScalar
}

// Len returns the number of entity values.
func (v Value) Len() int {
	return len(v.entities)
}

func (v Value) lookup(name string) (float64, bool) {
	for _, e := range v.entities {
		if e.name == name {
			return e.value, true
		}
	}

	return 0, false
}

// evalCmp compares v to rhs. Scalar against scalar gives a scalar result.
// When either side holds per-entity values the comparison runs per entity
// and the result carries the entities for which it held; with entities on
// both sides only the entities present on both take part.
func (v Value) evalCmp(op TokenType, rhs Value) (Result, error) {
	if !op.IsComparison() {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidOperator, op)
	}

	switch {
	case v.isScalar && rhs.isScalar:
		return NewResult(compare(op, v.scalar, rhs.scalar)), nil
	case rhs.isScalar:
		return matchEntities(v.entities, func(e entityValue) (bool, bool) {
			return compare(op, e.value, rhs.scalar), true
		}), nil
	case v.isScalar:
		return matchEntities(rhs.entities, func(e entityValue) (bool, bool) {
			return compare(op, v.scalar, e.value), true
		}), nil
	default:
		return matchEntities(v.entities, func(e entityValue) (bool, bool) {
			other, ok := rhs.lookup(e.name)
			if !ok {
				return false, false
			}

			return compare(op, e.value, other), true
		}), nil
	}
}

func matchEntities(entities []entityValue, cmp func(entityValue) (bool, bool)) Result {
	matching := make([]string, 0, len(entities))

	for _, e := range entities {
		if ok, present := cmp(e); present && ok {
			matching = append(matching, e.name)
		}
	}

	return NewResult(len(matching) > 0).WithWells(matching...)
}

func compare(op TokenType, lhs, rhs float64) bool {
	switch op {
	case TokenOpGT:
		return lhs > rhs
	case TokenOpGE:
		return lhs >= rhs
	case TokenOpLT:
		return lhs < rhs
	case TokenOpLE:
		return lhs <= rhs
	case TokenOpEQ:
		return lhs == rhs
	case TokenOpNE:
		return lhs != rhs
	default:
		return false
	}
}
