package action

import "errors"

// Condition parsing errors
var (
	ErrInvalidCondition   = errors.New("invalid ACTIONX condition")
	ErrNoCondition        = errors.New("ACTIONX without condition")
	ErrInvalidKeyword     = errors.New("keyword not supported in ACTIONX block")
	ErrUnterminatedAction = errors.New("ACTIONX block without ENDACTIO")
)

// Evaluation errors. These indicate a defect in the condition tree or in the
// context it is evaluated against, not bad user input.
var (
	ErrUndefinedVariable = errors.New("undefined summary variable")
	ErrUndefinedWellList = errors.New("undefined well list")
	ErrLeafEvaluation    = errors.New("leaf node evaluated as condition")
	ErrInvalidOperator   = errors.New("invalid comparison operator")
)
