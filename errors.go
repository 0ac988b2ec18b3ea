package calculator

import (
	"errors"
	"strconv"
)

// Kind classifies an evaluation failure. A Kind is itself an error so that
// callers can test an error chain with errors.Is(err, calculator.DivisionByZero).
type Kind int

const (
	// InvalidInput is an empty or all-whitespace expression.
	InvalidInput Kind = iota + 1
	// ExpressionParse is any syntax error: unbalanced parentheses, invalid
	// characters, malformed numbers, or operators missing operands.
	ExpressionParse
	// DivisionByZero is a division whose right operand is zero. The modulo
	// operator is not checked.
	DivisionByZero
	// InvalidOperation is an operator that the evaluator cannot apply.
	InvalidOperation
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case ExpressionParse:
		return "expression parse error"
	case DivisionByZero:
		return "division by zero"
	case InvalidOperation:
		return "invalid operation"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k Kind) Error() string {
	return k.String()
}

// Key returns the identifier used to look up a display message for k.
func (k Kind) Key() string {
	switch k {
	case InvalidInput:
		return "invalidInput"
	case ExpressionParse:
		return "expressionParseError"
	case DivisionByZero:
		return "divisionByZero"
	case InvalidOperation:
		return "invalidOperation"
	default:
		return ""
	}
}

// Error is the error returned by Evaluate. Err, if not nil, is the
// underlying cause; for ExpressionParse errors it implements InputError.
type Error struct {
	// Kind is the classification of the failure.
	Kind Kind
	// Expr is the expression as the caller passed it.
	Expr string
	// Err is the underlying cause, if any.
	Err error
}

func (err *Error) Error() string {
	var msg string
	switch err.Kind {
	case InvalidInput:
		msg = "expression cannot be empty"
	case ExpressionParse:
		msg = "failed to parse expression " + strconv.Quote(err.Expr)
	case DivisionByZero:
		msg = "cannot divide by zero"
	default:
		msg = err.Kind.String()
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *Error) Unwrap() error {
	return err.Err
}

// Is reports whether target is the Kind of err.
func (err *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == err.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}

// OperatorError is an error indicating an operator symbol that the
// evaluator does not know how to apply. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the symbol that was not understood.
	Operator string
}

func (err *OperatorError) Error() string {
	return errpos(err.Col, "unknown operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// OperandError is an error indicating an operator without both of its
// operands, e.g. a leading or trailing operator. It implements InputError.
type OperandError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the operator that lacked an operand.
	Operator string
}

func (err *OperandError) Error() string {
	return errpos(err.Col, "missing operand for "+strconv.Quote(err.Operator))
}

func (err *OperandError) Pos() int {
	return err.Col
}

// ExtraOperandError is an error indicating values left over with no
// operator to combine them, e.g. "(2)(3)". It implements InputError.
type ExtraOperandError struct {
	// Col is the position of the end of the expression.
	Col int
	// Count is the number of values that remained.
	Count int
}

func (err *ExtraOperandError) Error() string {
	return errpos(err.Col, strconv.Itoa(err.Count)+" values with no operator between them")
}

func (err *ExtraOperandError) Pos() int {
	return err.Col
}

// BracketError is an error indicating unbalanced parentheses in the input.
// It implements InputError.
type BracketError struct {
	// Col is the position of the unmatched bracket.
	Col int
	// Left is the opening bracket, if it is the one without a match.
	Left string
	// Right is the closing bracket, if it is the one without a match.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an expression that contains
// brackets but no values, e.g. "()".
type EmptyExpressionError struct {
	// Col is the position of the end of the expression.
	Col int
}

func (err *EmptyExpressionError) Error() string {
	return errpos(err.Col, "no expression")
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every cause of an
// ExpressionParse error implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of non-space
	// runes up to and including the start of the token that caused it.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*OperandError)(nil)
	_ InputError = (*ExtraOperandError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*LexError)(nil)
	_ error      = Kind(0)
)
