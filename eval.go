package calculator

import (
	"errors"
	"io"
	"math"
	"strings"
	"unicode"
)

// evaluator holds the state of a single evaluation: the operand stack and
// the stack of operators, including open brackets, whose right operands
// have not yet been resolved.
type evaluator struct {
	nums []float64
	ops  []lexToken
}

// Evaluate computes the value of an infix arithmetic expression. Whitespace
// is ignored. Operators are + - * / % and ^; all of them are
// left-associative, so "2^3^2" is 64.
//
// If the expression is blank, the error has Kind InvalidInput. A syntax
// error has Kind ExpressionParse and wraps an InputError describing the
// problem. Dividing by zero with / gives a DivisionByZero error, but %
// follows math.Mod and yields NaN instead. NaN and infinite results are
// otherwise returned without error.
//
// Evaluate is safe for concurrent use.
func Evaluate(expr string) (float64, error) {
	src := strings.Map(dropSpace, expr)
	if src == "" {
		return 0, &Error{Kind: InvalidInput, Expr: expr}
	}
	var ev evaluator
	r, err := ev.run(lex(strings.NewReader(src)))
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Expr = expr
			return 0, e
		}
		return 0, &Error{Kind: ExpressionParse, Expr: expr, Err: err}
	}
	return r, nil
}

// EvaluateReader reads an entire expression from src and evaluates it.
func EvaluateReader(src io.RuneScanner) (float64, error) {
	var b strings.Builder
	for {
		r, _, err := src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		b.WriteRune(r)
	}
	return Evaluate(b.String())
}

// MustEvaluate is like Evaluate but panics if the expression fails.
func MustEvaluate(expr string) float64 {
	r, err := Evaluate(expr)
	if err != nil {
		panic("calculator: " + err.Error())
	}
	return r
}

func dropSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}

// run scans the whole input, applying operators as soon as precedence
// allows, and returns the single remaining value.
func (ev *evaluator) run(scan *lexer) (float64, error) {
	for {
		tok, err := scan.next()
		if err != nil {
			return 0, err
		}
		switch tok.kind {
		case tokenNum:
			ev.push(tok.num)
		case tokenOpen:
			ev.ops = append(ev.ops, tok)
		case tokenClose:
			if err := ev.unwind(tok); err != nil {
				return 0, err
			}
		case tokenOp:
			in := binop(tok.text)
			for len(ev.ops) > 0 {
				top := ev.ops[len(ev.ops)-1]
				if top.kind != tokenOp || !binop(top.text).appliesBefore(in) {
					break
				}
				if err := ev.reduce(ev.popOp()); err != nil {
					return 0, err
				}
			}
			ev.ops = append(ev.ops, tok)
		case tokenEOF:
			for len(ev.ops) > 0 {
				op := ev.popOp()
				if op.kind == tokenOpen {
					return 0, &BracketError{Col: op.pos, Left: op.text}
				}
				if err := ev.reduce(op); err != nil {
					return 0, err
				}
			}
			return ev.result(tok.pos)
		default:
			panic("calculator: unknown token: " + tok.String())
		}
	}
}

// unwind applies operators back to the open bracket matching the close
// bracket tok and discards that open bracket.
func (ev *evaluator) unwind(tok lexToken) error {
	for len(ev.ops) > 0 {
		op := ev.popOp()
		if op.kind == tokenOpen {
			return nil
		}
		if err := ev.reduce(op); err != nil {
			return err
		}
	}
	return &BracketError{Col: tok.pos, Right: tok.text}
}

// reduce applies op to the top two values of the operand stack and pushes
// the result.
func (ev *evaluator) reduce(op lexToken) error {
	if len(ev.nums) < 2 {
		return &OperandError{Col: op.pos, Operator: op.text}
	}
	r := ev.pop()
	l := ev.pop()
	v, err := apply(op.text, l, r)
	if err != nil {
		var oe *OperatorError
		if errors.As(err, &oe) {
			oe.Col = op.pos
		}
		return err
	}
	ev.push(v)
	return nil
}

// result returns the final value once all operators have been applied.
// pos is the position of the end of the input.
func (ev *evaluator) result(pos int) (float64, error) {
	switch len(ev.nums) {
	case 0:
		return 0, &EmptyExpressionError{Col: pos}
	case 1:
		return ev.nums[0], nil
	default:
		return 0, &ExtraOperandError{Col: pos, Count: len(ev.nums)}
	}
}

func (ev *evaluator) push(v float64) {
	ev.nums = append(ev.nums, v)
}

// pop removes the top of the operand stack and returns it.
func (ev *evaluator) pop() float64 {
	r := ev.nums[len(ev.nums)-1]
	ev.nums = ev.nums[:len(ev.nums)-1]
	return r
}

// popOp removes the top of the operator stack and returns it.
func (ev *evaluator) popOp() lexToken {
	r := ev.ops[len(ev.ops)-1]
	ev.ops = ev.ops[:len(ev.ops)-1]
	return r
}

// apply computes l op r.
func apply(op string, l, r float64) (float64, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, &Error{Kind: DivisionByZero}
		}
		return l / r, nil
	case "%":
		// No zero check: x % 0 is NaN.
		return math.Mod(l, r), nil
	case "^":
		return math.Pow(l, r), nil
	default:
		return 0, &Error{Kind: InvalidOperation, Err: &OperatorError{Operator: op}}
	}
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
}

// appliesBefore reports whether an operator already on the stack must be
// applied before pushing next. Every operator is left-associative, so ties
// apply the stacked operator first.
func (p operator) appliesBefore(next operator) bool {
	return p.prec >= next.prec
}

// binop gets the operator for a token string. Unknown operators have
// precedence 0.
func binop(text string) operator {
	switch text {
	case "+", "-":
		return operator{1}
	case "*", "/", "%":
		return operator{2}
	case "^":
		return operator{3}
	default:
		return operator{}
	}
}
