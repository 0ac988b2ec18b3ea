package calculator_test

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/zephyrtronium/calculator"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    float64
	}{
		{"num", "1", 1},
		{"decimal", "2.25", 2.25},
		{"leading-dot", ".5", 0.5},
		{"trailing-dot", "3.", 3},
		{"add", "4+5+6", 4 + 5 + 6},
		{"sub", "10-2-3", 5},
		{"sub-add", "3-2+1", 2},
		{"mul", "4*5*6", 4 * 5 * 6},
		{"div", "100/10/5", 2},
		{"mod", "7%3", 1},
		{"mod-mul", "2*3%4", 2},
		{"mul-div", "8/2*4", 16},
		{"pow", "2^10", 1024},
		{"pow-left", "2^3^2", 64},
		{"pow-frac", "2^0.5", math.Sqrt(2)},
		{"prec-mul", "2+3*4", 14},
		{"prec-pow", "2*3^2", 18},
		{"prec-pow-sub", "0-2^2", -4},
		{"parens", "(2+3)*4", 20},
		{"nested", "((1))", 1},
		{"nested-ops", "2*(3+(4-1)*2)", 18},
		{"mixed", "(5+3)/2*2^3", 32},
		{"spaces", " 2 +  3 * 4 ", 14},
		{"tabs", "2\t+\n3", 5},
		{"decimals", "1.5+2.5", 4},
		{"tenths", "1.1+1.1", 2.2},
		{"negative", "2-3", -1},
		{"big", "12345678901234567890", 12345678901234567890},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			r, err := calculator.Evaluate(c.src)
			if err != nil {
				t.Fatalf("%q failed: %v", c.src, err)
			}
			if r != c.r {
				t.Errorf("%q: want %g, got %g", c.src, c.r, r)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		kind  calculator.Kind
		cause interface{}
	}{
		{"empty", "", calculator.InvalidInput, nil},
		{"blank", "   ", calculator.InvalidInput, nil},
		{"blank-lines", "\t\n ", calculator.InvalidInput, nil},
		{"div-zero", "5/0", calculator.DivisionByZero, nil},
		{"div-zero-expr", "5/(2-2)", calculator.DivisionByZero, nil},
		{"zero-div-zero", "0/0", calculator.DivisionByZero, nil},
		{"unclosed", "(2+3", calculator.ExpressionParse, (*calculator.BracketError)(nil)},
		{"unopened", "2+3)", calculator.ExpressionParse, (*calculator.BracketError)(nil)},
		{"backwards", ")(", calculator.ExpressionParse, (*calculator.BracketError)(nil)},
		{"trailing-op", "2+", calculator.ExpressionParse, (*calculator.OperandError)(nil)},
		{"leading-op", "+2", calculator.ExpressionParse, (*calculator.OperandError)(nil)},
		{"unary-minus", "-5", calculator.ExpressionParse, (*calculator.OperandError)(nil)},
		{"double-op", "2**3", calculator.ExpressionParse, (*calculator.OperandError)(nil)},
		{"only-op", "*", calculator.ExpressionParse, (*calculator.OperandError)(nil)},
		{"letter", "2a", calculator.ExpressionParse, (*calculator.LexError)(nil)},
		{"exponent", "1e3", calculator.ExpressionParse, (*calculator.LexError)(nil)},
		{"two-dots", "1.2.3", calculator.ExpressionParse, (*calculator.LexError)(nil)},
		{"adjacent-dots", "1..2", calculator.ExpressionParse, (*calculator.LexError)(nil)},
		{"dot", ".", calculator.ExpressionParse, (*calculator.LexError)(nil)},
		{"bracket", "[1]", calculator.ExpressionParse, (*calculator.LexError)(nil)},
		{"empty-parens", "()", calculator.ExpressionParse, (*calculator.EmptyExpressionError)(nil)},
		{"implicit-mul", "(2)(3)", calculator.ExpressionParse, (*calculator.ExtraOperandError)(nil)},
		{"implicit-mul-num", "2(3)", calculator.ExpressionParse, (*calculator.ExtraOperandError)(nil)},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			r, err := calculator.Evaluate(c.src)
			if err == nil {
				t.Fatalf("%q gave no error, result %g", c.src, r)
			}
			if !errors.Is(err, c.kind) {
				t.Errorf("%q: want kind %v, got %v", c.src, c.kind, err)
			}
			k, ok := calculator.KindOf(err)
			if !ok || k != c.kind {
				t.Errorf("%q: KindOf gave %v, %t", c.src, k, ok)
			}
			var e *calculator.Error
			if !errors.As(err, &e) {
				t.Fatalf("%q: error %#v is not *Error", c.src, err)
			}
			if e.Expr != c.src {
				t.Errorf("%q: error has expression %q", c.src, e.Expr)
			}
			if c.cause == nil {
				return
			}
			want := reflect.TypeOf(c.cause)
			if got := reflect.TypeOf(e.Err); got != want {
				t.Fatalf("%q: want cause %v, got %v (%v)", c.src, want, got, e.Err)
			}
			var ie calculator.InputError
			if !errors.As(err, &ie) {
				t.Fatalf("%q: cause %#v is not an InputError", c.src, e.Err)
			}
			if ie.Pos() < 1 {
				t.Errorf("%q: bad error position %d", c.src, ie.Pos())
			}
		})
	}
}

func TestEvaluateModZero(t *testing.T) {
	r, err := calculator.Evaluate("5%0")
	if err != nil {
		t.Fatalf("5%%0 gave error: %v", err)
	}
	if !math.IsNaN(r) {
		t.Errorf("5%%0: want NaN, got %g", r)
	}
	if s := calculator.FormatResult(r); s != calculator.ErrorDisplay {
		t.Errorf("5%%0 formatted as %q", s)
	}
}

func TestEvaluatePositions(t *testing.T) {
	cases := []struct {
		src string
		pos int
	}{
		{"(2+3", 1},
		{"2+3)", 4},
		{"2 + 3 )", 4},
		{"2+", 2},
		{"1+(2", 3},
	}
	for _, c := range cases {
		_, err := calculator.Evaluate(c.src)
		var ie calculator.InputError
		if !errors.As(err, &ie) {
			t.Errorf("%q: no InputError in %v", c.src, err)
			continue
		}
		if ie.Pos() != c.pos {
			t.Errorf("%q: want position %d, got %d (%v)", c.src, c.pos, ie.Pos(), err)
		}
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	srcs := []string{"2+3*4", "(5+3)/2*2^3", "1.1+1.1", "5%0", "5/0", "(2+3"}
	for _, src := range srcs {
		r1, err1 := calculator.Evaluate(src)
		for i := 0; i < 5; i++ {
			r2, err2 := calculator.Evaluate(src)
			if math.Float64bits(r1) != math.Float64bits(r2) {
				t.Errorf("%q: result changed from %g to %g", src, r1, r2)
			}
			if (err1 == nil) != (err2 == nil) || err1 != nil && err1.Error() != err2.Error() {
				t.Errorf("%q: error changed from %v to %v", src, err1, err2)
			}
		}
	}
}

func TestEvaluateWhitespace(t *testing.T) {
	pairs := [][2]string{
		{"2 + 3 * 4", "2+3*4"},
		{" ( 1 + 2 ) ^ 2 ", "(1+2)^2"},
		{"1 0 + 1", "10+1"},
	}
	for _, p := range pairs {
		a, err := calculator.Evaluate(p[0])
		if err != nil {
			t.Fatalf("%q failed: %v", p[0], err)
		}
		b, err := calculator.Evaluate(p[1])
		if err != nil {
			t.Fatalf("%q failed: %v", p[1], err)
		}
		if a != b {
			t.Errorf("%q gave %g but %q gave %g", p[0], a, p[1], b)
		}
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	srcs := map[string]float64{
		"2+3*4":       14,
		"(2+3)*4":     20,
		"2^3^2":       64,
		"(5+3)/2*2^3": 32,
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for src, want := range srcs {
					r, err := calculator.Evaluate(src)
					if err != nil || r != want {
						t.Errorf("%q: want %g, got %g, %v", src, want, r, err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestEvaluateReader(t *testing.T) {
	r, err := calculator.EvaluateReader(strings.NewReader("(2 + 3)\n* 4\n"))
	if err != nil {
		t.Fatal(err)
	}
	if r != 20 {
		t.Errorf("want 20, got %g", r)
	}
	if _, err := calculator.EvaluateReader(strings.NewReader("\n")); !errors.Is(err, calculator.InvalidInput) {
		t.Errorf("blank reader gave %v", err)
	}
}

func TestMustEvaluate(t *testing.T) {
	if r := calculator.MustEvaluate("6*7"); r != 42 {
		t.Errorf("want 42, got %g", r)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustEvaluate did not panic on bad input")
		}
	}()
	calculator.MustEvaluate("6*")
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		src string
		msg []string
	}{
		{"", []string{"empty"}},
		{"1/0", []string{"divide by zero"}},
		{"(2+3", []string{`"(2+3"`, "open bracket", "1:"}},
		{"2+3)", []string{"close bracket"}},
		{"2a", []string{"invalid token", "a"}},
		{"1.2.3", []string{"invalid number", "1.2.3"}},
		{"2+", []string{"missing operand", `"+"`}},
	}
	for _, c := range cases {
		_, err := calculator.Evaluate(c.src)
		if err == nil {
			t.Errorf("%q gave no error", c.src)
			continue
		}
		for _, m := range c.msg {
			if !strings.Contains(err.Error(), m) {
				t.Errorf("%q: error %q doesn't mention %q", c.src, err.Error(), m)
			}
		}
	}
}
