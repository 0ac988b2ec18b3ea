package calculator

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		err    bool
	}{
		{"", []lexToken{{kind: tokenEOF, pos: 1}}, false},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}, {kind: tokenEOF, pos: 2}}, false},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1, num: 9876543210}, {kind: tokenEOF, pos: 11}}, false},
		{"1.5", []lexToken{{text: "1.5", kind: tokenNum, pos: 1, num: 1.5}, {kind: tokenEOF, pos: 4}}, false},
		{".5", []lexToken{{text: ".5", kind: tokenNum, pos: 1, num: 0.5}, {kind: tokenEOF, pos: 3}}, false},
		{"5.", []lexToken{{text: "5.", kind: tokenNum, pos: 1, num: 5}, {kind: tokenEOF, pos: 3}}, false},
		{"1.1.1", nil, true},
		{".", nil, true},
		{"..", nil, true},
		// operators
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1, num: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}, {kind: tokenEOF, pos: 4}}, false},
		{"+-*/%^", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "*", kind: tokenOp, pos: 3}, {text: "/", kind: tokenOp, pos: 4}, {text: "%", kind: tokenOp, pos: 5}, {text: "^", kind: tokenOp, pos: 6}, {kind: tokenEOF, pos: 7}}, false},
		// brackets
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2, num: 1}, {text: ")", kind: tokenClose, pos: 3}, {kind: tokenEOF, pos: 4}}, false},
		{")(", []lexToken{{text: ")", kind: tokenClose, pos: 1}, {text: "(", kind: tokenOpen, pos: 2}, {kind: tokenEOF, pos: 3}}, false},
		// erroneous symbols
		{"$", nil, true},
		{"a", nil, true},
		{"1$", []lexToken{{text: "1", kind: tokenNum, pos: 1, num: 1}}, true},
		{"×", nil, true},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		var got []lexToken
		var err error
		for {
			var tok lexToken
			tok, err = scan.next()
			if err != nil {
				break
			}
			got = append(got, tok)
			if tok.kind == tokenEOF {
				break
			}
		}
		if (err != nil) != c.err {
			t.Errorf("scanning %q: want error %t, got %v", c.src, c.err, err)
		}
		if len(got) != len(c.tokens) {
			t.Errorf("scanning %q: want %v, got %v", c.src, c.tokens, got)
			continue
		}
		for i := range got {
			if got[i] != c.tokens[i] {
				t.Errorf("scanning %q: token %d: want %v, got %v", c.src, i, c.tokens[i], got[i])
			}
		}
		if err == nil {
			if tok, err := scan.next(); err != io.EOF {
				t.Errorf("scanning %q: extra token %v after EOF", c.src, tok)
			}
		}
	}
}

func TestLexNumberError(t *testing.T) {
	scan := lex(strings.NewReader("1.2.3+4"))
	_, err := scan.next()
	var le *LexError
	if !errors.As(err, &le) {
		t.Fatalf("want LexError, got %#v", err)
	}
	if le.Kind != "number" || le.Text != "1.2.3" {
		t.Errorf("wrong error contents: %+v", le)
	}
}

func TestLexHugeNumber(t *testing.T) {
	src := "1" + strings.Repeat("0", 400)
	scan := lex(strings.NewReader(src))
	tok, err := scan.next()
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(tok.num, 1) {
		t.Errorf("want +Inf, got %g", tok.num)
	}
}

func TestApply(t *testing.T) {
	cases := []struct {
		op   string
		l, r float64
		want float64
	}{
		{"+", 2, 3, 5},
		{"-", 2, 3, -1},
		{"*", 2, 3, 6},
		{"/", 3, 2, 1.5},
		{"%", 7, 3, 1},
		{"%", -7, 3, -1},
		{"^", 2, 3, 8},
	}
	for _, c := range cases {
		got, err := apply(c.op, c.l, c.r)
		if err != nil {
			t.Errorf("%g %s %g: %v", c.l, c.op, c.r, err)
			continue
		}
		if got != c.want {
			t.Errorf("%g %s %g: want %g, got %g", c.l, c.op, c.r, c.want, got)
		}
	}
}

func TestApplyErrors(t *testing.T) {
	if _, err := apply("/", 1, 0); !errors.Is(err, DivisionByZero) {
		t.Errorf("1/0 gave %v", err)
	}
	if r, err := apply("%", 1, 0); err != nil || !math.IsNaN(r) {
		t.Errorf("1%%0 gave %g, %v", r, err)
	}
	_, err := apply("&", 1, 2)
	if !errors.Is(err, InvalidOperation) {
		t.Fatalf("unknown operator gave %v", err)
	}
	var oe *OperatorError
	if !errors.As(err, &oe) || oe.Operator != "&" {
		t.Errorf("unknown operator gave cause %#v", err)
	}
}

func TestReduceUnknownOperator(t *testing.T) {
	ev := evaluator{nums: []float64{1, 2}}
	err := ev.reduce(lexToken{text: "&", kind: tokenOp, pos: 7})
	var oe *OperatorError
	if !errors.As(err, &oe) {
		t.Fatalf("want OperatorError, got %v", err)
	}
	if oe.Col != 7 {
		t.Errorf("want column 7, got %d", oe.Col)
	}
}

func TestPrecedence(t *testing.T) {
	order := [][]string{{"+", "-"}, {"*", "/", "%"}, {"^"}}
	for i, tier := range order {
		for _, a := range tier {
			for j, other := range order {
				for _, b := range other {
					want := i >= j
					if got := binop(a).appliesBefore(binop(b)); got != want {
						t.Errorf("%s before %s: want %t, got %t", a, b, want, got)
					}
				}
			}
		}
	}
}
