// Package calculator implements a floating-point infix arithmetic evaluator.
//
// An expression is made of decimal numbers, the binary operators
// + - * / % and ^, and parentheses. Whitespace anywhere is ignored, so
// "2 + 3 * 4" and "2+3*4" are the same expression. Multiplication, division,
// and remainder bind tighter than addition and subtraction, and
// exponentiation binds tightest. Every operator, exponentiation included,
// groups left to right: "10-2-3" is 5 and "2^3^2" is 64.
//
// There are no variables, functions, or unary operators. "-2" is an error;
// write "0-2" instead.
//
// Evaluate classifies every failure with a Kind. Callers choose what to show
// users with MessageFor and render results with FormatResult.
package calculator
