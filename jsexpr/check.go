// Package jsexpr answers one question about a piece of text: is it a single
// valid JavaScript expression?
//
// The check is purely syntactic. Expressions are parsed with the goja
// parser and never compiled or run, so side effects in the checked text
// cannot happen.
package jsexpr

import (
	"errors"
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// ErrNotExpression is returned when the text parses as JavaScript but not as
// exactly one expression, e.g. `a); (b` which closes the wrapper early.
var ErrNotExpression = errors.New("jsexpr: not a single expression")

// Check reports whether expr is a valid JavaScript expression.
//
// The text is wrapped as the body of a function literal,
//
//	(function() {
//	return (expr);
//	})
//
// and parsed as a script. The result must be one expression statement
// holding one function whose body is exactly one return statement;
// anything else means expr escaped its parentheses.
//
// Returns:
//   - nil if expr is a valid expression
//   - a wrapped goja parser error list on a syntax error
//   - ErrNotExpression if the wrapper structure did not survive parsing
func Check(expr string) error {
	src := "(function() {\nreturn (" + expr + ");\n})"

	program, err := parser.ParseFile(nil, "", src, 0, parser.WithDisableSourceMaps)
	if err != nil {
		return fmt.Errorf("jsexpr: %w", err)
	}
	if !isWrapped(program) {
		return ErrNotExpression
	}
	return nil
}

// Valid is Check(expr) == nil.
func Valid(expr string) bool {
	return Check(expr) == nil
}

func isWrapped(program *ast.Program) bool {
	if program == nil || len(program.Body) != 1 {
		return false
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	fn, ok := stmt.Expression.(*ast.FunctionLiteral)
	if !ok || fn.Body == nil || len(fn.Body.List) != 1 {
		return false
	}
	ret, ok := fn.Body.List[0].(*ast.ReturnStatement)
	return ok && ret.Argument != nil
}
