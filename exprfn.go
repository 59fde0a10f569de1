package lotuscalc

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprPrograms caches compiled expressions so re-registering a function or
// sharing one expression across registries compiles only once.
var exprPrograms sync.Map // expression string → *vm.Program

// RegisterExprFunction registers a sheet function whose body is an
// expr-lang expression instead of Go code. Call arguments bind to params
// positionally; missing ones are nil. The whole argument list is also
// available as the args slice, so variadic bodies like "sum(args)" work.
//
//	RegisterExprFunction(reg, "DOUBLE", "x * 2", "x")
//	=DOUBLE(21)   → 42
//
// Runtime failures surface as #ERR!; results of unsupported types as
// #VALUE!.
func RegisterExprFunction(reg *FunctionRegistry, name, expression string, params ...string) error {
	program, err := compileExprProgram(expression)
	if err != nil {
		return fmt.Errorf("compile function %s: %w", name, err)
	}

	reg.Register(name, func(_ *CallContext, args []Value) Value {
		plain := make([]any, len(args))
		for i, v := range args {
			plain[i] = exprArg(v)
		}

		env := make(map[string]any, len(params)+1)
		for i, p := range params {
			if i < len(plain) {
				env[p] = plain[i]
			} else {
				env[p] = nil
			}
		}
		env["args"] = plain

		out, err := expr.Run(program, env)
		if err != nil {
			return NewError(ErrorErr)
		}
		return exprResult(out)
	})
	return nil
}

func compileExprProgram(expression string) (*vm.Program, error) {
	if cached, ok := exprPrograms.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	exprPrograms.Store(expression, program)
	return program, nil
}

// exprArg converts an engine value to a plain Go value for the expr VM.
// Errors pass through as their display literals so expressions can detect
// them; arrays become nested slices.
func exprArg(v Value) any {
	switch v.Kind() {
	case KindNumber:
		return v.Num()
	case KindBool:
		return v.Bool()
	case KindError:
		return v.ErrKind().Literal()
	case KindArray:
		rows := v.Rows()
		out := make([]any, len(rows))
		for i, row := range rows {
			converted := make([]any, len(row))
			for j, cell := range row {
				converted[j] = exprArg(cell)
			}
			out[i] = converted
		}
		return out
	}
	return v.Str()
}

// exprResult converts an expr VM result back to an engine value.
func exprResult(out any) Value {
	switch n := out.(type) {
	case nil:
		return Text("")
	case bool:
		return Bool(n)
	case int:
		return Number(float64(n))
	case int32:
		return Number(float64(n))
	case int64:
		return Number(float64(n))
	case uint:
		return Number(float64(n))
	case uint64:
		return Number(float64(n))
	case float32:
		return Number(float64(n))
	case float64:
		return Number(n)
	case string:
		if kind, ok := ErrorKindFromLiteral(n); ok {
			return NewError(kind)
		}
		return Text(n)
	case []any:
		row := make([]Value, len(n))
		for i, item := range n {
			row[i] = exprResult(item)
		}
		return Array([][]Value{row})
	}
	return NewError(ErrorValue)
}
