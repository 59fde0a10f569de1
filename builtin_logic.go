package lotuscalc

import (
	"strconv"
	"strings"
)

// logicalFunctions returns the conditional and type-test builtins.
func logicalFunctions() map[string]Function {
	return map[string]Function{
		"IF":    logicalIf,
		"TRUE":  logicalTrue,
		"FALSE": logicalFalse,
		"AND":   logicalAnd,
		"OR":    logicalOr,
		"NOT":   logicalNot,
		"XOR":   logicalXor,

		"ISERR":   logicalIsErr,
		"ISERROR": logicalIsError,
		"ISNA":    logicalIsNA,
		"NA":      logicalNA,
		"ERR":     logicalErrFn,

		"ISNUMBER":  logicalIsNumber,
		"ISSTRING":  logicalIsString,
		"ISTEXT":    logicalIsString,
		"ISBLANK":   logicalIsBlank,
		"ISLOGICAL": logicalIsLogical,
		"ISEVEN":    logicalIsEven,
		"ISODD":     logicalIsOdd,
		"ISREF":     logicalIsRef,

		"IFERROR": logicalIfError,
		"IFNA":    logicalIfNA,
		"SWITCH":  logicalSwitch,
		"CHOOSE":  logicalChoose,
	}
}

// toBool reads a value as a condition. Numbers are true when non-zero, the
// words TRUE and FALSE read as themselves, numeric text compares against
// zero, and any other non-empty text is true. Error values count as
// non-empty text.
func toBool(v Value) bool {
	switch v.Kind() {
	case KindBool:
		return v.Bool()
	case KindNumber:
		return v.Num() != 0
	case KindText:
		s := v.Str()
		switch strings.ToUpper(s) {
		case "TRUE":
			return true
		case "FALSE":
			return false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n != 0
		}
		return s != ""
	case KindError:
		return true
	}
	return false
}

// isErrorLike reports whether a value is an error, counting text that
// merely starts with "#" the same as a true error value.
func isErrorLike(v Value) bool {
	if v.IsError() {
		return true
	}
	return v.IsText() && strings.HasPrefix(v.Str(), "#")
}

// valueEquals is the loose equality used by SWITCH and CHOOSE-style
// matching: numbers and booleans compare numerically, text compares
// case-sensitively, errors compare by literal.
func valueEquals(a, b Value) bool {
	an, aok := numericOperand(a)
	bn, bok := numericOperand(b)
	if aok && bok {
		return an == bn
	}
	if a.IsText() && b.IsText() {
		return a.Str() == b.Str()
	}
	if a.IsError() || b.IsError() {
		return errorText(a) == errorText(b)
	}
	return false
}

func errorText(v Value) string {
	if v.IsError() {
		return v.ErrKind().Literal()
	}
	if v.IsText() {
		return v.Str()
	}
	return ""
}

func logicalIf(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	if toBool(args[0]) {
		return args[1]
	}
	return argOr(args, 2, Text(""))
}

func logicalTrue(_ *CallContext, _ []Value) Value {
	return Bool(true)
}

func logicalFalse(_ *CallContext, _ []Value) Value {
	return Bool(false)
}

func logicalAnd(_ *CallContext, args []Value) Value {
	values := flatten(args)
	for _, v := range values {
		if !toBool(v) {
			return Bool(false)
		}
	}
	return Bool(true)
}

func logicalOr(_ *CallContext, args []Value) Value {
	for _, v := range flatten(args) {
		if toBool(v) {
			return Bool(true)
		}
	}
	return Bool(false)
}

func logicalNot(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Bool(!toBool(args[0]))
}

// logicalXor is true when an odd number of arguments are true.
func logicalXor(_ *CallContext, args []Value) Value {
	count := 0
	for _, v := range flatten(args) {
		if toBool(v) {
			count++
		}
	}
	return Bool(count%2 == 1)
}

// logicalIsErr matches every error except #N/A.
func logicalIsErr(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	if !isErrorLike(v) {
		return Bool(false)
	}
	return Bool(errorText(v) != ErrorNA.Literal())
}

func logicalIsError(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Bool(isErrorLike(args[0]))
}

func logicalIsNA(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	return Bool(isErrorLike(v) && errorText(v) == ErrorNA.Literal())
}

func logicalNA(_ *CallContext, _ []Value) Value {
	return NewError(ErrorNA)
}

func logicalErrFn(_ *CallContext, _ []Value) Value {
	return NewError(ErrorErr)
}

// logicalIsNumber is true for numbers and numeric text, never for booleans.
func logicalIsNumber(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	switch v.Kind() {
	case KindNumber:
		return Bool(true)
	case KindText:
		_, err := strconv.ParseFloat(strings.ReplaceAll(v.Str(), ",", ""), 64)
		return Bool(err == nil)
	}
	return Bool(false)
}

// logicalIsString is true for text that is neither an error literal nor a
// number in text form.
func logicalIsString(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	if !v.IsText() {
		return Bool(false)
	}
	s := v.Str()
	if strings.HasPrefix(s, "#") {
		return Bool(false)
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return Bool(false)
	}
	return Bool(true)
}

func logicalIsBlank(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Bool(args[0].IsEmpty())
}

func logicalIsLogical(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Bool(args[0].IsBool())
}

func parityOf(v Value) (int, bool) {
	switch v.Kind() {
	case KindNumber:
		return int(v.Num()), true
	case KindBool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case KindText:
		n, err := strconv.ParseFloat(v.Str(), 64)
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func logicalIsEven(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n, ok := parityOf(args[0])
	return Bool(ok && n%2 == 0)
}

func logicalIsOdd(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n, ok := parityOf(args[0])
	return Bool(ok && n%2 != 0)
}

// logicalIsRef is always false; references are resolved to values before a
// function ever sees them.
func logicalIsRef(_ *CallContext, _ []Value) Value {
	return Bool(false)
}

func logicalIfError(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	if isErrorLike(args[0]) {
		return args[1]
	}
	return args[0]
}

func logicalIfNA(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	v := args[0]
	if isErrorLike(v) && errorText(v) == ErrorNA.Literal() {
		return args[1]
	}
	return v
}

// logicalSwitch matches an expression against value/result pairs, with an
// optional trailing default when the pair count is odd.
func logicalSwitch(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	expr := args[0]
	pairs := args[1:]

	fallback := Value(Text(""))
	if len(pairs)%2 == 1 {
		fallback = pairs[len(pairs)-1]
		pairs = pairs[:len(pairs)-1]
	}

	for i := 0; i+1 < len(pairs); i += 2 {
		if valueEquals(expr, pairs[i]) {
			return pairs[i+1]
		}
	}
	return fallback
}

// logicalChoose selects the 1-based index from the remaining arguments,
// #N/A when the index is out of range or not numeric.
func logicalChoose(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n, ok := parityOf(args[0])
	if !ok {
		return NewError(ErrorNA)
	}
	values := args[1:]
	if n >= 1 && n <= len(values) {
		return values[n-1]
	}
	return NewError(ErrorNA)
}
