package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Arithmetic(t *testing.T) {
	cases := map[string]string{
		"2+3":       "5",
		"2+3*4":     "14",
		"(2+3)*4":   "20",
		"10-4-3":    "3",
		"10/4":      "2.5",
		"2^10":      "1024",
		"2^3^2":     "64", // exponentiation associates left
		"-5+10":     "5",
		"-(2+3)":    "-5",
		"+7":        "7",
		"1.5e3/10":  "150",
		"":          "",
	}
	for formula, want := range cases {
		assert.Equal(t, want, evalStr(formula), "formula %q", formula)
	}
}

func TestEvaluate_Modulo(t *testing.T) {
	// The remainder takes the sign of the divisor.
	assert.Equal(t, "1", evalStr("7%3"))
	assert.Equal(t, "2", evalStr("-10%3"))
	assert.Equal(t, "0", evalStr("9%3"))
	assert.Equal(t, "#DIV/0!", evalStr("5%0"))
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	assert.Equal(t, "#DIV/0!", evalStr("10/0"))
	assert.Equal(t, "#DIV/0!", evalStr("10/(2-2)"))
}

func TestEvaluate_TextConcatenation(t *testing.T) {
	// "+" joins two text operands; it never coerces text to a number.
	assert.Equal(t, "abcdef", evalStr(`"abc"+"def"`))
	assert.Equal(t, "#ERR!", evalStr(`5+"x"`))
	assert.Equal(t, "#ERR!", evalStr(`"x"*2`))
}

func TestEvaluate_Comparisons(t *testing.T) {
	cases := map[string]string{
		"2=2":       "TRUE",
		"2=3":       "FALSE",
		"2<>3":      "TRUE",
		"2<3":       "TRUE",
		"3<=3":      "TRUE",
		"4>=5":      "FALSE",
		`"a"<"b"`:   "TRUE",
		`"a"="A"`:   "FALSE", // text comparison is case-sensitive
		"2+3*4=14":  "TRUE",
	}
	for formula, want := range cases {
		assert.Equal(t, want, evalStr(formula), "formula %q", formula)
	}
}

func TestEvaluate_MixedTypeComparison(t *testing.T) {
	// Equality across types answers, ordering across types does not.
	assert.Equal(t, "FALSE", evalStr(`1="a"`))
	assert.Equal(t, "TRUE", evalStr(`1<>"a"`))
	assert.Equal(t, "#ERR!", evalStr(`1<"a"`))
}

func TestEvaluate_ErrorPropagation(t *testing.T) {
	assert.Equal(t, "#DIV/0!", evalStr("1/0+5"))
	assert.Equal(t, "#DIV/0!", evalStr("5+1/0"))
	// The left error wins when both sides carry one.
	assert.Equal(t, "#DIV/0!", evalStr("1/0+NA()"))
}

func TestEvaluate_UnknownFunction(t *testing.T) {
	assert.Equal(t, "#NAME?", evalStr("NOSUCHFN(1,2)"))
}

func TestEvaluate_MissingArguments(t *testing.T) {
	// Empty argument slots collapse, so SUM(1,,2) sums two numbers.
	assert.Equal(t, "3", evalStr("SUM(1,,2)"))
}

func TestEvaluate_UnmatchedParens(t *testing.T) {
	// A missing closing paren degrades instead of failing.
	assert.Equal(t, "3", evalStr("(1+2"))
	assert.Equal(t, "6", evalStr("SUM(1,2,3"))
}

func TestEvaluate_LeadingMarkerNotStripped(t *testing.T) {
	// Evaluate takes the formula body; the sheet strips "=" before
	// handing it over.
	e := NewEvaluator(nil)
	v := e.Evaluate("1+1")
	assert.Equal(t, "2", v.String())
}

func TestEvaluate_DepthLimit(t *testing.T) {
	e := NewEvaluator(nil)
	e.MaxDepth = 10

	assert.Equal(t, "2", e.Evaluate("1+1").String())
	assert.Equal(t, "#REF!", e.Evaluate("((((((((((1))))))))))").String())
}

func TestEvaluate_CellReferencesNeedGrid(t *testing.T) {
	// Without a grid every reference is broken.
	assert.Equal(t, "#REF!", evalStr("A1"))
	assert.Equal(t, "#REF!", evalStr("A1+1"))
}

func TestEvaluate_SheetReferences(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "10",
		"A2": "20",
		"A3": "30",
		"B1": "=A1+A2",
		"B2": "=SUM(A1:A3)",
		"B3": "=SUM($A$1:$A$3)",
	})

	assert.Equal(t, "30", sheetValue(t, s, "B1").String())
	assert.Equal(t, "60", sheetValue(t, s, "B2").String())
	assert.Equal(t, "60", sheetValue(t, s, "B3").String())
}

func TestEvaluate_NamedRanges(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "10",
		"A2": "20",
	})
	_, err := s.Names().Define("DATA", "A1:A2")
	require.NoError(t, err)
	require.NoError(t, s.SetCell("C1", "=SUM(DATA)"))

	assert.Equal(t, "30", sheetValue(t, s, "C1").String())
}

func TestEvaluate_WhitespaceOnly(t *testing.T) {
	assert.Equal(t, "", evalStr("   "))
}

func TestEvaluate_BooleanArithmetic(t *testing.T) {
	// Booleans coerce to 1/0 under arithmetic.
	assert.Equal(t, "3", evalStr("TRUE()+2"))
	assert.Equal(t, "-1", evalStr("-TRUE()"))
	assert.Equal(t, "0", evalStr("-FALSE()"))
}

func TestEvaluate_ComparisonOnBooleans(t *testing.T) {
	assert.Equal(t, "TRUE", evalStr("TRUE()=TRUE()"))
	assert.Equal(t, "TRUE", evalStr("TRUE()>FALSE()"))
}

func TestEvaluator_CustomRegistry(t *testing.T) {
	reg := NewFunctionRegistry()
	reg.Register("TWICE", func(_ *CallContext, args []Value) Value {
		if len(args) < 1 {
			return NewError(ErrorErr)
		}
		return Number(toNumber(args[0]) * 2)
	})

	e := NewEvaluator(nil)
	e.Funcs = reg
	assert.Equal(t, "42", e.Evaluate("TWICE(21)").String())
	// The custom registry replaces the default set entirely.
	assert.Equal(t, "#NAME?", e.Evaluate("SUM(1,2)").String())
}

func TestEvaluate_FunctionPanicRecovered(t *testing.T) {
	reg := DefaultRegistry()
	reg.Register("BOOM", func(_ *CallContext, _ []Value) Value {
		panic("exploded")
	})
	e := NewEvaluator(nil)
	e.Funcs = reg
	assert.Equal(t, "#ERR!", e.Evaluate("BOOM()").String())
	assert.Equal(t, "#ERR!", e.Evaluate("1+BOOM()").String())
}
