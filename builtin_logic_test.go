package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogic_If(t *testing.T) {
	assert.Equal(t, "yes", evalStr(`IF(TRUE(),"yes","no")`))
	assert.Equal(t, "no", evalStr(`IF(FALSE(),"yes","no")`))
	// A missing else-branch yields empty text.
	assert.Equal(t, "", evalStr(`IF(FALSE(),"yes")`))

	// Numeric conditions: zero is false, anything else true.
	assert.Equal(t, "1", evalStr("IF(2,1,0)"))
	assert.Equal(t, "0", evalStr("IF(0,1,0)"))
}

func TestLogic_AndOrNotXor(t *testing.T) {
	assert.Equal(t, "TRUE", evalStr("AND(1,2,3)"))
	assert.Equal(t, "FALSE", evalStr("AND(1,0)"))
	assert.Equal(t, "TRUE", evalStr("OR(0,0,1)"))
	assert.Equal(t, "FALSE", evalStr("OR(0,0)"))
	assert.Equal(t, "TRUE", evalStr("NOT(0)"))
	assert.Equal(t, "FALSE", evalStr("NOT(1)"))
	assert.Equal(t, "TRUE", evalStr("XOR(1,1,1)"))
	assert.Equal(t, "FALSE", evalStr("XOR(1,1)"))
}

func TestLogic_AndOverRange(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "1", "A2": "2", "A3": "0",
	})
	e := s.Evaluator()
	assert.Equal(t, "FALSE", e.Evaluate("AND(A1:A3)").String())
	assert.Equal(t, "TRUE", e.Evaluate("OR(A1:A3)").String())
}

func TestLogic_ErrorPredicates(t *testing.T) {
	assert.Equal(t, "TRUE", evalStr("ISERR(1/0)"))
	// ISERR ignores #N/A, ISERROR does not.
	assert.Equal(t, "FALSE", evalStr("ISERR(NA())"))
	assert.Equal(t, "TRUE", evalStr("ISERROR(NA())"))
	assert.Equal(t, "TRUE", evalStr("ISERROR(1/0)"))
	assert.Equal(t, "FALSE", evalStr("ISERROR(5)"))
	assert.Equal(t, "TRUE", evalStr("ISNA(NA())"))
	assert.Equal(t, "FALSE", evalStr("ISNA(1/0)"))
}

func TestLogic_ErrorConstructors(t *testing.T) {
	assert.Equal(t, "#N/A", evalStr("NA()"))
	assert.Equal(t, "#ERR!", evalStr("ERR()"))
}

func TestLogic_TypePredicates(t *testing.T) {
	assert.Equal(t, "TRUE", evalStr("ISNUMBER(5)"))
	assert.Equal(t, "TRUE", evalStr(`ISNUMBER("5")`))
	assert.Equal(t, "FALSE", evalStr(`ISNUMBER("abc")`))
	assert.Equal(t, "FALSE", evalStr("ISNUMBER(TRUE())"))

	assert.Equal(t, "TRUE", evalStr(`ISSTRING("abc")`))
	assert.Equal(t, "FALSE", evalStr(`ISSTRING("5")`))
	assert.Equal(t, "FALSE", evalStr("ISSTRING(5)"))

	assert.Equal(t, "TRUE", evalStr(`ISBLANK("")`))
	assert.Equal(t, "FALSE", evalStr(`ISBLANK("x")`))

	assert.Equal(t, "TRUE", evalStr("ISLOGICAL(TRUE())"))
	assert.Equal(t, "FALSE", evalStr("ISLOGICAL(1)"))

	assert.Equal(t, "FALSE", evalStr("ISREF(5)"))
}

func TestLogic_Parity(t *testing.T) {
	assert.Equal(t, "TRUE", evalStr("ISEVEN(4)"))
	assert.Equal(t, "FALSE", evalStr("ISEVEN(3)"))
	assert.Equal(t, "TRUE", evalStr("ISODD(3)"))
	assert.Equal(t, "FALSE", evalStr("ISODD(4)"))
}

func TestLogic_IfErrorIfNa(t *testing.T) {
	assert.Equal(t, "42", evalStr("IFERROR(1/0,42)"))
	assert.Equal(t, "5", evalStr("IFERROR(5,42)"))
	assert.Equal(t, "7", evalStr("IFNA(NA(),7)"))
	// IFNA only catches #N/A; other errors pass through.
	assert.Equal(t, "#DIV/0!", evalStr("IFNA(1/0,7)"))
}

func TestLogic_Switch(t *testing.T) {
	assert.Equal(t, "two", evalStr(`SWITCH(2,1,"one",2,"two","other")`))
	assert.Equal(t, "other", evalStr(`SWITCH(9,1,"one",2,"two","other")`))
	assert.Equal(t, "b", evalStr(`SWITCH("B","a","x","B","b")`))
}

func TestLogic_Choose(t *testing.T) {
	assert.Equal(t, "B", evalStr(`CHOOSE(2,"A","B","C")`))
	assert.Equal(t, "A", evalStr(`CHOOSE(1,"A","B","C")`))
	assert.Equal(t, "#N/A", evalStr(`CHOOSE(5,"A","B")`))
	assert.Equal(t, "#N/A", evalStr(`CHOOSE(0,"A","B")`))
}
