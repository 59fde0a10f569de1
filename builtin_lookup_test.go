package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// lookupSheet lays out a product table plus a descending price column:
//
//	A1: 1  B1: Apple     D1: 50
//	A2: 2  B2: Banana    D2: 40
//	A3: 3  B3: Cherry    D3: 30
func lookupSheet(t *testing.T) *Sheet {
	t.Helper()
	return newSheetWithCells(t, map[string]string{
		"A1": "1", "B1": "Apple",
		"A2": "2", "B2": "Banana",
		"A3": "3", "B3": "Cherry",
		"D1": "50", "D2": "40", "D3": "30",
	})
}

func TestLookup_VlookupExact(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	assert.Equal(t, "Banana", e.Evaluate("VLOOKUP(2,A1:B3,2,0)").String())
	assert.Equal(t, "#N/A", e.Evaluate("VLOOKUP(9,A1:B3,2,0)").String())
}

func TestLookup_VlookupApproximate(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	// The default mode takes the last row at or below the lookup value.
	assert.Equal(t, "Banana", e.Evaluate("VLOOKUP(2.5,A1:B3,2)").String())
	assert.Equal(t, "Cherry", e.Evaluate("VLOOKUP(99,A1:B3,2)").String())
	assert.Equal(t, "#N/A", e.Evaluate("VLOOKUP(0.5,A1:B3,2)").String())
}

func TestLookup_VlookupUnsortedTable(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "3", "B1": "Cherry",
		"A2": "1", "B2": "Apple",
		"A3": "2", "B3": "Banana",
	})
	e := s.Evaluator()
	// Approximate matching demands a sorted first column.
	assert.Equal(t, "#N/A", e.Evaluate("VLOOKUP(2,A1:B3,2)").String())
	// Exact matching does not care.
	assert.Equal(t, "Apple", e.Evaluate("VLOOKUP(1,A1:B3,2,0)").String())
}

func TestLookup_VlookupErrors(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	assert.Equal(t, "#REF!", e.Evaluate("VLOOKUP(1,A1:B3,5,0)").String())
	assert.Equal(t, "#ERR!", e.Evaluate("VLOOKUP(1,A1:B3)").String())
}

func TestLookup_VlookupTextCaseInsensitive(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "apple", "B1": "1",
		"A2": "banana", "B2": "2",
	})
	e := s.Evaluator()
	assert.Equal(t, "2", e.Evaluate(`VLOOKUP("BANANA",A1:B2,2,0)`).String())
}

func TestLookup_Hlookup(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "1", "B1": "2", "C1": "3",
		"A2": "one", "B2": "two", "C2": "three",
	})
	e := s.Evaluator()
	assert.Equal(t, "two", e.Evaluate("HLOOKUP(2,A1:C2,2,0)").String())
	assert.Equal(t, "two", e.Evaluate("HLOOKUP(2.9,A1:C2,2)").String())
	assert.Equal(t, "#REF!", e.Evaluate("HLOOKUP(2,A1:C2,9,0)").String())
}

func TestLookup_Lookup(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	// Single-vector form returns the found value itself.
	assert.Equal(t, "2", e.Evaluate("LOOKUP(2.5,A1:A3)").String())
	// Two-vector form maps into the result vector.
	assert.Equal(t, "Banana", e.Evaluate("LOOKUP(2.5,A1:A3,B1:B3)").String())
}

func TestLookup_Match(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "10", "A2": "20", "A3": "30", "A4": "40", "A5": "50",
	})
	e := s.Evaluator()

	assert.Equal(t, "3", e.Evaluate("MATCH(30,A1:A5,0)").String())
	assert.Equal(t, "0", e.Evaluate("MATCH(35,A1:A5,0)").String())
	// Type 1 walks while values stay at or below the target.
	assert.Equal(t, "3", e.Evaluate("MATCH(35,A1:A5,1)").String())
	assert.Equal(t, "5", e.Evaluate("MATCH(99,A1:A5,1)").String())
	assert.Equal(t, "0", e.Evaluate("MATCH(5,A1:A5,1)").String())
}

func TestLookup_MatchDescending(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	// Type -1 walks while values stay at or above the target.
	assert.Equal(t, "2", e.Evaluate("MATCH(35,D1:D3,-1)").String())
	assert.Equal(t, "3", e.Evaluate("MATCH(10,D1:D3,-1)").String())
}

func TestLookup_Index(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	assert.Equal(t, "Banana", e.Evaluate("INDEX(A1:B3,2,2)").String())
	assert.Equal(t, "3", e.Evaluate("INDEX(A1:B3,3,1)").String())
	// Row-only form returns the whole row.
	assert.Equal(t, "{2,Banana}", e.Evaluate("INDEX(A1:B3,2)").String())
	assert.Equal(t, "#REF!", e.Evaluate("INDEX(A1:B3,9,1)").String())
	assert.Equal(t, "#REF!", e.Evaluate("INDEX(A1:B3,2,9)").String())
}

func TestLookup_OffsetUnsupported(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	assert.Equal(t, "#REF!", e.Evaluate("OFFSET(A1,1,1)").String())
}

func TestLookup_Indirect(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	assert.Equal(t, "Banana", e.Evaluate(`INDIRECT("B2")`).String())
	assert.Equal(t, "Banana", e.Evaluate(`INDIRECT("$b$2")`).String())
	assert.Equal(t, "6", e.Evaluate(`SUM(INDIRECT("A1:A3"))`).String())
	assert.Equal(t, "#REF!", e.Evaluate(`INDIRECT("nonsense")`).String())
}

func TestLookup_RowColumn(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"C5": "=ROW()",
		"D2": "=COLUMN()",
	})
	assert.Equal(t, "5", sheetValue(t, s, "C5").String())
	assert.Equal(t, "4", sheetValue(t, s, "D2").String())

	// Outside a cell there is no position to report.
	assert.Equal(t, "1", evalStr("ROW()"))
}

func TestLookup_Address(t *testing.T) {
	assert.Equal(t, "$C$2", evalStr("ADDRESS(2,3)"))
	assert.Equal(t, "C$2", evalStr("ADDRESS(2,3,2)"))
	assert.Equal(t, "$C2", evalStr("ADDRESS(2,3,3)"))
	assert.Equal(t, "C2", evalStr("ADDRESS(2,3,4)"))
}

func TestLookup_RowsColsTranspose(t *testing.T) {
	e := lookupSheet(t).Evaluator()
	assert.Equal(t, "3", e.Evaluate("ROWS(A1:B3)").String())
	assert.Equal(t, "2", e.Evaluate("COLS(A1:B3)").String())
	assert.Equal(t, "1", e.Evaluate("ROWS(5)").String())

	assert.Equal(t, "{50,40,30}", e.Evaluate("TRANSPOSE(D1:D3)").String())
	assert.Equal(t, "{7}", e.Evaluate("TRANSPOSE(7)").String())
}
