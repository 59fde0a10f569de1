package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// payrollSheet lays out a table plus a criteria block:
//
//	A1: Name   B1: Dept    C1: Salary
//	A2: Alice  B2: Eng     C2: 5000
//	A3: Bob    B3: Sales   C3: 4000
//	A4: Carol  B4: Eng     C4: 6000
//	A5: Dave   B5: Sales   C5: 4500
func payrollSheet(t *testing.T, criteria map[string]string) *Sheet {
	t.Helper()
	cells := map[string]string{
		"A1": "Name", "B1": "Dept", "C1": "Salary",
		"A2": "Alice", "B2": "Eng", "C2": "5000",
		"A3": "Bob", "B3": "Sales", "C3": "4000",
		"A4": "Carol", "B4": "Eng", "C4": "6000",
		"A5": "Dave", "B5": "Sales", "C5": "4500",
	}
	for ref, raw := range criteria {
		cells[ref] = raw
	}
	return newSheetWithCells(t, cells)
}

func TestDatabase_DsumByDept(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Dept", "E2": "Eng"})
	e := s.Evaluator()

	assert.Equal(t, "11000", e.Evaluate(`DSUM(A1:C5,"Salary",E1:E2)`).String())
	// The field can be named or given as a 1-based position.
	assert.Equal(t, "11000", e.Evaluate("DSUM(A1:C5,3,E1:E2)").String())
}

func TestDatabase_NumericCriteria(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Salary", "E2": ">4500"})
	e := s.Evaluator()
	assert.Equal(t, "11000", e.Evaluate(`DSUM(A1:C5,"Salary",E1:E2)`).String())

	s = payrollSheet(t, map[string]string{"E1": "Salary", "E2": "<=4500"})
	e = s.Evaluator()
	assert.Equal(t, "8500", e.Evaluate(`DSUM(A1:C5,"Salary",E1:E2)`).String())
}

func TestDatabase_NotEqualCriteria(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Dept", "E2": "<>Eng"})
	e := s.Evaluator()
	assert.Equal(t, "8500", e.Evaluate(`DSUM(A1:C5,"Salary",E1:E2)`).String())
}

func TestDatabase_WildcardCriteria(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Name", "E2": "*o*"})
	e := s.Evaluator()
	// Bob and Carol carry an "o".
	assert.Equal(t, "10000", e.Evaluate(`DSUM(A1:C5,"Salary",E1:E2)`).String())
}

func TestDatabase_CriteriaRowsAreAlternatives(t *testing.T) {
	// Two criteria rows: Eng, or Salary below 4200.
	s := payrollSheet(t, map[string]string{
		"E1": "Dept", "F1": "Salary",
		"E2": "Eng",
		"F3": "<4200",
	})
	e := s.Evaluator()
	assert.Equal(t, "15000", e.Evaluate(`DSUM(A1:C5,"Salary",E1:F3)`).String())
}

func TestDatabase_CriteriaCellsCombine(t *testing.T) {
	// One row: Eng and Salary above 5000.
	s := payrollSheet(t, map[string]string{
		"E1": "Dept", "F1": "Salary",
		"E2": "Eng", "F2": ">5000",
	})
	e := s.Evaluator()
	assert.Equal(t, "6000", e.Evaluate(`DSUM(A1:C5,"Salary",E1:F2)`).String())
}

func TestDatabase_EmptyCriteriaMatchesAll(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Dept"})
	e := s.Evaluator()
	assert.Equal(t, "19500", e.Evaluate(`DSUM(A1:C5,"Salary",E1:E2)`).String())
}

func TestDatabase_Aggregates(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Dept", "E2": "Eng"})
	e := s.Evaluator()

	assert.Equal(t, "5500", e.Evaluate(`DAVG(A1:C5,"Salary",E1:E2)`).String())
	assert.Equal(t, "5000", e.Evaluate(`DMIN(A1:C5,"Salary",E1:E2)`).String())
	assert.Equal(t, "6000", e.Evaluate(`DMAX(A1:C5,"Salary",E1:E2)`).String())
	assert.Equal(t, "2", e.Evaluate(`DCOUNT(A1:C5,"Salary",E1:E2)`).String())
	// Names are text, so DCOUNT sees none of them; DCOUNTA does.
	assert.Equal(t, "0", e.Evaluate(`DCOUNT(A1:C5,"Name",E1:E2)`).String())
	assert.Equal(t, "2", e.Evaluate(`DCOUNTA(A1:C5,"Name",E1:E2)`).String())
}

func TestDatabase_Dispersion(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Dept", "E2": "Eng"})
	e := s.Evaluator()

	assert.Equal(t, "500000", e.Evaluate(`DVAR(A1:C5,"Salary",E1:E2)`).String())
	assert.Equal(t, "250000", e.Evaluate(`DVARP(A1:C5,"Salary",E1:E2)`).String())
	assert.InDelta(t, 707.10678, e.Evaluate(`DSTD(A1:C5,"Salary",E1:E2)`).Num(), 1e-4)
	assert.Equal(t, "500", e.Evaluate(`DSTDP(A1:C5,"Salary",E1:E2)`).String())
}

func TestDatabase_Dget(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Name", "E2": "Alice"})
	e := s.Evaluator()
	assert.Equal(t, "5000", e.Evaluate(`DGET(A1:C5,"Salary",E1:E2)`).String())

	// No match and multiple matches are distinct errors.
	s = payrollSheet(t, map[string]string{"E1": "Name", "E2": "Nobody"})
	assert.Equal(t, "#VALUE!", s.Evaluator().Evaluate(`DGET(A1:C5,"Salary",E1:E2)`).String())

	s = payrollSheet(t, map[string]string{"E1": "Dept", "E2": "Eng"})
	assert.Equal(t, "#NUM!", s.Evaluator().Evaluate(`DGET(A1:C5,"Salary",E1:E2)`).String())
}

func TestDatabase_UnknownField(t *testing.T) {
	s := payrollSheet(t, map[string]string{"E1": "Dept", "E2": "Eng"})
	e := s.Evaluator()
	// A field the table does not carry matches nothing.
	assert.Equal(t, "0", e.Evaluate(`DSUM(A1:C5,"Bonus",E1:E2)`).String())
	assert.Equal(t, "#VALUE!", e.Evaluate(`DGET(A1:C5,"Bonus",E1:E2)`).String())
}
