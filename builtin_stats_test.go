package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// statsSheet lays out a small numeric column with a label and a gap:
//
//	A1..A5: 10 20 30 40 50    C1: "label"  C2: (empty)  C3: 7
func statsSheet(t *testing.T) *Sheet {
	t.Helper()
	return newSheetWithCells(t, map[string]string{
		"A1": "10", "A2": "20", "A3": "30", "A4": "40", "A5": "50",
		"C1": "label", "C3": "7",
	})
}

func TestStats_Average(t *testing.T) {
	assert.Equal(t, 20.0, evalNum(t, "AVG(10,20,30)"))
	assert.Equal(t, 20.0, evalNum(t, "AVERAGE(10,20,30)"))
	assert.Equal(t, 0.0, evalNum(t, "AVG()"))

	s := statsSheet(t)
	assert.Equal(t, "30", s.Evaluator().Evaluate("AVG(A1:A5)").String())
}

func TestStats_CountVariants(t *testing.T) {
	s := statsSheet(t)
	e := s.Evaluator()

	// COUNT sees numbers only, COUNTA anything non-empty.
	assert.Equal(t, "1", e.Evaluate("COUNT(C1:C3)").String())
	assert.Equal(t, "2", e.Evaluate("COUNTA(C1:C3)").String())
	assert.Equal(t, "1", e.Evaluate("COUNTBLANK(C1:C3)").String())
	assert.Equal(t, "5", e.Evaluate("COUNT(A1:A5)").String())
}

func TestStats_CriteriaAggregates(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "east", "A2": "west", "A3": "east", "A4": "north", "A5": "east",
		"B1": "100", "B2": "200", "B3": "300", "B4": "400", "B5": "50",
	})
	e := s.Evaluator()

	// Bare text matches without regard to case; * and ? are wildcards.
	assert.Equal(t, "3", e.Evaluate(`COUNTIF(A1:A5,"east")`).String())
	assert.Equal(t, "3", e.Evaluate(`COUNTIF(A1:A5,"EAST")`).String())
	assert.Equal(t, "4", e.Evaluate(`COUNTIF(A1:A5,"*st")`).String())
	assert.Equal(t, "3", e.Evaluate(`COUNTIF(B1:B5,">100")`).String())
	assert.Equal(t, "1", e.Evaluate(`COUNTIF(B1:B5,200)`).String())

	// Two-argument SUMIF sums the tested range itself; the third argument
	// supplies a parallel range to draw from instead.
	assert.Equal(t, "900", e.Evaluate(`SUMIF(B1:B5,">=200")`).String())
	assert.Equal(t, "850", e.Evaluate(`SUMIF(B1:B5,"<>200")`).String())
	assert.Equal(t, "450", e.Evaluate(`SUMIF(A1:A5,"east",B1:B5)`).String())

	assert.Equal(t, "150", e.Evaluate(`AVERAGEIF(A1:A5,"east",B1:B5)`).String())
	assert.Equal(t, "#DIV/0!", e.Evaluate(`AVERAGEIF(B1:B5,">1000")`).String())

	assert.Equal(t, "#ERR!", e.Evaluate(`COUNTIF(A1:A5)`).String())
	assert.Equal(t, "#ERR!", evalStr("SUMIF(1)"))
}

func TestStats_MinMaxProduct(t *testing.T) {
	assert.Equal(t, 10.0, evalNum(t, "MIN(30,10,20)"))
	assert.Equal(t, 30.0, evalNum(t, "MAX(30,10,20)"))
	assert.Equal(t, 0.0, evalNum(t, "MIN()"))
	assert.Equal(t, 0.0, evalNum(t, "MAX()"))
	assert.Equal(t, 24.0, evalNum(t, "PRODUCT(2,3,4)"))
}

func TestStats_Dispersion(t *testing.T) {
	assert.Equal(t, 250.0, evalNum(t, "VAR(10,20,30,40,50)"))
	assert.Equal(t, 200.0, evalNum(t, "VARP(10,20,30,40,50)"))
	assert.InDelta(t, 15.8113883, evalNum(t, "STD(10,20,30,40,50)"), 1e-6)
	assert.InDelta(t, 14.1421356, evalNum(t, "STDP(10,20,30,40,50)"), 1e-6)
	assert.Equal(t, 25.0, evalNum(t, "SUMSQ(3,4)"))

	// Fewer than two samples has no sample deviation.
	assert.Equal(t, 0.0, evalNum(t, "STD(42)"))
}

func TestStats_MedianAndMode(t *testing.T) {
	assert.Equal(t, 2.0, evalNum(t, "MEDIAN(1,2,3)"))
	assert.Equal(t, 2.5, evalNum(t, "MEDIAN(4,1,2,3)"))

	assert.Equal(t, 2.0, evalNum(t, "MODE(1,2,2,3)"))
	// Ties resolve to the smallest value.
	assert.Equal(t, 1.0, evalNum(t, "MODE(2,2,1,1)"))
}

func TestStats_LargeSmallRank(t *testing.T) {
	s := statsSheet(t)
	e := s.Evaluator()

	assert.Equal(t, "40", e.Evaluate("LARGE(A1:A5,2)").String())
	assert.Equal(t, "20", e.Evaluate("SMALL(A1:A5,2)").String())
	assert.Equal(t, "#NUM!", e.Evaluate("LARGE(A1:A5,9)").String())

	// Default rank order is descending.
	assert.Equal(t, "3", e.Evaluate("RANK(30,A1:A5)").String())
	assert.Equal(t, "0", e.Evaluate("RANK(35,A1:A5)").String())
}

func TestStats_PercentileQuartile(t *testing.T) {
	assert.Equal(t, 25.0, evalNum(t, "PERCENTILE(10,20,30,40,0.5)"))
	assert.Equal(t, 10.0, evalNum(t, "PERCENTILE(10,20,30,40,0)"))
	assert.Equal(t, 40.0, evalNum(t, "PERCENTILE(10,20,30,40,1)"))
	assert.Equal(t, "#NUM!", evalStr("PERCENTILE(10,20,1.5)"))

	assert.Equal(t, 30.0, evalNum(t, "QUARTILE(10,20,30,40,50,2)"))
	assert.Equal(t, 50.0, evalNum(t, "QUARTILE(10,20,30,40,50,4)"))
	assert.Equal(t, "#NUM!", evalStr("QUARTILE(10,20,30,5)"))
}

func TestStats_SumProduct(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "1", "A2": "2", "A3": "3",
		"B1": "4", "B2": "5", "B3": "6",
	})
	e := s.Evaluator()
	// 1*4 + 2*5 + 3*6
	assert.Equal(t, "32", e.Evaluate("SUMPRODUCT(A1:A3,B1:B3)").String())
}

func TestStats_Combinatorics(t *testing.T) {
	assert.Equal(t, 20.0, evalNum(t, "PERMUT(5,2)"))
	assert.Equal(t, 10.0, evalNum(t, "COMBIN(5,2)"))
	assert.Equal(t, 1.0, evalNum(t, "COMBIN(5,0)"))
	assert.Equal(t, 0.0, evalNum(t, "COMBIN(3,5)"))
}

func TestStats_Means(t *testing.T) {
	assert.InDelta(t, 4.0, evalNum(t, "GEOMEAN(2,8)"), 1e-9)
	assert.InDelta(t, 4.8, evalNum(t, "HARMEAN(4,6)"), 1e-9)
	// Non-positive samples have no geometric mean.
	assert.Equal(t, 0.0, evalNum(t, "GEOMEAN(2,-8)"))
}

func TestStats_RandBetween(t *testing.T) {
	e := NewEvaluator(nil)
	for i := 0; i < 20; i++ {
		v := e.Evaluate("RANDBETWEEN(1,6)")
		assert.True(t, v.IsNumber())
		assert.GreaterOrEqual(t, v.Num(), 1.0)
		assert.LessOrEqual(t, v.Num(), 6.0)
		assert.Equal(t, v.Num(), float64(int(v.Num())))
	}
}
