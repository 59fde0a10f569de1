package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillValues(t *testing.T, s *Sheet, refs ...string) []string {
	t.Helper()
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		v, err := s.Value(ref)
		require.NoError(t, err)
		out = append(out, v.String())
	}
	return out
}

func TestFill_LinearWithStop(t *testing.T) {
	s := NewSheet()
	ops := NewFillOps(s)

	spec := FillSpec{Type: FillLinear, Start: 1, Step: 2, Stop: 7, HasStop: true}
	require.NoError(t, ops.Series(mustRange(t, "A1:A10"), spec, FillDown))

	assert.Equal(t, []string{"1", "3", "5", "7"}, fillValues(t, s, "A1", "A2", "A3", "A4"))
	assert.Nil(t, s.CellAt(coordOf(t, "A5")))
	assert.Equal(t, 4, s.CellCount())
}

func TestFill_LinearDescending(t *testing.T) {
	s := NewSheet()
	ops := NewFillOps(s)

	spec := FillSpec{Type: FillLinear, Start: 10, Step: -2, Stop: 5, HasStop: true}
	require.NoError(t, ops.Series(mustRange(t, "A1:A10"), spec, FillDown))

	assert.Equal(t, []string{"10", "8", "6"}, fillValues(t, s, "A1", "A2", "A3"))
	assert.Equal(t, 3, s.CellCount())
}

func TestFill_Growth(t *testing.T) {
	s := NewSheet()
	ops := NewFillOps(s)

	spec := FillSpec{Type: FillGrowth, Start: 2, Step: 3}
	require.NoError(t, ops.Series(mustRange(t, "A1:A4"), spec, FillDown))
	assert.Equal(t, []string{"2", "6", "18", "54"}, fillValues(t, s, "A1", "A2", "A3", "A4"))

	spec.Stop, spec.HasStop = 20, true
	require.NoError(t, ops.Series(mustRange(t, "C1:C10"), spec, FillDown))
	assert.Equal(t, []string{"2", "6", "18"}, fillValues(t, s, "C1", "C2", "C3"))
	assert.Nil(t, s.CellAt(coordOf(t, "C4")))
}

func TestFill_DateDaysAndWeeks(t *testing.T) {
	s := NewSheet()
	ops := NewFillOps(s)

	day := FillSpec{Type: FillDate, Start: 45306, Step: 1, DateUnit: UnitDay}
	require.NoError(t, ops.Series(mustRange(t, "A1:A3"), day, FillDown))
	assert.Equal(t, []string{"45306", "45307", "45308"}, fillValues(t, s, "A1", "A2", "A3"))

	week := FillSpec{Type: FillDate, Start: 45306, Step: 1, DateUnit: UnitWeek}
	require.NoError(t, ops.Series(mustRange(t, "B1:B3"), week, FillDown))
	assert.Equal(t, []string{"45306", "45313", "45320"}, fillValues(t, s, "B1", "B2", "B3"))
}

func TestFill_DateMonthsClampDay(t *testing.T) {
	s := NewSheet()
	ops := NewFillOps(s)

	// 31 January 2024 steps to 29 February in the leap year, then stays
	// on the 29th.
	spec := FillSpec{Type: FillDate, Start: 45322, Step: 1, DateUnit: UnitMonth}
	require.NoError(t, ops.Series(mustRange(t, "A1:A4"), spec, FillDown))

	assert.Equal(t,
		[]string{"45322", "45351", "45380", "45411"},
		fillValues(t, s, "A1", "A2", "A3", "A4"))
}

func TestFill_DateYears(t *testing.T) {
	s := NewSheet()
	ops := NewFillOps(s)

	spec := FillSpec{Type: FillDate, Start: 45366, Step: 1, DateUnit: UnitYear}
	require.NoError(t, ops.Series(mustRange(t, "A1:A3"), spec, FillDown))

	assert.Equal(t, []string{"45366", "45731", "46096"}, fillValues(t, s, "A1", "A2", "A3"))
}

func TestFill_CopyReplicatesLeadingRow(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "x",
		"B1": "y",
	})
	ops := NewFillOps(s)

	require.NoError(t, ops.Series(mustRange(t, "A1:B3"), FillSpec{Type: FillCopy}, FillDown))

	assert.Equal(t, []string{"x", "y"}, fillValues(t, s, "A2", "B2"))
	assert.Equal(t, []string{"x", "y"}, fillValues(t, s, "A3", "B3"))
}

func TestFill_AutoContinuesNumericSeed(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "10",
		"A2": "20",
	})
	ops := NewFillOps(s)

	require.NoError(t, ops.Series(mustRange(t, "A1:A5"), FillSpec{Type: FillAuto}, FillDown))

	assert.Equal(t,
		[]string{"10", "20", "30", "40", "50"},
		fillValues(t, s, "A1", "A2", "A3", "A4", "A5"))
}

func TestFill_AutoWeekdayNames(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{"A1": "Wed"})
	ops := NewFillOps(s)

	require.NoError(t, ops.Series(mustRange(t, "A1:A5"), FillSpec{Type: FillAuto}, FillDown))

	// The cycle continues from the seed and keeps its capitalization.
	assert.Equal(t,
		[]string{"Wed", "Thu", "Fri", "Sat", "Sun"},
		fillValues(t, s, "A1", "A2", "A3", "A4", "A5"))
}

func TestFill_AutoMonthNamesLowercase(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{"A1": "november"})
	ops := NewFillOps(s)

	require.NoError(t, ops.Series(mustRange(t, "A1:A4"), FillSpec{Type: FillAuto}, FillDown))

	assert.Equal(t,
		[]string{"november", "december", "january", "february"},
		fillValues(t, s, "A1", "A2", "A3", "A4"))
}

func TestFill_AutoFallsBackToCopy(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{"A1": "alpha"})
	ops := NewFillOps(s)

	require.NoError(t, ops.Series(mustRange(t, "A1:A3"), FillSpec{Type: FillAuto}, FillDown))

	assert.Equal(t, []string{"alpha", "alpha", "alpha"}, fillValues(t, s, "A1", "A2", "A3"))
}

func TestFill_Directions(t *testing.T) {
	s := NewSheet()
	ops := NewFillOps(s)

	spec := FillSpec{Type: FillLinear, Start: 1, Step: 1}
	require.NoError(t, ops.Series(mustRange(t, "A1:A3"), spec, FillUp))
	assert.Equal(t, []string{"3", "2", "1"}, fillValues(t, s, "A1", "A2", "A3"))

	require.NoError(t, ops.Series(mustRange(t, "C1:E1"), spec, FillLeft))
	assert.Equal(t, []string{"3", "2", "1"}, fillValues(t, s, "C1", "D1", "E1"))
}

func TestFill_DownAdjustsFormulas(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "1",
		"A2": "2",
		"A3": "3",
		"B1": "=A1*2",
	})
	ops := NewFillOps(s)

	require.NoError(t, ops.Down(mustRange(t, "B1:B3")))

	assert.Equal(t, "=A2*2", s.CellAt(coordOf(t, "B2")).Raw)
	assert.Equal(t, "=A3*2", s.CellAt(coordOf(t, "B3")).Raw)
	assert.Equal(t, []string{"2", "4", "6"}, fillValues(t, s, "B1", "B2", "B3"))
}

func TestFill_RightAdjustsFormulas(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "5",
		"A2": "=A1+1",
	})
	ops := NewFillOps(s)

	require.NoError(t, ops.Right(mustRange(t, "A1:C2")))

	assert.Equal(t, "=B1+1", s.CellAt(coordOf(t, "B2")).Raw)
	assert.Equal(t, "=C1+1", s.CellAt(coordOf(t, "C2")).Raw)
	assert.Equal(t, []string{"5", "5", "5"}, fillValues(t, s, "A1", "B1", "C1"))
	assert.Equal(t, []string{"6", "6", "6"}, fillValues(t, s, "A2", "B2", "C2"))
}
