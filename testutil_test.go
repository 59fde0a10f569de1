package lotuscalc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testdataDir returns the testdata directory, creating it when absent.
func testdataDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join("testdata")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

// newSheetWithCells builds a sheet and fills it from ref -> raw contents.
func newSheetWithCells(t *testing.T, cells map[string]string) *Sheet {
	t.Helper()
	s := NewSheet()
	for ref, raw := range cells {
		require.NoError(t, s.SetCell(ref, raw))
	}
	return s
}

// evalStr evaluates a bare formula with no backing grid and renders the
// result as display text.
func evalStr(formula string) string {
	return NewEvaluator(nil).Evaluate(formula).String()
}

// evalNum evaluates a formula expected to produce a number.
func evalNum(t *testing.T, formula string) float64 {
	t.Helper()
	v := NewEvaluator(nil).Evaluate(formula)
	require.True(t, v.IsNumber(), "want a number from %s, got %s", formula, v.String())
	return v.Num()
}

// sheetValue evaluates the cell at ref and fails on reference errors.
func sheetValue(t *testing.T, s *Sheet, ref string) Value {
	t.Helper()
	v, err := s.Value(ref)
	require.NoError(t, err)
	return v
}

// coordOf parses a reference that the test knows is valid.
func coordOf(t *testing.T, ref string) Coord {
	t.Helper()
	c, err := ParseCoord(ref)
	require.NoError(t, err)
	return c
}
