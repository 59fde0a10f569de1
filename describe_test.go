package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheet_Describe(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "1",
		"A2": "2",
		"B1": "=A1+A2",
	})
	_, err := s.Names().Define("totals", "B1")
	require.NoError(t, err)

	out := s.Describe()
	assert.Contains(t, out, "Sheet: <unsaved> (modified)\n")
	assert.Contains(t, out, "Size: 65536 rows x 256 cols, 3 cells in A1:B2\n")
	assert.Contains(t, out, "Recalculation: Automatic, Natural order\n")
	assert.Contains(t, out, "Named ranges:\n")
	assert.Contains(t, out, "TOTALS")
	assert.Contains(t, out, "Formula cells:\n  B1: =A1+A2 <- A1 A2\n")
	assert.NotContains(t, out, "Circular references")
	assert.NotContains(t, out, "recalc pending")
}

func TestSheet_DescribePendingRecalc(t *testing.T) {
	s := NewSheet(WithRecalcMode(RecalcManual))
	require.NoError(t, s.SetCell("A1", "=B1"))

	assert.Contains(t, s.Describe(), "Recalculation: Manual, Natural order (recalc pending)\n")
}

func TestSheet_DescribeCircular(t *testing.T) {
	s := NewSheet()
	require.NoError(t, s.SetCell("A1", "=A1+1"))

	assert.Contains(t, s.Describe(), "Circular references: A1\n")
}

func TestSheet_DescribeCell(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "=B1*2",
		"B1": "21",
	})
	require.NoError(t, s.SetFormat("A1", "F1"))
	s.Protection().ProtectCell(coordOf(t, "B1"))

	out, err := s.DescribeCell("A1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cell A1\n")
	assert.Contains(t, out, "  Contents: =B1*2\n")
	assert.Contains(t, out, "  Value: 42\n")
	assert.Contains(t, out, "  Display: \"42.0\"\n")
	assert.Contains(t, out, "  Format: F1\n")
	assert.Contains(t, out, "  Depends on: B1\n")
	assert.NotContains(t, out, "Protected")

	out, err = s.DescribeCell("B1")
	require.NoError(t, err)
	assert.Contains(t, out, "  Contents: 21\n")
	assert.NotContains(t, out, "Value:")
	assert.Contains(t, out, "  Format: G\n")
	assert.Contains(t, out, "  Referenced by: A1\n")
	assert.Contains(t, out, "  Protected: yes\n")
}

func TestSheet_DescribeCellEmpty(t *testing.T) {
	s := NewSheet()

	out, err := s.DescribeCell("C5")
	require.NoError(t, err)
	assert.Contains(t, out, "Cell C5\n")
	assert.Contains(t, out, "  Contents: (empty)\n")
	assert.Contains(t, out, "  Format: G\n")
}

func TestSheet_DescribeCellErrors(t *testing.T) {
	s := NewSheet(WithMaxRows(10), WithMaxCols(10))

	_, err := s.DescribeCell("not-a-ref")
	assert.Error(t, err)

	_, err = s.DescribeCell("Z99")
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.EqualError(t, err, "describe Z99: cell position out of range")
}
