package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustForCopy_RelativeShift(t *testing.T) {
	tests := []struct {
		formula            string
		rowDelta, colDelta int
		want               string
	}{
		{"A1+B2", 1, 1, "A2+C3"},
		{"A1*2", 3, 0, "A4*2"},
		{"SUM(B1:B3)", 0, 2, "SUM(D1:D3)"},
		{"a1+b2", 0, 0, "A1+B2"},
	}
	for _, tt := range tests {
		got := AdjustForCopy(tt.formula, tt.rowDelta, tt.colDelta, MaxRows-1, MaxCols-1)
		assert.Equal(t, tt.want, got, tt.formula)
	}
}

func TestAdjustForCopy_AbsoluteAnchors(t *testing.T) {
	got := AdjustForCopy("$A$1+A$1+$A1", 2, 3, MaxRows-1, MaxCols-1)
	assert.Equal(t, "$A$1+D$1+$A3", got)
}

func TestAdjustForCopy_ClampsToSheet(t *testing.T) {
	// Shifting off the top-left corner pins the reference at A1.
	assert.Equal(t, "A1", AdjustForCopy("A1", -5, -5, MaxRows-1, MaxCols-1))

	// Shifting past the bottom edge pins it at the last row.
	assert.Equal(t, "A10", AdjustForCopy("A1", 100, 0, 9, MaxCols-1))
}

func TestAdjustForCopy_LeavesNonReferencesAlone(t *testing.T) {
	got := AdjustForCopy(`IF(A1>0,"A1 up","down")`, 1, 0, MaxRows-1, MaxCols-1)
	assert.Equal(t, `IF(A2>0,"A1 up","down")`, got)

	// Words that do not parse as references pass through verbatim.
	assert.Equal(t, "total*2", AdjustForCopy("total*2", 5, 5, MaxRows-1, MaxCols-1))
}

func TestAdjustForStructuralChange_InsertRow(t *testing.T) {
	// Inserting a row at index 1 pushes everything from row 2 down.
	got := AdjustForStructuralChange("SUM(A1:A3)", AxisRow, 1, 1, MaxRows-1, MaxCols-1)
	assert.Equal(t, "SUM(A1:A4)", got)

	// Absolute references move with the sheet as well.
	got = AdjustForStructuralChange("$A$3", AxisRow, 1, 1, MaxRows-1, MaxCols-1)
	assert.Equal(t, "$A$4", got)
}

func TestAdjustForStructuralChange_DeleteRow(t *testing.T) {
	// A reference on the deleted row breaks.
	got := AdjustForStructuralChange("A2*2", AxisRow, 1, -1, MaxRows-1, MaxCols-1)
	assert.Equal(t, "#REF!*2", got)

	// References below the deleted row move up; above stay put.
	got = AdjustForStructuralChange("A3+A1", AxisRow, 1, -1, MaxRows-1, MaxCols-1)
	assert.Equal(t, "A2+A1", got)
}

func TestAdjustForStructuralChange_Columns(t *testing.T) {
	got := AdjustForStructuralChange("B1+A1", AxisCol, 1, 1, MaxRows-1, MaxCols-1)
	assert.Equal(t, "C1+A1", got)

	got = AdjustForStructuralChange("C1+B1", AxisCol, 1, -1, MaxRows-1, MaxCols-1)
	assert.Equal(t, "B1+#REF!", got)
}

func TestAdjustForStructuralChange_PushedOffSheet(t *testing.T) {
	// An insert that would push a reference past the last row breaks it.
	got := AdjustForStructuralChange("A10", AxisRow, 0, 1, 9, MaxCols-1)
	assert.Equal(t, "#REF!", got)

	// Deleting the first row breaks a reference to it.
	got = AdjustForStructuralChange("A1", AxisRow, 0, -1, MaxRows-1, MaxCols-1)
	assert.Equal(t, "#REF!", got)
}

func TestAdjustForStructuralChange_StringsAndNames(t *testing.T) {
	got := AdjustForStructuralChange(`IF(A5>0,"row A5",sales)`, AxisRow, 0, 1, MaxRows-1, MaxCols-1)
	assert.Equal(t, `IF(A6>0,"row A5",sales)`, got)
}
