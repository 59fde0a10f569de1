package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColToName_RoundTrip(t *testing.T) {
	cases := map[int]string{
		0:   "A",
		1:   "B",
		25:  "Z",
		26:  "AA",
		27:  "AB",
		51:  "AZ",
		52:  "BA",
		255: "IV",
	}
	for col, name := range cases {
		assert.Equal(t, name, ColToName(col))
		assert.Equal(t, col, NameToCol(name))
	}
	assert.Equal(t, 0, NameToCol("a"))
	assert.Equal(t, 26, NameToCol("aa"))
}

func TestParseCellRef_Anchors(t *testing.T) {
	r, err := ParseCellRef("$B$3")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Row)
	assert.Equal(t, 1, r.Col)
	assert.True(t, r.RowAbs)
	assert.True(t, r.ColAbs)
	assert.Equal(t, "$B$3", r.String())

	r, err = ParseCellRef("b3")
	require.NoError(t, err)
	assert.False(t, r.RowAbs)
	assert.False(t, r.ColAbs)
	assert.Equal(t, "B3", r.String())

	r, err = ParseCellRef("$C12")
	require.NoError(t, err)
	assert.True(t, r.ColAbs)
	assert.False(t, r.RowAbs)
	assert.Equal(t, "$C12", r.String())
}

func TestParseCellRef_Invalid(t *testing.T) {
	for _, bad := range []string{"", "12", "A0", "A-1", "1A", "A1:B2"} {
		_, err := ParseCellRef(bad)
		assert.Error(t, err, "ref %q", bad)
	}
}

func TestCellRef_Shifted(t *testing.T) {
	r, err := ParseCellRef("B2")
	require.NoError(t, err)

	moved := r.Shifted(3, 1, MaxRows-1, MaxCols-1)
	assert.Equal(t, "C5", moved.String())

	// Shifts clamp at the sheet edge instead of going negative.
	clamped := r.Shifted(-10, -10, MaxRows-1, MaxCols-1)
	assert.Equal(t, "A1", clamped.String())
}

func TestCellRef_ShiftedKeepsAbsoluteAxes(t *testing.T) {
	r, err := ParseCellRef("$B$2")
	require.NoError(t, err)
	moved := r.Shifted(5, 5, MaxRows-1, MaxCols-1)
	assert.Equal(t, "$B$2", moved.String())

	r, err = ParseCellRef("$B2")
	require.NoError(t, err)
	moved = r.Shifted(5, 5, MaxRows-1, MaxCols-1)
	assert.Equal(t, "$B7", moved.String())
}

func TestParseRangeRef_Normalizes(t *testing.T) {
	rng, err := ParseRangeRef("B3:A1")
	require.NoError(t, err)
	norm := rng.Normalized()
	assert.Equal(t, "A1:B3", norm.String())

	coords := norm.Coords()
	require.Len(t, coords, 6)
	assert.Equal(t, Coord{Row: 0, Col: 0}, coords[0])
	assert.Equal(t, Coord{Row: 0, Col: 1}, coords[1])
	assert.Equal(t, Coord{Row: 2, Col: 1}, coords[5])
}

func TestRangeRef_Contains(t *testing.T) {
	rng, err := ParseRangeRef("B2:D4")
	require.NoError(t, err)
	assert.True(t, rng.Contains(Coord{Row: 1, Col: 1}))
	assert.True(t, rng.Contains(Coord{Row: 3, Col: 3}))
	assert.False(t, rng.Contains(Coord{Row: 0, Col: 1}))
	assert.False(t, rng.Contains(Coord{Row: 1, Col: 4}))
}

func TestCoord_Ref(t *testing.T) {
	assert.Equal(t, "A1", Coord{Row: 0, Col: 0}.Ref())
	assert.Equal(t, "C10", Coord{Row: 9, Col: 2}.Ref())
	assert.Equal(t, "AA100", Coord{Row: 99, Col: 26}.Ref())
}

func TestParseCoord(t *testing.T) {
	c, err := ParseCoord("d7")
	require.NoError(t, err)
	assert.Equal(t, Coord{Row: 6, Col: 3}, c)

	_, err = ParseCoord("7d")
	assert.Error(t, err)
}
