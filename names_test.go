package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"sales", true},
		{"Q1_totals", true},
		{"x", true},
		{"2025sales", false},
		{"has space", false},
		{"", false},
		{"A1", false},
		{"iv256", false},
		{"TOTAL2GO", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, IsValidName(tt.name), tt.name)
	}
}

func TestNamedRanges_DefineAndResolve(t *testing.T) {
	m := NewNamedRangeManager()

	nr, err := m.Define("sales", "B2:B9")
	require.NoError(t, err)
	assert.Equal(t, "SALES", nr.Name)
	assert.True(t, nr.IsRange)
	assert.Equal(t, "B2:B9", nr.Ref())

	nr, err = m.Define("total", "b10")
	require.NoError(t, err)
	assert.False(t, nr.IsRange)
	assert.Equal(t, "B10", nr.Ref())

	// Lookups are case-insensitive.
	got, ok := m.Get("SALES")
	require.True(t, ok)
	assert.Equal(t, "SALES", got.Name)
	assert.True(t, m.Exists("Sales"))

	ref, ok := m.Resolve("sales")
	require.True(t, ok)
	assert.Equal(t, "B2:B9", ref)
	_, ok = m.Resolve("missing")
	assert.False(t, ok)

	// Redefining replaces the binding.
	_, err = m.Define("SALES", "C1:C4")
	require.NoError(t, err)
	ref, _ = m.Resolve("sales")
	assert.Equal(t, "C1:C4", ref)
	assert.Equal(t, 2, m.Len())

	// A reversed range normalizes.
	nr, err = m.Define("block", "D5:B2")
	require.NoError(t, err)
	assert.Equal(t, "B2:D5", nr.Ref())
}

func TestNamedRanges_DefineRejectsBadInput(t *testing.T) {
	m := NewNamedRangeManager()

	_, err := m.Define("B2", "A1")
	assert.ErrorIs(t, err, ErrBadName)

	_, err = m.Define("1st", "A1")
	assert.ErrorIs(t, err, ErrBadName)

	_, err = m.Define("ok", "nonsense")
	assert.Error(t, err)

	_, err = m.Define("ok", "A1:huh")
	assert.Error(t, err)
}

func TestNamedRanges_DeleteAndRename(t *testing.T) {
	m := NewNamedRangeManager()
	_, err := m.Define("alpha", "A1")
	require.NoError(t, err)
	_, err = m.Define("beta", "B1")
	require.NoError(t, err)

	assert.True(t, m.Delete("ALPHA"))
	assert.False(t, m.Delete("alpha"))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Rename("beta", "gamma"))
	assert.False(t, m.Exists("beta"))
	ref, ok := m.Resolve("gamma")
	require.True(t, ok)
	assert.Equal(t, "B1", ref)

	assert.ErrorIs(t, m.Rename("nope", "x"), ErrNameNotFound)
	assert.ErrorIs(t, m.Rename("gamma", "9lives"), ErrBadName)

	_, err = m.Define("delta", "C1")
	require.NoError(t, err)
	assert.ErrorIs(t, m.Rename("delta", "GAMMA"), ErrNameExists)

	// Renaming to itself in another case is a no-op.
	require.NoError(t, m.Rename("gamma", "Gamma"))
	assert.True(t, m.Exists("gamma"))
}

func TestNamedRanges_ListAndFindByCell(t *testing.T) {
	m := NewNamedRangeManager()
	for name, ref := range map[string]string{
		"zone":  "A1:C10",
		"apex":  "B2",
		"mid":   "B2:B5",
		"other": "F20",
	} {
		_, err := m.Define(name, ref)
		require.NoError(t, err)
	}

	list := m.List()
	require.Len(t, list, 4)
	assert.Equal(t, "APEX", list[0].Name)
	assert.Equal(t, "MID", list[1].Name)
	assert.Equal(t, "OTHER", list[2].Name)
	assert.Equal(t, "ZONE", list[3].Name)

	hits := m.FindByCell(coordOf(t, "B2"))
	require.Len(t, hits, 3)
	assert.Equal(t, "APEX", hits[0].Name)
	assert.Equal(t, "MID", hits[1].Name)
	assert.Equal(t, "ZONE", hits[2].Name)

	assert.Empty(t, m.FindByCell(coordOf(t, "Z99")))
}

func TestNamedRanges_AdjustForInsertRow(t *testing.T) {
	m := NewNamedRangeManager()
	_, err := m.Define("above", "A1")
	require.NoError(t, err)
	_, err = m.Define("below", "A5")
	require.NoError(t, err)
	_, err = m.Define("span", "A1:A5")
	require.NoError(t, err)

	m.AdjustForInsertRow(2)

	ref, _ := m.Resolve("above")
	assert.Equal(t, "A1", ref)
	ref, _ = m.Resolve("below")
	assert.Equal(t, "A6", ref)
	ref, _ = m.Resolve("span")
	assert.Equal(t, "A1:A6", ref)
}

func TestNamedRanges_AdjustForDeleteRow(t *testing.T) {
	m := NewNamedRangeManager()
	_, err := m.Define("gone", "A3")
	require.NoError(t, err)
	_, err = m.Define("below", "A5")
	require.NoError(t, err)
	_, err = m.Define("span", "A1:A5")
	require.NoError(t, err)
	_, err = m.Define("endhit", "A1:A3")
	require.NoError(t, err)

	invalidated := m.AdjustForDeleteRow(2)

	// The single-cell name on the deleted row is removed.
	assert.Equal(t, []string{"GONE"}, invalidated)
	assert.False(t, m.Exists("gone"))

	ref, _ := m.Resolve("below")
	assert.Equal(t, "A4", ref)
	ref, _ = m.Resolve("span")
	assert.Equal(t, "A1:A4", ref)

	// A range ending on the deleted row contracts.
	ref, _ = m.Resolve("endhit")
	assert.Equal(t, "A1:A2", ref)
}

func TestNamedRanges_AdjustForColumns(t *testing.T) {
	m := NewNamedRangeManager()
	_, err := m.Define("right", "D1")
	require.NoError(t, err)
	_, err = m.Define("wide", "A1:D1")
	require.NoError(t, err)
	_, err = m.Define("hit", "B1")
	require.NoError(t, err)

	m.AdjustForInsertCol(1)
	ref, _ := m.Resolve("right")
	assert.Equal(t, "E1", ref)
	ref, _ = m.Resolve("wide")
	assert.Equal(t, "A1:E1", ref)
	ref, _ = m.Resolve("hit")
	assert.Equal(t, "C1", ref)

	invalidated := m.AdjustForDeleteCol(2)
	assert.Equal(t, []string{"HIT"}, invalidated)
	ref, _ = m.Resolve("right")
	assert.Equal(t, "D1", ref)
	ref, _ = m.Resolve("wide")
	assert.Equal(t, "A1:D1", ref)
}

func TestSheet_NamedRangeInFormula(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "10",
		"A2": "20",
		"A3": "30",
	})
	_, err := s.Names().Define("data", "A1:A3")
	require.NoError(t, err)
	require.NoError(t, s.SetCell("C1", "=SUM(data)"))

	v, _ := s.Value("C1")
	assert.Equal(t, "60", v.String())

	// Structural edits keep the name aligned with its cells.
	require.NoError(t, s.InsertRow(1))
	require.NoError(t, s.SetCell("A2", "5"))
	v, _ = s.Value("C1")
	assert.Equal(t, "65", v.String())
}
