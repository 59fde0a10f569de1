package lotuscalc

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportSheet(t *testing.T) *Sheet {
	t.Helper()
	return newSheetWithCells(t, map[string]string{
		"A1": "Item",
		"B1": "Qty",
		"A2": "widget",
		"B2": "=2+3",
	})
}

func TestSheet_ExportText_Values(t *testing.T) {
	var buf bytes.Buffer
	rows, err := exportSheet(t).ExportText(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, "Item,Qty\nwidget,5\n", buf.String())
}

func TestSheet_ExportText_Header(t *testing.T) {
	var buf bytes.Buffer
	rows, err := exportSheet(t).ExportText(&buf, WithHeader())
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, "A,B\nItem,Qty\nwidget,5\n", buf.String())
}

func TestSheet_ExportText_Formulas(t *testing.T) {
	var buf bytes.Buffer
	_, err := exportSheet(t).ExportText(&buf, WithFormulas())
	require.NoError(t, err)
	assert.Equal(t, "Item,Qty\nwidget,=2+3\n", buf.String())
}

func TestSheet_ExportText_Range(t *testing.T) {
	var buf bytes.Buffer
	rows, err := exportSheet(t).ExportText(&buf, WithExportRange(mustRange(t, "B1:B2")))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, "Qty\n5\n", buf.String())
}

func TestSheet_ExportText_Delimiter(t *testing.T) {
	var buf bytes.Buffer
	_, err := exportSheet(t).ExportText(&buf, WithDelimiter('\t'))
	require.NoError(t, err)
	assert.Equal(t, "Item\tQty\nwidget\t5\n", buf.String())
}

func TestSheet_ExportText_LabelGuard(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "'+acme",
		"A2": "-5.2",
	})

	var buf bytes.Buffer
	_, err := s.ExportText(&buf)
	require.NoError(t, err)

	// "+acme" would re-import as a formula, so it keeps its label prefix;
	// "-5.2" is just a number.
	assert.Equal(t, "'+acme\n-5.20\n", buf.String())
}

func TestSheet_ExportText_QuotedFields(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{"A1": "pots, pans"})

	var buf bytes.Buffer
	_, err := s.ExportText(&buf)
	require.NoError(t, err)
	assert.Equal(t, "\"pots, pans\"\n", buf.String())
}

func TestSheet_ExportText_EmptySheet(t *testing.T) {
	var buf bytes.Buffer
	rows, err := NewSheet().ExportText(&buf)
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Empty(t, buf.String())
}

func TestSheet_ImportText_Basic(t *testing.T) {
	s := NewSheet()
	input := "Item,Qty\nwidget,5\ngadget,=B2*2\n"

	rows, err := s.ImportText(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	v, err := s.Value("B2")
	require.NoError(t, err)
	assert.True(t, v.IsNumber())
	assert.Equal(t, 5.0, v.Num())

	v, err = s.Value("B3")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v.Num())
}

func TestSheet_ImportText_Anchor(t *testing.T) {
	s := NewSheet()
	rows, err := s.ImportText(strings.NewReader("1,2\n3,4\n"), WithAnchor(coordOf(t, "C3")))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	assert.Equal(t, []string{"1", "2", "3", "4"}, fillValues(t, s, "C3", "D3", "C4", "D4"))
	assert.Nil(t, s.CellAt(coordOf(t, "A1")))
}

func TestSheet_ImportText_TrimsAndSkipsBlank(t *testing.T) {
	s := NewSheet()
	rows, err := s.ImportText(strings.NewReader("  x  ,y\n,,\nz,\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	assert.Equal(t, []string{"x", "y", "z"}, fillValues(t, s, "A1", "B1", "A2"))
}

func TestSheet_ImportText_KeepBlankRows(t *testing.T) {
	s := NewSheet()
	rows, err := s.ImportText(strings.NewReader("x\n,,\nz\n"), WithKeepBlankRows())
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	assert.Equal(t, []string{"x", "z"}, fillValues(t, s, "A1", "A3"))
	assert.True(t, s.CellAt(coordOf(t, "A2")).IsEmpty())
}

func TestSheet_ImportText_RaggedRows(t *testing.T) {
	s := NewSheet()
	rows, err := s.ImportText(strings.NewReader("1\n2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, []string{"1", "2", "3"}, fillValues(t, s, "A1", "A2", "B2"))
}

func TestSheet_TextFiles_ExtensionPicksTab(t *testing.T) {
	path := filepath.Join(testdataDir(t), "export.tsv")
	t.Cleanup(func() { os.Remove(path) })

	_, err := exportSheet(t).ExportTextFile(path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Item\tQty\nwidget\t5\n", string(raw))

	loaded := NewSheet()
	rows, err := loaded.ImportTextFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, []string{"Item", "5"}, fillValues(t, loaded, "A1", "B2"))
}

func TestSheet_TextFiles_ExplicitDelimiterWins(t *testing.T) {
	path := filepath.Join(testdataDir(t), "export-semi.tsv")
	t.Cleanup(func() { os.Remove(path) })

	_, err := exportSheet(t).ExportTextFile(path, WithDelimiter(';'))
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Item;Qty\nwidget;5\n", string(raw))
}

func TestSheet_ImportTextFile_Missing(t *testing.T) {
	s := NewSheet()
	_, err := s.ImportTextFile(filepath.Join(testdataDir(t), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import ")
}
