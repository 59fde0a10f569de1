package lotuscalc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Excel stores column widths in character units and row heights in points.
// Widths at the excelize default were never set explicitly; heights convert
// to line counts at 15 points per line.
const (
	defaultExcelColWidth  = 9.140625
	defaultExcelRowHeight = 15.0
)

// UnsupportedFormula identifies an imported formula that names Excel
// functions the engine cannot evaluate. The cell keeps the translated
// formula, which evaluates to #NAME? until rewritten.
type UnsupportedFormula struct {
	Cell    string
	Formula string
}

// XlsxImportWarnings records everything an .xlsx import dropped or altered.
// A nil-safe HasWarnings/Message pair makes it cheap for callers to show
// only when something actually happened.
type XlsxImportWarnings struct {
	SheetCount            int
	ImportedSheet         string
	UnsupportedFormulas   []UnsupportedFormula
	MergedCells           []string
	ConditionalFormatting bool
	DataValidations       bool
}

// HasWarnings reports whether the import lost or altered anything.
func (w *XlsxImportWarnings) HasWarnings() bool {
	if w == nil {
		return false
	}
	return w.SheetCount > 1 || len(w.UnsupportedFormulas) > 0 ||
		len(w.MergedCells) > 0 || w.ConditionalFormatting || w.DataValidations
}

// Message renders the warnings as human-readable lines, one per issue.
func (w *XlsxImportWarnings) Message() string {
	if !w.HasWarnings() {
		return ""
	}
	var b strings.Builder
	if w.SheetCount > 1 {
		fmt.Fprintf(&b, "workbook has %d sheets; imported %q only\n", w.SheetCount, w.ImportedSheet)
	}
	for _, uf := range w.UnsupportedFormulas {
		fmt.Fprintf(&b, "%s: %s uses functions this engine cannot evaluate\n", uf.Cell, uf.Formula)
	}
	if len(w.MergedCells) > 0 {
		fmt.Fprintf(&b, "merged ranges %s were flattened to their top-left cell\n",
			strings.Join(w.MergedCells, ", "))
	}
	if w.ConditionalFormatting {
		b.WriteString("conditional formatting was dropped\n")
	}
	if w.DataValidations {
		b.WriteString("data validation rules were dropped\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// XlsxSheetNames lists the worksheets in an .xlsx file without importing it.
func XlsxSheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ImportXLSX replaces the sheet contents with one worksheet of an .xlsx
// file. An empty sheetName selects the active worksheet; a name not present
// in the workbook falls back to the first one. Formulas are translated into
// engine syntax, label alignment is recovered from cell styles, and number
// formats map onto the nearest format code.
func (s *Sheet) ImportXLSX(path, sheetName string) (*XlsxImportWarnings, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	name := sheetName
	if name == "" {
		name = f.GetSheetName(f.GetActiveSheetIndex())
	}
	known := false
	for _, sn := range sheets {
		if sn == name {
			known = true
			break
		}
	}
	if !known && len(sheets) > 0 {
		name = sheets[0]
	}
	warnings := &XlsxImportWarnings{SheetCount: len(sheets), ImportedSheet: name}

	s.Clear()

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	maxCol := 0
	for rowIdx, row := range rows {
		if rowIdx >= s.rows {
			break
		}
		for colIdx, raw := range row {
			if colIdx >= s.cols {
				break
			}
			if colIdx >= maxCol {
				maxCol = colIdx + 1
			}
			coord := Coord{Row: rowIdx, Col: colIdx}
			ref := coord.Ref()
			formula, err := f.GetCellFormula(name, ref)
			if err != nil {
				return nil, fmt.Errorf("import %s: %w", path, err)
			}
			var rawValue string
			switch {
			case formula != "":
				rawValue = TranslateExcelFormula(formula)
				if unsupported := UnsupportedExcelFunctions(formula); len(unsupported) > 0 {
					warnings.UnsupportedFormulas = append(warnings.UnsupportedFormulas, UnsupportedFormula{
						Cell:    ref,
						Formula: "=" + strings.TrimPrefix(formula, "="),
					})
				}
			case raw == "":
				continue
			default:
				rawValue = raw
				switch ctype, _ := f.GetCellType(name, ref); ctype {
				case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
					rawValue = s.importedLabel(f, name, ref, raw)
				case excelize.CellTypeBool:
					if raw == "1" || strings.EqualFold(raw, "true") {
						rawValue = "TRUE"
					} else {
						rawValue = "FALSE"
					}
				}
			}
			cell := s.cell(coord)
			cell.Raw = rawValue
			if code := importedCellFormat(f, name, ref); code != "" && code != "G" {
				cell.Format = code
			}
		}
	}

	for col := 0; col < maxCol; col++ {
		letter := ColToName(col)
		width, err := f.GetColWidth(name, letter)
		if err != nil || math.Abs(width-defaultExcelColWidth) < 0.01 {
			continue
		}
		if w := int(width + 0.5); w > 0 {
			s.colWidths[col] = w
		}
	}
	for rowIdx := range rows {
		height, err := f.GetRowHeight(name, rowIdx+1)
		if err != nil || math.Abs(height-defaultExcelRowHeight) < 0.01 {
			continue
		}
		lines := int(height/defaultExcelRowHeight + 0.5)
		if lines < 1 {
			lines = 1
		}
		s.rowHeights[rowIdx] = lines
	}

	for _, dn := range f.GetDefinedName() {
		if strings.HasPrefix(dn.Name, "_xlnm") {
			continue
		}
		ref := dn.RefersTo
		if i := strings.LastIndexByte(ref, '!'); i >= 0 {
			ref = ref[i+1:]
		}
		ref = strings.ReplaceAll(ref, "$", "")
		if ref == "" || strings.HasPrefix(ref, "#") {
			continue
		}
		// Names excelize accepts but this engine rejects are skipped.
		if _, err := s.names.Define(dn.Name, ref); err != nil {
			continue
		}
	}

	if panes, err := f.GetPanes(name); err == nil && panes.Freeze && panes.TopLeftCell != "" {
		if coord, err := ParseCoord(panes.TopLeftCell); err == nil {
			s.frozenRows = coord.Row
			s.frozenCols = coord.Col
		}
	}

	if merged, err := f.GetMergeCells(name); err == nil {
		for _, mc := range merged {
			warnings.MergedCells = append(warnings.MergedCells, mc.GetStartAxis()+":"+mc.GetEndAxis())
		}
	}
	if formats, err := f.GetConditionalFormats(name); err == nil && len(formats) > 0 {
		warnings.ConditionalFormatting = true
	}
	if validations, err := f.GetDataValidations(name); err == nil && len(validations) > 0 {
		warnings.DataValidations = true
	}

	s.filename = ""
	s.modified = true
	s.engine.RebuildGraph()
	return warnings, nil
}

// importedLabel recovers the alignment prefix for an incoming text cell
// from its style. Unprefixed text that would re-parse as a formula gets the
// label prefix so it stays text.
func (s *Sheet) importedLabel(f *excelize.File, sheet, ref, text string) string {
	prefix := ""
	if styleID, err := f.GetCellStyle(sheet, ref); err == nil {
		if style, err := f.GetStyle(styleID); err == nil && style != nil && style.Alignment != nil {
			switch style.Alignment.Horizontal {
			case "left":
				prefix = "'"
			case "right":
				prefix = `"`
			case "center", "centerContinuous":
				prefix = "^"
			}
		}
	}
	if prefix == "" && text != "" && strings.IndexByte("=@+-", text[0]) >= 0 {
		prefix = s.globals.LabelPrefix
	}
	return prefix + text
}

// builtinNumFmts covers the OOXML built-in number format IDs that map onto
// format codes. Styles carrying other built-ins import as General.
var builtinNumFmts = map[int]string{
	1: "0", 2: "0.00", 3: "#,##0", 4: "#,##0.00",
	9: "0%", 10: "0.00%", 11: "0.00E+00",
	14: "m/d/yy", 15: "d-mmm-yy", 16: "d-mmm", 17: "mmm-yy",
	18: "h:mm am/pm", 19: "h:mm:ss am/pm", 20: "h:mm", 21: "h:mm:ss",
	37: "#,##0", 38: "#,##0", 39: "#,##0.00", 40: "#,##0.00",
	44: `"$"#,##0.00`, 48: "0.0E+00",
}

func importedCellFormat(f *excelize.File, sheet, ref string) string {
	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return "G"
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return "G"
	}
	if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
		return excelFormatToEngine(*style.CustomNumFmt)
	}
	if excel, ok := builtinNumFmts[style.NumFmt]; ok {
		return excelFormatToEngine(excel)
	}
	return "G"
}

// ExportXLSX writes the sheet as a single-worksheet .xlsx file. Formulas
// are translated to Excel syntax where possible and written as literal text
// where not, labels keep their alignment through cell styles, and named
// ranges become workbook-scoped defined names.
func (s *Sheet) ExportXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	styleIDs := make(map[string]int)
	var exportErr error
	s.EachCell(func(coord Coord, cell *Cell) {
		if exportErr != nil {
			return
		}
		if err := s.exportXlsxCell(f, sheet, coord, cell, styleIDs); err != nil {
			exportErr = err
		}
	})
	if exportErr != nil {
		return fmt.Errorf("export %s: %w", path, exportErr)
	}

	for col, width := range s.colWidths {
		letter := ColToName(col)
		if err := f.SetColWidth(sheet, letter, letter, float64(width)); err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
	}
	for row, lines := range s.rowHeights {
		if err := f.SetRowHeight(sheet, row+1, float64(lines)*defaultExcelRowHeight); err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
	}

	for _, nr := range s.names.List() {
		err := f.SetDefinedName(&excelize.DefinedName{
			Name:     nr.Name,
			RefersTo: sheet + "!" + absoluteNameRef(nr),
			Scope:    "Workbook",
		})
		if err != nil {
			// Names Excel rejects are dropped; formulas referring to them
			// still carry the bare word.
			continue
		}
	}

	if s.frozenRows > 0 || s.frozenCols > 0 {
		topLeft := Coord{Row: s.frozenRows, Col: s.frozenCols}.Ref()
		err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			XSplit:      s.frozenCols,
			YSplit:      s.frozenRows,
			TopLeftCell: topLeft,
			ActivePane:  "bottomRight",
		})
		if err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func (s *Sheet) exportXlsxCell(f *excelize.File, sheet string, coord Coord, cell *Cell, styleIDs map[string]int) error {
	ref := coord.Ref()
	align := ""
	if cell.IsFormula() {
		formula := TranslateEngineFormula(cell.Formula())
		if excelFormulaExportable(formula) {
			if err := f.SetCellFormula(sheet, ref, strings.TrimPrefix(formula, "=")); err != nil {
				return err
			}
		} else if err := f.SetCellStr(sheet, ref, formula); err != nil {
			return err
		}
	} else {
		display := cell.DisplayValue()
		switch cell.Alignment() {
		case AlignLeft:
			align = "left"
		case AlignRight:
			align = "right"
		case AlignCenter:
			align = "center"
		}
		prefixed := display != cell.Raw
		if prefixed {
			if err := f.SetCellStr(sheet, ref, display); err != nil {
				return err
			}
		} else if i, err := strconv.ParseInt(display, 10, 64); err == nil {
			if err := f.SetCellValue(sheet, ref, i); err != nil {
				return err
			}
		} else if n, err := strconv.ParseFloat(display, 64); err == nil {
			if err := f.SetCellValue(sheet, ref, n); err != nil {
				return err
			}
		} else if err := f.SetCellStr(sheet, ref, display); err != nil {
			return err
		}
	}

	numFmt := ""
	if code := cell.FormatCode(s.globals.Format); code != "" && code != "G" {
		if excel := engineFormatToExcel(code); excel != "General" {
			numFmt = excel
		}
	}
	if align == "" && numFmt == "" {
		return nil
	}
	key := align + "|" + numFmt
	id, ok := styleIDs[key]
	if !ok {
		style := excelize.Style{}
		if align != "" {
			style.Alignment = &excelize.Alignment{Horizontal: align}
		}
		if numFmt != "" {
			style.CustomNumFmt = &numFmt
		}
		var err error
		id, err = f.NewStyle(&style)
		if err != nil {
			return err
		}
		styleIDs[key] = id
	}
	return f.SetCellStyle(sheet, ref, ref, id)
}

func absoluteNameRef(nr *NamedRange) string {
	start := "$" + ColToName(nr.Start.Col) + "$" + strconv.Itoa(nr.Start.Row+1)
	if !nr.IsRange {
		return start
	}
	end := "$" + ColToName(nr.End.Col) + "$" + strconv.Itoa(nr.End.Row+1)
	return start + ":" + end
}
