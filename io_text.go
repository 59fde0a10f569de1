package lotuscalc

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TextOptions configures delimited text import and export.
type TextOptions struct {
	delimiter rune
	header    bool
	formulas  bool
	anchor    Coord
	rng       *RangeRef
	trimSpace bool
	skipBlank bool
}

func defaultTextOptions() TextOptions {
	return TextOptions{
		delimiter: ',',
		trimSpace: true,
		skipBlank: true,
	}
}

// TextOption customizes text import or export.
type TextOption func(*TextOptions)

// WithDelimiter sets the field separator. The default is a comma.
func WithDelimiter(d rune) TextOption {
	return func(o *TextOptions) { o.delimiter = d }
}

// WithHeader adds a column-letter header row on export.
func WithHeader() TextOption {
	return func(o *TextOptions) { o.header = true }
}

// WithFormulas exports raw cell contents instead of computed values.
func WithFormulas() TextOption {
	return func(o *TextOptions) { o.formulas = true }
}

// WithAnchor places imported data starting at coord. The default is A1.
func WithAnchor(coord Coord) TextOption {
	return func(o *TextOptions) { o.anchor = coord }
}

// WithExportRange exports rng instead of the used range.
func WithExportRange(rng RangeRef) TextOption {
	return func(o *TextOptions) { o.rng = &rng }
}

// WithKeepBlankRows imports blank lines as empty sheet rows instead of
// skipping them.
func WithKeepBlankRows() TextOption {
	return func(o *TextOptions) { o.skipBlank = false }
}

// withExtension picks the delimiter a file extension implies. Explicit
// options given after it still win.
func withExtension(path string) TextOption {
	return func(o *TextOptions) {
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			o.delimiter = '\t'
		}
	}
}

// ExportText writes the sheet to w as delimited text and returns the number
// of rows written. Computed display values are exported unless WithFormulas
// is given; a value that would read back as a formula is protected with a
// label prefix.
func (s *Sheet) ExportText(w io.Writer, opts ...TextOption) (int, error) {
	o := defaultTextOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var rng RangeRef
	if o.rng != nil {
		rng = o.rng.Normalized()
	} else {
		used, ok := s.UsedRange()
		if !ok {
			return 0, nil
		}
		rng = used
	}

	cw := csv.NewWriter(w)
	cw.Comma = o.delimiter
	rows := 0

	if o.header {
		header := make([]string, 0, rng.End.Col-rng.Start.Col+1)
		for col := rng.Start.Col; col <= rng.End.Col; col++ {
			header = append(header, ColToName(col))
		}
		if err := cw.Write(header); err != nil {
			return rows, fmt.Errorf("write header: %w", err)
		}
		rows++
	}

	for row := rng.Start.Row; row <= rng.End.Row; row++ {
		record := make([]string, 0, rng.End.Col-rng.Start.Col+1)
		for col := rng.Start.Col; col <= rng.End.Col; col++ {
			record = append(record, s.exportCellText(Coord{Row: row, Col: col}, &o))
		}
		if err := cw.Write(record); err != nil {
			return rows, fmt.Errorf("write row %d: %w", row+1, err)
		}
		rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("flush: %w", err)
	}
	return rows, nil
}

// exportCellText renders one cell for export.
func (s *Sheet) exportCellText(coord Coord, o *TextOptions) string {
	cell := s.CellAt(coord)
	if o.formulas {
		return cell.Contents()
	}

	value := s.DisplayText(coord)
	if value == "" || (cell != nil && cell.IsFormula()) {
		return value
	}
	// A label like "+something" would come back as a formula; pin it down
	// with the label prefix so a round trip preserves it.
	if (&Cell{Raw: value}).IsFormula() {
		return s.globals.LabelPrefix + value
	}
	return value
}

// ImportText reads delimited rows from r into the sheet starting at the
// anchor cell and returns the number of rows imported. Each field is stored
// as raw cell contents, so numbers stay numbers and formulas go live.
func (s *Sheet) ImportText(r io.Reader, opts ...TextOption) (int, error) {
	o := defaultTextOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cr := csv.NewReader(r)
	cr.Comma = o.delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read row %d: %w", rows+1, err)
		}

		if o.skipBlank && blankRecord(record) {
			continue
		}

		for i, field := range record {
			if o.trimSpace {
				field = strings.TrimSpace(field)
			}
			coord := Coord{Row: o.anchor.Row + rows, Col: o.anchor.Col + i}
			if err := s.SetCellAt(coord, field); err != nil {
				return rows, err
			}
		}
		rows++
	}
	return rows, nil
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// ExportTextFile writes delimited text to path. A ".tsv" extension switches
// the delimiter to tab unless one is set explicitly.
func (s *Sheet) ExportTextFile(path string, opts ...TextOption) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("export %s: %w", path, err)
	}

	all := append([]TextOption{withExtension(path)}, opts...)
	rows, err := s.ExportText(f, all...)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return rows, fmt.Errorf("export %s: %w", path, err)
	}
	return rows, nil
}

// ImportTextFile reads delimited text from path. A ".tsv" extension switches
// the delimiter to tab unless one is set explicitly.
func (s *Sheet) ImportTextFile(path string, opts ...TextOption) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}
	defer f.Close()

	all := append([]TextOption{withExtension(path)}, opts...)
	rows, err := s.ImportText(f, all...)
	if err != nil {
		return rows, fmt.Errorf("import %s: %w", path, err)
	}
	return rows, nil
}
