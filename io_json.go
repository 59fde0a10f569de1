package lotuscalc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// fileVersion is the schema version written by Save. Version 1 files used
// "format_str" for the cell format key; both spellings load.
const fileVersion = 2

// sheetDoc is the on-disk JSON layout. Cells are keyed "row,col" with
// zero-based indices, and default values are left out to keep files small.
type sheetDoc struct {
	Version     int                      `json:"version"`
	Rows        int                      `json:"rows"`
	Cols        int                      `json:"cols"`
	ColWidths   map[string]int           `json:"col_widths,omitempty"`
	RowHeights  map[string]int           `json:"row_heights,omitempty"`
	Cells       map[string]cellDoc       `json:"cells"`
	NamedRanges map[string]namedRangeDoc `json:"named_ranges,omitempty"`
	Protection  *protectionDoc           `json:"protection,omitempty"`
	FrozenRows  int                      `json:"frozen_rows"`
	FrozenCols  int                      `json:"frozen_cols"`
	RecalcMode  string                   `json:"recalc_mode,omitempty"`
	RecalcOrder string                   `json:"recalc_order,omitempty"`
}

type cellDoc struct {
	RawValue    string `json:"raw_value"`
	FormatCode  string `json:"format_code,omitempty"`
	FormatStr   string `json:"format_str,omitempty"` // legacy spelling, read only
	IsProtected bool   `json:"is_protected,omitempty"`
}

type namedRangeDoc struct {
	Name        string `json:"name"`
	Reference   string `json:"reference"`
	IsRange     bool   `json:"is_range"`
	Description string `json:"description,omitempty"`
}

type protectionDoc struct {
	Settings ProtectionSettings `json:"settings"`
}

// Save writes the sheet to w as indented JSON.
func (s *Sheet) Save(w io.Writer) error {
	data, err := json.MarshalIndent(s.document(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	return nil
}

// Load replaces the sheet contents with the document read from r and
// rebuilds the dependency graph. Values are recomputed lazily afterwards.
func (s *Sheet) Load(r io.Reader) error {
	var doc sheetDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decode sheet: %w", err)
	}
	return s.applyDocument(&doc)
}

// SaveFile writes the sheet to path. A ".gz" suffix gzip-compresses the
// output. On success the sheet remembers path and is marked unmodified.
func (s *Sheet) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	err = s.Save(w)
	if gz != nil {
		if cerr := gz.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	s.filename = path
	s.modified = false
	return nil
}

// LoadFile reads the sheet from path. A ".gz" suffix gzip-decompresses the
// input. On success the sheet remembers path.
func (s *Sheet) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	if err := s.Load(r); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	s.filename = path
	return nil
}

// document builds the serializable form of the sheet.
func (s *Sheet) document() sheetDoc {
	doc := sheetDoc{
		Version:     fileVersion,
		Rows:        s.rows,
		Cols:        s.cols,
		Cells:       make(map[string]cellDoc, len(s.cells)),
		FrozenRows:  s.frozenRows,
		FrozenCols:  s.frozenCols,
		RecalcMode:  s.RecalcMode().String(),
		RecalcOrder: s.RecalcOrder().String(),
	}

	for coord, cell := range s.cells {
		if cell.IsEmpty() {
			continue
		}
		cd := cellDoc{RawValue: cell.Raw}
		if cell.Format != "" && cell.Format != "G" {
			cd.FormatCode = cell.Format
		}
		if cell.Protected {
			cd.IsProtected = true
		}
		doc.Cells[strconv.Itoa(coord.Row)+","+strconv.Itoa(coord.Col)] = cd
	}

	if len(s.colWidths) > 0 {
		doc.ColWidths = make(map[string]int, len(s.colWidths))
		for col, w := range s.colWidths {
			doc.ColWidths[strconv.Itoa(col)] = w
		}
	}
	if len(s.rowHeights) > 0 {
		doc.RowHeights = make(map[string]int, len(s.rowHeights))
		for row, h := range s.rowHeights {
			doc.RowHeights[strconv.Itoa(row)] = h
		}
	}

	if s.names.Len() > 0 {
		doc.NamedRanges = make(map[string]namedRangeDoc, s.names.Len())
		for _, nr := range s.names.List() {
			doc.NamedRanges[nr.Name] = namedRangeDoc{
				Name:        nr.Name,
				Reference:   nr.Ref(),
				IsRange:     nr.IsRange,
				Description: nr.Description,
			}
		}
	}

	if st := *s.protection.Settings(); st != (ProtectionSettings{}) {
		doc.Protection = &protectionDoc{Settings: st}
	}
	return doc
}

// applyDocument loads doc into the sheet, replacing all prior contents.
func (s *Sheet) applyDocument(doc *sheetDoc) error {
	s.Clear()

	if doc.Rows > 0 {
		s.rows = doc.Rows
	}
	if doc.Cols > 0 {
		s.cols = doc.Cols
	}

	for key, w := range doc.ColWidths {
		col, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("column width key %q: %w", key, ErrBadReference)
		}
		s.colWidths[col] = w
	}
	for key, h := range doc.RowHeights {
		row, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("row height key %q: %w", key, ErrBadReference)
		}
		s.rowHeights[row] = h
	}

	for key, cd := range doc.Cells {
		coord, err := parseCellKey(key)
		if err != nil {
			return err
		}
		format := cd.FormatCode
		if format == "" {
			format = cd.FormatStr
		}
		if format == "G" {
			format = ""
		}
		s.cells[coord] = &Cell{Raw: cd.RawValue, Format: format, Protected: cd.IsProtected}
	}

	for name, nd := range doc.NamedRanges {
		nr := &NamedRange{Name: strings.ToUpper(nd.Name), Description: nd.Description}
		if nr.Name == "" {
			nr.Name = strings.ToUpper(name)
		}
		if nd.IsRange || strings.Contains(nd.Reference, ":") {
			rng, err := ParseRangeRef(nd.Reference)
			if err != nil {
				return fmt.Errorf("named range %s: %w", name, err)
			}
			rng = rng.Normalized()
			nr.Start = rng.Start.Coord()
			nr.End = rng.End.Coord()
			nr.IsRange = true
		} else {
			coord, err := ParseCoord(nd.Reference)
			if err != nil {
				return fmt.Errorf("named range %s: %w", name, err)
			}
			nr.Start = coord
			nr.End = coord
		}
		s.names.names[nr.Name] = nr
	}

	if doc.Protection != nil {
		*s.protection.Settings() = doc.Protection.Settings
	}

	s.frozenRows = doc.FrozenRows
	s.frozenCols = doc.FrozenCols

	if doc.RecalcMode != "" {
		if mode, err := ParseRecalcMode(doc.RecalcMode); err == nil {
			s.engine.SetMode(mode)
		}
	}
	if doc.RecalcOrder != "" {
		if order, err := ParseRecalcOrder(doc.RecalcOrder); err == nil {
			s.engine.SetOrder(order)
		}
	}

	s.engine.RebuildGraph()
	s.modified = false
	return nil
}

// parseCellKey splits a "row,col" key into a coordinate.
func parseCellKey(key string) (Coord, error) {
	rowText, colText, ok := strings.Cut(key, ",")
	if !ok {
		return Coord{}, fmt.Errorf("cell key %q: %w", key, ErrBadReference)
	}
	row, err := strconv.Atoi(rowText)
	if err != nil {
		return Coord{}, fmt.Errorf("cell key %q: %w", key, ErrBadReference)
	}
	col, err := strconv.Atoi(colText)
	if err != nil {
		return Coord{}, fmt.Errorf("cell key %q: %w", key, ErrBadReference)
	}
	return Coord{Row: row, Col: col}, nil
}
