package lotuscalc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SortOrder is the direction of a sort key.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// SortKey names a column offset within the sorted range and its direction.
type SortKey struct {
	Column int
	Order  SortOrder
}

// cellSnapshot carries a cell's raw text and format through a sort so the
// pair moves together.
type cellSnapshot struct {
	raw    string
	format string
}

// DataOps treats ranges as databases: first row holds field names, each
// following row is a record. It backs the /Data Sort, Query, and Extract
// commands.
type DataOps struct {
	sheet *Sheet
}

// NewDataOps creates database operations bound to sheet.
func NewDataOps(sheet *Sheet) *DataOps {
	return &DataOps{sheet: sheet}
}

// SortRange reorders the records of rng by the given keys. With hasHeader
// the first row stays put. With valuesOnly, formula cells are frozen to
// their computed values before moving; otherwise formulas move verbatim
// and their references are not adjusted.
func (d *DataOps) SortRange(rng RangeRef, keys []SortKey, hasHeader, valuesOnly bool) error {
	if !d.sheet.protection.CanSort() {
		return fmt.Errorf("sort %s: %w", rng.String(), ErrProtected)
	}
	rng = rng.Normalized()

	dataStart := rng.Start.Row
	if hasHeader {
		dataStart++
	}
	if dataStart > rng.End.Row {
		return nil
	}

	rows := d.snapshotRows(dataStart, rng.End.Row, rng.Start.Col, rng.End.Col, valuesOnly)
	sortSnapshots(rows, keys)

	for i, row := range rows {
		r := dataStart + i
		for j, snap := range row {
			coord := Coord{Row: r, Col: rng.Start.Col + j}
			cell := d.sheet.cell(coord)
			cell.Raw = snap.raw
			cell.Format = snap.format
		}
	}

	d.sheet.modified = true
	d.sheet.clearValueCache()
	d.sheet.engine.RebuildGraph()
	return nil
}

func (d *DataOps) snapshotRows(startRow, endRow, startCol, endCol int, valuesOnly bool) [][]cellSnapshot {
	rows := make([][]cellSnapshot, 0, endRow-startRow+1)
	for r := startRow; r <= endRow; r++ {
		row := make([]cellSnapshot, 0, endCol-startCol+1)
		for c := startCol; c <= endCol; c++ {
			coord := Coord{Row: r, Col: c}
			cell := d.sheet.CellAt(coord)
			switch {
			case cell == nil:
				row = append(row, cellSnapshot{})
			case valuesOnly && cell.IsFormula():
				value := d.sheet.ValueAt(coord)
				raw := ""
				if !value.IsEmpty() {
					raw = value.String()
				}
				row = append(row, cellSnapshot{raw: raw, format: cell.Format})
			default:
				row = append(row, cellSnapshot{raw: cell.Raw, format: cell.Format})
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// sortSnapshots is a stable insertion sort over the record rows.
func sortSnapshots(rows [][]cellSnapshot, keys []SortKey) {
	if len(keys) == 0 || len(rows) <= 1 {
		return
	}
	for i := 1; i < len(rows); i++ {
		key := rows[i]
		j := i - 1
		for j >= 0 && compareByKeys(rows[j], key, keys) > 0 {
			rows[j+1] = rows[j]
			j--
		}
		rows[j+1] = key
	}
}

func compareByKeys(a, b []cellSnapshot, keys []SortKey) int {
	for _, k := range keys {
		var ra, rb string
		if k.Column >= 0 && k.Column < len(a) {
			ra = a[k.Column].raw
		}
		if k.Column >= 0 && k.Column < len(b) {
			rb = b[k.Column].raw
		}
		cmp := compareSortValues(ra, rb)
		if k.Order == Descending {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

// compareSortValues orders raw cell text: numbers first by value (empty
// counts as zero), then strings case-insensitively.
func compareSortValues(a, b string) int {
	na, aNum := parseSortNumber(a)
	nb, bNum := parseSortNumber(b)
	switch {
	case aNum && bNum:
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	sa, sb := strings.ToLower(a), strings.ToLower(b)
	if sa < sb {
		return -1
	}
	if sa > sb {
		return 1
	}
	return 0
}

func parseSortNumber(raw string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Query returns the row indices of records whose values satisfy match.
// A nil match accepts every record.
func (d *DataOps) Query(data RangeRef, match func(record []Value) bool) []int {
	data = data.Normalized()
	var out []int
	for r := data.Start.Row + 1; r <= data.End.Row; r++ {
		if match == nil || match(d.recordValues(data, r)) {
			out = append(out, r)
		}
	}
	return out
}

// QueryCriteria returns the row indices of records matching a Lotus-style
// criteria range: a header row naming fields, then rows of conditions
// that OR together, with conditions on one row ANDed.
func (d *DataOps) QueryCriteria(data, criteria RangeRef) []int {
	data = data.Normalized()
	headers := d.recordValues(data, data.Start.Row)
	crit := d.sheet.RangeValues(criteria)

	var out []int
	for r := data.Start.Row + 1; r <= data.End.Row; r++ {
		if dbMatches(d.recordValues(data, r), headers, crit) {
			out = append(out, r)
		}
	}
	return out
}

func (d *DataOps) recordValues(data RangeRef, row int) []Value {
	out := make([]Value, 0, data.End.Col-data.Start.Col+1)
	for c := data.Start.Col; c <= data.End.Col; c++ {
		out = append(out, d.sheet.ValueAt(Coord{Row: row, Col: c}))
	}
	return out
}

// Extract copies the header and the given record rows to a block starting
// at outStart. columns selects column offsets within the data range; nil
// takes all of them. Returns the number of records written.
func (d *DataOps) Extract(data RangeRef, outStart Coord, rows []int, columns []int) (int, error) {
	data = data.Normalized()
	if columns == nil {
		for c := 0; c <= data.End.Col-data.Start.Col; c++ {
			columns = append(columns, c)
		}
	}

	for i, colIdx := range columns {
		src := Coord{Row: data.Start.Row, Col: data.Start.Col + colIdx}
		header := d.sheet.ValueAt(src).String()
		if err := d.sheet.SetCellAt(Coord{Row: outStart.Row, Col: outStart.Col + i}, header); err != nil {
			return 0, err
		}
	}

	for offset, srcRow := range rows {
		for i, colIdx := range columns {
			src := Coord{Row: srcRow, Col: data.Start.Col + colIdx}
			cell := d.sheet.CellAt(src)
			if cell == nil {
				continue
			}
			dst := Coord{Row: outStart.Row + offset + 1, Col: outStart.Col + i}
			if err := d.sheet.SetCellAt(dst, cell.Raw); err != nil {
				return 0, err
			}
			d.sheet.cell(dst).Format = cell.Format
		}
	}
	return len(rows), nil
}

// DeleteMatching removes whole sheet rows for the given record indices,
// bottom up so earlier indices stay valid.
func (d *DataOps) DeleteMatching(rows []int) (int, error) {
	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, row := range sorted {
		if err := d.sheet.DeleteRow(row); err != nil {
			return 0, err
		}
	}
	return len(sorted), nil
}

// Unique returns the first record row of each distinct key-column
// combination.
func (d *DataOps) Unique(data RangeRef, keyColumns []int) []int {
	data = data.Normalized()
	seen := make(map[string]struct{})
	var out []int
	for r := data.Start.Row + 1; r <= data.End.Row; r++ {
		var b strings.Builder
		for _, c := range keyColumns {
			b.WriteString(d.sheet.ValueAt(Coord{Row: r, Col: data.Start.Col + c}).String())
			b.WriteByte('\x00')
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Subtotal sums the given columns per distinct value of groupCol. Keys are
// the group values' display strings; only numeric cells contribute.
func (d *DataOps) Subtotal(data RangeRef, groupCol int, sumCols []int) map[string]map[int]float64 {
	data = data.Normalized()
	totals := make(map[string]map[int]float64)
	for r := data.Start.Row + 1; r <= data.End.Row; r++ {
		group := d.sheet.ValueAt(Coord{Row: r, Col: data.Start.Col + groupCol}).String()
		sums, ok := totals[group]
		if !ok {
			sums = make(map[int]float64)
			for _, c := range sumCols {
				sums[c] = 0
			}
			totals[group] = sums
		}
		for _, c := range sumCols {
			v := d.sheet.ValueAt(Coord{Row: r, Col: data.Start.Col + c})
			if v.IsNumber() {
				sums[c] += v.Num()
			}
		}
	}
	return totals
}
