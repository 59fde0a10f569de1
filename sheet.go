package lotuscalc

import (
	"fmt"
	"strconv"
)

// Sheet dimension and display limits.
const (
	MaxRows = 65536
	MaxCols = 256

	DefaultColWidth = 10
	MinColWidth     = 3
	MaxColWidth     = 50

	DefaultRowHeight = 1
	MinRowHeight     = 1
	MaxRowHeight     = 72
)

// GlobalSettings are the sheet-wide display defaults. Format applies to
// cells without their own format code; LabelPrefix is the default alignment
// prefix for labels; ZeroDisplay false blanks cells whose value is zero.
type GlobalSettings struct {
	Format      string
	LabelPrefix string
	ColWidth    int
	ZeroDisplay bool
}

// Sheet is a sparse spreadsheet grid with formula evaluation, dependency
// tracking, and incremental recalculation. It is not safe for concurrent
// mutation; callers needing that must serialize access externally.
type Sheet struct {
	rows int
	cols int

	cells    map[Coord]*Cell
	cache    map[Coord]Value
	circular map[Coord]struct{}

	colWidths  map[int]int
	rowHeights map[int]int

	names      *NamedRangeManager
	protection *ProtectionManager
	engine     *RecalcEngine
	eval       *Evaluator

	globals    GlobalSettings
	frozenRows int
	frozenCols int

	filename string
	modified bool
}

// NewSheet creates an empty sheet. With no options the sheet spans the full
// 65536x256 grid, recalculates automatically in natural order, and uses the
// default function registry.
func NewSheet(opts ...Option) *Sheet {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &Sheet{
		rows:       o.rows,
		cols:       o.cols,
		cells:      make(map[Coord]*Cell),
		cache:      make(map[Coord]Value),
		circular:   make(map[Coord]struct{}),
		colWidths:  make(map[int]int),
		rowHeights: make(map[int]int),
		globals: GlobalSettings{
			Format:      "G",
			LabelPrefix: "'",
			ColWidth:    DefaultColWidth,
			ZeroDisplay: true,
		},
	}
	s.names = NewNamedRangeManager()
	s.protection = NewProtectionManager(s)
	s.engine = NewRecalcEngine(s)
	s.engine.mode = o.mode
	s.engine.order = o.order

	registry := o.registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	s.eval = &Evaluator{
		Grid:     s,
		Names:    s.names,
		Funcs:    registry,
		Clock:    o.clock,
		Rand:     o.rand,
		Sheet:    s,
		MaxDepth: o.maxDepth,
	}
	return s
}

// Rows returns the row capacity.
func (s *Sheet) Rows() int { return s.rows }

// Cols returns the column capacity.
func (s *Sheet) Cols() int { return s.cols }

// Names returns the named range manager.
func (s *Sheet) Names() *NamedRangeManager { return s.names }

// Protection returns the protection manager.
func (s *Sheet) Protection() *ProtectionManager { return s.protection }

// Engine returns the recalculation engine.
func (s *Sheet) Engine() *RecalcEngine { return s.engine }

// Evaluator returns the sheet's formula evaluator.
func (s *Sheet) Evaluator() *Evaluator { return s.eval }

// Globals returns the sheet-wide display settings for adjustment.
func (s *Sheet) Globals() *GlobalSettings { return &s.globals }

// Modified reports whether the sheet changed since the last save or load.
func (s *Sheet) Modified() bool { return s.modified }

// Filename returns the path of the last save or load, if any.
func (s *Sheet) Filename() string { return s.filename }

func (s *Sheet) inBounds(coord Coord) bool {
	return coord.Row >= 0 && coord.Row < s.rows && coord.Col >= 0 && coord.Col < s.cols
}

// cell returns the cell at coord, creating it when absent.
func (s *Sheet) cell(coord Coord) *Cell {
	c, ok := s.cells[coord]
	if !ok {
		c = &Cell{}
		s.cells[coord] = c
	}
	return c
}

// CellAt returns the cell at coord, or nil when the cell was never written.
func (s *Sheet) CellAt(coord Coord) *Cell {
	return s.cells[coord]
}

// Cell returns the cell for a reference like "B4", or nil.
func (s *Sheet) Cell(ref string) (*Cell, error) {
	coord, err := ParseCoord(ref)
	if err != nil {
		return nil, err
	}
	return s.cells[coord], nil
}

// SetCellAt stores raw text at coord. Formulas start with "=" or "@";
// everything else is a literal or label. The cell's dependencies are
// re-registered and it is marked dirty, which in automatic mode triggers an
// immediate recalculation of its dependents.
func (s *Sheet) SetCellAt(coord Coord, raw string) error {
	if !s.inBounds(coord) {
		return fmt.Errorf("set %s: %w", coord.Ref(), ErrOutOfRange)
	}
	if !s.protection.CanEditCell(coord) {
		return fmt.Errorf("set %s: %w", coord.Ref(), ErrProtected)
	}

	cell := s.cell(coord)
	cell.Raw = raw
	s.modified = true
	s.invalidate(coord)

	s.engine.UpdateCellDependency(coord, cell.Formula())
	s.engine.MarkDirty(coord)
	return nil
}

// SetCell stores raw text at a reference like "B4".
func (s *Sheet) SetCell(ref, raw string) error {
	coord, err := ParseCoord(ref)
	if err != nil {
		return err
	}
	return s.SetCellAt(coord, raw)
}

// DeleteCellAt removes the cell at coord from storage.
func (s *Sheet) DeleteCellAt(coord Coord) error {
	if _, ok := s.cells[coord]; !ok {
		return nil
	}
	if !s.protection.CanEditCell(coord) {
		return fmt.Errorf("delete %s: %w", coord.Ref(), ErrProtected)
	}

	delete(s.cells, coord)
	s.modified = true
	s.invalidate(coord)

	s.engine.UpdateCellDependency(coord, "")
	s.engine.MarkDirty(coord)
	return nil
}

// DeleteCell removes the cell at a reference like "B4".
func (s *Sheet) DeleteCell(ref string) error {
	coord, err := ParseCoord(ref)
	if err != nil {
		return err
	}
	return s.DeleteCellAt(coord)
}

// SetFormatAt sets a cell's format code after normalizing it.
func (s *Sheet) SetFormatAt(coord Coord, code string) error {
	if !s.inBounds(coord) {
		return fmt.Errorf("format %s: %w", coord.Ref(), ErrOutOfRange)
	}
	normalized, ok := NormalizeFormatCode(code)
	if !ok {
		return fmt.Errorf("invalid format code %q", code)
	}
	if !s.protection.CanFormat() {
		return fmt.Errorf("format %s: %w", coord.Ref(), ErrProtected)
	}
	s.cell(coord).Format = normalized
	s.modified = true
	return nil
}

// SetFormat sets the format code for a cell named by a reference like "B4".
func (s *Sheet) SetFormat(ref, code string) error {
	coord, err := ParseCoord(ref)
	if err != nil {
		return err
	}
	return s.SetFormatAt(coord, code)
}

func (s *Sheet) invalidate(coord Coord) {
	delete(s.cache, coord)
	delete(s.circular, coord)
}

// clearValueCache drops every cached value and circular flag. Runs at the
// start of each recalculation pass.
func (s *Sheet) clearValueCache() {
	s.cache = make(map[Coord]Value)
	s.circular = make(map[Coord]struct{})
}

// ValueAt computes (or fetches from cache) the value at coord. Reads are
// not bounds-checked: anything outside storage is simply empty text.
func (s *Sheet) ValueAt(coord Coord) Value {
	return s.valueInContext(coord, nil)
}

// Value computes the value at a reference like "B4".
func (s *Sheet) Value(ref string) (Value, error) {
	coord, err := ParseCoord(ref)
	if err != nil {
		return Value{}, err
	}
	return s.ValueAt(coord), nil
}

func (s *Sheet) valueInContext(coord Coord, ctx *EvalContext) Value {
	if v, ok := s.cache[coord]; ok {
		return v
	}

	cell := s.cells[coord]
	if cell == nil || cell.IsEmpty() {
		return Text("")
	}

	var v Value
	if cell.IsFormula() {
		v = s.evaluateCell(coord, cell, ctx)
	} else {
		v = parseLiteral(cell.DisplayValue())
	}
	s.cache[coord] = v
	return v
}

// evaluateCell runs a formula with cycle detection. A cell already on the
// evaluation stack yields #CIRC! and is recorded as circular.
func (s *Sheet) evaluateCell(coord Coord, cell *Cell, ctx *EvalContext) Value {
	if ctx == nil {
		ctx = NewEvalContext()
	}
	if ctx.Computing(coord) {
		s.circular[coord] = struct{}{}
		return NewError(ErrorCirc)
	}
	visit := ctx.Visit(coord)
	defer visit.Close()
	return s.eval.EvaluateWith(ctx, cell.Formula())
}

// CellValue implements Grid for the evaluator: a single cell reference.
func (s *Sheet) CellValue(ref string, ctx *EvalContext) Value {
	coord, err := ParseCoord(ref)
	if err != nil {
		return NewError(ErrorRef)
	}
	return s.valueInContext(coord, ctx)
}

// RangeValue implements Grid for the evaluator: a rectangular block.
func (s *Sheet) RangeValue(startRef, endRef string, ctx *EvalContext) Value {
	start, err := ParseCoord(startRef)
	if err != nil {
		return Array([][]Value{{NewError(ErrorRef)}})
	}
	end, err := ParseCoord(endRef)
	if err != nil {
		return Array([][]Value{{NewError(ErrorRef)}})
	}
	if start.Row > end.Row {
		start.Row, end.Row = end.Row, start.Row
	}
	if start.Col > end.Col {
		start.Col, end.Col = end.Col, start.Col
	}

	rows := make([][]Value, 0, end.Row-start.Row+1)
	for r := start.Row; r <= end.Row; r++ {
		row := make([]Value, 0, end.Col-start.Col+1)
		for c := start.Col; c <= end.Col; c++ {
			row = append(row, s.valueInContext(Coord{Row: r, Col: c}, ctx))
		}
		rows = append(rows, row)
	}
	return Array(rows)
}

// RangeValues computes a block of values outside any formula context.
func (s *Sheet) RangeValues(rng RangeRef) [][]Value {
	rng = rng.Normalized()
	rows := make([][]Value, 0, rng.End.Row-rng.Start.Row+1)
	for r := rng.Start.Row; r <= rng.End.Row; r++ {
		row := make([]Value, 0, rng.End.Col-rng.Start.Col+1)
		for c := rng.Start.Col; c <= rng.End.Col; c++ {
			row = append(row, s.ValueAt(Coord{Row: r, Col: c}))
		}
		rows = append(rows, row)
	}
	return rows
}

// DisplayText renders the value at coord for screen output, honoring the
// cell format, the sheet default format, and zero suppression.
func (s *Sheet) DisplayText(coord Coord) string {
	value := s.ValueAt(coord)

	if !s.globals.ZeroDisplay && value.IsNumber() && value.Num() == 0 {
		return ""
	}

	code := s.globals.Format
	if cell := s.cells[coord]; cell != nil {
		code = cell.FormatCode(s.globals.Format)
	}
	if code != "G" {
		return FormatValue(value, ParseFormatCode(code), s.ColWidth(coord.Col))
	}

	if value.IsNumber() {
		n := value.Num()
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', 2, 64)
	}
	return value.String()
}

// FittedText renders like DisplayText but confined to the cell's column
// width: a number too wide for its column shows as asterisks. Labels are
// never clipped; they spill on screen instead.
func (s *Sheet) FittedText(coord Coord) string {
	text := s.DisplayText(coord)
	if s.ValueAt(coord).IsNumber() {
		return FitWidth(text, s.ColWidth(coord.Col))
	}
	return text
}

// EachCell calls fn for every non-empty cell in row-major order.
func (s *Sheet) EachCell(fn func(Coord, *Cell)) {
	coords := make([]Coord, 0, len(s.cells))
	for coord, cell := range s.cells {
		if cell.IsEmpty() {
			continue
		}
		coords = append(coords, coord)
	}
	sortCoords(coords)
	for _, coord := range coords {
		fn(coord, s.cells[coord])
	}
}

// CellCount returns the number of non-empty cells.
func (s *Sheet) CellCount() int {
	n := 0
	for _, cell := range s.cells {
		if !cell.IsEmpty() {
			n++
		}
	}
	return n
}

// UsedRange returns the bounding box of non-empty cells. ok is false for an
// empty sheet.
func (s *Sheet) UsedRange() (rng RangeRef, ok bool) {
	first := true
	for coord, cell := range s.cells {
		if cell.IsEmpty() {
			continue
		}
		if first {
			rng.Start = CellRef{Row: coord.Row, Col: coord.Col}
			rng.End = rng.Start
			first = false
			continue
		}
		if coord.Row < rng.Start.Row {
			rng.Start.Row = coord.Row
		}
		if coord.Col < rng.Start.Col {
			rng.Start.Col = coord.Col
		}
		if coord.Row > rng.End.Row {
			rng.End.Row = coord.Row
		}
		if coord.Col > rng.End.Col {
			rng.End.Col = coord.Col
		}
	}
	return rng, !first
}

// formulaCells returns every cell currently holding a formula.
func (s *Sheet) formulaCells() map[Coord]*Cell {
	out := make(map[Coord]*Cell)
	for coord, cell := range s.cells {
		if cell.IsFormula() {
			out[coord] = cell
		}
	}
	return out
}

// InsertRow inserts an empty row at atRow, shifting that row and everything
// below it down. Every formula on the sheet is rewritten for the shift.
func (s *Sheet) InsertRow(atRow int) error {
	if atRow < 0 || atRow >= s.rows {
		return fmt.Errorf("insert row %d: %w", atRow, ErrOutOfRange)
	}
	if !s.protection.CanInsertRow() {
		return fmt.Errorf("insert row %d: %w", atRow, ErrProtected)
	}

	moved := make(map[Coord]*Cell, len(s.cells))
	for coord, cell := range s.cells {
		if cell.IsFormula() {
			cell.Raw = AdjustForStructuralChange(cell.Raw, AxisRow, atRow, 1, s.rows-1, s.cols-1)
		}
		if coord.Row >= atRow {
			coord.Row++
		}
		moved[coord] = cell
	}
	s.cells = moved
	s.rowHeights = shiftIndexMap(s.rowHeights, atRow, 1)
	s.names.AdjustForInsertRow(atRow)

	s.afterStructuralChange()
	return nil
}

// DeleteRow removes row atRow, shifting everything below it up. Cells on
// the deleted row are dropped; formulas referring to them become #REF!.
func (s *Sheet) DeleteRow(atRow int) error {
	if atRow < 0 || atRow >= s.rows {
		return fmt.Errorf("delete row %d: %w", atRow, ErrOutOfRange)
	}
	if !s.protection.CanDeleteRow() {
		return fmt.Errorf("delete row %d: %w", atRow, ErrProtected)
	}

	moved := make(map[Coord]*Cell, len(s.cells))
	for coord, cell := range s.cells {
		if coord.Row == atRow {
			continue
		}
		if cell.IsFormula() {
			cell.Raw = AdjustForStructuralChange(cell.Raw, AxisRow, atRow, -1, s.rows-1, s.cols-1)
		}
		if coord.Row > atRow {
			coord.Row--
		}
		moved[coord] = cell
	}
	s.cells = moved
	s.rowHeights = collapseIndexMap(s.rowHeights, atRow)
	s.names.AdjustForDeleteRow(atRow)

	s.afterStructuralChange()
	return nil
}

// InsertCol inserts an empty column at atCol, shifting right.
func (s *Sheet) InsertCol(atCol int) error {
	if atCol < 0 || atCol >= s.cols {
		return fmt.Errorf("insert column %d: %w", atCol, ErrOutOfRange)
	}
	if !s.protection.CanInsertCol() {
		return fmt.Errorf("insert column %d: %w", atCol, ErrProtected)
	}

	moved := make(map[Coord]*Cell, len(s.cells))
	for coord, cell := range s.cells {
		if cell.IsFormula() {
			cell.Raw = AdjustForStructuralChange(cell.Raw, AxisCol, atCol, 1, s.rows-1, s.cols-1)
		}
		if coord.Col >= atCol {
			coord.Col++
		}
		moved[coord] = cell
	}
	s.cells = moved
	s.colWidths = shiftIndexMap(s.colWidths, atCol, 1)
	s.names.AdjustForInsertCol(atCol)

	s.afterStructuralChange()
	return nil
}

// DeleteCol removes column atCol, shifting left.
func (s *Sheet) DeleteCol(atCol int) error {
	if atCol < 0 || atCol >= s.cols {
		return fmt.Errorf("delete column %d: %w", atCol, ErrOutOfRange)
	}
	if !s.protection.CanDeleteCol() {
		return fmt.Errorf("delete column %d: %w", atCol, ErrProtected)
	}

	moved := make(map[Coord]*Cell, len(s.cells))
	for coord, cell := range s.cells {
		if coord.Col == atCol {
			continue
		}
		if cell.IsFormula() {
			cell.Raw = AdjustForStructuralChange(cell.Raw, AxisCol, atCol, -1, s.rows-1, s.cols-1)
		}
		if coord.Col > atCol {
			coord.Col--
		}
		moved[coord] = cell
	}
	s.cells = moved
	s.colWidths = collapseIndexMap(s.colWidths, atCol)
	s.names.AdjustForDeleteCol(atCol)

	s.afterStructuralChange()
	return nil
}

func (s *Sheet) afterStructuralChange() {
	s.modified = true
	s.clearValueCache()
	s.engine.RebuildGraph()
}

// shiftIndexMap moves sparse row-height or col-width entries at or past
// boundary by one for an insert.
func shiftIndexMap(m map[int]int, boundary, shift int) map[int]int {
	out := make(map[int]int, len(m))
	for idx, v := range m {
		if idx >= boundary {
			idx += shift
		}
		out[idx] = v
	}
	return out
}

// collapseIndexMap drops the entry at boundary and pulls later entries back
// by one for a delete.
func collapseIndexMap(m map[int]int, boundary int) map[int]int {
	out := make(map[int]int, len(m))
	for idx, v := range m {
		if idx == boundary {
			continue
		}
		if idx > boundary {
			idx--
		}
		out[idx] = v
	}
	return out
}

// CopyCell copies the cell at src to dst, shifting relative references in
// formulas by the move delta. Copying an absent cell is a no-op.
func (s *Sheet) CopyCell(src, dst Coord) error {
	cell := s.cells[src]
	if cell == nil {
		return nil
	}
	if !s.inBounds(dst) {
		return fmt.Errorf("copy to %s: %w", dst.Ref(), ErrOutOfRange)
	}
	if !s.protection.CanEditCell(dst) {
		return fmt.Errorf("copy to %s: %w", dst.Ref(), ErrProtected)
	}

	raw := cell.Raw
	if cell.IsFormula() {
		raw = AdjustForCopy(raw, dst.Row-src.Row, dst.Col-src.Col, s.rows-1, s.cols-1)
	}

	dest := s.cell(dst)
	dest.Raw = raw
	dest.Format = cell.Format
	s.modified = true
	s.invalidate(dst)

	s.engine.UpdateCellDependency(dst, dest.Formula())
	s.engine.MarkDirty(dst)
	return nil
}

// CopyRange copies a block so its top-left lands on dstStart, cell by cell
// with reference adjustment.
func (s *Sheet) CopyRange(src RangeRef, dstStart Coord) error {
	src = src.Normalized()
	for r := src.Start.Row; r <= src.End.Row; r++ {
		for c := src.Start.Col; c <= src.End.Col; c++ {
			dst := Coord{Row: dstStart.Row + r - src.Start.Row, Col: dstStart.Col + c - src.Start.Col}
			if err := s.CopyCell(Coord{Row: r, Col: c}, dst); err != nil {
				return err
			}
		}
	}
	return nil
}

// MoveCell moves the cell at src to dst verbatim, without reference
// adjustment, and clears the source.
func (s *Sheet) MoveCell(src, dst Coord) error {
	cell := s.cells[src]
	if cell == nil {
		return nil
	}
	if !s.inBounds(dst) {
		return fmt.Errorf("move to %s: %w", dst.Ref(), ErrOutOfRange)
	}
	if !s.protection.CanEditCell(dst) || !s.protection.CanEditCell(src) {
		return fmt.Errorf("move %s to %s: %w", src.Ref(), dst.Ref(), ErrProtected)
	}

	delete(s.cells, src)
	s.cells[dst] = cell
	s.modified = true
	s.invalidate(src)
	s.invalidate(dst)

	s.engine.UpdateCellDependency(src, "")
	s.engine.UpdateCellDependency(dst, cell.Formula())
	s.engine.MarkDirty(src)
	s.engine.MarkDirty(dst)
	return nil
}

// Recalculate forces a full recalculation of every formula cell.
func (s *Sheet) Recalculate() RecalcStats {
	return s.engine.Recalculate(true)
}

// NeedsRecalc reports whether edits are pending recalculation.
func (s *Sheet) NeedsRecalc() bool { return s.engine.NeedsRecalc() }

// RecalcMode returns the active recalculation mode.
func (s *Sheet) RecalcMode() RecalcMode { return s.engine.Mode() }

// SetRecalcMode switches between automatic and manual recalculation.
func (s *Sheet) SetRecalcMode(mode RecalcMode) { s.engine.SetMode(mode) }

// RecalcOrder returns the active recalculation order.
func (s *Sheet) RecalcOrder() RecalcOrder { return s.engine.Order() }

// SetRecalcOrder switches the evaluation sequence.
func (s *Sheet) SetRecalcOrder(order RecalcOrder) { s.engine.SetOrder(order) }

// HasCircularRefs reports whether any circular reference has been hit since
// the last recalculation.
func (s *Sheet) HasCircularRefs() bool {
	return len(s.circular) > 0 || len(s.engine.circular) > 0
}

// CircularRefs returns the cells involved in circular references, sorted.
func (s *Sheet) CircularRefs() []Coord {
	merged := make(map[Coord]struct{}, len(s.circular)+len(s.engine.circular))
	for coord := range s.circular {
		merged[coord] = struct{}{}
	}
	for coord := range s.engine.circular {
		merged[coord] = struct{}{}
	}
	return sortedCoordSet(merged)
}

// ColWidth returns the display width of a column.
func (s *Sheet) ColWidth(col int) int {
	if w, ok := s.colWidths[col]; ok {
		return w
	}
	return s.globals.ColWidth
}

// SetColWidth sets a column's width, clamped to the legal range. Setting
// the default width removes the override.
func (s *Sheet) SetColWidth(col, width int) {
	if width < MinColWidth {
		width = MinColWidth
	} else if width > MaxColWidth {
		width = MaxColWidth
	}
	if width == s.globals.ColWidth {
		delete(s.colWidths, col)
	} else {
		s.colWidths[col] = width
	}
	s.modified = true
}

// RowHeight returns the display height of a row.
func (s *Sheet) RowHeight(row int) int {
	if h, ok := s.rowHeights[row]; ok {
		return h
	}
	return DefaultRowHeight
}

// SetRowHeight sets a row's height, clamped to the legal range.
func (s *Sheet) SetRowHeight(row, height int) {
	if height < MinRowHeight {
		height = MinRowHeight
	} else if height > MaxRowHeight {
		height = MaxRowHeight
	}
	if height == DefaultRowHeight {
		delete(s.rowHeights, row)
	} else {
		s.rowHeights[row] = height
	}
	s.modified = true
}

// AutoFitColWidth widens or narrows a column to its longest display text,
// within the legal width range.
func (s *Sheet) AutoFitColWidth(col int) {
	widest := MinColWidth
	for coord, cell := range s.cells {
		if coord.Col != col || cell.IsEmpty() {
			continue
		}
		if n := len(s.DisplayText(coord)); n > widest {
			widest = n
		}
	}
	s.SetColWidth(col, widest)
}

// DefaultFormat returns the sheet-wide default format code.
func (s *Sheet) DefaultFormat() string { return s.globals.Format }

// LabelPrefix returns the default label alignment prefix.
func (s *Sheet) LabelPrefix() string { return s.globals.LabelPrefix }

// FrozenRows returns the number of frozen title rows.
func (s *Sheet) FrozenRows() int { return s.frozenRows }

// FrozenCols returns the number of frozen title columns.
func (s *Sheet) FrozenCols() int { return s.frozenCols }

// SetFrozen freezes the first rows and cols as non-scrolling titles.
func (s *Sheet) SetFrozen(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	s.frozenRows = rows
	s.frozenCols = cols
	s.modified = true
}

// Clear removes every cell, dimension override, and named range, and
// resets all settings to their defaults.
func (s *Sheet) Clear() {
	s.cells = make(map[Coord]*Cell)
	s.cache = make(map[Coord]Value)
	s.circular = make(map[Coord]struct{})
	s.colWidths = make(map[int]int)
	s.rowHeights = make(map[int]int)
	s.names.Clear()
	s.engine.graph.Clear()
	s.engine.dirty = make(map[Coord]struct{})
	s.engine.circular = make(map[Coord]struct{})
	s.frozenRows = 0
	s.frozenCols = 0
	s.globals = GlobalSettings{
		Format:      "G",
		LabelPrefix: "'",
		ColWidth:    DefaultColWidth,
		ZeroDisplay: true,
	}
	s.modified = false
}
