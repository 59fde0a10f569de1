package lotuscalc

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Coord identifies a cell by 0-based row and column. It is the map key type
// used by the sheet, the dependency graph, and the recalculation engine.
type Coord struct {
	Row int
	Col int
}

func sortCoords(coords []Coord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Row != coords[j].Row {
			return coords[i].Row < coords[j].Row
		}
		return coords[i].Col < coords[j].Col
	})
}

// Ref returns the A1-style reference for the coordinate.
func (c Coord) Ref() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row+1)
}

// String implements fmt.Stringer.
func (c Coord) String() string { return c.Ref() }

// ColToName converts a 0-based column index to its letter name (0 -> "A",
// 25 -> "Z", 26 -> "AA").
func ColToName(col int) string {
	col++
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column letter name to its 0-based index. Case does
// not matter.
func NameToCol(name string) int {
	col := 0
	for _, ch := range strings.ToUpper(name) {
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1
}

// cellRefPattern matches a single cell reference with optional $ markers,
// e.g. "A1", "$B2", "C$3", "$D$4".
var cellRefPattern = regexp.MustCompile(`^(\$?)([A-Za-z]+)(\$?)(\d+)$`)

// ParseCoord parses an A1-style reference, ignoring any $ markers.
func ParseCoord(ref string) (Coord, error) {
	cr, err := ParseCellRef(ref)
	if err != nil {
		return Coord{}, err
	}
	return Coord{Row: cr.Row, Col: cr.Col}, nil
}

// CellRef is a single cell reference with absolute/relative markers per axis.
// Row and Col are 0-based.
type CellRef struct {
	Row    int
	Col    int
	RowAbs bool
	ColAbs bool
}

// ParseCellRef parses a reference like "A1" or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	m := cellRefPattern.FindStringSubmatch(s)
	if m == nil {
		return CellRef{}, fmt.Errorf("parse %q: %w", s, ErrBadReference)
	}
	rowNum, err := strconv.Atoi(m[4])
	if err != nil || rowNum < 1 {
		return CellRef{}, fmt.Errorf("parse %q: %w", s, ErrBadReference)
	}
	return CellRef{
		Row:    rowNum - 1,
		Col:    NameToCol(m[2]),
		RowAbs: m[3] == "$",
		ColAbs: m[1] == "$",
	}, nil
}

// Coord returns the position without the absolute markers.
func (r CellRef) Coord() Coord { return Coord{Row: r.Row, Col: r.Col} }

// String renders the reference with $ markers where the axis is absolute.
func (r CellRef) String() string {
	var b strings.Builder
	if r.ColAbs {
		b.WriteByte('$')
	}
	b.WriteString(ColToName(r.Col))
	if r.RowAbs {
		b.WriteByte('$')
	}
	b.WriteString(strconv.Itoa(r.Row + 1))
	return b.String()
}

// Shifted returns the reference moved by the given deltas, as when a formula
// is copied. Absolute axes keep their position; relative axes shift and clamp
// into [0, max].
func (r CellRef) Shifted(rowDelta, colDelta, maxRow, maxCol int) CellRef {
	out := r
	if !r.RowAbs {
		out.Row = clamp(r.Row+rowDelta, 0, maxRow)
	}
	if !r.ColAbs {
		out.Col = clamp(r.Col+colDelta, 0, maxCol)
	}
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// RangeRef is a rectangular range bounded by two cell references.
type RangeRef struct {
	Start CellRef
	End   CellRef
}

// ParseRangeRef parses a range like "A1:B5" or "$A$1:$B$5".
func ParseRangeRef(s string) (RangeRef, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return RangeRef{}, fmt.Errorf("parse range %q: %w", s, ErrBadReference)
	}
	start, err := ParseCellRef(parts[0])
	if err != nil {
		return RangeRef{}, err
	}
	end, err := ParseCellRef(parts[1])
	if err != nil {
		return RangeRef{}, err
	}
	return RangeRef{Start: start, End: end}, nil
}

// String renders the range as start:end.
func (r RangeRef) String() string {
	return r.Start.String() + ":" + r.End.String()
}

// Normalized returns the range with start at the top-left and end at the
// bottom-right. Absolute markers stay with their reference.
func (r RangeRef) Normalized() RangeRef {
	out := r
	if out.Start.Row > out.End.Row {
		out.Start.Row, out.End.Row = out.End.Row, out.Start.Row
	}
	if out.Start.Col > out.End.Col {
		out.Start.Col, out.End.Col = out.End.Col, out.Start.Col
	}
	return out
}

// Coords returns every cell position inside the range in row-major order.
func (r RangeRef) Coords() []Coord {
	n := r.Normalized()
	out := make([]Coord, 0, (n.End.Row-n.Start.Row+1)*(n.End.Col-n.Start.Col+1))
	for row := n.Start.Row; row <= n.End.Row; row++ {
		for col := n.Start.Col; col <= n.End.Col; col++ {
			out = append(out, Coord{Row: row, Col: col})
		}
	}
	return out
}

// Contains reports whether the coordinate lies inside the range.
func (r RangeRef) Contains(c Coord) bool {
	n := r.Normalized()
	return c.Row >= n.Start.Row && c.Row <= n.End.Row &&
		c.Col >= n.Start.Col && c.Col <= n.End.Col
}
