package lotuscalc

import "strings"

// Axis selects the dimension a structural edit operates on.
type Axis int

const (
	AxisRow Axis = iota
	AxisCol
)

const brokenRef = "#REF!"

// AdjustForCopy rewrites a formula for pasting at an offset from its
// source. Relative reference axes shift by the deltas and clamp to the
// sheet bounds; absolute axes are left alone.
func AdjustForCopy(formula string, rowDelta, colDelta, maxRow, maxCol int) string {
	return rewriteRefs(formula, func(ref CellRef) string {
		return ref.Shifted(rowDelta, colDelta, maxRow, maxCol).String()
	})
}

// AdjustForStructuralChange rewrites a formula after a row or column is
// inserted (shift +1) or deleted (shift -1) at boundary. References on the
// deleted line, or pushed outside the sheet, become #REF!. Both relative
// and absolute references move: absolute pins a cell against copying, not
// against the sheet reshaping under it.
func AdjustForStructuralChange(formula string, axis Axis, boundary, shift, maxRow, maxCol int) string {
	return rewriteRefs(formula, func(ref CellRef) string {
		pos, max := ref.Row, maxRow
		if axis == AxisCol {
			pos, max = ref.Col, maxCol
		}
		if shift < 0 && pos == boundary {
			return brokenRef
		}
		if pos >= boundary {
			pos += shift
			if pos < 0 || pos > max {
				return brokenRef
			}
			if axis == AxisRow {
				ref.Row = pos
			} else {
				ref.Col = pos
			}
		}
		return ref.String()
	})
}

// rewriteRefs re-tokenizes the formula and splices a rewritten reference
// over each cell token, copying every other byte through untouched. String
// literals, function names, and named references never match, so they
// survive verbatim. Matched references come back normalized (upper-case
// column letters) even when unchanged.
func rewriteRefs(formula string, rewrite func(CellRef) string) string {
	tokens := Tokenize(formula)

	var b strings.Builder
	last := 0
	for _, tok := range tokens {
		if tok.Kind != TokenCell {
			continue
		}
		ref, err := ParseCellRef(tok.Raw)
		if err != nil {
			continue
		}
		b.WriteString(formula[last:tok.Pos])
		b.WriteString(rewrite(ref))
		last = tok.Pos + len(tok.Raw)
	}
	b.WriteString(formula[last:])
	return b.String()
}
