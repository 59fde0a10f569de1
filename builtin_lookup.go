package lotuscalc

import (
	"strconv"
	"strings"
)

// lookupFunctions returns the table-lookup and reference builtins. These
// are the functions that care about range shape, which is why ranges
// evaluate to rectangular arrays rather than flat lists.
func lookupFunctions() map[string]Function {
	return map[string]Function{
		"VLOOKUP": lookupVlookup,
		"HLOOKUP": lookupHlookup,
		"LOOKUP":  lookupLookup,
		"MATCH":   lookupMatch,

		"INDEX":    lookupIndex,
		"OFFSET":   lookupOffset,
		"INDIRECT": lookupIndirect,
		"ROW":      lookupRow,
		"COLUMN":   lookupColumn,
		"ADDRESS":  lookupAddress,

		"ROWS":      lookupRows,
		"COLS":      lookupCols,
		"COLUMNS":   lookupCols,
		"TRANSPOSE": lookupTranspose,
	}
}

// lookupFloat parses a value as a float the strict way: numeric text
// converts, but grouping commas are not stripped.
func lookupFloat(v Value) (float64, bool) {
	switch v.Kind() {
	case KindNumber:
		return v.Num(), true
	case KindBool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// strictInt reads an integer argument, rejecting fractional text. The
// callers turn a rejection into #ERR!.
func strictInt(v Value) (int, bool) {
	switch v.Kind() {
	case KindNumber:
		return int(v.Num()), true
	case KindBool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case KindText:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64)
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// truthy is plain truthiness: non-zero numbers, non-empty text. It is what
// the optional range-lookup flag runs through, so the text "FALSE" is,
// perhaps surprisingly, true.
func truthy(v Value) bool {
	switch v.Kind() {
	case KindNumber:
		return v.Num() != 0
	case KindBool:
		return v.Bool()
	case KindText:
		return v.Str() != ""
	case KindError:
		return true
	case KindArray:
		return len(v.Rows()) > 0
	}
	return false
}

// compareForSort orders two values numerically when both parse as numbers,
// otherwise by uppercased text.
func compareForSort(a, b Value) int {
	an, aok := lookupFloat(a)
	bn, bok := lookupFloat(b)
	if aok && bok {
		switch {
		case an > bn:
			return 1
		case an < bn:
			return -1
		}
		return 0
	}
	as := strings.ToUpper(toText(a))
	bs := strings.ToUpper(toText(b))
	switch {
	case as > bs:
		return 1
	case as < bs:
		return -1
	}
	return 0
}

func isSortedAscending(values []Value) bool {
	for i := 1; i < len(values); i++ {
		if compareForSort(values[i-1], values[i]) > 0 {
			return false
		}
	}
	return true
}

// lookupMatches implements the two matching modes. Range mode asks whether
// the table value is <= the lookup value; exact mode compares text
// case-insensitively and everything else by loose equality.
func lookupMatches(lookup, table Value, rangeLookup bool) bool {
	if rangeLookup {
		tn, tok := lookupFloat(table)
		ln, lok := lookupFloat(lookup)
		if tok && lok {
			return tn <= ln
		}
		return strings.ToUpper(toText(table)) <= strings.ToUpper(toText(lookup))
	}
	if lookup.IsText() && table.IsText() {
		return strings.ToUpper(lookup.Str()) == strings.ToUpper(table.Str())
	}
	return valueEquals(lookup, table)
}

// lookupVlookup searches the first column of a table. Range mode (the
// default) requires a sorted first column and takes the last row whose
// first cell is <= the lookup value; exact mode takes the first hit.
func lookupVlookup(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	table := args[1]
	if !table.IsArray() || len(table.Rows()) == 0 {
		return NewError(ErrorNA)
	}
	rows := table.Rows()

	colIndex, ok := strictInt(args[2])
	if !ok {
		return NewError(ErrorErr)
	}
	colIdx := colIndex - 1
	rangeMatch := true
	if len(args) > 3 {
		rangeMatch = truthy(args[3])
	}

	if colIdx < 0 || colIdx >= len(rows[0]) {
		return NewError(ErrorRef)
	}

	if rangeMatch {
		firstCol := make([]Value, len(rows))
		for i, row := range rows {
			firstCol[i] = row[0]
		}
		if !isSortedAscending(firstCol) {
			return NewError(ErrorNA)
		}
	}

	lastMatch := -1
	for i, row := range rows {
		if rangeMatch {
			if lookupMatches(args[0], row[0], true) {
				lastMatch = i
			}
		} else if lookupMatches(args[0], row[0], false) {
			return row[colIdx]
		}
	}
	if rangeMatch && lastMatch >= 0 {
		return rows[lastMatch][colIdx]
	}
	return NewError(ErrorNA)
}

// lookupHlookup is VLOOKUP turned sideways: it searches the first row and
// returns from the indexed row.
func lookupHlookup(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	table := args[1]
	if !table.IsArray() || len(table.Rows()) == 0 {
		return NewError(ErrorNA)
	}
	rows := table.Rows()

	rowIndex, ok := strictInt(args[2])
	if !ok {
		return NewError(ErrorErr)
	}
	rowIdx := rowIndex - 1
	rangeMatch := true
	if len(args) > 3 {
		rangeMatch = truthy(args[3])
	}

	if rowIdx < 0 || rowIdx >= len(rows) {
		return NewError(ErrorRef)
	}

	firstRow := rows[0]
	if rangeMatch && !isSortedAscending(firstRow) {
		return NewError(ErrorNA)
	}

	lastMatch := -1
	for i, cell := range firstRow {
		if rangeMatch {
			if lookupMatches(args[0], cell, true) {
				lastMatch = i
			}
		} else if lookupMatches(args[0], cell, false) {
			return rows[rowIdx][i]
		}
	}
	if rangeMatch && lastMatch >= 0 {
		return rows[rowIdx][lastMatch]
	}
	return NewError(ErrorNA)
}

// lookupLookup finds the last value <= the lookup value, scanning the whole
// vector, and returns the corresponding element of the result vector (or of
// the lookup vector itself when no result vector is given).
func lookupLookup(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	if !args[1].IsArray() {
		return NewError(ErrorNA)
	}
	lv := flatten(args[1:2])

	rv := lv
	if len(args) > 2 {
		rv = flatten(args[2:3])
	}

	lastMatch := -1
	for i, val := range lv {
		if lookupMatches(args[0], val, true) {
			lastMatch = i
		}
	}
	if lastMatch >= 0 && lastMatch < len(rv) {
		return rv[lastMatch]
	}
	return NewError(ErrorNA)
}

// lookupMatch returns the 1-based position of a value. Type 0 is exact
// match; type 1 walks forward while values stay <= the lookup value; any
// other type walks while they stay >=. Both walks stop at the first
// failure and report the last position that held, 0 when none did.
func lookupMatch(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	if !args[1].IsArray() {
		return Number(0)
	}
	flat := flatten(args[1:2])

	mtype := 1
	if len(args) > 2 {
		m, ok := strictInt(args[2])
		if !ok {
			return NewError(ErrorErr)
		}
		mtype = m
	}

	if mtype == 0 {
		for i, val := range flat {
			if lookupMatches(args[0], val, false) {
				return Number(float64(i + 1))
			}
		}
		return Number(0)
	}

	wantAscending := mtype == 1
	lastMatch := 0
	for i, val := range flat {
		var holds bool
		vn, vok := lookupFloat(val)
		ln, lok := lookupFloat(args[0])
		if vok && lok {
			if wantAscending {
				holds = vn <= ln
			} else {
				holds = vn >= ln
			}
		} else {
			vs := strings.ToUpper(toText(val))
			ls := strings.ToUpper(toText(args[0]))
			if wantAscending {
				holds = vs <= ls
			} else {
				holds = vs >= ls
			}
		}
		if !holds {
			break
		}
		lastMatch = i + 1
	}
	return Number(float64(lastMatch))
}

// lookupIndex picks a 1-based row (and optionally column) out of an array.
// With the column omitted the whole row comes back.
func lookupIndex(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	array := args[0]
	if !array.IsArray() {
		if valueEquals(args[1], Number(1)) {
			return array
		}
		return NewError(ErrorRef)
	}
	rows := array.Rows()

	rowNum, ok := strictInt(args[1])
	if !ok {
		return NewError(ErrorErr)
	}
	rowIdx := rowNum - 1
	if rowIdx < 0 || rowIdx >= len(rows) {
		return NewError(ErrorRef)
	}

	if len(args) < 3 {
		return Array([][]Value{rows[rowIdx]})
	}

	colNum, ok := strictInt(args[2])
	if !ok {
		return NewError(ErrorErr)
	}
	colIdx := colNum - 1
	if colIdx < 0 || colIdx >= len(rows[rowIdx]) {
		return NewError(ErrorRef)
	}
	return rows[rowIdx][colIdx]
}

// lookupOffset would need unevaluated reference arguments to work; by the
// time a function runs, references are already values. It reports #REF!.
func lookupOffset(_ *CallContext, _ []Value) Value {
	return NewError(ErrorRef)
}

// lookupIndirect resolves a reference held in text against the grid. A
// colon makes it a range. Anything unparsable is #REF!.
func lookupIndirect(cc *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	if cc.Grid == nil {
		return NewError(ErrorRef)
	}
	ref := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(toText(args[0])), "$", ""))
	if ref == "" {
		return NewError(ErrorRef)
	}

	if start, end, found := strings.Cut(ref, ":"); found {
		if _, err := ParseCellRef(start); err != nil {
			return NewError(ErrorRef)
		}
		if _, err := ParseCellRef(end); err != nil {
			return NewError(ErrorRef)
		}
		return cc.Grid.RangeValue(start, end, cc.Ctx)
	}
	if _, err := ParseCellRef(ref); err != nil {
		return NewError(ErrorRef)
	}
	return cc.Grid.CellValue(ref, cc.Ctx)
}

// lookupRow reports the current cell's 1-based row when called without
// arguments. With an argument there is no reference left to inspect, so it
// falls back to 1.
func lookupRow(cc *CallContext, args []Value) Value {
	if len(args) == 0 && cc.HasCell {
		return Number(float64(cc.Cell.Row + 1))
	}
	return Number(1)
}

func lookupColumn(cc *CallContext, args []Value) Value {
	if len(args) == 0 && cc.HasCell {
		return Number(float64(cc.Cell.Col + 1))
	}
	return Number(1)
}

// lookupAddress renders a row and column as reference text. The
// absolute-marker styles are 1 $A$1, 2 A$1, 3 $A1, 4 A1.
func lookupAddress(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	r, rok := strictInt(args[0])
	c, cok := strictInt(args[1])
	if !rok || !cok {
		return NewError(ErrorErr)
	}
	col := ColToName(c - 1)

	absType := 1
	if len(args) > 2 && truthy(args[2]) {
		a, ok := strictInt(args[2])
		if !ok {
			return NewError(ErrorErr)
		}
		absType = a
	}

	row := strconv.Itoa(r)
	switch absType {
	case 1:
		return Text("$" + col + "$" + row)
	case 2:
		return Text(col + "$" + row)
	case 3:
		return Text("$" + col + row)
	}
	return Text(col + row)
}

func lookupRows(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	if !args[0].IsArray() {
		return Number(1)
	}
	return Number(float64(len(args[0].Rows())))
}

func lookupCols(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	if !v.IsArray() || len(v.Rows()) == 0 {
		return Number(1)
	}
	return Number(float64(len(v.Rows()[0])))
}

func lookupTranspose(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	if !v.IsArray() {
		return Array([][]Value{{v}})
	}
	rows := v.Rows()
	if len(rows) == 0 {
		return Array([][]Value{{}})
	}

	out := make([][]Value, len(rows[0]))
	for c := range rows[0] {
		out[c] = make([]Value, len(rows))
		for r := range rows {
			out[c][r] = rows[r][c]
		}
	}
	return Array(out)
}
