package lotuscalc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// databaseFunctions returns the database statistics builtins. They all take
// a table whose first row holds field names, a field selector, and a
// criteria table whose first row names fields and whose remaining rows are
// alternative conditions.
func databaseFunctions() map[string]Function {
	return map[string]Function{
		"DSUM": dbSum,

		"DAVG":     dbAvg,
		"DAVERAGE": dbAvg,

		"DCOUNT":  dbCount,
		"DCOUNTA": dbCountA,

		"DMIN": dbMin,
		"DMAX": dbMax,

		"DSTD":   dbStd,
		"DSTDEV": dbStd,
		"DSTDP":  dbStdP,

		"DVAR":  dbVar,
		"DVARP": dbVarP,

		"DGET": dbGet,
	}
}

func dbRows(v Value) ([][]Value, bool) {
	if !v.IsArray() {
		return nil, false
	}
	return v.Rows(), true
}

// dbFieldIndex resolves a field selector to a column index. Numbers are
// 1-based positions; anything else matches a header name without regard
// to case. Returns -1 when nothing matches.
func dbFieldIndex(rows [][]Value, field Value) int {
	if len(rows) == 0 {
		return -1
	}
	headers := rows[0]
	if field.IsNumber() || field.IsBool() {
		idx := int(toNumber(field)) - 1
		if idx >= 0 && idx < len(headers) {
			return idx
		}
		return -1
	}
	name := strings.ToUpper(toText(field))
	for i, h := range headers {
		if strings.ToUpper(toText(h)) == name {
			return i
		}
	}
	return -1
}

// dbMatches reports whether a data row satisfies the criteria table.
// Criteria rows are alternatives, the conditions within one row must all
// hold. A criteria table with no non-empty condition matches every row.
func dbMatches(row []Value, headers []Value, criteria [][]Value) bool {
	if len(criteria) < 2 {
		return true
	}
	critHeaders := criteria[0]
	anyCondition := false
	for _, critRow := range criteria[1:] {
		rowMatches := true
		hasCondition := false
		for i, crit := range critRow {
			if crit.IsEmpty() {
				continue
			}
			hasCondition = true
			anyCondition = true
			if i >= len(critHeaders) {
				continue
			}
			colIdx := -1
			want := strings.ToUpper(toText(critHeaders[i]))
			for j, h := range headers {
				if strings.ToUpper(toText(h)) == want {
					colIdx = j
					break
				}
			}
			if colIdx < 0 || colIdx >= len(row) {
				rowMatches = false
				break
			}
			if !dbConditionHolds(row[colIdx], toText(crit)) {
				rowMatches = false
				break
			}
		}
		if hasCondition && rowMatches {
			return true
		}
	}
	return !anyCondition
}

// dbConditionHolds evaluates one criteria cell against one data cell.
// Inequality prefixes compare numerically and fail when either side does
// not parse. "=" and "<>" compare text without regard to case, as does a
// bare value, which may also use * and ? wildcards.
func dbConditionHolds(cell Value, crit string) bool {
	cellText := strings.ToUpper(toText(cell))
	switch {
	case strings.HasPrefix(crit, ">="):
		return dbNumericTest(cell, crit[2:], func(a, b float64) bool { return a >= b })
	case strings.HasPrefix(crit, "<="):
		return dbNumericTest(cell, crit[2:], func(a, b float64) bool { return a <= b })
	case strings.HasPrefix(crit, "<>"), strings.HasPrefix(crit, "!="):
		return cellText != strings.ToUpper(crit[2:])
	case strings.HasPrefix(crit, ">"):
		return dbNumericTest(cell, crit[1:], func(a, b float64) bool { return a > b })
	case strings.HasPrefix(crit, "<"):
		return dbNumericTest(cell, crit[1:], func(a, b float64) bool { return a < b })
	case strings.HasPrefix(crit, "="):
		return cellText == strings.ToUpper(crit[1:])
	case strings.ContainsAny(crit, "*?"):
		return wildcardMatch(cellText, strings.ToUpper(crit))
	default:
		return cellText == strings.ToUpper(crit)
	}
}

func dbNumericTest(cell Value, operand string, holds func(a, b float64) bool) bool {
	a, okA := lookupFloat(cell)
	b, err := strconv.ParseFloat(strings.TrimSpace(operand), 64)
	if !okA || err != nil {
		return false
	}
	return holds(a, b)
}

// wildcardMatch matches the whole string against a pattern where * stands
// for any run of characters and ? for exactly one.
func wildcardMatch(s, pattern string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// dbMatchingNumbers collects the numeric field values of every data row
// that satisfies the criteria. Non-numeric field values are skipped.
func dbMatchingNumbers(db, field, criteria Value) []float64 {
	rows, ok := dbRows(db)
	if !ok || len(rows) < 2 {
		return nil
	}
	fieldIdx := dbFieldIndex(rows, field)
	if fieldIdx < 0 {
		return nil
	}
	crit, _ := dbRows(criteria)
	var values []float64
	for _, row := range rows[1:] {
		if !dbMatches(row, rows[0], crit) || fieldIdx >= len(row) {
			continue
		}
		if n, ok := toNumberOpt(row[fieldIdx]); ok {
			values = append(values, n)
		}
	}
	return values
}

func dbSum(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	total := 0.0
	for _, n := range dbMatchingNumbers(args[0], args[1], args[2]) {
		total += n
	}
	return Number(total)
}

func dbAvg(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	values := dbMatchingNumbers(args[0], args[1], args[2])
	if len(values) == 0 {
		return Number(0)
	}
	return Number(mean(values))
}

func dbCount(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	return Number(float64(len(dbMatchingNumbers(args[0], args[1], args[2]))))
}

func dbCountA(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	rows, ok := dbRows(args[0])
	if !ok || len(rows) < 2 {
		return Number(0)
	}
	fieldIdx := dbFieldIndex(rows, args[1])
	if fieldIdx < 0 {
		return Number(0)
	}
	crit, _ := dbRows(args[2])
	count := 0
	for _, row := range rows[1:] {
		if dbMatches(row, rows[0], crit) && fieldIdx < len(row) && !row[fieldIdx].IsEmpty() {
			count++
		}
	}
	return Number(float64(count))
}

func dbMin(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	values := dbMatchingNumbers(args[0], args[1], args[2])
	if len(values) == 0 {
		return Number(0)
	}
	low := values[0]
	for _, n := range values[1:] {
		low = math.Min(low, n)
	}
	return Number(low)
}

func dbMax(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	values := dbMatchingNumbers(args[0], args[1], args[2])
	if len(values) == 0 {
		return Number(0)
	}
	high := values[0]
	for _, n := range values[1:] {
		high = math.Max(high, n)
	}
	return Number(high)
}

func dbStd(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	values := dbMatchingNumbers(args[0], args[1], args[2])
	if len(values) < 2 {
		return Number(0)
	}
	return Number(math.Sqrt(sumSquaredDiffs(values) / float64(len(values)-1)))
}

func dbStdP(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	values := dbMatchingNumbers(args[0], args[1], args[2])
	if len(values) == 0 {
		return Number(0)
	}
	return Number(math.Sqrt(sumSquaredDiffs(values) / float64(len(values))))
}

func dbVar(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	values := dbMatchingNumbers(args[0], args[1], args[2])
	if len(values) < 2 {
		return Number(0)
	}
	return Number(sumSquaredDiffs(values) / float64(len(values)-1))
}

func dbVarP(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	values := dbMatchingNumbers(args[0], args[1], args[2])
	if len(values) == 0 {
		return Number(0)
	}
	return Number(sumSquaredDiffs(values) / float64(len(values)))
}

// dbGet returns the single field value of the one row matching the
// criteria. No match is a value error, several matches a number error.
func dbGet(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	rows, ok := dbRows(args[0])
	if !ok || len(rows) < 2 {
		return NewError(ErrorValue)
	}
	fieldIdx := dbFieldIndex(rows, args[1])
	if fieldIdx < 0 {
		return NewError(ErrorValue)
	}
	crit, _ := dbRows(args[2])
	var matches []Value
	for _, row := range rows[1:] {
		if dbMatches(row, rows[0], crit) && fieldIdx < len(row) {
			matches = append(matches, row[fieldIdx])
		}
	}
	switch {
	case len(matches) == 0:
		return NewError(ErrorValue)
	case len(matches) > 1:
		return NewError(ErrorNum)
	}
	return matches[0]
}
