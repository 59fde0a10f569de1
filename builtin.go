package lotuscalc

import (
	"strconv"
	"strings"
)

// Coercion helpers shared by the builtin function categories. Aggregates use
// the optional forms, which skip values that are not numeric; scalar math
// uses the forcing forms, which fall back to zero.

// toNumber forces a value to a number. Numeric text counts, with grouping
// commas stripped; anything else is zero.
func toNumber(v Value) float64 {
	n, ok := toNumberOpt(v)
	if !ok {
		return 0
	}
	return n
}

// toNumberOpt converts a value to a number where one exists. Booleans are
// 1 and 0. Text converts only when it parses, commas stripped. Errors and
// arrays have no numeric form.
func toNumberOpt(v Value) (float64, bool) {
	switch v.Kind() {
	case KindNumber:
		return v.Num(), true
	case KindBool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case KindText:
		n, err := strconv.ParseFloat(strings.ReplaceAll(v.Str(), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func toInt(v Value) int {
	return int(toNumber(v))
}

// collectNumbers flattens arguments, arrays included, and keeps every value
// that has a numeric form.
func collectNumbers(args []Value) []float64 {
	var numbers []float64
	for _, v := range flatten(args) {
		if n, ok := toNumberOpt(v); ok {
			numbers = append(numbers, n)
		}
	}
	return numbers
}

// argOr returns the i-th argument, or the fallback when the caller supplied
// fewer arguments than that.
func argOr(args []Value, i int, fallback Value) Value {
	if i < len(args) {
		return args[i]
	}
	return fallback
}
