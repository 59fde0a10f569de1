package lotuscalc

import (
	"math"
	"sort"
)

// statisticalFunctions returns the aggregate builtins. Values without a
// numeric form are skipped rather than coerced, so text and errors inside a
// range never poison an aggregate. Several names here override entries from
// the math category; registration order makes these versions win.
func statisticalFunctions() map[string]Function {
	return map[string]Function{
		"SUM":        statSum,
		"AVG":        statAvg,
		"AVERAGE":    statAvg,
		"COUNT":      statCount,
		"COUNTA":     statCountA,
		"COUNTBLANK": statCountBlank,
		"MIN":        statMin,
		"MAX":        statMax,
		"PRODUCT":    statProduct,

		"COUNTIF":   statCountIf,
		"SUMIF":     statSumIf,
		"AVERAGEIF": statAvgIf,

		"STD":   statStd,
		"STDS":  statStd,
		"STDP":  statStdP,
		"STDEV": statStd,
		"VAR":   statVar,
		"VARS":  statVar,
		"VARP":  statVarP,
		"SUMSQ": statSumSq,

		"MEDIAN":     statMedian,
		"MODE":       statMode,
		"LARGE":      statLarge,
		"SMALL":      statSmall,
		"RANK":       statRank,
		"PERCENTILE": statPercentile,
		"QUARTILE":   statQuartile,

		"RAND":        statRand,
		"RANDBETWEEN": statRandBetween,

		"SUMPRODUCT": statSumProduct,
		"PERMUT":     statPermut,
		"COMBIN":     statCombin,
		"FACT":       statFact,

		"GEOMEAN": statGeoMean,
		"HARMEAN": statHarMean,
	}
}

func statSum(_ *CallContext, args []Value) Value {
	total := 0.0
	for _, n := range collectNumbers(args) {
		total += n
	}
	return Number(total)
}

func statAvg(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	total := 0.0
	for _, n := range numbers {
		total += n
	}
	return Number(total / float64(len(numbers)))
}

func statCount(_ *CallContext, args []Value) Value {
	return Number(float64(len(collectNumbers(args))))
}

func statCountA(_ *CallContext, args []Value) Value {
	count := 0
	for _, v := range flatten(args) {
		if !v.IsEmpty() {
			count++
		}
	}
	return Number(float64(count))
}

func statCountBlank(_ *CallContext, args []Value) Value {
	count := 0
	for _, v := range flatten(args) {
		if v.IsEmpty() {
			count++
		}
	}
	return Number(float64(count))
}

func statMin(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	min := numbers[0]
	for _, n := range numbers[1:] {
		if n < min {
			min = n
		}
	}
	return Number(min)
}

func statMax(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	max := numbers[0]
	for _, n := range numbers[1:] {
		if n > max {
			max = n
		}
	}
	return Number(max)
}

func statProduct(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	result := 1.0
	for _, n := range numbers {
		result *= n
	}
	return Number(result)
}

// statCriteriaPick walks the test range and keeps the parallel entry from
// the value range for every cell that satisfies the criteria. Criteria
// strings mean the same thing here as in the database functions, so
// ">=10", "<>x", and wildcard patterns all work.
func statCriteriaPick(testRange, criteria, valueRange Value) []Value {
	tests := flatten([]Value{testRange})
	values := flatten([]Value{valueRange})
	crit := toText(criteria)
	var picked []Value
	for i, cell := range tests {
		if i >= len(values) {
			break
		}
		if dbConditionHolds(cell, crit) {
			picked = append(picked, values[i])
		}
	}
	return picked
}

func statCountIf(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	return Number(float64(len(statCriteriaPick(args[0], args[1], args[0]))))
}

// statSumIf totals the value range entries whose test cell meets the
// criteria. With two arguments the test range is its own value range.
func statSumIf(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	total := 0.0
	for _, v := range statCriteriaPick(args[0], args[1], argOr(args, 2, args[0])) {
		if n, ok := toNumberOpt(v); ok {
			total += n
		}
	}
	return Number(total)
}

// statAvgIf averages the picked numeric entries. No numeric match at all
// means a division by zero, not an average of zero.
func statAvgIf(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	total, count := 0.0, 0
	for _, v := range statCriteriaPick(args[0], args[1], argOr(args, 2, args[0])) {
		if n, ok := toNumberOpt(v); ok {
			total += n
			count++
		}
	}
	if count == 0 {
		return NewError(ErrorDivZero)
	}
	return Number(total / float64(count))
}

func mean(numbers []float64) float64 {
	total := 0.0
	for _, n := range numbers {
		total += n
	}
	return total / float64(len(numbers))
}

func sumSquaredDiffs(numbers []float64) float64 {
	m := mean(numbers)
	total := 0.0
	for _, n := range numbers {
		d := n - m
		total += d * d
	}
	return total
}

// statStd is the sample standard deviation, n-1 denominator.
func statStd(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) < 2 {
		return Number(0)
	}
	return Number(math.Sqrt(sumSquaredDiffs(numbers) / float64(len(numbers)-1)))
}

// statStdP is the population standard deviation, n denominator.
func statStdP(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	return Number(math.Sqrt(sumSquaredDiffs(numbers) / float64(len(numbers))))
}

func statVar(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) < 2 {
		return Number(0)
	}
	return Number(sumSquaredDiffs(numbers) / float64(len(numbers)-1))
}

func statVarP(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	return Number(sumSquaredDiffs(numbers) / float64(len(numbers)))
}

func statSumSq(_ *CallContext, args []Value) Value {
	total := 0.0
	for _, n := range collectNumbers(args) {
		total += n * n
	}
	return Number(total)
}

func statMedian(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	sort.Float64s(numbers)
	mid := len(numbers) / 2
	if len(numbers)%2 == 0 {
		return Number((numbers[mid-1] + numbers[mid]) / 2)
	}
	return Number(numbers[mid])
}

// statMode returns the most frequent value, preferring the smallest on a
// tie. When every value is unique the first value stands in for a mode.
func statMode(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	counts := make(map[float64]int, len(numbers))
	for _, n := range numbers {
		counts[n]++
	}
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 1 {
		return Number(numbers[0])
	}
	mode := math.Inf(1)
	for n, c := range counts {
		if c == maxCount && n < mode {
			mode = n
		}
	}
	return Number(mode)
}

// rankK reads the k argument of LARGE and SMALL. Zero and non-numeric both
// fall back to 1.
func rankK(v Value) int {
	n, ok := toNumberOpt(v)
	if !ok || n == 0 {
		return 1
	}
	return int(n)
}

func statLarge(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return Number(math.NaN())
	}
	numbers := collectNumbers(args[:len(args)-1])
	sort.Sort(sort.Reverse(sort.Float64Slice(numbers)))
	k := rankK(args[len(args)-1])
	if k < 1 || k > len(numbers) {
		return Number(math.NaN())
	}
	return Number(numbers[k-1])
}

func statSmall(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return Number(math.NaN())
	}
	numbers := collectNumbers(args[:len(args)-1])
	sort.Float64s(numbers)
	k := rankK(args[len(args)-1])
	if k < 1 || k > len(numbers) {
		return Number(math.NaN())
	}
	return Number(numbers[k-1])
}

// statRank finds the 1-based position of a value in the sorted list, 0 when
// absent. Order 0 ranks descending (largest first), anything else ascending.
func statRank(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return Number(0)
	}
	value, ok := toNumberOpt(args[0])
	if !ok {
		return Number(0)
	}

	var numbers []float64
	order := 0
	if len(args) > 2 {
		numbers = collectNumbers(args[1 : len(args)-1])
		o, ok := toNumberOpt(args[len(args)-1])
		if !ok {
			return NewError(ErrorErr)
		}
		order = int(o)
	} else {
		numbers = collectNumbers(args[1:2])
	}

	if order == 0 {
		sort.Sort(sort.Reverse(sort.Float64Slice(numbers)))
	} else {
		sort.Float64s(numbers)
	}
	for i, n := range numbers {
		if n == value {
			return Number(float64(i + 1))
		}
	}
	return Number(0)
}

func percentileOf(sorted []float64, k float64) float64 {
	if len(sorted) == 0 || k < 0 || k > 1 {
		return math.NaN()
	}
	idx := k * float64(len(sorted)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func statPercentile(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return Number(math.NaN())
	}
	numbers := collectNumbers(args[:len(args)-1])
	sort.Float64s(numbers)
	return Number(percentileOf(numbers, toNumber(args[len(args)-1])))
}

func statQuartile(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return Number(math.NaN())
	}
	q := toInt(args[len(args)-1])
	if q < 0 || q > 4 {
		return Number(math.NaN())
	}
	quarters := [5]float64{0, 0.25, 0.5, 0.75, 1}
	numbers := collectNumbers(args[:len(args)-1])
	sort.Float64s(numbers)
	return Number(percentileOf(numbers, quarters[q]))
}

func statRand(cc *CallContext, _ []Value) Value {
	return Number(cc.Rand.Float64())
}

// statRandBetween returns a random integer in [bottom, top]. An inverted or
// non-numeric range surfaces as #ERR! through the evaluator's panic guard.
func statRandBetween(cc *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	b, ok := toNumberOpt(args[0])
	if !ok {
		return NewError(ErrorErr)
	}
	t, ok := toNumberOpt(args[1])
	if !ok {
		return NewError(ErrorErr)
	}
	return Number(float64(int(b) + cc.Rand.Intn(int(t)-int(b)+1)))
}

// statSumProduct multiplies corresponding elements across the argument
// arrays and sums the products, stopping at the shortest array. Scalars act
// as one-element arrays.
func statSumProduct(_ *CallContext, args []Value) Value {
	var arrays [][]float64
	for _, arg := range args {
		if arg.IsArray() {
			flat := flatten([]Value{arg})
			arr := make([]float64, len(flat))
			for i, v := range flat {
				arr[i] = toNumber(v)
			}
			arrays = append(arrays, arr)
		} else {
			arrays = append(arrays, []float64{toNumber(arg)})
		}
	}
	if len(arrays) == 0 {
		return Number(0)
	}

	minLen := len(arrays[0])
	for _, arr := range arrays[1:] {
		if len(arr) < minLen {
			minLen = len(arr)
		}
	}

	result := 0.0
	for i := 0; i < minLen; i++ {
		product := 1.0
		for _, arr := range arrays {
			product *= arr[i]
		}
		result += product
	}
	return Number(result)
}

// statPermut is n!/(n-k)!.
func statPermut(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	n, nok := toNumberOpt(args[0])
	k, kok := toNumberOpt(args[1])
	if !nok || !kok {
		return NewError(ErrorErr)
	}
	nv, kv := int(n), int(k)
	if nv < 0 || kv < 0 || kv > nv {
		return Number(0)
	}
	result := 1.0
	for i := nv - kv + 1; i <= nv; i++ {
		result *= float64(i)
	}
	return Number(result)
}

// statCombin is n!/(k!(n-k)!).
func statCombin(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	n, nok := toNumberOpt(args[0])
	k, kok := toNumberOpt(args[1])
	if !nok || !kok {
		return NewError(ErrorErr)
	}
	nv, kv := int(n), int(k)
	if nv < 0 || kv < 0 || kv > nv {
		return Number(0)
	}
	if kv > nv-kv {
		kv = nv - kv
	}
	result := 1.0
	for i := 0; i < kv; i++ {
		result = result * float64(nv-i) / float64(i+1)
	}
	return Number(result)
}

func statFact(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n, ok := toNumberOpt(args[0])
	if !ok {
		return NewError(ErrorErr)
	}
	nv := int(n)
	if nv < 0 {
		return Number(0)
	}
	result := 1.0
	for i := 2; i <= nv; i++ {
		result *= float64(i)
	}
	return Number(result)
}

func statGeoMean(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	product := 1.0
	for _, n := range numbers {
		if n <= 0 {
			return Number(0)
		}
		product *= n
	}
	return Number(math.Pow(product, 1/float64(len(numbers))))
}

func statHarMean(_ *CallContext, args []Value) Value {
	numbers := collectNumbers(args)
	if len(numbers) == 0 {
		return Number(0)
	}
	reciprocals := 0.0
	for _, n := range numbers {
		if n == 0 {
			return Number(0)
		}
		reciprocals += 1 / n
	}
	return Number(float64(len(numbers)) / reciprocals)
}
