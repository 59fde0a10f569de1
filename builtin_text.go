package lotuscalc

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// stringFunctions returns the text builtins. Positions are 1-based and
// counted in runes, and all coercion goes through toText, so numbers render
// without a trailing ".0".
func stringFunctions() map[string]Function {
	return map[string]Function{
		"LEFT":  textLeft,
		"RIGHT": textRight,
		"MID":   textMid,

		"LENGTH": textLength,
		"LEN":    textLength,

		"FIND":   textFind,
		"SEARCH": textSearch,

		"REPLACE":    textReplace,
		"SUBSTITUTE": textSubstitute,

		"UPPER":  textUpper,
		"LOWER":  textLower,
		"PROPER": textProper,

		"TRIM":  textTrim,
		"CLEAN": textClean,

		"VALUE":  textValue,
		"STRING": textString,
		"TEXT":   textText,
		"CHAR":   textChar,
		"CODE":   textCode,
		"N":      textN,
		"S":      textS,
		"T":      textT,

		"REPEAT": textRepeat,
		"REPT":   textRepeat,

		"EXACT": textExact,

		"CONCATENATE": textConcatenate,
		"CONCAT":      textConcatenate,

		"FIXED":  textFixed,
		"DOLLAR": textDollar,
	}
}

// toText renders a value for the text functions. Empty stays empty and
// integral numbers drop the decimal point.
func toText(v Value) string {
	if v.IsEmpty() {
		return ""
	}
	return v.String()
}

// textInt reads an integer argument. Unlike toInt it does not strip
// grouping commas, so "1,0" is not 10, it is 0.
func textInt(v Value) int {
	switch v.Kind() {
	case KindNumber:
		return int(v.Num())
	case KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	case KindText:
		n, err := strconv.ParseFloat(v.Str(), 64)
		if err != nil {
			return 0
		}
		return int(n)
	}
	return 0
}

// numberOnly accepts true numbers and booleans; everything else, numeric
// text included, is zero.
func numberOnly(v Value) float64 {
	switch v.Kind() {
	case KindNumber:
		return v.Num()
	case KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	}
	return 0
}

func textLeft(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	r := []rune(toText(args[0]))
	n := textInt(argOr(args, 1, Number(1)))
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	return Text(string(r[:n]))
}

func textRight(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	r := []rune(toText(args[0]))
	n := textInt(argOr(args, 1, Number(1)))
	if n <= 0 {
		return Text("")
	}
	if n > len(r) {
		n = len(r)
	}
	return Text(string(r[len(r)-n:]))
}

func textMid(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	r := []rune(toText(args[0]))
	start := textInt(args[1])
	if start < 1 {
		start = 1
	}
	start--
	n := textInt(args[2])
	if n < 0 {
		n = 0
	}
	if start > len(r) {
		start = len(r)
	}
	end := start + n
	if end > len(r) {
		end = len(r)
	}
	return Text(string(r[start:end]))
}

func textLength(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(float64(utf8.RuneCountInString(toText(args[0]))))
}

// textFind locates a substring case-sensitively, returning its 1-based
// position or 0 when absent.
func textFind(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	find := toText(args[0])
	needle := []rune(find)
	within := []rune(toText(args[1]))
	start := textInt(argOr(args, 2, Number(1))) - 1
	if start < 0 {
		start = 0
	}
	for i := start; i+len(needle) <= len(within); i++ {
		if string(within[i:i+len(needle)]) == find {
			return Number(float64(i + 1))
		}
	}
	return Number(0)
}

// textSearch is the case-insensitive FIND with ? and * wildcards. The
// pattern is spliced into a regular expression without further escaping, so
// other regex metacharacters keep their regex meaning.
func textSearch(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	find := strings.ToLower(toText(args[0]))
	within := []rune(strings.ToLower(toText(args[1])))
	start := textInt(argOr(args, 2, Number(1))) - 1
	if start < 0 {
		start = 0
	}
	if start > len(within) {
		start = len(within)
	}

	pattern := strings.ReplaceAll(strings.ReplaceAll(find, "?", "."), "*", ".*")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Number(0)
	}
	rest := string(within[start:])
	loc := re.FindStringIndex(rest)
	if loc == nil {
		return Number(0)
	}
	return Number(float64(utf8.RuneCountInString(rest[:loc[0]]) + start + 1))
}

// textReplace splices new text over a 1-based position and length.
func textReplace(_ *CallContext, args []Value) Value {
	if len(args) < 4 {
		return NewError(ErrorErr)
	}
	r := []rune(toText(args[0]))
	start := textInt(args[1])
	if start < 1 {
		start = 1
	}
	start--
	n := textInt(args[2])
	if n < 0 {
		n = 0
	}
	if start > len(r) {
		start = len(r)
	}
	end := start + n
	if end > len(r) {
		end = len(r)
	}
	return Text(string(r[:start]) + toText(args[3]) + string(r[end:]))
}

// textSubstitute replaces occurrences of a substring, either all of them or
// only the 1-based instance given by the fourth argument.
func textSubstitute(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	s := toText(args[0])
	old := toText(args[1])
	repl := toText(args[2])

	if len(args) < 4 {
		return Text(strings.ReplaceAll(s, old, repl))
	}
	inst := textInt(args[3])
	if inst < 1 {
		return Text(s)
	}

	r := []rune(s)
	o := []rune(old)
	var b strings.Builder
	count := 0
	for i := 0; i < len(r); {
		if i+len(o) <= len(r) && string(r[i:i+len(o)]) == old {
			count++
			if count == inst {
				b.WriteString(repl)
				i += len(o)
				continue
			}
		}
		b.WriteRune(r[i])
		i++
	}
	return Text(b.String())
}

func textUpper(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Text(strings.ToUpper(toText(args[0])))
}

func textLower(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Text(strings.ToLower(toText(args[0])))
}

// textProper uppercases the first cased rune of every run of cased runes
// and lowercases the rest, so "it's" becomes "It'S".
func textProper(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	var b strings.Builder
	prevCased := false
	for _, c := range toText(args[0]) {
		cased := unicode.IsLower(c) || unicode.IsUpper(c) || unicode.IsTitle(c)
		switch {
		case !cased:
			b.WriteRune(c)
		case prevCased:
			b.WriteRune(unicode.ToLower(c))
		default:
			b.WriteRune(unicode.ToUpper(c))
		}
		prevCased = cased
	}
	return Text(b.String())
}

// textTrim strips leading and trailing whitespace and collapses internal
// runs to a single space.
func textTrim(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Text(strings.Join(strings.Fields(toText(args[0])), " "))
}

func textClean(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	var b strings.Builder
	for _, c := range toText(args[0]) {
		if unicode.IsPrint(c) || c == '\t' || c == '\n' {
			b.WriteRune(c)
		}
	}
	return Text(b.String())
}

// textValue parses text as a number, understanding a trailing percent sign,
// a leading dollar sign, and grouping commas. Unparseable text is zero.
func textValue(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	s := strings.TrimSpace(toText(args[0]))
	if strings.HasSuffix(s, "%") {
		n, err := strconv.ParseFloat(strings.ReplaceAll(s[:len(s)-1], ",", ""), 64)
		if err != nil {
			return Number(0)
		}
		return Number(n / 100)
	}
	s = strings.ReplaceAll(strings.TrimLeft(s, "$"), ",", "")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number(0)
	}
	return Number(n)
}

func textString(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	d := textInt(argOr(args, 1, Number(0)))
	if d < 0 {
		d = 0
	}
	return Text(strconv.FormatFloat(numberOnly(args[0]), 'f', d, 64))
}

func textText(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Text(toText(args[0]))
}

func textChar(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	n := textInt(args[0])
	if n < 0 || n > utf8.MaxRune {
		return Text("")
	}
	return Text(string(rune(n)))
}

func textCode(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	for _, c := range toText(args[0]) {
		return Number(float64(c))
	}
	return Number(0)
}

func textN(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(numberOnly(args[0]))
}

func textS(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	if v.IsText() {
		return Text(v.Str())
	}
	if v.IsError() {
		return Text(v.ErrKind().Literal())
	}
	return Text("")
}

func textT(cc *CallContext, args []Value) Value {
	return textS(cc, args)
}

func textRepeat(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	n := textInt(args[1])
	if n < 0 {
		n = 0
	}
	return Text(strings.Repeat(toText(args[0]), n))
}

func textExact(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	return Bool(toText(args[0]) == toText(args[1]))
}

func textConcatenate(_ *CallContext, args []Value) Value {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(toText(arg))
	}
	return Text(b.String())
}

func textFixed(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	d := textInt(argOr(args, 1, Number(2)))
	if d < 0 {
		d = 0
	}
	formatted := strconv.FormatFloat(numberOnly(args[0]), 'f', d, 64)
	if len(args) > 2 && toBool(args[2]) {
		return Text(formatted)
	}
	return Text(groupThousands(formatted))
}

func textDollar(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	d := textInt(argOr(args, 1, Number(2)))
	if d < 0 {
		d = 0
	}
	return Text("$" + groupThousands(strconv.FormatFloat(numberOnly(args[0]), 'f', d, 64)))
}

// groupThousands inserts grouping commas into the integer part of a plain
// decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
