package lotuscalc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// Formula and format translation between the engine dialect and the OOXML
// dialect carried by .xlsx files. Both directions are token rewrites, not
// semantic transforms: precedence and references pass through untouched,
// only function names and punctuation change.

// engineToExcelFuncs maps function names to their Excel spellings where the
// two differ. Anything absent passes through unchanged.
var engineToExcelFuncs = map[string]string{
	"AVG":    "AVERAGE",
	"STD":    "STDEV",
	"STDS":   "STDEV",
	"STDP":   "STDEV.P",
	"VARS":   "VAR",
	"VARP":   "VAR.P",
	"LENGTH":    "LEN",
	"COLS":      "COLUMNS",
	"DAVG":      "DAVERAGE",
	"ERRORTYPE": "ERROR.TYPE",
}

// noExcelEquivalent lists functions Excel cannot express. Formulas using
// them export under an _UNSUPPORTED_ marker, which forces the cell to be
// written as text rather than as a formula Excel would reject.
var noExcelEquivalent = map[string]bool{
	"CELLPOINTER": true,
}

// excelToEngineFuncs is the inbound direction. The .S statistical variants
// collapse onto the plain sample forms; the .P variants keep their
// population semantics under the engine names.
var excelToEngineFuncs = map[string]string{
	"AVERAGE":  "AVG",
	"STDEV":    "STD",
	"STDEV.S":  "STD",
	"STDEV.P":  "STDP",
	"VAR.S":    "VAR",
	"VAR.P":    "VARP",
	"COLUMNS":    "COLS",
	"DAVERAGE":   "DAVG",
	"ERROR.TYPE": "ERRORTYPE",
}

// excelOnlyFuncs are Excel functions with no engine counterpart. Formulas
// naming them still import and re-export intact, but evaluate to #NAME?
// until rewritten, so imports report them as warnings.
var excelOnlyFuncs = map[string]bool{
	"XLOOKUP": true, "XMATCH": true, "FILTER": true, "SORT": true,
	"SORTBY": true, "UNIQUE": true, "SEQUENCE": true, "RANDARRAY": true,
	"LET": true, "LAMBDA": true, "MAP": true, "REDUCE": true,
	"SCAN": true, "MAKEARRAY": true, "BYROW": true, "BYCOL": true,
	"CHOOSECOLS": true, "CHOOSEROWS": true, "DROP": true, "TAKE": true,
	"EXPAND": true, "VSTACK": true, "HSTACK": true, "WRAPCOLS": true,
	"WRAPROWS": true, "TOCOL": true, "TOROW": true, "TEXTSPLIT": true,
	"TEXTBEFORE": true, "TEXTAFTER": true, "VALUETOTEXT": true,
	"ARRAYTOTEXT": true, "STOCKHISTORY": true, "WEBSERVICE": true,
	"IFS": true, "MAXIFS": true, "MINIFS": true, "CONCAT": true,
	"TEXTJOIN": true, "SWITCH": true,
}

// TranslateExcelFormula rewrites an Excel formula into engine syntax. The
// input may carry a leading "=". Operators pass through verbatim, which
// loses constructs the engine has no spelling for (string concatenation,
// postfix percent); those surface as evaluation errors, not translation
// failures.
func TranslateExcelFormula(formula string) string {
	body := strings.TrimPrefix(strings.TrimSpace(formula), "=")
	var b strings.Builder
	b.Grow(len(body) + 1)
	b.WriteByte('=')
	for _, tok := range efp.ExcelParser().Parse(body) {
		switch tok.TType {
		case efp.TokenTypeFunction:
			if tok.TSubType == efp.TokenSubTypeStart {
				name := strings.ToUpper(tok.TValue)
				if mapped, ok := excelToEngineFuncs[name]; ok {
					name = mapped
				}
				b.WriteString(name)
				b.WriteByte('(')
			} else {
				b.WriteByte(')')
			}
		case efp.TokenTypeSubexpression:
			if tok.TSubType == efp.TokenSubTypeStart {
				b.WriteByte('(')
			} else {
				b.WriteByte(')')
			}
		case efp.TokenTypeArgument:
			b.WriteByte(',')
		case efp.TokenTypeOperand:
			if tok.TSubType == efp.TokenSubTypeText {
				b.WriteByte('"')
				b.WriteString(strings.ReplaceAll(tok.TValue, `"`, `""`))
				b.WriteByte('"')
			} else {
				b.WriteString(tok.TValue)
			}
		case efp.TokenTypeOperatorPrefix, efp.TokenTypeOperatorInfix, efp.TokenTypeOperatorPostfix:
			b.WriteString(tok.TValue)
		case efp.TokenTypeWhitespace:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// UnsupportedExcelFunctions returns, in order of first appearance, the
// function names in an Excel formula that the engine cannot evaluate.
func UnsupportedExcelFunctions(formula string) []string {
	body := strings.TrimPrefix(strings.TrimSpace(formula), "=")
	var names []string
	seen := map[string]bool{}
	for _, tok := range efp.ExcelParser().Parse(body) {
		if tok.TType != efp.TokenTypeFunction || tok.TSubType != efp.TokenSubTypeStart {
			continue
		}
		name := strings.ToUpper(tok.TValue)
		if excelOnlyFuncs[name] && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	return names
}

// TranslateEngineFormula rewrites a formula body (as returned by
// Cell.Formula, without "=" or "@") into Excel syntax. Range names stay as
// bare words; the exporter publishes them as defined names so Excel can
// resolve them itself.
func TranslateEngineFormula(formula string) string {
	var b strings.Builder
	b.Grow(len(formula) + 1)
	b.WriteByte('=')
	for _, tok := range Tokenize(formula) {
		switch tok.Kind {
		case TokenNumber:
			b.WriteString(tok.Text)
		case TokenString:
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(tok.Text, `"`, `""`))
			b.WriteByte('"')
		case TokenCell, TokenRange:
			b.WriteString(tok.Raw)
		case TokenFunction:
			name := tok.Text
			if noExcelEquivalent[name] {
				name = "_UNSUPPORTED_" + name
			} else if mapped, ok := engineToExcelFuncs[name]; ok {
				name = mapped
			}
			b.WriteString(name)
		case TokenOperator:
			b.WriteString(tok.Text)
		case TokenComparison:
			switch tok.Text {
			case "==":
				b.WriteByte('=')
			case "!=":
				b.WriteString("<>")
			default:
				b.WriteString(tok.Text)
			}
		case TokenLParen:
			b.WriteByte('(')
		case TokenRParen:
			b.WriteByte(')')
		case TokenComma:
			b.WriteByte(',')
		case TokenColon:
			b.WriteByte(':')
		}
	}
	return b.String()
}

// excelFormulaExportable reports whether a translated formula is safe to
// hand to Excel as a formula. Anything else is written as literal text so
// the workbook still opens cleanly.
func excelFormulaExportable(formula string) bool {
	if strings.Contains(formula, "_UNSUPPORTED_") {
		return false
	}
	if strings.HasPrefix(formula, "==") || strings.HasPrefix(formula, "=@") {
		return false
	}
	if len(formula) >= 2 && strings.ContainsRune("!<>", rune(formula[1])) {
		return false
	}
	return true
}

// excelDateFormats and excelTimeFormats are indexed by format variant.
var excelDateFormats = [...]string{
	"", "DD-MMM-YY", "DD-MMM", "MMM-YY", "MM/DD/YY", "MM/DD",
	"DD-MMM-YYYY", "YYYY-MM-DD", "DD/MM/YY", "DD.MM.YYYY",
}

var excelTimeFormats = [...]string{
	"", "HH:MM:SS AM/PM", "HH:MM AM/PM", "HH:MM:SS", "HH:MM",
}

// engineFormatToExcel renders a cell format code as an Excel number
// format string.
func engineFormatToExcel(code string) string {
	spec := ParseFormatCode(code)
	switch spec.Kind {
	case FormatFixed:
		return "0" + decimalZeros(spec.Decimals)
	case FormatScientific:
		return "0" + decimalZeros(spec.Decimals) + "E+00"
	case FormatCurrency:
		return "$#,##0" + decimalZeros(spec.Decimals)
	case FormatComma:
		return "#,##0" + decimalZeros(spec.Decimals)
	case FormatPercent:
		return "0" + decimalZeros(spec.Decimals) + "%"
	case FormatDate:
		if spec.Variant >= 1 && spec.Variant < len(excelDateFormats) {
			return excelDateFormats[spec.Variant]
		}
	case FormatTime:
		if spec.Variant >= 1 && spec.Variant < len(excelTimeFormats) {
			return excelTimeFormats[spec.Variant]
		}
	case FormatHidden:
		return ";;;"
	}
	return "General"
}

func decimalZeros(n int) string {
	if n <= 0 {
		return ""
	}
	return "." + strings.Repeat("0", n)
}

// excelToEngineFormats resolves the number formats this package itself
// writes, plus the spellings other producers commonly use, back to format
// codes. Keys are lowercased. Formats not found here fall through to the
// pattern matcher.
var excelToEngineFormats = func() map[string]string {
	m := make(map[string]string)
	add := func(code string) {
		key := strings.ToLower(engineFormatToExcel(code))
		if _, ok := m[key]; !ok {
			m[key] = code
		}
	}
	for d := 0; d <= 15; d++ {
		for _, family := range []string{"F", "S", "C", ",", "P"} {
			add(family + strconv.Itoa(d))
		}
	}
	for v := 1; v <= 9; v++ {
		add("D" + strconv.Itoa(v))
	}
	for v := 1; v <= 4; v++ {
		add("T" + strconv.Itoa(v))
	}
	m[";;;"] = "H"
	m["m/d/yy"] = "D4"
	m["m/d"] = "D5"
	m["d/m/yy"] = "D8"
	m["d.m.yyyy"] = "D9"
	m["yyyy\\-mm\\-dd"] = "D7"
	m[`"$"#,##0`] = "C0"
	m[`"$"#,##0.00`] = "C2"
	m[`_("$"* #,##0_)`] = "C0"
	m[`_("$"* #,##0.00_)`] = "C2"
	m["h:mm:ss am/pm"] = "T1"
	m["h:mm am/pm"] = "T2"
	m["h:mm:ss"] = "T3"
	m["h:mm"] = "T4"
	return m
}()

var fixedFormatPattern = regexp.MustCompile(`^0(\.0+)?$`)

// excelFormatToEngine maps an Excel number format string to the nearest
// format code, falling back to structural pattern matching for formats no
// table covers. Unrecognizable formats become General rather than erroring.
func excelFormatToEngine(excel string) string {
	excel = strings.TrimSpace(excel)
	if excel == "" || strings.EqualFold(excel, "general") {
		return "G"
	}
	lower := strings.ToLower(excel)
	if code, ok := excelToEngineFormats[lower]; ok {
		return code
	}
	if excel == ";;;" {
		return "H"
	}
	if strings.HasPrefix(excel, "$") || strings.HasPrefix(excel, `"$"`) ||
		strings.HasPrefix(excel, `_("$"`) || strings.HasPrefix(excel, "_($") {
		return "C" + strconv.Itoa(countDecimalPlaces(excel))
	}
	if strings.HasSuffix(excel, "%") {
		return "P" + strconv.Itoa(countDecimalPlaces(strings.TrimRight(excel, "%")))
	}
	if strings.Contains(strings.ToUpper(excel), "E+") || strings.Contains(strings.ToUpper(excel), "E-") {
		head, _, _ := strings.Cut(strings.ToUpper(excel), "E")
		return "S" + strconv.Itoa(countDecimalPlaces(head))
	}
	if strings.Contains(excel, "#,##0") || strings.Contains(excel, ",##0") {
		return "," + strconv.Itoa(countDecimalPlaces(excel))
	}
	if isExcelDateFormat(lower) {
		return matchExcelDateFormat(excel, lower)
	}
	if isExcelTimeFormat(lower) {
		return matchExcelTimeFormat(lower)
	}
	if fixedFormatPattern.MatchString(excel) {
		return "F" + strconv.Itoa(countDecimalPlaces(excel))
	}
	return "G"
}

// countDecimalPlaces counts the digit placeholders after the last decimal
// point, stopping at the first non-placeholder. Capped at 15 to stay within
// the range format codes express.
func countDecimalPlaces(excel string) int {
	dot := strings.LastIndexByte(excel, '.')
	if dot < 0 {
		return 0
	}
	n := 0
	for _, ch := range excel[dot+1:] {
		if ch != '0' && ch != '#' {
			break
		}
		n++
	}
	if n > 15 {
		n = 15
	}
	return n
}

func isExcelDateFormat(lower string) bool {
	if strings.Contains(lower, ":") {
		return false
	}
	for _, ind := range []string{"yyyy", "yy", "mmmm", "mmm", "mm", "dd", "d"} {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func isExcelTimeFormat(lower string) bool {
	if !strings.Contains(lower, ":") {
		return false
	}
	return strings.Contains(lower, "hh") || strings.Contains(lower, "h:") ||
		strings.Contains(lower, "mm")
}

// matchExcelDateFormat picks the date variant whose layout is closest to
// the given format. The checks run most-specific first; a date format that
// matches nothing defaults to D1.
func matchExcelDateFormat(excel, lower string) string {
	hasYYYY := strings.Contains(lower, "yyyy")
	hasMMM := strings.Contains(lower, "mmm")
	hasYY := strings.Contains(lower, "yy")
	switch {
	case strings.Contains(lower, "yyyy-mm-dd") || strings.Contains(lower, "yyyy/mm/dd"):
		return "D7"
	case strings.Contains(lower, "dd.mm.yyyy") || strings.Contains(lower, "d.m.yyyy"):
		return "D9"
	case hasYYYY && hasMMM:
		return "D6"
	case strings.Contains(excel, "-") && hasMMM && hasYY:
		return "D1"
	case strings.Contains(excel, "-") && hasMMM:
		return "D2"
	case hasMMM && hasYY:
		return "D3"
	}
	if strings.Contains(excel, "/") {
		dd := strings.Index(lower, "dd")
		mm := strings.Index(lower, "mm")
		if dd >= 0 && (mm < 0 || dd < mm) {
			return "D8"
		}
		if hasYY {
			return "D4"
		}
		return "D5"
	}
	return "D1"
}

func matchExcelTimeFormat(lower string) string {
	hasAMPM := strings.Contains(lower, "am/pm") || strings.Contains(lower, "am") ||
		strings.Contains(lower, "pm")
	hasSeconds := strings.Count(lower, ":") >= 2 || strings.Contains(lower, "ss")
	switch {
	case hasAMPM && hasSeconds:
		return "T1"
	case hasAMPM:
		return "T2"
	case hasSeconds:
		return "T3"
	}
	return "T4"
}
