package lotuscalc

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatKind identifies a display format family.
type FormatKind int

const (
	FormatGeneral   FormatKind = iota // G
	FormatFixed                       // F0-F15
	FormatScientific                  // S0-S15
	FormatCurrency                    // C0-C15
	FormatComma                       // ,0-,15
	FormatPercent                     // P0-P15
	FormatDate                        // D1-D9
	FormatTime                        // T1-T4
	FormatHidden                      // H
	FormatBar                         // + horizontal bar
)

// FormatSpec is a parsed format code. Decimals applies to the numeric
// families; Variant selects the date (1-9) or time (1-4) layout.
type FormatSpec struct {
	Kind     FormatKind
	Decimals int
	Variant  int
}

// NormalizeFormatCode validates a user-entered format code and returns its
// canonical upper-case form. Bare family letters get their defaults: F, S,
// C, P, and comma take 2 decimals, D becomes D1, T becomes T1.
func NormalizeFormatCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	switch code {
	case "G", "H", "+":
		return code, true
	}
	head, rest := code[:1], code[1:]
	switch head {
	case "F", "S", "C", "P", ",":
		if rest == "" {
			return head + "2", true
		}
		if d, err := strconv.Atoi(rest); err == nil && d >= 0 && d <= 15 {
			return head + strconv.Itoa(d), true
		}
	case "D":
		if rest == "" {
			return "D1", true
		}
		if v, err := strconv.Atoi(rest); err == nil && v >= 1 && v <= 9 {
			return "D" + strconv.Itoa(v), true
		}
	case "T":
		if rest == "" {
			return "T1", true
		}
		if v, err := strconv.Atoi(rest); err == nil && v >= 1 && v <= 4 {
			return "T" + strconv.Itoa(v), true
		}
	}
	return "", false
}

// ParseFormatCode parses a format code leniently. Unknown codes fall back
// to General, out-of-range decimals clamp to 0-15, and bad date or time
// variants fall back to 1.
func ParseFormatCode(code string) FormatSpec {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == "G" {
		return FormatSpec{Kind: FormatGeneral}
	}
	if code == "H" {
		return FormatSpec{Kind: FormatHidden}
	}
	if code == "+" {
		return FormatSpec{Kind: FormatBar}
	}

	n := 2
	if len(code) > 1 {
		if parsed, err := strconv.Atoi(code[1:]); err == nil {
			n = parsed
			if n < 0 {
				n = 0
			} else if n > 15 {
				n = 15
			}
		}
	}

	switch code[0] {
	case 'F':
		return FormatSpec{Kind: FormatFixed, Decimals: n}
	case 'S':
		return FormatSpec{Kind: FormatScientific, Decimals: n}
	case 'C':
		return FormatSpec{Kind: FormatCurrency, Decimals: n}
	case ',':
		return FormatSpec{Kind: FormatComma, Decimals: n}
	case 'P':
		return FormatSpec{Kind: FormatPercent, Decimals: n}
	case 'D':
		if n < 1 || n > 9 {
			n = 1
		}
		return FormatSpec{Kind: FormatDate, Variant: n}
	case 'T':
		if n < 1 || n > 4 {
			n = 1
		}
		return FormatSpec{Kind: FormatTime, Variant: n}
	}
	return FormatSpec{Kind: FormatGeneral}
}

var dateLayouts = [...]string{
	1: "02-Jan-06",
	2: "02-Jan",
	3: "Jan-06",
	4: "01/02/06",
	5: "01/02",
	6: "02-Jan-2006",
	7: "2006-01-02",
	8: "02/01/06",
	9: "02.01.2006",
}

// FitWidth clamps a rendered cell to a column width: text that does not
// fit becomes a run of asterisks. A width of zero or less means unlimited.
func FitWidth(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	return strings.Repeat("*", width)
}

// FormatValue renders a computed value under spec. Width only matters for
// the bar format, which scales to it. Text that does not parse as a number
// passes through numeric formats unchanged, and error literals always
// display as themselves.
func FormatValue(v Value, spec FormatSpec, width int) string {
	if spec.Kind == FormatHidden {
		return ""
	}
	if v.IsEmpty() {
		return ""
	}
	if v.IsError() {
		return v.ErrKind().Literal()
	}
	if v.IsText() {
		text := v.String()
		if text == "" {
			return ""
		}
		if strings.HasPrefix(text, "#") {
			return text
		}
	}

	switch spec.Kind {
	case FormatGeneral:
		return formatGeneral(v)
	case FormatFixed:
		return withNumeric(v, func(n float64) string {
			return strconv.FormatFloat(n, 'f', spec.Decimals, 64)
		})
	case FormatScientific:
		return withNumeric(v, func(n float64) string {
			return strconv.FormatFloat(n, 'E', spec.Decimals, 64)
		})
	case FormatCurrency:
		return withNumeric(v, func(n float64) string {
			if n < 0 {
				return "($" + groupThousands(strconv.FormatFloat(-n, 'f', spec.Decimals, 64)) + ")"
			}
			return "$" + groupThousands(strconv.FormatFloat(n, 'f', spec.Decimals, 64))
		})
	case FormatComma:
		return withNumeric(v, func(n float64) string {
			return groupThousands(strconv.FormatFloat(n, 'f', spec.Decimals, 64))
		})
	case FormatPercent:
		return withNumeric(v, func(n float64) string {
			return strconv.FormatFloat(n*100, 'f', spec.Decimals, 64) + "%"
		})
	case FormatDate:
		return formatSerialDate(v, spec.Variant)
	case FormatTime:
		return formatSerialTime(v, spec.Variant)
	case FormatBar:
		return withNumeric(v, func(n float64) string {
			return formatBar(n, width)
		})
	}
	return v.String()
}

// withNumeric applies format to the value's number. Non-numeric text is
// returned as-is rather than erroring, matching how labels keep their
// display under a numeric format.
func withNumeric(v Value, format func(float64) string) string {
	switch v.Kind() {
	case KindNumber:
		return format(v.Num())
	case KindBool:
		if v.Bool() {
			return format(1)
		}
		return format(0)
	case KindText:
		text := v.String()
		if n, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return format(n)
		}
		return text
	}
	return v.String()
}

func formatGeneral(v Value) string {
	if !v.IsNumber() {
		return v.String()
	}
	n := v.Num()
	if n == float64(int64(n)) && n >= -1e15 && n <= 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', 10, 64)
}

func serialOf(v Value) float64 {
	if v.IsNumber() {
		return v.Num()
	}
	return 0
}

func formatSerialDate(v Value, variant int) string {
	serial := serialOf(v)
	t, ok := serialToDate(serial)
	if !ok {
		return formatNumber(serial)
	}
	if variant < 1 || variant > 9 {
		variant = 1
	}
	s := t.Format(dateLayouts[variant])
	// Lotus shows month abbreviations in capitals for the dash layouts.
	switch variant {
	case 1, 2, 3, 6:
		s = strings.ToUpper(s)
	}
	return s
}

func formatSerialTime(v Value, variant int) string {
	serial := serialOf(v)
	h, m, s := timeOfSerial(serial)
	switch variant {
	case 2:
		return fmt.Sprintf("%02d:%02d %s", hour12(h), m, amPM(h))
	case 3:
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	case 4:
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d %s", hour12(h), m, s, amPM(h))
}

func hour12(h int) int {
	h %= 12
	if h == 0 {
		return 12
	}
	return h
}

func amPM(h int) string {
	if h >= 12 {
		return "PM"
	}
	return "AM"
}

// formatBar draws a +/- horizontal bar scaled so magnitude 10 fills the
// cell width, one column reserved for the sign direction.
func formatBar(n float64, width int) string {
	barWidth := width - 1
	if barWidth < 0 {
		barWidth = 0
	}
	const maxVal = 10.0
	mag := n
	if mag < 0 {
		mag = -mag
	}
	if mag > maxVal {
		mag = maxVal
	}
	barLen := int(mag / maxVal * float64(barWidth))
	if n >= 0 {
		return strings.Repeat("+", barLen)
	}
	return strings.Repeat("-", barLen)
}
