package lotuscalc

import (
	"math"
	"strings"
	"time"
)

// Serial day 1 is January 1, 1900. Serial 60 is skipped when converting in
// either direction to reproduce the classic 1900 leap-year bug, which keeps
// serials after February 1900 compatible with the original format.
var dtEpoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

// datetimeFunctions returns the date and time builtins. Dates travel as
// whole-day serial numbers, times as day fractions; invalid inputs
// generally collapse to 0 rather than erroring.
func datetimeFunctions() map[string]Function {
	return map[string]Function{
		"DATE":      dtDate,
		"DATEVALUE": dtDateValue,

		"DAY":     dtDay,
		"MONTH":   dtMonth,
		"YEAR":    dtYear,
		"WEEKDAY": dtWeekday,

		"TODAY": dtToday,
		"NOW":   dtNow,

		"TIME":      dtTime,
		"TIMEVALUE": dtTimeValue,

		"HOUR":   dtHour,
		"MINUTE": dtMinute,
		"SECOND": dtSecond,

		"DAYS":     dtDays,
		"EDATE":    dtEdate,
		"EOMONTH":  dtEomonth,
		"YEARFRAC": dtYearFrac,
	}
}

func serialToDate(serial float64) (time.Time, bool) {
	if serial >= 60 {
		serial--
	}
	t := dtEpoch.AddDate(0, 0, int(serial))
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func dateToSerial(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(dtEpoch) / (24 * time.Hour))
	if days >= 60 {
		days++
	}
	return days
}

// timeOfSerial splits the fractional part of a serial into clock fields,
// rounded to the nearest whole second.
func timeOfSerial(serial float64) (hour, minute, second int) {
	frac := serial - math.Floor(serial)
	total := int(frac*86400+0.5) % 86400
	return total / 3600, (total % 3600) / 60, total % 60
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

var dateParseLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"January 2, 2006",
	"02.01.2006",
	"2.1.2006",
}

func parseDateText(text string) (time.Time, bool) {
	for _, layout := range dateParseLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dtDate builds a date serial. Two-digit years land in 1930-2029, and an
// out-of-range month rolls into the neighboring years, but an out-of-range
// day makes the whole date invalid and yields 0.
func dtDate(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	y := toInt(args[0])
	m := toInt(args[1])
	d := toInt(args[2])

	if y < 100 {
		if y >= 30 {
			y += 1900
		} else {
			y += 2000
		}
	}

	for m < 1 {
		y--
		m += 12
	}
	for m > 12 {
		y++
		m -= 12
	}

	if y < 1 || y > 9999 {
		return Number(0)
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return Number(0)
	}
	return Number(float64(dateToSerial(t)))
}

func dtDateValue(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	t, ok := parseDateText(strings.TrimSpace(toText(args[0])))
	if !ok {
		return Number(0)
	}
	return Number(float64(dateToSerial(t)))
}

func dtDay(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	t, ok := serialToDate(toNumber(args[0]))
	if !ok {
		return Number(0)
	}
	return Number(float64(t.Day()))
}

func dtMonth(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	t, ok := serialToDate(toNumber(args[0]))
	if !ok {
		return Number(0)
	}
	return Number(float64(t.Month()))
}

func dtYear(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	t, ok := serialToDate(toNumber(args[0]))
	if !ok {
		return Number(0)
	}
	return Number(float64(t.Year()))
}

// dtWeekday reports the day of week. Type 1 runs Sunday=1 to Saturday=7,
// type 2 Monday=1 to Sunday=7, anything else Monday=0 to Sunday=6.
func dtWeekday(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	t, ok := serialToDate(toNumber(args[0]))
	if !ok {
		return Number(0)
	}
	monday0 := (int(t.Weekday()) + 6) % 7

	switch toInt(argOr(args, 1, Number(1))) {
	case 1:
		v := (monday0 + 2) % 7
		if v == 0 {
			v = 7
		}
		return Number(float64(v))
	case 2:
		return Number(float64(monday0 + 1))
	}
	return Number(float64(monday0))
}

func dtToday(cc *CallContext, _ []Value) Value {
	return Number(float64(dateToSerial(cc.Clock.Now())))
}

func dtNow(cc *CallContext, _ []Value) Value {
	now := cc.Clock.Now()
	seconds := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return Number(float64(dateToSerial(now)) + float64(seconds)/86400)
}

// dtTime builds a day fraction, normalizing overflow so TIME(25,0,0) is
// 1 AM and negative fields borrow from the next field up.
func dtTime(_ *CallContext, args []Value) Value {
	if len(args) < 3 {
		return NewError(ErrorErr)
	}
	h := toInt(args[0])
	m := toInt(args[1])
	s := toInt(args[2])

	m += floorDiv(s, 60)
	s = floorMod(s, 60)
	h += floorDiv(m, 60)
	m = floorMod(m, 60)
	h = floorMod(h, 24)

	return Number(float64(h*3600+m*60+s) / 86400)
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04:05 pm",
	"3:04 pm",
}

func dtTimeValue(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	text := strings.TrimSpace(toText(args[0]))
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, text, time.UTC)
		if err != nil {
			continue
		}
		return Number(float64(t.Hour()*3600+t.Minute()*60+t.Second()) / 86400)
	}
	return Number(0)
}

func dtHour(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	h, _, _ := timeOfSerial(toNumber(args[0]))
	return Number(float64(h))
}

func dtMinute(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	_, m, _ := timeOfSerial(toNumber(args[0]))
	return Number(float64(m))
}

func dtSecond(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	_, _, s := timeOfSerial(toNumber(args[0]))
	return Number(float64(s))
}

func dtDays(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	return Number(float64(int(toNumber(args[0]) - toNumber(args[1]))))
}

// monthShift moves a date by whole months, clamping the day to the target
// month's length.
func monthShift(t time.Time, months int) (year int, month time.Month, lastDay int) {
	m := int(t.Month()) + months
	year = t.Year() + floorDiv(m-1, 12)
	month = time.Month(floorMod(m-1, 12) + 1)
	lastDay = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return year, month, lastDay
}

func dtEdate(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	t, ok := serialToDate(toNumber(args[0]))
	if !ok {
		return Number(0)
	}
	year, month, lastDay := monthShift(t, toInt(args[1]))
	if year < 1 || year > 9999 {
		return Number(0)
	}
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return Number(float64(dateToSerial(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))))
}

func dtEomonth(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	t, ok := serialToDate(toNumber(args[0]))
	if !ok {
		return Number(0)
	}
	year, month, lastDay := monthShift(t, toInt(args[1]))
	if year < 1 || year > 9999 {
		return Number(0)
	}
	return Number(float64(dateToSerial(time.Date(year, month, lastDay, 0, 0, 0, 0, time.UTC))))
}

// dtYearFrac converts a day span to a fraction of a year under the chosen
// day-count basis.
func dtYearFrac(_ *CallContext, args []Value) Value {
	if len(args) < 2 {
		return NewError(ErrorErr)
	}
	days := int(toNumber(args[0]) - toNumber(args[1]))
	if days < 0 {
		days = -days
	}
	switch toInt(argOr(args, 2, Number(0))) {
	case 1:
		return Number(float64(days) / 365.25)
	case 3:
		return Number(float64(days) / 365)
	}
	return Number(float64(days) / 360)
}
