package lotuscalc

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// FillType selects the series generated by a fill operation.
type FillType int

const (
	FillLinear FillType = iota // constant step
	FillGrowth                 // constant ratio
	FillDate                   // date serials stepped by a calendar unit
	FillAuto                   // detect the pattern from the leading cells
	FillCopy                   // replicate the leading row or column
)

// DateUnit is the calendar step for date fills.
type DateUnit int

const (
	UnitDay DateUnit = iota
	UnitWeek
	UnitMonth
	UnitYear
)

// FillDirection orders the cells a fill walks through.
type FillDirection int

const (
	FillDown FillDirection = iota
	FillUp
	FillRight
	FillLeft
)

// FillSpec describes a series fill. Stop is honored only when HasStop is
// set; the fill ends early once the next value passes it.
type FillSpec struct {
	Type     FillType
	Start    float64
	Step     float64
	Stop     float64
	HasStop  bool
	DateUnit DateUnit
}

// FillOps generates value series over sheet ranges, the engine behind the
// classic /Data Fill command.
type FillOps struct {
	sheet *Sheet
}

// NewFillOps creates fill operations bound to sheet.
func NewFillOps(sheet *Sheet) *FillOps {
	return &FillOps{sheet: sheet}
}

// Series fills rng with the series described by spec, walking the range in
// the given direction.
func (f *FillOps) Series(rng RangeRef, spec FillSpec, dir FillDirection) error {
	rng = rng.Normalized()
	switch spec.Type {
	case FillGrowth:
		return f.fillGrowth(rng, spec, dir)
	case FillDate:
		return f.fillDate(rng, spec, dir)
	case FillCopy:
		return f.fillCopy(rng, dir)
	case FillAuto:
		return f.fillAuto(rng, dir)
	}
	return f.fillLinear(rng, spec, dir)
}

func (f *FillOps) fillLinear(rng RangeRef, spec FillSpec, dir FillDirection) error {
	value := spec.Start
	for _, coord := range fillOrder(rng, dir) {
		if spec.HasStop {
			if (spec.Step > 0 && value > spec.Stop) || (spec.Step < 0 && value < spec.Stop) {
				break
			}
		}
		if err := f.sheet.SetCellAt(coord, formatNumber(value)); err != nil {
			return err
		}
		value += spec.Step
	}
	return nil
}

func (f *FillOps) fillGrowth(rng RangeRef, spec FillSpec, dir FillDirection) error {
	value := spec.Start
	for _, coord := range fillOrder(rng, dir) {
		if spec.HasStop {
			if (spec.Step > 1 && value > spec.Stop) || (spec.Step < 1 && value < spec.Stop) {
				break
			}
		}
		if err := f.sheet.SetCellAt(coord, formatNumber(value)); err != nil {
			return err
		}
		value *= spec.Step
	}
	return nil
}

func (f *FillOps) fillDate(rng RangeRef, spec FillSpec, dir FillDirection) error {
	serial := spec.Start
	step := int(spec.Step)
	for _, coord := range fillOrder(rng, dir) {
		date, ok := serialToDate(serial)
		if !ok {
			break
		}
		if err := f.sheet.SetCellAt(coord, strconv.Itoa(int(serial))); err != nil {
			return err
		}
		switch spec.DateUnit {
		case UnitWeek:
			serial += float64(step * 7)
		case UnitMonth:
			year, month, lastDay := monthShift(date, step)
			if year < 1 || year > 9999 {
				return nil
			}
			day := date.Day()
			if day > lastDay {
				day = lastDay
			}
			serial = float64(dateToSerial(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)))
		case UnitYear:
			serial = float64(dateToSerial(date.AddDate(step, 0, 0)))
		default:
			serial += float64(step)
		}
	}
	return nil
}

// fillCopy replicates the leading row (vertical fills) or leading column
// (horizontal fills) across the whole range.
func (f *FillOps) fillCopy(rng RangeRef, dir FillDirection) error {
	vertical := dir == FillDown || dir == FillUp

	var source []string
	if vertical {
		for c := rng.Start.Col; c <= rng.End.Col; c++ {
			source = append(source, f.sheet.CellAt(Coord{Row: rng.Start.Row, Col: c}).Contents())
		}
	} else {
		for r := rng.Start.Row; r <= rng.End.Row; r++ {
			source = append(source, f.sheet.CellAt(Coord{Row: r, Col: rng.Start.Col}).Contents())
		}
	}

	for _, coord := range fillOrder(rng, dir) {
		idx := coord.Col - rng.Start.Col
		if !vertical {
			idx = coord.Row - rng.Start.Row
		}
		if idx >= len(source) {
			continue
		}
		if err := f.sheet.SetCellAt(coord, source[idx]); err != nil {
			return err
		}
	}
	return nil
}

// fillAuto samples the leading cells, continues a constant-step numeric
// sequence or a weekday/month name cycle, and falls back to copying.
func (f *FillOps) fillAuto(rng RangeRef, dir FillDirection) error {
	samples := f.sampleValues(rng, dir)

	if start, step, ok := detectLinear(samples); ok {
		return f.fillLinear(rng, FillSpec{Type: FillLinear, Start: start, Step: step}, dir)
	}
	if seq, ok := detectNameSequence(samples); ok {
		return f.fillSequence(rng, seq, dir)
	}
	return f.fillCopy(rng, dir)
}

func (f *FillOps) sampleValues(rng RangeRef, dir FillDirection) []Value {
	var out []Value
	if dir == FillDown || dir == FillUp {
		lastRow := rng.Start.Row + 2
		if lastRow > rng.End.Row {
			lastRow = rng.End.Row
		}
		for r := rng.Start.Row; r <= lastRow; r++ {
			for c := rng.Start.Col; c <= rng.End.Col; c++ {
				out = append(out, f.sheet.ValueAt(Coord{Row: r, Col: c}))
			}
		}
		return out
	}
	lastCol := rng.Start.Col + 2
	if lastCol > rng.End.Col {
		lastCol = rng.End.Col
	}
	for r := rng.Start.Row; r <= rng.End.Row; r++ {
		for c := rng.Start.Col; c <= lastCol; c++ {
			out = append(out, f.sheet.ValueAt(Coord{Row: r, Col: c}))
		}
	}
	return out
}

// detectLinear reports the start and step of a constant-step numeric
// sequence. The seed run ends at the first empty cell; any non-numeric
// sample disqualifies the whole set.
func detectLinear(samples []Value) (start, step float64, ok bool) {
	var numbers []float64
	for _, v := range samples {
		if v.IsEmpty() {
			break
		}
		switch {
		case v.IsNumber():
			numbers = append(numbers, v.Num())
		case v.IsText():
			n, err := strconv.ParseFloat(strings.ReplaceAll(v.Str(), ",", ""), 64)
			if err != nil {
				return 0, 0, false
			}
			numbers = append(numbers, n)
		default:
			return 0, 0, false
		}
	}
	if len(numbers) < 2 {
		return 0, 0, false
	}
	step = numbers[1] - numbers[0]
	for i := 2; i < len(numbers); i++ {
		d := numbers[i] - numbers[i-1]
		if d-step > 1e-4 || step-d > 1e-4 {
			return 0, 0, false
		}
	}
	return numbers[0], step, true
}

var nameSequences = [][]string{
	{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
	{"sun", "mon", "tue", "wed", "thu", "fri", "sat"},
	{"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"},
	{"jan", "feb", "mar", "apr", "may", "jun",
		"jul", "aug", "sep", "oct", "nov", "dec"},
}

// detectNameSequence matches the first sample against the known weekday
// and month name cycles.
func detectNameSequence(samples []Value) ([]string, bool) {
	var first string
	for _, v := range samples {
		s := strings.TrimSpace(v.String())
		if s != "" {
			first = strings.ToLower(s)
			break
		}
	}
	if first == "" {
		return nil, false
	}
	for _, seq := range nameSequences {
		for _, entry := range seq {
			if entry == first {
				return seq, true
			}
		}
	}
	return nil, false
}

// fillSequence cycles a name sequence through the range, starting at the
// first cell's current entry and matching its capitalization.
func (f *FillOps) fillSequence(rng RangeRef, seq []string, dir FillDirection) error {
	firstText := f.sheet.ValueAt(rng.Start).String()
	idx := 0
	lower := strings.ToLower(firstText)
	for i, entry := range seq {
		if entry == lower {
			idx = i
			break
		}
	}
	capitalize := firstText != "" && unicode.IsUpper(rune(firstText[0]))

	for _, coord := range fillOrder(rng, dir) {
		entry := seq[idx%len(seq)]
		if capitalize {
			entry = strings.ToUpper(entry[:1]) + entry[1:]
		}
		if err := f.sheet.SetCellAt(coord, entry); err != nil {
			return err
		}
		idx++
	}
	return nil
}

// Down copies the first row of rng into every row below it, adjusting
// relative references as it goes.
func (f *FillOps) Down(rng RangeRef) error {
	rng = rng.Normalized()
	for c := rng.Start.Col; c <= rng.End.Col; c++ {
		src := Coord{Row: rng.Start.Row, Col: c}
		if f.sheet.CellAt(src) == nil {
			continue
		}
		for r := rng.Start.Row + 1; r <= rng.End.Row; r++ {
			if err := f.sheet.CopyCell(src, Coord{Row: r, Col: c}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Right copies the first column of rng into every column to its right,
// adjusting relative references as it goes.
func (f *FillOps) Right(rng RangeRef) error {
	rng = rng.Normalized()
	for r := rng.Start.Row; r <= rng.End.Row; r++ {
		src := Coord{Row: r, Col: rng.Start.Col}
		if f.sheet.CellAt(src) == nil {
			continue
		}
		for c := rng.Start.Col + 1; c <= rng.End.Col; c++ {
			if err := f.sheet.CopyCell(src, Coord{Row: r, Col: c}); err != nil {
				return err
			}
		}
	}
	return nil
}

// fillOrder lists the range's cells in walk order for a direction.
func fillOrder(rng RangeRef, dir FillDirection) []Coord {
	var out []Coord
	switch dir {
	case FillUp:
		for r := rng.End.Row; r >= rng.Start.Row; r-- {
			for c := rng.Start.Col; c <= rng.End.Col; c++ {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	case FillRight:
		for c := rng.Start.Col; c <= rng.End.Col; c++ {
			for r := rng.Start.Row; r <= rng.End.Row; r++ {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	case FillLeft:
		for c := rng.End.Col; c >= rng.Start.Col; c-- {
			for r := rng.Start.Row; r <= rng.End.Row; r++ {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	default:
		for r := rng.Start.Row; r <= rng.End.Row; r++ {
			for c := rng.Start.Col; c <= rng.End.Col; c++ {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}
