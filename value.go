package lotuscalc

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the payload of a Value.
type ValueKind int

const (
	KindText   ValueKind = iota // text, including the empty cell value ""
	KindNumber                  // float64
	KindBool                    // logical TRUE/FALSE
	KindError                   // formula error such as #DIV/0!
	KindArray                   // rectangular block of values from a range
)

// Value is the result of evaluating a formula or reading a cell. The zero
// Value is empty text, which is what an empty cell evaluates to.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	flag bool
	errk ErrorKind
	rows [][]Value
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Text returns a text Value.
func Text(s string) Value {
	return Value{kind: KindText, str: s}
}

// Bool returns a logical Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// NewError returns an error Value of the given kind.
func NewError(k ErrorKind) Value {
	return Value{kind: KindError, errk: k}
}

// Array returns an array Value holding a rectangular block of values.
// Rows must all have the same length.
func Array(rows [][]Value) Value {
	return Value{kind: KindArray, rows: rows}
}

// Empty returns the empty cell value.
func Empty() Value {
	return Value{}
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// Num returns the numeric payload. Zero unless IsNumber.
func (v Value) Num() float64 { return v.num }

// Str returns the text payload. Empty unless IsText.
func (v Value) Str() string { return v.str }

// Bool returns the logical payload. False unless IsBool.
func (v Value) Bool() bool { return v.flag }

// ErrKind returns the error kind. Zero unless IsError.
func (v Value) ErrKind() ErrorKind { return v.errk }

// Rows returns the array payload. Nil unless IsArray.
func (v Value) Rows() [][]Value { return v.rows }

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsText reports whether the value is text.
func (v Value) IsText() bool { return v.kind == KindText }

// IsBool reports whether the value is logical.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsError reports whether the value is a formula error.
func (v Value) IsError() bool { return v.kind == KindError }

// IsArray reports whether the value is an array.
func (v Value) IsArray() bool { return v.kind == KindArray }

// IsEmpty reports whether the value is the empty cell value.
func (v Value) IsEmpty() bool { return v.kind == KindText && v.str == "" }

// String renders the value the way it appears in a cell: numbers drop a
// trailing .0, booleans show as TRUE/FALSE, errors show their literal.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		if v.flag {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.errk.Literal()
	case KindArray:
		var b strings.Builder
		b.WriteByte('{')
		for i, row := range v.rows {
			if i > 0 {
				b.WriteByte(';')
			}
			for j, cell := range row {
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(cell.String())
			}
		}
		b.WriteByte('}')
		return b.String()
	}
	return v.str
}

// formatNumber renders a float the way cell values display: integral values
// without a decimal point, everything else in shortest form.
func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return ErrorNum.Literal()
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// flatten walks values depth-first, expanding arrays into their elements.
// Scalar values pass through unchanged.
func flatten(vals []Value) []Value {
	out := make([]Value, 0, len(vals))
	for _, v := range vals {
		if v.IsArray() {
			for _, row := range v.rows {
				out = append(out, flatten(row)...)
			}
		} else {
			out = append(out, v)
		}
	}
	return out
}
