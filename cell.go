package lotuscalc

import (
	"strconv"
	"strings"
)

// Alignment is the display alignment of a cell, taken from its label prefix.
type Alignment int

const (
	AlignDefault Alignment = iota // no prefix: labels left, numbers right
	AlignLeft                     // ' prefix
	AlignRight                    // " prefix
	AlignCenter                   // ^ prefix
	AlignRepeat                   // \ prefix: repeat contents to fill width
)

// Cell holds the raw contents and attributes of a single sheet position.
// The raw value keeps exactly what the user typed; whether it is a formula,
// a label, or a number is derived on demand.
type Cell struct {
	Raw       string
	Format    string // format code; empty means the sheet default applies
	Protected bool
}

// IsFormula reports whether the raw value is a formula. "=" and "@" always
// start a formula. "+" and "-" start one only when the whole value does not
// parse as a number, so "-5.2" stays numeric while "+A1+A2" is a formula.
func (c *Cell) IsFormula() bool {
	if c == nil || c.Raw == "" {
		return false
	}
	switch c.Raw[0] {
	case '=', '@':
		return true
	case '+', '-':
		_, err := strconv.ParseFloat(strings.TrimSpace(c.Raw), 64)
		return err != nil
	}
	return false
}

// Formula returns the formula body. "=" and "@" prefixes are stripped;
// "+" and "-" are kept since they are part of the expression.
func (c *Cell) Formula() string {
	if c == nil || c.Raw == "" {
		return ""
	}
	if c.Raw[0] == '=' || c.Raw[0] == '@' {
		return c.Raw[1:]
	}
	return c.Raw
}

// DisplayValue returns the raw value with any label prefix removed.
func (c *Cell) DisplayValue() string {
	if c == nil || c.Raw == "" {
		return ""
	}
	switch c.Raw[0] {
	case '\'', '"', '^', '\\':
		return c.Raw[1:]
	}
	return c.Raw
}

// Alignment returns the alignment implied by the label prefix.
func (c *Cell) Alignment() Alignment {
	if c == nil || c.Raw == "" {
		return AlignDefault
	}
	switch c.Raw[0] {
	case '\'':
		return AlignLeft
	case '"':
		return AlignRight
	case '^':
		return AlignCenter
	case '\\':
		return AlignRepeat
	}
	return AlignDefault
}

// IsEmpty reports whether the cell has no contents.
func (c *Cell) IsEmpty() bool {
	return c == nil || c.Raw == ""
}

// Contents returns the raw contents, empty for a nil cell.
func (c *Cell) Contents() string {
	if c == nil {
		return ""
	}
	return c.Raw
}

// IsProtected reports whether the cell is marked protected.
func (c *Cell) IsProtected() bool {
	return c != nil && c.Protected
}

// FormatCode returns the cell's format code, falling back to the given
// sheet default when the cell has none of its own.
func (c *Cell) FormatCode(sheetDefault string) string {
	if c != nil && c.Format != "" {
		return c.Format
	}
	if sheetDefault != "" {
		return sheetDefault
	}
	return "G"
}

// parseLiteral converts a non-formula cell's display text into a Value.
// Thousands separators are stripped before numeric parsing; values with a
// decimal point or exponent parse as floats, bare digit runs as integers,
// and anything else stays text.
func parseLiteral(s string) Value {
	clean := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if strings.ContainsAny(clean, ".eE") {
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			return Number(f)
		}
	} else if i, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return Number(float64(i))
	}
	return Text(s)
}
