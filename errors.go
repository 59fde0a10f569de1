package lotuscalc

import "errors"

// ErrorKind identifies a formula error condition. Error values surface in
// cells as classic Lotus 1-2-3 display strings like "#DIV/0!".
type ErrorKind int

const (
	ErrorNull    ErrorKind = iota + 1 // #NULL! - null intersection
	ErrorDivZero                      // #DIV/0! - division by zero
	ErrorValue                        // #VALUE! - wrong value type
	ErrorRef                          // #REF! - invalid cell reference
	ErrorName                         // #NAME? - unknown function or name
	ErrorNum                          // #NUM! - invalid numeric result
	ErrorNA                           // #N/A - value not available
	ErrorCirc                         // #CIRC! - circular reference
	ErrorErr                          // #ERR! - general evaluation error
)

// Literal returns the display string for the error kind.
func (k ErrorKind) Literal() string {
	switch k {
	case ErrorNull:
		return "#NULL!"
	case ErrorDivZero:
		return "#DIV/0!"
	case ErrorValue:
		return "#VALUE!"
	case ErrorRef:
		return "#REF!"
	case ErrorName:
		return "#NAME?"
	case ErrorNum:
		return "#NUM!"
	case ErrorNA:
		return "#N/A"
	case ErrorCirc:
		return "#CIRC!"
	case ErrorErr:
		return "#ERR!"
	}
	return "#ERR!"
}

// TypeCode returns the numeric error type used by ERROR.TYPE.
// #ERR! shares code 3 with #VALUE!.
func (k ErrorKind) TypeCode() int {
	switch k {
	case ErrorNull:
		return 1
	case ErrorDivZero:
		return 2
	case ErrorValue, ErrorErr:
		return 3
	case ErrorRef:
		return 4
	case ErrorName:
		return 5
	case ErrorNum:
		return 6
	case ErrorNA:
		return 7
	case ErrorCirc:
		return 8
	}
	return 0
}

// errorLiterals maps every known display string to its kind.
var errorLiterals = map[string]ErrorKind{
	"#NULL!":  ErrorNull,
	"#DIV/0!": ErrorDivZero,
	"#VALUE!": ErrorValue,
	"#REF!":   ErrorRef,
	"#NAME?":  ErrorName,
	"#NUM!":   ErrorNum,
	"#N/A":    ErrorNA,
	"#CIRC!":  ErrorCirc,
	"#ERR!":   ErrorErr,
}

// ErrorKindFromLiteral maps a display string like "#REF!" back to its kind.
func ErrorKindFromLiteral(s string) (ErrorKind, bool) {
	k, ok := errorLiterals[s]
	return k, ok
}

// IsErrorString reports whether s is one of the formula error literals.
func IsErrorString(s string) bool {
	_, ok := errorLiterals[s]
	return ok
}

// Sentinel errors returned by sheet operations. Wrap with fmt.Errorf("...: %w", err)
// to add cell context; callers match with errors.Is.
var (
	// ErrOutOfRange is returned when a row or column index falls outside
	// the sheet bounds.
	ErrOutOfRange = errors.New("cell position out of range")

	// ErrProtected is returned when writing to a protected cell while
	// sheet protection is enabled.
	ErrProtected = errors.New("cell is protected")

	// ErrBadReference is returned when a reference string cannot be parsed.
	ErrBadReference = errors.New("invalid cell reference")

	// ErrBadName is returned when a named range name is malformed or
	// collides with a cell reference.
	ErrBadName = errors.New("invalid range name")

	// ErrNameExists is returned when defining a named range under a name
	// that is already taken.
	ErrNameExists = errors.New("range name already defined")

	// ErrNameNotFound is returned when looking up an undefined range name.
	ErrNameNotFound = errors.New("range name not defined")
)
