package lotuscalc

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// infoFunctions returns the introspection builtins. CELL answers with
// placeholder values since references reach functions as plain values, but
// CELLPOINTER can report real facts about the cell being evaluated.
func infoFunctions() map[string]Function {
	return map[string]Function{
		"TYPE": infoType,

		"CELL":        infoCell,
		"CELLPOINTER": infoCellPointer,

		"INFO":    infoInfo,
		"VERSION": infoVersion,

		// The dotted spelling exists only in the Excel dialect; formulas
		// here use ERRORTYPE since "." separates range endpoints.
		"ERRORTYPE":  infoErrorType,
		"ERROR.TYPE": infoErrorType,

		"SHEET":  infoSheet,
		"SHEETS": infoSheet,
		"AREAS":  infoAreas,

		"ISFORMULA": infoIsFormula,

		"N": infoN,
	}
}

// infoType reports the classic type codes: 1 number, 2 text, 4 logical,
// 16 error, 64 array.
func infoType(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	switch v.Kind() {
	case KindBool:
		return Number(4)
	case KindNumber:
		return Number(1)
	case KindText:
		if strings.HasPrefix(v.Str(), "#") {
			return Number(16)
		}
		return Number(2)
	case KindError:
		return Number(16)
	case KindArray:
		return Number(64)
	}
	return Number(1)
}

func cellInfoKey(v Value) string {
	return strings.ToLower(strings.Trim(toText(v), "\""))
}

// cellPlaceholder answers a CELL query without any cell to inspect.
func cellPlaceholder(info string, ref Value, hasRef bool) Value {
	switch info {
	case "address":
		return Text("$A$1")
	case "col", "row":
		return Number(1)
	case "contents":
		if hasRef && truthy(ref) {
			return ref
		}
		return Text("")
	case "type":
		if !hasRef || ref.IsEmpty() {
			return Text("b")
		}
		if ref.IsNumber() || ref.IsBool() {
			return Text("v")
		}
		return Text("l")
	case "width":
		return Number(9)
	case "format":
		return Text("G")
	case "protect":
		return Number(0)
	case "prefix":
		return Text("'")
	}
	return Text("")
}

func infoCell(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return cellPlaceholder(cellInfoKey(args[0]), argOr(args, 1, Empty()), len(args) > 1)
}

// infoCellPointer answers CELL queries about the cell whose formula is
// being evaluated, falling back to placeholders when there is no sheet
// context.
func infoCellPointer(cc *CallContext, args []Value) Value {
	attr := "contents"
	if len(args) > 0 {
		attr = cellInfoKey(args[0])
	}
	if cc.Sheet == nil || !cc.HasCell {
		return cellPlaceholder(attr, Empty(), false)
	}

	coord := cc.Cell
	cell := cc.Sheet.CellAt(coord)
	switch attr {
	case "address":
		return Text("$" + ColToName(coord.Col) + "$" + strconv.Itoa(coord.Row+1))
	case "col":
		return Number(float64(coord.Col + 1))
	case "row":
		return Number(float64(coord.Row + 1))
	case "contents":
		return Text(cell.Contents())
	case "type":
		if cell.IsEmpty() {
			return Text("b")
		}
		if cell.IsFormula() || parseLiteral(cell.Contents()).IsNumber() {
			return Text("v")
		}
		return Text("l")
	case "width":
		return Number(float64(cc.Sheet.ColWidth(coord.Col)))
	case "format":
		return Text(cell.FormatCode(cc.Sheet.DefaultFormat()))
	case "protect":
		if cell.IsProtected() {
			return Number(1)
		}
		return Number(0)
	case "prefix":
		if cell.IsEmpty() || cell.IsFormula() || parseLiteral(cell.Contents()).IsNumber() {
			return Text("")
		}
		switch cell.Alignment() {
		case AlignLeft:
			return Text("'")
		case AlignRight:
			return Text("\"")
		case AlignCenter:
			return Text("^")
		case AlignRepeat:
			return Text("\\")
		}
		return Text(cc.Sheet.LabelPrefix())
	}
	return Text("")
}

// infoInfo reports environment facts. The recalc answer reflects the
// sheet's actual mode when one is attached.
func infoInfo(cc *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	switch cellInfoKey(args[0]) {
	case "directory":
		dir, err := os.Getwd()
		if err != nil {
			return Text("")
		}
		return Text(dir)
	case "numfile":
		return Number(1)
	case "origin":
		return Text("$A:$A$1")
	case "osversion", "system":
		return Text(runtime.GOOS)
	case "recalc":
		if cc.Sheet != nil {
			return Text(cc.Sheet.RecalcMode().String())
		}
		return Text("Automatic")
	case "release":
		return Text("1.0")
	case "totmem":
		return Number(1000000)
	case "usedmem":
		return Number(100000)
	}
	return Text("")
}

// errorTypePrefixes maps error literals, trailing bang dropped, to their
// stable codes. Matching is by prefix, in this order.
var errorTypePrefixes = []struct {
	prefix string
	code   int
}{
	{"#NULL", 1},
	{"#DIV/0", 2},
	{"#VALUE", 3},
	{"#REF", 4},
	{"#NAME?", 5},
	{"#NUM", 6},
	{"#N/A", 7},
	{"#CIRC", 8},
	{"#ERR", 3},
}

func infoErrorType(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	s := errorText(args[0])
	if !strings.HasPrefix(s, "#") {
		return Number(0)
	}
	for _, entry := range errorTypePrefixes {
		if strings.HasPrefix(s, entry.prefix) {
			return Number(float64(entry.code))
		}
	}
	return Number(0)
}

func infoSheet(_ *CallContext, _ []Value) Value {
	return Number(1)
}

func infoAreas(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(1)
}

func infoIsFormula(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	v := args[0]
	if !v.IsText() {
		return Bool(false)
	}
	s := v.Str()
	return Bool(strings.HasPrefix(s, "=") || strings.HasPrefix(s, "+"))
}

func infoN(_ *CallContext, args []Value) Value {
	if len(args) < 1 {
		return NewError(ErrorErr)
	}
	return Number(numberOnly(args[0]))
}

func infoVersion(_ *CallContext, _ []Value) Value {
	return Text("lotuscalc 1.0")
}
