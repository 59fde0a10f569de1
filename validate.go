package lotuscalc

import (
	"fmt"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // formula will evaluate to an error value
	SeverityWarning                 // formula may not mean what it appears to
)

// ValidationIssue represents a single problem found during static validation.
type ValidationIssue struct {
	Severity Severity
	Cell     Coord
	Message  string
}

// String formats the issue as "[ERROR] A2: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.Cell, v.Message)
}

// Validator performs static checks on formula text without evaluating it.
// Defined names resolve through names, and function calls are checked
// against funcs.
type Validator struct {
	names NameResolver
	funcs *FunctionRegistry
}

// NewValidator creates a Validator. names may be nil; a nil funcs falls
// back to the default registry.
func NewValidator(names NameResolver, funcs *FunctionRegistry) *Validator {
	if funcs == nil {
		funcs = DefaultRegistry()
	}
	return &Validator{names: names, funcs: funcs}
}

// ValidateFormula statically checks a single formula with no defined names
// and the default function registry. Issues are positioned at A1.
func ValidateFormula(formula string) []ValidationIssue {
	return NewValidator(nil, nil).CheckFormula(Coord{}, formula)
}

// Validate statically checks every formula cell on the sheet and returns
// the issues found in row-major cell order. It never evaluates anything,
// so it is safe to run on a sheet with circular references.
func (s *Sheet) Validate() []ValidationIssue {
	v := NewValidator(s.names, s.eval.registry())
	var issues []ValidationIssue
	s.EachCell(func(coord Coord, cell *Cell) {
		if !cell.IsFormula() {
			return
		}
		issues = append(issues, v.CheckFormula(coord, cell.Formula())...)
	})
	return issues
}

// CheckFormula runs all static checks against one formula. The formula is
// the bare expression text, without any leading "=" or "@" marker. The cell
// coordinate is only used to position the reported issues.
func (v *Validator) CheckFormula(cell Coord, formula string) []ValidationIssue {
	if strings.TrimSpace(formula) == "" {
		return []ValidationIssue{{
			Severity: SeverityError,
			Cell:     cell,
			Message:  "formula is empty",
		}}
	}

	tokens := NewTokenizer(v.names).Tokenize(formula)

	var issues []ValidationIssue
	issues = append(issues, v.checkParens(cell, tokens)...)
	issues = append(issues, v.checkFunctions(cell, tokens)...)
	issues = append(issues, v.checkReferences(cell, tokens)...)
	issues = append(issues, v.checkArguments(cell, tokens)...)
	issues = append(issues, v.checkIgnoredText(cell, formula, tokens)...)
	return issues
}

// checkParens verifies that parentheses pair up.
func (v *Validator) checkParens(cell Coord, tokens []Token) []ValidationIssue {
	var issues []ValidationIssue
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenLParen:
			depth++
		case TokenRParen:
			if depth == 0 {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Cell:     cell,
					Message:  fmt.Sprintf("unmatched closing parenthesis at position %d", tok.Pos),
				})
				continue
			}
			depth--
		}
	}
	if depth > 0 {
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			Cell:     cell,
			Message:  fmt.Sprintf("%d unclosed parenthesis(es)", depth),
		})
	}
	return issues
}

// checkFunctions reports calls to functions the registry does not know.
// Those evaluate to #NAME? at recalculation time.
func (v *Validator) checkFunctions(cell Coord, tokens []Token) []ValidationIssue {
	var issues []ValidationIssue
	for _, tok := range tokens {
		if tok.Kind != TokenFunction {
			continue
		}
		if v.funcs.Exists(tok.Text) {
			continue
		}
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			Cell:     cell,
			Message:  fmt.Sprintf("unknown function @%s", tok.Text),
		})
	}
	return issues
}

// checkReferences reports identifiers that resolve to neither a cell
// reference nor a defined name, and range separators that do not sit
// between two cell references.
func (v *Validator) checkReferences(cell Coord, tokens []Token) []ValidationIssue {
	var issues []ValidationIssue
	for i, tok := range tokens {
		switch tok.Kind {
		case TokenCell:
			if _, err := ParseCellRef(tok.Text); err != nil {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Cell:     cell,
					Message:  fmt.Sprintf("%q is not a cell reference or defined name", tok.Raw),
				})
			}
		case TokenColon:
			prevCell := i > 0 && tokens[i-1].Kind == TokenCell
			nextCell := i+1 < len(tokens) && tokens[i+1].Kind == TokenCell
			if !prevCell || !nextCell {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					Cell:     cell,
					Message:  fmt.Sprintf("range separator %q is not between two cell references", tok.Raw),
				})
			}
		}
	}
	return issues
}

// checkArguments reports empty argument slots in function calls. The
// evaluator drops them silently, so @SUM(1,,2) sums only 1 and 2.
func (v *Validator) checkArguments(cell Coord, tokens []Token) []ValidationIssue {
	var issues []ValidationIssue
	for i, tok := range tokens {
		if tok.Kind != TokenComma {
			continue
		}
		prev := TokenEOF
		if i > 0 {
			prev = tokens[i-1].Kind
		}
		next := TokenEOF
		if i+1 < len(tokens) {
			next = tokens[i+1].Kind
		}
		if prev == TokenLParen || prev == TokenComma || next == TokenRParen || next == TokenEOF {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Cell:     cell,
				Message:  fmt.Sprintf("empty argument at position %d is ignored", tok.Pos),
			})
		}
	}
	return issues
}

// checkIgnoredText reports characters the tokenizer skipped. The scan never
// fails, so a stray "&" or "#" simply vanishes from the formula; that is
// almost never what the author meant.
func (v *Validator) checkIgnoredText(cell Coord, formula string, tokens []Token) []ValidationIssue {
	covered := make([]bool, len(formula))
	for _, tok := range tokens {
		for j := tok.Pos; j < tok.Pos+len(tok.Raw) && j < len(covered); j++ {
			covered[j] = true
		}
	}

	var issues []ValidationIssue
	for i := 0; i < len(formula); i++ {
		if covered[i] {
			continue
		}
		switch formula[i] {
		case ' ', '\t', '\n', '\r', '@':
			continue
		}
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Cell:     cell,
			Message:  fmt.Sprintf("character %q at position %d is ignored", formula[i], i),
		})
	}
	return issues
}
