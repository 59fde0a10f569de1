package lotuscalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormula_Clean(t *testing.T) {
	for _, formula := range []string{
		"SUM(A1:A3)*2",
		"@SUM(A1:A3)",
		"IF(A1>5,\"big\",\"small\")",
		"A1..B2",
		"-B2^2",
	} {
		assert.Empty(t, ValidateFormula(formula), "formula %q", formula)
	}
}

func TestValidateFormula_Empty(t *testing.T) {
	for _, formula := range []string{"", "   "} {
		issues := ValidateFormula(formula)
		require.Len(t, issues, 1)
		assert.Equal(t, SeverityError, issues[0].Severity)
		assert.Equal(t, "[ERROR] A1: formula is empty", issues[0].String())
	}
}

func TestValidateFormula_Parentheses(t *testing.T) {
	issues := ValidateFormula("(1+2))")
	require.Len(t, issues, 1)
	assert.Equal(t, "unmatched closing parenthesis at position 5", issues[0].Message)

	issues = ValidateFormula("((1+2)")
	require.Len(t, issues, 1)
	assert.Equal(t, "1 unclosed parenthesis(es)", issues[0].Message)

	issues = ValidateFormula("(((1")
	require.Len(t, issues, 1)
	assert.Equal(t, "3 unclosed parenthesis(es)", issues[0].Message)
}

func TestValidateFormula_UnknownFunction(t *testing.T) {
	issues := ValidateFormula("NOSUCH(1)")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, "unknown function @NOSUCH", issues[0].Message)

	// Function names are checked upper-cased, however they were typed.
	issues = ValidateFormula("nosuch(1)")
	require.Len(t, issues, 1)
	assert.Equal(t, "unknown function @NOSUCH", issues[0].Message)

	assert.Empty(t, ValidateFormula("sum(1,2)"))
}

func TestValidateFormula_BadReference(t *testing.T) {
	issues := ValidateFormula("TOTAL+1")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, `"TOTAL" is not a cell reference or defined name`, issues[0].Message)
}

func TestValidateFormula_ColonPlacement(t *testing.T) {
	issues := ValidateFormula("A1:5")
	require.Len(t, issues, 1)
	assert.Equal(t, `range separator ":" is not between two cell references`, issues[0].Message)

	issues = ValidateFormula("SUM(A1:)")
	require.Len(t, issues, 1)
	assert.Equal(t, `range separator ":" is not between two cell references`, issues[0].Message)
}

func TestValidateFormula_EmptyArguments(t *testing.T) {
	issues := ValidateFormula("SUM(1,,2)")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, "empty argument at position 6 is ignored", issues[0].Message)

	issues = ValidateFormula("SUM(1,)")
	require.Len(t, issues, 1)
	assert.Equal(t, "empty argument at position 5 is ignored", issues[0].Message)

	issues = ValidateFormula("MAX(,1)")
	require.Len(t, issues, 1)
	assert.Equal(t, "empty argument at position 4 is ignored", issues[0].Message)
}

func TestValidateFormula_IgnoredCharacters(t *testing.T) {
	issues := ValidateFormula("1 & 2")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, `character '&' at position 2 is ignored`, issues[0].Message)

	// The @ function prefix is expected noise, not an ignored character.
	assert.Empty(t, ValidateFormula("1+@SUM(2,3)"))
}

func TestSheet_Validate(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "=SUM(B1:B2)",
		"B1": "5",
		"C1": "=(1",
		"A2": "=NOSUCH(1)",
		"B2": "just a label",
	})

	issues := s.Validate()
	require.Len(t, issues, 2)

	// Row-major cell order: C1 before A2.
	assert.Equal(t, coordOf(t, "C1"), issues[0].Cell)
	assert.Equal(t, "1 unclosed parenthesis(es)", issues[0].Message)
	assert.Equal(t, coordOf(t, "A2"), issues[1].Cell)
	assert.Equal(t, "unknown function @NOSUCH", issues[1].Message)
}

func TestSheet_ValidateResolvesNames(t *testing.T) {
	s := newSheetWithCells(t, map[string]string{
		"A1": "1", "A2": "2", "A3": "3",
	})
	_, err := s.Names().Define("data", "A1:A3")
	require.NoError(t, err)
	require.NoError(t, s.SetCell("B1", "=SUM(data)"))
	require.NoError(t, s.SetCell("B2", "=SUM(missing)"))

	issues := s.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, coordOf(t, "B2"), issues[0].Cell)
	assert.Equal(t, `"missing" is not a cell reference or defined name`, issues[0].Message)
}
