package lotuscalc

import (
	"regexp"
	"strings"
)

// TokenKind classifies a formula token.
type TokenKind int

const (
	TokenNumber     TokenKind = iota // numeric literal
	TokenString                      // quoted string literal
	TokenCell                        // cell reference like A1 or $B$2
	TokenRange                       // resolved range like A1:B5 (from a defined name)
	TokenFunction                    // function name, upper-cased
	TokenOperator                    // + - * / ^ %
	TokenComparison                  // = == <> != < > <= >=
	TokenLParen                      // (
	TokenRParen                      // )
	TokenComma                       // ,
	TokenColon                       // : (also spelled .. in Lotus syntax)
	TokenEOF                         // end of input
)

// String returns a short name for the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenCell:
		return "CELL"
	case TokenRange:
		return "RANGE"
	case TokenFunction:
		return "FUNCTION"
	case TokenOperator:
		return "OPERATOR"
	case TokenComparison:
		return "COMPARISON"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenComma:
		return "COMMA"
	case TokenColon:
		return "COLON"
	case TokenEOF:
		return "EOF"
	}
	return "UNKNOWN"
}

// Token is a single lexical element of a formula. Text is the semantic
// value (unquoted string contents, resolved reference for defined names,
// upper-cased function name). Raw is the exact source span starting at Pos,
// which the reference adjuster uses to splice rewritten formulas.
type Token struct {
	Kind TokenKind
	Text string
	Raw  string
	Pos  int
}

// NameResolver resolves defined range names encountered during tokenization.
// Resolve returns the reference text a name stands for ("B2" or "A1:B5")
// and whether the name is defined.
type NameResolver interface {
	Resolve(name string) (string, bool)
}

// numberPattern matches a numeric literal: digits, optional fraction, and an
// exponent only when digits follow the e.
var numberPattern = regexp.MustCompile(`^\d+\.?\d*(?:[eE][+-]?\d+)?`)

// Tokenizer splits formula text into tokens. A NameResolver may be attached
// so defined names lex directly into cell or range tokens.
type Tokenizer struct {
	names NameResolver
}

// NewTokenizer creates a Tokenizer. names may be nil.
func NewTokenizer(names NameResolver) *Tokenizer {
	return &Tokenizer{names: names}
}

// Tokenize splits a formula into tokens using no name resolution.
func Tokenize(formula string) []Token {
	return NewTokenizer(nil).Tokenize(formula)
}

// Tokenize splits the formula into tokens. The scan never fails: unknown
// characters are skipped, and an unterminated string consumes the rest of
// the input. The final token is always EOF positioned at the end of input.
func (t *Tokenizer) Tokenize(formula string) []Token {
	var tokens []Token
	i := 0
	n := len(formula)

	for i < n {
		ch := formula[i]

		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		// Function prefix: @SUM(...) means the same as SUM(...).
		if ch == '@' {
			i++
			continue
		}

		if ch == '"' {
			tok, next := t.scanString(formula, i)
			tokens = append(tokens, tok)
			i = next
			continue
		}

		if ch >= '0' && ch <= '9' {
			text := numberPattern.FindString(formula[i:])
			tokens = append(tokens, Token{Kind: TokenNumber, Text: text, Raw: text, Pos: i})
			i += len(text)
			continue
		}

		if isIdentStart(ch) {
			tok, next := t.scanIdentifier(formula, i)
			tokens = append(tokens, tok)
			i = next
			continue
		}

		// Two-character comparisons are matched greedily before single ones.
		if i+1 < n {
			two := formula[i : i+2]
			switch two {
			case "<>", "<=", ">=", "==", "!=":
				tokens = append(tokens, Token{Kind: TokenComparison, Text: two, Raw: two, Pos: i})
				i += 2
				continue
			case "..":
				tokens = append(tokens, Token{Kind: TokenColon, Text: ":", Raw: two, Pos: i})
				i += 2
				continue
			}
		}

		switch ch {
		case '=', '<', '>':
			tokens = append(tokens, Token{Kind: TokenComparison, Text: string(ch), Raw: string(ch), Pos: i})
		case '+', '-', '*', '/', '^', '%':
			tokens = append(tokens, Token{Kind: TokenOperator, Text: string(ch), Raw: string(ch), Pos: i})
		case '(':
			tokens = append(tokens, Token{Kind: TokenLParen, Text: "(", Raw: "(", Pos: i})
		case ')':
			tokens = append(tokens, Token{Kind: TokenRParen, Text: ")", Raw: ")", Pos: i})
		case ',':
			tokens = append(tokens, Token{Kind: TokenComma, Text: ",", Raw: ",", Pos: i})
		case ':':
			tokens = append(tokens, Token{Kind: TokenColon, Text: ":", Raw: ":", Pos: i})
		default:
			// Unknown character, skip it.
		}
		i++
	}

	tokens = append(tokens, Token{Kind: TokenEOF, Pos: n})
	return tokens
}

// scanString scans a quoted string starting at the opening quote. A doubled
// quote inside the literal is an escaped quote. Missing the closing quote
// consumes everything to the end of input.
func (t *Tokenizer) scanString(formula string, start int) (Token, int) {
	var b strings.Builder
	i := start + 1
	n := len(formula)
	for i < n {
		if formula[i] == '"' {
			if i+1 < n && formula[i+1] == '"' {
				b.WriteByte('"')
				i += 2
				continue
			}
			i++
			break
		}
		b.WriteByte(formula[i])
		i++
	}
	return Token{Kind: TokenString, Text: b.String(), Raw: formula[start:i], Pos: start}, i
}

// scanIdentifier scans a run of identifier characters and classifies it:
// a name followed by "(" is a function, a defined name lexes to its resolved
// reference, and anything else is a cell reference.
func (t *Tokenizer) scanIdentifier(formula string, start int) (Token, int) {
	i := start
	n := len(formula)
	for i < n && isIdentChar(formula[i]) {
		i++
	}
	word := formula[start:i]

	// A call may have space before its paren, as in "SUM (A1:A3)".
	probe := i
	for probe < n && (formula[probe] == ' ' || formula[probe] == '\t') {
		probe++
	}
	if probe < n && formula[probe] == '(' {
		return Token{Kind: TokenFunction, Text: strings.ToUpper(word), Raw: word, Pos: start}, i
	}

	if t.names != nil {
		if resolved, ok := t.names.Resolve(word); ok {
			kind := TokenCell
			if strings.Contains(resolved, ":") {
				kind = TokenRange
			}
			return Token{Kind: kind, Text: resolved, Raw: word, Pos: start}, i
		}
	}

	return Token{Kind: TokenCell, Text: word, Raw: word, Pos: start}, i
}

func isIdentStart(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' || ch == '_' || ch == '$'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || ch >= '0' && ch <= '9'
}
