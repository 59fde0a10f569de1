package lotuscalc

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxDepth bounds expression nesting during evaluation. Formulas
// nested deeper than this evaluate to #REF!.
const DefaultMaxDepth = 100

// operatorPrecedence drives the precedence-climbing arithmetic parser.
// All operators are left-associative.
var operatorPrecedence = map[string]int{
	"+": 1, "-": 1,
	"*": 2, "/": 2, "%": 2,
	"^": 3,
}

// Evaluator parses and evaluates formula text in a single pass against a
// Grid. All fields may be set directly before use; zero fields fall back to
// sensible defaults, so &Evaluator{Grid: g} is a working evaluator.
type Evaluator struct {
	Grid     Grid
	Names    NameResolver
	Funcs    *FunctionRegistry
	Clock    Clock
	Rand     *rand.Rand
	Sheet    *Sheet
	MaxDepth int
}

// NewEvaluator creates an Evaluator over the given grid with the default
// function registry. grid may be nil, in which case cell references
// evaluate to #REF!.
func NewEvaluator(grid Grid) *Evaluator {
	return &Evaluator{
		Grid:     grid,
		Funcs:    DefaultRegistry(),
		Clock:    SystemClock(),
		MaxDepth: DefaultMaxDepth,
	}
}

// Evaluate evaluates a formula with a fresh context. The formula text must
// not include the leading "=" or "@" marker.
func (e *Evaluator) Evaluate(formula string) Value {
	return e.EvaluateWith(NewEvalContext(), formula)
}

// EvaluateWith evaluates a formula inside an existing context, so cell
// references recurse through the grid with circular detection intact.
// Evaluation never panics: malformed input degrades to empty text or an
// error value, and a NaN result surfaces as #NUM!.
func (e *Evaluator) EvaluateWith(ctx *EvalContext, formula string) Value {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return Text("")
	}
	p := &parser{
		eval:     e,
		ctx:      ctx,
		tokens:   NewTokenizer(e.Names).Tokenize(formula),
		maxDepth: e.maxDepth(),
	}
	result := p.parseExpression()
	if result.IsNumber() && math.IsNaN(result.Num()) {
		return NewError(ErrorNum)
	}
	return result
}

func (e *Evaluator) registry() *FunctionRegistry {
	if e.Funcs != nil {
		return e.Funcs
	}
	return DefaultRegistry()
}

func (e *Evaluator) clock() Clock {
	if e.Clock != nil {
		return e.Clock
	}
	return SystemClock()
}

var defaultRand = rand.New(rand.NewSource(time.Now().UnixNano()))

func (e *Evaluator) randSource() *rand.Rand {
	if e.Rand != nil {
		return e.Rand
	}
	return defaultRand
}

func (e *Evaluator) maxDepth() int {
	if e.MaxDepth > 0 {
		return e.MaxDepth
	}
	return DefaultMaxDepth
}

// parser walks the token stream, evaluating as it parses. There is no
// intermediate AST: each grammar production folds directly into a Value.
type parser struct {
	eval     *Evaluator
	ctx      *EvalContext
	tokens   []Token
	pos      int
	depth    int
	maxDepth int
}

func (p *parser) current() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

// parseExpression is the grammar's entry point: a chain of comparisons over
// arithmetic expressions, so "2+3*4=14" compares 14 against 14.
func (p *parser) parseExpression() Value {
	if p.depth >= p.maxDepth {
		return NewError(ErrorRef)
	}
	p.depth++
	defer func() { p.depth-- }()

	left := p.parseArith(1)
	for p.current().Kind == TokenComparison {
		op := p.advance().Text
		right := p.parseArith(1)
		left = compareValues(left, op, right)
	}
	return left
}

// parseArith is a precedence-climbing loop. The right side is parsed one
// precedence level up, which makes every operator left-associative.
func (p *parser) parseArith(minPrec int) Value {
	if p.depth >= p.maxDepth {
		return NewError(ErrorRef)
	}
	p.depth++
	defer func() { p.depth-- }()

	left := p.parseAtom()
	for {
		tok := p.current()
		if tok.Kind != TokenOperator {
			break
		}
		prec := operatorPrecedence[tok.Text]
		if prec < minPrec {
			break
		}
		p.advance()
		right := p.parseArith(prec + 1)
		left = applyOperator(left, tok.Text, right)
	}
	return left
}

// parseAtom evaluates a single operand. Anything unexpected is consumed and
// treated as empty text, so a malformed formula degrades instead of failing.
func (p *parser) parseAtom() Value {
	if p.depth >= p.maxDepth {
		return NewError(ErrorRef)
	}
	p.depth++
	defer func() { p.depth-- }()

	tok := p.current()

	if tok.Kind == TokenOperator && tok.Text == "-" {
		p.advance()
		val := p.parseAtom()
		switch val.Kind() {
		case KindNumber:
			return Number(-val.Num())
		case KindBool:
			if val.Bool() {
				return Number(-1)
			}
			return Number(0)
		}
		return val
	}
	if tok.Kind == TokenOperator && tok.Text == "+" {
		p.advance()
		return p.parseAtom()
	}

	switch tok.Kind {
	case TokenNumber:
		p.advance()
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return NewError(ErrorErr)
		}
		return Number(n)

	case TokenString:
		p.advance()
		return Text(tok.Text)

	case TokenCell:
		p.advance()
		ref := tok.Text
		if p.current().Kind == TokenColon {
			p.advance()
			if p.current().Kind == TokenCell {
				end := p.advance()
				return p.rangeValue(ref, end.Text)
			}
		}
		return p.cellValue(ref)

	case TokenRange:
		p.advance()
		parts := strings.SplitN(tok.Text, ":", 2)
		if len(parts) == 2 {
			return p.rangeValue(parts[0], parts[1])
		}
		return NewError(ErrorRef)

	case TokenFunction:
		p.advance()
		return p.parseFunction(tok.Text)

	case TokenLParen:
		p.advance()
		val := p.parseExpression()
		if p.current().Kind == TokenRParen {
			p.advance()
		}
		return val

	case TokenEOF:
		return Text("")
	}

	p.advance()
	return Text("")
}

// parseFunction evaluates a function call. Commas between arguments are
// skipped freely, so SUM(1,,2) sees two arguments. An unknown name yields
// #NAME? after its arguments are consumed.
func (p *parser) parseFunction(name string) Value {
	if p.current().Kind == TokenLParen {
		p.advance()
	}
	var args []Value
	for {
		switch p.current().Kind {
		case TokenRParen:
			p.advance()
		case TokenEOF:
		case TokenComma:
			p.advance()
			continue
		default:
			args = append(args, p.parseExpression())
			continue
		}
		break
	}

	fn, ok := p.eval.registry().Get(name)
	if !ok {
		return NewError(ErrorName)
	}
	return p.callFunction(fn, args)
}

// callFunction invokes a builtin. A panicking function surfaces as #ERR!
// rather than taking down the evaluation.
func (p *parser) callFunction(fn Function, args []Value) (result Value) {
	defer func() {
		if r := recover(); r != nil {
			result = NewError(ErrorErr)
		}
	}()
	cell, hasCell := p.ctx.Current()
	cc := &CallContext{
		Cell:    cell,
		HasCell: hasCell,
		Ctx:     p.ctx,
		Grid:    p.eval.Grid,
		Sheet:   p.eval.Sheet,
		Clock:   p.eval.clock(),
		Rand:    p.eval.randSource(),
	}
	return fn(cc, args)
}

func (p *parser) cellValue(ref string) Value {
	if p.eval.Grid == nil {
		return NewError(ErrorRef)
	}
	return p.eval.Grid.CellValue(strings.ReplaceAll(ref, "$", ""), p.ctx)
}

func (p *parser) rangeValue(startRef, endRef string) Value {
	if p.eval.Grid == nil {
		return NewError(ErrorRef)
	}
	start := strings.ReplaceAll(startRef, "$", "")
	end := strings.ReplaceAll(endRef, "$", "")
	return p.eval.Grid.RangeValue(start, end, p.ctx)
}

// numericOperand extracts a float from a value for arithmetic. Booleans
// count as 1/0; text never coerces, so 5+"" is an error, not 5.
func numericOperand(v Value) (float64, bool) {
	switch v.Kind() {
	case KindNumber:
		return v.Num(), true
	case KindBool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// applyOperator folds one binary arithmetic operation. Error operands pass
// through unchanged, left before right, so errors never compound.
func applyOperator(left Value, op string, right Value) Value {
	if left.IsError() {
		return left
	}
	if right.IsError() {
		return right
	}

	// Text concatenation is the one non-numeric combination that works.
	if op == "+" && left.IsText() && right.IsText() {
		return Text(left.Str() + right.Str())
	}

	ln, lok := numericOperand(left)
	rn, rok := numericOperand(right)
	if !lok || !rok {
		return NewError(ErrorErr)
	}

	switch op {
	case "+":
		return Number(ln + rn)
	case "-":
		return Number(ln - rn)
	case "*":
		return Number(ln * rn)
	case "/":
		if rn == 0 {
			return NewError(ErrorDivZero)
		}
		return Number(ln / rn)
	case "%":
		if rn == 0 {
			return NewError(ErrorDivZero)
		}
		return Number(flooredMod(ln, rn))
	case "^":
		return Number(math.Pow(ln, rn))
	}
	return NewError(ErrorErr)
}

// flooredMod is modulo with the sign of the divisor, so 10%3 is 1 and
// -10%3 is 2.
func flooredMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// compareValues folds one comparison. Numbers (and booleans as 1/0) compare
// numerically, text compares case-sensitively, and mixed types are simply
// unequal; ordering across types has no meaning and yields #ERR!.
func compareValues(left Value, op string, right Value) Value {
	if left.IsError() {
		return left
	}
	if right.IsError() {
		return right
	}

	ln, lok := numericOperand(left)
	rn, rok := numericOperand(right)
	switch {
	case lok && rok:
		return Bool(compareOrdered(ln, op, rn))
	case left.IsText() && right.IsText():
		return Bool(compareOrdered(left.Str(), op, right.Str()))
	}

	switch op {
	case "=", "==":
		return Bool(false)
	case "<>", "!=":
		return Bool(true)
	}
	return NewError(ErrorErr)
}

func compareOrdered[T float64 | string](a T, op string, b T) bool {
	switch op {
	case "=", "==":
		return a == b
	case "<>", "!=":
		return a != b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}
