package lotuscalc

import (
	"math/rand"
)

// Grid supplies cell and range values to the evaluator. The sheet implements
// it; tests can substitute a lighter fake.
type Grid interface {
	// CellValue returns the evaluated value of the cell at an A1-style
	// reference. $ markers are ignored. An unparseable reference yields
	// a #REF! value.
	CellValue(ref string, ctx *EvalContext) Value

	// RangeValue returns the block of evaluated values between two cell
	// references as an array value, preserving the rectangle's shape.
	RangeValue(startRef, endRef string, ctx *EvalContext) Value
}

// EvalContext tracks the state of one evaluation pass: which cell is being
// computed and the set of cells currently on the evaluation stack, which is
// how circular references are caught while they happen.
type EvalContext struct {
	current   Coord
	hasCell   bool
	computing map[Coord]struct{}
}

// NewEvalContext creates an empty evaluation context.
func NewEvalContext() *EvalContext {
	return &EvalContext{computing: make(map[Coord]struct{})}
}

// Current returns the cell whose formula is being evaluated. The bool is
// false when evaluation was started outside any cell.
func (c *EvalContext) Current() (Coord, bool) {
	return c.current, c.hasCell
}

// Computing reports whether the cell is already on the evaluation stack.
// True means following the reference would loop.
func (c *EvalContext) Computing(coord Coord) bool {
	_, ok := c.computing[coord]
	return ok
}

// Visit marks coord as being evaluated and makes it the current cell.
// Close the returned visit with defer to unwind:
//
//	v := ctx.Visit(coord)
//	defer v.Close()
type CellVisit struct {
	ctx     *EvalContext
	coord   Coord
	prev    Coord
	hadPrev bool
}

// Visit pushes coord onto the evaluation stack.
func (c *EvalContext) Visit(coord Coord) *CellVisit {
	v := &CellVisit{ctx: c, coord: coord, prev: c.current, hadPrev: c.hasCell}
	c.computing[coord] = struct{}{}
	c.current = coord
	c.hasCell = true
	return v
}

// Close pops the cell off the evaluation stack and restores the previous
// current cell. Designed for use with defer.
func (v *CellVisit) Close() {
	delete(v.ctx.computing, v.coord)
	v.ctx.current = v.prev
	v.ctx.hasCell = v.hadPrev
}

// CallContext carries the environment a builtin function may consult: the
// position of the formula being evaluated, the grid for reference funcs like
// INDIRECT, the owning sheet when there is one, and the clock and random
// source so volatile functions stay testable.
type CallContext struct {
	Cell    Coord
	HasCell bool
	Ctx     *EvalContext
	Grid    Grid
	Sheet   *Sheet
	Clock   Clock
	Rand    *rand.Rand
}
