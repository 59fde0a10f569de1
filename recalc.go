package lotuscalc

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RecalcMode controls when formulas are re-evaluated.
type RecalcMode int

const (
	// RecalcAutomatic re-evaluates dirty cells after every edit.
	RecalcAutomatic RecalcMode = iota
	// RecalcManual defers re-evaluation until Recalculate is called.
	RecalcManual
)

// String returns the mode name as shown in status displays.
func (m RecalcMode) String() string {
	if m == RecalcManual {
		return "Manual"
	}
	return "Automatic"
}

// ParseRecalcMode parses a mode name, case-insensitively.
func ParseRecalcMode(s string) (RecalcMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "automatic", "auto", "a":
		return RecalcAutomatic, nil
	case "manual", "m":
		return RecalcManual, nil
	}
	return RecalcAutomatic, fmt.Errorf("unknown recalculation mode %q", s)
}

// RecalcOrder controls the sequence cells are evaluated in.
type RecalcOrder int

const (
	// OrderNatural evaluates dependencies before dependents.
	OrderNatural RecalcOrder = iota
	// OrderColumnWise sweeps column by column, top to bottom.
	OrderColumnWise
	// OrderRowWise sweeps row by row, left to right.
	OrderRowWise
)

// String returns the order name as shown in status displays.
func (o RecalcOrder) String() string {
	switch o {
	case OrderColumnWise:
		return "Column-wise"
	case OrderRowWise:
		return "Row-wise"
	}
	return "Natural"
}

// ParseRecalcOrder parses an order name, case-insensitively.
func ParseRecalcOrder(s string) (RecalcOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "natural", "n":
		return OrderNatural, nil
	case "column-wise", "columnwise", "column", "c":
		return OrderColumnWise, nil
	case "row-wise", "rowwise", "row", "r":
		return OrderRowWise, nil
	}
	return OrderNatural, fmt.Errorf("unknown recalculation order %q", s)
}

// RecalcStats summarizes a recalculation pass.
type RecalcStats struct {
	CellsEvaluated    int
	CircularRefsFound int
	ErrorsFound       int
	Elapsed           time.Duration
}

// RecalcEngine drives formula re-evaluation over a sheet. It owns the
// dependency graph, the dirty set, and the mode/order settings.
type RecalcEngine struct {
	sheet    *Sheet
	mode     RecalcMode
	order    RecalcOrder
	graph    *DependencyGraph
	dirty    map[Coord]struct{}
	circular map[Coord]struct{}
}

// NewRecalcEngine creates an engine for sheet with automatic mode and
// natural order.
func NewRecalcEngine(sheet *Sheet) *RecalcEngine {
	return &RecalcEngine{
		sheet:    sheet,
		mode:     RecalcAutomatic,
		order:    OrderNatural,
		graph:    NewDependencyGraph(),
		dirty:    make(map[Coord]struct{}),
		circular: make(map[Coord]struct{}),
	}
}

// Mode returns the current recalculation mode.
func (e *RecalcEngine) Mode() RecalcMode { return e.mode }

// SetMode switches between automatic and manual recalculation.
func (e *RecalcEngine) SetMode(mode RecalcMode) { e.mode = mode }

// Order returns the current recalculation order.
func (e *RecalcEngine) Order() RecalcOrder { return e.order }

// SetOrder switches the evaluation sequence. The dependency graph only
// matters for natural order, so the sweep orders drop it; it is rebuilt
// lazily on the next full natural recalculation.
func (e *RecalcEngine) SetOrder(order RecalcOrder) {
	e.order = order
	if order != OrderNatural {
		e.graph.Clear()
	}
}

// NeedsRecalc reports whether any cell is marked dirty.
func (e *RecalcEngine) NeedsRecalc() bool { return len(e.dirty) > 0 }

// Graph exposes the dependency graph for inspection.
func (e *RecalcEngine) Graph() *DependencyGraph { return e.graph }

// Dependencies returns the cells that cell's formula reads.
func (e *RecalcEngine) Dependencies(cell Coord) []Coord {
	return e.graph.Dependencies(cell)
}

// Dependents returns the cells whose formulas read cell.
func (e *RecalcEngine) Dependents(cell Coord) []Coord {
	return e.graph.Dependents(cell)
}

// CircularCells returns the cells the last pass flagged as circular,
// sorted row-major.
func (e *RecalcEngine) CircularCells() []Coord {
	return sortedCoordSet(e.circular)
}

// FindCircularReferences runs cycle detection over the current graph
// without evaluating anything.
func (e *RecalcEngine) FindCircularReferences() []Coord {
	return e.graph.FindCircular()
}

// UpdateCellDependency re-registers cell's dependencies from formula.
// An empty formula removes the cell from the graph.
func (e *RecalcEngine) UpdateCellDependency(cell Coord, formula string) {
	if formula == "" {
		e.graph.Remove(cell)
		return
	}
	e.graph.Set(cell, FormulaDependencies(formula, e.sheet.names))
}

// MarkDirty marks cell and every transitive dependent dirty. In automatic
// mode a recalculation of the dirty set runs immediately.
func (e *RecalcEngine) MarkDirty(cell Coord) {
	queue := []Coord{cell}
	e.dirty[cell] = struct{}{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range e.graph.dependentSet(cur) {
			if _, seen := e.dirty[dep]; seen {
				continue
			}
			e.dirty[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}
	if e.mode == RecalcAutomatic {
		e.Recalculate(false)
	}
}

// RebuildGraph re-extracts dependencies for every formula cell. Used after
// structural edits that rewrite many formulas at once.
func (e *RecalcEngine) RebuildGraph() {
	e.graph.Clear()
	for coord, cell := range e.sheet.formulaCells() {
		e.graph.Set(coord, FormulaDependencies(cell.Formula(), e.sheet.names))
	}
}

// Recalculate re-evaluates formula cells and returns pass statistics.
// When full is true every formula cell is a candidate and the graph is
// rebuilt if empty; otherwise only the dirty set is visited. Cells in
// reference cycles are still evaluated once and yield #CIRC!.
func (e *RecalcEngine) Recalculate(full bool) RecalcStats {
	start := time.Now()
	var stats RecalcStats

	var candidates map[Coord]struct{}
	if full {
		if e.graph.Empty() {
			e.RebuildGraph()
		}
		formulas := e.sheet.formulaCells()
		candidates = make(map[Coord]struct{}, len(formulas))
		for coord := range formulas {
			candidates[coord] = struct{}{}
		}
	} else {
		candidates = make(map[Coord]struct{}, len(e.dirty))
		for coord := range e.dirty {
			candidates[coord] = struct{}{}
		}
	}

	order := e.calculationOrder(candidates)

	e.sheet.clearValueCache()
	e.circular = make(map[Coord]struct{})

	for _, coord := range order {
		cell := e.sheet.CellAt(coord)
		if cell == nil || !cell.IsFormula() {
			continue
		}
		value := e.sheet.ValueAt(coord)
		stats.CellsEvaluated++
		if value.IsError() {
			if value.ErrKind() == ErrorCirc {
				e.circular[coord] = struct{}{}
				stats.CircularRefsFound++
			} else {
				stats.ErrorsFound++
			}
		}
	}

	e.dirty = make(map[Coord]struct{})
	stats.Elapsed = time.Since(start)
	return stats
}

func (e *RecalcEngine) calculationOrder(candidates map[Coord]struct{}) []Coord {
	switch e.order {
	case OrderColumnWise:
		return sweepOrder(candidates, func(a, b Coord) bool {
			if a.Col != b.Col {
				return a.Col < b.Col
			}
			return a.Row < b.Row
		})
	case OrderRowWise:
		return sweepOrder(candidates, func(a, b Coord) bool {
			if a.Row != b.Row {
				return a.Row < b.Row
			}
			return a.Col < b.Col
		})
	}
	return e.topologicalOrder(candidates)
}

func sweepOrder(candidates map[Coord]struct{}, less func(a, b Coord) bool) []Coord {
	out := make([]Coord, 0, len(candidates))
	for coord := range candidates {
		out = append(out, coord)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// topologicalOrder runs Kahn's algorithm restricted to the candidate set.
// In-degree counts only edges between candidates; cells left over after the
// queue drains sit on cycles and are appended at the end, sorted, so they
// are still evaluated exactly once.
func (e *RecalcEngine) topologicalOrder(candidates map[Coord]struct{}) []Coord {
	indegree := make(map[Coord]int, len(candidates))
	for coord := range candidates {
		n := 0
		for dep := range e.graph.deps[coord] {
			if _, ok := candidates[dep]; ok {
				n++
			}
		}
		indegree[coord] = n
	}

	var queue []Coord
	for coord, n := range indegree {
		if n == 0 {
			queue = append(queue, coord)
		}
	}
	sortCoords(queue)

	order := make([]Coord, 0, len(candidates))
	placed := make(map[Coord]struct{}, len(candidates))

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		placed[cur] = struct{}{}

		var freed []Coord
		for dep := range e.graph.dependentSet(cur) {
			if _, ok := candidates[dep]; !ok {
				continue
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				freed = append(freed, dep)
			}
		}
		sortCoords(freed)
		queue = append(queue, freed...)
	}

	if len(order) < len(candidates) {
		var rest []Coord
		for coord := range candidates {
			if _, ok := placed[coord]; !ok {
				rest = append(rest, coord)
			}
		}
		sortCoords(rest)
		order = append(order, rest...)
	}
	return order
}
