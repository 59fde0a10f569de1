package lotuscalc

import (
	"sort"
	"strings"
)

// DependencyGraph tracks which cells a formula reads and, inversely, which
// cells depend on a given cell. Both directions are kept so that marking a
// cell dirty can walk forward to its dependents without scanning the sheet.
type DependencyGraph struct {
	deps       map[Coord]map[Coord]struct{}
	dependents map[Coord]map[Coord]struct{}
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps:       make(map[Coord]map[Coord]struct{}),
		dependents: make(map[Coord]map[Coord]struct{}),
	}
}

// FormulaDependencies extracts the set of cells a formula reads. Ranges are
// expanded to their member cells. Named references are resolved through
// names; a nil resolver leaves them unresolved and they contribute nothing.
func FormulaDependencies(formula string, names NameResolver) map[Coord]struct{} {
	out := make(map[Coord]struct{})
	tokens := NewTokenizer(names).Tokenize(formula)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Kind {
		case TokenCell:
			// A1:B2 arrives as Cell, Colon, Cell.
			if i+2 < len(tokens) && tokens[i+1].Kind == TokenColon && tokens[i+2].Kind == TokenCell {
				expandRangeInto(out, tok.Text, tokens[i+2].Text)
				i += 2
				continue
			}
			if coord, err := ParseCoord(tok.Text); err == nil {
				out[coord] = struct{}{}
			}
		case TokenRange:
			if start, end, ok := strings.Cut(tok.Text, ":"); ok {
				expandRangeInto(out, start, end)
			}
		}
	}
	return out
}

func expandRangeInto(out map[Coord]struct{}, startRef, endRef string) {
	start, err := ParseCoord(startRef)
	if err != nil {
		return
	}
	end, err := ParseCoord(endRef)
	if err != nil {
		return
	}
	if start.Row > end.Row {
		start.Row, end.Row = end.Row, start.Row
	}
	if start.Col > end.Col {
		start.Col, end.Col = end.Col, start.Col
	}
	for r := start.Row; r <= end.Row; r++ {
		for c := start.Col; c <= end.Col; c++ {
			out[Coord{Row: r, Col: c}] = struct{}{}
		}
	}
}

// Set replaces the dependency set of cell, updating reverse edges.
func (g *DependencyGraph) Set(cell Coord, deps map[Coord]struct{}) {
	g.Remove(cell)
	if len(deps) == 0 {
		return
	}
	set := make(map[Coord]struct{}, len(deps))
	for d := range deps {
		set[d] = struct{}{}
		rev := g.dependents[d]
		if rev == nil {
			rev = make(map[Coord]struct{})
			g.dependents[d] = rev
		}
		rev[cell] = struct{}{}
	}
	g.deps[cell] = set
}

// Remove drops cell's outgoing edges and the matching reverse edges.
// Edges pointing at cell from other formulas are kept.
func (g *DependencyGraph) Remove(cell Coord) {
	old, ok := g.deps[cell]
	if !ok {
		return
	}
	delete(g.deps, cell)
	for d := range old {
		rev := g.dependents[d]
		delete(rev, cell)
		if len(rev) == 0 {
			delete(g.dependents, d)
		}
	}
}

// Clear empties the graph.
func (g *DependencyGraph) Clear() {
	g.deps = make(map[Coord]map[Coord]struct{})
	g.dependents = make(map[Coord]map[Coord]struct{})
}

// Empty reports whether no formula has registered dependencies.
func (g *DependencyGraph) Empty() bool {
	return len(g.deps) == 0
}

// Dependencies returns the cells that cell reads, sorted row-major.
func (g *DependencyGraph) Dependencies(cell Coord) []Coord {
	return sortedCoordSet(g.deps[cell])
}

// Dependents returns the cells whose formulas read cell, sorted row-major.
func (g *DependencyGraph) Dependents(cell Coord) []Coord {
	return sortedCoordSet(g.dependents[cell])
}

// HasDependents reports whether any formula reads cell.
func (g *DependencyGraph) HasDependents(cell Coord) bool {
	return len(g.dependents[cell]) > 0
}

func (g *DependencyGraph) dependentSet(cell Coord) map[Coord]struct{} {
	return g.dependents[cell]
}

func sortedCoordSet(set map[Coord]struct{}) []Coord {
	if len(set) == 0 {
		return nil
	}
	out := make([]Coord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

// FindCircular returns every cell participating in a reference cycle,
// sorted row-major. It runs Tarjan's strongly connected components
// algorithm over the dependency edges; a component of two or more cells
// is a cycle, as is a single cell that reads itself.
func (g *DependencyGraph) FindCircular() []Coord {
	index := 0
	indices := make(map[Coord]int)
	lowlink := make(map[Coord]int)
	onStack := make(map[Coord]bool)
	var stack []Coord
	circular := make(map[Coord]struct{})

	var strongconnect func(v Coord)
	strongconnect = func(v Coord) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for w := range g.deps[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []Coord
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 {
				for _, w := range scc {
					circular[w] = struct{}{}
				}
			} else if _, self := g.deps[scc[0]][scc[0]]; self {
				circular[scc[0]] = struct{}{}
			}
		}
	}

	roots := make([]Coord, 0, len(g.deps))
	for v := range g.deps {
		roots = append(roots, v)
	}
	sortCoords(roots)
	for _, v := range roots {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}

	return sortedCoordSet(circular)
}
