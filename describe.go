package lotuscalc

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable summary of the sheet: its dimensions,
// recalculation settings, named ranges, and every formula cell with the
// cells it reads. Useful for inspecting a model during development.
func (s *Sheet) Describe() string {
	var b strings.Builder

	b.WriteString("Sheet: ")
	if s.filename != "" {
		b.WriteString(s.filename)
	} else {
		b.WriteString("<unsaved>")
	}
	if s.modified {
		b.WriteString(" (modified)")
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Size: %d rows x %d cols, %d cells", s.rows, s.cols, s.CellCount())
	if rng, ok := s.UsedRange(); ok {
		fmt.Fprintf(&b, " in %s", rng)
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Recalculation: %s, %s order", s.RecalcMode(), s.RecalcOrder())
	if s.NeedsRecalc() {
		b.WriteString(" (recalc pending)")
	}
	b.WriteByte('\n')

	if names := s.names.List(); len(names) > 0 {
		b.WriteString("Named ranges:\n")
		for _, nr := range names {
			fmt.Fprintf(&b, "  %-16s %s", nr.Name, nr.Ref())
			if nr.Description != "" {
				fmt.Fprintf(&b, "  %s", nr.Description)
			}
			b.WriteByte('\n')
		}
	}

	var formulas []string
	s.EachCell(func(coord Coord, cell *Cell) {
		if !cell.IsFormula() {
			return
		}
		line := fmt.Sprintf("  %s: %s", coord, cell.Raw)
		if deps := s.engine.Dependencies(coord); len(deps) > 0 {
			line += " <- " + joinCoords(deps)
		}
		formulas = append(formulas, line)
	})
	if len(formulas) > 0 {
		b.WriteString("Formula cells:\n")
		for _, line := range formulas {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	if circ := s.CircularRefs(); len(circ) > 0 {
		fmt.Fprintf(&b, "Circular references: %s\n", joinCoords(circ))
	}

	return b.String()
}

// DescribeCell returns a detailed description of a single cell: raw
// contents, computed value, display text, format, protection, and its
// position in the dependency graph.
func (s *Sheet) DescribeCell(ref string) (string, error) {
	coord, err := ParseCoord(ref)
	if err != nil {
		return "", err
	}
	if !s.inBounds(coord) {
		return "", fmt.Errorf("describe %s: %w", ref, ErrOutOfRange)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s\n", coord)

	cell := s.CellAt(coord)
	if cell == nil || cell.Raw == "" {
		b.WriteString("  Contents: (empty)\n")
	} else {
		fmt.Fprintf(&b, "  Contents: %s\n", cell.Raw)
		if cell.IsFormula() {
			fmt.Fprintf(&b, "  Value: %s\n", s.ValueAt(coord).String())
		}
		fmt.Fprintf(&b, "  Display: %q\n", s.DisplayText(coord))
	}

	format := s.globals.Format
	if cell != nil {
		format = cell.FormatCode(s.globals.Format)
	}
	fmt.Fprintf(&b, "  Format: %s\n", format)

	if deps := s.engine.Dependencies(coord); len(deps) > 0 {
		fmt.Fprintf(&b, "  Depends on: %s\n", joinCoords(deps))
	}
	if dependents := s.engine.Dependents(coord); len(dependents) > 0 {
		fmt.Fprintf(&b, "  Referenced by: %s\n", joinCoords(dependents))
	}

	if cell != nil && cell.Protected {
		b.WriteString("  Protected: yes\n")
	}

	return b.String(), nil
}

// joinCoords renders coordinates as space-separated A1 references.
func joinCoords(coords []Coord) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.Ref()
	}
	return strings.Join(parts, " ")
}
