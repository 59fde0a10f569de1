package lotuscalc

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	namePattern        = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	cellRefLikePattern = regexp.MustCompile(`^[A-Za-z]+\d+$`)
)

// NamedRange binds a name to a cell or rectangular range. Names are stored
// upper-case; lookups are case-insensitive.
type NamedRange struct {
	Name        string
	Start       Coord
	End         Coord
	IsRange     bool
	Description string
}

// Ref renders the target as A1 or A1:B2 notation.
func (n *NamedRange) Ref() string {
	if n.IsRange {
		return n.Start.Ref() + ":" + n.End.Ref()
	}
	return n.Start.Ref()
}

// Contains reports whether coord falls inside the named target.
func (n *NamedRange) Contains(coord Coord) bool {
	if !n.IsRange {
		return n.Start == coord
	}
	return coord.Row >= n.Start.Row && coord.Row <= n.End.Row &&
		coord.Col >= n.Start.Col && coord.Col <= n.End.Col
}

// NamedRangeManager owns a sheet's named ranges and doubles as the
// tokenizer's NameResolver.
type NamedRangeManager struct {
	names map[string]*NamedRange
}

// NewNamedRangeManager creates an empty manager.
func NewNamedRangeManager() *NamedRangeManager {
	return &NamedRangeManager{names: make(map[string]*NamedRange)}
}

// IsValidName reports whether name can be defined. A name starts with a
// letter, continues with letters, digits, or underscores, and must not
// look like a cell reference.
func IsValidName(name string) bool {
	return namePattern.MatchString(name) && !cellRefLikePattern.MatchString(name)
}

// Define binds name to ref, replacing any existing binding. ref is a cell
// like B4 or a range like A1:C10.
func (m *NamedRangeManager) Define(name, ref string) (*NamedRange, error) {
	if !IsValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	nr := &NamedRange{Name: strings.ToUpper(name)}
	if strings.Contains(ref, ":") {
		rng, err := ParseRangeRef(ref)
		if err != nil {
			return nil, err
		}
		rng = rng.Normalized()
		nr.Start = rng.Start.Coord()
		nr.End = rng.End.Coord()
		nr.IsRange = true
	} else {
		coord, err := ParseCoord(ref)
		if err != nil {
			return nil, err
		}
		nr.Start = coord
		nr.End = coord
	}
	m.names[nr.Name] = nr
	return nr, nil
}

// Delete removes name, reporting whether it existed.
func (m *NamedRangeManager) Delete(name string) bool {
	key := strings.ToUpper(name)
	if _, ok := m.names[key]; !ok {
		return false
	}
	delete(m.names, key)
	return true
}

// Rename moves the binding of oldName to newName.
func (m *NamedRangeManager) Rename(oldName, newName string) error {
	oldKey := strings.ToUpper(oldName)
	nr, ok := m.names[oldKey]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNameNotFound, oldName)
	}
	if !IsValidName(newName) {
		return fmt.Errorf("%w: %q", ErrBadName, newName)
	}
	newKey := strings.ToUpper(newName)
	if newKey == oldKey {
		return nil
	}
	if _, taken := m.names[newKey]; taken {
		return fmt.Errorf("%w: %q", ErrNameExists, newName)
	}
	delete(m.names, oldKey)
	nr.Name = newKey
	m.names[newKey] = nr
	return nil
}

// Get looks up a named range case-insensitively.
func (m *NamedRangeManager) Get(name string) (*NamedRange, bool) {
	nr, ok := m.names[strings.ToUpper(name)]
	return nr, ok
}

// Exists reports whether name is defined.
func (m *NamedRangeManager) Exists(name string) bool {
	_, ok := m.names[strings.ToUpper(name)]
	return ok
}

// Resolve maps a name to its A1-notation target for the tokenizer.
func (m *NamedRangeManager) Resolve(name string) (string, bool) {
	nr, ok := m.names[strings.ToUpper(name)]
	if !ok {
		return "", false
	}
	return nr.Ref(), true
}

// List returns all named ranges sorted by name.
func (m *NamedRangeManager) List() []*NamedRange {
	out := make([]*NamedRange, 0, len(m.names))
	for _, nr := range m.names {
		out = append(out, nr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindByCell returns every named range containing coord, sorted by name.
func (m *NamedRangeManager) FindByCell(coord Coord) []*NamedRange {
	var out []*NamedRange
	for _, nr := range m.names {
		if nr.Contains(coord) {
			out = append(out, nr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of defined names.
func (m *NamedRangeManager) Len() int { return len(m.names) }

// Clear removes every binding.
func (m *NamedRangeManager) Clear() {
	m.names = make(map[string]*NamedRange)
}

// AdjustForInsertRow shifts targets at or below the inserted row down.
func (m *NamedRangeManager) AdjustForInsertRow(atRow int) {
	for _, nr := range m.names {
		if !nr.IsRange {
			if nr.Start.Row >= atRow {
				nr.Start.Row++
				nr.End.Row++
			}
			continue
		}
		if nr.Start.Row >= atRow {
			nr.Start.Row++
		}
		if nr.End.Row >= atRow {
			nr.End.Row++
		}
	}
}

// AdjustForDeleteRow shifts targets below the deleted row up. Single-cell
// names on the deleted row are removed; their names are returned.
func (m *NamedRangeManager) AdjustForDeleteRow(atRow int) []string {
	var invalidated []string
	for key, nr := range m.names {
		if !nr.IsRange {
			if nr.Start.Row == atRow {
				invalidated = append(invalidated, nr.Name)
				delete(m.names, key)
			} else if nr.Start.Row > atRow {
				nr.Start.Row--
				nr.End.Row--
			}
			continue
		}
		if nr.Start.Row > atRow {
			nr.Start.Row--
		}
		if nr.End.Row > atRow {
			nr.End.Row--
		} else if nr.End.Row == atRow && nr.End.Row > nr.Start.Row {
			// A range ending on the deleted row contracts.
			nr.End.Row--
		}
	}
	sort.Strings(invalidated)
	return invalidated
}

// AdjustForInsertCol shifts targets at or right of the inserted column.
func (m *NamedRangeManager) AdjustForInsertCol(atCol int) {
	for _, nr := range m.names {
		if !nr.IsRange {
			if nr.Start.Col >= atCol {
				nr.Start.Col++
				nr.End.Col++
			}
			continue
		}
		if nr.Start.Col >= atCol {
			nr.Start.Col++
		}
		if nr.End.Col >= atCol {
			nr.End.Col++
		}
	}
}

// AdjustForDeleteCol shifts targets right of the deleted column left.
// Single-cell names on the deleted column are removed and returned.
func (m *NamedRangeManager) AdjustForDeleteCol(atCol int) []string {
	var invalidated []string
	for key, nr := range m.names {
		if !nr.IsRange {
			if nr.Start.Col == atCol {
				invalidated = append(invalidated, nr.Name)
				delete(m.names, key)
			} else if nr.Start.Col > atCol {
				nr.Start.Col--
				nr.End.Col--
			}
			continue
		}
		if nr.Start.Col > atCol {
			nr.Start.Col--
		}
		if nr.End.Col > atCol {
			nr.End.Col--
		} else if nr.End.Col == atCol && nr.End.Col > nr.Start.Col {
			// A range ending on the deleted column contracts.
			nr.End.Col--
		}
	}
	sort.Strings(invalidated)
	return invalidated
}
