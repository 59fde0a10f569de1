package lotuscalc

import (
	"crypto/sha256"
	"encoding/hex"
)

// ProtectionSettings holds the sheet-level protection switches. When
// Enabled is false every cell is editable regardless of cell flags.
type ProtectionSettings struct {
	Enabled         bool   `json:"enabled"`
	PasswordHash    string `json:"password_hash"`
	AllowFormatting bool   `json:"allow_formatting"`
	AllowInsertRows bool   `json:"allow_insert_rows"`
	AllowInsertCols bool   `json:"allow_insert_cols"`
	AllowDeleteRows bool   `json:"allow_delete_rows"`
	AllowDeleteCols bool   `json:"allow_delete_cols"`
	AllowSort       bool   `json:"allow_sort"`
}

// ProtectionManager enforces cell protection for a sheet. Individual cells
// carry a protected flag; the flag only blocks edits while sheet
// protection is enabled.
type ProtectionManager struct {
	sheet    *Sheet
	settings ProtectionSettings
}

// NewProtectionManager creates a manager with protection disabled.
func NewProtectionManager(sheet *Sheet) *ProtectionManager {
	return &ProtectionManager{sheet: sheet}
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Enable turns protection on. An empty password means no password is
// required to disable.
func (p *ProtectionManager) Enable(password string) {
	p.settings.Enabled = true
	if password != "" {
		p.settings.PasswordHash = hashPassword(password)
	} else {
		p.settings.PasswordHash = ""
	}
}

// Disable turns protection off if password matches, reporting success.
func (p *ProtectionManager) Disable(password string) bool {
	if p.settings.PasswordHash != "" && hashPassword(password) != p.settings.PasswordHash {
		return false
	}
	p.settings.Enabled = false
	return true
}

// Enabled reports whether sheet protection is active.
func (p *ProtectionManager) Enabled() bool { return p.settings.Enabled }

// Settings exposes the protection switches for adjustment.
func (p *ProtectionManager) Settings() *ProtectionSettings { return &p.settings }

// ProtectCell marks a cell protected, creating it if needed.
func (p *ProtectionManager) ProtectCell(coord Coord) {
	p.sheet.cell(coord).Protected = true
}

// UnprotectCell clears a cell's protected flag.
func (p *ProtectionManager) UnprotectCell(coord Coord) {
	if cell := p.sheet.CellAt(coord); cell != nil {
		cell.Protected = false
	}
}

// ProtectRange marks every cell in rng protected.
func (p *ProtectionManager) ProtectRange(rng RangeRef) {
	for _, coord := range rng.Coords() {
		p.sheet.cell(coord).Protected = true
	}
}

// UnprotectRange clears the protected flag across rng.
func (p *ProtectionManager) UnprotectRange(rng RangeRef) {
	for _, coord := range rng.Coords() {
		if cell := p.sheet.CellAt(coord); cell != nil {
			cell.Protected = false
		}
	}
}

// IsCellProtected reports whether coord rejects edits right now.
func (p *ProtectionManager) IsCellProtected(coord Coord) bool {
	if !p.settings.Enabled {
		return false
	}
	return p.sheet.CellAt(coord).IsProtected()
}

// CanEditCell reports whether coord accepts edits.
func (p *ProtectionManager) CanEditCell(coord Coord) bool {
	return !p.IsCellProtected(coord)
}

// CanInsertRow reports whether row insertion is allowed.
func (p *ProtectionManager) CanInsertRow() bool {
	return !p.settings.Enabled || p.settings.AllowInsertRows
}

// CanInsertCol reports whether column insertion is allowed.
func (p *ProtectionManager) CanInsertCol() bool {
	return !p.settings.Enabled || p.settings.AllowInsertCols
}

// CanDeleteRow reports whether row deletion is allowed.
func (p *ProtectionManager) CanDeleteRow() bool {
	return !p.settings.Enabled || p.settings.AllowDeleteRows
}

// CanDeleteCol reports whether column deletion is allowed.
func (p *ProtectionManager) CanDeleteCol() bool {
	return !p.settings.Enabled || p.settings.AllowDeleteCols
}

// CanSort reports whether range sorting is allowed.
func (p *ProtectionManager) CanSort() bool {
	return !p.settings.Enabled || p.settings.AllowSort
}

// CanFormat reports whether format changes are allowed.
func (p *ProtectionManager) CanFormat() bool {
	return !p.settings.Enabled || p.settings.AllowFormatting
}

// InputCells returns the editable cells of rng in row-major order. With
// protection enabled these are the unprotected cells; otherwise all of
// them.
func (p *ProtectionManager) InputCells(rng RangeRef) []Coord {
	coords := rng.Normalized().Coords()
	if !p.settings.Enabled {
		return coords
	}
	out := coords[:0]
	for _, coord := range coords {
		if !p.sheet.CellAt(coord).IsProtected() {
			out = append(out, coord)
		}
	}
	return out
}

// NextInputCell returns the first editable cell of rng after the given
// coord in row-major order, wrapping to the start of the range. The second
// result is false when rng has no editable cell.
func (p *ProtectionManager) NextInputCell(rng RangeRef, after Coord) (Coord, bool) {
	cells := p.InputCells(rng)
	if len(cells) == 0 {
		return Coord{}, false
	}
	for _, coord := range cells {
		if coord.Row > after.Row || (coord.Row == after.Row && coord.Col > after.Col) {
			return coord, true
		}
	}
	return cells[0], true
}
