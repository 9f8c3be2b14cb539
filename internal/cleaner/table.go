package cleaner

import (
	"regexp"
	"strings"

	"tripcleaner/internal/utils"
)

// Row is one loosely-typed intermediate record keyed by normalized column
// name. Values are always cleaned strings; "" means missing.
type Row map[string]string

// CellStyle carries per-cell formatting lifted from a legacy source file.
// Colors are RGB hex without "#"; "" means unstyled.
type CellStyle struct {
	Background string
	FontColor  string
	Bold       bool
}

// Table is one adapter's output: column order as discovered in the source,
// rows keyed by those columns, and (for styled sources) a per-row style map
// parallel to Rows. Styles is nil for sources without formatting data.
type Table struct {
	Columns []string
	Rows    []Row
	Styles  []map[string]CellStyle
}

// AddColumn registers a column, keeping first-seen order.
func (t *Table) AddColumn(name string) {
	for _, c := range t.Columns {
		if c == name {
			return
		}
	}
	t.Columns = append(t.Columns, name)
}

// HasColumn reports whether any row of the table carries the column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row, registering any new columns it introduces.
func (t *Table) Append(row Row) {
	for col := range row {
		t.AddColumn(col)
	}
	t.Rows = append(t.Rows, row)
	if t.Styles != nil {
		t.Styles = append(t.Styles, nil)
	}
}

// AppendStyled adds a row together with its per-cell styles.
func (t *Table) AppendStyled(row Row, styles map[string]CellStyle) {
	for col := range row {
		t.AddColumn(col)
	}
	if t.Styles == nil {
		t.Styles = make([]map[string]CellStyle, len(t.Rows))
	}
	t.Rows = append(t.Rows, row)
	t.Styles = append(t.Styles, styles)
}

// Merge appends another table's rows, unioning columns. Empty tables are
// skipped so a parser that yielded nothing never inserts blank rows.
func (t *Table) Merge(other *Table) {
	if other == nil || len(other.Rows) == 0 {
		return
	}
	for _, c := range other.Columns {
		t.AddColumn(c)
	}
	for i, row := range other.Rows {
		if other.Styles != nil && other.Styles[i] != nil {
			t.AppendStyled(row, other.Styles[i])
		} else {
			t.Append(row)
		}
	}
}

// StyleAt returns the style map of row i, nil when the source was unstyled.
func (t *Table) StyleAt(i int) map[string]CellStyle {
	if t.Styles == nil || i < 0 || i >= len(t.Styles) {
		return nil
	}
	return t.Styles[i]
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// NormalizeHeader folds a raw source header into snake_case: line breaks and
// tabs become spaces, runs of whitespace collapse, special characters drop.
func NormalizeHeader(h string) string {
	h = utils.NormalizeSpace(h)
	h = strings.ToLower(h)
	h = nonWordRe.ReplaceAllString(h, "")
	h = utils.NormalizeSpace(h)
	return strings.ReplaceAll(h, " ", "_")
}

// CleanCell normalizes a raw cell: wrapped lines and tabs collapse to single
// spaces, and the missing-value spellings source tools emit become "".
func CleanCell(v string) string {
	v = utils.NormalizeSpace(v)
	switch strings.ToLower(v) {
	case "na", "n/a", "null", "none", "nan":
		return ""
	}
	return v
}

// IsMissing reports whether a cleaned value still reads as a serialization
// artifact of a missing source cell.
func IsMissing(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	low := strings.ToLower(v)
	return low == "nan" || low == "none"
}

// CleanAddress applies the address normalization the locality cache keys on:
// dash, comma and slash become spaces, whitespace collapses, and the result
// is upper-cased.
func CleanAddress(v string) string {
	v = strings.NewReplacer("-", " ", ",", " ", "/", " ").Replace(v)
	return strings.ToUpper(utils.NormalizeSpace(v))
}

// CleanVehicleNo strips separators and upper-cases a registration plate.
func CleanVehicleNo(v string) string {
	v = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(v))
	v = strings.ToUpper(v)
	if v == "NAN" || v == "NONE" {
		return ""
	}
	return v
}
