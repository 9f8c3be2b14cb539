package cleaner

import (
	"regexp"
	"strings"

	"tripcleaner/internal/utils"
)

// PDF table extraction breaks statement rows in predictable ways: long
// transaction IDs wrap onto a continuation row, 12-hour timestamps shed
// their AM/PM marker onto the next row, multi-line plaza names spill over,
// and vehicle numbers appear once as a banner row above their transactions.
// RowRepairEngine undoes those breaks on an intermediate toll table.
type RowRepairEngine struct {
	cfg RepairConfig
}

// RepairConfig names the fields the repair passes operate on and selects
// which passes run. Field names refer to intermediate table columns.
type RepairConfig struct {
	DateField    string
	IDField      string
	PlazaField   string
	VehicleField string
	// Fields that must all be empty for a row to count as a plaza spill.
	AnchorFields []string

	MergeWrappedIDs   bool
	LiftVehicleRows   bool
	MergeMeridiem     bool
	MergePlazaSpill   bool
	PropagateVehicles bool
}

var (
	vehiclePlateRe = regexp.MustCompile(`([A-Z]{2}[0-9]{1,2}[A-Z]{0,3}[0-9]{4})`)
	datePatternRe  = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)
	brokenYearRe   = regexp.MustCompile(`(\d{2})-(\d)\s(\d{3})`)
	brokenTimeRe   = regexp.MustCompile(`(\d{2}):(\d)\s(\d):(\d{2})`)
)

func NewRowRepairEngine(cfg RepairConfig) *RowRepairEngine {
	return &RowRepairEngine{cfg: cfg}
}

// Repair runs the configured passes in a fixed order: wrapped-ID merge,
// banner-row vehicle lift, AM/PM merge, plaza spill merge, then vehicle
// propagation. Order matters: a wrapped ID row must be folded before the
// vehicle pass or its empty cells would inherit a plate.
func (e *RowRepairEngine) Repair(t *Table) {
	if t == nil || len(t.Rows) == 0 {
		return
	}
	if e.cfg.MergeWrappedIDs {
		e.mergeWrappedIDs(t)
	}
	if e.cfg.LiftVehicleRows {
		e.liftVehicleRows(t)
	}
	if e.cfg.MergeMeridiem {
		e.mergeMeridiem(t)
	}
	if e.cfg.MergePlazaSpill {
		e.mergePlazaSpill(t)
	}
	if e.cfg.PropagateVehicles {
		e.propagateVehicles(t)
	}
	dropEmptyRows(t)
}

// mergeWrappedIDs folds continuation rows back into the transaction above
// them. A continuation has no travel date but carries an ID fragment. A
// fragment that looks like a registration plate prefix is a vehicle banner,
// not a wrapped ID, and is left for the vehicle pass.
func (e *RowRepairEngine) mergeWrappedIDs(t *Table) {
	kept := -1
	for i, row := range t.Rows {
		date := row[e.cfg.DateField]
		frag := row[e.cfg.IDField]
		if IsMissing(date) && !IsMissing(frag) && kept >= 0 &&
			!strings.Contains(frag, "HR") && !strings.Contains(frag, "DL") {
			t.Rows[kept][e.cfg.IDField] += frag
			clearRow(t.Rows[i])
			continue
		}
		kept = i
	}
}

// liftVehicleRows pulls banner rows out of the data. A banner carries a
// registration plate in the date column and no actual date; the plate is
// then stamped onto following rows that lack one.
func (e *RowRepairEngine) liftVehicleRows(t *Table) {
	if !t.HasColumn(e.cfg.VehicleField) {
		t.AddColumn(e.cfg.VehicleField)
	}
	current := ""
	for _, row := range t.Rows {
		val := strings.TrimSpace(row[e.cfg.DateField])
		compact := strings.ReplaceAll(val, " ", "")
		m := vehiclePlateRe.FindString(compact)
		if m != "" && !datePatternRe.MatchString(val) {
			current = m
			clearRow(row)
			continue
		}
		if current != "" && IsMissing(row[e.cfg.VehicleField]) {
			row[e.cfg.VehicleField] = current
		}
	}
}

// mergeMeridiem reattaches a bare AM/PM cell to the timestamp above it.
func (e *RowRepairEngine) mergeMeridiem(t *Table) {
	for i := 1; i < len(t.Rows); i++ {
		val := strings.TrimSpace(t.Rows[i][e.cfg.DateField])
		switch strings.ToLower(val) {
		case "am", "pm":
			prev := t.Rows[i-1][e.cfg.DateField]
			t.Rows[i-1][e.cfg.DateField] = strings.TrimSpace(prev + " " + val)
			t.Rows[i][e.cfg.DateField] = ""
		}
	}
}

// mergePlazaSpill appends plaza-name overflow rows to the row above. A
// spill row has text only in the plaza column; every anchor field is empty.
func (e *RowRepairEngine) mergePlazaSpill(t *Table) {
	for i := 1; i < len(t.Rows); i++ {
		row := t.Rows[i]
		if IsMissing(row[e.cfg.PlazaField]) {
			continue
		}
		spill := true
		for _, f := range e.cfg.AnchorFields {
			if !IsMissing(row[f]) {
				spill = false
				break
			}
		}
		if !spill {
			continue
		}
		prev := t.Rows[i-1][e.cfg.PlazaField]
		t.Rows[i-1][e.cfg.PlazaField] = strings.TrimSpace(prev + " " + row[e.cfg.PlazaField])
		row[e.cfg.PlazaField] = ""
	}
}

// propagateVehicles fills empty vehicle cells from the nearest row above.
func (e *RowRepairEngine) propagateVehicles(t *Table) {
	current := ""
	for _, row := range t.Rows {
		if v := strings.TrimSpace(row[e.cfg.VehicleField]); !IsMissing(v) {
			current = v
			continue
		}
		if current != "" {
			row[e.cfg.VehicleField] = current
		}
	}
}

func clearRow(row Row) {
	for k := range row {
		row[k] = ""
	}
}

func dropEmptyRows(t *Table) {
	out := t.Rows[:0]
	var styles []map[string]CellStyle
	for i, row := range t.Rows {
		empty := true
		for _, v := range row {
			if !IsMissing(v) {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		out = append(out, row)
		if t.Styles != nil {
			styles = append(styles, t.StyleAt(i))
		}
	}
	t.Rows = out
	if t.Styles != nil {
		t.Styles = styles
	}
}

// RepairDateTime fixes PDF glyph-spacing artifacts inside timestamps:
// a year split as "2 025" and minutes split as "23:3 2:46".
func RepairDateTime(v string) string {
	v = utils.NormalizeSpace(v)
	v = brokenYearRe.ReplaceAllString(v, "$1-$2$3")
	v = brokenTimeRe.ReplaceAllString(v, "$1:$2$3:$4")
	return v
}
