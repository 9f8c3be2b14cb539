package cleaner

import (
	"strings"

	"tripcleaner/internal/domain"
	"tripcleaner/internal/pdftable"
	"tripcleaner/internal/utils"
)

// extractPDFTables is swappable so variant tests can feed grids directly.
var extractPDFTables = pdftable.Extract

// fastagAdapter reads one bank's FASTag statement PDF. Each bank lays its
// statement out differently, so the variant function turns the raw grid
// into an intermediate toll table; the shared post pass and the repair
// engine then fix what PDF extraction broke.
type fastagAdapter struct {
	bank    string
	convert func(grid [][]string) (*Table, error)
	repair  *RowRepairEngine
}

func (a *fastagAdapter) Name() string { return SourceFastag + ":" + a.bank }

func (a *fastagAdapter) Parse(f File) (*Table, error) {
	tables, err := extractPDFTables(f.Data)
	if err != nil {
		return nil, &domain.FileError{Filename: f.Name, Err: err}
	}
	var grid [][]string
	for _, tbl := range tables {
		grid = append(grid, tbl...)
	}
	if len(grid) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	t, err := a.convert(grid)
	if err != nil {
		return nil, &domain.FileError{Filename: f.Name, Err: err}
	}
	if a.repair != nil {
		a.repair.Repair(t)
	}
	finishTollTable(t)
	if len(t.Rows) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	return t, nil
}

func (a *fastagAdapter) MapConfig() MapConfig {
	return MapConfig{Schema: TollSchema()}
}

// tollRepairConfig covers the row breaks seen across all four banks.
func tollRepairConfig() RepairConfig {
	return RepairConfig{
		DateField:    "travel_date_time",
		IDField:      "unique_transaction_id",
		PlazaField:   "plaza_name",
		VehicleField: "vehicle_number",
		AnchorFields: []string{"vehicle_number", "travel_date_time", "unique_transaction_id", "activity", "debit_amount"},
	}
}

func newFastagICICI() *fastagAdapter {
	return &fastagAdapter{bank: "icici", convert: convertICICI}
}

func newFastagIDFC() *fastagAdapter {
	cfg := tollRepairConfig()
	cfg.MergeWrappedIDs = true
	cfg.LiftVehicleRows = true
	cfg.PropagateVehicles = true
	return &fastagAdapter{bank: "idfc", convert: convertIDFC, repair: NewRowRepairEngine(cfg)}
}

func newFastagIDFCB() *fastagAdapter {
	return &fastagAdapter{bank: "idfcb", convert: convertIDFCB}
}

func newFastagIndus() *fastagAdapter {
	cfg := tollRepairConfig()
	cfg.MergeMeridiem = true
	cfg.MergePlazaSpill = true
	return &fastagAdapter{bank: "indus", convert: convertIndus, repair: NewRowRepairEngine(cfg)}
}

// mapTollHeader classifies a statement column by keyword. Empty return
// means the column is dropped.
func mapTollHeader(h string) string {
	c := strings.ToLower(utils.NormalizeSpace(h))
	switch {
	case c == "":
		return ""
	case strings.Contains(c, "vehicle"):
		return "vehicle_number"
	case strings.Contains(c, "unique") || (strings.Contains(c, "transaction") && strings.Contains(c, "id")):
		return "unique_transaction_id"
	case (strings.Contains(c, "plaza") || strings.Contains(c, "lane")) && strings.Contains(c, "id"):
		return "plaza_id"
	case strings.Contains(c, "plaza") || strings.Contains(c, "description") || strings.Contains(c, "toll"):
		return "plaza_name"
	case strings.Contains(c, "date"):
		return "travel_date_time"
	case strings.Contains(c, "activity") || c == "type":
		return "activity"
	case strings.Contains(c, "debit") || (strings.Contains(c, "amount") && strings.Contains(c, "dr")):
		return "debit_amount"
	}
	return ""
}

// gridToTable applies a header row to the remaining grid rows.
func gridToTable(header []string, rows [][]string, mapper func(string) string) *Table {
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = mapper(h)
	}
	t := &Table{Columns: tollColumnOrder()}
	for _, raw := range rows {
		row := Row{}
		for _, f := range t.Columns {
			row[f] = ""
		}
		filled := false
		for i, v := range raw {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			v = CleanCell(v)
			if v != "" {
				filled = true
			}
			if row[fields[i]] == "" {
				row[fields[i]] = v
			}
		}
		if filled {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func tollColumnOrder() []string {
	return []string{"vehicle_number", "travel_date_time", "unique_transaction_id", "plaza_name", "plaza_id", "activity", "debit_amount"}
}

// convertICICI finds the header by keyword within the statement preamble.
// ICICI statements either carry a vehicle column or print the plate as the
// first token of the first data row.
func convertICICI(grid [][]string) (*Table, error) {
	headerIdx := -1
	for i := 0; i < len(grid) && i < 20; i++ {
		joined := strings.ToLower(strings.Join(grid[i], " "))
		if strings.Contains(joined, "date") && strings.Contains(joined, "description") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 || headerIdx+1 >= len(grid) {
		return nil, domain.ErrEmptyBatch
	}

	t := gridToTable(grid[headerIdx], grid[headerIdx+1:], mapTollHeader)

	hasVehicle := false
	for _, row := range t.Rows {
		if row["vehicle_number"] != "" {
			hasVehicle = true
			break
		}
	}
	if !hasVehicle && len(t.Rows) > 0 {
		// Plate rides in front of the first timestamp.
		first := t.Rows[0]["travel_date_time"]
		if parts := strings.Fields(first); len(parts) > 1 && vehiclePlateRe.MatchString(parts[0]) {
			plate := parts[0]
			t.Rows = t.Rows[1:]
			for _, row := range t.Rows {
				row["vehicle_number"] = plate
			}
		}
	}
	return t, nil
}

// convertIDFC drops the five-row account preamble; the sixth row is the
// header. Split and banner rows are left for the repair engine.
func convertIDFC(grid [][]string) (*Table, error) {
	if len(grid) <= 6 {
		return nil, domain.ErrEmptyBatch
	}
	return gridToTable(grid[5], grid[6:], mapTollHeader), nil
}

// convertIDFCB reads the business-portal IDFC layout: the plate sits at a
// fixed cell in the account block above a five-row preamble.
func convertIDFCB(grid [][]string) (*Table, error) {
	vehicle := ""
	if len(grid) > 1 && len(grid[1]) > 3 {
		vehicle = CleanVehicleNo(grid[1][3])
	}
	if len(grid) <= 6 {
		return nil, domain.ErrEmptyBatch
	}
	t := gridToTable(grid[5], grid[6:], mapTollHeaderIDFCB)
	for _, row := range t.Rows {
		row["vehicle_number"] = vehicle
		row["debit_amount"] = stripDrCr(row["debit_amount"])
	}
	return t, nil
}

func mapTollHeaderIDFCB(h string) string {
	c := strings.ToLower(utils.NormalizeSpace(h))
	switch {
	case strings.Contains(c, "reader") && strings.Contains(c, "date"):
		return "travel_date_time"
	case strings.Contains(c, "sequence") || strings.Contains(c, "urn"):
		return "unique_transaction_id"
	}
	return mapTollHeader(h)
}

// convertIndus reads the IndusInd layout, header on the first row.
func convertIndus(grid [][]string) (*Table, error) {
	if len(grid) < 2 {
		return nil, domain.ErrEmptyBatch
	}
	return gridToTable(grid[0], grid[1:], mapTollHeaderIndus), nil
}

func mapTollHeaderIndus(h string) string {
	c := strings.ToLower(utils.NormalizeSpace(h))
	switch {
	case strings.Contains(c, "dtstamp") || strings.Contains(c, "dt stamp"):
		return "unique_transaction_id"
	case strings.Contains(c, "credit") || strings.Contains(c, "balance"):
		return ""
	}
	return mapTollHeader(h)
}

func stripDrCr(v string) string {
	v = strings.ReplaceAll(v, "Dr", "")
	v = strings.ReplaceAll(v, "Cr", "")
	return strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
}

// finishTollTable runs the bank-independent cleanup: recharge and repeated
// header rows go, timestamps and IDs lose their extraction artifacts, and
// plates are canonicalized.
func finishTollTable(t *Table) {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		act := strings.ToLower(row["activity"])
		if strings.Contains(act, "recharge") || strings.Contains(act, "rec harge") ||
			strings.Contains(act, "ccavenue") || act == "type" {
			continue
		}
		date := strings.ToLower(row["travel_date_time"])
		if strings.Contains(date, "date") || strings.Contains(date, "total") || strings.Contains(date, "page") {
			continue
		}

		row["travel_date_time"] = RepairDateTime(row["travel_date_time"])
		row["unique_transaction_id"] = normalizeNumericID(strings.ReplaceAll(row["unique_transaction_id"], " ", ""))
		row["vehicle_number"] = CleanVehicleNo(row["vehicle_number"])
		row["plaza_name"] = utils.NormalizeSpace(row["plaza_name"])
		kept = append(kept, row)
	}
	t.Rows = kept
}
