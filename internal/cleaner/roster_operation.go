package cleaner

import (
	"strings"

	"tripcleaner/internal/domain"
	"tripcleaner/internal/xlsbiff"
)

// operationAdapter reads the operations team's legacy .xls roster. Headers
// are matched by keyword because the team renames columns between weeks,
// and per-cell fill and font colors are captured: the ops convention marks
// cancelled trips with red font and substituted vehicles with yellow fill
// on the trip ID, SAP ID and address cells.
type operationAdapter struct{}

func newOperationAdapter() *operationAdapter { return &operationAdapter{} }

func (a *operationAdapter) Name() string { return SourceOperation }

// operationHeaderMap matches source headers by substring, most specific
// keyword first.
var operationHeaderMap = []struct {
	keyword string
	field   string
}{
	{"TRIP ID", "trip_id"},
	{"FLT NO.", "flight_number"},
	{"SAP ID", "employee_id"},
	{"EMP NAME", "employee_name"},
	{"EMPLOYEE ADDRESS", "employee_address"},
	{"PICKUP LOCATION", "landmark"},
	{"DROP LOCATION", "office"},
	{"CAB NO", "cab_reg_no"},
	{"PICKUP TIME", "pickup_time"},
	{"REMARKS", "remark"},
	{"DATE", "shift_date"},
}

// operationSkipHeaders are source columns dropped outright. The airport
// drop time is recomputed from the pickup time instead of trusted.
var operationSkipHeaders = []string{"CONTACT NO", "GUARD ROUTE", "AIRPORT DROP TIME"}

const (
	remarkCancelled  = "Cancelled"
	remarkAltVehicle = "Alt Vehicle"
)

// styledGrid is the slice of a worksheet the adapter reads. *xlsbiff.Sheet
// satisfies it.
type styledGrid interface {
	NumRows() int
	NumCols() int
	Cell(row, col int) xlsbiff.Cell
}

func (a *operationAdapter) Parse(f File) (*Table, error) {
	wb, err := xlsbiff.Open(f.Data)
	if err != nil {
		return nil, &domain.FileError{Filename: f.Name, Err: err}
	}
	if len(wb.Sheets) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	return a.parseSheet(wb.Sheets[0])
}

func (a *operationAdapter) parseSheet(sheet styledGrid) (*Table, error) {
	nCols := sheet.NumCols()
	fields := make([]string, nCols) // "" means column skipped
	var checkCols []int             // trip_id, employee_id, employee_address
	for c := 0; c < nCols; c++ {
		header := strings.ToUpper(strings.TrimSpace(sheet.Cell(0, c).Value))
		if header == "" || containsAny(header, operationSkipHeaders) {
			continue
		}
		field := NormalizeHeader(header)
		for _, m := range operationHeaderMap {
			if strings.Contains(header, m.keyword) {
				field = m.field
				break
			}
		}
		fields[c] = field
		switch field {
		case "trip_id", "employee_id", "employee_address":
			checkCols = append(checkCols, c)
		}
	}

	t := &Table{Styles: []map[string]CellStyle{}}
	for r := 1; r < sheet.NumRows(); r++ {
		filled := 0
		for c := 0; c < nCols; c++ {
			if strings.TrimSpace(sheet.Cell(r, c).Value) != "" {
				filled++
			}
		}
		if filled <= 3 {
			continue
		}

		row := Row{}
		styles := map[string]CellStyle{}
		redCount, yellowCount := 0, 0
		for c := 0; c < nCols; c++ {
			cell := sheet.Cell(r, c)
			for _, cc := range checkCols {
				if cc == c {
					if cell.Style.FontColor == colorRed {
						redCount++
					}
					if cell.Style.Background == colorYellow {
						yellowCount++
					}
				}
			}
			if fields[c] == "" {
				continue
			}
			row[fields[c]] = strings.ToUpper(CleanCell(cell.Value))
			if s := cell.Style; s.Background != "" || s.FontColor != "" || s.Bold {
				styles[fields[c]] = CellStyle{Background: s.Background, FontColor: s.FontColor, Bold: s.Bold}
			}
		}

		if row["employee_id"] == "" && row["employee_name"] == "" {
			continue
		}

		// A trip only counts as marked when all three identity cells
		// carry the color. Red outranks yellow.
		switch {
		case redCount == len(checkCols) && len(checkCols) == 3:
			row["remark"] = remarkCancelled
			styles["remark"] = CellStyle{FontColor: colorRed, Bold: true}
		case yellowCount == len(checkCols) && len(checkCols) == 3:
			row["remark"] = remarkAltVehicle
			styles["remark"] = CellStyle{Background: colorYellow, Bold: true}
		}

		if row["employee_address"] != "" {
			row["employee_address"] = CleanAddress(row["employee_address"])
		}
		t.AppendStyled(row, styles)
	}

	if len(t.Rows) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	return t, nil
}

func (a *operationAdapter) MapConfig() MapConfig {
	return MapConfig{
		Schema:           RosterSchema(),
		SerialDateFields: []string{"shift_date"},
		SerialTimeFields: []string{"pickup_time"},
		DeriveShift:      true,
		SourceTag:        "Operation Data",
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
