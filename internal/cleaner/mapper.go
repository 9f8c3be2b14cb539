package cleaner

import (
	"strconv"
	"strings"
	"time"

	"tripcleaner/internal/domain"
	"tripcleaner/internal/domain/models"
)

// MapConfig tells the CanonicalMapper how one source's intermediate table
// lands on the canonical schema. Rename keys are normalized intermediate
// column names; values are canonical field names. Columns without a rename
// are preserved as extras.
type MapConfig struct {
	Schema    Schema
	Renames   map[string]string
	SourceTag string
	// Canonical fields that may arrive as spreadsheet serial numbers.
	SerialDateFields []string
	SerialTimeFields []string
	// Shift time derived as pickup + 2h with same-day anchoring.
	DeriveShift bool
}

// uniqueIDField is carried on rows but never emitted as a report column.
const uniqueIDField = "unique_id"

// Map renames intermediate fields onto the canonical schema, fills absent
// mandatory fields with "", derives the composite unique key and drops rows
// that fail its invariant, and orders output columns mandatory-first.
func Map(t *Table, cfg MapConfig) (*Table, error) {
	if t == nil || len(t.Rows) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	colNames := make(map[string]string, len(t.Columns)) // source col -> output col
	var extras []string
	seen := map[string]bool{}
	for _, col := range t.Columns {
		out := col
		if canon, ok := cfg.Renames[NormalizeHeader(col)]; ok {
			out = canon
		} else if cfg.Schema.IsMandatory(col) {
			out = col
		}
		colNames[col] = out
		if !cfg.Schema.IsMandatory(out) && !seen[out] {
			seen[out] = true
			extras = append(extras, out)
		}
	}

	keyPresent := false
	for _, k := range cfg.Schema.KeyFields {
		for _, out := range colNames {
			if out == k {
				keyPresent = true
			}
		}
	}
	if !keyPresent {
		return nil, domain.ErrMissingJoinKeys
	}

	out := &Table{Columns: append(cfg.Schema.Names(), extras...)}
	if t.Styles != nil {
		out.Styles = []map[string]CellStyle{}
	}

	for i, src := range t.Rows {
		row := Row{}
		for _, f := range cfg.Schema.Mandatory {
			row[f.Name] = ""
		}
		for col, v := range src {
			row[colNames[col]] = CleanCell(v)
		}

		for _, k := range cfg.Schema.KeyFields {
			row[k] = normalizeNumericID(row[k])
		}
		for _, f := range cfg.SerialDateFields {
			row[f] = convertSerialDate(row[f])
		}
		for _, f := range cfg.SerialTimeFields {
			row[f] = convertSerialTime(row[f])
		}
		if cfg.DeriveShift {
			deriveShift(row)
		}
		if cfg.SourceTag != "" && row["source_tag"] == "" {
			row["source_tag"] = cfg.SourceTag
		}

		uid := cfg.Schema.UniqueKeyOf(row)
		if !validUniqueID(uid) {
			continue
		}
		row[uniqueIDField] = uid

		out.Rows = append(out.Rows, row)
		if out.Styles != nil {
			st := t.StyleAt(i)
			renamed := make(map[string]CellStyle, len(st))
			for col, s := range st {
				renamed[colNames[col]] = s
			}
			out.Styles = append(out.Styles, renamed)
		}
	}

	return out, nil
}

func trimKey(s string) string { return strings.TrimSpace(s) }

// validUniqueID rejects empty keys and the textual missing-value artifacts
// ("nan", "None") that source tools serialize into absent cells.
func validUniqueID(id string) bool {
	if id == "" {
		return false
	}
	low := strings.ToLower(id)
	return !strings.Contains(low, "nan") && !strings.Contains(low, "none")
}

// normalizeNumericID collapses "1234.0" style numeric keys into "1234".
func normalizeNumericID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int64(f)) {
		return v
	}
	return strconv.FormatInt(int64(f), 10)
}

// excelEpoch is the base date of spreadsheet serial numbers.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const dateLayout = "02-01-2006"

var knownDateLayouts = []string{
	"2006-01-02", "02-01-2006", "02/01/2006", "2006-01-02 15:04:05", "02-01-2006 15:04",
}

// convertSerialDate turns a days-since-epoch serial into DD-MM-YYYY, and
// re-formats recognizable date strings to the same layout. Values it cannot
// confidently interpret come back unchanged rather than coerced wrongly.
func convertSerialDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f < 1 || f > 200000 {
			return v
		}
		return excelEpoch.Add(time.Duration(f * 24 * float64(time.Hour))).Format(dateLayout)
	}
	for _, layout := range knownDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(dateLayout)
		}
	}
	return v
}

// convertSerialTime turns a fraction-of-day serial into HH:MM 24-hour time.
func convertSerialTime(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		frac := f - float64(int64(f))
		secs := int(frac*86400 + 0.5)
		return time.Date(0, 1, 1, 0, 0, secs, 0, time.UTC).Format("15:04")
	}
	for _, layout := range []string{"15:04:05", "15:04", "3:04 PM"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04")
		}
	}
	return v
}

// deriveShift computes shift_time = pickup_time + 2h. When adding two hours
// crosses midnight, the drop timestamp rolls back one calendar day so the
// shift date stays anchored to the pickup day.
func deriveShift(row Row) {
	pickup, err := time.Parse(dateLayout+" 15:04", row["shift_date"]+" "+row["pickup_time"])
	if err != nil {
		return
	}
	shift := pickup.Add(2 * time.Hour)
	row["shift_time"] = shift.Format("15:04")

	drop := shift
	if drop.Day() != pickup.Day() {
		drop = drop.AddDate(0, 0, -1)
	}
	row["drop_time"] = drop.Format(dateLayout + " 15:04")
}

// TripRecords converts a mapped roster table into typed records.
func TripRecords(t *Table, schema Schema) []models.TripRecord {
	out := make([]models.TripRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := models.TripRecord{
			UniqueID:         row[uniqueIDField],
			ShiftDate:        row["shift_date"],
			TripID:           row["trip_id"],
			EmployeeID:       row["employee_id"],
			Gender:           row["gender"],
			EmployeeCategory: row["employee_category"],
			EmployeeName:     row["employee_name"],
			ShiftTime:        row["shift_time"],
			PickupTime:       row["pickup_time"],
			DropTime:         row["drop_time"],
			TripDirection:    row["trip_direction"],
			CabRegNo:         row["cab_reg_no"],
			CabType:          row["cab_type"],
			Vendor:           row["vendor"],
			Office:           row["office"],
			AirportName:      row["airport_name"],
			Landmark:         row["landmark"],
			Address:          row["address"],
			FlightNumber:     row["flight_number"],
			FlightCategory:   row["flight_category"],
			FlightRoute:      row["flight_route"],
			FlightType:       row["flight_type"],
			TripDate:         row["trip_date"],
			Remark:           row["remark"],
			SourceTag:        row["source_tag"],
			PassengerMobile:  row["passenger_mobile"],
			DriverName:       row["driver_name"],
			DriverMobile:     row["driver_mobile"],
		}
		for _, col := range t.Columns {
			if schema.IsMandatory(col) {
				continue
			}
			rec.Extras = append(rec.Extras, models.ExtraField{Name: col, Value: row[col]})
		}
		out = append(out, rec)
	}
	return out
}

// TollRecords converts a mapped toll table into typed transactions. The
// debit amount coerces to a non-negative number, defaulting to zero.
func TollRecords(t *Table) []models.TollTransaction {
	out := make([]models.TollTransaction, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, models.TollTransaction{
			VehicleNumber:       row["vehicle_number"],
			TravelDateTime:      row["travel_date_time"],
			UniqueTransactionID: row[uniqueIDField],
			PlazaName:           row["plaza_name"],
			PlazaID:             row["plaza_id"],
			Activity:            row["activity"],
			DebitAmount:         parseAmount(row["debit_amount"]),
		})
	}
	return out
}

func parseAmount(v string) float64 {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
