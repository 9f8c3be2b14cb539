package cleaner

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"tripcleaner/internal/domain"
	"tripcleaner/internal/domain/models"
)

// baAdapter reads the billing-audit CSV export. Its location columns are
// direction dependent: on a drop the trip starts at the airport, on a
// pickup it ends there, so airport, address and landmark are picked from
// opposite ends of the leg.
type baAdapter struct{}

func newBAAdapter() *baAdapter { return &baAdapter{} }

func (a *baAdapter) Name() string { return SourceBA }

// baExtraColumns are audit-trail columns carried through untouched.
var baExtraColumns = []struct{ header, field string }{
	{"Leg Date", "leg_date"},
	{"Trip Status", "ba_remark"},
	{"Traveled Employee Count", "traveled_emp_count"},
	{"UNA", "una"},
	{"UNA2", "una2"},
	{"Route Status", "route_status"},
	{"Clubbing Status", "clubbing_status"},
	{"GPS TIME", "gps_time"},
	{"GPS REMARK", "gps_remark"},
	{"Billing Zone Name", "billing_zone_name"},
	{"Leg Type", "leg_type"},
	{"Trip Source", "trip_source"},
	{"Trip Type", "trip_type"},
	{"Leg Start", "leg_start"},
	{"Leg End", "leg_end"},
	{"Audit Results", "audit_results"},
	{"Audit Done By", "audit_done_by"},
	{"Trip Audited", "trip_audited"},
}

func (a *baAdapter) Parse(f File) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(f.Data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &domain.FileError{Filename: f.Name, Err: err}
	}
	if len(records) < 2 {
		return nil, domain.ErrEmptyBatch
	}

	idx := map[string]int{}
	for i, h := range records[0] {
		idx[strings.TrimSpace(h)] = i
	}
	field := func(rec []string, header string) string {
		i, ok := idx[header]
		if !ok || i >= len(rec) {
			return ""
		}
		return CleanCell(rec[i])
	}

	t := &Table{}
	for _, rec := range records[1:] {
		tripID, err := strconv.ParseFloat(field(rec, "Trip Id"), 64)
		if err != nil || tripID == 0 {
			continue
		}

		row := Row{
			"trip_id":           field(rec, "Trip Id"),
			"employee_id":       field(rec, "Employee ID"),
			"gender":            field(rec, "Gender"),
			"employee_category": field(rec, "EMP_CATEGORY"),
			"employee_name":     field(rec, "Employee Name"),
			"pickup_time":       field(rec, "Duty Start"),
			"drop_time":         field(rec, "Duty End"),
			"cab_reg_no":        CleanVehicleNo(field(rec, "Registration")),
			"cab_type":          field(rec, "Cab Type"),
			"vendor":            field(rec, "Vendor"),
			"office":            field(rec, "Office"),
			"flight_number":     field(rec, "Flight Number"),
			"flight_category":   field(rec, "Flight Category"),
			"flight_route":      field(rec, "Flight Route"),
			"flight_type":       field(rec, "Flight Type"),
			"remark":            field(rec, "Comments"),
			"source_tag":        "BA Row Data",
		}
		for _, ex := range baExtraColumns {
			row[ex.field] = field(rec, ex.header)
		}

		// LOGIN/LOGOUT legs have no scheduled shift; anchor them at 00:00.
		shiftTime := field(rec, "Trip Type")
		if up := strings.ToUpper(shiftTime); shiftTime == "" ||
			strings.Contains(up, "LOGIN") || strings.Contains(up, "LOGOUT") {
			shiftTime = "00:00"
		}
		row["shift_time"] = shiftTime
		row["trip_direction"] = normalizeDirection(field(rec, "Direction"))

		startAddr := field(rec, "Start Location Address")
		endAddr := field(rec, "End Location Address")
		startLand := field(rec, "Start Location Landmark")
		endLand := field(rec, "End Location Landmark")
		switch row["trip_direction"] {
		case models.DirectionPickup:
			row["airport_name"] = endAddr
			row["address"] = startAddr
			row["landmark"] = startLand
		case models.DirectionDrop:
			row["airport_name"] = startAddr
			row["address"] = endAddr
			row["landmark"] = endLand
		default:
			// Only a DROP leg starts at the airport.
			row["airport_name"] = endAddr
			row["address"] = endAddr
			row["landmark"] = endLand
		}

		legDate := row["leg_date"]
		if legDate == "" {
			legDate = field(rec, "Date")
		}
		if legDate == "" {
			if ts, err := time.Parse("2006-01-02 15:04:05", row["pickup_time"]); err == nil {
				legDate = ts.Format("02-01-2006")
				row["leg_date"] = legDate
			}
		}
		if legDate != "" {
			row["trip_date"] = legDate + " " + shiftTime
		}
		row["shift_date"] = row["trip_date"]

		t.Append(row)
	}

	if len(t.Rows) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	return t, nil
}

func (a *baAdapter) MapConfig() MapConfig {
	return MapConfig{
		Schema:    RosterSchema(),
		SourceTag: "BA Row Data",
	}
}
