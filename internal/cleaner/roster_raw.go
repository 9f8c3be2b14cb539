package cleaner

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"tripcleaner/internal/domain"
	"tripcleaner/internal/utils"
)

// rawAdapter reads the vendor duty sheet, a header-less .xlsx where each
// trip is a banner row (agency name in column 1, trip number in column 10)
// followed by numbered passenger rows. Passengers are joined back to their
// trip banner through a forward-filled trip ID.
type rawAdapter struct{}

func newRawAdapter() *rawAdapter { return &rawAdapter{} }

func (a *rawAdapter) Name() string { return SourceRaw }

// tripHeader holds the banner-row fields that apply to every passenger of
// the trip.
type tripHeader struct {
	tripDate    string
	vendor      string
	direction   string
	shiftTime   string
	vehicleNo   string
	driverName  string
	driverPhone string
}

func (a *rawAdapter) Parse(f File) (*Table, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		return nil, &domain.FileError{Filename: f.Name, Err: err}
	}
	defer wb.Close()

	grid, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		return nil, &domain.FileError{Filename: f.Name, Err: err}
	}

	headers := map[string]tripHeader{}
	type passenger struct {
		tripID string
		row    Row
	}
	var passengers []passenger

	tripID := ""
	for _, raw := range grid {
		if v := cellAt(raw, 10); strings.HasPrefix(strings.TrimSpace(v), "T") {
			tripID = strings.TrimSpace(v)
		}
		switch {
		case strings.Contains(strings.ToUpper(cellAt(raw, 1)), "UNITED FACILITIES"):
			h := tripHeader{
				tripDate:    cellAt(raw, 0),
				vendor:      "UNITED FACILITIES",
				vehicleNo:   CleanVehicleNo(cellAt(raw, 3)),
				driverName:  cellAt(raw, 4),
				driverPhone: cellAt(raw, 6),
			}
			// Column 2 packs direction and shift time: "LOGIN 05:30".
			if parts := strings.SplitN(utils.NormalizeSpace(cellAt(raw, 2)), " ", 2); len(parts) > 0 {
				h.direction = normalizeDirection(parts[0])
				if len(parts) > 1 {
					h.shiftTime = parts[1]
				}
			}
			headers[tripID] = h

		case isDigits(cellAt(raw, 0)):
			passengers = append(passengers, passenger{tripID, Row{
				"pickup_time":       cellAt(raw, 1),
				"employee_id":       cellAt(raw, 2),
				"employee_name":     cellAt(raw, 3),
				"gender":            cellAt(raw, 4),
				"employee_category": cellAt(raw, 5),
				"flight_number":     cellAt(raw, 6),
				"address":           cellAt(raw, 7),
				"office":            cellAt(raw, 8),
				"landmark":          cellAt(raw, 9),
				"passenger_mobile":  cellAt(raw, 10),
			}})
		}
	}

	if len(passengers) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	t := &Table{}
	for _, p := range passengers {
		h := headers[p.tripID]
		row := p.row
		row["trip_id"] = strings.TrimPrefix(p.tripID, "T")
		row["shift_date"] = h.tripDate
		row["trip_date"] = h.tripDate
		row["vendor"] = h.vendor
		row["trip_direction"] = h.direction
		row["shift_time"] = h.shiftTime
		row["cab_reg_no"] = h.vehicleNo
		row["driver_name"] = h.driverName
		row["driver_mobile"] = h.driverPhone
		for k, v := range row {
			row[k] = strings.ToUpper(utils.NormalizeSpace(v))
		}
		row["trip_direction"] = normalizeDirection(row["trip_direction"])
		t.Append(row)
	}
	return t, nil
}

func (a *rawAdapter) MapConfig() MapConfig {
	return MapConfig{
		Schema:           RosterSchema(),
		SerialDateFields: []string{"shift_date", "trip_date"},
		SerialTimeFields: []string{"shift_time", "pickup_time"},
		SourceTag:        "Raw Data",
	}
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
