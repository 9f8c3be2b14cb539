package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	intconfig "tripcleaner/internal/config"
	"tripcleaner/internal/domain/models"
)

// inChunkSize bounds one IN(...) lookup; statements stay well under the
// MySQL placeholder limit.
const inChunkSize = 500

// TripRepository wraps DB access for trip_records.
type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// ExistingUniqueIDs returns the subset of ids already stored, one bulk
// lookup per chunk.
func (r TripRepository) ExistingUniqueIDs(ids []string) (map[string]bool, error) {
	existing := map[string]bool{}
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}

	for start := 0; start < len(ids); start += inChunkSize {
		end := start + inChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		rows, err := db.Query(`SELECT unique_id FROM trip_records WHERE unique_id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("lookup trip unique_ids: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			existing[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return existing, nil
}

var tripColumns = []string{
	"unique_id", "shift_date", "trip_id", "employee_id", "gender",
	"employee_category", "employee_name", "shift_time", "pickup_time",
	"drop_time", "trip_direction", "cab_reg_no", "cab_type", "vendor",
	"office", "airport_name", "landmark", "address", "flight_number",
	"flight_category", "flight_route", "flight_type", "trip_date", "remark",
	"source_tag", "passenger_mobile", "driver_name", "driver_mobile", "extras",
}

// InsertBatch stores the records in one multi-row insert per chunk and
// returns the number inserted. Callers dedup first; this does not upsert.
func (r TripRepository) InsertBatch(recs []models.TripRecord) (int, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	if len(recs) == 0 {
		return 0, nil
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(tripColumns)), ",") + ")"
	inserted := 0

	for start := 0; start < len(recs); start += inChunkSize {
		end := start + inChunkSize
		if end > len(recs) {
			end = len(recs)
		}
		chunk := recs[start:end]

		args := make([]any, 0, len(chunk)*len(tripColumns))
		for _, rec := range chunk {
			extras, err := json.Marshal(rec.Extras)
			if err != nil {
				return inserted, fmt.Errorf("marshal extras for %s: %w", rec.UniqueID, err)
			}
			args = append(args,
				rec.UniqueID, rec.ShiftDate, rec.TripID, rec.EmployeeID, rec.Gender,
				rec.EmployeeCategory, rec.EmployeeName, rec.ShiftTime, rec.PickupTime,
				rec.DropTime, rec.TripDirection, rec.CabRegNo, rec.CabType, rec.Vendor,
				rec.Office, rec.AirportName, rec.Landmark, rec.Address, rec.FlightNumber,
				rec.FlightCategory, rec.FlightRoute, rec.FlightType, rec.TripDate, rec.Remark,
				rec.SourceTag, rec.PassengerMobile, rec.DriverName, rec.DriverMobile, string(extras),
			)
		}

		q := `INSERT INTO trip_records (` + strings.Join(tripColumns, ",") + `) VALUES ` +
			strings.TrimSuffix(strings.Repeat(rowPlaceholder+",", len(chunk)), ",")
		res, err := db.Exec(q, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert trip_records: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		} else {
			inserted += len(chunk)
		}
	}
	return inserted, nil
}
