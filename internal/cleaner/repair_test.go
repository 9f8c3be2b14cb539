package cleaner

import "testing"

func tollTestTable(rows ...Row) *Table {
	t := &Table{Columns: tollColumnOrder()}
	for _, r := range rows {
		full := Row{}
		for _, c := range t.Columns {
			full[c] = r[c]
		}
		t.Rows = append(t.Rows, full)
	}
	return t
}

func TestRepairMergesWrappedIDs(t *testing.T) {
	cfg := tollRepairConfig()
	cfg.MergeWrappedIDs = true
	tbl := tollTestTable(
		Row{"travel_date_time": "01-02-2024 10:00", "unique_transaction_id": "ABCD"},
		Row{"unique_transaction_id": "1234"},
	)

	NewRowRepairEngine(cfg).Repair(tbl)

	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 row after merge, got %d", len(tbl.Rows))
	}
	if got := tbl.Rows[0]["unique_transaction_id"]; got != "ABCD1234" {
		t.Fatalf("wrapped id not merged, got %q", got)
	}
}

func TestRepairLeavesPlateFragmentsAlone(t *testing.T) {
	cfg := tollRepairConfig()
	cfg.MergeWrappedIDs = true
	tbl := tollTestTable(
		Row{"travel_date_time": "01-02-2024 10:00", "unique_transaction_id": "555"},
		Row{"unique_transaction_id": "HR55X1234"},
		Row{"unique_transaction_id": "DL1RT5678"},
	)

	NewRowRepairEngine(cfg).Repair(tbl)

	if len(tbl.Rows) != 3 {
		t.Fatalf("plate fragments must not merge, got %d rows", len(tbl.Rows))
	}
	if got := tbl.Rows[0]["unique_transaction_id"]; got != "555" {
		t.Fatalf("first id changed unexpectedly: %q", got)
	}
}

func TestRepairLiftsVehicleBannerRows(t *testing.T) {
	cfg := tollRepairConfig()
	cfg.LiftVehicleRows = true
	tbl := tollTestTable(
		Row{"travel_date_time": "HR55AB1234"},
		Row{"travel_date_time": "01-02-2024 10:00", "unique_transaction_id": "1"},
		Row{"travel_date_time": "01-02-2024 11:00", "unique_transaction_id": "2"},
	)

	NewRowRepairEngine(cfg).Repair(tbl)

	if len(tbl.Rows) != 2 {
		t.Fatalf("banner row should be dropped, got %d rows", len(tbl.Rows))
	}
	for i, row := range tbl.Rows {
		if row["vehicle_number"] != "HR55AB1234" {
			t.Fatalf("row %d missing lifted plate, got %q", i, row["vehicle_number"])
		}
	}
}

func TestRepairMergesMeridiem(t *testing.T) {
	cfg := tollRepairConfig()
	cfg.MergeMeridiem = true
	tbl := tollTestTable(
		Row{"travel_date_time": "01-02-2024 09:30", "unique_transaction_id": "1"},
		Row{"travel_date_time": "PM"},
	)

	NewRowRepairEngine(cfg).Repair(tbl)

	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tbl.Rows))
	}
	if got := tbl.Rows[0]["travel_date_time"]; got != "01-02-2024 09:30 PM" {
		t.Fatalf("meridiem not reattached, got %q", got)
	}
}

func TestRepairMergesPlazaSpill(t *testing.T) {
	cfg := tollRepairConfig()
	cfg.MergePlazaSpill = true
	tbl := tollTestTable(
		Row{"travel_date_time": "01-02-2024 09:30", "unique_transaction_id": "1", "plaza_name": "KHERKI DAULA"},
		Row{"plaza_name": "PLAZA"},
		Row{"travel_date_time": "01-02-2024 10:00", "unique_transaction_id": "2", "plaza_name": "OTHER"},
	)

	NewRowRepairEngine(cfg).Repair(tbl)

	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if got := tbl.Rows[0]["plaza_name"]; got != "KHERKI DAULA PLAZA" {
		t.Fatalf("plaza spill not merged, got %q", got)
	}
	if got := tbl.Rows[1]["plaza_name"]; got != "OTHER" {
		t.Fatalf("unrelated plaza changed, got %q", got)
	}
}

func TestRepairPropagatesVehicles(t *testing.T) {
	cfg := tollRepairConfig()
	cfg.PropagateVehicles = true
	tbl := tollTestTable(
		Row{"travel_date_time": "01-02-2024 09:30", "unique_transaction_id": "1", "vehicle_number": "HR55AB1234"},
		Row{"travel_date_time": "01-02-2024 10:00", "unique_transaction_id": "2"},
		Row{"travel_date_time": "01-02-2024 11:00", "unique_transaction_id": "3", "vehicle_number": "DL1RT5678"},
		Row{"travel_date_time": "01-02-2024 12:00", "unique_transaction_id": "4"},
	)

	NewRowRepairEngine(cfg).Repair(tbl)

	if got := tbl.Rows[1]["vehicle_number"]; got != "HR55AB1234" {
		t.Fatalf("row 1 plate = %q, want HR55AB1234", got)
	}
	if got := tbl.Rows[3]["vehicle_number"]; got != "DL1RT5678" {
		t.Fatalf("row 3 plate = %q, want DL1RT5678", got)
	}
}

func TestRepairDateTimeFixesGlyphSplits(t *testing.T) {
	cases := []struct{ in, want string }{
		{"07-03-2 025 23:3 2:46", "07-03-2025 23:32:46"},
		{"01-01-2024 10:00:00", "01-01-2024 10:00:00"},
		{"  spaced   out  ", "spaced out"},
	}
	for _, c := range cases {
		if got := RepairDateTime(c.in); got != c.want {
			t.Fatalf("RepairDateTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
