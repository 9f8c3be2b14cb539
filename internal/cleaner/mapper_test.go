package cleaner

import (
	"errors"
	"testing"

	"tripcleaner/internal/domain"
)

func rosterMapConfig() MapConfig {
	return MapConfig{Schema: RosterSchema(), SourceTag: "Test Data"}
}

func TestMapRenamesAndBuildsUniqueID(t *testing.T) {
	src := &Table{}
	src.Append(Row{"trip": "100.0", "sap_id": "7001", "note": "vip"})

	cfg := rosterMapConfig()
	cfg.Renames = map[string]string{"trip": "trip_id", "sap_id": "employee_id"}

	out, err := Map(src, cfg)
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out.Rows))
	}
	row := out.Rows[0]
	if row["trip_id"] != "100" {
		t.Fatalf("numeric key not normalized, got %q", row["trip_id"])
	}
	if row["unique_id"] != "1007001" {
		t.Fatalf("unique id wrong, got %q", row["unique_id"])
	}
	if row["source_tag"] != "Test Data" {
		t.Fatalf("source tag not applied, got %q", row["source_tag"])
	}
	if row["vendor"] != "" {
		t.Fatalf("absent mandatory field should be empty, got %q", row["vendor"])
	}
	last := out.Columns[len(out.Columns)-1]
	if last != "note" {
		t.Fatalf("extras should follow mandatory columns, got last column %q", last)
	}
}

func TestMapRejectsTableWithoutJoinKeys(t *testing.T) {
	src := &Table{}
	src.Append(Row{"plate": "HR55AB1234"})

	_, err := Map(src, rosterMapConfig())
	if !errors.Is(err, domain.ErrMissingJoinKeys) {
		t.Fatalf("expected ErrMissingJoinKeys, got %v", err)
	}
}

func TestMapRejectsEmptyTable(t *testing.T) {
	if _, err := Map(nil, rosterMapConfig()); !errors.Is(err, domain.ErrEmptyBatch) {
		t.Fatalf("nil table: expected ErrEmptyBatch, got %v", err)
	}
	if _, err := Map(&Table{}, rosterMapConfig()); !errors.Is(err, domain.ErrEmptyBatch) {
		t.Fatalf("empty table: expected ErrEmptyBatch, got %v", err)
	}
}

func TestMapDropsRowsWithUnusableKeys(t *testing.T) {
	src := &Table{}
	src.Append(Row{"trip_id": "101", "employee_id": "5001"})
	src.Append(Row{"trip_id": "nan", "employee_id": "5002"})
	src.Append(Row{"trip_id": "", "employee_id": ""})
	src.Append(Row{"trip_id": "102", "employee_id": "None"})

	out, err := Map(src, rosterMapConfig())
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("expected 1 surviving row, got %d", len(out.Rows))
	}
	if out.Rows[0]["unique_id"] != "1015001" {
		t.Fatalf("wrong surviving row: %q", out.Rows[0]["unique_id"])
	}
}

func TestConvertSerialDate(t *testing.T) {
	cases := []struct{ in, want string }{
		{"45292", "01-01-2024"},
		{"2024-01-15", "15-01-2024"},
		{"15/01/2024", "15-01-2024"},
		{"250000", "250000"},
		{"hello", "hello"},
		{"", ""},
	}
	for _, c := range cases {
		if got := convertSerialDate(c.in); got != c.want {
			t.Fatalf("convertSerialDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestConvertSerialTime(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0.5", "12:00"},
		{"0.75", "18:00"},
		{"08:15:30", "08:15"},
		{"9:05 PM", "21:05"},
		{"oops", "oops"},
	}
	for _, c := range cases {
		if got := convertSerialTime(c.in); got != c.want {
			t.Fatalf("convertSerialTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDeriveShiftSameDay(t *testing.T) {
	row := Row{"shift_date": "01-01-2024", "pickup_time": "10:00"}
	deriveShift(row)
	if row["shift_time"] != "12:00" {
		t.Fatalf("shift_time = %q, want 12:00", row["shift_time"])
	}
	if row["drop_time"] != "01-01-2024 12:00" {
		t.Fatalf("drop_time = %q, want 01-01-2024 12:00", row["drop_time"])
	}
}

func TestDeriveShiftMidnightAnchorsDropDate(t *testing.T) {
	row := Row{"shift_date": "01-01-2024", "pickup_time": "23:30"}
	deriveShift(row)
	if row["shift_time"] != "01:30" {
		t.Fatalf("shift_time = %q, want 01:30", row["shift_time"])
	}
	if row["drop_time"] != "01-01-2024 01:30" {
		t.Fatalf("drop date should stay on the pickup day, got %q", row["drop_time"])
	}
}

func TestTripRecordsCarriesExtras(t *testing.T) {
	src := &Table{}
	src.Append(Row{"trip_id": "300", "employee_id": "9", "leg_type": "OUT"})

	cfg := rosterMapConfig()
	out, err := Map(src, cfg)
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}

	recs := TripRecords(out, cfg.Schema)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].UniqueID != "3009" {
		t.Fatalf("unique id = %q", recs[0].UniqueID)
	}
	if got := recs[0].Extra("leg_type"); got != "OUT" {
		t.Fatalf("extra leg_type = %q, want OUT", got)
	}
}

func TestTollRecordsCoercesDebitAmount(t *testing.T) {
	src := &Table{}
	src.Append(Row{"unique_transaction_id": "900001", "debit_amount": "1,250.50"})
	src.Append(Row{"unique_transaction_id": "900002", "debit_amount": "-40"})
	src.Append(Row{"unique_transaction_id": "900003", "debit_amount": "oops"})

	out, err := Map(src, MapConfig{Schema: TollSchema()})
	if err != nil {
		t.Fatalf("Map returned error: %v", err)
	}
	txs := TollRecords(out)
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	if txs[0].DebitAmount != 1250.50 {
		t.Fatalf("comma amount = %v, want 1250.50", txs[0].DebitAmount)
	}
	if txs[1].DebitAmount != 0 || txs[2].DebitAmount != 0 {
		t.Fatalf("negative and unparsable amounts should default to 0, got %v and %v",
			txs[1].DebitAmount, txs[2].DebitAmount)
	}
}
