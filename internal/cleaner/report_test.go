package cleaner

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"tripcleaner/internal/domain"
)

func TestWriteReportRejectsEmptyTable(t *testing.T) {
	if _, err := WriteReport(nil, TollSchema()); !errors.Is(err, domain.ErrEmptyBatch) {
		t.Fatalf("nil table: expected ErrEmptyBatch, got %v", err)
	}
	if _, err := WriteReport(&Table{}, TollSchema()); !errors.Is(err, domain.ErrEmptyBatch) {
		t.Fatalf("empty table: expected ErrEmptyBatch, got %v", err)
	}
}

func TestWriteReportHeadersAndValues(t *testing.T) {
	schema := TollSchema()
	tbl := &Table{Columns: schema.Names()}
	tbl.AppendStyled(Row{
		"vehicle_number":        "HR55AB1234",
		"travel_date_time":      "01-02-2024 10:00:00",
		"unique_transaction_id": "123456",
		"plaza_name":            "KHERKI DAULA",
		"plaza_id":              "55",
		"activity":              "Toll",
		"debit_amount":          "60.00",
	}, map[string]CellStyle{
		"plaza_name": {FontColor: "FF0000", Bold: true},
	})

	data, err := WriteReport(tbl, schema)
	if err != nil {
		t.Fatalf("WriteReport returned error: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("generated workbook does not open: %v", err)
	}
	defer wb.Close()

	if idx, _ := wb.GetSheetIndex("Raw_Data"); idx < 0 {
		t.Fatalf("sheet Raw_Data missing, sheets: %v", wb.GetSheetList())
	}

	a1, err := wb.GetCellValue("Raw_Data", "A1")
	if err != nil {
		t.Fatalf("read A1: %v", err)
	}
	if a1 != "Vehicle No" {
		t.Fatalf("A1 = %q, want friendly header Vehicle No", a1)
	}
	g1, _ := wb.GetCellValue("Raw_Data", "G1")
	if g1 != "Tag Dr/Cr" {
		t.Fatalf("G1 = %q, want Tag Dr/Cr", g1)
	}
	a2, _ := wb.GetCellValue("Raw_Data", "A2")
	if a2 != "HR55AB1234" {
		t.Fatalf("A2 = %q, want HR55AB1234", a2)
	}
	d2, _ := wb.GetCellValue("Raw_Data", "D2")
	if d2 != "KHERKI DAULA" {
		t.Fatalf("D2 = %q, want KHERKI DAULA", d2)
	}
}
