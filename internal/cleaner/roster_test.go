package cleaner

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"tripcleaner/internal/domain"
	"tripcleaner/internal/xlsbiff"
)

func buildXLSX(t *testing.T, grid [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range grid {
		if err := f.SetSheetRow("Sheet1", "A"+strconv.Itoa(i+1), &row); err != nil {
			t.Fatalf("build sheet row %d: %v", i, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestClientAdapterDropsBillingColumns(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		{"Trip Id", "Employee ID", "Emp_Category", "Trip Direction", "Cab Reg No", "Trip Cost", "Billing Zone"},
		{"101", "5001", "STAFF", "Login", "hr-55 ab 1234", "950", "Z1"},
	})

	tbl, err := newClientAdapter().Parse(File{Name: "client.xlsx", Data: data})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tbl.Rows))
	}
	row := tbl.Rows[0]
	if tbl.HasColumn("trip_cost") || tbl.HasColumn("billing_zone") {
		t.Fatalf("billing columns should be dropped, got %v", tbl.Columns)
	}
	if row["trip_direction"] != "PICKUP" {
		t.Fatalf("Login should normalize to PICKUP, got %q", row["trip_direction"])
	}
	if row["cab_reg_no"] != "HR55AB1234" {
		t.Fatalf("plate = %q", row["cab_reg_no"])
	}
}

func TestRawAdapterJoinsPassengersToBanner(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		{"01-02-2024", "M/S UNITED FACILITIES", "LOGIN 05:30", "HR-55-AB-1234", "RAMESH", "", "9999911111", "", "", "", "T4521"},
		{"1", "04:45", "5001", "Anita", "F", "STAFF", "AI 101", "Sector 21 Gurgaon", "T3", "Near Mall", "9888877777"},
		{"2", "04:50", "5002", "Rahul", "M", "STAFF", "AI 101", "DLF Phase 2", "T3", "", "9777766666"},
	})

	tbl, err := newRawAdapter().Parse(File{Name: "raw.xlsx", Data: data})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 passenger rows, got %d", len(tbl.Rows))
	}
	row := tbl.Rows[0]
	if row["trip_id"] != "4521" {
		t.Fatalf("trip id = %q, want 4521 without the T prefix", row["trip_id"])
	}
	if row["vendor"] != "UNITED FACILITIES" {
		t.Fatalf("vendor = %q", row["vendor"])
	}
	if row["trip_direction"] != "PICKUP" || row["shift_time"] != "05:30" {
		t.Fatalf("banner split wrong: direction=%q shift=%q", row["trip_direction"], row["shift_time"])
	}
	if row["cab_reg_no"] != "HR55AB1234" {
		t.Fatalf("plate = %q", row["cab_reg_no"])
	}
	if row["employee_name"] != "ANITA" || row["driver_name"] != "RAMESH" {
		t.Fatalf("names wrong: employee=%q driver=%q", row["employee_name"], row["driver_name"])
	}
	if tbl.Rows[1]["employee_id"] != "5002" {
		t.Fatalf("second passenger lost: %q", tbl.Rows[1]["employee_id"])
	}
}

func TestBAAdapterDirectionDependentLocations(t *testing.T) {
	csvData := strings.Join([]string{
		"Trip Id,Employee ID,Employee Name,Duty Start,Duty End,Registration,Trip Type,Direction,Start Location Address,End Location Address,Start Location Landmark,End Location Landmark,Leg Date,Date,Comments",
		"7001,5001,ANITA,2024-02-05 05:15:00,2024-02-05 06:10:00,HR 55 AB 1234,06:30,Pickup,HOME ADDR,T3 AIRPORT,LANDMARK A,GATE 4,05-02-2024,,on time",
		"7002,5002,RAHUL,2024-02-05 21:15:00,2024-02-05 22:40:00,HR 55 AB 1234,Logout,Drop,T3 AIRPORT,DROP ADDR,GATE 4,LANDMARK B,,,",
		"abc,5003,BROKEN,,,,,,,,,,,,",
		"0,5004,ZERO,,,,,,,,,,,,",
	}, "\n")

	tbl, err := newBAAdapter().Parse(File{Name: "ba.csv", Data: []byte(csvData)})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 valid rows, got %d", len(tbl.Rows))
	}

	pickup := tbl.Rows[0]
	if pickup["airport_name"] != "T3 AIRPORT" || pickup["address"] != "HOME ADDR" || pickup["landmark"] != "LANDMARK A" {
		t.Fatalf("pickup locations wrong: %q %q %q",
			pickup["airport_name"], pickup["address"], pickup["landmark"])
	}
	if pickup["trip_date"] != "05-02-2024 06:30" {
		t.Fatalf("pickup trip_date = %q", pickup["trip_date"])
	}
	if pickup["cab_reg_no"] != "HR55AB1234" {
		t.Fatalf("plate = %q", pickup["cab_reg_no"])
	}

	drop := tbl.Rows[1]
	if drop["airport_name"] != "T3 AIRPORT" || drop["address"] != "DROP ADDR" || drop["landmark"] != "LANDMARK B" {
		t.Fatalf("drop locations wrong: %q %q %q",
			drop["airport_name"], drop["address"], drop["landmark"])
	}
	if drop["shift_time"] != "00:00" {
		t.Fatalf("logout leg should anchor at 00:00, got %q", drop["shift_time"])
	}
	if drop["trip_date"] != "05-02-2024 00:00" {
		t.Fatalf("drop trip_date should fall back to the duty start date, got %q", drop["trip_date"])
	}
}

func TestBAAdapterRejectsHeaderOnlyFile(t *testing.T) {
	_, err := newBAAdapter().Parse(File{Name: "ba.csv", Data: []byte("Trip Id,Employee ID\n")})
	if !errors.Is(err, domain.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestBAAdapterUnknownDirectionUsesEndLocation(t *testing.T) {
	csvData := strings.Join([]string{
		"Trip Id,Employee ID,Employee Name,Duty Start,Duty End,Registration,Trip Type,Direction,Start Location Address,End Location Address,Start Location Landmark,End Location Landmark,Leg Date,Date,Comments",
		"7003,5005,SUNIL,2024-02-06 10:00:00,2024-02-06 11:00:00,HR 55 AB 1234,06:30,Transfer,OFFICE ADDR,CLIENT SITE,LANDMARK C,LANDMARK D,06-02-2024,,",
	}, "\n")

	tbl, err := newBAAdapter().Parse(File{Name: "ba.csv", Data: []byte(csvData)})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tbl.Rows))
	}
	row := tbl.Rows[0]
	if row["airport_name"] != "CLIENT SITE" || row["address"] != "CLIENT SITE" || row["landmark"] != "LANDMARK D" {
		t.Fatalf("unknown-direction locations wrong: %q %q %q",
			row["airport_name"], row["address"], row["landmark"])
	}
}

type fakeStyledGrid [][]xlsbiff.Cell

func (g fakeStyledGrid) NumRows() int { return len(g) }

func (g fakeStyledGrid) NumCols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g fakeStyledGrid) Cell(row, col int) xlsbiff.Cell {
	if row >= len(g) || col >= len(g[row]) {
		return xlsbiff.Cell{}
	}
	return g[row][col]
}

func opCell(v string) xlsbiff.Cell { return xlsbiff.Cell{Value: v} }

// opRow marks the trip id, SAP id and address cells with style where the
// matching flag is set.
func opRow(trip, sap, name, addr, cab string, style xlsbiff.Style, flags [3]bool) []xlsbiff.Cell {
	cells := []xlsbiff.Cell{opCell(trip), opCell(sap), opCell(name), opCell(addr), opCell(cab)}
	for i, col := range []int{0, 1, 3} {
		if flags[i] {
			cells[col].Style = style
		}
	}
	return cells
}

func TestOperationAdapterHighlightRules(t *testing.T) {
	red := xlsbiff.Style{FontColor: "FF0000"}
	yellow := xlsbiff.Style{Background: "FFFF00"}
	both := xlsbiff.Style{FontColor: "FF0000", Background: "FFFF00"}

	grid := fakeStyledGrid{
		{opCell("TRIP ID"), opCell("SAP ID"), opCell("EMP NAME"), opCell("EMPLOYEE ADDRESS"), opCell("CAB NO")},
		opRow("4001", "7001", "ASHA", "SECTOR 4", "HR55AB1234", red, [3]bool{true, true, true}),
		opRow("4002", "7002", "RAVI", "DLF PHASE 2", "HR55AB1234", red, [3]bool{true, true, false}),
		opRow("4003", "7003", "MEENA", "SECTOR 9", "HR55AB1234", yellow, [3]bool{true, true, true}),
		opRow("4004", "7004", "VIJAY", "SECTOR 12", "HR55AB1234", both, [3]bool{true, true, true}),
	}

	tbl, err := newOperationAdapter().parseSheet(grid)
	if err != nil {
		t.Fatalf("parseSheet returned error: %v", err)
	}
	if len(tbl.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(tbl.Rows))
	}

	if got := tbl.Rows[0]["remark"]; got != "Cancelled" {
		t.Fatalf("all-red remark = %q, want Cancelled", got)
	}
	if st := tbl.StyleAt(0)["remark"]; st.FontColor != "FF0000" || !st.Bold {
		t.Fatalf("cancelled remark style = %+v", st)
	}

	if got := tbl.Rows[1]["remark"]; got != "" {
		t.Fatalf("two-of-three red remark = %q, want none", got)
	}

	if got := tbl.Rows[2]["remark"]; got != "Alt Vehicle" {
		t.Fatalf("all-yellow remark = %q, want Alt Vehicle", got)
	}
	if st := tbl.StyleAt(2)["remark"]; st.Background != "FFFF00" || !st.Bold {
		t.Fatalf("alt vehicle remark style = %+v", st)
	}

	if got := tbl.Rows[3]["remark"]; got != "Cancelled" {
		t.Fatalf("red-and-yellow remark = %q, red should win", got)
	}
}
