package cleaner

import "strings"

// FieldSpec ties a canonical field name to the friendly header it gets in
// generated reports.
type FieldSpec struct {
	Name   string // canonical snake_case name
	Header string // report header
}

// Schema is the fixed, source-independent field list a mapper normalizes
// into. Construct one per pipeline invocation and pass it down; nothing in
// the pipeline mutates it.
type Schema struct {
	Mandatory []FieldSpec
	// KeyFields are the join keys the batch is aborted without.
	KeyFields []string
	// UniqueKeyOf builds the dedup key for one canonical row.
	UniqueKeyOf func(Row) string
}

// Names returns the mandatory canonical names in output order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Mandatory))
	for i, f := range s.Mandatory {
		out[i] = f.Name
	}
	return out
}

// HeaderFor returns the report header of a canonical name, falling back to
// the name itself for extras.
func (s Schema) HeaderFor(name string) string {
	for _, f := range s.Mandatory {
		if f.Name == name {
			return f.Header
		}
	}
	return name
}

// IsMandatory reports whether the canonical name is part of the fixed list.
func (s Schema) IsMandatory(name string) bool {
	for _, f := range s.Mandatory {
		if f.Name == name {
			return true
		}
	}
	return false
}

// RosterSchema is the canonical trip-roster schema shared by all roster
// adapters.
func RosterSchema() Schema {
	return Schema{
		Mandatory: []FieldSpec{
			{"shift_date", "Shift Date"},
			{"trip_id", "Trip ID"},
			{"employee_id", "Employee ID"},
			{"gender", "Gender"},
			{"employee_category", "Employee Category"},
			{"employee_name", "Employee Name"},
			{"shift_time", "Shift Time"},
			{"pickup_time", "Pickup Time"},
			{"drop_time", "Drop Time"},
			{"trip_direction", "Trip Direction"},
			{"cab_reg_no", "Cab Reg No"},
			{"cab_type", "Cab Type"},
			{"vendor", "Vendor"},
			{"office", "Office"},
			{"airport_name", "Airport Name"},
			{"landmark", "Landmark"},
			{"address", "Address"},
			{"flight_number", "Flight Number"},
			{"flight_category", "Flight Category"},
			{"flight_route", "Flight Route"},
			{"flight_type", "Flight Type"},
			{"trip_date", "Trip Date"},
			{"remark", "Remark"},
			{"source_tag", "Source Tag"},
			{"passenger_mobile", "Passenger Mobile"},
			{"driver_name", "Driver Name"},
			{"driver_mobile", "Driver Mobile"},
		},
		KeyFields: []string{"trip_id", "employee_id"},
		UniqueKeyOf: func(r Row) string {
			return trimKey(r["trip_id"]) + trimKey(r["employee_id"])
		},
	}
}

// TollSchema is the canonical toll-statement schema shared by the bank
// variants.
func TollSchema() Schema {
	return Schema{
		Mandatory: []FieldSpec{
			{"vehicle_number", "Vehicle No"},
			{"travel_date_time", "Travel Date Time"},
			{"unique_transaction_id", "Unique Transaction ID"},
			{"plaza_name", "Plaza Name"},
			{"plaza_id", "Plaza ID"},
			{"activity", "Activity"},
			{"debit_amount", "Tag Dr/Cr"},
		},
		KeyFields: []string{"unique_transaction_id"},
		UniqueKeyOf: func(r Row) string {
			return trimKey(r["unique_transaction_id"])
		},
	}
}

// addressFieldPriority is the fixed order enrichment probes for an
// address-bearing field.
var addressFieldPriority = []string{"address", "employee_address", "pickup_location", "drop_location"}

// CollectAddresses gathers the distinct non-empty values of the first
// address-bearing column the table has, in row order. One column feeds the
// locality cache per batch; the rest are ignored even when populated.
// Distinctness is case-insensitive; the first-seen spelling is kept.
func CollectAddresses(t *Table) []string {
	if t == nil {
		return nil
	}
	field := ""
	for _, f := range addressFieldPriority {
		if t.HasColumn(f) {
			field = f
			break
		}
	}
	if field == "" {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	for _, row := range t.Rows {
		v := trimKey(row[field])
		k := strings.ToUpper(v)
		if v == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

// Highlight colours for the styled report (RGB hex, no "#").
const (
	colorRed      = "FF0000"
	colorYellow   = "FFFF00"
	colorHeaderBg = "0070C0"
	colorWhite    = "FFFFFF"
)
