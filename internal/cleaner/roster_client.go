package cleaner

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"tripcleaner/internal/domain"
	"tripcleaner/internal/domain/models"
)

// clientAdapter reads the client-portal trip export, a modern .xlsx with a
// header row and one trip per row. Billing and cost columns are dropped;
// everything else passes through.
type clientAdapter struct{}

func newClientAdapter() *clientAdapter { return &clientAdapter{} }

func (a *clientAdapter) Name() string { return SourceClient }

// clientDropColumns lists billing artifacts the portal export carries that
// the canonical roster has no use for, in normalized form.
var clientDropColumns = map[string]bool{
	"bunit_id": true, "cycle_start": true, "cycle_end": true, "billing_period": true,
	"project": true, "cost_center": true, "department": true, "planned_emp_count": true,
	"travelled_emp_count": true, "billable_emp_count": true, "no_show": true,
	"planned_escort": true, "actual_escort": true, "emp_km": true, "trip_cost": true,
	"trip_ac_cost": true, "per_emp_cost": true, "escort_cost": true, "penalty": true,
	"vendor_penalty": true, "total_cost": true, "assigned_contract": true,
	"cab_contract": true, "billing_zone": true, "trip_billing_zone": true,
	"emp_sigin_type": true, "escort_id": true, "toll_cost": true, "state_tax_cost": true,
	"parking_or_toll_cost": true, "per_employee_overhead_cost": true, "trip_source": true,
	"extra_kms_based_on_billable_employee_count": true, "billing_kms": true,
	"actual_kms_at_employee_level": true, "grid_km": true,
	"employee_adjustment_distance": true, "trip_adjustment": true, "total_distance": true,
}

func (a *clientAdapter) Parse(f File) (*Table, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(f.Data))
	if err != nil {
		return nil, &domain.FileError{Filename: f.Name, Err: err}
	}
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		return nil, &domain.FileError{Filename: f.Name, Err: err}
	}
	if len(rows) < 2 {
		return nil, domain.ErrEmptyBatch
	}

	var cols []string
	var keep []int
	for i, h := range rows[0] {
		name := NormalizeHeader(h)
		if name == "" || clientDropColumns[name] {
			continue
		}
		cols = append(cols, name)
		keep = append(keep, i)
	}

	t := &Table{}
	for _, raw := range rows[1:] {
		row := Row{}
		empty := true
		for j, src := range keep {
			v := ""
			if src < len(raw) {
				v = CleanCell(raw[src])
			}
			if v != "" {
				empty = false
			}
			row[cols[j]] = v
		}
		if empty {
			continue
		}
		row["cab_reg_no"] = CleanVehicleNo(row["cab_reg_no"])
		row["trip_direction"] = normalizeDirection(row["trip_direction"])
		t.Append(row)
	}
	return t, nil
}

func (a *clientAdapter) MapConfig() MapConfig {
	return MapConfig{
		Schema:           RosterSchema(),
		Renames:          map[string]string{"emp_category": "employee_category", "mis_remark": "remark"},
		SerialDateFields: []string{"shift_date", "trip_date"},
		SerialTimeFields: []string{"shift_time", "pickup_time"},
		SourceTag:        "Client Data",
	}
}

// normalizeDirection maps the transport vendors' login/logout vocabulary
// onto the canonical trip direction.
func normalizeDirection(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "LOGIN", "PICKUP":
		return models.DirectionPickup
	case "LOGOUT", "DROP":
		return models.DirectionDrop
	}
	return strings.ToUpper(strings.TrimSpace(v))
}
