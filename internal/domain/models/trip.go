package models

// Trip direction values after normalization (Login/Logout map onto these).
const (
	DirectionPickup = "PICKUP"
	DirectionDrop   = "DROP"
)

// ExtraField preserves a source-specific column that is not part of the
// canonical schema. Extras keep the first-seen order of the source file.
type ExtraField struct {
	Name  string
	Value string
}

// TripRecord is one normalized roster row. Mandatory fields are always
// present (empty string, never absent) after mapping; anything the source
// carried beyond them lands in Extras verbatim.
type TripRecord struct {
	UniqueID string // trim(trip_id)+trim(employee_id), dedup key

	ShiftDate        string
	TripID           string
	EmployeeID       string
	Gender           string
	EmployeeCategory string
	EmployeeName     string
	ShiftTime        string
	PickupTime       string
	DropTime         string
	TripDirection    string
	CabRegNo         string
	CabType          string
	Vendor           string
	Office           string
	AirportName      string
	Landmark         string
	Address          string
	FlightNumber     string
	FlightCategory   string
	FlightRoute      string
	FlightType       string
	TripDate         string
	Remark           string
	SourceTag        string
	PassengerMobile  string
	DriverName       string
	DriverMobile     string

	Extras []ExtraField
}

// Extra returns the value of a preserved extra column, "" when absent.
func (t TripRecord) Extra(name string) string {
	for _, e := range t.Extras {
		if e.Name == name {
			return e.Value
		}
	}
	return ""
}
