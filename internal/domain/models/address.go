package models

// AddressLocality caches address -> locality. Locality stays "" until the
// assignment workflow fills it in; the pipeline only proposes new addresses.
type AddressLocality struct {
	ID       int64
	Address  string
	Locality string
}

// AddressZoneKm is the resolved three-tier view of an address: locality from
// the assignment workflow, zone and km derived through the lookup tables.
// Zone and Km are cached projections and must be re-derived whenever the
// locality changes.
type AddressZoneKm struct {
	Address  string
	Locality string
	Zone     string
	Km       float64
}
