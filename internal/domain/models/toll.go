package models

// TollTransaction is one toll-statement line after cleaning. Recharge and
// top-up lines never become transactions; DebitAmount is always >= 0.
type TollTransaction struct {
	VehicleNumber       string
	TravelDateTime      string
	UniqueTransactionID string
	PlazaName           string
	PlazaID             string
	Activity            string
	DebitAmount         float64
}
