package services

import (
	"fmt"
	"strconv"
	"strings"

	"tripcleaner/internal/cleaner"
	"tripcleaner/internal/domain"
	"tripcleaner/internal/domain/models"
	"tripcleaner/internal/utils"
)

// TripStore is the slice of trip_records access the pipeline needs.
type TripStore interface {
	ExistingUniqueIDs(ids []string) (map[string]bool, error)
	InsertBatch(recs []models.TripRecord) (int, error)
}

// TollStore is the slice of toll_transactions access the pipeline needs.
type TollStore interface {
	ExistingTransactionIDs(ids []string) (map[string]bool, error)
	InsertBatch(txs []models.TollTransaction) (int, error)
}

// AddressStore is the locality-cache access used by enrichment.
type AddressStore interface {
	HasTables() bool
	// AllAddresses keys are trimmed upper-cased text.
	AllAddresses() (map[string]bool, error)
	InsertAddresses(addrs []string) error
	ResyncIdentity() error
}

// Result is one finished batch: the typed records (all processed rows, not
// only the newly stored ones), the styled review workbook, and the counts
// the upload endpoint reports back.
type Result struct {
	SourceType    string
	Filename      string
	Report        []byte
	RowsProcessed int
	RowsSaved     int
	NewAddresses  int
	SkippedFiles  []string

	Trips []models.TripRecord
	Tolls []models.TollTransaction
}

// CleanerService runs the batch pipeline: adapt each file, merge, map to
// the canonical schema, dedup against the store, enrich the address cache,
// and render the report.
type CleanerService struct {
	Trips     TripStore
	Tolls     TollStore
	Addresses AddressStore
	Registry  *cleaner.Registry
	RequestID string
}

// reportNames follows the convention reviewers already file these under.
var reportNames = map[string]string{
	cleaner.SourceClient:    "Client_Cleaned.xlsx",
	cleaner.SourceRaw:       "Raw_Cleaned.xlsx",
	cleaner.SourceOperation: "Operation_Cleaned.xlsx",
	cleaner.SourceBA:        "BA_Row_Data_Cleaned.xlsx",
	cleaner.SourceFastag:    "Fastag_Cleaned.xlsx",
}

// Clean processes one upload batch. Files are consumed strictly in upload
// order; a file that fails to parse is logged and skipped, never fatal. The
// whole batch fails only for an unknown source type, missing join keys, or
// zero usable rows. An ErrAddressSync return still carries a full Result:
// records were stored, only the cache write failed.
func (s CleanerService) Clean(sourceType string, files []cleaner.File) (*Result, error) {
	utils.LogEvent(s.RequestID, "cleaner", "start", "source="+sourceType+" files="+strconv.Itoa(len(files)))

	merged := &cleaner.Table{}
	var cfg cleaner.MapConfig
	res := &Result{SourceType: sourceType, Filename: reportNames[sourceType]}

	parsed := 0
	for _, f := range files {
		adapter, err := s.Registry.Select(sourceType, f.Name)
		if err != nil {
			return nil, err
		}
		t, err := adapter.Parse(f)
		if err != nil {
			utils.LogEvent(s.RequestID, "cleaner", "skip_file", "file="+f.Name+" adapter="+adapter.Name()+" err="+err.Error())
			res.SkippedFiles = append(res.SkippedFiles, f.Name)
			continue
		}
		cfg = adapter.MapConfig()
		merged.Merge(t)
		parsed++
	}
	if parsed == 0 {
		return nil, domain.ErrEmptyBatch
	}

	mapped, err := cleaner.Map(merged, cfg)
	if err != nil {
		return nil, err
	}
	res.RowsProcessed = len(mapped.Rows)

	if cleaner.IsToll(sourceType) {
		res.Tolls = cleaner.TollRecords(mapped)
		res.RowsSaved, err = s.saveTolls(res.Tolls)
	} else {
		res.Trips = cleaner.TripRecords(mapped, cfg.Schema)
		res.RowsSaved, err = s.saveTrips(res.Trips)
	}
	if err != nil {
		return nil, err
	}

	report, err := cleaner.WriteReport(mapped, cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	res.Report = report

	var syncErr error
	if !cleaner.IsToll(sourceType) {
		res.NewAddresses, syncErr = s.syncAddresses(mapped)
	}

	utils.LogEvent(s.RequestID, "cleaner", "done",
		"processed="+strconv.Itoa(res.RowsProcessed)+
			" saved="+strconv.Itoa(res.RowsSaved)+
			" new_addresses="+strconv.Itoa(res.NewAddresses)+
			" skipped="+strconv.Itoa(len(res.SkippedFiles)))
	return res, syncErr
}

func (s CleanerService) saveTrips(recs []models.TripRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.UniqueID)
	}
	existing, err := s.Trips.ExistingUniqueIDs(ids)
	if err != nil {
		return 0, fmt.Errorf("dedup trips: %w", err)
	}

	fresh := make([]models.TripRecord, 0, len(recs))
	seen := map[string]bool{}
	for _, rec := range recs {
		if existing[rec.UniqueID] || seen[rec.UniqueID] {
			continue
		}
		seen[rec.UniqueID] = true
		fresh = append(fresh, rec)
	}
	return s.Trips.InsertBatch(fresh)
}

func (s CleanerService) saveTolls(txs []models.TollTransaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.UniqueTransactionID)
	}
	existing, err := s.Tolls.ExistingTransactionIDs(ids)
	if err != nil {
		return 0, fmt.Errorf("dedup tolls: %w", err)
	}

	fresh := make([]models.TollTransaction, 0, len(txs))
	seen := map[string]bool{}
	for _, tx := range txs {
		if existing[tx.UniqueTransactionID] || seen[tx.UniqueTransactionID] {
			continue
		}
		seen[tx.UniqueTransactionID] = true
		fresh = append(fresh, tx)
	}
	return s.Tolls.InsertBatch(fresh)
}

// syncAddresses diffs the batch's addresses against the cache and inserts
// the new ones with locality unassigned. A duplicate-key failure usually
// means a manual import left AUTO_INCREMENT behind the data, so the
// identity is resynced once and the insert retried once.
func (s CleanerService) syncAddresses(t *cleaner.Table) (int, error) {
	if s.Addresses == nil || !s.Addresses.HasTables() {
		return 0, nil
	}
	incoming := cleaner.CollectAddresses(t)
	if len(incoming) == 0 {
		return 0, nil
	}

	stored, err := s.Addresses.AllAddresses()
	if err != nil {
		return 0, fmt.Errorf("load address cache: %w", err)
	}

	// AllAddresses keys are upper-cased; compare folded, store as cleaned.
	var fresh []string
	for _, addr := range incoming {
		if !stored[strings.ToUpper(addr)] {
			fresh = append(fresh, addr)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := s.Addresses.InsertAddresses(fresh); err != nil {
		utils.LogEvent(s.RequestID, "cleaner", "address_resync", "insert failed, resyncing identity: "+err.Error())
		if rerr := s.Addresses.ResyncIdentity(); rerr != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrAddressSync, rerr)
		}
		if err := s.Addresses.InsertAddresses(fresh); err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrAddressSync, err)
		}
	}
	return len(fresh), nil
}
