package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the cleaning pipeline's failure taxonomy. File-level
// problems are diagnostics, not errors; these cover batch and enrichment
// failures that must reach the caller.
var (
	// ErrMissingJoinKeys: the intermediate rows carry neither trip_id nor
	// employee_id, so no downstream consumer could key on the batch.
	ErrMissingJoinKeys = errors.New("batch has no trip_id/employee_id columns")

	// ErrEmptyBatch: no adapter produced a single usable row.
	ErrEmptyBatch = errors.New("no usable rows in batch")

	// ErrUnknownSourceType: the declared source tag matches no registered
	// adapter.
	ErrUnknownSourceType = errors.New("unknown source type")

	// ErrAddressSync: the address insert failed twice (once before and once
	// after the identity resync). Already-inserted addresses stay put.
	ErrAddressSync = errors.New("address sync failed after identity resync")
)

// FileError records a per-file parse failure. Batches continue past it; the
// orchestrator collects these as diagnostics.
type FileError struct {
	Filename string
	Err      error
}

func (e FileError) Error() string {
	return fmt.Sprintf("file %s: %v", e.Filename, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }
