package cleaner

import (
	"strings"

	"tripcleaner/internal/domain"
)

// Declared source types an upload batch can carry.
const (
	SourceClient    = "client"
	SourceRaw       = "raw"
	SourceOperation = "operation"
	SourceBA        = "ba_row"
	SourceFastag    = "fastag"
)

// File is one uploaded file handed to an adapter.
type File struct {
	Name string
	Data []byte
}

// FormatAdapter turns one raw source file into an intermediate table of
// loosely-typed fields. Each implementation encodes one source variant's
// column layout and quirks.
type FormatAdapter interface {
	// Name identifies the variant in diagnostics.
	Name() string
	// Parse extracts the intermediate table. A file the adapter cannot read
	// returns an error and is skipped by the caller; it never aborts the
	// batch.
	Parse(f File) (*Table, error)
	// MapConfig is the rename table and derivations the CanonicalMapper
	// applies to this adapter's output.
	MapConfig() MapConfig
}

// Registry resolves the adapter for a (source type, filename) pair. Roster
// source types map 1:1 onto adapters; the fastag type fans out per file by
// filename substring with a nominated default variant.
type Registry struct {
	bySource map[string]FormatAdapter
	fastag   []fastagVariant
	fallback FormatAdapter
}

type fastagVariant struct {
	match   string
	adapter FormatAdapter
}

// NewRegistry builds the closed set of known adapters. The lookup tables
// inside each adapter are constructed here, once per pipeline invocation.
func NewRegistry() *Registry {
	icici := newFastagICICI()
	r := &Registry{
		bySource: map[string]FormatAdapter{
			SourceClient:    newClientAdapter(),
			SourceRaw:       newRawAdapter(),
			SourceOperation: newOperationAdapter(),
			SourceBA:        newBAAdapter(),
		},
		// Longer, more specific names first: "idfcb" must win over "idfc".
		fastag: []fastagVariant{
			{"idfcb", newFastagIDFCB()},
			{"idfc", newFastagIDFC()},
			{"icici", icici},
			{"indus", newFastagIndus()},
		},
		fallback: icici,
	}
	return r
}

// Select returns the adapter for one file of the given source type.
func (r *Registry) Select(sourceType, filename string) (FormatAdapter, error) {
	if sourceType == SourceFastag {
		low := strings.ToLower(filename)
		for _, v := range r.fastag {
			if strings.Contains(low, v.match) {
				return v.adapter, nil
			}
		}
		return r.fallback, nil
	}
	a, ok := r.bySource[sourceType]
	if !ok {
		return nil, domain.ErrUnknownSourceType
	}
	return a, nil
}

// IsToll reports whether the source type yields toll transactions rather
// than roster records.
func IsToll(sourceType string) bool { return sourceType == SourceFastag }
