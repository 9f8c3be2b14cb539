package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	intconfig "tripcleaner/internal/config"
	intdb "tripcleaner/internal/db"
	"tripcleaner/internal/domain/models"
)

// TollRepository wraps DB access for toll_transactions.
type TollRepository struct {
	DB *sql.DB
}

func (r TollRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// ExistingTransactionIDs returns the subset of ids already stored.
func (r TollRepository) ExistingTransactionIDs(ids []string) (map[string]bool, error) {
	existing := map[string]bool{}
	db := r.db()
	if db == nil {
		return nil, fmt.Errorf("db not available")
	}

	for start := 0; start < len(ids); start += inChunkSize {
		end := start + inChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		rows, err := db.Query(`SELECT unique_transaction_id FROM toll_transactions WHERE unique_transaction_id IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("lookup toll transaction ids: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			existing[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return existing, nil
}

var tollColumns = []string{
	"vehicle_number", "travel_date_time", "unique_transaction_id",
	"plaza_name", "plaza_id", "activity", "debit_amount",
}

// InsertBatch stores the transactions in one multi-row insert per chunk.
func (r TollRepository) InsertBatch(txs []models.TollTransaction) (int, error) {
	db := r.db()
	if db == nil {
		return 0, fmt.Errorf("db not available")
	}
	if len(txs) == 0 {
		return 0, nil
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(tollColumns)), ",") + ")"
	inserted := 0

	for start := 0; start < len(txs); start += inChunkSize {
		end := start + inChunkSize
		if end > len(txs) {
			end = len(txs)
		}
		chunk := txs[start:end]

		args := make([]any, 0, len(chunk)*len(tollColumns))
		for _, tx := range chunk {
			args = append(args,
				tx.VehicleNumber, tx.TravelDateTime, tx.UniqueTransactionID,
				tx.PlazaName, intdb.NullIfEmpty(tx.PlazaID), intdb.NullIfEmpty(tx.Activity),
				tx.DebitAmount,
			)
		}

		q := `INSERT INTO toll_transactions (` + strings.Join(tollColumns, ",") + `) VALUES ` +
			strings.TrimSuffix(strings.Repeat(rowPlaceholder+",", len(chunk)), ",")
		res, err := db.Exec(q, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert toll_transactions: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		} else {
			inserted += len(chunk)
		}
	}
	return inserted, nil
}
