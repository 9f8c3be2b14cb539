package repositories

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"tripcleaner/internal/domain/models"
)

func TestExistingTransactionIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT unique_transaction_id FROM toll_transactions WHERE unique_transaction_id IN (?,?)`)).
		WithArgs("900001", "900002").
		WillReturnRows(sqlmock.NewRows([]string{"unique_transaction_id"}).AddRow("900001"))

	repo := TollRepository{DB: db}
	existing, err := repo.ExistingTransactionIDs([]string{"900001", "900002"})
	if err != nil {
		t.Fatalf("ExistingTransactionIDs error: %v", err)
	}
	if !existing["900001"] || existing["900002"] {
		t.Fatalf("existing set wrong: %v", existing)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTollInsertBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO toll_transactions").
		WithArgs("HR55AB1234", "01-02-2024 10:00:00", "900002", "KHERKI DAULA", "55", "Toll", 60.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := TollRepository{DB: db}
	n, err := repo.InsertBatch([]models.TollTransaction{{
		VehicleNumber:       "HR55AB1234",
		TravelDateTime:      "01-02-2024 10:00:00",
		UniqueTransactionID: "900002",
		PlazaName:           "KHERKI DAULA",
		PlazaID:             "55",
		Activity:            "Toll",
		DebitAmount:         60,
	}})
	if err != nil {
		t.Fatalf("InsertBatch error: %v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
