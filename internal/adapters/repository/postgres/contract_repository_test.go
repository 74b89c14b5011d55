package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var contractRowColumns = []string{"worker_id", "worker_name", "client_id", "client_name", "contract_end"}

func TestContractRepository_ExpiredContracts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewContractRepository(mock)
	today := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE w.status = 'active' AND w.contract_end IS NOT NULL AND w.contract_end < $1`)).
		WithArgs(today).
		WillReturnRows(pgxmock.NewRows(contractRowColumns).
			AddRow("w-1", "Ana Pérez", "client-1", "ACME", end))

	records, err := repo.ExpiredContracts(context.Background(), today.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("ExpiredContracts returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.WorkerName != "Ana Pérez" || rec.ClientName != "ACME" || rec.EndDate == nil || !rec.EndDate.Equal(end) {
		t.Fatalf("unexpected record %+v", rec)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestContractRepository_ExpiringContracts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewContractRepository(mock)
	from := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)

	mock.ExpectQuery(regexp.QuoteMeta(`AND w.contract_end >= $1 AND w.contract_end <= $2`)).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows(contractRowColumns).
			AddRow("w-1", "Ana Pérez", "client-1", "ACME", from.AddDate(0, 0, 3)).
			AddRow("w-2", "Luis Bravo", "client-2", "Beta", to))

	records, err := repo.ExpiringContracts(context.Background(), from, to)
	if err != nil {
		t.Fatalf("ExpiringContracts returned error: %v", err)
	}
	if len(records) != 2 || records[1].WorkerID != "w-2" {
		t.Fatalf("unexpected records %+v", records)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestContractRepository_QueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewContractRepository(mock)
	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM workers w`)).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(boom)

	if _, err := repo.ExpiredContracts(context.Background(), time.Now()); !errors.Is(err, boom) {
		t.Fatalf("expected query error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
