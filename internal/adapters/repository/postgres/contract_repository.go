package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/compliance"
	pgdb "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/db/postgres"
)

const contractSelect = `
        SELECT w.id,
               w.first_name || ' ' || w.last_name,
               c.id,
               c.name,
               w.contract_end
          FROM workers w
          JOIN clients c ON c.id = w.client_id
         WHERE w.status = 'active'
           AND w.contract_end IS NOT NULL`

// ContractRepository は在籍中の従業員の労働契約を終了日で検索します。
type ContractRepository struct {
	pool pgdb.Queryer
}

// NewContractRepository は ContractRepository を生成します。
func NewContractRepository(pool pgdb.Queryer) *ContractRepository {
	return &ContractRepository{pool: pool}
}

// ExpiredContracts は終了日が today より前の契約を返します。
func (r *ContractRepository) ExpiredContracts(ctx context.Context, today time.Time) ([]compliance.ContractRecord, error) {
	return r.query(ctx, contractSelect+`
           AND w.contract_end < $1
         ORDER BY w.contract_end ASC, w.id ASC
    `, civilDate(today))
}

// ExpiringContracts は終了日が from 以上 to 以下の契約を返します。
func (r *ContractRepository) ExpiringContracts(ctx context.Context, from, to time.Time) ([]compliance.ContractRecord, error) {
	return r.query(ctx, contractSelect+`
           AND w.contract_end >= $1
           AND w.contract_end <= $2
         ORDER BY w.contract_end ASC, w.id ASC
    `, civilDate(from), civilDate(to))
}

func (r *ContractRepository) query(ctx context.Context, query string, args ...any) ([]compliance.ContractRecord, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []compliance.ContractRecord
	for rows.Next() {
		var (
			rec compliance.ContractRecord
			end sql.NullTime
		)
		if err := rows.Scan(&rec.WorkerID, &rec.WorkerName, &rec.ClientID, &rec.ClientName, &end); err != nil {
			return nil, err
		}
		rec.EndDate = datePtr(end)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
