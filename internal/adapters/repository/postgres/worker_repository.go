package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/page"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/worker"
	pgdb "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/db/postgres"
)

const workerReturning = `id, client_id, rut, first_name, last_name, position, status, contract_start, contract_end, created_at, updated_at`

const workerSelect = `
        SELECT w.id,
               w.client_id,
               w.rut,
               w.first_name,
               w.last_name,
               w.position,
               w.status,
               w.contract_start,
               w.contract_end,
               w.created_at,
               w.updated_at,
               c.id,
               c.rut,
               c.name
          FROM workers w
          JOIN clients c ON c.id = w.client_id`

// WorkerRepository は PostgreSQL を利用した従業員永続化の実装です。
type WorkerRepository struct {
	pool pgdb.Queryer
}

// NewWorkerRepository は WorkerRepository を生成します。
func NewWorkerRepository(pool pgdb.Queryer) *WorkerRepository {
	return &WorkerRepository{pool: pool}
}

// Create は従業員を新規作成し、顧客のスナップショットを付けて返します。
func (r *WorkerRepository) Create(ctx context.Context, w *worker.Worker) (*worker.Worker, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH inserted AS (
            INSERT INTO workers (client_id, rut, first_name, last_name, position, status, contract_start, contract_end, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
            RETURNING `+workerReturning+`
        )
        SELECT i.id, i.client_id, i.rut, i.first_name, i.last_name, i.position, i.status, i.contract_start, i.contract_end, i.created_at, i.updated_at,
               c.id, c.rut, c.name
          FROM inserted i
          JOIN clients c ON c.id = i.client_id
    `,
		w.ClientID,
		w.RUT,
		w.FirstName,
		w.LastName,
		nullableString(w.Position),
		string(w.Status),
		nullableDate(w.ContractStart),
		nullableDate(w.ContractEnd),
		w.CreatedAt,
		w.UpdatedAt,
	)

	created, err := scanWorker(row)
	if err != nil {
		return nil, translateWorkerPgError(err)
	}
	return created, nil
}

// Update は従業員情報を更新します。所属する顧客は変更できません。
func (r *WorkerRepository) Update(ctx context.Context, w *worker.Worker) (*worker.Worker, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH updated AS (
            UPDATE workers
               SET rut = $1,
                   first_name = $2,
                   last_name = $3,
                   position = $4,
                   status = $5,
                   contract_start = $6,
                   contract_end = $7,
                   updated_at = $8
             WHERE id = $9
            RETURNING `+workerReturning+`
        )
        SELECT u.id, u.client_id, u.rut, u.first_name, u.last_name, u.position, u.status, u.contract_start, u.contract_end, u.created_at, u.updated_at,
               c.id, c.rut, c.name
          FROM updated u
          JOIN clients c ON c.id = u.client_id
    `,
		w.RUT,
		w.FirstName,
		w.LastName,
		nullableString(w.Position),
		string(w.Status),
		nullableDate(w.ContractStart),
		nullableDate(w.ContractEnd),
		w.UpdatedAt,
		w.ID,
	)

	updated, err := scanWorker(row)
	if err != nil {
		return nil, translateWorkerPgError(err)
	}
	return updated, nil
}

// Delete は従業員を削除します。
func (r *WorkerRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return translateWorkerPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return worker.ErrWorkerNotFound
	}
	return nil
}

// FindByID は ID で従業員を取得します。
func (r *WorkerRepository) FindByID(ctx context.Context, id string) (*worker.Worker, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, workerSelect+`
         WHERE w.id = $1
         LIMIT 1
    `, id)

	found, err := scanWorker(row)
	if err != nil {
		return nil, translateWorkerPgError(err)
	}
	return found, nil
}

// FindByClientAndRUT は顧客 ID と RUT で従業員を検索します。
func (r *WorkerRepository) FindByClientAndRUT(ctx context.Context, clientID, rut string) (*worker.Worker, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, workerSelect+`
         WHERE w.client_id = $1 AND w.rut = $2
         LIMIT 1
    `, clientID, rut)

	found, err := scanWorker(row)
	if err != nil {
		return nil, translateWorkerPgError(err)
	}
	return found, nil
}

// List は顧客の従業員を氏名順で取得します。
func (r *WorkerRepository) List(ctx context.Context, filter worker.ListWorkersFilter) ([]*worker.Worker, string, error) {
	if strings.TrimSpace(filter.ClientID) == "" {
		return nil, "", worker.ErrInvalidClientID
	}
	if filter.Limit <= 0 {
		return nil, "", worker.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", worker.ErrInvalidPageToken
	}

	args := []any{filter.ClientID}
	conditions := []string{"w.client_id = $1"}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "w.status = $"+strconv.Itoa(len(args)))
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := workerSelect + `
         WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY w.last_name ASC, w.first_name ASC, w.id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateWorkerPgError(err)
	}
	defer rows.Close()

	workers := make([]*worker.Worker, 0, filter.Limit+1)
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, "", translateWorkerPgError(err)
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateWorkerPgError(err)
	}

	workers, next := page.Trim(workers, filter.Offset, filter.Limit)
	return workers, next, nil
}

func scanWorker(row pgx.Row) (*worker.Worker, error) {
	var (
		w             worker.Worker
		position      sql.NullString
		status        string
		contractStart sql.NullTime
		contractEnd   sql.NullTime
		createdAt     time.Time
		updatedAt     time.Time
		snapshot      worker.ClientSnapshot
	)

	if err := row.Scan(
		&w.ID,
		&w.ClientID,
		&w.RUT,
		&w.FirstName,
		&w.LastName,
		&position,
		&status,
		&contractStart,
		&contractEnd,
		&createdAt,
		&updatedAt,
		&snapshot.ID,
		&snapshot.RUT,
		&snapshot.Name,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, worker.ErrWorkerNotFound
		}
		return nil, err
	}

	w.Position = stringPtr(position)
	w.Status = worker.Status(status)
	w.ContractStart = datePtr(contractStart)
	w.ContractEnd = datePtr(contractEnd)
	w.CreatedAt = createdAt
	w.UpdatedAt = updatedAt
	w.Client = &snapshot
	return &w, nil
}

func translateWorkerPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return worker.ErrRUTAlreadyExists
		case foreignKeyViolationCode:
			return worker.ErrClientNotFound
		case checkViolationCode:
			if isConstraint(pgErr, "workers_status_check") {
				return worker.ErrInvalidStatus
			}
			return worker.ErrInvalidContractPeriod
		}
	}
	return err
}

// nullableDate は暦日 (UTC 0 時) に揃えた値を返します。
func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return civilDate(*value)
}

func datePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	date := civilDate(value.Time.UTC())
	return &date
}
