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

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/client"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/page"
	pgdb "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

const clientColumns = `id, rut, name, email, status, created_at, updated_at`

// ClientRepository は PostgreSQL を利用した顧客永続化の実装です。
type ClientRepository struct {
	pool pgdb.Queryer
}

// NewClientRepository は ClientRepository を生成します。
func NewClientRepository(pool pgdb.Queryer) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// Create は顧客を新規作成します。
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) (*client.Client, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO clients (rut, name, email, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+clientColumns,
		c.RUT, c.Name, nullableString(c.Email), string(c.Status), c.CreatedAt, c.UpdatedAt)

	created, err := scanClient(row)
	if err != nil {
		return nil, translateClientPgError(err)
	}
	return created, nil
}

// Update は顧客情報を更新します。
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) (*client.Client, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE clients
           SET rut = $1,
               name = $2,
               email = $3,
               status = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING `+clientColumns,
		c.RUT, c.Name, nullableString(c.Email), string(c.Status), c.UpdatedAt, c.ID)

	updated, err := scanClient(row)
	if err != nil {
		return nil, translateClientPgError(err)
	}
	return updated, nil
}

// Delete は顧客を削除します。従業員・書類・ユーザーが残っている場合は失敗します。
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return translateClientPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrClientNotFound
	}
	return nil
}

// FindByID は ID で顧客を取得します。
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*client.Client, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+clientColumns+`
          FROM clients
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanClient(row)
	if err != nil {
		return nil, translateClientPgError(err)
	}
	return found, nil
}

// FindByRUT は正規化済みの RUT で顧客を取得します。
func (r *ClientRepository) FindByRUT(ctx context.Context, rut string) (*client.Client, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+clientColumns+`
          FROM clients
         WHERE rut = $1
         LIMIT 1
    `, rut)

	found, err := scanClient(row)
	if err != nil {
		return nil, translateClientPgError(err)
	}
	return found, nil
}

// List は顧客を名前順で取得します。
func (r *ClientRepository) List(ctx context.Context, filter client.ListClientsFilter) ([]*client.Client, string, error) {
	if filter.Limit <= 0 {
		return nil, "", client.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", client.ErrInvalidPageToken
	}

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		whereClause = " WHERE status = $" + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + clientColumns + `
          FROM clients` + whereClause + `
         ORDER BY name ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateClientPgError(err)
	}
	defer rows.Close()

	clients := make([]*client.Client, 0, filter.Limit+1)
	for rows.Next() {
		found, err := scanClient(rows)
		if err != nil {
			return nil, "", translateClientPgError(err)
		}
		clients = append(clients, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateClientPgError(err)
	}

	clients, next := page.Trim(clients, filter.Offset, filter.Limit)
	return clients, next, nil
}

func scanClient(row pgx.Row) (*client.Client, error) {
	var (
		c                    client.Client
		status               string
		email                sql.NullString
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&c.ID, &c.RUT, &c.Name, &email, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, client.ErrClientNotFound
		}
		return nil, err
	}

	c.Email = stringPtr(email)
	c.Status = client.Status(status)
	c.CreatedAt = createdAt
	c.UpdatedAt = updatedAt
	return &c, nil
}

func translateClientPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return client.ErrRUTAlreadyExists
		case foreignKeyViolationCode:
			return client.ErrClientInUse
		}
	}
	return err
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func isConstraint(pgErr *pgconn.PgError, names ...string) bool {
	for _, name := range names {
		if strings.EqualFold(pgErr.ConstraintName, name) {
			return true
		}
	}
	return false
}
