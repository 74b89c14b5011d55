package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/document"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/page"
	pgdb "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/db/postgres"
)

const documentColumns = `id, client_id, category, period, file_name, object_key, content_type, size_bytes, created_at`

// DocumentRepository は書類メタデータを PostgreSQL に保存します。
type DocumentRepository struct {
	pool pgdb.Queryer
}

// NewDocumentRepository は DocumentRepository を生成します。
func NewDocumentRepository(pool pgdb.Queryer) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Create は書類メタデータを登録します。
func (r *DocumentRepository) Create(ctx context.Context, d *document.Document) (*document.Document, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO documents (client_id, category, period, file_name, object_key, content_type, size_bytes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+documentColumns,
		d.ClientID, string(d.Category), nullableString(d.Period), d.FileName, d.ObjectKey, d.ContentType, d.Size, d.CreatedAt)

	created, err := scanDocument(row)
	if err != nil {
		return nil, translateDocumentPgError(err)
	}
	return created, nil
}

// Delete は書類メタデータを削除します。
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return translateDocumentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

// FindByID は ID で書類を取得します。
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*document.Document, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+documentColumns+`
          FROM documents
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanDocument(row)
	if err != nil {
		return nil, translateDocumentPgError(err)
	}
	return found, nil
}

// List は顧客の書類を新しい順に取得します。
func (r *DocumentRepository) List(ctx context.Context, filter document.ListDocumentsFilter) ([]*document.Document, string, error) {
	if filter.ClientID == "" {
		return nil, "", document.ErrInvalidClientID
	}
	if filter.Limit <= 0 {
		return nil, "", document.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", document.ErrInvalidPageToken
	}

	args := []any{filter.ClientID}
	whereClause := " WHERE client_id = $1"
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		whereClause += " AND category = $" + strconv.Itoa(len(args))
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + documentColumns + `
          FROM documents` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateDocumentPgError(err)
	}
	defer rows.Close()

	docs := make([]*document.Document, 0, filter.Limit+1)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, "", translateDocumentPgError(err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateDocumentPgError(err)
	}

	docs, next := page.Trim(docs, filter.Offset, filter.Limit)
	return docs, next, nil
}

func scanDocument(row pgx.Row) (*document.Document, error) {
	var (
		d         document.Document
		category  string
		period    sql.NullString
		createdAt time.Time
	)
	if err := row.Scan(&d.ID, &d.ClientID, &category, &period, &d.FileName, &d.ObjectKey, &d.ContentType, &d.Size, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrDocumentNotFound
		}
		return nil, err
	}
	d.Category = document.Category(category)
	d.Period = stringPtr(period)
	d.CreatedAt = createdAt
	return &d, nil
}

func translateDocumentPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			return document.ErrClientNotFound
		case checkViolationCode:
			if isConstraint(pgErr, "documents_size_check") {
				return document.ErrEmptyFile
			}
			return document.ErrInvalidCategory
		}
	}
	return err
}
