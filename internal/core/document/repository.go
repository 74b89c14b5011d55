package document

import (
	"context"
	"io"
	"time"
)

// Repository は書類メタデータの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, doc *Document) (*Document, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, filter ListDocumentsFilter) ([]*Document, string, error)
}

// ListDocumentsFilter は一覧取得時の検索条件を表します。
type ListDocumentsFilter struct {
	ClientID string
	Category *Category
	Limit    int
	Offset   int
}

// ObjectStore は書類本体を保存するオブジェクトストレージの抽象です。
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
