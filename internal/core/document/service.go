package document

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/page"
)

const (
	// DefaultMaxSize はアップロードできる書類の既定の上限サイズです。
	DefaultMaxSize int64 = 25 << 20
	// DefaultURLExpiry は署名付き URL の既定の有効期間です。
	DefaultURLExpiry = 15 * time.Minute
	periodLayout     = "2006-01"
	defaultMIMEType  = "application/octet-stream"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// UseCase は書類ユースケースの公開インターフェースです。
type UseCase interface {
	Upload(ctx context.Context, in UploadInput) (*Document, error)
	GetDocument(ctx context.Context, in GetDocumentInput) (*Document, error)
	ListDocuments(ctx context.Context, in ListDocumentsInput) (*ListDocumentsResult, error)
	DownloadURL(ctx context.Context, in GetDocumentInput) (string, error)
	DeleteDocument(ctx context.Context, in GetDocumentInput) error
}

// Service は書類のアップロードと参照をまとめます。
type Service struct {
	repo      Repository
	store     ObjectStore
	clock     Clock
	newID     func() string
	maxSize   int64
	urlExpiry time.Duration
	logger    *zap.Logger
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithMaxSize はアップロード上限サイズを設定します。
func WithMaxSize(size int64) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithURLExpiry は署名付き URL の有効期間を設定します。
func WithURLExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		if expiry > 0 {
			s.urlExpiry = expiry
		}
	}
}

// WithLogger はロガーを設定します。
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator はオブジェクトキーに使う一意な ID の生成関数を設定します。
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, store ObjectStore, clock Clock, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	s := &Service{
		repo:      repo,
		store:     store,
		clock:     clock,
		newID:     uuid.NewString,
		maxSize:   DefaultMaxSize,
		urlExpiry: DefaultURLExpiry,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadInput は書類アップロード時の入力です。
type UploadInput struct {
	ClientID    string
	Category    Category
	Period      *string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// GetDocumentInput は書類を ID で指定する入力です。
type GetDocumentInput struct {
	ID string
}

// ListDocumentsInput は一覧取得時の入力です。
type ListDocumentsInput struct {
	ClientID  string
	Category  *Category
	PageSize  int
	PageToken string
}

// ListDocumentsResult は一覧取得結果を表します。
type ListDocumentsResult struct {
	Documents     []*Document
	NextPageToken string
}

// Upload は書類本体をストレージへ保存し、メタデータを登録します。
// メタデータの登録に失敗した場合、保存済みのオブジェクトは削除されます。
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Document, error) {
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	if !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	period, err := normalizePeriod(in.Period)
	if err != nil {
		return nil, err
	}
	fileName, err := sanitizeFileName(in.FileName)
	if err != nil {
		return nil, err
	}
	if in.Body == nil || in.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if in.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, in.Size)
	}

	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = defaultMIMEType
	}

	key := ObjectKey(clientID, in.Category, s.newID(), fileName)
	if err := s.store.Put(ctx, key, in.Body, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("document: store object: %w", err)
	}

	created, err := s.repo.Create(ctx, &Document{
		ClientID:    clientID,
		Category:    in.Category,
		Period:      period,
		FileName:    fileName,
		ObjectKey:   key,
		ContentType: contentType,
		Size:        in.Size,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.logger.Warn("failed to remove orphaned object", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("document_id", created.ID),
		zap.String("client_id", clientID),
		zap.String("category", string(in.Category)),
		zap.Int64("size", in.Size),
	)
	return created, nil
}

// GetDocument は ID で書類を取得します。
func (s *Service) GetDocument(ctx context.Context, in GetDocumentInput) (*Document, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListDocuments は顧客の書類一覧を新しい順に取得します。
func (s *Service) ListDocuments(ctx context.Context, in ListDocumentsInput) (*ListDocumentsResult, error) {
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return nil, ErrInvalidClientID
	}
	if in.Category != nil && !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	limit, ok := page.Size(in.PageSize)
	if !ok {
		return nil, ErrInvalidPageSize
	}
	offset, ok := page.Offset(in.PageToken)
	if !ok {
		return nil, ErrInvalidPageToken
	}

	docs, next, err := s.repo.List(ctx, ListDocumentsFilter{
		ClientID: clientID,
		Category: in.Category,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListDocumentsResult{Documents: docs, NextPageToken: next}, nil
}

// DownloadURL は書類本体を取得するための署名付き URL を返します。
func (s *Service) DownloadURL(ctx context.Context, in GetDocumentInput) (string, error) {
	doc, err := s.GetDocument(ctx, in)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignedURL(ctx, doc.ObjectKey, s.urlExpiry)
	if err != nil {
		return "", fmt.Errorf("document: presign %s: %w", doc.ObjectKey, err)
	}
	return url, nil
}

// DeleteDocument はメタデータを削除した後、ストレージ上のオブジェクトを削除します。
func (s *Service) DeleteDocument(ctx context.Context, in GetDocumentInput) error {
	doc, err := s.GetDocument(ctx, in)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, doc.ObjectKey); err != nil {
		s.logger.Warn("failed to remove object", zap.String("key", doc.ObjectKey), zap.Error(err))
	}
	return nil
}

// ObjectKey は書類本体の保存先キーを組み立てます。
func ObjectKey(clientID string, category Category, id, fileName string) string {
	return fmt.Sprintf("clients/%s/%s/%s-%s", clientID, category, id, fileName)
}

func normalizePeriod(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.Parse(periodLayout, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, trimmed)
	}
	period := t.Format(periodLayout)
	return &period, nil
}

// sanitizeFileName はパス要素を除き、英数字と ._- 以外を '_' に置き換えます。
func sanitizeFileName(raw string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(raw), `\`, "/"))
	if base == "." || base == "/" || base == "" {
		return "", ErrInvalidFileName
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), ".")
	if name == "" {
		return "", ErrInvalidFileName
	}
	return name, nil
}
