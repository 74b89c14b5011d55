package client

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/page"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/rut"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// NotificationInvalidator は通知キャッシュの破棄を担います。
type NotificationInvalidator interface {
	Invalidate(ctx context.Context) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// UseCase は顧客ユースケースの公開インターフェースです。
type UseCase interface {
	CreateClient(ctx context.Context, in CreateClientInput) (*Client, error)
	GetClient(ctx context.Context, in GetClientInput) (*Client, error)
	ListClients(ctx context.Context, in ListClientsInput) (*ListClientsResult, error)
	UpdateClient(ctx context.Context, in UpdateClientInput) (*Client, error)
	DeleteClient(ctx context.Context, in DeleteClientInput) error
}

// Service は顧客に関するユースケースをまとめます。
type Service struct {
	repo          Repository
	clock         Clock
	tx            TransactionManager
	notifications NotificationInvalidator
	logger        *zap.Logger
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithNotificationInvalidator は変更のコミット後に通知キャッシュを破棄させます。
func WithNotificationInvalidator(inv NotificationInvalidator) Option {
	return func(s *Service) {
		s.notifications = inv
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

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, clock: clock, tx: tx, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClientInput は顧客登録時の入力です。
type CreateClientInput struct {
	RUT   string
	Name  string
	Email *string
}

// UpdateClientInput は顧客更新時の入力です。nil のフィールドは変更しません。
type UpdateClientInput struct {
	ID     string
	RUT    *string
	Name   *string
	Email  *string
	Status *Status
}

// GetClientInput は顧客取得時の入力です。
type GetClientInput struct {
	ID string
}

// DeleteClientInput は顧客削除時の入力です。
type DeleteClientInput struct {
	ID string
}

// ListClientsInput は一覧取得時の入力です。
type ListClientsInput struct {
	PageSize  int
	PageToken string
	Status    *Status
}

// ListClientsResult は一覧取得結果を表します。
type ListClientsResult struct {
	Clients       []*Client
	NextPageToken string
}

// CreateClient は顧客を登録します。RUT は検証済みの正規形で保存されます。
func (s *Service) CreateClient(ctx context.Context, in CreateClientInput) (*Client, error) {
	normalizedRUT, err := normalizeRUT(in.RUT)
	if err != nil {
		return nil, err
	}

	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	var created *Client
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureRUTNotExists(txCtx, normalizedRUT); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Client{
			RUT:       normalizedRUT,
			Name:      name,
			Email:     email,
			Status:    StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateClient は顧客情報を更新します。
func (s *Service) UpdateClient(ctx context.Context, in UpdateClientInput) (*Client, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Client
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.RUT != nil {
			normalizedRUT, err := normalizeRUT(*in.RUT)
			if err != nil {
				return err
			}
			if normalizedRUT != existing.RUT {
				if err := s.ensureRUTNotExists(txCtx, normalizedRUT); err != nil {
					return err
				}
				existing.RUT = normalizedRUT
			}
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			existing.Name = name
		}

		if in.Email != nil {
			email, err := normalizeEmail(in.Email)
			if err != nil {
				return err
			}
			existing.Email = email
		}

		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidateNotifications(ctx, updated.ID)
	return updated, nil
}

// DeleteClient は顧客を削除します。
func (s *Service) DeleteClient(ctx context.Context, in DeleteClientInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	}); err != nil {
		return err
	}

	s.invalidateNotifications(ctx, in.ID)
	return nil
}

// GetClient は ID で顧客を取得します。
func (s *Service) GetClient(ctx context.Context, in GetClientInput) (*Client, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var found *Client
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListClients は顧客の一覧を取得します。
func (s *Service) ListClients(ctx context.Context, in ListClientsInput) (*ListClientsResult, error) {
	limit, ok := page.Size(in.PageSize)
	if !ok {
		return nil, ErrInvalidPageSize
	}

	offset, ok := page.Offset(in.PageToken)
	if !ok {
		return nil, ErrInvalidPageToken
	}

	if in.Status != nil && !isValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	result := &ListClientsResult{}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		clients, next, err := s.repo.List(txCtx, ListClientsFilter{
			Limit:  limit,
			Offset: offset,
			Status: in.Status,
		})
		if err != nil {
			return err
		}
		result.Clients = clients
		result.NextPageToken = next
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// invalidateNotifications は通知キャッシュを破棄します。変更自体はコミット済みのため失敗はログに留めます。
func (s *Service) invalidateNotifications(ctx context.Context, id string) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate notifications", zap.String("client_id", id), zap.Error(err))
	}
}

func (s *Service) ensureRUTNotExists(ctx context.Context, value string) error {
	existing, err := s.repo.FindByRUT(ctx, value)
	if err != nil && !errors.Is(err, ErrClientNotFound) {
		return err
	}
	if existing != nil {
		return ErrRUTAlreadyExists
	}
	return nil
}

func normalizeRUT(raw string) (string, error) {
	normalized, err := rut.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRUT, raw)
	}
	return normalized, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

// normalizeEmail は空文字列を nil として扱います。
func normalizeEmail(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	email := strings.ToLower(addr.Address)
	return &email, nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}
