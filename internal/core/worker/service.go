package worker

import (
	"context"
	"errors"
	"fmt"
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

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateWorker(ctx context.Context, in CreateWorkerInput) (*Worker, error)
	GetWorker(ctx context.Context, in GetWorkerInput) (*Worker, error)
	ListWorkers(ctx context.Context, in ListWorkersInput) (*ListWorkersResult, error)
	UpdateWorker(ctx context.Context, in UpdateWorkerInput) (*Worker, error)
	DeleteWorker(ctx context.Context, in DeleteWorkerInput) error
}

// Service は従業員と労働契約に関するユースケースをまとめます。
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

// CreateWorkerInput は従業員登録時の入力です。
type CreateWorkerInput struct {
	ClientID      string
	RUT           string
	FirstName     string
	LastName      string
	Position      *string
	Status        *Status
	ContractStart *time.Time
	ContractEnd   *time.Time
}

// UpdateWorkerInput は従業員更新時の入力です。
// 日付は *Set が true の場合のみ反映され、nil を渡すと値を消去します。
type UpdateWorkerInput struct {
	ID               string
	RUT              *string
	FirstName        *string
	LastName         *string
	Position         *string
	Status           *Status
	ContractStart    *time.Time
	ContractStartSet bool
	ContractEnd      *time.Time
	ContractEndSet   bool
}

// GetWorkerInput は従業員取得時の入力です。
type GetWorkerInput struct {
	ID string
}

// DeleteWorkerInput は従業員削除時の入力です。
type DeleteWorkerInput struct {
	ID string
}

// ListWorkersInput は一覧取得時の入力です。
type ListWorkersInput struct {
	ClientID  string
	PageSize  int
	PageToken string
	Status    *Status
}

// ListWorkersResult は一覧取得結果を表します。
type ListWorkersResult struct {
	Workers       []*Worker
	NextPageToken string
}

// CreateWorker は従業員を登録します。
func (s *Service) CreateWorker(ctx context.Context, in CreateWorkerInput) (*Worker, error) {
	clientID, err := normalizeClientID(in.ClientID)
	if err != nil {
		return nil, err
	}

	workerRUT, err := normalizeRUT(in.RUT)
	if err != nil {
		return nil, err
	}

	firstName, lastName, err := normalizeNames(in.FirstName, in.LastName)
	if err != nil {
		return nil, err
	}

	start := normalizeDate(in.ContractStart)
	end := normalizeDate(in.ContractEnd)
	if err := validateContractPeriod(start, end); err != nil {
		return nil, err
	}

	status := StatusActive
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	var created *Worker
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureRUTNotExists(txCtx, clientID, workerRUT); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Worker{
			ClientID:      clientID,
			RUT:           workerRUT,
			FirstName:     firstName,
			LastName:      lastName,
			Position:      normalizeOptional(in.Position),
			Status:        status,
			ContractStart: start,
			ContractEnd:   end,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidateNotifications(ctx, created.ID)
	return created, nil
}

// UpdateWorker は従業員情報と契約期間を更新します。
func (s *Service) UpdateWorker(ctx context.Context, in UpdateWorkerInput) (*Worker, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Worker
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.RUT != nil {
			workerRUT, err := normalizeRUT(*in.RUT)
			if err != nil {
				return err
			}
			if workerRUT != existing.RUT {
				if err := s.ensureRUTNotExists(txCtx, existing.ClientID, workerRUT); err != nil {
					return err
				}
				existing.RUT = workerRUT
			}
		}

		firstName, lastName := existing.FirstName, existing.LastName
		if in.FirstName != nil {
			firstName = *in.FirstName
		}
		if in.LastName != nil {
			lastName = *in.LastName
		}
		if existing.FirstName, existing.LastName, err = normalizeNames(firstName, lastName); err != nil {
			return err
		}

		if in.Position != nil {
			existing.Position = normalizeOptional(in.Position)
		}

		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		if in.ContractStartSet {
			existing.ContractStart = normalizeDate(in.ContractStart)
		}
		if in.ContractEndSet {
			existing.ContractEnd = normalizeDate(in.ContractEnd)
		}
		if err := validateContractPeriod(existing.ContractStart, existing.ContractEnd); err != nil {
			return err
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

// DeleteWorker は従業員を削除します。
func (s *Service) DeleteWorker(ctx context.Context, in DeleteWorkerInput) error {
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

// GetWorker は従業員を取得します。
func (s *Service) GetWorker(ctx context.Context, in GetWorkerInput) (*Worker, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var found *Worker
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

// ListWorkers は顧客企業の従業員一覧を取得します。
func (s *Service) ListWorkers(ctx context.Context, in ListWorkersInput) (*ListWorkersResult, error) {
	clientID, err := normalizeClientID(in.ClientID)
	if err != nil {
		return nil, err
	}

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

	result := &ListWorkersResult{}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		workers, next, err := s.repo.List(txCtx, ListWorkersFilter{
			ClientID: clientID,
			Status:   in.Status,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return err
		}
		result.Workers = workers
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
		s.logger.Warn("failed to invalidate notifications", zap.String("worker_id", id), zap.Error(err))
	}
}

func (s *Service) ensureRUTNotExists(ctx context.Context, clientID, workerRUT string) error {
	existing, err := s.repo.FindByClientAndRUT(ctx, clientID, workerRUT)
	if err != nil && !errors.Is(err, ErrWorkerNotFound) {
		return err
	}
	if existing != nil {
		return ErrRUTAlreadyExists
	}
	return nil
}

func normalizeClientID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidClientID
	}
	return trimmed, nil
}

func normalizeRUT(raw string) (string, error) {
	normalized, err := rut.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRUT, raw)
	}
	return normalized, nil
}

func normalizeNames(first, last string) (string, string, error) {
	first = strings.TrimSpace(first)
	if first == "" {
		return "", "", ErrInvalidFirstName
	}
	last = strings.TrimSpace(last)
	if last == "" {
		return "", "", ErrInvalidLastName
	}
	return first, last, nil
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeDate は契約日を暦日 (UTC 0 時) に揃えた複製を返します。
func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}

func validateContractPeriod(start, end *time.Time) error {
	if start == nil || end == nil {
		return nil
	}
	if end.Before(*start) {
		return ErrInvalidContractPeriod
	}
	return nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}
