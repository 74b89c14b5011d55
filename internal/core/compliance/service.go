package compliance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

const (
	// DefaultTimezone は通知の暦日を決めるタイムゾーンです。
	DefaultTimezone = "America/Santiago"
	dayLayout       = "2006-01-02"
)

// UseCase は通知ユースケースの公開インターフェースです。
type UseCase interface {
	Notifications(ctx context.Context) ([]Notification, error)
	NotificationsAt(ctx context.Context, now time.Time) ([]Notification, error)
	Invalidate(ctx context.Context) error
}

// Service は契約検索と通知評価をまとめます。
type Service struct {
	lookup        ContractLookup
	clock         Clock
	location      *time.Location
	lookAheadDays int
	cache         Cache
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithLookAhead は期限間近とみなす日数を設定します。0 以下は無視されます。
func WithLookAhead(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.lookAheadDays = days
		}
	}
}

// WithLocation は暦日の判定に使うタイムゾーンを設定します。
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithCache は評価結果のキャッシュを設定します。
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
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
func NewService(lookup ContractLookup, clock Clock, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	s := &Service{
		lookup:        lookup,
		clock:         clock,
		location:      defaultLocation(),
		lookAheadDays: DefaultLookAheadDays,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notifications は現在時刻に対する通知一覧を返します。
func (s *Service) Notifications(ctx context.Context) ([]Notification, error) {
	return s.NotificationsAt(ctx, s.clock.Now())
}

// NotificationsAt は指定日時に対する通知一覧を返します。
func (s *Service) NotificationsAt(ctx context.Context, now time.Time) ([]Notification, error) {
	now = now.In(s.location)
	today := civilDate(now)
	day := today.Format(dayLayout)

	// 評価前に世代を読むことで、評価中の変更が古い結果として新しい世代に残らない。
	generation, cacheable := s.generation(ctx)
	if cacheable {
		if cached, ok := s.cached(ctx, generation, day); ok {
			return cached, nil
		}
	}

	var expired, expiring []ContractRecord
	if s.lookup != nil {
		var err error
		expired, err = s.lookup.ExpiredContracts(ctx, today)
		if err != nil {
			return nil, fmt.Errorf("compliance: expired contracts: %w", err)
		}

		expiring, err = s.lookup.ExpiringContracts(ctx, today, today.AddDate(0, 0, s.lookAheadDays))
		if err != nil {
			return nil, fmt.Errorf("compliance: expiring contracts: %w", err)
		}
	}

	notifications := Evaluate(now, expired, expiring)

	s.logger.Debug("notifications evaluated",
		zap.String("day", day),
		zap.Int("expired", len(expired)),
		zap.Int("expiring", len(expiring)),
		zap.Int("notifications", len(notifications)),
	)

	if cacheable {
		if err := s.cache.SetNotifications(ctx, generation, day, notifications, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache notifications", zap.String("day", day), zap.Error(err))
		}
	}

	return notifications, nil
}

// Invalidate はキャッシュ済みの通知をすべての日付について破棄します。
// 顧客名や契約期間など、通知の内容に影響する変更の後に呼び出します。
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("compliance: invalidate: %w", err)
	}
	return nil
}

func (s *Service) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	generation, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("failed to read cache generation", zap.Error(err))
		return 0, false
	}
	return generation, true
}

func (s *Service) cached(ctx context.Context, generation int64, day string) ([]Notification, bool) {
	notifications, ok, err := s.cache.GetNotifications(ctx, generation, day)
	if err != nil {
		s.logger.Warn("failed to read cached notifications", zap.String("day", day), zap.Error(err))
		return nil, false
	}
	return notifications, ok
}

// LoadLocation はタイムゾーン名を解決します。空文字列の場合は DefaultTimezone を使います。
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("compliance: load location %q: %w", name, err)
	}
	return loc, nil
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
