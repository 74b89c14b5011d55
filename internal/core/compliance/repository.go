package compliance

import (
	"context"
	"time"
)

// ContractLookup は契約終了日で労働契約を検索する抽象です。
// 日付はすべて暦日 (UTC 0 時) で渡されます。
type ContractLookup interface {
	// ExpiredContracts は end_date < today の契約を返します。
	ExpiredContracts(ctx context.Context, today time.Time) ([]ContractRecord, error)
	// ExpiringContracts は from <= end_date <= to の契約を返します。
	ExpiringContracts(ctx context.Context, from, to time.Time) ([]ContractRecord, error)
}

// Cache は世代と日付の組で評価済みの通知を保持するキャッシュです。
// Invalidate は世代を進め、それ以前の世代に保存されたすべての日付を無効にします。
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	GetNotifications(ctx context.Context, generation int64, day string) ([]Notification, bool, error)
	SetNotifications(ctx context.Context, generation int64, day string, notifications []Notification, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
