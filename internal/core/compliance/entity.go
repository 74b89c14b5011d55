package compliance

import (
	"fmt"
	"time"
)

// Kind は通知の種別を表します。値は閉じた列挙です。
type Kind string

const (
	KindContributionDeclaration Kind = "contribution_declaration"
	KindContributionPayment     Kind = "contribution_payment"
	KindF29NonElectronic        Kind = "f29_non_electronic"
	KindF29Electronic           Kind = "f29_electronic"
	KindF29NoMovement           Kind = "f29_no_movement"
	KindAnnualAffidavits        Kind = "annual_affidavits"
	KindAnnualIncomeAffidavits  Kind = "annual_income_affidavits"
	KindContractExpired         Kind = "contract_expired"
	KindContractExpiring        Kind = "contract_expiring"
)

// Category は通知種別の大分類です。
type Category string

const (
	CategoryTaxFiling Category = "tax_filing"
	CategoryContract  Category = "contract"
)

// Valid は既知の種別かどうかを返します。
func (k Kind) Valid() bool {
	switch k {
	case KindContributionDeclaration,
		KindContributionPayment,
		KindF29NonElectronic,
		KindF29Electronic,
		KindF29NoMovement,
		KindAnnualAffidavits,
		KindAnnualIncomeAffidavits,
		KindContractExpired,
		KindContractExpiring:
		return true
	default:
		return false
	}
}

// Category は種別の大分類を返します。未知の種別の場合は空文字列です。
func (k Kind) Category() Category {
	switch k {
	case KindContributionDeclaration,
		KindContributionPayment,
		KindF29NonElectronic,
		KindF29Electronic,
		KindF29NoMovement,
		KindAnnualAffidavits,
		KindAnnualIncomeAffidavits:
		return CategoryTaxFiling
	case KindContractExpired, KindContractExpiring:
		return CategoryContract
	default:
		return ""
	}
}

// Priority は通知の優先度です。値が小さいほど優先されます。
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

// String は優先度の文字列表現を返します。
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority は文字列表現から優先度を復元します。
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return 0, fmt.Errorf("compliance: unknown priority %q", s)
	}
}

// Notification は評価時に導出される通知です。永続化はされません。
type Notification struct {
	Kind     Kind      `json:"kind"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Date     time.Time `json:"date"`
	Priority Priority  `json:"priority"`
}

// ContractRecord は労働契約の期間情報です。EndDate が nil の場合は期間の定めのない契約です。
type ContractRecord struct {
	WorkerID   string
	WorkerName string
	ClientID   string
	ClientName string
	EndDate    *time.Time
}
