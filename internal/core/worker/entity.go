package worker

import (
	"strings"
	"time"
)

// Status は従業員の在籍状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Worker は顧客企業に雇用される従業員と、その労働契約の期間です。
// ContractEnd が nil の場合は期間の定めのない契約です。
type Worker struct {
	ID            string
	ClientID      string
	RUT           string
	FirstName     string
	LastName      string
	Position      *string
	Status        Status
	ContractStart *time.Time
	ContractEnd   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Client        *ClientSnapshot
}

// FullName は氏名を連結して返します。
func (w *Worker) FullName() string {
	return strings.TrimSpace(w.FirstName + " " + w.LastName)
}

// ClientSnapshot は従業員に紐づく顧客企業のスナップショットです。
type ClientSnapshot struct {
	ID   string
	RUT  string
	Name string
}
