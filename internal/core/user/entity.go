package user

import "time"

// Status はユーザーの状態を表します。
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Role はポータル上の権限です。
type Role string

const (
	// RoleAdmin は事務所側の担当者です。
	RoleAdmin Role = "admin"
	// RoleClient は顧客企業側の利用者で、ClientID が必須です。
	RoleClient Role = "client"
)

// User はポータルのユーザーエンティティです。PasswordHash はハッシュ済みの値のみを保持します。
type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	ClientID     *string
	Status       Status
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin は管理者権限を持つかどうかを返します。
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
