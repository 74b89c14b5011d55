package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/page"
)

// MinPasswordLength はパスワードの最小文字数です。
const MinPasswordLength = 8

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo   Repository
	hasher PasswordHasher
	clock  Clock
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, in DeleteUserInput) error
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
	Authenticate(ctx context.Context, in AuthenticateInput) (*User, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, hasher PasswordHasher, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, hasher: hasher, clock: clock}
}

// CreateUserInput はユーザー作成時の入力です。
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     Role
	ClientID *string
}

// UpdateUserInput はユーザー更新時の入力です。
type UpdateUserInput struct {
	ID       string
	Name     *string
	Status   *Status
	Password *string
}

// DeleteUserInput はユーザー削除時の入力です。
type DeleteUserInput struct {
	ID string
}

// GetUserInput はユーザー取得時の入力です。
type GetUserInput struct {
	ID string
}

// ListUsersInput は一覧取得時の入力です。
type ListUsersInput struct {
	PageSize  int
	PageToken string
	Status    *Status
	Role      *Role
}

// ListUsersResult は一覧取得結果を表します。
type ListUsersResult struct {
	Users         []*User
	NextPageToken string
}

// AuthenticateInput はログイン時の入力です。
type AuthenticateInput struct {
	Email    string
	Password string
}

// CreateUser は新しいユーザーを作成します。パスワードはハッシュ化して保存されます。
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	role := in.Role
	if role == "" {
		role = RoleClient
	}
	clientID, err := normalizeRoleClient(role, in.ClientID)
	if err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailNotExists(ctx, email); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &User{
		Email:        email,
		Name:         name,
		Role:         role,
		ClientID:     clientID,
		Status:       StatusActive,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// UpdateUser はユーザー情報を更新します。
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		existing.Name = name
	}

	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		existing.Status = *in.Status
	}

	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		existing.PasswordHash = hash
	}

	existing.UpdatedAt = s.clock.Now()

	return s.repo.Update(ctx, existing)
}

// DeleteUser はユーザーを削除します。
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, in.ID)
}

// GetUser は ID でユーザーを取得します。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListUsers はユーザーの一覧を取得します。
func (s *Service) ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error) {
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
	if in.Role != nil && !isValidRole(*in.Role) {
		return nil, ErrInvalidRole
	}

	users, nextToken, err := s.repo.List(ctx, ListUsersFilter{
		Limit:  limit,
		Offset: offset,
		Status: in.Status,
		Role:   in.Role,
	})
	if err != nil {
		return nil, err
	}

	return &ListUsersResult{Users: users, NextPageToken: nextToken}, nil
}

// Authenticate はメールアドレスとパスワードを照合します。
// 未登録・無効化済み・パスワード不一致はすべて ErrInvalidCredentials になります。
func (s *Service) Authenticate(ctx context.Context, in AuthenticateInput) (*User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	found, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if found.Status != StatusActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(found.PasswordHash, in.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return found, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("user: hash password: %w", err)
	}
	return hash, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	found, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if found != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

// normalizeRoleClient は admin の ClientID を破棄し、client には必須とします。
func normalizeRoleClient(role Role, clientID *string) (*string, error) {
	if !isValidRole(role) {
		return nil, ErrInvalidRole
	}
	if role == RoleAdmin {
		return nil, nil
	}
	if clientID == nil || strings.TrimSpace(*clientID) == "" {
		return nil, ErrClientRequired
	}
	id := strings.TrimSpace(*clientID)
	return &id, nil
}

func isValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleClient:
		return true
	default:
		return false
	}
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}
