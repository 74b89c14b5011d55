package user

import "errors"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("user: not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("user: email already exists")
	// ErrInvalidCredentials は認証に失敗した場合に返却されます。存在しないユーザーと区別しません。
	ErrInvalidCredentials = errors.New("user: invalid credentials")
	// ErrClientRequired は client ロールに顧客が指定されていない場合に返却されます。
	ErrClientRequired = errors.New("user: client id required for client role")
	// ErrClientNotFound は指定された顧客が存在しない場合に返却されます。
	ErrClientNotFound = errors.New("user: client not found")
	// ErrWeakPassword はパスワードが短すぎる場合に返却されます。
	ErrWeakPassword = errors.New("user: password too short")

	ErrInvalidEmail     = errors.New("user: invalid email")
	ErrInvalidName      = errors.New("user: invalid name")
	ErrInvalidRole      = errors.New("user: invalid role")
	ErrInvalidStatus    = errors.New("user: invalid status")
	ErrInvalidID        = errors.New("user: invalid id")
	ErrInvalidPageSize  = errors.New("user: invalid page size")
	ErrInvalidPageToken = errors.New("user: invalid page token")
)
