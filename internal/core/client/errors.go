package client

import "errors"

var (
	// ErrClientNotFound は顧客が存在しない場合に返却されます。
	ErrClientNotFound = errors.New("client: not found")
	// ErrRUTAlreadyExists は RUT 重複時に返却されます。
	ErrRUTAlreadyExists = errors.New("client: rut already exists")
	// ErrClientInUse は従業員や書類が紐づいている顧客を削除しようとした場合に返却されます。
	ErrClientInUse = errors.New("client: still referenced")

	ErrInvalidRUT       = errors.New("client: invalid rut")
	ErrInvalidName      = errors.New("client: invalid name")
	ErrInvalidEmail     = errors.New("client: invalid email")
	ErrInvalidStatus    = errors.New("client: invalid status")
	ErrInvalidID        = errors.New("client: invalid id")
	ErrInvalidPageSize  = errors.New("client: invalid page size")
	ErrInvalidPageToken = errors.New("client: invalid page token")
)
