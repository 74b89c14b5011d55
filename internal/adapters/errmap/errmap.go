// Package errmap はドメインエラーをトランスポート共通の分類に変換します。
package errmap

import (
	"errors"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/client"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/document"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/rut"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/user"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/worker"
)

// Class はエラーの分類です。
type Class int

const (
	Internal Class = iota
	InvalidArgument
	NotFound
	Conflict
	Unauthenticated
	TooLarge
)

var invalid = []error{
	rut.ErrInvalid,
	client.ErrInvalidRUT,
	client.ErrInvalidName,
	client.ErrInvalidEmail,
	client.ErrInvalidStatus,
	client.ErrInvalidID,
	client.ErrInvalidPageSize,
	client.ErrInvalidPageToken,
	worker.ErrInvalidID,
	worker.ErrInvalidClientID,
	worker.ErrInvalidRUT,
	worker.ErrInvalidFirstName,
	worker.ErrInvalidLastName,
	worker.ErrInvalidStatus,
	worker.ErrInvalidPageSize,
	worker.ErrInvalidPageToken,
	worker.ErrInvalidContractPeriod,
	user.ErrInvalidEmail,
	user.ErrInvalidName,
	user.ErrInvalidRole,
	user.ErrInvalidStatus,
	user.ErrInvalidID,
	user.ErrInvalidPageSize,
	user.ErrInvalidPageToken,
	user.ErrClientRequired,
	user.ErrWeakPassword,
	document.ErrInvalidID,
	document.ErrInvalidClientID,
	document.ErrInvalidCategory,
	document.ErrInvalidPeriod,
	document.ErrInvalidFileName,
	document.ErrInvalidPageSize,
	document.ErrInvalidPageToken,
	document.ErrEmptyFile,
}

var notFound = []error{
	client.ErrClientNotFound,
	worker.ErrWorkerNotFound,
	worker.ErrClientNotFound,
	user.ErrUserNotFound,
	user.ErrClientNotFound,
	document.ErrDocumentNotFound,
	document.ErrClientNotFound,
}

var conflict = []error{
	client.ErrRUTAlreadyExists,
	client.ErrClientInUse,
	worker.ErrRUTAlreadyExists,
	user.ErrEmailAlreadyExists,
}

// Classify はエラーを分類します。未知のエラーは Internal です。
func Classify(err error) Class {
	switch {
	case err == nil:
		return Internal
	case isAny(err, invalid):
		return InvalidArgument
	case isAny(err, notFound):
		return NotFound
	case isAny(err, conflict):
		return Conflict
	case errors.Is(err, user.ErrInvalidCredentials):
		return Unauthenticated
	case errors.Is(err, document.ErrFileTooLarge):
		return TooLarge
	default:
		return Internal
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
