package worker

import "errors"

var (
	ErrInvalidID             = errors.New("worker: invalid id")
	ErrInvalidClientID       = errors.New("worker: invalid client id")
	ErrInvalidRUT            = errors.New("worker: invalid rut")
	ErrInvalidFirstName      = errors.New("worker: invalid first name")
	ErrInvalidLastName       = errors.New("worker: invalid last name")
	ErrInvalidStatus         = errors.New("worker: invalid status")
	ErrInvalidPageSize       = errors.New("worker: invalid page size")
	ErrInvalidPageToken      = errors.New("worker: invalid page token")
	ErrInvalidContractPeriod = errors.New("worker: contract end precedes start")
	ErrWorkerNotFound        = errors.New("worker: not found")
	ErrClientNotFound        = errors.New("worker: client not found")
	ErrRUTAlreadyExists      = errors.New("worker: rut already registered for client")
)
