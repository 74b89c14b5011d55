package document

import "errors"

var (
	ErrDocumentNotFound = errors.New("document: not found")
	ErrClientNotFound   = errors.New("document: client not found")
	ErrInvalidID        = errors.New("document: invalid id")
	ErrInvalidClientID  = errors.New("document: invalid client id")
	ErrInvalidCategory  = errors.New("document: invalid category")
	ErrInvalidPeriod    = errors.New("document: invalid period")
	ErrInvalidFileName  = errors.New("document: invalid file name")
	ErrEmptyFile        = errors.New("document: empty file")
	ErrFileTooLarge     = errors.New("document: file too large")
	ErrInvalidPageSize  = errors.New("document: invalid page size")
	ErrInvalidPageToken = errors.New("document: invalid page token")
)
