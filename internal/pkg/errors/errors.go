package errors

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalid               = errors.New("invalid")
	ErrConflict              = errors.New("conflict")
	ErrTooMany               = errors.New("too many requests")
	ErrInternal              = errors.New("internal")
	ErrDuplicateDocument     = errors.New("duplicate document")
	ErrEmptyDocument         = errors.New("empty document")
	ErrEmptyExtraction       = errors.New("empty extraction")
	ErrInvalidQuestion       = errors.New("invalid question")
	ErrUnsupportedFile       = errors.New("unsupported file type")
	ErrCompletionUnavailable = errors.New("completion unavailable")
	ErrChunkingFailure       = errors.New("chunking failure")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateDocument)
}
