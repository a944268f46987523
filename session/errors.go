package session

import "errors"

var (
	ErrImportInProgress = errors.New("an import is already in progress")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrRecordNotFound   = errors.New("depletion not found")
	ErrAccountNotFound  = errors.New("no account matches this tax id and email")
	ErrNoAccount        = errors.New("validate an account first")
	ErrNothingToSubmit  = errors.New("there are no depletions to submit")
	ErrMissingFields    = errors.New("please fill in all required fields")
)

// FieldError reports an invalid value for one field of a manual entry or edit.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}
