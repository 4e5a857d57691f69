package flow

import (
	"errors"
	"fmt"
)

var (
	ErrConsentRequired     = errors.New("consent required")
	ErrComprehensionFailed = errors.New("comprehension check failed")
	ErrPageIncomplete      = errors.New("page has unanswered questions")
	ErrAtFirstPage         = errors.New("already at first page")
	ErrAtLastPage          = errors.New("already at last page")
)

// GateError blocks a single navigation step. Message is shown to the participant.
type GateError struct {
	Page    Page
	Message string
	Missing []string
	Err     error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("gate %s on page %d: %v", e.Page.Kind, e.Page.Index, e.Err)
}

func (e *GateError) Unwrap() error {
	return e.Err
}

func newGateError(page Page, err error, message string, missing ...string) *GateError {
	return &GateError{
		Page:    page,
		Message: message,
		Missing: missing,
		Err:     err,
	}
}

// IsGateError reports whether err blocked a navigation step.
func IsGateError(err error) bool {
	var ge *GateError
	return errors.As(err, &ge)
}
