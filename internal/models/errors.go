package models

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned when the referenced template id does
	// not exist (or was deleted by another session).
	ErrTemplateNotFound = errors.New("template not found")

	// ErrElementNotFound is returned when the referenced element uuid does
	// not exist under the given template.
	ErrElementNotFound = errors.New("element not found")
)

// ValidationError reports an out-of-domain input value, such as an unknown
// canvas size or element kind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) || errors.Is(err, ErrElementNotFound)
}
