package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for every business-rule failure the handlers need to
// tell apart. Anything else bubbling out of a service is treated as an
// internal storage failure and never shown to the caller verbatim.
var (
	ErrIssueNotFound    = errors.New("issue not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAdminNotFound    = errors.New("admin not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrRepostNotFound   = errors.New("repost not found")

	ErrAlreadyReposted = errors.New("you have already reposted this issue")
	ErrOwnIssue        = errors.New("you cannot repost your own issue")
	ErrNotIssueOwner   = errors.New("you can only view comments on your own issues")
)

// ValidationError marks malformed or out-of-range input detected before
// any storage call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is any of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrIssueNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAdminNotFound) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrRepostNotFound)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyReposted)
}

// IsForbidden reports whether err is a business-rule prohibition.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrOwnIssue) || errors.Is(err, ErrNotIssueOwner)
}
