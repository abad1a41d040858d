// Package reviewerr provides the coded error type shared by the review engine.
package reviewerr

import (
	"errors"
	"fmt"
)

// Code identifies a class of review error.
type Code string

const (
	// User input rejected
	EmptyComment     Code = "REVIEW_EMPTY_COMMENT"     // Comment text empty after shorthand stripping
	AttachmentSize   Code = "REVIEW_ATTACHMENT_SIZE"   // Reference file over the size limit
	RegionPending    Code = "REVIEW_REGION_PENDING"    // Second region group on video
	ComparisonActive Code = "REVIEW_COMPARISON_ACTIVE" // Submission while comparing
	InvalidInput     Code = "REVIEW_INVALID_INPUT"     // Malformed input (patch, date, expression)

	// Stale or no-op mutations
	ReadOnly        Code = "REVIEW_READ_ONLY"        // Mutation on a non-latest version
	NotFound        Code = "REVIEW_NOT_FOUND"        // Unknown annotation id
	CaptureDisabled Code = "REVIEW_CAPTURE_DISABLED" // Pointer capture while disabled
	IndexRange      Code = "REVIEW_INDEX_RANGE"      // Version index out of range
	SelfComparison  Code = "REVIEW_SELF_COMPARISON"  // Comparison target equals active version

	// External collaborator failures
	Thumbnail Code = "REVIEW_THUMBNAIL" // Thumbnail generation failed
	Seed      Code = "REVIEW_SEED"      // Seed fixture rejected
)

// Class groups codes by how callers surface them.
type Class int

const (
	Rejected Class = iota // shown to the user, state unchanged
	Noop                  // silently ignored
	External              // logged, never fatal
)

// Error is a coded review error.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that wraps an underlying cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Class reports how the error should be surfaced.
func (e *Error) Class() Class {
	return classForCode(e.Code)
}

// CodeOf returns the code carried by err, or "" when err is not coded.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsUserFacing reports whether err should be shown to the user.
func IsUserFacing(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Class() == Rejected
}

// IsNoop reports whether err is a silently ignored mutation.
func IsNoop(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Class() == Noop
}

func classForCode(code Code) Class {
	switch code {
	case EmptyComment, AttachmentSize, RegionPending, ComparisonActive, InvalidInput:
		return Rejected
	case ReadOnly, NotFound, CaptureDisabled, IndexRange, SelfComparison:
		return Noop
	case Thumbnail, Seed:
		return External
	default:
		return External
	}
}
