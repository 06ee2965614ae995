// Package apperr defines the error taxonomy surfaced by the storefront core.
//
// Every condition a page can recover from (validation, not found, duplicate
// promotion, empty cart, login and role checks) and the one it cannot hide
// (storage failure) is an *Error carrying a Code. Callers branch with the Is*
// helpers or errors.Is against the sentinel values; both see through wrapping.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes an application error.
type Code string

const (
	// CodeValidation indicates malformed intake fields.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeNotFound indicates an operation on a missing identifier.
	CodeNotFound Code = "NOT_FOUND"

	// CodeAlreadyPromoted indicates a warehouse product is already listed in the store.
	CodeAlreadyPromoted Code = "ALREADY_PROMOTED"

	// CodeEmptyCart indicates checkout was attempted with no cart lines.
	CodeEmptyCart Code = "EMPTY_CART"

	// CodeStorageUnavailable indicates the persistence medium rejected a read or write.
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// CodeNotLoggedIn indicates an operation that needs a session ran without one.
	CodeNotLoggedIn Code = "NOT_LOGGED_IN"

	// CodeRoleMismatch indicates the session role does not allow the operation.
	CodeRoleMismatch Code = "ROLE_MISMATCH"
)

// Error is a categorized application error.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is the user-facing description.
	Message string

	// Fields lists offending input fields (validation errors only).
	Fields []string

	// Err is the underlying cause, if any.
	Err error
}

// Sentinel values for errors.Is. Only the Code is compared.
var (
	ErrValidation         = &Error{Code: CodeValidation}
	ErrNotFound           = &Error{Code: CodeNotFound}
	ErrAlreadyPromoted    = &Error{Code: CodeAlreadyPromoted}
	ErrEmptyCart          = &Error{Code: CodeEmptyCart}
	ErrStorageUnavailable = &Error{Code: CodeStorageUnavailable}
	ErrNotLoggedIn        = &Error{Code: CodeNotLoggedIn}
	ErrRoleMismatch       = &Error{Code: CodeRoleMismatch}
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " (fields=%s)", strings.Join(e.Fields, ","))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Validation builds a validation error listing the offending fields.
func Validation(message string, fields ...string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// NotFound builds a not-found error.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// AlreadyPromoted builds a duplicate-promotion error.
func AlreadyPromoted(message string) *Error {
	return &Error{Code: CodeAlreadyPromoted, Message: message}
}

// EmptyCart builds an empty-cart error.
func EmptyCart() *Error {
	return &Error{Code: CodeEmptyCart, Message: "Your cart is empty!"}
}

// StorageUnavailable wraps a medium failure.
func StorageUnavailable(op string, err error) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: op, Err: err}
}

// NotLoggedIn builds a missing-session error.
func NotLoggedIn() *Error {
	return &Error{Code: CodeNotLoggedIn, Message: "Please login to continue"}
}

// RoleMismatch builds a role check failure.
func RoleMismatch(have string, want ...string) *Error {
	return &Error{
		Code:    CodeRoleMismatch,
		Message: fmt.Sprintf("role %q cannot do this (needs %s)", have, strings.Join(want, " or ")),
	}
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FieldsOf returns the offending fields of a validation error, or nil.
func FieldsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) && e.Code == CodeValidation {
		return e.Fields
	}
	return nil
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == CodeValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsAlreadyPromoted reports whether err is a duplicate-promotion error.
func IsAlreadyPromoted(err error) bool { return CodeOf(err) == CodeAlreadyPromoted }

// IsEmptyCart reports whether err is an empty-cart error.
func IsEmptyCart(err error) bool { return CodeOf(err) == CodeEmptyCart }

// IsStorageUnavailable reports whether err is a storage failure.
func IsStorageUnavailable(err error) bool { return CodeOf(err) == CodeStorageUnavailable }

// Recoverable reports whether the page should show err as a message and carry on.
// Storage failures and unknown errors are not recoverable; they propagate.
func Recoverable(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodeNotFound, CodeAlreadyPromoted, CodeEmptyCart, CodeNotLoggedIn, CodeRoleMismatch:
		return true
	default:
		return false
	}
}

// UserMessage returns the text a page shows for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code == CodeStorageUnavailable {
			return "Your changes could not be saved. Storage is unavailable."
		}
		if e.Message != "" {
			return e.Message
		}
		return string(e.Code)
	}
	return err.Error()
}
