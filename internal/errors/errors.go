package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a Nutri error code.
type ErrorCode string

const (
	ErrNoQuantity     ErrorCode = "NO_QUANTITY"     // 422, parse
	ErrEmptyFood      ErrorCode = "EMPTY_FOOD"      // 422, parse
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404, resolve
	ErrAmbiguous      ErrorCode = "AMBIGUOUS"       // 409, resolve
	ErrEmptyLedger    ErrorCode = "EMPTY_LEDGER"    // 409, undo
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// NutriError represents a structured error with code, status, and details.
type NutriError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *NutriError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNoQuantity creates a 422 error for text without a leading (or trailing) number.
func NewNoQuantity(text string) *NutriError {
	return &NutriError{
		Code:    ErrNoQuantity,
		Status:  422,
		Message: fmt.Sprintf("no quantity found in %q", text),
		Details: map[string]any{"text": text},
	}
}

// NewEmptyFood creates a 422 error when a quantity is not followed by a food name.
func NewEmptyFood(text string) *NutriError {
	return &NutriError{
		Code:    ErrEmptyFood,
		Status:  422,
		Message: fmt.Sprintf("no food name after quantity in %q", text),
		Details: map[string]any{"text": text},
	}
}

// NewNotFound creates a 404 error for when no catalog food matches a token.
func NewNotFound(token string) *NutriError {
	return &NutriError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("food not found: %s", token),
		Details: map[string]any{"token": token},
	}
}

// NewAmbiguous creates a 409 error when several foods tie after the tie-break.
func NewAmbiguous(token string, candidates []string) *NutriError {
	return &NutriError{
		Code:    ErrAmbiguous,
		Status:  409,
		Message: fmt.Sprintf("%q matches several foods: %s", token, strings.Join(candidates, ", ")),
		Details: map[string]any{"token": token, "candidates": candidates},
	}
}

// NewEmptyLedger creates a 409 error for undo on a day without entries.
func NewEmptyLedger() *NutriError {
	return &NutriError{
		Code:    ErrEmptyLedger,
		Status:  409,
		Message: "no entry to undo today",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *NutriError {
	return &NutriError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *NutriError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &NutriError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a NutriError with the given code.
// Wrapped errors are unwrapped.
func Is(err error, code ErrorCode) bool {
	if nErr, ok := As(err); ok {
		return nErr.Code == code
	}
	return false
}

// As finds the first NutriError in err's chain.
func As(err error) (*NutriError, bool) {
	var nErr *NutriError
	if stderrors.As(err, &nErr) {
		return nErr, true
	}
	return nil, false
}
