package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrDuplicateSlot
	ErrSlotOccupied
	ErrAlreadyBooked
	ErrNeedsManualDate
)

// StatusCode maps an error code to its HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrNeedsManualDate:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrDuplicateSlot, ErrSlotOccupied, ErrAlreadyBooked:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func DuplicateSlot(date, tm string) *AppError {
	return &AppError{
		Code:    ErrDuplicateSlot,
		Message: fmt.Sprintf("slot %s %s already exists", date, tm),
	}
}

func SlotOccupied(id int64) *AppError {
	return &AppError{
		Code:    ErrSlotOccupied,
		Message: fmt.Sprintf("slot %d is already booked", id),
	}
}

func AlreadyBooked() *AppError {
	return &AppError{
		Code:    ErrAlreadyBooked,
		Message: "client already has an active booking",
	}
}

func NeedsManualDate(bookingID int64) *AppError {
	return &AppError{
		Code:    ErrNeedsManualDate,
		Message: fmt.Sprintf("could not auto-detect date for booking %d, enter manually", bookingID),
	}
}

// Is reports whether err carries the given application error code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
