package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid signature")

	ErrRegistryNotFound = errors.New("swap registry not found")
	ErrFactoryNotFound  = errors.New("swap factory not found")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrOfferCancelled   = errors.New("offer cancelled")
	ErrOfferCompleted   = errors.New("offer completed")
	ErrOnlyMaker        = errors.New("only maker")
	ErrNotMakerOrTaker  = errors.New("not maker or taker")
	ErrExpired          = errors.New("swap expired")
	ErrTransferFailed   = errors.New("transfer failed")
	ErrNotOwner         = errors.New("caller is not the owner")
	ErrStateConflict    = errors.New("offer state changed concurrently")
	ErrUpstream         = errors.New("upstream rpc failure")
)

// Stable machine-readable codes returned to API clients.
const (
	CodeNotFound        = "NotFound"
	CodeInvalidInput    = "InvalidInput"
	CodeUnauthorized    = "Unauthorized"
	CodeOfferCancelled  = "OfferCancelled"
	CodeOfferCompleted  = "OfferCompleted"
	CodeOnlyMaker       = "OnlyMaker"
	CodeNotMakerOrTaker = "NotMakerOrTaker"
	CodeExpired         = "Expired"
	CodeTransferFailed  = "TransferFailed"
	CodeNotOwner        = "NotOwner"
	CodeUpstream        = "UpstreamError"
	CodeInternal        = "InternalError"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// Upstream wraps a failed JSON-RPC call.
func Upstream(err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeUpstream, "rpc call failed", errors.Join(ErrUpstream, err))
}

// Swap lifecycle failures. Each wraps its sentinel so callers can use errors.Is.

func RegistryNotFound() *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, "swap registry not found", ErrRegistryNotFound)
}

func FactoryNotFound() *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, "swap factory not found", ErrFactoryNotFound)
}

func OfferNotFound() *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, "offer not found", ErrOfferNotFound)
}

func OfferCancelled() *AppError {
	return NewAppError(http.StatusConflict, CodeOfferCancelled, "offer was cancelled", ErrOfferCancelled)
}

func OfferCompleted() *AppError {
	return NewAppError(http.StatusConflict, CodeOfferCompleted, "offer was already completed", ErrOfferCompleted)
}

func OnlyMaker() *AppError {
	return NewAppError(http.StatusForbidden, CodeOnlyMaker, "only the maker can cancel this offer", ErrOnlyMaker)
}

func NotMakerOrTaker() *AppError {
	return NewAppError(http.StatusForbidden, CodeNotMakerOrTaker, "caller is neither the maker nor the taker asset owner", ErrNotMakerOrTaker)
}

func Expired() *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeExpired, "swap registry has expired", ErrExpired)
}

func NotOwner() *AppError {
	return NewAppError(http.StatusForbidden, CodeNotOwner, "caller is not the owner", ErrNotOwner)
}

// TransferFailed wraps the ledger failure that aborted a settlement.
func TransferFailed(cause error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeTransferFailed, "asset transfer failed", errors.Join(ErrTransferFailed, cause))
}

// CodeOf returns the API code carried by err, or CodeInternal.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
