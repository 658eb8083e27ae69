package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes
const (
	CodeAppError            = "APP_ERROR"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeMalformedResponse   = "MALFORMED_PROVIDER_RESPONSE"
	CodeCacheUnavailable    = "CACHE_UNAVAILABLE"
	CodeValidation          = "VALIDATION_ERROR"
	CodeDatabase            = "DATABASE_ERROR"
	CodeQuotaExceeded       = "QUOTA_EXCEEDED"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// ProviderError reports an upstream content provider that could not be reached
// or answered with a non-success status.
type ProviderError struct {
	*AppError
	Provider string
}

func NewProviderError(message, provider string, cause error) *ProviderError {
	return &ProviderError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeProviderUnavailable,
			StatusCode: http.StatusServiceUnavailable,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider: provider,
	}
}

// MalformedResponseError reports generated text that could not be coerced into
// the expected record shape.
type MalformedResponseError struct {
	*AppError
	Provider string
}

func NewMalformedResponseError(message, provider string, cause error) *MalformedResponseError {
	return &MalformedResponseError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeMalformedResponse,
			StatusCode: http.StatusBadGateway,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider: provider,
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCacheUnavailable,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type StoreError struct {
	*AppError
	Operation string
}

func NewStoreError(message, operation string, cause error) *StoreError {
	return &StoreError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeDatabase,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
			},
			Cause: cause,
		},
		Operation: operation,
	}
}

// QuotaExceededError is returned when a metered upstream API has no budget left
// until ResetTime.
type QuotaExceededError struct {
	*AppError
	Used      int
	Limit     int
	Requested int
	ResetTime time.Time
}

func NewQuotaExceededError(provider string, used, limit, requested int, resetTime time.Time) *QuotaExceededError {
	return &QuotaExceededError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s quota exceeded: used %d/%d, requested %d", provider, used, limit, requested),
			Code:       CodeQuotaExceeded,
			StatusCode: http.StatusTooManyRequests,
			Context: map[string]any{
				"provider":  provider,
				"resetTime": resetTime,
			},
		},
		Used:      used,
		Limit:     limit,
		Requested: requested,
		ResetTime: resetTime,
	}
}

func IsProviderUnavailable(err error) bool {
	var target *ProviderError
	return stderrors.As(err, &target)
}

func IsMalformedResponse(err error) bool {
	var target *MalformedResponseError
	return stderrors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

func IsCacheUnavailable(err error) bool {
	var target *CacheError
	return stderrors.As(err, &target)
}

// HTTPStatus lets the wrapped error types expose their status through errors.As.
func (e *AppError) HTTPStatus() int {
	return e.StatusCode
}

// ErrorCode lets the wrapped error types expose their code through errors.As.
func (e *AppError) ErrorCode() string {
	return e.Code
}

// StatusCode returns the HTTP status attached to the first AppError in the chain,
// or 500 when none is present.
func StatusCode(err error) int {
	var coded interface{ HTTPStatus() int }
	if stderrors.As(err, &coded) && coded.HTTPStatus() != 0 {
		return coded.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Code returns the error code of the first AppError in the chain.
func Code(err error) string {
	var coded interface{ ErrorCode() string }
	if stderrors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return CodeAppError
}

// PublicMessage is the message without the wrapped cause.
func (e *AppError) PublicMessage() string {
	return e.Message
}

// Message returns the public message of the first AppError in the chain, or
// fallback when none is present.
func Message(err error, fallback string) string {
	var coded interface{ PublicMessage() string }
	if stderrors.As(err, &coded) && coded.PublicMessage() != "" {
		return coded.PublicMessage()
	}
	return fallback
}
