package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an error condition independent of HTTP status.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_UNAUTHENTICATED
	ErrorCode_PERMISSION_DENIED
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED
	ErrorCode_VOICE_NOT_CONFIGURED
	ErrorCode_VOICE_FETCH_FAILED
	ErrorCode_SYNC_FAILED
	ErrorCode_SYNC_IN_PROGRESS
	ErrorCode_BACKFILL_FAILED
	ErrorCode_STORAGE_NOT_CONFIGURED
	ErrorCode_TRANSCRIPTION_NOT_CONFIGURED
	ErrorCode_DB_OPERATION_FAILED
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                      "OK",
	ErrorCode_INTERNAL:                     "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:             "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:              "INVALID_PAYLOAD",
	ErrorCode_NOT_FOUND:                    "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:               "ALREADY_EXISTS",
	ErrorCode_UNAUTHENTICATED:              "UNAUTHENTICATED",
	ErrorCode_PERMISSION_DENIED:            "PERMISSION_DENIED",
	ErrorCode_AUTH_INVALID_TOKEN:           "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:           "AUTH_TOKEN_EXPIRED",
	ErrorCode_VOICE_NOT_CONFIGURED:         "VOICE_NOT_CONFIGURED",
	ErrorCode_VOICE_FETCH_FAILED:           "VOICE_FETCH_FAILED",
	ErrorCode_SYNC_FAILED:                  "SYNC_FAILED",
	ErrorCode_SYNC_IN_PROGRESS:             "SYNC_IN_PROGRESS",
	ErrorCode_BACKFILL_FAILED:              "BACKFILL_FAILED",
	ErrorCode_STORAGE_NOT_CONFIGURED:       "STORAGE_NOT_CONFIGURED",
	ErrorCode_TRANSCRIPTION_NOT_CONFIGURED: "TRANSCRIPTION_NOT_CONFIGURED",
	ErrorCode_DB_OPERATION_FAILED:          "DB_OPERATION_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_CODE_%d", int(c))
}

// AppError is the custom error type for the application.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements the error interface.
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// WithDetail adds a detail to the error.
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "User not authenticated",
	}
}

func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_INVALID_TOKEN,
		Message:  "Invalid or expired token",
	}
}

// Sync Errors

// ErrVoiceProviderNotConfigured distinguishes "nothing to sync" from
// "sync is broken": a missing API key is an operator problem, not a
// transient fetch failure.
func ErrVoiceProviderNotConfigured() AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_VOICE_NOT_CONFIGURED,
		Message:  "Voice provider is not configured",
	}
}

func ErrVoiceFetchFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_VOICE_FETCH_FAILED,
		Message:  "Failed to fetch calls from voice provider",
	}
}

func ErrSyncFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_SYNC_FAILED,
		Message:  "Sync failed",
	}
}

// ErrSyncInProgress is returned when another operator already holds the
// per-tenant job lock for the same batch operation.
func ErrSyncInProgress(job string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SYNC_IN_PROGRESS,
		Message:  "A run of this job is already in progress",
	}.WithDetail("job", job)
}

// Backfill Errors

func ErrBackfillFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_BACKFILL_FAILED,
		Message:  "Backfill failed",
	}
}

func ErrStorageNotConfigured() AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_STORAGE_NOT_CONFIGURED,
		Message:  "Recording storage is not configured",
	}
}

func ErrTranscriptionNotConfigured() AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_TRANSCRIPTION_NOT_CONFIGURED,
		Message:  "Transcription service is not configured",
	}
}

func ErrDBOperationFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_OPERATION_FAILED,
		Message:  "Database operation failed",
	}
}
