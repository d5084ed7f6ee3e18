package errors

import (
	"net/http"

	"courier/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Parcel-related errors
	ErrParcelNotFound = NewBaseError(
		http.StatusNotFound,
		"PARCEL_NOT_FOUND",
		"找不到該包裹",
		"",
	)

	ErrTrackingCodeConflict = NewBaseError(
		http.StatusConflict,
		"TRACKING_CODE_CONFLICT",
		"此追蹤碼已被使用",
		"",
	)

	ErrParcelCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"PARCEL_CREATION_FAILED",
		"建立包裹失敗",
		"",
	)

	ErrParcelUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"PARCEL_UPDATE_FAILED",
		"更新包裹失敗",
		"",
	)

	// Status transition errors
	ErrIllegalTransition = NewBaseError(
		http.StatusConflict,
		"ILLEGAL_TRANSITION",
		"不允許的狀態轉換",
		"",
	)

	ErrParcelTerminal = NewBaseError(
		http.StatusConflict,
		"PARCEL_TERMINAL",
		"包裹已處於最終狀態",
		"",
	)

	ErrAgentRequired = NewBaseError(
		http.StatusBadRequest,
		"AGENT_REQUIRED",
		"此操作需要指定外送員",
		"",
	)

	ErrParcelNotReassignable = NewBaseError(
		http.StatusConflict,
		"PARCEL_NOT_REASSIGNABLE",
		"包裹目前無法重新指派",
		"",
	)

	// Delivery OTP errors
	ErrOtpNotAvailable = NewBaseError(
		http.StatusConflict,
		"OTP_NOT_AVAILABLE",
		"包裹尚未進入可配送確認的狀態",
		"",
	)

	ErrNoPendingOtp = NewBaseError(
		http.StatusConflict,
		"NO_PENDING_OTP",
		"目前沒有待驗證的配送驗證碼",
		"",
	)

	ErrOtpExpired = NewBaseError(
		http.StatusGone,
		"OTP_EXPIRED",
		"配送驗證碼已過期",
		"",
	)

	ErrOtpMismatch = NewBaseError(
		http.StatusUnauthorized,
		"OTP_MISMATCH",
		"配送驗證碼錯誤",
		"",
	)

	ErrOtpAttemptsExhausted = NewBaseError(
		http.StatusTooManyRequests,
		"OTP_ATTEMPTS_EXHAUSTED",
		"驗證碼嘗試次數已用盡",
		"",
	)

	// Location-related errors
	ErrInvalidCoordinates = NewBaseError(
		http.StatusBadRequest,
		"INVALID_COORDINATES",
		"無效的座標",
		"",
	)

	ErrStaleLocationSample = NewBaseError(
		http.StatusConflict,
		"STALE_LOCATION_SAMPLE",
		"位置資料早於既有紀錄",
		"",
	)

	ErrAgentLocationUnknown = NewBaseError(
		http.StatusNotFound,
		"AGENT_LOCATION_UNKNOWN",
		"查無該外送員的位置",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"輸入資料驗證失敗",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"系統內部錯誤",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"存取被拒絕",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"找不到該資源",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"資源衝突",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "資料庫執行失敗"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
