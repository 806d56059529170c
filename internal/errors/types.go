package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// 知识库错误
	ErrCodeIndexNotFound    ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeIndexCorrupted   ErrorCode = "INDEX_CORRUPTED"
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	ErrCodeEmbeddingFailed  ErrorCode = "EMBEDDING_FAILED"

	// 生成后端错误
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendCallFailed  ErrorCode = "BACKEND_CALL_FAILED"

	// 外部服务错误
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
)

// ErrorType 错误类型
type ErrorType int

const (
	ErrorTypeSystem ErrorType = iota
	ErrorTypeBusiness
	ErrorTypeValidation
	ErrorTypeExternal
)

// AppError 应用错误结构体
type AppError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Type    ErrorType   `json:"type"`
	Details interface{} `json:"details,omitempty"`
	Cause   error       `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加错误详情
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// 错误构造函数

// NewSystemError 创建系统错误
func NewSystemError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Type:    ErrorTypeSystem,
	}
}

// NewBusinessError 创建业务错误
func NewBusinessError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Type:    ErrorTypeBusiness,
	}
}

// NewValidationError 创建验证错误
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: message,
		Type:    ErrorTypeValidation,
	}
}

// NewExternalError 创建外部服务错误
func NewExternalError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Type:    ErrorTypeExternal,
	}
}

// NewIndexNotFoundError 创建索引不存在错误
func NewIndexNotFoundError(userID string) *AppError {
	return &AppError{
		Code:    ErrCodeIndexNotFound,
		Message: fmt.Sprintf("no knowledge index found for user %s", userID),
		Type:    ErrorTypeBusiness,
	}
}

// NewBackendUnavailableError 创建生成后端不可用错误
func NewBackendUnavailableError() *AppError {
	return &AppError{
		Code:    ErrCodeBackendUnavailable,
		Message: "no generation backend available",
		Type:    ErrorTypeExternal,
	}
}

// NewBackendCallError 创建生成后端调用失败错误
func NewBackendCallError(backend string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeBackendCallFailed,
		Message: fmt.Sprintf("%s generation call failed", backend),
		Type:    ErrorTypeExternal,
		Cause:   cause,
	}
}

// IsAppError 检查是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 获取AppError，如果不是则包装为系统错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewSystemError(ErrCodeInternal, "internal error").WithCause(err)
}

// HasCode 检查错误链上是否存在指定错误码
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
