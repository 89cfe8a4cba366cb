package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError = "INTERNAL_ERROR" // 500
)

// 快取錯誤
var (
	ErrCacheFull = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheMiss = NewError("CACHE_MISS", "緩存未命中", http.StatusNotFound, nil)
)

// FailureReason 推薦層級失敗分類
type FailureReason string

const (
	FailureConfiguration     FailureReason = "CONFIGURATION_ERROR"
	FailureNetwork           FailureReason = "NETWORK_ERROR"
	FailureRateLimited       FailureReason = "RATE_LIMITED"
	FailureQuotaExceeded     FailureReason = "QUOTA_EXCEEDED"
	FailureInvalidCredential FailureReason = "INVALID_CREDENTIAL"
	FailureUpstream          FailureReason = "UPSTREAM_ERROR"
	FailureParse             FailureReason = "PARSE_ERROR"
	FailureEmptyResult       FailureReason = "EMPTY_RESULT"
)

// IsUpstream 是否為外部生成服務造成的失敗
func (r FailureReason) IsUpstream() bool {
	switch r {
	case FailureNetwork, FailureRateLimited, FailureQuotaExceeded,
		FailureInvalidCredential, FailureUpstream, FailureParse:
		return true
	}
	return false
}

// UserMessage 給呼叫端顯示的失敗說明
func (r FailureReason) UserMessage(focus string) string {
	switch r {
	case FailureConfiguration:
		return "AI recipe suggestions are not configured. Set a valid API key to enable them."
	case FailureQuotaExceeded:
		return "The AI service quota has been exceeded. Check the billing details of the API account and try again later."
	case FailureInvalidCredential:
		return "The AI service rejected the API key. Update the configured credential."
	case FailureRateLimited:
		return "The AI service is receiving too many requests. Wait a moment and try again."
	case FailureNetwork:
		return "The AI service could not be reached. Check the network connection and try again."
	case FailureParse:
		return "The AI service returned a response that could not be read. Try again."
	case FailureUpstream:
		return "The AI service returned an error. Try again later."
	}
	if focus != "" {
		return fmt.Sprintf("No dishes containing %q were found. Try a different ingredient.", focus)
	}
	return "No recipe suggestions were found. Add more ingredients and try again."
}

// TierError 單一推薦層級的失敗結果
type TierError struct {
	Tier   SourceTier
	Reason FailureReason
	Status int
	Err    error
}

func (e *TierError) Error() string {
	msg := fmt.Sprintf("%s tier: %s", e.Tier, e.Reason)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TierError) Unwrap() error {
	return e.Err
}

// NewTierError 創建層級錯誤
func NewTierError(tier SourceTier, reason FailureReason, status int, err error) *TierError {
	return &TierError{
		Tier:   tier,
		Reason: reason,
		Status: status,
		Err:    err,
	}
}

// ReasonOf 取出錯誤的失敗分類，無法辨識時視為外部錯誤
func ReasonOf(err error) FailureReason {
	if err == nil {
		return ""
	}
	var te *TierError
	if errors.As(err, &te) {
		return te.Reason
	}
	return FailureUpstream
}
