package errors

import (
	"fmt"
	"net/http"
)

// Machine-readable denial reason codes surfaced verbatim to the caller so the
// UI can explain exactly which limit was hit.
const (
	ReasonFileNotEligible           = "file_not_eligible"
	ReasonLifetimeBandwidthExceeded = "lifetime_bandwidth_exceeded"
	ReasonLifetimeFileCountExceeded = "lifetime_file_count_exceeded"
	ReasonDailyBandwidthExceeded    = "daily_bandwidth_exceeded"
	ReasonDailyFileCountExceeded    = "daily_file_count_exceeded"
	ReasonDeviceLimitExceeded       = "device_limit_exceeded"
	ReasonTokenNotFound             = "token_not_found"
	ReasonTokenExpired              = "token_expired"
	ReasonTokenOwnerMismatch        = "token_owner_mismatch"
	ReasonNoActiveSubscription      = "no_active_subscription"
)

// NewQuotaExceededError builds a forbidden error carrying one of the four
// quota reason codes.
func NewQuotaExceededError(reason, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Reason:  reason,
		Message: message,
		Code:    http.StatusForbidden,
	}
}

// NewDeviceLimitExceededError signals the trusted-device list is at capacity.
func NewDeviceLimitExceededError(limit int) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Reason:  ReasonDeviceLimitExceeded,
		Message: "trusted device limit reached for this subscription",
		Code:    http.StatusForbidden,
		Details: fmt.Sprintf("limit: %d devices", limit),
	}
}

// NewTokenNotFoundError signals a token that was never issued.
func NewTokenNotFoundError() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Reason:  ReasonTokenNotFound,
		Message: "download token not found",
		Code:    http.StatusNotFound,
	}
}

// NewTokenExpiredError signals a download token past its expiry.
func NewTokenExpiredError() *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Reason:  ReasonTokenExpired,
		Message: "download token has expired",
		Code:    http.StatusGone,
	}
}

// NewTokenOwnerMismatchError signals a token redeemed by a user other than the
// one it was issued to. Tokens are not transferable.
func NewTokenOwnerMismatchError() *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Reason:  ReasonTokenOwnerMismatch,
		Message: "download token does not belong to this user",
		Code:    http.StatusForbidden,
	}
}

// IsQuotaExceededError reports whether err carries one of the quota reasons.
func IsQuotaExceededError(err error) bool {
	appErr := GetAppError(err)
	if appErr == nil {
		return false
	}
	switch appErr.Reason {
	case ReasonLifetimeBandwidthExceeded, ReasonLifetimeFileCountExceeded,
		ReasonDailyBandwidthExceeded, ReasonDailyFileCountExceeded:
		return true
	}
	return false
}
