package exceptions

import (
	"errors"
	"fmt"
	"mediconnect-service/internal/pkg/constvars"
)

// Provider failure taxonomy. Each provider call resolves to exactly one
// of these; callers branch with the Is* helpers instead of string
// matching.
var (
	ErrProviderAuthExpired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientCalendarAuthExpired, constvars.ErrDevProviderAuthExpired)
	}
	ErrProviderRateLimited = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusTooManyRequests, constvars.ErrClientCalendarRateLimited, constvars.ErrDevProviderRateLimited)
	}
	ErrProviderTransport = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevProviderTransport)
	}
	ErrProviderBadStatus = func(err error, status int) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevProviderBadStatus, status))
	}
	ErrProviderTokenRefresh = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientCalendarAuthExpired, constvars.ErrDevTokenRefreshFailed)
	}
	ErrMalformedEvent = func(err error, eventID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevMalformedEvent, eventID))
	}
	ErrCalendarNotConnected = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, constvars.ErrClientCalendarNotConnected, constvars.ErrDevConnectionNotFound)
	}
	ErrSyncAlreadyRunning = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusConflict, constvars.ErrClientSyncAlreadyRunning, constvars.ErrDevSyncLockNotAcquired)
	}
	ErrUnknownResolutionType = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientUnknownResolutionType, constvars.ErrDevValidationFailed)
	}
)

func IsProviderAuthExpired(err error) bool {
	return hasClientMessage(err, constvars.ErrClientCalendarAuthExpired)
}

func IsProviderRateLimited(err error) bool {
	return hasClientMessage(err, constvars.ErrClientCalendarRateLimited)
}

func IsMalformedEvent(err error) bool {
	var customErr *CustomError
	if !errors.As(err, &customErr) {
		return false
	}
	return customErr.StatusCode == constvars.StatusBadRequest &&
		customErr.ClientMessage == constvars.ErrClientCannotProcessRequest
}

func hasClientMessage(err error, message string) bool {
	var customErr *CustomError
	if !errors.As(err, &customErr) {
		return false
	}
	return customErr.ClientMessage == message
}
