package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	WebhookErrorBadInput       = "WEBHOOK_BAD_INPUT"
	WebhookErrorNotFound       = "WEBHOOK_DELIVERY_NOT_FOUND"
	WebhookErrorLogUnavailable = "WEBHOOK_LOG_UNAVAILABLE"
	WebhookErrorNotConfigured  = "WEBHOOK_NOT_CONFIGURED"
	WebhookErrorInternal       = "WEBHOOK_INTERNAL_ERROR"
)

type ErrorMapper func(err error) *goerrors.Error

// NewLogUnavailableError tags a delivery-log failure. Callers use
// IsLogUnavailable to distinguish "cannot write the audit trail" from every
// other failure class, since no delivery may proceed without a record.
func NewLogUnavailableError(cause error) error {
	if cause == nil {
		return nil
	}
	return goerrors.Wrap(cause, goerrors.CategoryExternal, "core: delivery log unavailable").
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(WebhookErrorLogUnavailable)
}

func IsLogUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == WebhookErrorLogUnavailable
	}
	return false
}

func webhookErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureWebhookErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newWebhookError(err.Error(), goerrors.CategoryNotFound, WebhookErrorNotFound)
	case strings.Contains(msg, "log unavailable"), strings.Contains(msg, "store is not configured"):
		return newWebhookError(err.Error(), goerrors.CategoryExternal, WebhookErrorLogUnavailable)
	case strings.Contains(msg, "secret is required"), strings.Contains(msg, "not configured"):
		return newWebhookError(err.Error(), goerrors.CategoryConflict, WebhookErrorNotConfigured)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newWebhookError(err.Error(), goerrors.CategoryBadInput, WebhookErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureWebhookErrorEnvelope(mapped)
}

func newWebhookError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureWebhookErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureWebhookErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = webhookHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultWebhookTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultWebhookTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return WebhookErrorBadInput
	case goerrors.CategoryNotFound:
		return WebhookErrorNotFound
	case goerrors.CategoryExternal:
		return WebhookErrorLogUnavailable
	case goerrors.CategoryConflict:
		return WebhookErrorNotConfigured
	default:
		return WebhookErrorInternal
	}
}

func webhookHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
