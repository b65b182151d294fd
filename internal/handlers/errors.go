package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zlovtnik/homeswift/internal/quote"
	"github.com/zlovtnik/homeswift/internal/service"
)

// Error codes
const (
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeNotReady          = "NOT_READY"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeFieldTooLong      = "FIELD_TOO_LONG"
	ErrCodeInvalidEmail      = "INVALID_EMAIL"
	ErrCodeInvalidTime       = "INVALID_TIME"
	ErrCodeInvalidPhone      = "INVALID_PHONE"
	ErrCodeInvalidDate       = "INVALID_DATE"
	ErrCodePastDate          = "PAST_DATE"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidPriority   = "INVALID_PRIORITY"
	ErrCodeInvalidDateRange  = "INVALID_DATE_RANGE"
	ErrCodePricingNotFound   = "PRICING_NOT_FOUND"
	ErrCodeRequestNotFound   = "REQUEST_NOT_FOUND"
	ErrCodeProviderNotFound  = "PROVIDER_NOT_FOUND"
	ErrCodeDuplicateBooking  = "DUPLICATE_BOOKING"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeProviderInactive  = "PROVIDER_INACTIVE"
)

// Error messages used in HTTP handlers
const (
	MsgInternalServerError = "internal server error"
	MsgInvalidRequestBody  = "invalid request body"
	MsgInvalidRequestID    = "invalid service request id"
	MsgInvalidCustomerID   = "invalid customer id"
	MsgCustomerNotFound    = "customer not found"
	MsgEmailRequired       = "email query parameter is required"
)

// errorMapping ties a sentinel to its HTTP status and envelope code
type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order with errors.Is
var errorMappings = []errorMapping{
	{quote.ErrMissingField, http.StatusBadRequest, ErrCodeMissingField},
	{quote.ErrFieldTooLong, http.StatusBadRequest, ErrCodeFieldTooLong},
	{quote.ErrInvalidEmail, http.StatusBadRequest, ErrCodeInvalidEmail},
	{quote.ErrInvalidTime, http.StatusBadRequest, ErrCodeInvalidTime},
	{quote.ErrInvalidPhone, http.StatusBadRequest, ErrCodeInvalidPhone},
	{quote.ErrInvalidDate, http.StatusBadRequest, ErrCodeInvalidDate},
	{quote.ErrPastDate, http.StatusBadRequest, ErrCodePastDate},
	{quote.ErrInvalidQuantity, http.StatusBadRequest, ErrCodeInvalidQuantity},
	{service.ErrInvalidStatus, http.StatusBadRequest, ErrCodeInvalidStatus},
	{service.ErrInvalidPriority, http.StatusBadRequest, ErrCodeInvalidPriority},
	{service.ErrInvalidDateRange, http.StatusBadRequest, ErrCodeInvalidDateRange},
	{quote.ErrPricingNotFound, http.StatusNotFound, ErrCodePricingNotFound},
	{service.ErrRequestNotFound, http.StatusNotFound, ErrCodeRequestNotFound},
	{service.ErrProviderNotFound, http.StatusNotFound, ErrCodeProviderNotFound},
	{service.ErrCustomerNotFound, http.StatusNotFound, ErrCodeNotFound},
	{service.ErrDuplicateBooking, http.StatusConflict, ErrCodeDuplicateBooking},
	{service.ErrInvalidStatusTransition, http.StatusConflict, ErrCodeInvalidTransition},
	{service.ErrProviderInactive, http.StatusConflict, ErrCodeProviderInactive},
}

// writeServiceError maps a service error onto the response envelope.
// Unknown errors are logged and reported as 500 without detail.
func writeServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeErrorDetails(w, m.status, m.code, err.Error(), fieldOf(err))
			return
		}
	}
	logger.ErrorContext(ctx, "request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, MsgInternalServerError)
}

// fieldOf names the offending input field for validation failures
func fieldOf(err error) any {
	var fe *quote.FieldError
	if errors.As(err, &fe) {
		return map[string]string{"field": fe.Field}
	}
	return nil
}
