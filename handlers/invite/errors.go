package invite

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/invitegate/services/invite"
	"go.uber.org/zap"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable is checked in order; the first sentinel matched by errors.Is wins.
var errorTable = []errorMapping{
	{invite.ErrInvalidFormat, http.StatusBadRequest, "invalid_format"},
	{invite.ErrTokenInvalid, http.StatusNotFound, "token_invalid"},
	{invite.ErrTokenExpired, http.StatusGone, "token_expired"},
	{invite.ErrMaxUsesExceeded, http.StatusGone, "max_uses_exceeded"},
	{invite.ErrTokenNotFound, http.StatusNotFound, "token_not_found"},
	{invite.ErrAlreadyDisabled, http.StatusBadRequest, "already_disabled"},
	{invite.ErrAlreadyExhausted, http.StatusBadRequest, "already_exhausted"},
	{invite.ErrAlreadyExpired, http.StatusBadRequest, "already_expired"},
	{invite.ErrInvalidExpiry, http.StatusBadRequest, "invalid_expiry"},
	{invite.ErrInvalidMaxUses, http.StatusBadRequest, "invalid_max_uses"},
	{invite.ErrStorageTimeout, http.StatusServiceUnavailable, "storage_timeout"},
}

func lookupError(err error) (int, string, bool) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code, true
		}
	}
	return http.StatusInternalServerError, "internal_error", false
}

func reasonStatus(reason invite.Reason) (int, string) {
	status, code, _ := lookupError(reason.Err())
	return status, code
}

// handleError writes expected outcomes with their status and code. Anything else
// is logged and reported as a bare 500.
func (h *Handler) handleError(c echo.Context, err error) error {
	status, code, known := lookupError(err)

	if !known || status >= http.StatusInternalServerError {
		h.logger.Error("invite request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	message := err.Error()
	if !known {
		message = "internal server error"
	} else if status == http.StatusServiceUnavailable {
		message = "storage is temporarily unavailable"
	}

	return c.JSON(status, ErrorResponse{Error: code, Message: message})
}
