package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinisys/backoffice/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusFor maps application error codes onto HTTP statuses. Policy and
// registry failures deny by default rather than falling through to 200-family
// handling.
func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrNotFound, errors.ErrUnknownEntity:
		return http.StatusNotFound
	case errors.ErrBadRequest:
		return http.StatusBadRequest
	case errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrForbidden, errors.ErrUnknownRole:
		return http.StatusForbidden
	case errors.ErrValidation:
		return http.StatusUnprocessableEntity
	case errors.ErrStorageConflict:
		return http.StatusConflict
	default:
		// ErrInternal, ErrNoActiveKey, ErrKeyUnavailable, ErrDecryptionFailed
		return http.StatusInternalServerError
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response. The application error code is kept
// in the body so operators can tell key loss or corruption apart from a plain
// missing row even though both map onto 5xx/404 statuses.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	code := int(errors.ErrInternal)

	if appErr, ok := err.(*errors.AppError); ok {
		status = statusFor(appErr.Code)
		message = appErr.Message
		code = int(appErr.Code)
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}
