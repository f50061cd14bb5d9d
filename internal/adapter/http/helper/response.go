package helper

import (
	"net/http"

	"todoserver/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

// SendEmpty writes a status with an empty body but still announces JSON, so every
// response of the API carries the same content type.
func SendEmpty(c *gin.Context, statusCode int) {
	c.Header("Content-Type", jsonContentType)
	c.AbortWithStatus(statusCode)
}

func SendNotFound(c *gin.Context) {
	SendEmpty(c, http.StatusNotFound)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendPayloadTooLargeError(c *gin.Context, limit int64) {
	errors := []response.ValidationError{
		{
			Field:   "body",
			Message: "request body too large",
		},
	}

	SendError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", errors, gin.H{"limit_bytes": limit})
}

func SendTooManyRequestsError(c *gin.Context, message string, retryAfter int) {
	errors := []response.ValidationError{
		{
			Field:   "rate_limit",
			Message: message,
		},
	}

	SendError(c, http.StatusTooManyRequests, "RATE_LIMITED", errors, gin.H{"retry_after": retryAfter})
}
