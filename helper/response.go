package helper

import (
	"errors"

	"github.com/gin-gonic/gin"
)

const (
	ErrInvalidRequest   = "INVALID_REQUEST"
	ErrInvalidOperation = "INVALID_OPERATION"
	ErrNotFound         = "NOT_FOUND"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrConflict         = "CONFLICT"
	ErrInternal         = "INTERNAL_ERROR"
)

// ErrSomethingWentWrong is what clients see in place of a backend failure.
var ErrSomethingWentWrong = errors.New("something went wrong, try again")

type APIResponse struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func SendSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

func SendError(c *gin.Context, statusCode int, err error, errorCode string) {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	c.AbortWithStatusJSON(statusCode, APIResponse{
		StatusCode: statusCode,
		Error: &APIError{
			Code:    errorCode,
			Message: message,
		},
	})
}
