package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err in the error envelope. AppErrors keep their status
// and message; anything else is reported as a bare 500. The error is also
// attached to the context so the error middleware logs it.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
		return
	}
	resp := NewErrorResponse(appErr.Message)
	resp.Errors = appErr.Fields
	c.AbortWithStatusJSON(appErr.StatusCode(), resp)
}

// BindJSON decodes the body into obj, answering 400 itself on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondError(c, apperrors.BadRequest("invalid request body", err))
		return false
	}
	return true
}
