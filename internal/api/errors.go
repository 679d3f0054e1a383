package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/logger"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidWindow,
		errors.CodeInvalidDeadline,
		errors.CodeInvalidConfig,
		errors.CodeInvalidCheckIn,
		errors.CodeInvalidPlan:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidStateTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err to its status code. Internal errors are logged and
// their details withheld from the caller.
func respondError(c *gin.Context, err error) {
	code := errors.Code(err)
	status := statusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}

// badRequest reports a malformed request body or query under code.
func badRequest(c *gin.Context, code string, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: code})
}
