package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// ErrorBody is the error object of every failed response.
type ErrorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	UploadID string `json:"uploadId,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// respondRejection reports a rejection with the uploader-facing message.
// The raw detail never leaves the server.
func respondRejection(c *gin.Context, uploadID string, rej *sanitizer.Rejection) {
	c.AbortWithStatusJSON(rejectionStatus(rej.Reason), ErrorResponse{Error: ErrorBody{
		Code:     string(rej.Reason),
		Message:  host.Message(rej),
		UploadID: uploadID,
	}})
}

func rejectionStatus(reason sanitizer.Reason) int {
	switch reason {
	case sanitizer.ReasonUnauthorized, sanitizer.ReasonDisabled:
		return http.StatusForbidden
	case sanitizer.ReasonTooLarge:
		return http.StatusRequestEntityTooLarge
	case sanitizer.ReasonSanitizerUnavailable:
		return http.StatusServiceUnavailable
	case sanitizer.ReasonIOFailure:
		return http.StatusInternalServerError
	case sanitizer.ReasonCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusUnprocessableEntity
	}
}
