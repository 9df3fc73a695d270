package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Client-facing messages
const (
	MsgUnauthorized       = "Unauthorized."
	MsgForbidden          = "You are not allowed to do this."
	MsgNotFound           = "Resource not found."
	MsgBadRequest         = "Invalid request."
	MsgConflict           = "Resource already exists."
	MsgInternalError      = "Something went wrong. Try again later!"
	MsgServiceUnavailable = "Service temporarily unavailable."
)

// APIError is the error half of the response envelope.
type APIError struct {
	ClientMsg string `json:"clientMsg"`
	Detail    string `json:"error"`
	Reason    string `json:"reason,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Detail
}

// NewAPIError creates a new APIError
func NewAPIError(clientMsg, detail string) *APIError {
	return &APIError{
		ClientMsg: clientMsg,
		Detail:    detail,
	}
}

// Respond writes a successful envelope: the payload fields next to an
// empty error.
func Respond(c *gin.Context, statusCode int, payload gin.H, clientMsg string) {
	body := gin.H{}
	for k, v := range payload {
		body[k] = v
	}
	body["clientMsg"] = clientMsg
	body["error"] = ""
	c.JSON(statusCode, body)
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, clientMsg, detail string) {
	if clientMsg == "" {
		clientMsg = MsgUnauthorized
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(clientMsg, detail))
}

// Forbidden sends a 403 response. reason names the failed rule, if any.
func Forbidden(c *gin.Context, clientMsg, detail, reason string) {
	if clientMsg == "" {
		clientMsg = MsgForbidden
	}
	err := NewAPIError(clientMsg, detail)
	err.Reason = reason
	RespondWithError(c, http.StatusForbidden, err)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, clientMsg, detail string) {
	if clientMsg == "" {
		clientMsg = MsgNotFound
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(clientMsg, detail))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, clientMsg, detail string) {
	if clientMsg == "" {
		clientMsg = MsgBadRequest
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(clientMsg, detail))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, clientMsg, detail string) {
	if clientMsg == "" {
		clientMsg = MsgConflict
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(clientMsg, detail))
}

// InternalError sends a 500 response carrying the underlying error text.
func InternalError(c *gin.Context, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(MsgInternalError, detail))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, clientMsg, detail string) {
	if clientMsg == "" {
		clientMsg = MsgServiceUnavailable
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(clientMsg, detail))
}
