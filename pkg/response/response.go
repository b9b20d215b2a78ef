package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes. Clients branch on Code, not on the message text.
const (
	CodeMissingCredential = "MissingCredential"
	CodeMalformed         = "Malformed"
	CodeBadSignature      = "BadSignature"
	CodeExpired           = "Expired"
	CodeTenantMissing     = "TenantMissing"
	CodeRevoked           = "Revoked"
	CodeForbidden         = "Forbidden"
	CodeAuthUnavailable   = "AuthUnavailable"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401 with a machine-readable code.
func Unauthorized(c *gin.Context, code, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err, Code: code})
}

// Forbidden sends 403 with a machine-readable code.
func Forbidden(c *gin.Context, code, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err, Code: code})
}

// NotFound sends 404. The body is identical for a genuine miss and for a
// resource the caller is not allowed to see.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Conflict sends 409 with error message.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}
