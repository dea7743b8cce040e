package api

import (
	"net/http"
	"strconv"

	"pos-service/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// respond writes the success envelope; data is omitted when nil
func respond(c *gin.Context, code int, message string, data interface{}) {
	body := gin.H{
		"status":  statusSuccess,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

// respondError maps err to its status code. Internal failures are logged
// and answered with a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(code, gin.H{
		"status":  statusError,
		"message": apperr.PublicMessage(err),
	})
}

// bindJSON decodes the request body into req, answering 400 on malformed JSON
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Debug("Invalid request body", zap.Error(err))
		h.respondError(c, apperr.Validation("", "Invalid request body"))
		return false
	}
	return true
}

// pathID parses a positive integer path parameter
func (h *Handler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, apperr.Validation(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter; absent means 0
func (h *Handler) queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.respondError(c, apperr.Validation(name, "must be an integer"))
		return 0, false
	}
	return n, true
}
