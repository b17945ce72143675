package handlers

import (
	"errors"
	"net/http"

	"auth_backend/internal/service"

	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal Server error"

// respondError is the single place where error kinds become status codes.
// Client faults keep their message; anything else is a generic 500.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	var ce *service.ClientError
	if errors.As(err, &ce) {
		if h.log != nil {
			h.log.Infow(logKey, append([]interface{}{"status", ce.Status, "reason", ce.Message}, kv...)...)
		}
		c.AbortWithStatusJSON(ce.Status, gin.H{"message": ce.Message})
		return
	}

	if h.log != nil {
		h.log.Errorw(logKey, append([]interface{}{"err", err}, kv...)...)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
}
