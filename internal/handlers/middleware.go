package handlers

import (
	"auth_backend/internal/models"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "user"

// sessionMiddleware either attaches the authenticated user to the context
// and continues, or aborts with the error returned by the session service.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	// a missing cookie reads as "" and is rejected by Authenticate
	token, _ := c.Cookie(sessionCookieName)

	user, err := h.services.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, "auth_session_rejected", err, "path", c.Request.URL.Path)
		return
	}

	c.Set(ctxUserKey, user)
	c.Next()
}

// currentUser returns the user attached by sessionMiddleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}
