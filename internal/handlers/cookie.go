package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "token"

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

// setSessionCookie hands a freshly issued token to the client.
func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, h.sessionCookie(token, int(h.opts.CookieMaxAge.Seconds())))
}

// clearSessionCookie overwrites the cookie with an empty, already expired one.
// The token itself stays valid until it expires.
func (h *Handler) clearSessionCookie(c *gin.Context) {
	// negative MaxAge is written as Max-Age=0
	http.SetCookie(c.Writer, h.sessionCookie("", -1))
}
