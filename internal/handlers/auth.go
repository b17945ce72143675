package handlers

import (
	"errors"
	"io"
	"net/http"

	"auth_backend/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	msgBadBody     = "Invalid request body"
	msgBodyTooBig  = "Request body too large"
	msgLoggedOut   = "Logged out successfully"
	errNoUserInCtx = "session user missing from context"
)

// SignUpRequest is the sign-up payload.
type SignUpRequest struct {
	Name     string `json:"name" example:"Ana"`
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"secret1"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"secret1"`
}

// UpdateProfileRequest carries a data URI, a base64 payload or an image URL.
type UpdateProfileRequest struct {
	ProfilePicture string `json:"profile_picture" example:"data:image/png;base64,iVBORw0KGgo="`
}

// MessageResponse is the body of every error and of logout.
type MessageResponse struct {
	Message string `json:"message"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// An empty body binds to the zero value so that field validation reports what is missing.
// Returns false if the request was already handled (aborted), true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			if h.log != nil {
				h.log.Infow("auth_body_too_large", "path", c.Request.URL.Path, "limit", tooBig.Limit)
			}
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, MessageResponse{Message: msgBodyTooBig})
			return false
		}
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "path", c.Request.URL.Path, "err", err)
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, MessageResponse{Message: msgBadBody})
		return false
	}
	return true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Sign up
// @Description  Creates a user and starts a session (sets the token cookie).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SignUpRequest  true  "New account"
// @Success      201   {object}  models.PublicUser
// @Failure      400   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /api/auth/signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var input SignUpRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, token, err := h.services.SignUp(c.Request.Context(), service.SignUpInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		h.respondError(c, "auth_sign_up_failed", err, "email", input.Email)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, user.Public())
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  models.PublicUser
// @Failure      400   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /api/auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, token, err := h.services.Login(c.Request.Context(), service.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		h.respondError(c, "auth_login_failed", err, "email", input.Email)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, user.Public())
}

// @Summary      Log out
// @Description  Clears the token cookie. Always succeeds.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  MessageResponse
// @Router       /api/auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, MessageResponse{Message: msgLoggedOut})
}

// @Summary      Update profile picture
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateProfileRequest  true  "Picture"
// @Success      200   {object}  models.PublicUser
// @Failure      400   {object}  MessageResponse
// @Failure      401   {object}  MessageResponse
// @Failure      413   {object}  MessageResponse
// @Failure      500   {object}  MessageResponse
// @Router       /api/auth/update-profile [put]
// @Security     CookieAuth
func (h *Handler) updateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.respondError(c, "auth_update_profile_failed", errors.New(errNoUserInCtx))
		return
	}

	var input UpdateProfileRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	updated, err := h.services.UpdateProfilePicture(c.Request.Context(), user, input.ProfilePicture)
	if err != nil {
		h.respondError(c, "auth_update_profile_failed", err, "user_id", user.ID)
		return
	}

	c.JSON(http.StatusOK, updated.Public())
}

// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  models.PublicUser
// @Failure      401  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /api/auth/check [get]
// @Security     CookieAuth
func (h *Handler) checkAuth(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.respondError(c, "auth_check_failed", errors.New(errNoUserInCtx))
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
