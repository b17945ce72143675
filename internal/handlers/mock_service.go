package handlers

import (
	"context"

	"auth_backend/internal/logger"
	"auth_backend/internal/models"
	"auth_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	user  *models.User
	token string
	err   error

	updated   *models.User
	updateErr error

	lastSignUp     service.SignUpInput
	lastLogin      service.LoginInput
	lastUpdateUser *models.User
	lastPicture    string
}

func (m *mockAuth) SignUp(_ context.Context, in service.SignUpInput) (*models.User, string, error) {
	m.lastSignUp = in
	return m.user, m.token, m.err
}

func (m *mockAuth) Login(_ context.Context, in service.LoginInput) (*models.User, string, error) {
	m.lastLogin = in
	return m.user, m.token, m.err
}

func (m *mockAuth) UpdateProfilePicture(_ context.Context, user *models.User, picture string) (*models.User, error) {
	m.lastUpdateUser = user
	m.lastPicture = picture
	return m.updated, m.updateErr
}

type mockSession struct {
	user      *models.User
	err       error
	calls     int
	lastToken string
}

func (m *mockSession) Authenticate(_ context.Context, token string) (*models.User, error) {
	m.calls++
	m.lastToken = token
	return m.user, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, logger.Nop(), opts)
	return h.InitRoutes()
}
