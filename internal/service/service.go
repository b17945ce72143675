package service

import (
	"context"

	"auth_backend/internal/models"
	"auth_backend/internal/repository"
)

// Authorization covers the operations that create or change credentials.
type Authorization interface {
	SignUp(ctx context.Context, in SignUpInput) (*models.User, string, error)
	Login(ctx context.Context, in LoginInput) (*models.User, string, error)
	UpdateProfilePicture(ctx context.Context, user *models.User, picture string) (*models.User, error)
}

// Session gates protected routes.
type Session interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// ImageUploader hosts a picture (data URI, base64 or remote URL) and returns
// its durable URL.
type ImageUploader interface {
	Upload(ctx context.Context, userID, source string) (string, error)
}

type Service struct {
	Authorization
	Session
}

func NewService(repos *repository.Repository, tokens *TokenCodec, hasher *PasswordHasher, images ImageUploader) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, hasher, tokens, images),
		Session:       NewSessionService(tokens, repos.Users),
	}
}
