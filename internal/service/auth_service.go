package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"auth_backend/internal/models"
	"auth_backend/internal/repository"
	"auth_backend/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthService issues credentials: sign-up, login and profile picture updates.
type AuthService struct {
	users  repository.Users
	hasher *PasswordHasher
	tokens *TokenCodec
	images ImageUploader
}

func NewAuthService(users repository.Users, hasher *PasswordHasher, tokens *TokenCodec, images ImageUploader) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, images: images}
}

// SignUp validates input, stores the new user and returns it with a session token.
// The user is persisted before the token is issued.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, string, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, "", validationError(MsgFillAllFields)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, "", validationError(MsgPasswordTooShort)
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("sign up: %w", err)
	}
	if existing != nil {
		return nil, "", validationError(MsgUserExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, "", validationError(MsgPasswordTooLong)
		}
		return nil, "", fmt.Errorf("sign up: %w", err)
	}

	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// lost a race with a concurrent sign-up for the same email
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", validationError(MsgUserExists)
		}
		return nil, "", fmt.Errorf("sign up: %w", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign up: %w", err)
	}
	return u, token, nil
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if in.Email == "" || in.Password == "" {
		return nil, "", validationError(MsgFillAllFields)
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	if u == nil {
		return nil, "", validationError(MsgInvalidCredential)
	}

	ok, err := s.hasher.Verify(in.Password, u.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, "", validationError(MsgInvalidCredential)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}
	return u, token, nil
}

// UpdateProfilePicture hosts picture and stores its URL on user.
func (s *AuthService) UpdateProfilePicture(ctx context.Context, user *models.User, picture string) (*models.User, error) {
	if picture == "" {
		return nil, validationError(MsgProvidePicture)
	}

	url, err := s.images.Upload(ctx, user.ID, picture)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, validationError(MsgInvalidPicture)
		}
		return nil, fmt.Errorf("upload profile picture: %w", err)
	}

	updated, err := s.users.UpdateProfilePicture(ctx, user.ID, url)
	if err != nil {
		return nil, fmt.Errorf("update profile picture: %w", err)
	}
	if updated == nil {
		return nil, unauthorizedError(MsgNoUserFound)
	}
	return updated, nil
}
