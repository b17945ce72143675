package service

import (
	"context"
	"fmt"

	"auth_backend/internal/models"
	"auth_backend/internal/repository"
)

// SessionService resolves a session token to the user it was issued for.
// Nothing is cached: every call verifies the token and reads the store.
type SessionService struct {
	tokens *TokenCodec
	users  repository.Users
}

func NewSessionService(tokens *TokenCodec, users repository.Users) *SessionService {
	return &SessionService{tokens: tokens, users: users}
}

func (s *SessionService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, unauthorizedError(MsgNoToken)
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, unauthorizedError(MsgInvalidToken)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if u == nil {
		return nil, unauthorizedError(MsgNoUserFound)
	}
	return u, nil
}
