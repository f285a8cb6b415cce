package services

import (
	"context"

	"github.com/openjournal/journal-backend/internal/auth"
	"github.com/openjournal/journal-backend/internal/models"
	"github.com/openjournal/journal-backend/internal/repository"
)

// LoginResponse is returned by login and refresh.
type LoginResponse struct {
	AccessToken string            `json:"accessToken"`
	ExpiresIn   int               `json:"expiresIn"`
	User        models.PublicUser `json:"user"`
}

// AuthService handles signup, login and token refresh on top of the
// credential store and token service.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Signup creates a new account. Duplicate usernames fail with ErrConflict.
// No token is issued; the client logs in afterwards.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*models.User, error) {
	return s.users.Create(ctx, username, password)
}

// Login verifies the credentials and issues a fresh access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	user, err := s.users.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Refresh issues a new token for an already-resolved principal. The guard on
// the refresh route is the only place an expired token is accepted.
func (s *AuthService) Refresh(user *models.User) (*LoginResponse, error) {
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*LoginResponse, error) {
	token, expiresIn, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		User:        user.Public(),
	}, nil
}
