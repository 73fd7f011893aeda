package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trix-studio/trix/pkg/trix/middleware"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/repositories"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 24 * time.Hour

type AuthService struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, secret []byte, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{users: users, secret: secret, ttl: ttl, now: time.Now}
}

// Register creates the user and an empty profile, then logs them in.
func (s *AuthService) Register(ctx context.Context, in *models.RegisterInput) (*models.TokenResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in *models.LoginInput) (*models.TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrBadCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*models.TokenResponse, error) {
	token, err := middleware.IssueToken(s.secret, user, s.ttl, s.now())
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
	}, nil
}
