package service

import (
	"context"
	"strconv"
	"time"

	"taskboard_backend/internal/auth/repository"
	"taskboard_backend/internal/auth/token"
	"taskboard_backend/internal/auth/transport"
	"taskboard_backend/internal/events"
	"taskboard_backend/platform/apperr"
	"taskboard_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenType = "access"

// Service provides authentication logic: registration, credential checks and
// token issuance.
type Service struct {
	repo     *repository.Repository
	cfg      config.AuthServiceConfig
	eventBus events.Bus
}

// New creates a new auth service.
func New(repo *repository.Repository, cfg config.AuthServiceConfig, eventBus events.Bus) *Service {
	return &Service{repo: repo, cfg: cfg, eventBus: eventBus}
}

// SignUp registers a new user.
func (s *Service) SignUp(ctx context.Context, req transport.SignUpRequest) (*transport.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, req.Email, req.Name, string(hash))
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Email:     user.Email,
	})

	return toUserResponse(user), nil
}

// SignIn verifies credentials and issues a token pair.
func (s *Service) SignIn(ctx context.Context, req transport.SignInRequest) (*transport.TokenPairResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token and issues a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*transport.TokenPairResponse, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, apperr.Unauthorized("token invalid")
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	if time.Now().After(expiresAt) {
		return nil, apperr.Unauthorized("token expired")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("token invalid")
	}

	return s.issueTokens(ctx, user)
}

// SignOut revokes a refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID int64) (*transport.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *Service) issueTokens(ctx context.Context, user *repository.User) (*transport.TokenPairResponse, error) {
	accessToken, err := s.signJWT(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return nil, err
	}

	hash := token.HashSHA256(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return nil, err
	}

	return &transport.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) signJWT(user *repository.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"type":  accessTokenType,
		"admin": user.IsAdmin,
		"exp":   time.Now().Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   time.Now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toUserResponse(user *repository.User) *transport.UserResponse {
	return &transport.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}
