package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/peoplecore/leave-backend-go/internal/domain/auth"
	"github.com/peoplecore/leave-backend-go/internal/domain/user"
	"github.com/peoplecore/leave-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type authServiceImpl struct {
	users user.UserRepository
	jwt   jwt.Service
}

func NewAuthService(users user.UserRepository, jwtService jwt.Service) auth.AuthService {
	return &authServiceImpl{
		users: users,
		jwt:   jwtService,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return auth.TokenResponse{}, auth.ErrEmailExists
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return auth.TokenResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	var department *string
	if req.Department != "" {
		department = &req.Department
	}

	created, err := s.users.Create(ctx, user.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: &hashStr,
		Role:         user.Role(req.Role),
		Department:   department,
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(created)
}

func (s *authServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, err
	}

	if u.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !u.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	return s.issueTokens(u)
}

// LoginWithGoogle signs in an existing user by their verified Google identity,
// creating an employee account on first login.
func (s *authServiceImpl) LoginWithGoogle(ctx context.Context, email string, providerID string, fullName string) (auth.TokenResponse, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, err
		}

		provider := "google"
		u, err = s.users.Create(ctx, user.User{
			Email:           email,
			FullName:        fullName,
			Role:            user.RoleEmployee,
			OAuthProvider:   &provider,
			OAuthProviderID: &providerID,
		})
		if err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
		}
	}

	if !u.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	return s.issueTokens(u)
}

func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (auth.AccessTokenResponse, error) {
	if s.jwt.IsTokenRevoked(refreshToken) {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	token, err := s.jwt.JWTAuth().Decode(refreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "refresh" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	userIDVal, ok := token.Get("user_id")
	if !ok {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	userID, ok := userIDVal.(string)
	if !ok {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return auth.AccessTokenResponse{}, err
	}
	if !u.IsActive {
		return auth.AccessTokenResponse{}, auth.ErrAccountInactive
	}

	accessToken, expiresAt, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return auth.AccessTokenResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		s.jwt.RevokeToken(refreshToken)
	}
	return nil
}

func (s *authServiceImpl) issueTokens(u user.User) (auth.TokenResponse, error) {
	accessToken, expiresAt, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, _, err := s.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         auth.NewUserResponse(u),
	}, nil
}
