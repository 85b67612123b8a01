package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	LoginWithGoogle(ctx context.Context, email string, providerID string, fullName string) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (AccessTokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}
