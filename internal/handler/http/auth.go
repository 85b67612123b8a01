package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/peoplecore/leave-backend-go/internal/domain/auth"
	"github.com/peoplecore/leave-backend-go/internal/handler/http/response"
	"github.com/peoplecore/leave-backend-go/internal/pkg/jwt"
	"github.com/peoplecore/leave-backend-go/internal/pkg/oauth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	authService auth.AuthService
	jwtService  jwt.Service
	google      oauth.GoogleService
}

func NewAuthHandler(authService auth.AuthService, jwtService jwt.Service, google oauth.GoogleService) AuthHandler {
	return &authHandlerImpl{
		authService: authService,
		jwtService:  jwtService,
		google:      google,
	}
}

const oauthStateCookie = "oauth_state"

func (h *authHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Register decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokens, err := h.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, h.jwtService.RefreshTokenCookie(tokens.RefreshToken, tokens.ExpiresAt))
	response.Created(w, "Account registered successfully", tokens)
}

func (h *authHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokens, err := h.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, h.jwtService.RefreshTokenCookie(tokens.RefreshToken, tokens.ExpiresAt))
	response.Success(w, tokens)
}

// LoginWithGoogle starts the OAuth2 flow: state goes into a short-lived
// cookie and the browser is sent to Google's consent screen.
func (h *authHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	state := h.google.GenerateState(r.UserAgent())
	if state == "" {
		response.InternalServerError(w, "Failed to initiate OAuth flow")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/v1/auth",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.RedirectURL(state), http.StatusTemporaryRedirect)
}

func (h *authHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		response.HandleError(w, auth.ErrOAuthStateMismatch)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		response.BadRequest(w, "Missing authorization code", nil)
		return
	}

	oauthToken, err := h.google.VerifyToken(r.Context(), code)
	if err != nil {
		slog.Error("OAuth token exchange failed", "error", err)
		response.Unauthorized(w, "OAuth token exchange failed")
		return
	}

	info, err := h.google.VerifyUser(r.Context(), oauthToken)
	if err != nil {
		slog.Error("OAuth userinfo fetch failed", "error", err)
		response.Unauthorized(w, "Failed to verify Google account")
		return
	}
	if !info.VerifiedEmail {
		response.Forbidden(w, "Google account email is not verified")
		return
	}

	tokens, err := h.authService.LoginWithGoogle(r.Context(), info.Email, info.GoogleID, info.Name)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, h.jwtService.RefreshTokenCookie(tokens.RefreshToken, tokens.ExpiresAt))
	response.Success(w, tokens)
}

func (h *authHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken := refreshTokenFromRequest(r)
	if refreshToken == "" {
		response.Unauthorized(w, "Missing refresh token")
		return
	}

	tokens, err := h.authService.RefreshToken(r.Context(), refreshToken)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, tokens)
}

func (h *authHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), refreshTokenFromRequest(r)); err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
	})
	response.SuccessWithMessage(w, "Logged out successfully", nil)
}

// refreshTokenFromRequest reads the refresh token from the cookie, falling
// back to the JSON body for non-browser clients.
func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("refresh_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req auth.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}
