package dto

import (
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/service"
)

// LoginRequest represents a credential login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ImpersonateRequest represents a switch-user request
type ImpersonateRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// SessionResponse carries the authenticated user and their token pair
type SessionResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	// Impersonating is set when the session acts as another user.
	Impersonating bool `json:"impersonating,omitempty"`
}

// NewSessionResponse maps a user and token pair to the response shape
func NewSessionResponse(user *domain.User, pair *service.TokenPair, impersonating bool) SessionResponse {
	return SessionResponse{
		User:          NewUserResponse(user),
		AccessToken:   pair.AccessToken,
		RefreshToken:  pair.RefreshToken,
		ExpiresIn:     pair.ExpiresIn,
		Impersonating: impersonating,
	}
}

// TokenResponse carries a refreshed token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
