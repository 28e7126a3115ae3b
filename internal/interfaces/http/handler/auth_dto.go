package handler

import "time"

// TokenResponse carries an issued token pair
// @name HandlerTokenResponse
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// RefreshTokenRequest asks for a new token pair
// @name HandlerRefreshTokenRequest
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse returns the refreshed token pair
// @name HandlerRefreshTokenResponse
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

// LogoutResponse confirms a logout
// @name HandlerLogoutResponse
type LogoutResponse struct {
	Message string `json:"message"`
}
