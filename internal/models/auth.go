package models

import "time"

// LoginRequest defines the structure for operator login requests
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// TokenRequest asks an operator session to issue a token for another role
type TokenRequest struct {
	Subject string `json:"subject" binding:"required"`
	Role    string `json:"role" binding:"required,oneof=player oracle operator"`
}

// TokenResponse is returned by the token endpoints
type TokenResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}
