package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Caller roles carried in access tokens
const (
	RoleOwner   = "owner"
	RoleStudent = "student"
)

// AuthChallenge is the message a wallet signs to sign in
type AuthChallenge struct {
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyChallengeInput carries the signed challenge
type VerifyChallengeInput struct {
	Address   string `json:"address" binding:"required,eth_addr"`
	Signature string `json:"signature" binding:"required,hexadecimal"`
}

// RefreshTokenInput represents refresh token input
type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse represents a successful sign-in
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Address      string `json:"address"`
	Role         string `json:"role"`
	SessionID    string `json:"sessionId,omitempty"`
}

// CallerProfile is what /auth/me returns
type CallerProfile struct {
	Address common.Address `json:"address"`
	Role    string         `json:"role"`
	Student *Student       `json:"student"`
}
