package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/pkg/crypto"
	"scholarship-fund.backend/pkg/jwt"
	"scholarship-fund.backend/pkg/logger"
)

var (
	generateNonce  = func() (string, error) { return crypto.GenerateRandomToken(16) }
	recoverAddress = crypto.RecoverAddress
)

// ChallengeStore keeps one outstanding sign-in challenge per address
type ChallengeStore interface {
	Save(ctx context.Context, address, message string) error
	Take(ctx context.Context, address string) (string, error)
	TTL() time.Duration
}

// RegistryReader is the read side of the registry that sign-in needs
type RegistryReader interface {
	Owner(ctx context.Context) (common.Address, error)
	GetStudent(ctx context.Context, address common.Address) (*entities.Student, error)
}

// AuthUsecase handles wallet sign-in
type AuthUsecase struct {
	challenges ChallengeStore
	registry   RegistryReader
	jwtService *jwt.JWTService
	now        func() time.Time
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(challenges ChallengeStore, registry RegistryReader, jwtService *jwt.JWTService) *AuthUsecase {
	return &AuthUsecase{
		challenges: challenges,
		registry:   registry,
		jwtService: jwtService,
		now:        time.Now,
	}
}

func parseAddress(raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, domainerrors.NewError("address must be a 20-byte hex string", domainerrors.ErrInvalidInput)
	}
	return common.HexToAddress(raw), nil
}

// IssueChallenge creates the message the wallet at address must sign.
// A new challenge replaces any outstanding one.
func (u *AuthUsecase) IssueChallenge(ctx context.Context, rawAddress string) (*entities.AuthChallenge, error) {
	address, err := parseAddress(rawAddress)
	if err != nil {
		return nil, err
	}
	nonce, err := generateNonce()
	if err != nil {
		return nil, err
	}
	message := crypto.ChallengeMessage(address, nonce)
	if err := u.challenges.Save(ctx, address.Hex(), message); err != nil {
		return nil, err
	}
	return &entities.AuthChallenge{
		Address:   address.Hex(),
		Message:   message,
		Nonce:     nonce,
		ExpiresAt: u.now().Add(u.challenges.TTL()).UTC(),
	}, nil
}

// VerifyChallenge consumes the outstanding challenge and, when the signature
// recovers to address, issues a token pair
func (u *AuthUsecase) VerifyChallenge(ctx context.Context, input *entities.VerifyChallengeInput) (*entities.AuthResponse, error) {
	address, err := parseAddress(input.Address)
	if err != nil {
		return nil, err
	}
	message, err := u.challenges.Take(ctx, address.Hex())
	if err != nil {
		return nil, err
	}
	if message == "" {
		return nil, domainerrors.ErrChallengeNotFound
	}

	signer, err := recoverAddress(message, input.Signature)
	if err != nil || signer != address {
		logger.Warn(ctx, "Sign-in signature mismatch", zap.String("address", address.Hex()))
		return nil, domainerrors.ErrInvalidSignature
	}
	return u.issue(ctx, address)
}

// Refresh exchanges a refresh token for a new pair; the role is recomputed
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.ErrTokenExpired
		}
		return nil, domainerrors.ErrUnauthorized
	}
	if !common.IsHexAddress(claims.Address) {
		return nil, domainerrors.ErrUnauthorized
	}
	return u.issue(ctx, common.HexToAddress(claims.Address))
}

// Me describes the caller: address, current role and student record
func (u *AuthUsecase) Me(ctx context.Context, address common.Address) (*entities.CallerProfile, error) {
	role, err := u.roleOf(ctx, address)
	if err != nil {
		return nil, err
	}
	student, err := u.registry.GetStudent(ctx, address)
	if err != nil {
		return nil, err
	}
	return &entities.CallerProfile{Address: address, Role: role, Student: student}, nil
}

func (u *AuthUsecase) roleOf(ctx context.Context, address common.Address) (string, error) {
	owner, err := u.registry.Owner(ctx)
	if err != nil {
		return "", err
	}
	if owner == address {
		return entities.RoleOwner, nil
	}
	return entities.RoleStudent, nil
}

func (u *AuthUsecase) issue(ctx context.Context, address common.Address) (*entities.AuthResponse, error) {
	role, err := u.roleOf(ctx, address)
	if err != nil {
		return nil, err
	}
	pair, err := u.jwtService.GenerateTokenPair(address.Hex(), role)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Address:      address.Hex(),
		Role:         role,
	}, nil
}
