package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/pkg/jwt"
)

type fixedChallengeStore struct{ message string }

func (s *fixedChallengeStore) Save(context.Context, string, string) error { return nil }
func (s *fixedChallengeStore) Take(context.Context, string) (string, error) {
	return s.message, nil
}
func (s *fixedChallengeStore) TTL() time.Duration { return time.Minute }

type ownerOnlyReader struct{ owner common.Address }

func (r ownerOnlyReader) Owner(context.Context) (common.Address, error) { return r.owner, nil }
func (r ownerOnlyReader) GetStudent(_ context.Context, a common.Address) (*entities.Student, error) {
	return entities.UnregisteredStudent(a), nil
}

func TestAuthUsecase_NonceHookError(t *testing.T) {
	orig := generateNonce
	t.Cleanup(func() { generateNonce = orig })
	generateNonce = func() (string, error) { return "", errors.New("entropy exhausted") }

	uc := NewAuthUsecase(&fixedChallengeStore{}, ownerOnlyReader{}, jwt.NewJWTService("s", time.Minute, time.Hour))
	_, err := uc.IssueChallenge(context.Background(), "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.ErrorContains(t, err, "entropy exhausted")
}

func TestAuthUsecase_RecoverHook(t *testing.T) {
	orig := recoverAddress
	t.Cleanup(func() { recoverAddress = orig })

	addr := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	uc := NewAuthUsecase(&fixedChallengeStore{message: "m"}, ownerOnlyReader{owner: addr}, jwt.NewJWTService("s", time.Minute, time.Hour))
	input := &entities.VerifyChallengeInput{Address: addr.Hex(), Signature: "0x01"}

	recoverAddress = func(string, string) (common.Address, error) { return common.Address{}, errors.New("bad v") }
	_, err := uc.VerifyChallenge(context.Background(), input)
	require.ErrorIs(t, err, domainerrors.ErrInvalidSignature)

	recoverAddress = func(string, string) (common.Address, error) { return addr, nil }
	resp, err := uc.VerifyChallenge(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, entities.RoleOwner, resp.Role)
}
