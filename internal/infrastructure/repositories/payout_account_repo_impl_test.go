package repositories

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
)

func TestPayoutAccountRepository_CreditAccumulates(t *testing.T) {
	db := newTestDB(t)
	createRegistryTables(t, db)
	repo := NewPayoutAccountRepository(db)
	ctx := context.Background()

	bal, err := repo.GetBalance(ctx, addrA)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	require.NoError(t, repo.Credit(ctx, addrA, big.NewInt(700)))
	require.NoError(t, repo.Credit(ctx, addrA, big.NewInt(300)))
	require.NoError(t, repo.Credit(ctx, addrA, big.NewInt(0)))

	bal, err = repo.GetBalance(ctx, addrA)
	require.NoError(t, err)
	assert.Equal(t, "1000", bal.String())

	other, err := repo.GetBalance(ctx, addrB)
	require.NoError(t, err)
	assert.Zero(t, other.Sign())

	require.ErrorIs(t, repo.Credit(ctx, addrA, big.NewInt(-1)), domainerrors.ErrInvalidInput)
	require.ErrorIs(t, repo.Credit(ctx, addrA, nil), domainerrors.ErrInvalidInput)
}

func TestPayoutAccountRepository_CreditInsideTransactionRollsBack(t *testing.T) {
	db := newTestDB(t)
	createRegistryTables(t, db)
	repo := NewPayoutAccountRepository(db)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(ctx context.Context) error {
		if err := repo.Credit(ctx, addrA, big.NewInt(5)); err != nil {
			return err
		}
		return domainerrors.ErrInsufficientFunds
	})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)

	bal, err := repo.GetBalance(context.Background(), addrA)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())
}
