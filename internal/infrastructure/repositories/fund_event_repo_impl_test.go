package repositories

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"scholarship-fund.backend/internal/domain/entities"
)

func TestFundEventRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	createRegistryTables(t, db)
	repo := NewFundEventRepository(db)
	ctx := context.Background()

	added := &entities.FundEvent{Type: entities.EventStudentAdded, Address: addrA, Name: "Ann", Amount: big.NewInt(10)}
	deposit := &entities.FundEvent{Type: entities.EventFundDeposited, Address: addrB, Amount: big.NewInt(20), TxHash: null.StringFrom("0xfeed")}
	transfer := &entities.FundEvent{Type: entities.EventOwnershipTransferred, Address: addrA, Counterparty: addrC}

	for _, e := range []*entities.FundEvent{added, deposit, transfer} {
		require.NoError(t, repo.Create(ctx, e))
		assert.NotZero(t, e.Sequence)
		assert.NotEqual(t, [16]byte{}, [16]byte(e.ID))
	}
	assert.Less(t, added.Sequence, deposit.Sequence)
	assert.Less(t, deposit.Sequence, transfer.Sequence)

	all, total, err := repo.List(ctx, entities.FundEventFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, entities.EventStudentAdded, all[0].Type)
	assert.Equal(t, "Ann", all[0].Name)
	assert.Equal(t, "10", all[0].Amount.String())
	assert.Equal(t, "0xfeed", all[1].TxHash.String)
	assert.Equal(t, addrC, all[2].Counterparty)
	assert.Nil(t, all[2].Amount)

	byAddr, total, err := repo.List(ctx, entities.FundEventFilter{Address: &addrA}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byAddr, 2)

	byType, total, err := repo.List(ctx, entities.FundEventFilter{Type: entities.EventFundDeposited}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byType, 1)
	assert.Equal(t, addrB, byType[0].Address)

	paged, total, err := repo.List(ctx, entities.FundEventFilter{}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
	assert.Equal(t, transfer.Sequence, paged[0].Sequence)
}
