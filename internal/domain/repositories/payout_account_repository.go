package repositories

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PayoutAccountRepository is the external balance ledger credited by transfers out of the registry
type PayoutAccountRepository interface {
	Credit(ctx context.Context, address common.Address, amount *big.Int) error
	GetBalance(ctx context.Context, address common.Address) (*big.Int, error)
}
