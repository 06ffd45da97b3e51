package usecases

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"scholarship-fund.backend/internal/domain/entities"
	"scholarship-fund.backend/internal/domain/repositories"
)

// TransferHook runs after a recipient's account has been credited, the way a
// receiving contract's fallback would
type TransferHook func(ctx context.Context, to common.Address, amount *big.Int) error

// LedgerTransferer pays out of the registry by crediting the payout ledger
type LedgerTransferer struct {
	accounts repositories.PayoutAccountRepository

	mu    sync.RWMutex
	hooks []TransferHook
}

// NewLedgerTransferer creates a transferer over the payout ledger
func NewLedgerTransferer(accounts repositories.PayoutAccountRepository) *LedgerTransferer {
	return &LedgerTransferer{accounts: accounts}
}

// OnTransfer registers a hook invoked for every transfer. The server registers
// none; it is the seam tests use to play a receiving contract that re-enters
// the registry.
func (t *LedgerTransferer) OnTransfer(h TransferHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, h)
}

// Transfer credits to with amount, then runs the hooks. A hook error fails the transfer.
func (t *LedgerTransferer) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	if err := t.accounts.Credit(ctx, to, amount); err != nil {
		return err
	}
	t.mu.RLock()
	hooks := append([]TransferHook(nil), t.hooks...)
	t.mu.RUnlock()
	for _, h := range hooks {
		if err := h(ctx, to, amount); err != nil {
			return err
		}
	}
	return nil
}

// Account returns the external balance of address
func (t *LedgerTransferer) Account(ctx context.Context, address common.Address) (*entities.PayoutAccount, error) {
	bal, err := t.accounts.GetBalance(ctx, address)
	if err != nil {
		return nil, err
	}
	return &entities.PayoutAccount{Address: address, Balance: bal}, nil
}
