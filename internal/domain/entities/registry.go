package entities

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RegistryState is the singleton registry row
type RegistryState struct {
	Owner        common.Address
	Paused       bool
	Balance      *big.Int
	NextPosition int64
	UpdatedAt    time.Time
}

// Clone returns a deep copy
func (r *RegistryState) Clone() *RegistryState {
	if r == nil {
		return nil
	}
	cpy := *r
	if r.Balance != nil {
		cpy.Balance = new(big.Int).Set(r.Balance)
	}
	return &cpy
}

// RegistrySummary is the public view of the registry
type RegistrySummary struct {
	Owner        common.Address
	Paused       bool
	Balance      *big.Int
	StudentCount int64
}

func (s RegistrySummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Owner        string `json:"owner"`
		Paused       bool   `json:"paused"`
		Balance      string `json:"balance"`
		StudentCount int64  `json:"studentCount"`
	}{
		Owner:        s.Owner.Hex(),
		Paused:       s.Paused,
		Balance:      AmountString(s.Balance),
		StudentCount: s.StudentCount,
	})
}

// DepositInput represents an open-funding deposit
type DepositInput struct {
	Amount string `json:"amount" binding:"required,wei"`
	TxHash string `json:"txHash" binding:"omitempty,max=66"`
}

// TransferOwnershipInput represents input for handing over the owner role
type TransferOwnershipInput struct {
	NewOwner string `json:"newOwner" binding:"required,eth_addr"`
}

// PayoutAccount is the external balance credited by claims and withdrawals
type PayoutAccount struct {
	Address common.Address
	Balance *big.Int
}

func (a PayoutAccount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Address string `json:"address"`
		Balance string `json:"balance"`
	}{
		Address: a.Address.Hex(),
		Balance: AmountString(a.Balance),
	})
}
