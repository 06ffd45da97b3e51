package entities

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

// Student is a scholarship record keyed by wallet address
type Student struct {
	Name          string
	WalletAddress common.Address
	Amount        *big.Int
	HasClaimed    bool
	IsRegistered  bool
	Position      int64
	ClaimedAt     null.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UnregisteredStudent is the sentinel returned for addresses with no record
func UnregisteredStudent(address common.Address) *Student {
	return &Student{
		WalletAddress: address,
		Amount:        new(big.Int),
	}
}

// Clone returns a deep copy so callers can mutate without aliasing amounts
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}
	cpy := *s
	if s.Amount != nil {
		cpy.Amount = new(big.Int).Set(s.Amount)
	}
	return &cpy
}

type studentJSON struct {
	Name          string    `json:"name"`
	WalletAddress string    `json:"walletAddress"`
	Amount        string    `json:"amount"`
	HasClaimed    bool      `json:"hasClaimed"`
	IsRegistered  bool      `json:"isRegistered"`
	ClaimedAt     null.Time `json:"claimedAt"`
}

// MarshalJSON renders amounts as base-10 strings
func (s Student) MarshalJSON() ([]byte, error) {
	return json.Marshal(studentJSON{
		Name:          s.Name,
		WalletAddress: s.WalletAddress.Hex(),
		Amount:        AmountString(s.Amount),
		HasClaimed:    s.HasClaimed,
		IsRegistered:  s.IsRegistered,
		ClaimedAt:     s.ClaimedAt,
	})
}

// AddStudentInput represents input for registering one student
type AddStudentInput struct {
	Name    string `json:"name" binding:"max=256"`
	Address string `json:"address" binding:"required,eth_addr"`
	Amount  string `json:"amount" binding:"required,wei"`
}

// BulkAddStudentsInput carries three parallel sequences; lengths are checked by the registry
type BulkAddStudentsInput struct {
	Names     []string `json:"names" binding:"dive,max=256"`
	Addresses []string `json:"addresses" binding:"dive,eth_addr"`
	Amounts   []string `json:"amounts" binding:"dive,wei"`
}

// UpdateAmountInput represents input for changing a student's allocation
type UpdateAmountInput struct {
	Amount string `json:"amount" binding:"required,wei"`
}

// StudentPage is one window of the registration order
type StudentPage struct {
	Items  []*Student `json:"items"`
	Offset int64      `json:"offset"`
	Limit  int64      `json:"limit"`
	Total  int64      `json:"total"`
}

// AmountString formats an amount in the smallest unit, nil as zero
func AmountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
