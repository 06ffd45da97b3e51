package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"scholarship-fund.backend/internal/domain/entities"
)

// ScholarshipFundABI covers the read surface of the deployed ScholarshipFund contract
const ScholarshipFundABI = `[
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getContractBalance","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getStudent","stateMutability":"view","inputs":[{"name":"studentAddress","type":"address"}],"outputs":[{"name":"","type":"tuple","components":[
    {"name":"name","type":"string"},{"name":"walletAddress","type":"address"},{"name":"amount","type":"uint256"},
    {"name":"hasClaimed","type":"bool"},{"name":"isRegistered","type":"bool"}]}]},
  {"type":"function","name":"getAllStudents","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"tuple[]","components":[
    {"name":"name","type":"string"},{"name":"walletAddress","type":"address"},{"name":"amount","type":"uint256"},
    {"name":"hasClaimed","type":"bool"},{"name":"isRegistered","type":"bool"}]}]}
]`

// ViewCaller performs eth_call against a contract
type ViewCaller interface {
	CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// OnchainStudent mirrors the contract's Student struct
type OnchainStudent struct {
	Name          string
	WalletAddress common.Address
	Amount        *big.Int
	HasClaimed    bool
	IsRegistered  bool
}

// ToEntity converts to the service representation
func (s OnchainStudent) ToEntity() *entities.Student {
	amount := s.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	return &entities.Student{
		Name:          s.Name,
		WalletAddress: s.WalletAddress,
		Amount:        new(big.Int).Set(amount),
		HasClaimed:    s.HasClaimed,
		IsRegistered:  s.IsRegistered,
	}
}

// ScholarshipContract reads a deployed ScholarshipFund
type ScholarshipContract struct {
	caller  ViewCaller
	address common.Address
	abi     abi.ABI
}

// NewScholarshipContract binds the read ABI to address
func NewScholarshipContract(caller ViewCaller, address common.Address) (*ScholarshipContract, error) {
	parsed, err := abi.JSON(strings.NewReader(ScholarshipFundABI))
	if err != nil {
		return nil, err
	}
	return &ScholarshipContract{caller: caller, address: address, abi: parsed}, nil
}

// ChainID reports the chain of the underlying client, or nil when the caller
// does not expose one
func (c *ScholarshipContract) ChainID() *big.Int {
	if withChain, ok := c.caller.(interface{ ChainID() *big.Int }); ok {
		return withChain.ChainID()
	}
	return nil
}

// Address returns the bound contract address
func (c *ScholarshipContract) Address() common.Address {
	return c.address
}

func (c *ScholarshipContract) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := c.caller.CallView(ctx, c.address, data)
	if err != nil {
		if r, ok := DecodeRevert(err); ok {
			return nil, fmt.Errorf("%s reverted with %s: %w", method, r, err)
		}
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	vals, err := c.abi.Unpack(method, out)
	if err != nil || len(vals) == 0 {
		return nil, fmt.Errorf("failed to decode %s result", method)
	}
	return vals, nil
}

// Owner calls owner()
func (c *ScholarshipContract) Owner(ctx context.Context) (common.Address, error) {
	vals, err := c.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	value, ok := vals[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected owner result type")
	}
	return value, nil
}

// Paused calls paused()
func (c *ScholarshipContract) Paused(ctx context.Context) (bool, error) {
	vals, err := c.call(ctx, "paused")
	if err != nil {
		return false, err
	}
	value, ok := vals[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected paused result type")
	}
	return value, nil
}

// ContractBalance calls getContractBalance()
func (c *ScholarshipContract) ContractBalance(ctx context.Context) (*big.Int, error) {
	vals, err := c.call(ctx, "getContractBalance")
	if err != nil {
		return nil, err
	}
	value, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getContractBalance result type")
	}
	return value, nil
}

// Student calls getStudent(address)
func (c *ScholarshipContract) Student(ctx context.Context, address common.Address) (*OnchainStudent, error) {
	vals, err := c.call(ctx, "getStudent", address)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(vals[0], new(OnchainStudent)).(*OnchainStudent), nil
}

// AllStudents calls getAllStudents()
func (c *ScholarshipContract) AllStudents(ctx context.Context) ([]OnchainStudent, error) {
	vals, err := c.call(ctx, "getAllStudents")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(vals[0], new([]OnchainStudent)).(*[]OnchainStudent), nil
}
