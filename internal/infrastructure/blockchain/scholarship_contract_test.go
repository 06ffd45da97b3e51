package blockchain

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	ownerAddr    = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	studentAddr  = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

type studentTuple struct {
	Name          string
	WalletAddress common.Address
	Amount        *big.Int
	HasClaimed    bool
	IsRegistered  bool
}

// fakeChain answers eth_call by method selector using the contract ABI
func fakeChain(t *testing.T, answers map[string][]interface{}) *EVMClient {
	t.Helper()
	parsed, err := abi.JSON(bytes.NewReader([]byte(ScholarshipFundABI)))
	require.NoError(t, err)

	return NewEVMClientWithCallView(big.NewInt(31337), func(_ context.Context, to common.Address, data []byte) ([]byte, error) {
		require.Equal(t, contractAddr, to)
		method, err := parsed.MethodById(data[:4])
		if err != nil {
			return nil, err
		}
		vals, ok := answers[method.Name]
		if !ok {
			return nil, errors.New("execution reverted")
		}
		return method.Outputs.Pack(vals...)
	})
}

func TestScholarshipContract_Reads(t *testing.T) {
	ann := studentTuple{Name: "Ann", WalletAddress: studentAddr, Amount: big.NewInt(1e18), HasClaimed: true, IsRegistered: true}
	client := fakeChain(t, map[string][]interface{}{
		"owner":              {ownerAddr},
		"paused":             {true},
		"getContractBalance": {big.NewInt(42)},
		"getStudent":         {ann},
		"getAllStudents":     {[]studentTuple{ann}},
	})

	c, err := NewScholarshipContract(client, contractAddr)
	require.NoError(t, err)
	assert.Equal(t, contractAddr, c.Address())
	ctx := context.Background()

	owner, err := c.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, ownerAddr, owner)

	paused, err := c.Paused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)

	bal, err := c.ContractBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "42", bal.String())

	s, err := c.Student(ctx, studentAddr)
	require.NoError(t, err)
	assert.Equal(t, "Ann", s.Name)
	assert.Equal(t, studentAddr, s.WalletAddress)
	assert.True(t, s.HasClaimed)

	e := s.ToEntity()
	assert.Equal(t, "1000000000000000000", e.Amount.String())
	assert.True(t, e.IsRegistered)

	all, err := c.AllStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ann", all[0].Name)
}

func TestScholarshipContract_CallErrors(t *testing.T) {
	c, err := NewScholarshipContract(fakeChain(t, map[string][]interface{}{}), contractAddr)
	require.NoError(t, err)

	_, err = c.Owner(context.Background())
	require.ErrorContains(t, err, "owner: execution reverted")

	garbage := NewEVMClientWithCallView(nil, func(context.Context, common.Address, []byte) ([]byte, error) {
		return []byte{0x01}, nil
	})
	c, err = NewScholarshipContract(garbage, contractAddr)
	require.NoError(t, err)
	_, err = c.ContractBalance(context.Background())
	require.ErrorContains(t, err, "failed to decode getContractBalance result")
}
