package roster

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := r
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &values))
	}
	buf := &bytes.Buffer{}
	_, err := f.WriteTo(buf)
	require.NoError(t, err)
	return buf
}

const (
	annAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	bobAddr = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

func TestParse_ValidRoster(t *testing.T) {
	buf := workbook(t,
		[]interface{}{"Name", "Address", "Amount"},
		[]interface{}{"Ann", annAddr, "1000000000000000000"},
		[]interface{}{"", "", ""},
		[]interface{}{" Bob ", bobAddr, "5"},
	)

	in, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bob"}, in.Names)
	assert.Equal(t, []string{annAddr, bobAddr}, in.Addresses)
	assert.Equal(t, []string{"1000000000000000000", "5"}, in.Amounts)
}

func TestParse_RejectsBadRows(t *testing.T) {
	cases := []struct {
		name string
		rows [][]interface{}
		want string
	}{
		{
			name: "bad address",
			rows: [][]interface{}{{"name", "address", "amount"}, {"Ann", annAddr, "1"}, {"Bob", "0x123", "1"}},
			want: "row 3: address",
		},
		{
			name: "negative amount",
			rows: [][]interface{}{{"name", "address", "amount"}, {"Ann", annAddr, "-1"}},
			want: "row 2: amount",
		},
		{
			name: "missing amount",
			rows: [][]interface{}{{"name", "address", "amount"}, {"Ann", annAddr}},
			want: "row 2: amount is required",
		},
		{
			name: "wrong header",
			rows: [][]interface{}{{"student", "wallet", "wei"}, {"Ann", annAddr, "1"}},
			want: "header must be name,address,amount",
		},
		{
			name: "no students",
			rows: [][]interface{}{{"name", "address", "amount"}},
			want: "no students",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(workbook(t, tc.rows...))
			require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
			appErr := domainerrors.FromError(err)
			assert.Contains(t, appErr.Message, tc.want)
		})
	}
}

func TestParse_NotAWorkbook(t *testing.T) {
	_, err := Parse(bytes.NewBufferString("name,address,amount\n"))
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestExport_RoundTripsThroughParse(t *testing.T) {
	students := []*entities.Student{
		{Name: "Ann", WalletAddress: common.HexToAddress(annAddr), Amount: big.NewInt(10), IsRegistered: true},
		{Name: "Bob", WalletAddress: common.HexToAddress(bobAddr), Amount: big.NewInt(20), HasClaimed: true, IsRegistered: true},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, Export(buf, students))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	claimed, err := f.GetCellValue(SheetName, "D3")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", claimed)

	in, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bob"}, in.Names)
	assert.Equal(t, []string{annAddr, bobAddr}, in.Addresses)
	assert.Equal(t, []string{"10", "20"}, in.Amounts)
}
