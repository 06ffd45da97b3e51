package utils

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("1000000000000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000000000", v.String())

	v, err = ParseAmount(" 0 ")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	for _, bad := range []string{"", "-1", "+1", "1.5", "0x10", "1e18", "abc"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
		assert.False(t, IsAmount(bad), bad)
	}
}

func TestParseAmount_Uint256Bound(t *testing.T) {
	max := MaxAmount.String()
	require.Len(t, max, 78)

	v, err := ParseAmount(max)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(MaxAmount))
	assert.True(t, InRange(v))

	above := new(big.Int).Add(MaxAmount, big.NewInt(1)).String()
	for _, bad := range []string{above, strings.Repeat("9", 100)} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrAmountTooLarge)
		assert.False(t, IsAmount(bad))
	}

	assert.False(t, InRange(nil))
	assert.False(t, InRange(big.NewInt(-1)))

	_, err = ParseEther(strings.Repeat("9", 70))
	assert.ErrorIs(t, err, ErrAmountTooLarge)
}

func TestFormatAndParseEther(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, "1", FormatEther(oneEth))
	assert.Equal(t, "0", FormatEther(nil))
	assert.Equal(t, "1.5", FormatEther(new(big.Int).Add(oneEth, new(big.Int).Div(oneEth, big.NewInt(2)))))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
	assert.Equal(t, "-2", FormatEther(new(big.Int).Mul(oneEth, big.NewInt(-2))))

	v, err := ParseEther("2.0")
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(oneEth, big.NewInt(2)), v)

	v, err = ParseEther(".25")
	require.NoError(t, err)
	assert.Equal(t, "250000000000000000", v.String())

	for _, bad := range []string{"1.", "1.0000000000000000001", "x", "-1"} {
		_, err := ParseEther(bad)
		assert.Error(t, err, bad)
	}
}
