package utils

import (
	"errors"
	"math/big"
	"strings"
)

var (
	// ErrInvalidAmount is returned for amounts that are not non-negative base-10 integers
	ErrInvalidAmount = errors.New("amount must be a non-negative base-10 integer")
	// ErrAmountTooLarge is returned for amounts outside the uint256 range
	ErrAmountTooLarge = errors.New("amount exceeds the uint256 range")
)

// MaxAmount is 2^256-1, the largest value the registry contract can hold
var MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ParseAmount parses an amount in the smallest unit. Signs, decimals, empty
// strings and values above MaxAmount are rejected.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidAmount
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, ErrInvalidAmount
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalidAmount
	}
	if !InRange(v) {
		return nil, ErrAmountTooLarge
	}
	return v, nil
}

// InRange reports whether v is a valid uint256 amount
func InRange(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.BitLen() <= 256
}

// IsAmount reports whether s parses with ParseAmount
func IsAmount(s string) bool {
	_, err := ParseAmount(s)
	return err == nil
}

// FormatEther renders a wei amount as a decimal ether string, trailing zeros trimmed
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)
	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))

	out := whole.String()
	if frac.Sign() != 0 {
		fs := frac.String()
		fs = strings.Repeat("0", 18-len(fs)) + fs
		out += "." + strings.TrimRight(fs, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ParseEther converts a decimal ether string ("1.5") into wei
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (frac == "" || len(frac) > 18) {
		return nil, ErrInvalidAmount
	}
	w, err := ParseAmount(whole)
	if err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(w, weiPerEther)
	if hasFrac {
		f, err := ParseAmount(frac + strings.Repeat("0", 18-len(frac)))
		if err != nil {
			return nil, err
		}
		out.Add(out, f)
	}
	if !InRange(out) {
		return nil, ErrAmountTooLarge
	}
	return out, nil
}
