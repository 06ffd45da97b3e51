package blockchain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Revert is decoded eth_call revert data
type Revert struct {
	RawHex   string `json:"rawHex"`
	Selector string `json:"selector,omitempty"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (r Revert) String() string {
	switch {
	case r.Name != "" && r.Message != "" && r.Message != r.Name:
		return r.Name + ": " + r.Message
	case r.Name != "":
		return r.Name
	case r.Selector != "":
		return "unknown error " + r.Selector
	}
	return "execution reverted"
}

func selectorHex(sig string) string {
	return "0x" + hex.EncodeToString(crypto.Keccak256([]byte(sig))[:4])
}

// Errors the ScholarshipFund contract and its OpenZeppelin bases revert with
var (
	errorStringSelector   = selectorHex("Error(string)")
	panicSelector         = selectorHex("Panic(uint256)")
	unauthorizedSelector  = selectorHex("OwnableUnauthorizedAccount(address)")
	invalidOwnerSelector  = selectorHex("OwnableInvalidOwner(address)")
	enforcedPauseSelector = selectorHex("EnforcedPause()")
	expectedPauseSelector = selectorHex("ExpectedPause()")
)

var revertHexPattern = regexp.MustCompile(`0x[0-9a-fA-F]{8,}`)

// DecodeRevert extracts revert bytes from an RPC error, either from its
// ErrorData payload or a hex blob embedded in the message.
func DecodeRevert(err error) (Revert, bool) {
	if err == nil {
		return Revert{}, false
	}
	var dataErr interface{ ErrorData() interface{} }
	if errors.As(err, &dataErr) {
		if data, ok := revertBytes(dataErr.ErrorData()); ok {
			return decodeRevertData(data), true
		}
	}
	for _, candidate := range revertHexPattern.FindAllString(err.Error(), -1) {
		if data, ok := parseHexBytes(candidate); ok {
			return decodeRevertData(data), true
		}
	}
	return Revert{}, false
}

func revertBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case string:
		return parseHexBytes(v)
	case []byte:
		if len(v) < 4 {
			return nil, false
		}
		return append([]byte(nil), v...), true
	case map[string]interface{}:
		if raw, ok := v["data"]; ok {
			return revertBytes(raw)
		}
	}
	return nil, false
}

func parseHexBytes(raw string) ([]byte, bool) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if len(value) < 8 || len(value)%2 != 0 {
		return nil, false
	}
	data, err := hex.DecodeString(value)
	if err != nil {
		return nil, false
	}
	return data, true
}

func decodeRevertData(data []byte) Revert {
	r := Revert{RawHex: "0x" + hex.EncodeToString(data)}
	if len(data) < 4 {
		return r
	}
	r.Selector = "0x" + hex.EncodeToString(data[:4])
	payload := data[4:]

	switch r.Selector {
	case errorStringSelector:
		r.Name = "Error"
		if vals, ok := unpackSingle("string", payload); ok {
			r.Message, _ = vals.(string)
		}
	case panicSelector:
		r.Name = "Panic"
		if len(payload) >= 32 {
			r.Message = fmt.Sprintf("panic code: %s", new(big.Int).SetBytes(payload[:32]).String())
		}
	case unauthorizedSelector, invalidOwnerSelector:
		r.Name = "OwnableUnauthorizedAccount"
		if r.Selector == invalidOwnerSelector {
			r.Name = "OwnableInvalidOwner"
		}
		if vals, ok := unpackSingle("address", payload); ok {
			if addr, ok := vals.(common.Address); ok {
				r.Message = addr.Hex()
			}
		}
	case enforcedPauseSelector:
		r.Name = "EnforcedPause"
	case expectedPauseSelector:
		r.Name = "ExpectedPause"
	}
	return r
}

func unpackSingle(typ string, payload []byte) (interface{}, bool) {
	t, err := abi.NewType(typ, "", nil)
	if err != nil {
		return nil, false
	}
	vals, err := abi.Arguments{{Type: t}}.Unpack(payload)
	if err != nil || len(vals) != 1 {
		return nil, false
	}
	return vals[0], true
}
