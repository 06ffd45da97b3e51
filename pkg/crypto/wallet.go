package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignature is returned for malformed or unrecoverable signatures
var ErrInvalidSignature = errors.New("invalid signature")

var randomRead = rand.Read

// GenerateRandomToken generates a random token of specified length
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// ChallengeMessage builds the sign-in text a wallet signs with personal_sign
func ChallengeMessage(address common.Address, nonce string) string {
	return "Sign in to Scholarship Fund\nAddress: " + address.Hex() + "\nNonce: " + nonce
}

// RecoverAddress returns the signer of an EIP-191 personal message.
// Both 0/1 and 27/28 recovery ids are accepted.
func RecoverAddress(message, signatureHex string) (common.Address, error) {
	sig, err := hexutil.Decode(ensure0x(signatureHex))
	if err != nil || len(sig) != ethcrypto.SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}
	if sig[ethcrypto.RecoveryIDOffset] >= 27 {
		sig[ethcrypto.RecoveryIDOffset] -= 27
	}

	pub, err := ethcrypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// SignMessage produces a 65-byte personal_sign signature with V in {27, 28}
func SignMessage(message string, key *ecdsa.PrivateKey) (string, error) {
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", err
	}
	sig[ethcrypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// ParsePrivateKey reads a hex encoded secp256k1 key with or without 0x
func ParsePrivateKey(keyHex string) (*ecdsa.PrivateKey, error) {
	return ethcrypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(keyHex), "0x"))
}

func ensure0x(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return "0x" + s[2:]
	}
	return "0x" + s
}
