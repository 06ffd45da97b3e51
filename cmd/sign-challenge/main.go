// Command sign-challenge signs a sign-in challenge with a wallet key so
// scripts can call POST /api/v1/auth/verify without a browser wallet.
//
//	curl -s "$API/auth/challenge?address=$ADDR" | jq -r .message | sign-challenge
//
// The key is read from the first argument or SIGNER_PRIVATE_KEY.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"scholarship-fund.backend/pkg/crypto"
)

var (
	getenvFn           = os.Getenv
	fatalfFn           = log.Fatalf
	stdin    io.Reader = os.Stdin
	stdout   io.Writer = os.Stdout
)

type verifyPayload struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

func resolveKey(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if key := getenvFn("SIGNER_PRIVATE_KEY"); key != "" {
		return key, nil
	}
	return "", errors.New("private key required: pass it as an argument or set SIGNER_PRIVATE_KEY")
}

func run(args []string, in io.Reader, out io.Writer) error {
	keyHex, err := resolveKey(args)
	if err != nil {
		return err
	}
	key, err := crypto.ParsePrivateKey(keyHex)
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read challenge: %w", err)
	}
	// shells and jq append a newline the server never issued
	message := strings.TrimRight(string(raw), "\r\n")
	if message == "" {
		return errors.New("empty challenge on stdin")
	}

	signature, err := crypto.SignMessage(message, key)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(verifyPayload{
		Address:   ethcrypto.PubkeyToAddress(key.PublicKey).Hex(),
		Signature: signature,
	})
}

func main() {
	if err := run(os.Args[1:], stdin, stdout); err != nil {
		fatalfFn("sign-challenge: %v", err)
	}
}
