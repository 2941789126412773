// Command keygen prints fresh secrets for a .env file.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"cardswap.backend/pkg/crypto"
)

const cardCodeKeyHexLen = 64

func generateRandomHex(n int) (string, error) {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validateInputs(jwtHexLen int) error {
	if jwtHexLen < 32 || jwtHexLen%2 != 0 {
		return fmt.Errorf("invalid jwt-hex-len: %d (must be even and at least 32)", jwtHexLen)
	}
	return nil
}

// buildSecrets returns a card code key the sealer accepts and a JWT secret.
func buildSecrets(jwtHexLen int) (cardKey, jwtSecret string, err error) {
	cardKey, err = generateRandomHex(cardCodeKeyHexLen)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate card code key: %w", err)
	}
	if _, err := crypto.NewCodeSealer(cardKey); err != nil {
		return "", "", err
	}
	jwtSecret, err = generateRandomHex(jwtHexLen)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return cardKey, jwtSecret, nil
}

func runKeygen(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	jwtHexLen := fs.Int("jwt-hex-len", 64, "random hex length of the JWT secret (even, >= 32)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validateInputs(*jwtHexLen); err != nil {
		return err
	}

	cardKey, jwtSecret, err := buildSecrets(*jwtHexLen)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Generated secrets")
	_, _ = fmt.Fprintf(out, "CARD_CODE_KEY=%s\n", cardKey)
	_, _ = fmt.Fprintf(out, "JWT_SECRET=%s\n", jwtSecret)
	return nil
}

func main() {
	if err := runKeygen(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
