// Package crypto seals gift card redemption codes at rest.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	ErrInvalidKey    = errors.New("card code key must be 32 bytes hex encoded")
	ErrMalformedCode = errors.New("sealed code is malformed")
	ErrOpenFailed    = errors.New("sealed code could not be opened")
)

var randomReader io.Reader = rand.Reader

// CodeSealer encrypts and authenticates card codes with a shared key.
type CodeSealer struct {
	key [keySize]byte
}

// NewCodeSealer builds a sealer from a hex encoded 32 byte key.
func NewCodeSealer(hexKey string) (*CodeSealer, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) != keySize {
		return nil, ErrInvalidKey
	}
	s := &CodeSealer{}
	copy(s.key[:], raw)
	return s, nil
}

// Seal returns base64(nonce || box).
func (s *CodeSealer) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(randomReader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *CodeSealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrMalformedCode
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpenFailed
	}
	return string(plain), nil
}
