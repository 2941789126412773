package utils

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var newUUIDv7 = uuid.NewV7

// GenerateUUIDv7 generates a new UUID v7
func GenerateUUIDv7() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		// Fallback to v4 if v7 fails (highly unlikely)
		return uuid.New()
	}
	return id
}

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var readRandom = rand.Read

// GenerateReference returns a human readable reference such as TRD-7KQ2MX9A.
func GenerateReference(prefix string) string {
	buf := make([]byte, 8)
	if _, err := readRandom(buf); err != nil {
		id := strings.ReplaceAll(GenerateUUIDv7().String(), "-", "")
		return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(id[len(id)-8:]))
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return prefix + "-" + string(buf)
}
