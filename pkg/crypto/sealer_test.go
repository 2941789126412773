package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestCodeSealer_RoundTrip(t *testing.T) {
	s, err := NewCodeSealer(testKey)
	require.NoError(t, err)

	sealed, err := s.Seal("ABCD-1234-EFGH")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "ABCD")

	again, err := s.Seal("ABCD-1234-EFGH")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234-EFGH", plain)
}

func TestNewCodeSealer_InvalidKey(t *testing.T) {
	_, err := NewCodeSealer("short")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = NewCodeSealer(strings.Repeat("zz", 32))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestCodeSealer_OpenFailures(t *testing.T) {
	s, err := NewCodeSealer(testKey)
	require.NoError(t, err)

	_, err = s.Open("%%%")
	assert.ErrorIs(t, err, ErrMalformedCode)

	other, err := NewCodeSealer(strings.Repeat("ab", 32))
	require.NoError(t, err)
	sealed, err := other.Seal("secret")
	require.NoError(t, err)
	_, err = s.Open(sealed)
	assert.ErrorIs(t, err, ErrOpenFailed)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestCodeSealer_NonceFailure(t *testing.T) {
	orig := randomReader
	t.Cleanup(func() { randomReader = orig })
	randomReader = failingReader{}

	s, err := NewCodeSealer(testKey)
	require.NoError(t, err)
	_, err = s.Seal("x")
	assert.Error(t, err)
}
