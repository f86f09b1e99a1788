package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundtrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	require.Len(t, key, KeySize)

	c, err := NewCipher(key)
	require.NoError(t, err)

	plaintext := []byte(`{"patient_id":42}`)
	ciphertext, iv, err := c.Seal(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	out, err := c.Open(ciphertext, iv)
	require.NoError(t, err)
	assert.Equal(t, plaintext, out)
}

func TestSealGeneratesFreshIV(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewCipher(key)
	require.NoError(t, err)

	_, iv1, err := c.Seal([]byte("payload"))
	require.NoError(t, err)
	_, iv2, err := c.Seal([]byte("payload"))
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewCipher(key)
	require.NoError(t, err)

	ciphertext, iv, err := c.Seal([]byte("payload"))
	require.NoError(t, err)

	ciphertext[0] ^= 0xff
	_, err = c.Open(ciphertext, iv)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestOpenRejectsWrongIV(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewCipher(key)
	require.NoError(t, err)

	ciphertext, iv, err := c.Seal([]byte("payload"))
	require.NoError(t, err)

	iv[0] ^= 0xff
	_, err = c.Open(ciphertext, iv)
	assert.ErrorIs(t, err, ErrDecryption)

	_, err = c.Open(ciphertext, iv[:4])
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	key1, err := GenerateKey()
	require.NoError(t, err)
	key2, err := GenerateKey()
	require.NoError(t, err)

	c1, err := NewCipher(key1)
	require.NoError(t, err)
	c2, err := NewCipher(key2)
	require.NoError(t, err)

	ciphertext, iv, err := c1.Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = c2.Open(ciphertext, iv)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestNewCipherRejectsBadKeySize(t *testing.T) {
	_, err := NewCipher([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}
