package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

var (
	ErrInvalidKeySize = errors.New("invalid key size")
	ErrEncryption     = errors.New("encryption failed")
	ErrDecryption     = errors.New("decryption failed")
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Cipher seals and opens payloads with AES-GCM. The IV is kept separate from
// the ciphertext so callers can persist the two in distinct columns.
type Cipher struct {
	gcm cipher.AEAD
}

func NewCipher(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrInvalidKeySize
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrEncryption
	}

	return &Cipher{gcm: gcm}, nil
}

// Seal encrypts plaintext under a freshly generated IV and returns both.
func (c *Cipher) Seal(plaintext []byte) (ciphertext, iv []byte, err error) {
	iv = make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, ErrEncryption
	}

	return c.gcm.Seal(nil, iv, plaintext, nil), iv, nil
}

// Open decrypts ciphertext with the IV it was sealed under.
func (c *Cipher) Open(ciphertext, iv []byte) ([]byte, error) {
	if len(iv) != c.gcm.NonceSize() {
		return nil, ErrDecryption
	}

	plaintext, err := c.gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryption
	}

	return plaintext, nil
}

// GenerateKey returns fresh AES-256 key material.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
