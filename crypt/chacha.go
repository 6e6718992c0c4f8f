package crypt

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305 is the default cipher. It is constant-time on every
// platform without hardware support, which keeps sealed tables portable.
type ChaCha20Poly1305 struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 derives a 256-bit key from the passphrase and builds
// the AEAD.
func NewChaCha20Poly1305(key string) (*ChaCha20Poly1305, error) {
	aead, err := chacha20poly1305.New(deriveKey(key))
	if err != nil {
		return nil, fmt.Errorf("crypt: %w", err)
	}
	return &ChaCha20Poly1305{aead: aead}, nil
}

// Seal encrypts and authenticates plaintext.
func (c *ChaCha20Poly1305) Seal(plaintext []byte) ([]byte, error) {
	return sealAEAD(c.aead, plaintext)
}

// Open authenticates and decrypts an envelope produced by Seal.
func (c *ChaCha20Poly1305) Open(sealed []byte) ([]byte, error) {
	return openAEAD(c.aead, sealed)
}

// Name returns the unique name of the cipher ("chacha20poly1305").
func (c *ChaCha20Poly1305) Name() string { return "chacha20poly1305" }
