// Package crypt seals table blobs with authenticated encryption.
//
// A Cipher turns an encoded (and optionally compressed) blob into an opaque
// envelope and back. Both built-in ciphers derive a 256-bit key from the
// table's passphrase with SHA-256 and prepend a fresh random nonce to every
// envelope, so sealing the same bytes twice yields different blobs.
// Authentication means a wrong key or a tampered blob is detected on open
// instead of decoding into garbage.
//
// The plain SHA-256 derivation has no stretching; it keeps blobs opaque at
// rest but does not slow down offline guessing of weak passphrases.
package crypt

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
)

// ErrDecryption is returned when an envelope cannot be opened: wrong key,
// truncation, or tampering. The causes are deliberately indistinguishable.
var ErrDecryption = errors.New("decryption failed")

// Cipher seals and opens table blobs.
// Implementations must be safe for concurrent use.
type Cipher interface {
	// Seal encrypts and authenticates plaintext.
	Seal(plaintext []byte) ([]byte, error)

	// Open authenticates and decrypts an envelope produced by Seal. It
	// returns ErrDecryption when the envelope does not authenticate.
	Open(sealed []byte) ([]byte, error)

	// Name returns the unique name of the cipher.
	Name() string
}

func deriveKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

func sealAEAD(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypt: read nonce: %w", err)
	}
	// Envelope layout: nonce || ciphertext-with-tag.
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func openAEAD(aead cipher.AEAD, sealed []byte) ([]byte, error) {
	if len(sealed) < aead.NonceSize() {
		return nil, ErrDecryption
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryption
	}
	return plaintext, nil
}
