// Package aesgcm wraps crypto/cipher's AES-GCM AEAD for the fixed-size,
// externally-derived keys and ivs used throughout levelcrypto and
// hintcrypto, following the Seal/Open pattern of drand-drand's
// ecies.Encrypt/Decrypt (ecies/ecies.go) adapted to non-standard (non-12
// byte) nonce sizes via cipher.NewGCMWithNonceSize.
package aesgcm

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Seal encrypts plaintext under key using iv as the GCM nonce, returning
// ciphertext with the 16-byte authentication tag appended. iv may be any
// length; every caller in this module reuses a derived salt as the nonce
// rather than generating a fresh one, so nonce reuse across distinct
// (key, iv) pairs must never happen by construction.
func Seal(key, iv, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key, len(iv))
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, iv, plaintext, nil), nil
}

// Open decrypts and authenticates ciphertextAndTag, the inverse of Seal.
func Open(key, iv, ciphertextAndTag []byte) ([]byte, error) {
	aead, err := newAEAD(key, len(iv))
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, iv, ciphertextAndTag, nil)
}

func newAEAD(key []byte, nonceSize int) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aesgcm: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("aesgcm: %w", err)
	}
	return aead, nil
}
