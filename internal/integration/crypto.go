package integration

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidKey indicates a key of the wrong length for AES-256.
var ErrInvalidKey = errors.New("encryption key must be 32 bytes")

// Cipher seals and opens whole properties blobs with AES-256-GCM. Every
// seal uses a fresh nonce, so the same map never produces the same
// ciphertext twice.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a blob cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Seal serializes and encrypts the whole properties map, returning the
// ciphertext and the nonce used. Partial writes are not possible: callers
// must read, mutate and rewrite the full map.
func (c *Cipher) Seal(props Properties) (blob, nonce []byte, err error) {
	plain, err := json.Marshal(props)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal properties: %w", err)
	}
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nil, nonce, plain, nil), nonce, nil
}

// Open decrypts and deserializes a blob produced by Seal. A nil blob
// yields an empty map, matching lazy initialization on first access.
func (c *Cipher) Open(blob, nonce []byte) (Properties, error) {
	if len(blob) == 0 {
		return Properties{}, nil
	}
	plain, err := c.aead.Open(nil, nonce, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt properties: %w", err)
	}
	props := Properties{}
	if err := json.Unmarshal(plain, &props); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return props, nil
}
