// Package crypto provides the authenticated field codec used by the repositories.
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/monegment/monegment/pkg/codec"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrInvalidKey is returned when the configured key is not 32 bytes of base64.
	ErrInvalidKey = errors.New("encryption key must be 32 base64-encoded bytes")
	// ErrCiphertext is returned when a stored value cannot be opened.
	ErrCiphertext = errors.New("invalid ciphertext")
)

// XChaCha seals values with XChaCha20-Poly1305. The stored form is base64(nonce || sealed).
type XChaCha struct {
	key []byte
}

// NewCodec returns an XChaCha codec for a base64 key, or a plain codec when the key is empty.
func NewCodec(b64Key string) (codec.Codec, error) {
	if b64Key == "" {
		return codec.Plain{}, nil
	}
	key, err := base64.StdEncoding.DecodeString(b64Key)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	return &XChaCha{key: key}, nil
}

func (c *XChaCha) Encode(plain string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *XChaCha) Decode(stored string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", ErrCiphertext
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrCiphertext
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrCiphertext
	}
	return string(plain), nil
}
