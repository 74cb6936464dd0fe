// Package vault encrypts free-text secrets before they reach the store.
// Ciphertexts are nacl/secretbox with a random nonce prepended; the key
// is derived from the configured vault secret.
package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrDecrypt = errors.New("vault: cannot decrypt entry")

type Cipher struct {
	key [32]byte
}

func NewCipher(secret string) (*Cipher, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("vault secret must be at least 16 characters")
	}
	c := &Cipher{key: sha256.Sum256([]byte(secret))}
	return c, nil
}

func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key), nil
}

func (c *Cipher) Decrypt(data []byte) (string, error) {
	if len(data) < nonceSize+secretbox.Overhead {
		return "", ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])
	plain, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
