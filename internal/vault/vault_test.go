package vault

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewCipher("a-vault-secret-of-decent-length")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	box, err := c.Encrypt("hunter2")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(box, []byte("hunter2")) {
		t.Fatal("ciphertext leaks the plaintext")
	}

	plain, err := c.Decrypt(box)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "hunter2" {
		t.Fatalf("round trip = %q, want hunter2", plain)
	}
}

func TestEncryptUsesFreshNonces(t *testing.T) {
	c, _ := NewCipher("a-vault-secret-of-decent-length")

	a, _ := c.Encrypt("same input")
	b, _ := c.Encrypt("same input")
	if bytes.Equal(a, b) {
		t.Fatal("two encryptions of the same input must differ")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	c1, _ := NewCipher("a-vault-secret-of-decent-length")
	c2, _ := NewCipher("a-different-secret-entirely!")

	box, _ := c1.Encrypt("secret")
	if _, err := c2.Decrypt(box); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("wrong-key decrypt error = %v, want ErrDecrypt", err)
	}
}

func TestDecryptTruncated(t *testing.T) {
	c, _ := NewCipher("a-vault-secret-of-decent-length")
	if _, err := c.Decrypt([]byte("short")); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("truncated decrypt error = %v, want ErrDecrypt", err)
	}
}

func TestNewCipherRejectsShortSecret(t *testing.T) {
	if _, err := NewCipher("tiny"); err == nil {
		t.Fatal("short secret accepted")
	}
}
