// Package crypto implements the field-level cipher and password hashing
// used by the credential store and token service.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrEmptySecret       = errors.New("encryption secret must not be empty")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

const (
	keyLen  = 32 // AES-256
	saltLen = 16

	kdfIterations = 4096
)

// kdfSalt is a fixed derivation label, not a secret. The cipher must be
// fully determined by the configured secret so that ciphertexts remain
// stable across restarts; see FieldCipher.
var kdfSalt = []byte("e-libro.fieldcipher.v1")

// FieldCipher encrypts and decrypts individual document fields with
// AES-256-CBC under a fixed key and IV derived from one configured secret.
//
// The fixed IV makes encryption deterministic: the same plaintext always
// maps to the same base64 ciphertext. That is required — not an oversight —
// because encrypted emails and refresh tokens are used as equality lookup
// keys in the store. Do not replace this with a randomized mode without
// also redesigning those lookups.
type FieldCipher struct {
	block cipher.Block
	iv    []byte
}

// NewFieldCipher derives the AES key and IV from secret via PBKDF2.
func NewFieldCipher(secret string) (*FieldCipher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	material := pbkdf2.Key([]byte(secret), kdfSalt, kdfIterations, keyLen+aes.BlockSize, sha256.New)
	block, err := aes.NewCipher(material[:keyLen])
	if err != nil {
		return nil, err
	}
	return &FieldCipher{block: block, iv: material[keyLen:]}, nil
}

// Encrypt returns the base64-encoded AES-CBC ciphertext of plaintext.
func (c *FieldCipher) Encrypt(plaintext string) string {
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out)
}

// Decrypt reverses Encrypt. It fails on malformed base64, on ciphertext
// that is not block-aligned, and on bad padding.
func (c *FieldCipher) Decrypt(encoded string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrInvalidCiphertext
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, ct)
	unpadded, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(unpadded), nil
}

// NewSalt returns a fresh hex-encoded 16-byte salt.
func NewSalt() (string, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashPassword returns hex(SHA-256(password + salt)).
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword checks password against the stored hash and salt.
func VerifyPassword(password, salt, expected string) bool {
	got := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, ErrInvalidCiphertext
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, ErrInvalidCiphertext
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, ErrInvalidCiphertext
		}
	}
	return b[:len(b)-n], nil
}
