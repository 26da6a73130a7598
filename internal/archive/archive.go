// Package archive seals board exports with a passphrase
package archive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize          = 32 // AES-256
	nonceSize        = 12 // GCM standard nonce size
	saltSize         = 16
	pbkdf2Iterations = 100000
)

// Format marks a sealed envelope
const Format = "taskboard-sealed"

// Version of the envelope layout
const Version = 1

var (
	// ErrWrongPassphrase is returned when a sealed export cannot be decrypted
	ErrWrongPassphrase = errors.New("decryption failed: wrong passphrase or corrupted data")
	// ErrEmptyPassphrase is returned when sealing or opening without a passphrase
	ErrEmptyPassphrase = errors.New("passphrase is empty")
)

// Envelope is the on-disk form of a sealed export
type Envelope struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
	Salt    string `json:"salt"`
	Data    string `json:"data"` // base64(nonce || ciphertext)
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts an export document into an envelope
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// nonce is prepended to the ciphertext
	sealed := gcm.Seal(nonce, nonce, plaintext, nil)

	return json.MarshalIndent(Envelope{
		Format:  Format,
		Version: Version,
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Data:    base64.StdEncoding.EncodeToString(sealed),
	}, "", "  ")
}

// IsSealed reports whether data is an envelope
func IsSealed(data []byte) bool {
	var header struct {
		Format string `json:"format"`
	}
	return json.Unmarshal(data, &header) == nil && header.Format == Format
}

// Open decrypts an envelope. Anything that is not an envelope is returned
// unchanged, so plain exports pass through.
func Open(data []byte, passphrase string) ([]byte, error) {
	if !IsSealed(data) {
		return data, nil
	}
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid envelope salt: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid envelope data: %w", err)
	}
	if len(sealed) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}
