package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm names a supported AEAD.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM, the default.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
	// AlgorithmChaCha20 is ChaCha20-Poly1305, fast on CPUs without AES-NI.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

// ErrOpen is returned when a sealed value is malformed, was sealed under
// another key, or was tampered with.
var ErrOpen = errors.New("encryption: cannot open sealed value")

// Config selects the cipher for values at rest.
type Config struct {
	Enabled   bool      `yaml:"enabled" mapstructure:"enabled"`
	Key       string    `yaml:"key" mapstructure:"key"`
	Algorithm Algorithm `yaml:"algorithm" mapstructure:"algorithm"`
}

// ApplyDefaults selects AES-256-GCM when no algorithm is set.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmAESGCM
	}
}

// Validate requires a key when enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Key == "" {
		return fmt.Errorf("encryption key is required")
	}
	if !slices.Contains([]Algorithm{AlgorithmAESGCM, AlgorithmChaCha20}, c.Algorithm) {
		return fmt.Errorf("unsupported encryption algorithm %q", c.Algorithm)
	}
	return nil
}

// Cipher seals and opens byte values. The output of Seal is the nonce
// followed by the ciphertext.
type Cipher struct {
	aead cipher.AEAD
}

// New builds the configured Cipher.
func New(cfg Config) (*Cipher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key := sha256.Sum256([]byte(cfg.Key))

	var (
		aead cipher.AEAD
		err  error
	)
	switch cfg.Algorithm {
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(key[:])
	default:
		var block cipher.Block
		if block, err = aes.NewCipher(key[:]); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create %s cipher: %w", cfg.Algorithm, err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext bound to aad.
func (c *Cipher) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open decrypts a value produced by Seal with the same aad.
func (c *Cipher) Open(sealed, aad []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(sealed) < n+c.aead.Overhead() {
		return nil, ErrOpen
	}
	plaintext, err := c.aead.Open(nil, sealed[:n], sealed[n:], aad)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}
