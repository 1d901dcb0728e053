package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"sharedcal/internal/domain"
)

type aesGCMCodec struct {
	aead cipher.AEAD
}

// NewAESGCMCodec returns a DescriptionCodec that seals descriptions with
// AES-GCM. key must be a valid AES length (16/24/32 bytes).
func NewAESGCMCodec(key []byte) (domain.DescriptionCodec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &aesGCMCodec{aead: aead}, nil
}

// Encrypt seals plaintext and returns a base64-encoded nonce||ciphertext
// payload. Empty input is returned as-is without touching the primitive.
func (c *aesGCMCodec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	// AES-GCM requires a unique nonce per encryption under the same key.
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	ciphertext := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	payload := append(nonce, ciphertext...)
	return base64.RawStdEncoding.EncodeToString(payload), nil
}

// Decrypt opens a stored payload. Values the codec cannot open go through
// legacyCompatibleDecrypt instead of raising an error, so callers cannot
// detect decrypt failure. Empty input is returned as-is.
func (c *aesGCMCodec) Decrypt(stored string) string {
	if stored == "" {
		return ""
	}
	plaintext, err := c.open(stored)
	if err != nil {
		return legacyCompatibleDecrypt(stored)
	}
	return plaintext
}

func (c *aesGCMCodec) open(stored string) (string, error) {
	payload, err := base64.RawStdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	nonceSize := c.aead.NonceSize()
	if len(payload) < nonceSize {
		return "", fmt.Errorf("payload is too short")
	}
	// Payload format is nonce || ciphertext.
	nonce := payload[:nonceSize]
	ciphertext := payload[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open payload: %w", err)
	}
	return string(plaintext), nil
}

// legacyCompatibleDecrypt is the fail-open policy for rows the codec cannot
// open: the stored value is treated as legacy plaintext and passed through
// unchanged. Tightening this to a hard error is a deliberate policy change,
// not a local fix.
func legacyCompatibleDecrypt(stored string) string {
	return stored
}
