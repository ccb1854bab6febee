package cryptox

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
)

// ErrDecodeFailure is the single error returned for any ciphertext that
// cannot be decoded: wrong encoding, truncated data, a failed auth tag, or
// garbage plaintext. Callers must not be able to distinguish which.
var ErrDecodeFailure = errors.New("cryptox: decode failure")

// Codec is an authenticated symmetric codec for small JSON payloads.
// Each Codec owns one AES-256-GCM key derived from its secret, so two Codecs
// built from different secrets cannot read each other's output. Encryption
// uses a random nonce per call, meaning the same payload never encrypts to
// the same string twice.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives an AES-256 key from the secret via SHA-256 and returns a
// ready-to-use Codec. The secret may be any non-empty string.
func NewCodec(secret string) (Codec, error) {
	if secret == "" {
		return Codec{}, errors.New("cryptox: codec secret must not be empty")
	}

	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return Codec{}, fmt.Errorf("cryptox: failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Codec{}, fmt.Errorf("cryptox: failed to create GCM: %w", err)
	}

	return Codec{aead: aead}, nil
}

// EncryptJSON marshals v to JSON, encrypts it with AES-256-GCM, and returns
// a base64url string of [nonce][ciphertext][auth tag].
func (c Codec) EncryptJSON(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to marshal payload: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}

	// gcm.Seal appends ciphertext and auth tag to the nonce
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// DecryptJSON reverses EncryptJSON into v. Any failure along the way comes
// back as ErrDecodeFailure with no further detail.
func (c Codec) DecryptJSON(encoded string, v any) error {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return ErrDecodeFailure
	}

	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return ErrDecodeFailure
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrDecodeFailure
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return ErrDecodeFailure
	}
	return nil
}
