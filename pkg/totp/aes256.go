package totp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// AESKeySize is the key length required for AES-256.
const AESKeySize = 32

// SecretBox seals TOTP secrets for storage with AES-256-GCM.
// Ciphertext layout is nonce||sealed, base64 encoded.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox builds a SecretBox from a raw 32-byte key.
func NewSecretBox(key []byte) (*SecretBox, error) {
	if len(key) != AESKeySize {
		return nil, ErrInvalidEncryptionKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SecretBox{aead: aead}, nil
}

// NewSecretBoxFromConfig decodes Config.EncryptionKey and builds a SecretBox.
func NewSecretBoxFromConfig(cfg Config) (*SecretBox, error) {
	key, err := DecodeEncryptionKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	return NewSecretBox(key)
}

// Encrypt seals plainText.
func (b *SecretBox) Encrypt(plainText string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrFailedToEncryptSecret, err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (b *SecretBox) Decrypt(cipherTextBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(cipherTextBase64)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}
	nonceSize := b.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.Join(ErrFailedToDecryptSecret, ErrInvalidCipherTooShort)
	}
	plain, err := b.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", errors.Join(ErrFailedToDecryptSecret, err)
	}
	return string(plain), nil
}

// GenerateEncodedEncryptionKey returns a random AES-256 key, base64 encoded,
// suitable for TOTP_ENCRYPTION_KEY.
func GenerateEncodedEncryptionKey() (string, error) {
	key := make([]byte, AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Join(ErrFailedToGenerateEncryptionKey, err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// DecodeEncryptionKey parses a base64 key and checks its length.
func DecodeEncryptionKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrEncryptionKeyNotSet)
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, err)
	}
	if len(key) != AESKeySize {
		return nil, errors.Join(ErrFailedToLoadEncryptionKey, ErrInvalidEncryptionKeyLength)
	}
	return key, nil
}
