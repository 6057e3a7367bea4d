package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

var (
	ErrInvalidKeySize = errors.New("invalid key size")
	ErrEncryption     = errors.New("encryption failed")
	ErrDecryption     = errors.New("decryption failed")
)

// sealedPrefix marks column values written by a FieldCipher.
const sealedPrefix = "enc:v1:"

// Encryptor provides a generic interface for encryption/decryption
type Encryptor interface {
	Encrypt(data []byte) ([]byte, error)
	Decrypt(data []byte) ([]byte, error)
}

// NewAESEncryptor creates a new AES-GCM encryptor
func NewAESEncryptor(key []byte) (Encryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrInvalidKeySize
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrEncryption
	}

	return &aesEncryptor{
		gcm: gcm,
	}, nil
}

type aesEncryptor struct {
	gcm cipher.AEAD
}

func (a *aesEncryptor) Encrypt(data []byte) ([]byte, error) {
	nonce := make([]byte, a.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, ErrEncryption
	}

	return a.gcm.Seal(nonce, nonce, data, nil), nil
}

func (a *aesEncryptor) Decrypt(data []byte) ([]byte, error) {
	nonceSize := a.gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrDecryption
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := a.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryption
	}

	return plaintext, nil
}

// FieldCipher seals optional text columns. A nil *FieldCipher passes values
// through unchanged, and Open passes through values that were never sealed.
type FieldCipher struct {
	enc Encryptor
}

// NewFieldCipher builds a cipher from a hex-encoded 16, 24 or 32 byte key.
// An empty key yields a nil cipher.
func NewFieldCipher(hexKey string) (*FieldCipher, error) {
	if hexKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidKeySize
	}
	enc, err := NewAESEncryptor(key)
	if err != nil {
		return nil, err
	}
	return &FieldCipher{enc: enc}, nil
}

func (f *FieldCipher) Seal(value *string) (*string, error) {
	if f == nil || value == nil {
		return value, nil
	}
	sealed, err := f.enc.Encrypt([]byte(*value))
	if err != nil {
		return nil, err
	}
	out := sealedPrefix + base64.StdEncoding.EncodeToString(sealed)
	return &out, nil
}

func (f *FieldCipher) Open(value *string) (*string, error) {
	if value == nil || !strings.HasPrefix(*value, sealedPrefix) {
		return value, nil
	}
	if f == nil {
		return nil, ErrDecryption
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(*value, sealedPrefix))
	if err != nil {
		return nil, ErrDecryption
	}
	plain, err := f.enc.Decrypt(raw)
	if err != nil {
		return nil, err
	}
	out := string(plain)
	return &out, nil
}
