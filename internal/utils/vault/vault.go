// Package vault реализует симметричное шифрование учетных данных
// аккаунтов. Шифротекст хранится в виде строки "hex(iv):hex(ciphertext)"
// (AES-256-CBC с PKCS#7), совместимой с существующими записями магазина.
package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const keySize = 32

var (
	// ErrInvalidKey возвращается при ключе неправильной длины
	ErrInvalidKey = errors.New("encryption key must be exactly 32 bytes")
	// ErrMalformedCiphertext возвращается при неразборчивом формате шифротекста
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	// ErrDecryptionFailed возвращается, когда расшифровка дает мусор
	// (неверный ключ или поврежденные данные)
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Vault шифрует и расшифровывает строки учетных данных
type Vault struct {
	key []byte
}

// New создает Vault с заданным ключом
func New(key string) (*Vault, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}
	return &Vault{key: []byte(key)}, nil
}

// Encrypt шифрует строку и возвращает ее непрозрачное представление
func (v *Vault) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("vault: failed to init cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("vault: failed to generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt расшифровывает представление, полученное из Encrypt.
// На любом некорректном входе возвращает ошибку, а не мусор.
func (v *Vault) Decrypt(encrypted string) (string, error) {
	// Hex-части не содержат ':', поэтому первый разделитель однозначен
	parts := strings.SplitN(encrypted, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: missing separator", ErrMalformedCiphertext)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: bad iv", ErrMalformedCiphertext)
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: bad ciphertext", ErrMalformedCiphertext)
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("vault: failed to init cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrDecryptionFailed
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, ErrDecryptionFailed
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrDecryptionFailed
		}
	}
	return data[:len(data)-padding], nil
}
