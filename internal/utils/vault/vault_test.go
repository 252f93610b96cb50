package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNew(t *testing.T) {
	t.Run("Valid key", func(t *testing.T) {
		v, err := New(testKey)
		require.NoError(t, err)
		assert.NotNil(t, v)
	})

	t.Run("Short key", func(t *testing.T) {
		v, err := New("too-short")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Nil(t, v)
	})

	t.Run("Long key", func(t *testing.T) {
		v, err := New(testKey + "extra")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.Nil(t, v)
	})
}

func TestVault_EncryptDecrypt(t *testing.T) {
	v, err := New(testKey)
	require.NoError(t, err)

	t.Run("Round trip", func(t *testing.T) {
		encrypted, err := v.Encrypt("user@example.com")
		require.NoError(t, err)

		decrypted, err := v.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", decrypted)
	})

	t.Run("Plaintext with separator", func(t *testing.T) {
		// Двоеточие в пароле не должно ломать формат хранения
		encrypted, err := v.Encrypt("pass:word:123")
		require.NoError(t, err)

		decrypted, err := v.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, "pass:word:123", decrypted)
	})

	t.Run("Empty plaintext", func(t *testing.T) {
		encrypted, err := v.Encrypt("")
		require.NoError(t, err)

		decrypted, err := v.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, "", decrypted)
	})

	t.Run("Unique IV per encryption", func(t *testing.T) {
		first, err := v.Encrypt("secret")
		require.NoError(t, err)
		second, err := v.Encrypt("secret")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("Storage format", func(t *testing.T) {
		encrypted, err := v.Encrypt("secret")
		require.NoError(t, err)

		parts := strings.SplitN(encrypted, ":", 2)
		require.Len(t, parts, 2)
		assert.Len(t, parts[0], 32) // hex(16 байт IV)
	})
}

func TestVault_DecryptErrors(t *testing.T) {
	v, err := New(testKey)
	require.NoError(t, err)

	t.Run("Missing separator", func(t *testing.T) {
		_, err := v.Decrypt("deadbeef")
		assert.ErrorIs(t, err, ErrMalformedCiphertext)
	})

	t.Run("Bad iv", func(t *testing.T) {
		_, err := v.Decrypt("zz:00112233445566778899aabbccddeeff")
		assert.ErrorIs(t, err, ErrMalformedCiphertext)
	})

	t.Run("Short iv", func(t *testing.T) {
		_, err := v.Decrypt("dead:00112233445566778899aabbccddeeff")
		assert.ErrorIs(t, err, ErrMalformedCiphertext)
	})

	t.Run("Ciphertext not block aligned", func(t *testing.T) {
		_, err := v.Decrypt("00112233445566778899aabbccddeeff:dead")
		assert.ErrorIs(t, err, ErrMalformedCiphertext)
	})

	t.Run("Wrong key", func(t *testing.T) {
		other, err := New("ffffffffffffffffffffffffffffffff")
		require.NoError(t, err)

		encrypted, err := v.Encrypt("secret")
		require.NoError(t, err)

		// Чужой ключ дает мусор: либо ошибка паддинга, либо не исходный текст
		decrypted, err := other.Decrypt(encrypted)
		if err != nil {
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		} else {
			assert.NotEqual(t, "secret", decrypted)
		}
	})
}
