// SPDX-License-Identifier: Apache-2.0

// Package crypto implements the vault codec: AES-256-CBC encryption of
// document bytes with a random IV prefixed to the ciphertext, in both
// whole-buffer and streaming forms.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// ivSize is the length of the IV prefix, equal to the AES block size.
const ivSize = aes.BlockSize

// ErrDecryptionFailed is returned whenever a blob cannot be decrypted:
// it is shorter than the IV, its ciphertext is not block-aligned, or the
// padding does not validate (corrupted data or wrong key). Callers match
// it with [errors.Is]; the wrapped detail stays out of client responses.
var ErrDecryptionFailed = errors.New("decryption failed")

// ErrInvalidKeySize is returned by [NewVaultCipher] when the key is not
// exactly [KeySize] bytes.
var ErrInvalidKeySize = errors.New("encryption key must be 32 bytes")

// vaultCipher is the private implementation of [VaultCipher].
type vaultCipher struct {
	key []byte
}

// NewVaultCipher constructs a [VaultCipher] from a 32-byte key. There is no
// built-in fallback key: configuration validation fails startup when no key
// is provided, so a nil or short key never reaches this point in a healthy
// deployment.
func NewVaultCipher(key []byte) (VaultCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeySize, len(key))
	}

	// Copy so the caller cannot mutate the key after construction.
	k := make([]byte, KeySize)
	copy(k, key)

	return &vaultCipher{key: k}, nil
}

// Encrypt implements [VaultCipher]. It generates a fresh random IV, pads the
// plaintext to a whole number of blocks (PKCS#7), encrypts in CBC mode, and
// returns blob = IV ‖ ciphertext.
func (c *vaultCipher) Encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext)

	blob := make([]byte, ivSize+len(padded))
	iv := blob[:ivSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(blob[ivSize:], padded)

	return blob, nil
}

// Decrypt implements [VaultCipher]. It splits the IV off the front of blob,
// decrypts the remainder, and strips the padding. All failure modes are
// surfaced as [ErrDecryptionFailed]; a wrong key manifests as a padding
// validation error rather than garbage output.
func (c *vaultCipher) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < ivSize {
		return nil, fmt.Errorf("%w: blob shorter than IV (%d bytes)", ErrDecryptionFailed, len(blob))
	}

	iv, ciphertext := blob[:ivSize], blob[ivSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of the block size", ErrDecryptionFailed, len(ciphertext))
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext)
}

// pkcs7Pad appends 1..16 padding bytes, each holding the padding length.
// A block-aligned input gets a full block of padding so the length is
// always recoverable.
func pkcs7Pad(data []byte) []byte {
	padLen := aes.BlockSize - len(data)%aes.BlockSize
	return append(append(make([]byte, 0, len(data)+padLen), data...), bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// pkcs7Unpad validates and removes the padding written by pkcs7Pad. Any
// inconsistency means the blob was corrupted or decrypted under the wrong
// key, and is reported as [ErrDecryptionFailed].
func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length %d", ErrDecryptionFailed, len(data))
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecryptionFailed)
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: invalid padding", ErrDecryptionFailed)
		}
	}

	return data[:len(data)-padLen], nil
}
