// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := io.ReadFull(rand.Reader, key)
	require.NoError(t, err)
	return key
}

func newTestCipher(t *testing.T) VaultCipher {
	t.Helper()
	c, err := NewVaultCipher(testKey(t))
	require.NoError(t, err)
	return c
}

func TestNewVaultCipher_RejectsBadKeySizes(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := NewVaultCipher(make([]byte, size))
		require.ErrorIs(t, err, ErrInvalidKeySize, "key size %d must be rejected", size)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	// Sizes around block boundaries plus a multi-chunk payload.
	sizes := []int{0, 1, 15, 16, 17, 31, 32, 1024, streamChunkSize + 7}
	for _, size := range sizes {
		plaintext := make([]byte, size)
		_, err := io.ReadFull(rand.Reader, plaintext)
		require.NoError(t, err)

		blob, err := c.Encrypt(plaintext)
		require.NoError(t, err, "size %d", size)

		// Blob layout: IV + at least one padded block, block-aligned.
		require.GreaterOrEqual(t, len(blob), aes.BlockSize*2, "size %d", size)
		require.Zero(t, (len(blob)-aes.BlockSize)%aes.BlockSize, "size %d", size)

		decrypted, err := c.Decrypt(blob)
		require.NoError(t, err, "size %d", size)
		require.True(t, bytes.Equal(plaintext, decrypted), "round-trip mismatch at size %d", size)
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	c := newTestCipher(t)
	plaintext := []byte("same plaintext, different blobs")

	first, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	second, err := c.Encrypt(plaintext)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(first[:aes.BlockSize], second[:aes.BlockSize]), "IVs must differ")
	assert.False(t, bytes.Equal(first, second), "full blobs must differ")
}

func TestDecrypt_RejectsCorruptBlobs(t *testing.T) {
	c := newTestCipher(t)

	t.Run("shorter than IV", func(t *testing.T) {
		_, err := c.Decrypt(make([]byte, aes.BlockSize-1))
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("empty ciphertext", func(t *testing.T) {
		_, err := c.Decrypt(make([]byte, aes.BlockSize))
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("ciphertext not block-aligned", func(t *testing.T) {
		blob, err := c.Encrypt([]byte("payload"))
		require.NoError(t, err)
		_, err = c.Decrypt(blob[:len(blob)-1])
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("wrong key", func(t *testing.T) {
		blob, err := c.Encrypt([]byte("secret document content"))
		require.NoError(t, err)

		other := newTestCipher(t)
		_, err = other.Decrypt(blob)
		require.ErrorIs(t, err, ErrDecryptionFailed, "wrong key must fail, never return garbage silently")
	})
}

func TestStreamRoundTrip(t *testing.T) {
	c := newTestCipher(t)
	dir := t.TempDir()

	// N=0, N<16, N=16, N=17, and a payload spanning many chunks.
	sizes := []int{0, 5, aes.BlockSize, aes.BlockSize + 1, 1 << 20}
	for _, size := range sizes {
		source := make([]byte, size)
		_, err := io.ReadFull(rand.Reader, source)
		require.NoError(t, err)

		destPath := filepath.Join(dir, "blob")
		require.NoError(t, c.EncryptStream(bytes.NewReader(source), destPath), "size %d", size)

		// On-disk layout invariant: IV prefix plus block-aligned ciphertext.
		blob, err := os.ReadFile(destPath)
		require.NoError(t, err)
		require.Zero(t, (len(blob)-aes.BlockSize)%aes.BlockSize, "size %d", size)
		require.Greater(t, len(blob), aes.BlockSize, "size %d", size)

		stream, err := c.DecryptStream(destPath)
		require.NoError(t, err, "size %d", size)

		decrypted, err := io.ReadAll(stream)
		require.NoError(t, err, "size %d", size)
		require.NoError(t, stream.Close())
		require.True(t, bytes.Equal(source, decrypted), "stream round-trip mismatch at size %d", size)
	}
}

func TestStreamAndBufferFormatsAgree(t *testing.T) {
	c := newTestCipher(t)
	dir := t.TempDir()
	plaintext := []byte("one format, two code paths")

	destPath := filepath.Join(dir, "blob")
	require.NoError(t, c.EncryptStream(bytes.NewReader(plaintext), destPath))

	blob, err := os.ReadFile(destPath)
	require.NoError(t, err)

	// A blob written by the streaming path decrypts through the buffer path.
	decrypted, err := c.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptStream_CreatesParentDirectories(t *testing.T) {
	c := newTestCipher(t)
	destPath := filepath.Join(t.TempDir(), "42", "payslip", "2026", "02", "blob")

	require.NoError(t, c.EncryptStream(bytes.NewReader([]byte("x")), destPath))

	_, err := os.Stat(destPath)
	require.NoError(t, err)
}

func TestDecryptStream_TruncatedFile(t *testing.T) {
	c := newTestCipher(t)
	dir := t.TempDir()

	t.Run("shorter than IV", func(t *testing.T) {
		path := filepath.Join(dir, "short")
		require.NoError(t, os.WriteFile(path, make([]byte, 7), 0o640))

		_, err := c.DecryptStream(path)
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("ciphertext cut mid-block", func(t *testing.T) {
		path := filepath.Join(dir, "blob")
		require.NoError(t, c.EncryptStream(bytes.NewReader([]byte("truncate me")), path))

		blob, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, blob[:len(blob)-3], 0o640))

		stream, err := c.DecryptStream(path)
		require.NoError(t, err)
		defer stream.Close()

		_, err = io.ReadAll(stream)
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("wrong key surfaces as decryption failure", func(t *testing.T) {
		path := filepath.Join(dir, "foreign")
		require.NoError(t, c.EncryptStream(bytes.NewReader([]byte("owned by another key")), path))

		other := newTestCipher(t)
		stream, err := other.DecryptStream(path)
		require.NoError(t, err)
		defer stream.Close()

		_, err = io.ReadAll(stream)
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})
}

func TestDecryptStream_CloseMidStreamReleasesFile(t *testing.T) {
	c := newTestCipher(t)
	path := filepath.Join(t.TempDir(), "blob")

	big := make([]byte, 1<<20)
	require.NoError(t, c.EncryptStream(bytes.NewReader(big), path))

	stream, err := c.DecryptStream(path)
	require.NoError(t, err)

	// Consume only a little, then disconnect.
	_, err = stream.Read(make([]byte, 1024))
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	// Further reads after Close must fail rather than resurrect the handle.
	_, err = stream.Read(make([]byte, 16))
	require.Error(t, err)
	require.False(t, errors.Is(err, io.EOF))
}
