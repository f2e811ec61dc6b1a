package crypto

import "io"

// VaultCipher is the document-vault codec. It performs the reversible
// transformation between plaintext bytes and the on-disk blob format
//
//	IV (16 bytes) || AES-256-CBC ciphertext with PKCS#7 padding
//
// using one process-wide symmetric key configured at startup. The first 16
// bytes of a blob are never content: every read splits them off as the IV
// before decrypting the remainder.
//
// Implementations are safe for concurrent use; the key is read-only after
// construction and a fresh random IV is generated per encryption.
type VaultCipher interface {
	// Encrypt encrypts plaintext into a self-contained blob (IV prefix
	// included). Each call consumes fresh randomness for the IV, so
	// encrypting the same plaintext twice yields different blobs.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt reverses Encrypt. It fails with [ErrDecryptionFailed] if the
	// blob is shorter than one IV, if the ciphertext length is not a
	// multiple of the block size, or if padding validation fails (wrong
	// key or corrupted data). It never returns silently-wrong bytes.
	Decrypt(blob []byte) ([]byte, error)

	// EncryptStream encrypts src incrementally into a new file at destPath,
	// writing the IV first and ciphertext chunks after it. Missing parent
	// directories of destPath are created. The source is never held fully
	// in memory.
	EncryptStream(src io.Reader, destPath string) error

	// DecryptStream opens the blob at sourcePath, reads the IV, and
	// returns a lazy, forward-only reader that decrypts chunks as the
	// consumer pulls them. The stream is finite and not restartable; a
	// new call re-reads from the start. Closing the reader releases the
	// underlying file, which also happens automatically at EOF.
	DecryptStream(sourcePath string) (io.ReadCloser, error)
}
