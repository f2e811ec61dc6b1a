// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// streamChunkSize is the read granularity of the streaming codec paths.
const streamChunkSize = 32 * 1024

// EncryptStream implements [VaultCipher]. It writes the IV once at the
// start of destPath and then encrypts src chunk by chunk, carrying partial
// blocks between reads, so arbitrarily large files pass through in constant
// memory. Parent directories of destPath are created as needed.
//
// On failure the destination may hold a truncated blob; the caller (the
// vault writer) removes it and must not register the path anywhere.
func (c *vaultCipher) EncryptStream(src io.Reader, destPath string) error {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return err
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return fmt.Errorf("generate iv: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.Write(iv); err != nil {
		return fmt.Errorf("write iv: %w", err)
	}

	mode := cipher.NewCBCEncrypter(block, iv)

	// pending accumulates bytes that have not formed a full block yet.
	pending := make([]byte, 0, streamChunkSize+aes.BlockSize)
	buf := make([]byte, streamChunkSize)

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)

			full := len(pending) - len(pending)%aes.BlockSize
			if full > 0 {
				mode.CryptBlocks(pending[:full], pending[:full])
				if _, err := dst.Write(pending[:full]); err != nil {
					return fmt.Errorf("write ciphertext: %w", err)
				}
				pending = append(pending[:0], pending[full:]...)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read source: %w", readErr)
		}
	}

	// Final block: whatever is left plus PKCS#7 padding (a full padding
	// block when the input was block-aligned).
	final := pkcs7Pad(pending)
	mode.CryptBlocks(final, final)
	if _, err := dst.Write(final); err != nil {
		return fmt.Errorf("write final block: %w", err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("close destination file: %w", err)
	}

	return nil
}

// DecryptStream implements [VaultCipher]. It reads exactly the IV from the
// front of the file, then hands back a pull-based reader that decrypts the
// remaining ciphertext on demand.
func (c *vaultCipher) DecryptStream(sourcePath string) (io.ReadCloser, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(src, iv); err != nil {
		src.Close()
		return nil, fmt.Errorf("%w: blob shorter than IV", ErrDecryptionFailed)
	}

	return &decryptingReader{
		src:  src,
		mode: cipher.NewCBCDecrypter(block, iv),
	}, nil
}

// decryptingReader is a lazy, single-pass decrypting stream over one vault
// file. It always holds the last full ciphertext block back until the
// underlying file is exhausted, because only the final block carries
// padding that must be stripped rather than emitted.
type decryptingReader struct {
	src  *os.File
	mode cipher.BlockMode

	raw    []byte // ciphertext read from src, not yet decrypted
	plain  []byte // decrypted bytes ready to be handed to the consumer
	eof    bool   // the underlying file is exhausted
	closed bool
	err    error // terminal state: io.EOF or a real failure
}

// Read implements [io.Reader]. It refills the plaintext buffer as needed and
// copies out as much as fits in p. After the final padded block has been
// validated and emitted, Read returns io.EOF and the file is already closed.
func (r *decryptingReader) Read(p []byte) (int, error) {
	for len(r.plain) == 0 && r.err == nil {
		r.fill()
	}

	if len(r.plain) > 0 {
		n := copy(p, r.plain)
		r.plain = r.plain[n:]
		return n, nil
	}

	return 0, r.err
}

// fill reads one chunk of ciphertext and decrypts every block that is safe
// to emit. Before EOF that is all but the last full block; at EOF the held
// block is decrypted too and its padding stripped.
func (r *decryptingReader) fill() {
	if !r.eof {
		buf := make([]byte, streamChunkSize)
		n, err := r.src.Read(buf)
		if n > 0 {
			r.raw = append(r.raw, buf[:n]...)
		}
		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			r.err = err
			r.closeFile()
			return
		}
	}

	if !r.eof {
		blocks := len(r.raw) / aes.BlockSize
		if blocks > 1 {
			n := (blocks - 1) * aes.BlockSize
			r.mode.CryptBlocks(r.raw[:n], r.raw[:n])
			r.plain = append(r.plain, r.raw[:n]...)
			r.raw = append(r.raw[:0], r.raw[n:]...)
		}
		return
	}

	// File exhausted: everything left must be whole blocks, the last of
	// which carries the padding.
	if len(r.raw) == 0 || len(r.raw)%aes.BlockSize != 0 {
		r.err = fmt.Errorf("%w: ciphertext length is not a positive multiple of the block size", ErrDecryptionFailed)
		r.closeFile()
		return
	}

	r.mode.CryptBlocks(r.raw, r.raw)
	unpadded, err := pkcs7Unpad(r.raw)
	if err != nil {
		r.err = err
		r.closeFile()
		return
	}

	r.plain = append(r.plain, unpadded...)
	r.raw = nil
	r.err = io.EOF
	r.closeFile()
}

// Close implements [io.Closer]. Closing early (consumer disconnected
// mid-stream) releases the file handle immediately instead of completing
// the read.
func (r *decryptingReader) Close() error {
	r.err = os.ErrClosed
	r.plain = nil
	r.raw = nil
	return r.closeFile()
}

func (r *decryptingReader) closeFile() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}
