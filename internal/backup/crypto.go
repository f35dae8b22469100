package backup

import (
	"bufio"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize    = 16
	prefixSize  = 7
	keySize     = 32
	chunkSize   = 64 * 1024
	argonTime   = 3
	argonMem    = 64 * 1024
	argonPar    = 4
	formatMagic = "FMB1"
)

// ErrDecrypt covers a wrong passphrase as well as a tampered or truncated file.
var ErrDecrypt = errors.New("decrypt backup: authentication failed")

// GenerateSalt returns 16 cryptographically random bytes.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a 32-byte AES-256 key from a passphrase and salt using Argon2id.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMem, argonPar, keySize)
}

// chunkNonce is prefix || big-endian counter || last-chunk flag.
func chunkNonce(prefix []byte, counter uint32, last bool) []byte {
	nonce := make([]byte, prefixSize+5)
	copy(nonce, prefix)
	binary.BigEndian.PutUint32(nonce[prefixSize:], counter)
	if last {
		nonce[prefixSize+4] = 1
	}
	return nonce
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// Encrypt streams src to dst as AES-256-GCM chunks.
// Layout: magic, 16-byte salt, 7-byte nonce prefix, then sealed 64 KiB chunks.
// The final chunk carries a flag in its nonce so truncation is detected.
func Encrypt(dst io.Writer, src io.Reader, passphrase string, salt []byte) error {
	if len(salt) != saltSize {
		return fmt.Errorf("salt must be %d bytes", saltSize)
	}
	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return err
	}
	prefix := make([]byte, prefixSize)
	if _, err := io.ReadFull(rand.Reader, prefix); err != nil {
		return fmt.Errorf("generate nonce prefix: %w", err)
	}

	header := append([]byte(formatMagic), salt...)
	header = append(header, prefix...)
	if _, err := dst.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	in := bufio.NewReaderSize(src, chunkSize)
	buf := make([]byte, chunkSize)
	out := make([]byte, 0, chunkSize+gcm.Overhead())
	for counter := uint32(0); ; counter++ {
		n, err := io.ReadFull(in, buf)
		last := false
		switch {
		case err == io.EOF || err == io.ErrUnexpectedEOF:
			last = true
		case err != nil:
			return fmt.Errorf("read source: %w", err)
		default:
			if _, perr := in.Peek(1); perr == io.EOF {
				last = true
			} else if perr != nil {
				return fmt.Errorf("read source: %w", perr)
			}
		}

		out = gcm.Seal(out[:0], chunkNonce(prefix, counter, last), buf[:n], nil)
		if _, err := dst.Write(out); err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
		if last {
			return nil
		}
		if counter == ^uint32(0) {
			return errors.New("backup too large")
		}
	}
}

// Decrypt reverses Encrypt, writing plaintext to dst. Plaintext of a chunk
// is only written after it authenticates.
func Decrypt(dst io.Writer, src io.Reader, passphrase string) error {
	in := bufio.NewReaderSize(src, chunkSize+64)

	header := make([]byte, len(formatMagic)+saltSize+prefixSize)
	if _, err := io.ReadFull(in, header); err != nil {
		return fmt.Errorf("read header: %w", ErrDecrypt)
	}
	if string(header[:len(formatMagic)]) != formatMagic {
		return fmt.Errorf("unknown backup format")
	}
	salt := header[len(formatMagic) : len(formatMagic)+saltSize]
	prefix := header[len(formatMagic)+saltSize:]

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return err
	}

	buf := make([]byte, chunkSize+gcm.Overhead())
	var plain []byte
	for counter := uint32(0); ; counter++ {
		n, err := io.ReadFull(in, buf)
		last := false
		switch {
		case err == io.EOF:
			// a valid stream always ends with a flagged chunk
			return ErrDecrypt
		case err == io.ErrUnexpectedEOF:
			last = true
		case err != nil:
			return fmt.Errorf("read backup: %w", err)
		default:
			if _, perr := in.Peek(1); perr == io.EOF {
				last = true
			} else if perr != nil {
				return fmt.Errorf("read backup: %w", perr)
			}
		}

		plain, err = gcm.Open(plain[:0], chunkNonce(prefix, counter, last), buf[:n], nil)
		if err != nil {
			return ErrDecrypt
		}
		if _, err := dst.Write(plain); err != nil {
			return fmt.Errorf("write plaintext: %w", err)
		}
		if last {
			return nil
		}
	}
}

// EncryptFile encrypts srcPath to dstPath.
func EncryptFile(srcPath, dstPath, passphrase string, salt []byte) error {
	return transformFile(srcPath, dstPath, func(w io.Writer, r io.Reader) error {
		return Encrypt(w, r, passphrase, salt)
	})
}

// DecryptFile decrypts srcPath to dstPath.
func DecryptFile(srcPath, dstPath, passphrase string) error {
	return transformFile(srcPath, dstPath, func(w io.Writer, r io.Reader) error {
		return Decrypt(w, r, passphrase)
	})
}

func transformFile(srcPath, dstPath string, fn func(io.Writer, io.Reader) error) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	w := bufio.NewWriter(out)
	if err := fn(w, in); err != nil {
		out.Close()
		os.Remove(dstPath)
		return err
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("flush destination: %w", err)
	}
	return out.Close()
}
