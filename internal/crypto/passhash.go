// Package crypto implements server-side password digests and the email hash
// used for avatar lookups.
package crypto

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"

	"github.com/stemmahq/stemma/internal/errs"
)

// PBKDF2 parameters. The digest is stored as one opaque blob:
// 16-byte salt followed by the 32-byte derived key.
const (
	saltLen    = 16
	keyLen     = 32
	iterations = 10000

	// DigestLen is the length of a stored password digest.
	DigestLen = saltLen + keyLen
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// PasswordDigest derives a fresh salted digest for the given password.
func PasswordDigest(password string) ([]byte, error) {
	salt, err := RandBytes(saltLen)
	if err != nil {
		return nil, err
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha1.New)

	digest := make([]byte, 0, DigestLen)
	digest = append(digest, salt...)
	digest = append(digest, key...)
	return digest, nil
}

// VerifyPassword checks a password against a stored digest in constant time.
func VerifyPassword(password string, digest []byte) (bool, error) {
	if len(digest) != DigestLen {
		return false, errs.Validation("password digest length %d, want %d", len(digest), DigestLen)
	}
	salt, expected := digest[:saltLen], digest[saltLen:]
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha1.New)
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}
