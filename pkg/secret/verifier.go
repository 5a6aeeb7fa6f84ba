package secret

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
const (
	SaltLength = 16

	argon2Time    = 1
	argon2Memory  = 8 * 1024 // KiB
	argon2Threads = 1
	argon2KeyLen  = 32
)

// ErrEmptyPassword is returned when a verifier is built from an empty password.
var ErrEmptyPassword = errors.New("secret: empty password")

// Verifier checks candidate passwords against a stored digest.
type Verifier struct {
	salt   []byte
	digest []byte
}

// NewVerifier digests password with a fresh random salt.
func NewVerifier(password string) (*Verifier, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("secret: generate salt: %w", err)
	}
	return &Verifier{salt: salt, digest: derive([]byte(password), salt)}, nil
}

// Verify reports whether candidate is the configured password.
func (v *Verifier) Verify(candidate []byte) bool {
	got := derive(candidate, v.salt)
	return subtle.ConstantTimeCompare(got, v.digest) == 1
}

func derive(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}
