// Package auth provides the credential primitives of the server: one-way
// password hashing and signed access tokens.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonSaltLen = 16
	argonKeyLen  = 32
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher turns raw passwords into opaque salted digests and checks
// candidates against them.
type PasswordHasher interface {
	// Hash produces a salted one-way digest of the password.
	Hash(password string) (string, error)

	// Verify reports whether password matches the encoded digest.
	// Malformed input yields false, never an error or panic.
	Verify(password, encoded string) bool
}

// Argon2Hasher implements PasswordHasher using argon2id, encoding the result
// in PHC string format: $argon2id$v=19$m=...,t=...,p=...$<salt>$<hash>.
// Verification reads the cost parameters back from the encoded string, so
// hashes produced under older settings keep verifying after a cost change.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
}

// NewArgon2Hasher builds a hasher with the given cost parameters.
// Zero values fall back to the OWASP-recommended argon2id baseline
// (t=1, m=64 MiB, p=4).
func NewArgon2Hasher(timeCost, memoryKiB uint32, threads uint8) *Argon2Hasher {
	if timeCost == 0 {
		timeCost = 1
	}
	if memoryKiB == 0 {
		memoryKiB = 64 * 1024
	}
	if threads == 0 {
		threads = 4
	}
	return &Argon2Hasher{time: timeCost, memory: memoryKiB, threads: threads}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

func (h *Argon2Hasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false
	}
	if memory == 0 || timeCost == 0 || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1
}
