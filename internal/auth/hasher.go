// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package auth provides password hashing for the quiz backend.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, following the RFC 9106 recommended defaults.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher produces and checks encoded password hashes.
type PasswordHasher interface {
	// Hash produces an argon2id hash of the password. Every call draws a
	// fresh random salt.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the encoded hash.
	// Malformed encodings are a mismatch, never an error.
	Verify(password, encoded string) bool
}

// Argon2idHasher implements PasswordHasher using argon2id in PHC string
// format. The salt source is injectable for deterministic tests; production
// wiring uses crypto/rand.
type Argon2idHasher struct {
	saltSource io.Reader
}

// NewArgon2idHasher creates a hasher drawing salts from crypto/rand.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{saltSource: rand.Reader}
}

// NewArgon2idHasherWithSalts creates a hasher drawing salts from r.
// Intended for tests that need reproducible output.
func NewArgon2idHasherWithSalts(r io.Reader) *Argon2idHasher {
	return &Argon2idHasher{saltSource: r}
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := io.ReadFull(h.saltSource, salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	digest := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format:
	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify reports whether the password matches the encoded hash. The digest
// is recomputed with the parameters embedded in the encoding and compared in
// constant time. Anything that fails to parse is treated as a mismatch so
// callers never have to distinguish "wrong password" from "broken record".
func (h *Argon2idHasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if threads == 0 || threads > 255 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	keyLen := len(expected)
	if keyLen == 0 || keyLen > 1<<30 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}
