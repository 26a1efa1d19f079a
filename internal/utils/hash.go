package utils

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// digests maps the configurable algorithm names to digest constructors.
var digests = map[string]func() hash.Hash{
	"md5":         md5.New,
	"sha1":        sha1.New,
	"sha256":      sha256.New,
	"sha384":      sha512.New384,
	"sha512":      sha512.New,
	"sha3-256":    sha3.New256,
	"sha3-512":    sha3.New512,
	"blake2b-256": func() hash.Hash { h, _ := blake2b.New256(nil); return h },
	"blake2b-512": func() hash.Hash { h, _ := blake2b.New512(nil); return h },
}

// Hasher hashes emails for lookup and passwords for storage.  It is safe for
// concurrent use; its fields are fixed at construction.
type Hasher struct {
	newDigest func() hash.Hash
	cost      int
}

// NewHasher validates the digest algorithm name and bcrypt cost and returns
// a ready Hasher.
func NewHasher(algorithm string, cost int) (*Hasher, error) {
	fn, ok := digests[strings.ToLower(strings.TrimSpace(algorithm))]
	if !ok {
		return nil, fmt.Errorf("unsupported email digest algorithm %q", algorithm)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{newDigest: fn, cost: cost}, nil
}

// HashEmail returns the hex digest of the lowercased email.  The result is
// deterministic so it can be used as a lookup key.
func (h *Hasher) HashEmail(email string) string {
	d := h.newDigest()
	d.Write([]byte(strings.ToLower(email)))
	return hex.EncodeToString(d.Sum(nil))
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword returns a salted bcrypt hash of the password.
func (h *Hasher) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func (h *Hasher) VerifyPassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
