// Package credentials implements one-way password hashing and verification
// using argon2id. Hashes are stored in the PHC string format so verification
// needs no parameter lookup outside the hash itself.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrCorruptHash is returned when a stored hash cannot be parsed. A password
// mismatch is not an error, only a false result.
var ErrCorruptHash = errors.New("corrupt credential hash")

// maxMemoryKiB bounds the memory cost accepted from a stored hash (1 GiB).
const maxMemoryKiB = 1 << 20

// Params control the argon2id cost. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams matches the parameters used by the account store this
// service replaced, so existing hashes verify unchanged.
func DefaultParams() Params {
	return Params{
		Memory:      19456,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hash derives an argon2id digest of password and encodes it together with
// the salt and cost parameters.
func (p Params) Hash(password string) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("credentials.Hash rand.Read: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify recomputes the digest of password using the parameters encoded in
// hash and compares in constant time.
func Verify(hash, password string) (bool, error) {
	params, salt, key, err := decode(hash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// dummyHash is a hash of an unguessable throwaway value, used only to burn
// comparable KDF work when no account matches a login identifier.
var dummyHash = func() string {
	h, err := DefaultParams().Hash(base64.RawStdEncoding.EncodeToString([]byte("forumgate-dummy-credential")))
	if err != nil {
		panic(err)
	}
	return h
}()

// VerifyDummy runs a full verification against a fixed hash and discards the
// result. Login flows call it when the account lookup fails so the response
// time does not reveal whether the identifier exists.
func VerifyDummy(password string) {
	_, _ = Verify(dummyHash, password)
}

func decode(hash string) (Params, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrCorruptHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, ErrCorruptHash
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptHash, version)
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Parallelism); err != nil {
		return Params{}, nil, nil, ErrCorruptHash
	}
	// argon2.IDKey panics on zero rounds or parallelism; an absurd memory
	// cost would let a poisoned hash exhaust the process. All three are
	// corrupt input here, never a crash.
	if params.Time < 1 || params.Parallelism < 1 || params.Memory < 1 || params.Memory > maxMemoryKiB {
		return Params{}, nil, nil, ErrCorruptHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrCorruptHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrCorruptHash
	}
	if len(salt) == 0 || len(key) == 0 {
		return Params{}, nil, nil, ErrCorruptHash
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))
	return params, salt, key, nil
}
