package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/recruitme/internal/common"
)

var errMalformedHash = errors.New("malformed password hash")

// Upper bounds for cost parameters read back from stored hashes. A row is
// data, not configuration: values past these are refused rather than run.
const (
	maxArgon2Memory = 1 << 20 // KiB, 1 GiB
	maxArgon2Time   = 64
	maxArgon2KeyLen = 1024
)

// validArgon2Params mirrors the preconditions argon2.IDKey panics on.
func validArgon2Params(time, memory uint32, threads uint8, keyLen uint32) bool {
	switch {
	case time == 0 || time > maxArgon2Time:
		return false
	case threads == 0:
		return false
	case memory < 8*uint32(threads) || memory > maxArgon2Memory:
		return false
	case keyLen == 0 || keyLen > maxArgon2KeyLen:
		return false
	}
	return true
}

// Argon2IDHasher stores passwords as
//
//	$argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<key>
//
// with salt and key in unpadded standard base64.
type Argon2IDHasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

// NewArgon2IDHasher uses the same cost parameters the vault key derivation
// used: one pass over 64 MiB with four lanes.
func NewArgon2IDHasher() *Argon2IDHasher {
	return &Argon2IDHasher{Time: 1, Memory: 64 * 1024, Threads: 4, SaltLen: 16, KeyLen: 32}
}

func (h *Argon2IDHasher) Scheme() string { return SchemeArgon2ID }

func (h *Argon2IDHasher) Hash(password string) (string, error) {
	if err := checkInput(password); err != nil {
		return "", err
	}
	if !validArgon2Params(h.Time, h.Memory, h.Threads, h.KeyLen) || h.SaltLen <= 0 {
		return "", fmt.Errorf("invalid argon2id parameters m=%d,t=%d,p=%d", h.Memory, h.Time, h.Threads)
	}
	salt, err := common.RandomBytes(h.SaltLen)
	if err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, h.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify re-derives the key with the parameters recorded in encoded, so
// hashes written with older cost settings keep working.
func (h *Argon2IDHasher) Verify(password, encoded string) (bool, error) {
	if err := checkInput(password); err != nil {
		return false, err
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != SchemeArgon2ID {
		return false, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, errMalformedHash
	}

	var (
		memory, time uint32
		threads      uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, errMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || !validArgon2Params(time, memory, threads, uint32(len(key))) {
		return false, errMalformedHash
	}

	candidate := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}
