package common

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes returns n bytes from crypto/rand, for password salts.
func RandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("random bytes: invalid length %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("random bytes: %w", err)
	}
	return b, nil
}

// WipeBytes zeroes every password buffer passed in. Nil buffers are skipped.
func WipeBytes(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
