// Package keygen generates the random identifiers and secrets used for
// API credentials. Output is uniformly distributed over an URL-safe
// alphanumeric alphabet, with modulo bias rejected.
package keygen

import (
	"crypto/rand"
)

const (
	// KeyLen is the length of a public API key identifier (~190 bits of entropy).
	KeyLen = 32
	// SecretLen is the length of an API key secret (~285 bits of entropy).
	SecretLen = 48

	// keyPrefix marks generated keys so they are recognizable in logs and
	// support requests without revealing the secret.
	keyPrefix = "sk_"
)

// chars is the alphabet used for keys and secrets.
var chars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// NewKey returns a new public API key identifier with the sk_ prefix.
func NewKey() string {
	return keyPrefix + randomString(KeyLen)
}

// NewSecret returns a new API key secret. Callers must show it once and
// store only its hash.
func NewSecret() string {
	return randomString(SecretLen)
}

// randomString draws length characters uniformly from the alphabet,
// skipping random bytes that would introduce modulo bias.
func randomString(length int) string {
	clen := len(chars)
	maxRb := 255 - (256 % clen)

	out := make([]byte, 0, length)
	buf := make([]byte, length*2)

	for {
		if _, err := rand.Read(buf); err != nil {
			panic("keygen: error reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			if int(rb) > maxRb {
				// Skip this byte to avoid modulo bias.
				continue
			}

			out = append(out, chars[int(rb)%clen])
			if len(out) == length {
				return string(out)
			}
		}
	}
}
