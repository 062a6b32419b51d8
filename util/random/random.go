// Package random provides cryptographically secure random values.
package random

import (
	"crypto/rand"
	"encoding/base64"
)

// Secret returns n random bytes encoded as unpadded URL-safe base64, suitable
// as an HMAC signing key.
func Secret(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
