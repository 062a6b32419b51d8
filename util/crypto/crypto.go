// Package crypto provides cryptographic utilities for password hashing and verification.
package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// HashLength is the length of an encoded bcrypt hash.
const HashLength = 60

// HashPasswordAsBcrypt generates a bcrypt hash of the given password with the given cost.
// The hash is emitted with the "$2b$" revision marker; for inputs of at most 72 bytes
// (the only ones bcrypt accepts) 2a and 2b hashes are identical apart from that marker.
func HashPasswordAsBcrypt(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	if len(hash) > 3 && hash[0] == '$' && hash[1] == '2' && hash[2] == 'a' {
		hash[2] = 'b'
	}
	return string(hash), nil
}

// CheckPasswordHash verifies if the given password matches the bcrypt hash.
func CheckPasswordHash(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
