// Package otp generates and verifies the short-lived numeric login codes.
package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// CodeLength is the number of decimal digits in a generated code.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// Generate returns a six-digit code drawn uniformly from 000000-999999 using
// a cryptographically secure source. Sampling a single value below 10^6 keeps
// the distribution free of modulo bias.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Hash derives the storage hash for a code bound to an identity:
// HMAC-SHA256(secret, identityKey + ":" + code), hex-encoded. Binding the
// identity key into the message prevents a hash captured for one identity
// from verifying under another.
func Hash(identityKey, code string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(identityKey + ":" + code))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the hash for the candidate code and compares it against
// the stored hash in constant time.
func Verify(storedHashHex, identityKey, candidateCode string, secret []byte) bool {
	computed := Hash(identityKey, candidateCode, secret)
	if len(storedHashHex) != len(computed) {
		return false
	}
	return hmac.Equal([]byte(storedHashHex), []byte(computed))
}
