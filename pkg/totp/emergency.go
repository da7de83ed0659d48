package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

// GenerateEmergencyCode creates a single-use recovery code: 8 random bytes
// rendered as 16 uppercase hex characters.
func GenerateEmergencyCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrFailedToGenerateEmergencyCode, err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// HashEmergencyCode returns the SHA-256 hex digest stored in place of the plaintext code.
// Input is trimmed and upper-cased so codes typed in lower case still match.
func HashEmergencyCode(code string) string {
	sum := sha256.Sum256([]byte(normalizeEmergencyCode(code)))
	return hex.EncodeToString(sum[:])
}

// VerifyEmergencyCode compares code against a stored hash in constant time.
func VerifyEmergencyCode(code, hashed string) bool {
	return subtle.ConstantTimeCompare([]byte(HashEmergencyCode(code)), []byte(hashed)) == 1
}

// MatchEmergencyCode scans hashes in order and returns the index of the first
// entry matching code, or -1.
func MatchEmergencyCode(code string, hashes []string) int {
	if normalizeEmergencyCode(code) == "" {
		return -1
	}
	for i, h := range hashes {
		if VerifyEmergencyCode(code, h) {
			return i
		}
	}
	return -1
}

func normalizeEmergencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
