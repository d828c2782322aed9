package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// HashUser derives a stable 40-character pseudonym from a raw user identifier
// so that no plain identity is ever persisted.
func HashUser(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])[:40]
}
