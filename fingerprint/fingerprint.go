// Package fingerprint derives the stable content hash used for duplicate
// detection. Normalization is deliberately simple so that incidental
// whitespace or casing differences collapse to the same fingerprint:
// the text is trimmed, every run of whitespace becomes a single space, and
// the result is lowercased before hashing with SHA-256.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrEmptyContent is returned when the text is empty after normalization.
var ErrEmptyContent = errors.New("article content is empty")

// Generate returns the hex-encoded SHA-256 digest of the normalized text.
func Generate(text string) (string, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return "", ErrEmptyContent
	}

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:]), nil
}

// Normalize collapses whitespace runs to single spaces and lowercases.
// strings.Fields splits on any Unicode whitespace, so tabs, newlines and
// non-breaking spaces all normalize identically.
func Normalize(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}
