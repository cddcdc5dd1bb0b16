// Package uuid wraps google/uuid with the identifier formats used by the API.
package uuid

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	googleuuid "github.com/google/uuid"
)

// New generates a time-ordered UUIDv7 string, suitable as a primary key.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// NewToken returns an unguessable 32-character hex token for public links.
func NewToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strings.ReplaceAll(googleuuid.New().String(), "-", "")
	}
	return hex.EncodeToString(buf)
}

// Parse validates a UUID string and returns its canonical form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
