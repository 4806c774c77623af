// Package token generates opaque share-link secrets.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// secretBytes is the entropy of a share-link token. 32 bytes keeps the
// secret unguessable even for long-lived links.
const secretBytes = 32

// New returns a new random share-link secret as a hex string.
func New() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
