package utils

import (
	"crypto/rand"
	"fmt"
)

// NewSessionID returns a 6-character uppercase hex token drawn from the
// system entropy source. Ids must stay collision-resistant across power
// cycles, so a boot-reset counter is not an option.
func NewSessionID() (string, error) {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return fmt.Sprintf("%02X%02X%02X", b[0], b[1], b[2]), nil
}
