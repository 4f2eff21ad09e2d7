package internal

import (
	"crypto/rand"
	"encoding/hex"
)

const tokenIDSize = 16

// NewTokenID returns 128 random bits, hex-encoded.
func NewTokenID() (string, error) {
	var raw [tokenIDSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}
