package goToken

import (
	"fmt"
	"strings"

	"github.com/MrEthical07/goToken/internal"
	"github.com/google/uuid"
)

// IDGenerator produces jti values for sensitive tokens. Values must be unpredictable and
// unique across all tokens signed with the same key.
type IDGenerator func() (string, error)

// NewHexID returns 128 random bits, hex-encoded. It is the default IDGenerator.
func NewHexID() (string, error) {
	return internal.NewTokenID()
}

// NewUUID returns a random (version 4) UUID.
func NewUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ParseIDFormat maps "hex" or "uuid" to a generator.
func ParseIDFormat(name string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hex":
		return NewHexID, nil
	case "uuid":
		return NewUUID, nil
	default:
		return nil, fmt.Errorf("%w: unknown jti format %q", ErrInvalidArgument, name)
	}
}
