package goToken

import (
	"bytes"
	"fmt"

	"github.com/MrEthical07/goToken/jwt"
)

// Algorithm names a supported keyed-hash algorithm.
type Algorithm string

const (
	// HS256 is HMAC with SHA-256.
	HS256 Algorithm = jwt.AlgHS256
	// HS384 is HMAC with SHA-384.
	HS384 Algorithm = jwt.AlgHS384
	// HS512 is HMAC with SHA-512.
	HS512 Algorithm = jwt.AlgHS512
)

// ParseAlgorithm maps an exact algorithm name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(name)
	if !alg.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return alg, nil
}

// Valid reports whether a is one of HS256, HS384 or HS512.
func (a Algorithm) Valid() bool {
	switch a {
	case HS256, HS384, HS512:
		return true
	default:
		return false
	}
}

func (a Algorithm) String() string {
	return string(a)
}

// Key binds a secret to the algorithm it signs with. The zero Key is unusable; construct one
// with NewKey or NewKeyBytes. A Key never changes after construction.
type Key struct {
	secret []byte
	alg    Algorithm
}

// NewKey validates secret and algorithm and returns the binding.
//
// An empty secret or algorithm fails with ErrInvalidArgument; an algorithm outside the
// supported set fails with ErrUnsupportedAlgorithm.
func NewKey(secret, algorithm string) (Key, error) {
	return NewKeyBytes([]byte(secret), algorithm)
}

// NewKeyBytes is NewKey for binary secrets. The secret is copied.
func NewKeyBytes(secret []byte, algorithm string) (Key, error) {
	if len(secret) == 0 {
		return Key{}, fmt.Errorf("%w: secret is empty", ErrInvalidArgument)
	}
	if algorithm == "" {
		return Key{}, fmt.Errorf("%w: algorithm is empty", ErrInvalidArgument)
	}
	alg, err := ParseAlgorithm(algorithm)
	if err != nil {
		return Key{}, err
	}
	return Key{secret: bytes.Clone(secret), alg: alg}, nil
}

// Secret returns a copy of the secret.
func (k Key) Secret() []byte {
	return bytes.Clone(k.secret)
}

// Algorithm returns the bound algorithm.
func (k Key) Algorithm() Algorithm {
	return k.alg
}

// String never prints the secret.
func (k Key) String() string {
	return fmt.Sprintf("Key{alg=%s, secret=<redacted>}", k.alg)
}

func (k Key) check() error {
	if !k.alg.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(k.alg))
	}
	if len(k.secret) == 0 {
		return fmt.Errorf("%w: secret is empty", ErrInvalidArgument)
	}
	return nil
}
