package jwt

import (
	"encoding/hex"
	"errors"
	"fmt"

	gjwt "github.com/golang-jwt/jwt/v5"
)

const (
	// AlgHS256 identifies HMAC-SHA256.
	AlgHS256 = "HS256"
	// AlgHS384 identifies HMAC-SHA384.
	AlgHS384 = "HS384"
	// AlgHS512 identifies HMAC-SHA512.
	AlgHS512 = "HS512"
)

var (
	// ErrUnsupportedAlgorithm is returned for any algorithm outside HS256/HS384/HS512.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	// ErrSignatureInvalid is returned when a recomputed signature does not match.
	ErrSignatureInvalid = errors.New("signature invalid")
	// ErrMalformedSignature is returned when the signature segment is not valid hex.
	ErrMalformedSignature = errors.New("malformed signature")
	// ErrEmptySecret is returned when signing or verifying with an empty secret.
	ErrEmptySecret = errors.New("empty secret")
)

// Method returns the HMAC signing method registered for alg.
func Method(alg string) (*gjwt.SigningMethodHMAC, error) {
	switch alg {
	case AlgHS256:
		return gjwt.SigningMethodHS256, nil
	case AlgHS384:
		return gjwt.SigningMethodHS384, nil
	case AlgHS512:
		return gjwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// SigningInput joins encoded header and payload with the segment separator.
func SigningInput(header, payload string) string {
	return header + "." + payload
}

// Sign computes the keyed hash of signingInput and returns it hex-encoded.
func Sign(alg, signingInput string, secret []byte) (string, error) {
	method, err := Method(alg)
	if err != nil {
		return "", err
	}
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	sig, err := method.Sign(signingInput, secret)
	if err != nil {
		return "", fmt.Errorf("hmac %s: %w", alg, err)
	}
	return hex.EncodeToString(sig), nil
}

// Verify recomputes the keyed hash of signingInput and compares it with the hex
// signature in constant time. Only the lowercase hex produced by Sign is accepted.
func Verify(alg, signingInput, signatureHex string, secret []byte) error {
	method, err := Method(alg)
	if err != nil {
		return err
	}
	if len(secret) == 0 {
		return ErrEmptySecret
	}

	if !isLowerHex(signatureHex) {
		return ErrMalformedSignature
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) == 0 {
		return ErrMalformedSignature
	}

	if err := method.Verify(signingInput, sig, secret); err != nil {
		if errors.Is(err, gjwt.ErrSignatureInvalid) {
			return ErrSignatureInvalid
		}
		return fmt.Errorf("hmac %s: %w", alg, err)
	}
	return nil
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
