package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEncoding is returned by ParseEncoding for unrecognized names.
var ErrUnknownEncoding = errors.New("unknown segment encoding")

// Encoding selects how the header and payload segments are base64-encoded.
type Encoding uint8

const (
	// EncodingStd is standard base64 with padding. It is the default wire format.
	EncodingStd Encoding = iota
	// EncodingRawURL is unpadded URL-safe base64, as used by RFC 7519 consumers.
	EncodingRawURL
)

func (e Encoding) String() string {
	switch e {
	case EncodingStd:
		return "std"
	case EncodingRawURL:
		return "rawurl"
	default:
		return fmt.Sprintf("encoding(%d)", uint8(e))
	}
}

// ParseEncoding maps "std" or "rawurl" (case-insensitive) to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "std", "standard":
		return EncodingStd, nil
	case "rawurl", "url":
		return EncodingRawURL, nil
	default:
		return EncodingStd, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

func (e Encoding) codec() *base64.Encoding {
	if e == EncodingRawURL {
		return base64.RawURLEncoding
	}
	return base64.StdEncoding
}

// EncodeSegment base64-encodes b.
func (e Encoding) EncodeSegment(b []byte) string {
	return e.codec().EncodeToString(b)
}

// DecodeSegment reverses EncodeSegment.
func (e Encoding) DecodeSegment(s string) ([]byte, error) {
	return e.codec().DecodeString(s)
}
