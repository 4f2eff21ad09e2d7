package goToken

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MapClaims is an unstructured claim set.
type MapClaims = map[string]any

// Standard claim names. On merge they overwrite custom claims of the same name.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimNotBefore = "nbf"
	ClaimID        = "jti"

	// ClaimLegacyData carries a nested copy of the custom claims when legacy data is enabled.
	ClaimLegacyData = "data"
)

const headerType = "JWT"

// Header is the decoded first segment. Field order matches the wire form.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// numericClaim reads a Unix-seconds claim. It accepts JSON numbers and numeric strings,
// because nbf has historically been emitted as a string.
func numericClaim(claims MapClaims, name string) (time.Time, bool, error) {
	raw, ok := claims[name]
	if !ok || raw == nil {
		return time.Time{}, false, nil
	}

	var secs int64
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return time.Time{}, true, fmt.Errorf("%w: %s is not numeric", ErrMalformedToken, name)
			}
			n = int64(f)
		}
		secs = n
	case float64:
		secs = int64(v)
	case int64:
		secs = v
	case int:
		secs = int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return time.Time{}, true, fmt.Errorf("%w: %s is not numeric", ErrMalformedToken, name)
		}
		secs = n
	default:
		return time.Time{}, true, fmt.Errorf("%w: %s has type %T", ErrMalformedToken, name, raw)
	}
	return time.Unix(secs, 0), true, nil
}

func stringClaim(claims MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}
