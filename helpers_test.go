package goToken

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"hash"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cr3t"

var testNow = time.Unix(1_700_000_000, 0)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = testSecret
	return cfg
}

func mustKey(t testing.TB, secret, alg string) Key {
	t.Helper()

	k, err := NewKey(secret, alg)
	require.NoError(t, err)
	return k
}

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

// splitSegments decodes a std-encoded token into its header and payload objects.
func splitSegments(t testing.TB, token string) (map[string]any, map[string]any, string) {
	t.Helper()

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	decode := func(seg string) map[string]any {
		raw, err := base64.StdEncoding.DecodeString(seg)
		require.NoError(t, err)
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var out map[string]any
		require.NoError(t, dec.Decode(&out))
		return out
	}
	return decode(parts[0]), decode(parts[1]), parts[2]
}

func claimInt(t testing.TB, claims map[string]any, name string) int64 {
	t.Helper()

	n, ok := claims[name].(json.Number)
	require.Truef(t, ok, "claim %s is %T", name, claims[name])
	v, err := n.Int64()
	require.NoError(t, err)
	return v
}

func referenceHMAC(alg, input, secret string) string {
	var h func() hash.Hash
	switch alg {
	case "HS384":
		h = sha512.New384
	case "HS512":
		h = sha512.New
	default:
		h = sha256.New
	}
	mac := hmac.New(h, []byte(secret))
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}
